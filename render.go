package lcfiplot

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Renderer writes every object of a HbookBackend to an image file under
// Dir, mirroring the object's name as a path.
type Renderer struct {
	Dir string
	// Format is the file extension for histograms and curves. Heat maps
	// are always png.
	Format  string
	Width   vg.Length
	Height  vg.Length
	Workers int
	Log     *zap.Logger
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{
		Dir:     dir,
		Format:  "png",
		Width:   6 * vg.Inch,
		Height:  4 * vg.Inch,
		Workers: 4,
		Log:     zap.NewNop(),
	}
}

// Render draws every booked object. The first error cancels the rest.
func (r *Renderer) Render(ctx context.Context, be *HbookBackend) error {
	g, ctx := errgroup.WithContext(ctx)
	if r.Workers > 0 {
		g.SetLimit(r.Workers)
	}
	for i := 0; i < be.Len(); i++ {
		h := Handle(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.render(be, h)
		})
	}
	return g.Wait()
}

func (r *Renderer) render(be *HbookBackend, h Handle) error {
	name := be.Name(h)
	base := filepath.Join(r.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return err
	}

	var err error
	switch be.Kind(h) {
	case KindH1D:
		err = r.saveH1D(name, be.H1D(h), base+"."+r.Format)
	case KindH2D:
		err = r.saveH2D(name, be.H2D(h), base+".png")
	case KindPoints:
		xys, xerrs, yerrs := be.XYs(h)
		err = r.savePoints(name, xys, xerrs, yerrs, base+"."+r.Format)
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	r.Log.Debug("rendered", zap.String("plot", name))
	return nil
}

func newPlot(name string) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = strings.Replace(name, "/", " ", -1)
	return p, nil
}

func (r *Renderer) saveH1D(name string, hist *hbook.H1D, file string) error {
	p, err := newPlot(name)
	if err != nil {
		return err
	}
	p.X.Label.Text = path.Base(name)
	p.Y.Label.Text = "entries"
	p.X.Tick.Marker = PreciseTicks{NSuggestedTicks: 5}

	h := hplot.NewH1D(hist)
	h.FillColor = nil
	h.LineStyle.Color = color.RGBA{A: 255}
	h.Infos.Style = hplot.HInfoNone
	p.Add(h)

	return p.Save(r.Width, r.Height, file)
}

func (r *Renderer) saveH2D(name string, hist *hbook.H2D, file string) error {
	grid := hist.GridXYZ()
	nx, ny := grid.Dims()
	zMin, zMax := math.Inf(1), math.Inf(-1)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			z := grid.Z(i, j)
			zMin = math.Min(zMin, z)
			zMax = math.Max(zMax, z)
		}
	}
	if !(zMax > zMin) {
		r.Log.Debug("skipping empty 2d histogram", zap.String("plot", name))
		return nil
	}

	p, err := newPlot(name)
	if err != nil {
		return err
	}

	img := vgimg.New(670, 400)
	dc := draw.New(img)
	dc0 := draw.Crop(dc, 0, -70, 0, 0)
	dc1 := draw.Crop(dc, 620, 0, 0, 0)

	colorMap := moreland.ExtendedBlackBody()
	colorMap.SetMin(zMin)
	colorMap.SetMax(zMax)
	heatMap := plotter.NewHeatMap(grid, colorMap.Palette(1000))
	heatMap.Min = zMin
	heatMap.Max = zMax
	p.Add(heatMap)
	p.Draw(dc0)

	p, err = plot.New()
	if err != nil {
		return err
	}
	colorBar := &plotter.ColorBar{ColorMap: colorMap}
	colorBar.Vertical = true
	p.Add(colorBar)
	p.HideX()
	p.Y.Padding = 0
	p.Draw(dc1)

	w, err := os.Create(file)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err = png.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// logYCurve reports whether a curve is drawn with a logarithmic y axis.
func logYCurve(name string) bool {
	return strings.Contains(name, "Leakage") && !strings.Contains(name, "VertexCharge")
}

func (r *Renderer) savePoints(name string, xys plotter.XYs, xerrs plotter.XErrors, yerrs plotter.YErrors, file string) error {
	if len(xys) == 0 {
		return nil
	}
	p, err := newPlot(name)
	if err != nil {
		return err
	}
	if logYCurve(name) {
		p.Y.Tick.Marker = LogTicks{}
		p.Y.Scale = LogScale{}
	}

	errPoints := plotutil.ErrorPoints{XYs: xys, XErrors: xerrs, YErrors: yerrs}
	xerr, err := plotter.NewXErrorBars(errPoints)
	if err != nil {
		return err
	}
	yerr, err := plotter.NewYErrorBars(errPoints)
	if err != nil {
		return err
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	pointColor := color.RGBA{B: 255, A: 255}
	xerr.LineStyle.Color = pointColor
	yerr.LineStyle.Color = pointColor
	scatter.GlyphStyle.Color = pointColor
	scatter.GlyphStyle.Radius = vg.Points(1.5)

	p.Add(xerr, yerr, scatter)
	return p.Save(r.Width, r.Height, file)
}
