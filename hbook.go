package lcfiplot

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/plot/plotter"
)

type hbookEntry struct {
	name   string
	kind   Kind
	lo, hi float64
	h1     *hbook.H1D
	h2     *hbook.H2D
	xys    plotter.XYs
	xerrs  plotter.XErrors
	yerrs  plotter.YErrors
}

// HbookBackend stores histograms as go-hep hbook objects and point sets as
// gonum plotter data, ready for rendering.
type HbookBackend struct {
	entries []hbookEntry
	byName  map[string]Handle
}

func NewHbookBackend() *HbookBackend {
	return &HbookBackend{byName: make(map[string]Handle)}
}

func (b *HbookBackend) book(e hbookEntry) (Handle, error) {
	if _, ok := b.byName[e.name]; ok {
		return NoHandle, fmt.Errorf("%w: %q booked twice", ErrConfig, e.name)
	}
	h := Handle(len(b.entries))
	b.entries = append(b.entries, e)
	b.byName[e.name] = h
	return h, nil
}

func (b *HbookBackend) NewH1D(name string, n int, lo, hi float64) (Handle, error) {
	if n <= 0 || hi <= lo {
		return NoHandle, fmt.Errorf("%w: %q has illegal binning (%d, %v, %v)", ErrConfig, name, n, lo, hi)
	}
	return b.book(hbookEntry{name: name, kind: KindH1D, lo: lo, hi: hi, h1: hbook.NewH1D(n, lo, hi)})
}

func (b *HbookBackend) NewH2D(name string, nx int, xlo, xhi float64, ny int, ylo, yhi float64) (Handle, error) {
	if nx <= 0 || ny <= 0 || xhi <= xlo || yhi <= ylo {
		return NoHandle, fmt.Errorf("%w: %q has illegal binning", ErrConfig, name)
	}
	return b.book(hbookEntry{name: name, kind: KindH2D, h2: hbook.NewH2D(nx, xlo, xhi, ny, ylo, yhi)})
}

func (b *HbookBackend) NewPoints(name string, n int) (Handle, error) {
	return b.book(hbookEntry{
		name:  name,
		kind:  KindPoints,
		xys:   make(plotter.XYs, n),
		xerrs: make(plotter.XErrors, n),
		yerrs: make(plotter.YErrors, n),
	})
}

func (b *HbookBackend) Fill(h Handle, x, w float64) { b.entries[h].h1.Fill(x, w) }

func (b *HbookBackend) Fill2D(h Handle, x, y, w float64) { b.entries[h].h2.Fill(x, y, w) }

func (b *HbookBackend) SetPoint(h Handle, i int, p Point) {
	e := &b.entries[h]
	e.xys[i].X = p.X
	e.xys[i].Y = p.Y
	e.xerrs[i].Low = p.XErr
	e.xerrs[i].High = p.XErr
	e.yerrs[i].Low = p.YErr
	e.yerrs[i].High = p.YErr
}

func (b *HbookBackend) Heights(h Handle) []float64 {
	h1 := b.entries[h].h1
	heights := make([]float64, h1.Len())
	for i := range heights {
		_, heights[i] = h1.XY(i)
	}
	return heights
}

func (b *HbookBackend) Range(h Handle) (lo, hi float64) {
	return b.entries[h].lo, b.entries[h].hi
}

func (b *HbookBackend) Points(h Handle) []Point {
	e := &b.entries[h]
	pts := make([]Point, len(e.xys))
	for i := range pts {
		pts[i] = Point{X: e.xys[i].X, Y: e.xys[i].Y, XErr: e.xerrs[i].High, YErr: e.yerrs[i].High}
	}
	return pts
}

// Lookup returns the handle booked under name.
func (b *HbookBackend) Lookup(name string) (Handle, bool) {
	h, ok := b.byName[name]
	return h, ok
}

// Len returns the number of booked objects. Handles run from 0 to Len()-1.
func (b *HbookBackend) Len() int { return len(b.entries) }

func (b *HbookBackend) Name(h Handle) string { return b.entries[h].name }

func (b *HbookBackend) Kind(h Handle) Kind { return b.entries[h].kind }

func (b *HbookBackend) H1D(h Handle) *hbook.H1D { return b.entries[h].h1 }

func (b *HbookBackend) H2D(h Handle) *hbook.H2D { return b.entries[h].h2 }

// XYs returns the plotter view of a point set.
func (b *HbookBackend) XYs(h Handle) (plotter.XYs, plotter.XErrors, plotter.YErrors) {
	e := &b.entries[h]
	return e.xys, e.xerrs, e.yerrs
}
