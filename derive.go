package lcfiplot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// reverseCumulative returns rc with rc[i] = sum of h[i:]. It has one more
// entry than h: rc[len(h)] is the (empty) sum past the last bin.
func reverseCumulative(h []float64) []float64 {
	rc := make([]float64, len(h)+1)
	for i := len(h) - 1; i >= 0; i-- {
		rc[i] = rc[i+1] + h[i]
	}
	return rc
}

func binomialError(ratio, n float64) float64 {
	if n <= 0 || ratio <= 0 || ratio >= 1 {
		return 0
	}
	return math.Sqrt(ratio * (1 - ratio) / n)
}

// CalculateTagEfficiency returns, for every bin i, the fraction of the
// signal at or above bin i. An empty signal yields zeros.
func CalculateTagEfficiency(signal []float64) (eff, errs []float64) {
	rc := reverseCumulative(signal)
	total := rc[0]
	eff = make([]float64, len(signal))
	errs = make([]float64, len(signal))
	if total <= 0 {
		return eff, errs
	}
	for i := range eff {
		eff[i] = rc[i] / total
		errs[i] = binomialError(eff[i], total)
	}
	return eff, errs
}

// CalculateTagPurity returns, for every bin i, signal/(signal+background)
// above the cut at bin i. Bins where nothing passes the cut are zero.
func CalculateTagPurity(signal, background []float64) (purity, errs []float64, err error) {
	if len(signal) != len(background) {
		return nil, nil, fmt.Errorf("%w: signal has %d bins, background %d", ErrShapeMismatch, len(signal), len(background))
	}
	rs := reverseCumulative(signal)
	rb := reverseCumulative(background)
	purity = make([]float64, len(signal))
	errs = make([]float64, len(signal))
	for i := range purity {
		all := rs[i] + rb[i]
		if all <= 0 {
			continue
		}
		purity[i] = rs[i] / all
		errs[i] = binomialError(purity[i], all)
	}
	return purity, errs, nil
}

// CalculateLeakage returns the absolute number of background entries at
// or above every bin, with Poisson errors.
func CalculateLeakage(background []float64) (count, errs []float64) {
	rc := reverseCumulative(background)
	count = rc[:len(background)]
	errs = make([]float64, len(count))
	for i, n := range count {
		errs[i] = math.Sqrt(math.Max(n, 0))
	}
	return count, errs
}

// CalculateIntegral returns the running sum of h from the first bin up to
// and including every bin, with Poisson errors.
func CalculateIntegral(h []float64) (sum, errs []float64) {
	sum = floats.CumSum(make([]float64, len(h)), h)
	errs = make([]float64, len(sum))
	for i, n := range sum {
		errs[i] = math.Sqrt(math.Max(n, 0))
	}
	return sum, errs
}

// CalculateRatio divides pass by all bin by bin with binomial errors. Bins
// with an empty denominator are zero.
func CalculateRatio(pass, all []float64) (ratio, errs []float64, err error) {
	if len(pass) != len(all) {
		return nil, nil, fmt.Errorf("%w: numerator has %d bins, denominator %d", ErrShapeMismatch, len(pass), len(all))
	}
	ratio = make([]float64, len(pass))
	errs = make([]float64, len(pass))
	for i := range ratio {
		if all[i] <= 0 {
			continue
		}
		ratio[i] = pass[i] / all[i]
		errs[i] = binomialError(ratio[i], all[i])
	}
	return ratio, errs, nil
}

// Coord selects one coordinate of a point.
type Coord int

const (
	CoordX Coord = iota
	CoordY
)

func (c Coord) of(p Point) (v, err float64) {
	if c == CoordX {
		return p.X, p.XErr
	}
	return p.Y, p.YErr
}

// CreateXYPlot pairs two point sets index by index: coordinate c0 of a
// becomes x and coordinate c1 of b becomes y. Point sets of different
// length are an error.
func CreateXYPlot(a, b []Point, c0, c1 Coord) ([]Point, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d and %d points", ErrShapeMismatch, len(a), len(b))
	}
	xy := make([]Point, len(a))
	for i := range a {
		xy[i].X, xy[i].XErr = c0.of(a[i])
		xy[i].Y, xy[i].YErr = c1.of(b[i])
	}
	return xy, nil
}

// binLowEdges returns the lower edge of every bin of n equal bins on
// [lo, hi). A point of a cut-based curve sits at its cut value.
func binLowEdges(n int, lo, hi float64) []float64 {
	edges := make([]float64, n)
	w := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + float64(i)*w
	}
	return edges
}

func binCentres(n int, lo, hi float64) []float64 {
	c := binLowEdges(n, lo, hi)
	w := (hi - lo) / float64(n)
	for i := range c {
		c[i] += w / 2
	}
	return c
}

// curve books a point set named name and stores xs/ys/errs in it.
func curve(be Backend, name string, xs, ys, errs []float64) (Handle, error) {
	h, err := be.NewPoints(name, len(ys))
	if err != nil {
		return NoHandle, err
	}
	for i := range ys {
		be.SetPoint(h, i, Point{X: xs[i], Y: ys[i], YErr: errs[i]})
	}
	return h, nil
}

// CreateEfficiencyPlot books the tag efficiency of a signal histogram as
// a function of the cut.
func CreateEfficiencyPlot(be Backend, name string, signal Handle) (Handle, error) {
	heights := be.Heights(signal)
	lo, hi := be.Range(signal)
	eff, errs := CalculateTagEfficiency(heights)
	return curve(be, name, binLowEdges(len(heights), lo, hi), eff, errs)
}

// CreatePurityPlot books the tag purity as a function of the cut.
func CreatePurityPlot(be Backend, name string, signal, background Handle) (Handle, error) {
	s := be.Heights(signal)
	lo, hi := be.Range(signal)
	pur, errs, err := CalculateTagPurity(s, be.Heights(background))
	if err != nil {
		return NoHandle, err
	}
	return curve(be, name, binLowEdges(len(s), lo, hi), pur, errs)
}

// CreateLeakageRatePlot books the number of background jets passing the
// cut as a function of the cut.
func CreateLeakageRatePlot(be Backend, name string, background Handle) (Handle, error) {
	heights := be.Heights(background)
	lo, hi := be.Range(background)
	n, errs := CalculateLeakage(heights)
	return curve(be, name, binLowEdges(len(heights), lo, hi), n, errs)
}

// CreateIntegralPlot books the forward running sum of h as a point set.
func CreateIntegralPlot(be Backend, name string, h Handle) (Handle, error) {
	heights := be.Heights(h)
	lo, hi := be.Range(h)
	sum, errs := CalculateIntegral(heights)
	return curve(be, name, binCentres(len(heights), lo, hi), sum, errs)
}

// CreateEfficiencyPlot2 books pass/all per bin. A point set rather than a
// histogram division, so the errors are binomial.
func CreateEfficiencyPlot2(be Backend, name string, all, pass Handle) (Handle, error) {
	a := be.Heights(all)
	lo, hi := be.Range(all)
	r, errs, err := CalculateRatio(be.Heights(pass), a)
	if err != nil {
		return NoHandle, err
	}
	return curve(be, name, binCentres(len(a), lo, hi), r, errs)
}

// CreateIntegralHistogram fills dst, which must share the binning of src,
// with the forward running sum of src.
//
// THE ERRORS OF dst ARE WRONG: each bin is a single fill weighted with the
// running sum, so its error is the sum itself rather than its square root.
// Use CreateIntegralPlot when the errors matter.
func CreateIntegralHistogram(be Backend, src, dst Handle) {
	heights := be.Heights(src)
	lo, hi := be.Range(src)
	sum, _ := CalculateIntegral(heights)
	for i, x := range binCentres(len(heights), lo, hi) {
		if sum[i] != 0 {
			be.Fill(dst, x, sum[i])
		}
	}
}

// CreateXYPlotFrom books the pairing of two booked point sets.
func CreateXYPlotFrom(be Backend, name string, a, b Handle, c0, c1 Coord) (Handle, error) {
	xy, err := CreateXYPlot(be.Points(a), be.Points(b), c0, c1)
	if err != nil {
		return NoHandle, err
	}
	h, err := be.NewPoints(name, len(xy))
	if err != nil {
		return NoHandle, err
	}
	for i, p := range xy {
		be.SetPoint(h, i, p)
	}
	return h, nil
}
