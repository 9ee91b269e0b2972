package lcfiplot

// Handle is an opaque reference to a histogram or point set owned by a
// Backend.
type Handle int

// NoHandle marks an accumulator that was not booked.
const NoHandle Handle = -1

// Point is one entry of a derived curve.
type Point struct {
	X, Y       float64
	XErr, YErr float64
}

// Kind is the type of object behind a Handle.
type Kind int

const (
	KindH1D Kind = iota
	KindH2D
	KindPoints
)

// Backend owns the histogram and point-set storage. The processor only
// holds handles into it, so tests can substitute a recording double.
// Names are unique; booking an existing name is an error.
type Backend interface {
	NewH1D(name string, n int, lo, hi float64) (Handle, error)
	NewH2D(name string, nx int, xlo, xhi float64, ny int, ylo, yhi float64) (Handle, error)
	NewPoints(name string, n int) (Handle, error)

	Fill(h Handle, x, w float64)
	Fill2D(h Handle, x, y, w float64)
	SetPoint(h Handle, i int, p Point)

	// Heights returns the in-range bin contents of a 1-D histogram.
	Heights(h Handle) []float64
	// Range returns the axis limits of a 1-D histogram.
	Range(h Handle) (lo, hi float64)
	Points(h Handle) []Point
}
