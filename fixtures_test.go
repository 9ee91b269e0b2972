package lcfiplot

import (
	"fmt"
	"math"
)

// recBackend is a Backend keeping plain arrays, so tests can inspect
// every booking and every fill.
type recBackend struct {
	names  []string
	kinds  []Kind
	lo, hi []float64
	bins   [][]float64
	fills  []int
	out    []int // under- and overflow fills
	pts    [][]Point
	fills2 []int
	byName map[string]Handle
}

func newRecBackend() *recBackend {
	return &recBackend{byName: make(map[string]Handle)}
}

func (b *recBackend) book(name string, k Kind, n int, lo, hi float64) (Handle, error) {
	if _, ok := b.byName[name]; ok {
		return NoHandle, fmt.Errorf("%w: %q booked twice", ErrConfig, name)
	}
	h := Handle(len(b.names))
	b.names = append(b.names, name)
	b.kinds = append(b.kinds, k)
	b.lo = append(b.lo, lo)
	b.hi = append(b.hi, hi)
	b.bins = append(b.bins, make([]float64, n))
	b.fills = append(b.fills, 0)
	b.out = append(b.out, 0)
	b.pts = append(b.pts, nil)
	b.fills2 = append(b.fills2, 0)
	b.byName[name] = h
	return h, nil
}

func (b *recBackend) NewH1D(name string, n int, lo, hi float64) (Handle, error) {
	return b.book(name, KindH1D, n, lo, hi)
}

func (b *recBackend) NewH2D(name string, nx int, xlo, xhi float64, ny int, ylo, yhi float64) (Handle, error) {
	return b.book(name, KindH2D, 0, xlo, xhi)
}

func (b *recBackend) NewPoints(name string, n int) (Handle, error) {
	h, err := b.book(name, KindPoints, 0, 0, 0)
	if err != nil {
		return h, err
	}
	b.pts[h] = make([]Point, n)
	return h, nil
}

func (b *recBackend) Fill(h Handle, x, w float64) {
	if b.kinds[h] != KindH1D {
		panic(fmt.Sprintf("Fill on %s", b.names[h]))
	}
	b.fills[h]++
	n := len(b.bins[h])
	if x < b.lo[h] || x >= b.hi[h] || math.IsNaN(x) {
		b.out[h]++
		return
	}
	i := int((x - b.lo[h]) / (b.hi[h] - b.lo[h]) * float64(n))
	if i >= n {
		i = n - 1
	}
	b.bins[h][i] += w
}

func (b *recBackend) Fill2D(h Handle, x, y, w float64) {
	if b.kinds[h] != KindH2D {
		panic(fmt.Sprintf("Fill2D on %s", b.names[h]))
	}
	b.fills2[h]++
}

func (b *recBackend) SetPoint(h Handle, i int, p Point) { b.pts[h][i] = p }

func (b *recBackend) Heights(h Handle) []float64 {
	return append([]float64(nil), b.bins[h]...)
}

func (b *recBackend) Range(h Handle) (lo, hi float64) { return b.lo[h], b.hi[h] }

func (b *recBackend) Points(h Handle) []Point {
	return append([]Point(nil), b.pts[h]...)
}

// heightsOf returns the bin contents of the histogram called name.
func (b *recBackend) heightsOf(name string) []float64 {
	h, ok := b.byName[name]
	if !ok {
		panic("no histogram " + name)
	}
	return b.Heights(h)
}

func (b *recBackend) fillsOf(name string) int {
	h, ok := b.byName[name]
	if !ok {
		panic("no histogram " + name)
	}
	return b.fills[h] + b.fills2[h]
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

const (
	tagColl    = "FT"
	inputsColl = "FTI"
	truthColl  = "TJF"
	bqColl     = "BQ"
	cqColl     = "CQ"
)

var (
	testTagNames   = []string{"BTag", "CTag", "BCTag"}
	testInputNames = []string{"D0Significance1", "NumVertices", "DecayLength"}
	testTruthNames = []string{"TrueJetFlavour", "TrueHadronCharge", "TruePDGCode", "TruePartonCharge"}
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FlavourTagCollections = []string{tagColl}
	cfg.TagInputsCollections = []string{inputsColl}
	cfg.JetCollection = "Jets"
	cfg.VertexCollection = ""
	cfg.TrueJetFlavourCollection = truthColl
	cfg.BVertexChargeCollection = bqColl
	cfg.CVertexChargeCollection = cqColl
	cfg.NumberOfPoints = 10
	return cfg
}

func testRunHeader(run int) *RunHeader {
	return &RunHeader{
		RunNumber: run,
		VarNames: map[string][]string{
			tagColl:    testTagNames,
			inputsColl: testInputNames,
			truthColl:  testTruthNames,
			bqColl:     {"Charge"},
			cqColl:     {"Charge"},
		},
	}
}

// testJet describes one jet of a synthetic event.
type testJet struct {
	pdg       int     // true hadron PDG code, 0 for light
	charge    float32 // true hadron charge
	bTag      float32
	cTag      float32
	bcTag     float32
	nVertices int
	vtxCharge float32
	cosTheta  float64
	p         float64
}

func (j testJet) flavour() float32 {
	switch GetPDGFlavour(j.pdg) {
	case 5:
		return 5
	case 4:
		return 4
	}
	return 1
}

func makeEvent(number int, jets ...testJet) *Event {
	evt := &Event{Number: number, Vectors: make(map[string][][]float32)}
	for _, j := range jets {
		p := j.p
		if p == 0 {
			p = 40
		}
		sin := math.Sqrt(1 - j.cosTheta*j.cosTheta)
		evt.Jets = append(evt.Jets, Jet{P: [3]float32{float32(p * sin), 0, float32(p * j.cosTheta)}})
		evt.Vectors[tagColl] = append(evt.Vectors[tagColl], []float32{j.bTag, j.cTag, j.bcTag})
		evt.Vectors[inputsColl] = append(evt.Vectors[inputsColl], []float32{3, float32(j.nVertices), 0.5})
		evt.Vectors[truthColl] = append(evt.Vectors[truthColl], []float32{j.flavour(), j.charge, float32(j.pdg), 0})
		evt.Vectors[bqColl] = append(evt.Vectors[bqColl], []float32{j.vtxCharge})
		evt.Vectors[cqColl] = append(evt.Vectors[cqColl], []float32{j.vtxCharge})
	}
	return evt
}
