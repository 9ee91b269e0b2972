package lcfiplot

import "path"

// inputRanges are the plot ranges of the known flavour-tag input
// variables. Unknown variables fall back to defaultInputRange.
var inputRanges = map[string][2]float64{
	"D0Significance1":            {-10, 100},
	"D0Significance2":            {-10, 80},
	"Z0Significance1":            {-10, 100},
	"Z0Significance2":            {-10, 80},
	"JointProbRPhi":              {0, 1},
	"JointProbZ":                 {0, 1},
	"Momentum1":                  {0, 50},
	"Momentum2":                  {0, 50},
	"DecayLengthSignificance":    {0, 100},
	"DecayLength":                {0, 10},
	"PTCorrectedMass":            {0, 10},
	"RawMomentum":                {0, 50},
	"NumTracksInVertices":        {-0.5, 9.5},
	"SecondaryVertexProbability": {0, 1},
	"NumVertices":                {0.5, 5.5},
}

var zoomedInputRanges = map[string][2]float64{
	"D0Significance1": {-10, 20},
	"D0Significance2": {-10, 20},
	"Z0Significance1": {-10, 20},
	"Z0Significance2": {-10, 20},
}

var defaultInputRange = [2]float64{-10, 10}

const (
	numInputBins       = 100
	numDecayLengthBins = 50
	maxDecayLength     = 10
)

// collectionLayout is what the first run header tells us about one
// flavour-tag / tag-input collection pair.
type collectionLayout struct {
	Tag        string
	Inputs     string
	TagIndex   [NumTagTypes]int
	NumVertex  int
	DecayLen   int
	InputNames []string
}

// collectionPlots are the accumulators of one collection pair. Handles are
// indexed by flavour, tag and vertex bucket so the per-jet fill path never
// formats or hashes a name.
type collectionPlots struct {
	collectionLayout

	tags       [NumFlavours][NumTagTypes][NumVertexBuckets]Handle
	background [NumTagTypes][NumVertexBuckets]Handle
	integral   [NumFlavours][NumTagTypes][NumVertexBuckets]Handle

	inputs [][NumFlavours]Handle
	zoomed [][NumFlavours]Handle

	// b and c strata only.
	decayLengthAll  [2]Handle
	decayLengthMany [2]Handle
}

type vertexChargePlots struct {
	charge2D     [NumHypotheses]Handle
	vertexCharge [NumHypotheses]Handle
	leakage      [NumHypotheses]Handle
}

type vertexPlots struct {
	distanceFromIP            Handle
	position                  [3]Handle
	primaryPosition           [3]Handle
	primaryPull               [3]Handle
	numberOfSecondaryVertices Handle

	secondaryDecayLength Handle
	secTerDecayLength    Handle
	jetsWithDecayChain   Handle // 2-D, per event
}

type additionalPlots struct {
	recoDecayLength [NumFlavours]Handle
	nVertices       [NumFlavours]Handle
	trueDecayLength [2]Handle
	decayLength2D   [2]Handle

	// b jets whose chain carries a cascade c hadron
	recoDecayLengthBC Handle
	trueDecayLengthBC Handle
}

// Bank books and indexes every accumulator of the job. It is built once,
// from the first run header, and its handle tables never change after.
type Bank struct {
	backend Backend
	nPoints int

	colls        []collectionPlots
	vertexCharge vertexChargePlots
	vertex       vertexPlots
	additional   additionalPlots

	built bool
}

func NewBank(backend Backend, nPoints int) *Bank {
	return &Bank{backend: backend, nPoints: nPoints}
}

func (b *Bank) Backend() Backend { return b.backend }

// Collections returns the number of collection pairs booked.
func (b *Bank) Collections() int { return len(b.colls) }

// Tag returns the tag-score histogram of one (collection, flavour, tag,
// bucket) cell.
func (b *Bank) Tag(coll int, f Flavour, t TagType, v VertexBucket) Handle {
	return b.colls[coll].tags[f][t][v]
}

// Background returns the histogram of tag t scores of jets not of t's
// signal flavour.
func (b *Bank) Background(coll int, t TagType, v VertexBucket) Handle {
	return b.colls[coll].background[t][v]
}

func (b *Bank) Integral(coll int, f Flavour, t TagType, v VertexBucket) Handle {
	return b.colls[coll].integral[f][t][v]
}

func (b *Bank) h1(name string, n int, lo, hi float64) (Handle, error) {
	return b.backend.NewH1D(name, n, lo, hi)
}

// build books every accumulator. A second call is a no-op.
func (b *Bank) build(layouts []collectionLayout, cfg *Config) error {
	if b.built {
		return nil
	}
	b.colls = make([]collectionPlots, len(layouts))
	for i := range layouts {
		b.colls[i].collectionLayout = layouts[i]
		if err := b.createTagPlots(&b.colls[i]); err != nil {
			return err
		}
		if err := b.createFlavourTagInputPlots(&b.colls[i], cfg.ZoomedVariables); err != nil {
			return err
		}
	}
	if err := b.createVertexChargePlots(); err != nil {
		return err
	}
	if err := b.createVertexPlots(); err != nil {
		return err
	}
	if cfg.MakeAdditionalPlots {
		if err := b.createAdditionalPlots(); err != nil {
			return err
		}
	}
	b.built = true
	return nil
}

func (b *Bank) createTagPlots(c *collectionPlots) error {
	var err error
	for t := TagType(0); t < NumTagTypes; t++ {
		for v := VertexBucket(0); v < NumVertexBuckets; v++ {
			for f := Flavour(0); f < NumFlavours; f++ {
				dir := path.Join(c.Tag, t.String(), f.String()+"Jets", v.String())
				if c.tags[f][t][v], err = b.h1(path.Join(dir, "NN"), b.nPoints, 0, 1); err != nil {
					return err
				}
				if c.integral[f][t][v], err = b.h1(path.Join(dir, "Integral"), b.nPoints, 0, 1); err != nil {
					return err
				}
			}
			name := path.Join(c.Tag, t.String(), "Background", v.String(), "NN")
			if c.background[t][v], err = b.h1(name, b.nPoints, 0, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Bank) createFlavourTagInputPlots(c *collectionPlots, zoomedVars []string) error {
	c.inputs = make([][NumFlavours]Handle, len(c.InputNames))
	c.zoomed = make([][NumFlavours]Handle, len(c.InputNames))
	var err error
	for i, name := range c.InputNames {
		r, ok := inputRanges[name]
		if !ok {
			r = defaultInputRange
		}
		zr, zoomed := zoomedInputRanges[name]
		zoomed = zoomed && indexOf(zoomedVars, name) >= 0
		for f := Flavour(0); f < NumFlavours; f++ {
			dir := path.Join(c.Inputs, f.String()+"Jets")
			if c.inputs[i][f], err = b.h1(path.Join(dir, name), numInputBins, r[0], r[1]); err != nil {
				return err
			}
			c.zoomed[i][f] = NoHandle
			if zoomed {
				if c.zoomed[i][f], err = b.h1(path.Join(dir, "Zoomed", name), numInputBins, zr[0], zr[1]); err != nil {
					return err
				}
			}
		}
	}
	for f := 0; f < 2; f++ {
		c.decayLengthAll[f] = NoHandle
		c.decayLengthMany[f] = NoHandle
	}
	return nil
}

func (b *Bank) createVertexChargePlots() error {
	var err error
	for h := Hypothesis(0); h < NumHypotheses; h++ {
		dir := path.Join("VertexCharge", h.String())
		if b.vertexCharge.charge2D[h], err = b.backend.NewH2D(path.Join(dir, "TrueChargeVsVertexCharge"), 5, -2.5, 2.5, 5, -2.5, 2.5); err != nil {
			return err
		}
		if b.vertexCharge.vertexCharge[h], err = b.h1(path.Join(dir, "VertexCharge"), 11, -5.5, 5.5); err != nil {
			return err
		}
		if b.vertexCharge.leakage[h], err = b.h1(path.Join(dir, "LeakageRate"), NumJetAngleBins, 0, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bank) createVertexPlots() error {
	var err error
	vp := &b.vertex
	if vp.distanceFromIP, err = b.h1("Vertex/DistanceFromIP", 100, 0, 20); err != nil {
		return err
	}
	if vp.numberOfSecondaryVertices, err = b.h1("Vertex/NumberOfSecondaryVertices", 10, -0.5, 9.5); err != nil {
		return err
	}
	if vp.secondaryDecayLength, err = b.h1("Vertex/ReconstructedSecondaryDecayLength", numDecayLengthBins, 0, maxDecayLength); err != nil {
		return err
	}
	if vp.secTerDecayLength, err = b.h1("Vertex/ReconstructedSecTerDecayLength", numDecayLengthBins, 0, maxDecayLength); err != nil {
		return err
	}
	if vp.jetsWithDecayChain, err = b.backend.NewH2D("Vertex/JetsWithDecayChainVsJets", 7, -0.5, 6.5, 7, -0.5, 6.5); err != nil {
		return err
	}
	for i, axis := range []string{"X", "Y", "Z"} {
		if vp.position[i], err = b.h1("Vertex/Position"+axis, 100, -20, 20); err != nil {
			return err
		}
		if vp.primaryPosition[i], err = b.h1("Vertex/PrimaryPosition"+axis, 100, -0.05, 0.05); err != nil {
			return err
		}
		if vp.primaryPull[i], err = b.h1("Vertex/PrimaryPull"+axis, 100, -5, 5); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bank) createAdditionalPlots() error {
	var err error
	ap := &b.additional
	for f := Flavour(0); f < NumFlavours; f++ {
		dir := path.Join("Additional", f.String()+"Jets")
		if ap.recoDecayLength[f], err = b.h1(path.Join(dir, "RecoDecayLength"), numDecayLengthBins, 0, maxDecayLength); err != nil {
			return err
		}
		if ap.nVertices[f], err = b.h1(path.Join(dir, "NumberOfVertices"), 6, -0.5, 5.5); err != nil {
			return err
		}
	}
	if ap.recoDecayLengthBC, err = b.h1("Additional/BCJets/RecoDecayLength", numDecayLengthBins, 0, maxDecayLength); err != nil {
		return err
	}
	if ap.trueDecayLengthBC, err = b.h1("Additional/BCJets/TrueDecayLength", numDecayLengthBins, 0, maxDecayLength); err != nil {
		return err
	}
	for f := FlavourB; f <= FlavourC; f++ {
		dir := path.Join("Additional", f.String()+"Jets")
		if ap.trueDecayLength[f], err = b.h1(path.Join(dir, "TrueDecayLength"), numDecayLengthBins, 0, maxDecayLength); err != nil {
			return err
		}
		ap.decayLength2D[f], err = b.backend.NewH2D(path.Join(dir, "TrueVsRecoDecayLength"),
			numDecayLengthBins, 0, maxDecayLength, numDecayLengthBins, 0, maxDecayLength)
		if err != nil {
			return err
		}
		for i := range b.colls {
			c := &b.colls[i]
			cdir := path.Join(c.Tag, "DecayLength", f.String()+"Jets")
			if c.decayLengthAll[f], err = b.h1(path.Join(cdir, "All"), numDecayLengthBins, 0, maxDecayLength); err != nil {
				return err
			}
			if c.decayLengthMany[f], err = b.h1(path.Join(cdir, "TwoOrMoreVertices"), numDecayLengthBins, 0, maxDecayLength); err != nil {
				return err
			}
		}
	}
	return nil
}
