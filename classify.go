package lcfiplot

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Flavour is the true flavour of a jet. Only the first NumFlavours values
// are strata that own histograms.
type Flavour int

const (
	FlavourB Flavour = iota
	FlavourC
	FlavourLight
	NumFlavours
	FlavourUndefined = NumFlavours
)

var flavourNames = [NumFlavours + 1]string{"B", "C", "Light", "Undefined"}

func (f Flavour) String() string { return flavourNames[f] }

// TagType is one of the neural-net outputs of a flavour-tag collection.
type TagType int

const (
	BTag TagType = iota
	CTag
	BCTag
	NumTagTypes
)

var tagNames = [NumTagTypes]string{"BTag", "CTag", "BCTag"}

func (t TagType) String() string { return tagNames[t] }

// Signal is the flavour the tag is trained to select.
func (t TagType) Signal() Flavour {
	if t == BTag {
		return FlavourB
	}
	return FlavourC
}

// VertexBucket is a vertex-multiplicity category. AnyVertex is the
// aggregate of the other three.
type VertexBucket int

const (
	OneVertex VertexBucket = iota
	TwoVertices
	ThreeOrMoreVertices
	AnyVertex
	NumVertexBuckets
)

var vertexBucketNames = [NumVertexBuckets]string{"1Vertex", "2Vertices", "3OrMoreVertices", "AnyNumberOfVertices"}

func (b VertexBucket) String() string { return vertexBucketNames[b] }

// BucketVertices collapses a raw vertex count to {1, 2, >=3}. Counts below
// one land in OneVertex: every jet carries at least the IP.
func BucketVertices(n int) VertexBucket {
	switch {
	case n <= 1:
		return OneVertex
	case n == 2:
		return TwoVertices
	default:
		return ThreeOrMoreVertices
	}
}

// ChargeBucket is a five-way partition of a true hadron charge.
type ChargeBucket int

const (
	TruePlus2 ChargeBucket = iota
	TruePlus
	TrueNeutral
	TrueMinus
	TrueMinus2
	NumChargeBuckets
)

var chargeBucketNames = [NumChargeBuckets]string{"truePlus2", "truePlus", "trueNeut", "trueMinus", "trueMinus2"}

func (c ChargeBucket) String() string { return chargeBucketNames[c] }

// Charged reports whether the bucket holds a non-zero charge.
func (c ChargeBucket) Charged() bool { return c != TrueNeutral }

// ChargeThresholds are the magnitudes separating the neutral, single and
// double charge buckets.
type ChargeThresholds struct {
	Single float64 `mapstructure:"single" yaml:"single"`
	Double float64 `mapstructure:"double" yaml:"double"`
}

// BucketCharge partitions q symmetrically about zero.
func BucketCharge(q float64, t ChargeThresholds) ChargeBucket {
	switch {
	case q >= t.Double:
		return TruePlus2
	case q >= t.Single:
		return TruePlus
	case q > -t.Single:
		return TrueNeutral
	case q > -t.Double:
		return TrueMinus
	default:
		return TrueMinus2
	}
}

// Sign is a reconstructed vertex-charge sign category.
type Sign int

const (
	RecoPlus Sign = iota
	RecoNeutral
	RecoMinus
	NumSigns
)

var signNames = [NumSigns]string{"recoPlus", "recoNeut", "recoMinus"}

func (s Sign) String() string { return signNames[s] }

// SignOf maps the +1/0/-1 result of FindBQVtx and FindCQVtx to a Sign.
func SignOf(q int) Sign {
	switch {
	case q > 0:
		return RecoPlus
	case q < 0:
		return RecoMinus
	default:
		return RecoNeutral
	}
}

// TruthLayout holds the element indices of the true-flavour vector. A
// negative index means the variable is not provided.
type TruthLayout struct {
	Collection   string
	Flavour      int
	HadronCharge int
	PDGCode      int
	PartonCharge int
}

func newTruthLayout(coll string, names []string) TruthLayout {
	return TruthLayout{
		Collection:   coll,
		Flavour:      indexOf(names, "TrueJetFlavour"),
		HadronCharge: indexOf(names, "TrueHadronCharge"),
		PDGCode:      indexOf(names, "TruePDGCode"),
		PartonCharge: indexOf(names, "TruePartonCharge"),
	}
}

func truthValue(evt *Event, jet int, coll string, idx int) (float64, bool) {
	if coll == "" || idx < 0 {
		return 0, false
	}
	vec, ok := evt.Vector(coll, jet)
	if !ok || idx >= len(vec) {
		return 0, false
	}
	v := float64(vec[idx])
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// GetPDGFlavour returns the heaviest quark contained in the particle with
// PDG code code, or 0 when code is neither a quark nor a hadron.
func GetPDGFlavour(code int) int {
	if code < 0 {
		code = -code
	}
	code %= 10000
	switch {
	case code > 1000:
		return code / 1000
	case code > 100:
		return (code / 100) % 10
	case code >= 1 && code <= 6:
		return code
	}
	return 0
}

func flavourOfQuark(q int) Flavour {
	switch q {
	case 5:
		return FlavourB
	case 4:
		return FlavourC
	}
	return FlavourLight
}

// FindTrueJetFlavour classifies the jet from the PDG code of its true
// hadron, falling back to the stored flavour code. Jets without truth
// information are FlavourUndefined.
func FindTrueJetFlavour(evt *Event, jet int, t TruthLayout) Flavour {
	if code, ok := FindTrueJetPDGCode(evt, jet, t); ok {
		return flavourOfQuark(GetPDGFlavour(code))
	}
	if f, ok := truthValue(evt, jet, t.Collection, t.Flavour); ok {
		return flavourOfQuark(int(math.Round(f)))
	}
	return FlavourUndefined
}

// FindTrueJetPDGCode returns the PDG code of the hadron producing the jet.
func FindTrueJetPDGCode(evt *Event, jet int, t TruthLayout) (int, bool) {
	v, ok := truthValue(evt, jet, t.Collection, t.PDGCode)
	return int(math.Round(v)), ok
}

// FindTrueJetHadronCharge returns the charge of the hadron producing the jet.
func FindTrueJetHadronCharge(evt *Event, jet int, t TruthLayout) (float64, bool) {
	return truthValue(evt, jet, t.Collection, t.HadronCharge)
}

// FindTrueJetPartonCharge returns the charge of the parton producing the jet.
func FindTrueJetPartonCharge(evt *Event, jet int, t TruthLayout) (float64, bool) {
	return truthValue(evt, jet, t.Collection, t.PartonCharge)
}

// FindBQVtx returns the sign (+1, 0, -1) of the vertex charge reconstructed
// with cuts tuned for b-jets.
func FindBQVtx(evt *Event, jet int, coll string, cut float64) (int, bool) {
	return findQVtx(evt, jet, coll, cut)
}

// FindCQVtx returns the sign (+1, 0, -1) of the vertex charge reconstructed
// with cuts tuned for c-jets.
func FindCQVtx(evt *Event, jet int, coll string, cut float64) (int, bool) {
	return findQVtx(evt, jet, coll, cut)
}

func findQVtx(evt *Event, jet int, coll string, cut float64) (int, bool) {
	q, ok := truthValue(evt, jet, coll, 0)
	if !ok {
		return 0, false
	}
	switch {
	case q >= cut:
		return 1, true
	case q <= -cut:
		return -1, true
	}
	return 0, true
}

// FindNumVertex returns the number of vertices found in the jet, read
// from element idx of the tag-input collection coll.
func FindNumVertex(evt *Event, jet int, coll string, idx int) (int, bool) {
	v, ok := truthValue(evt, jet, coll, idx)
	if !ok || v < 0 {
		return 0, false
	}
	return int(math.Round(v)), true
}

// FindTrueJetDecayLength returns the decay length of every hadron in the
// jet's decay chain, and separately those of the b and c hadrons.
func FindTrueJetDecayLength(j *Jet, ip [3]float64) (all, b, c []float64) {
	for _, h := range j.Hadrons {
		l := CalculateDistance(ip, h.EndPoint)
		all = append(all, l)
		switch flavourOfQuark(GetPDGFlavour(h.PDG)) {
		case FlavourB:
			b = append(b, l)
		case FlavourC:
			c = append(c, l)
		}
	}
	return all, b, c
}

// FindTrueJetDecayLength2 returns the decay length of the most displaced b
// and c hadrons in the jet's decay chain, 0 when there is none.
func FindTrueJetDecayLength2(j *Jet, ip [3]float64) (b, c float64) {
	_, bs, cs := FindTrueJetDecayLength(j, ip)
	if len(bs) > 0 {
		b = floats.Max(bs)
	}
	if len(cs) > 0 {
		c = floats.Max(cs)
	}
	return b, c
}

// CalculateDistance is the Euclidean distance between two points.
func CalculateDistance(pos1, pos2 [3]float64) float64 {
	return floats.Distance(pos1[:], pos2[:], 2)
}

// CalculateDistance32 is CalculateDistance in single precision, for the
// reconstructed geometry.
func CalculateDistance32(pos1, pos2 [3]float32) float32 {
	var sum float32
	for i := range pos1 {
		d := pos1[i] - pos2[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
