package lcfiplot

import "math"

// NumJetAngleBins is the number of |cos(theta)| bins of the vertex-charge
// leakage plots.
const NumJetAngleBins = 10

// Hypothesis is the flavour a vertex charge was reconstructed for.
type Hypothesis int

const (
	BHypothesis Hypothesis = iota
	CHypothesis
	NumHypotheses
)

var hypothesisNames = [NumHypotheses]string{"bJet", "cJet"}

func (h Hypothesis) String() string { return hypothesisNames[h] }

// AngleBin maps a jet cos(theta) to its leakage-plot bin.
func AngleBin(cosTheta float64) int {
	bin := int(math.Abs(cosTheta) * NumJetAngleBins)
	if bin >= NumJetAngleBins {
		bin = NumJetAngleBins - 1
	}
	return bin
}

// ChargeConfusion counts jets by true-charge bucket and reconstructed
// vertex-charge sign, per hypothesis and jet angle bin.
type ChargeConfusion struct {
	counts [NumHypotheses][NumJetAngleBins][NumChargeBuckets][NumSigns]uint64
}

func (c *ChargeConfusion) Add(h Hypothesis, angleBin int, t ChargeBucket, s Sign) {
	c.counts[h][angleBin][t][s]++
}

// CountAt is the number of jets in one angle bin with true bucket t
// reconstructed with sign s.
func (c *ChargeConfusion) CountAt(h Hypothesis, angleBin int, t ChargeBucket, s Sign) uint64 {
	return c.counts[h][angleBin][t][s]
}

// TrueAt is the number of jets in one angle bin with true bucket t.
func (c *ChargeConfusion) TrueAt(h Hypothesis, angleBin int, t ChargeBucket) uint64 {
	var n uint64
	for s := Sign(0); s < NumSigns; s++ {
		n += c.counts[h][angleBin][t][s]
	}
	return n
}

// Count is CountAt summed over angle bins.
func (c *ChargeConfusion) Count(h Hypothesis, t ChargeBucket, s Sign) uint64 {
	var n uint64
	for a := 0; a < NumJetAngleBins; a++ {
		n += c.counts[h][a][t][s]
	}
	return n
}

// True is TrueAt summed over angle bins.
func (c *ChargeConfusion) True(h Hypothesis, t ChargeBucket) uint64 {
	var n uint64
	for a := 0; a < NumJetAngleBins; a++ {
		n += c.TrueAt(h, a, t)
	}
	return n
}

func wrongSign(t ChargeBucket, s Sign) bool {
	switch t {
	case TruePlus2, TruePlus:
		return s == RecoMinus
	case TrueMinus, TrueMinus2:
		return s == RecoPlus
	}
	return false
}

// leakage returns the fraction of truly charged jets reconstructed with
// the opposite sign, from the angle bins in [lo, hi).
func (c *ChargeConfusion) leakage(h Hypothesis, lo, hi int) (rate, err float64, ok bool) {
	var wrong, charged uint64
	for a := lo; a < hi; a++ {
		for t := ChargeBucket(0); t < NumChargeBuckets; t++ {
			if !t.Charged() {
				continue
			}
			for s := Sign(0); s < NumSigns; s++ {
				n := c.counts[h][a][t][s]
				charged += n
				if wrongSign(t, s) {
					wrong += n
				}
			}
		}
	}
	if charged == 0 {
		return 0, 0, false
	}
	rate = float64(wrong) / float64(charged)
	return rate, math.Sqrt(rate * (1 - rate) / float64(charged)), true
}

// LeakageAt is the vertex-charge leakage rate in one angle bin. ok is
// false when the bin holds no charged jets.
func (c *ChargeConfusion) LeakageAt(h Hypothesis, angleBin int) (rate, err float64, ok bool) {
	return c.leakage(h, angleBin, angleBin+1)
}

// Leakage is the vertex-charge leakage rate over all angles.
func (c *ChargeConfusion) Leakage(h Hypothesis) (rate, err float64, ok bool) {
	return c.leakage(h, 0, NumJetAngleBins)
}

// TrackVertexTable counts decay-chain tracks of b and c jets with two or
// more vertices by reconstructed vertex position and true origin.
type TrackVertexTable struct {
	counts [NumHypotheses][2][NumVertexPositions][NumTrackOrigins]uint64
}

func tableRow(b VertexBucket) (int, bool) {
	switch b {
	case TwoVertices:
		return 0, true
	case ThreeOrMoreVertices:
		return 1, true
	}
	return 0, false
}

// Add counts one track. Tracks of jets outside the two and three-or-more
// vertex buckets are ignored and Add reports false.
func (t *TrackVertexTable) Add(h Hypothesis, b VertexBucket, pos VertexPosition, o TrackOrigin) bool {
	row, ok := tableRow(b)
	if !ok {
		return false
	}
	t.counts[h][row][pos][o]++
	return true
}

func (t *TrackVertexTable) Count(h Hypothesis, b VertexBucket, pos VertexPosition, o TrackOrigin) uint64 {
	row, ok := tableRow(b)
	if !ok {
		return 0
	}
	return t.counts[h][row][pos][o]
}

// Fraction is the share of tracks at pos that come from origin o, 0 when
// pos holds no tracks.
func (t *TrackVertexTable) Fraction(h Hypothesis, b VertexBucket, pos VertexPosition, o TrackOrigin) float64 {
	var total uint64
	for oo := TrackOrigin(0); oo < NumTrackOrigins; oo++ {
		total += t.Count(h, b, pos, oo)
	}
	if total == 0 {
		return 0
	}
	return float64(t.Count(h, b, pos, o)) / float64(total)
}
