package lcfiplot

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// lastScore is the largest value inside the [0, 1) score axis; a score of
// exactly one is filled there rather than into the overflow.
var lastScore = math.Nextafter(1, 0)

// tagScore reads element idx of a tag vector. Scores outside [0, 1] or NaN
// are invalid.
func tagScore(vec []float32, idx int) (float64, bool) {
	if idx < 0 || idx >= len(vec) {
		return 0, false
	}
	s := float64(vec[idx])
	if math.IsNaN(s) || s < 0 || s > 1 {
		return 0, false
	}
	if s == 1 {
		s = lastScore
	}
	return s, true
}

func hypothesisOf(f Flavour) (Hypothesis, bool) {
	switch f {
	case FlavourB:
		return BHypothesis, true
	case FlavourC:
		return CHypothesis, true
	}
	return 0, false
}

func (p *Processor) numVertex(evt *Event, coll, jet int) (int, bool) {
	c := &p.bank.colls[coll]
	return FindNumVertex(evt, jet, c.Inputs, c.NumVertex)
}

// FillTagPlots fills the tag-score histograms of one jet for one
// collection: once in the jet's vertex bucket and once in AnyVertex, plus
// the background histograms of every tag the jet's flavour is not the
// signal of.
func (p *Processor) FillTagPlots(evt *Event, coll, jet int, f Flavour) {
	if f == FlavourUndefined {
		return
	}
	c := &p.bank.colls[coll]
	nv, ok := p.numVertex(evt, coll, jet)
	if !ok {
		p.log.Debug("jet without vertex count", zap.Int("event", evt.Number), zap.Int("jet", jet), zap.String("collection", c.Inputs))
		return
	}
	bucket := BucketVertices(nv)
	vec, _ := evt.Vector(c.Tag, jet)
	be := p.backend
	for t := TagType(0); t < NumTagTypes; t++ {
		score, ok := tagScore(vec, c.TagIndex[t])
		if !ok {
			continue
		}
		be.Fill(c.tags[f][t][bucket], score, 1)
		be.Fill(c.tags[f][t][AnyVertex], score, 1)
		if f != t.Signal() {
			be.Fill(c.background[t][bucket], score, 1)
			be.Fill(c.background[t][AnyVertex], score, 1)
		}
	}
}

// FillInputsPlots fills the raw tag-input distributions of one jet,
// split by true flavour.
func (p *Processor) FillInputsPlots(evt *Event, coll, jet int, f Flavour) {
	if f == FlavourUndefined {
		return
	}
	c := &p.bank.colls[coll]
	vec, _ := evt.Vector(c.Inputs, jet)
	for i := range c.inputs {
		if i >= len(vec) {
			break
		}
		x := float64(vec[i])
		p.backend.Fill(c.inputs[i][f], x, 1)
		if h := c.zoomed[i][f]; h != NoHandle {
			p.backend.Fill(h, x, 1)
		}
	}
}

func (p *Processor) fillTuple(evt *Event, jet int, f Flavour) {
	c := &p.bank.colls[p.cfg.VertexChargeTagCollection]
	vec, _ := evt.Vector(c.Inputs, jet)
	p.tuple.add(evt.Number, jet, f, vec)
}

// FillVertexChargePlots fills the vertex-charge plots and counters for
// true b-jets passing the b-tag cut and true c-jets passing the c-tag cut.
// The cut uses the designated collection's scores.
func (p *Processor) FillVertexChargePlots(evt *Event, jet int, f Flavour) {
	h, ok := hypothesisOf(f)
	if !ok {
		return
	}
	c := &p.bank.colls[p.cfg.VertexChargeTagCollection]
	vec, _ := evt.Vector(c.Tag, jet)

	var (
		tag     TagType
		nnCut   float64
		qColl   string
		qCut    float64
		findQVx func(*Event, int, string, float64) (int, bool)
	)
	if h == BHypothesis {
		tag, nnCut, qColl, qCut, findQVx = BTag, p.cfg.BTagNNCut, p.cfg.BVertexChargeCollection, p.cfg.VertexCharge.BCut, FindBQVtx
	} else {
		tag, nnCut, qColl, qCut, findQVx = CTag, p.cfg.CTagNNCut, p.cfg.CVertexChargeCollection, p.cfg.VertexCharge.CCut, FindCQVtx
	}
	if qColl == "" {
		return
	}
	score, ok := tagScore(vec, c.TagIndex[tag])
	if !ok || score <= nnCut {
		return
	}
	trueQ, ok := FindTrueJetHadronCharge(evt, jet, p.truth)
	if !ok {
		return
	}
	sign, ok := findQVx(evt, jet, qColl, qCut)
	if !ok {
		return
	}
	rawQ, _ := truthValue(evt, jet, qColl, 0)

	be := p.backend
	be.Fill2D(p.bank.vertexCharge.charge2D[h], trueQ, rawQ, 1)
	be.Fill(p.bank.vertexCharge.vertexCharge[h], rawQ, 1)

	_, cosTheta := jetMomentum(&evt.Jets[jet])
	p.confusion.Add(h, AngleBin(cosTheta), BucketCharge(trueQ, p.cfg.ChargeBuckets), SignOf(sign))
}

// FillVertexPlots fills the reconstructed-vertex plots. They describe the
// event as a whole and ignore the jet cuts.
func (p *Processor) FillVertexPlots(evt *Event) {
	vp := &p.bank.vertex
	be := p.backend
	var ip, pv [3]float32
	for _, v := range evt.Vertices {
		if v.Primary {
			pv = v.Pos
			break
		}
	}
	var secondaries [][3]float32
	for _, v := range evt.Vertices {
		if v.Primary {
			sigma := [3]float32{v.Cov[0], v.Cov[2], v.Cov[5]}
			for i := 0; i < 3; i++ {
				be.Fill(vp.primaryPosition[i], float64(v.Pos[i]), 1)
				if evt.HasTruePrimaryVertex && sigma[i] > 0 {
					pull := (float64(v.Pos[i]) - evt.TruePrimaryVertex[i]) / math.Sqrt(float64(sigma[i]))
					be.Fill(vp.primaryPull[i], pull, 1)
				}
			}
			continue
		}
		secondaries = append(secondaries, v.Pos)
		be.Fill(vp.distanceFromIP, float64(CalculateDistance32(v.Pos, ip)), 1)
		for i := 0; i < 3; i++ {
			be.Fill(vp.position[i], float64(v.Pos[i]), 1)
		}
	}
	be.Fill(vp.numberOfSecondaryVertices, float64(len(secondaries)), 1)

	// nearest vertex to the primary is the secondary, the next the tertiary
	if len(secondaries) > 0 {
		sort.Slice(secondaries, func(a, b int) bool {
			return CalculateDistance32(secondaries[a], pv) < CalculateDistance32(secondaries[b], pv)
		})
		be.Fill(vp.secondaryDecayLength, float64(CalculateDistance32(secondaries[0], pv)), 1)
		if len(secondaries) > 1 {
			be.Fill(vp.secTerDecayLength, float64(CalculateDistance32(secondaries[1], secondaries[0])), 1)
		}
	}

	withChain := 0
	for i := range evt.Jets {
		if len(evt.Jets[i].DecayTracks) > 0 {
			withChain++
		}
	}
	be.Fill2D(vp.jetsWithDecayChain, float64(len(evt.Jets)), float64(withChain), 1)
}

// FillAdditionalPlots fills the decay-length and vertex-multiplicity
// plots used for the vertex-finding efficiency.
func (p *Processor) FillAdditionalPlots(evt *Event, jet int, f Flavour) {
	if f == FlavourUndefined {
		return
	}
	ap := &p.bank.additional
	be := p.backend
	designated := p.cfg.VertexChargeTagCollection
	c := &p.bank.colls[designated]

	nv, haveNV := p.numVertex(evt, designated, jet)
	if haveNV {
		be.Fill(ap.nVertices[f], float64(nv), 1)
	}
	recoL, haveReco := truthValue(evt, jet, c.Inputs, c.DecayLen)
	if haveReco {
		be.Fill(ap.recoDecayLength[f], recoL, 1)
	}

	if f == FlavourLight {
		return
	}
	bl, cl := FindTrueJetDecayLength2(&evt.Jets[jet], evt.TruePrimaryVertex)
	if f == FlavourB && cl > 0 {
		be.Fill(ap.trueDecayLengthBC, cl, 1)
		if haveReco {
			be.Fill(ap.recoDecayLengthBC, recoL, 1)
		}
	}
	trueL := bl
	if f == FlavourC {
		trueL = cl
	}
	if trueL <= 0 {
		return
	}
	be.Fill(ap.trueDecayLength[f], trueL, 1)
	if haveReco {
		be.Fill2D(ap.decayLength2D[f], trueL, recoL, 1)
	}
	for coll := range p.bank.colls {
		cp := &p.bank.colls[coll]
		be.Fill(cp.decayLengthAll[f], trueL, 1)
		if n, ok := p.numVertex(evt, coll, jet); ok && n >= 2 {
			be.Fill(cp.decayLengthMany[f], trueL, 1)
		}
	}
}

// FillTrackVertexTable counts the decay-chain tracks of true b and c jets
// with two or more vertices.
func (p *Processor) FillTrackVertexTable(evt *Event, jet int, f Flavour) {
	h, ok := hypothesisOf(f)
	if !ok {
		return
	}
	tracks := evt.Jets[jet].DecayTracks
	if len(tracks) == 0 {
		return
	}
	nv, ok := p.numVertex(evt, p.cfg.VertexChargeTagCollection, jet)
	if !ok {
		return
	}
	bucket := BucketVertices(nv)
	for _, t := range tracks {
		if !p.trackTable.Add(h, bucket, t.Position, t.Origin) {
			return
		}
	}
}
