package lcfiplot

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/lcio"
)

func lcioConfig() Config {
	cfg := testConfig()
	cfg.JetCollection = "Jets"
	cfg.VertexCollection = "Vertices"
	cfg.MCParticleCollection = "MCParticle"
	cfg.ZVRESDecayChainCollection = "Chains"
	cfg.TrueTracksToMCPCollection = "Rels"
	return cfg
}

func floatVec(rows ...[]float32) *lcio.FloatVec {
	return &lcio.FloatVec{Elements: rows}
}

// lcioEvent builds a two-jet event: a B+ -> D0 chain along the first jet
// (z axis) and nothing along the second (x axis). Decay points are the
// production vertices of the daughters.
func lcioEvent() (*lcio.Event, map[string]*lcio.McParticle) {
	evt := &lcio.Event{RunNumber: 1, EventNumber: 12}
	evt.Add("Jets", &lcio.RecParticleContainer{Parts: []lcio.RecParticle{
		{P: [3]float32{0, 0, 40}},
		{P: [3]float32{40, 0, 0}},
	}})
	evt.Add(tagColl, floatVec([]float32{0.875, 0.125, 0.375}, []float32{0.125, 0.25, 0.625}))
	evt.Add(inputsColl, floatVec([]float32{3, 2, 0.5}, []float32{1, 1, 0.1}))
	evt.Add(truthColl, floatVec([]float32{5, 1, 521, 0}, []float32{1, 0, 0, 0}))
	evt.Add(bqColl, floatVec([]float32{0.75}, []float32{0}))
	evt.Add(cqColl, floatVec([]float32{0.75}, []float32{0}))
	evt.Add("Vertices", &lcio.VertexContainer{Vtxs: []lcio.Vertex{
		{Primary: 1, Pos: [3]float32{0, 0, 0.01}, Cov: [6]float32{1e-6, 0, 1e-6, 0, 0, 1e-6}},
		{Pos: [3]float32{0, 0, 1}},
	}})

	mc := &lcio.McParticleContainer{Particles: make([]lcio.McParticle, 5)}
	z, b, d, pi1, pi2 := &mc.Particles[0], &mc.Particles[1], &mc.Particles[2], &mc.Particles[3], &mc.Particles[4]
	*z = lcio.McParticle{PDG: 23, Vertex: [3]float64{0, 0, 0.01}, Children: []*lcio.McParticle{b, pi2}}
	*b = lcio.McParticle{PDG: 521, P: [3]float64{0, 0.5, 30}, Parents: []*lcio.McParticle{z}, Children: []*lcio.McParticle{d}}
	*d = lcio.McParticle{PDG: -421, P: [3]float64{0, 1, 20}, Vertex: [3]float64{0, 0, 3}, Parents: []*lcio.McParticle{b}, Children: []*lcio.McParticle{pi1}}
	*pi1 = lcio.McParticle{PDG: 211, Vertex: [3]float64{0, 0.5, 5}, Parents: []*lcio.McParticle{d}}
	*pi2 = lcio.McParticle{PDG: -211, Parents: []*lcio.McParticle{z}}
	evt.Add("MCParticle", mc)

	pv := &lcio.Vertex{Primary: 1}
	near := &lcio.Vertex{Pos: [3]float32{0, 0, 1}}
	far := &lcio.Vertex{Pos: [3]float32{0, 0, 3}}
	tFar := &lcio.RecParticle{StartVtx: far}
	tPrimary := &lcio.RecParticle{StartVtx: pv}
	tNear := &lcio.RecParticle{StartVtx: near}
	tLone := &lcio.RecParticle{}
	evt.Add("Chains", &lcio.RecParticleContainer{Parts: []lcio.RecParticle{
		{Recs: []*lcio.RecParticle{tFar, tPrimary, tNear, tLone}},
		{},
	}})
	evt.Add("Rels", &lcio.RelationContainer{Rels: []lcio.Relation{
		{From: tFar, To: d},
		{From: tPrimary, To: pi2},
		{From: tNear, To: pi1},
	}})

	return evt, map[string]*lcio.McParticle{"B": b, "D": d, "pi1": pi1, "pi2": pi2}
}

func TestEventFromLCIO(t *testing.T) {
	cfg := lcioConfig()
	in, _ := lcioEvent()

	evt, err := EventFromLCIO(in, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 12, evt.Number)
	require.Len(t, evt.Jets, 2)
	assert.Equal(t, [3]float32{0, 0, 40}, evt.Jets[0].P)
	assert.Equal(t, [][]float32{{0.875, 0.125, 0.375}, {0.125, 0.25, 0.625}}, evt.Vectors[tagColl])
	assert.Len(t, evt.Vectors, 5)

	require.Len(t, evt.Vertices, 2)
	assert.True(t, evt.Vertices[0].Primary)
	assert.False(t, evt.Vertices[1].Primary)

	assert.True(t, evt.HasTruePrimaryVertex)
	assert.Equal(t, [3]float64{0, 0, 0.01}, evt.TruePrimaryVertex)

	wantHadrons := []Hadron{
		{PDG: 521, EndPoint: [3]float64{0, 0, 3}},
		{PDG: -421, Vertex: [3]float64{0, 0, 3}, EndPoint: [3]float64{0, 0.5, 5}},
	}
	if diff := cmp.Diff(wantHadrons, evt.Jets[0].Hadrons); diff != "" {
		t.Errorf("decay chain (-want +got):\n%s", diff)
	}
	assert.Empty(t, evt.Jets[1].Hadrons)

	wantTracks := []DecayTrack{
		{Position: Tertiary, Origin: FromB},
		{Position: Primary, Origin: FromLight},
		{Position: Secondary, Origin: FromB},
		{Position: Isolated, Origin: NoMCP},
	}
	if diff := cmp.Diff(wantTracks, evt.Jets[0].DecayTracks); diff != "" {
		t.Errorf("decay tracks (-want +got):\n%s", diff)
	}
	assert.Empty(t, evt.Jets[1].DecayTracks)

	t.Run("processed", func(t *testing.T) {
		cfg := cfg
		cfg.MakeAdditionalPlots = true
		p, be := newTestProcessor(t, cfg)
		require.NoError(t, p.ProcessRunHeader(testRunHeader(1)))
		require.NoError(t, p.ProcessEvent(evt))
		assert.Equal(t, 1.0, be.heightsOf("FT/BTag/BJets/2Vertices/NN")[8])
		assert.Equal(t, 1, be.fillsOf("Vertex/DistanceFromIP"))
		assert.Equal(t, 1, be.fillsOf("Additional/BJets/TrueDecayLength"))

		res, err := p.Finalize()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), res.TrackVertex.Count(BHypothesis, TwoVertices, Tertiary, FromB))
		assert.Equal(t, uint64(1), res.ChargeConfusion.Count(BHypothesis, TruePlus, RecoPlus))
	})
}

func TestHadronEndPointFromDaughter(t *testing.T) {
	mc := &lcio.McParticleContainer{Particles: make([]lcio.McParticle, 3)}
	beam, b, pi := &mc.Particles[0], &mc.Particles[1], &mc.Particles[2]
	*beam = lcio.McParticle{PDG: 23, Children: []*lcio.McParticle{b}}
	*b = lcio.McParticle{PDG: -511, P: [3]float64{0, 0, 10}, Vertex: [3]float64{0, 0, 0.1}, Parents: []*lcio.McParticle{beam}, Children: []*lcio.McParticle{pi}}
	*pi = lcio.McParticle{PDG: 211, Vertex: [3]float64{0.5, 0, 4}, Parents: []*lcio.McParticle{b}}

	evt := &Event{Jets: []Jet{{P: [3]float32{0, 0, 40}}}}
	attachHadrons(evt, mc)
	require.Len(t, evt.Jets[0].Hadrons, 1)
	h := evt.Jets[0].Hadrons[0]
	assert.Equal(t, [3]float64{0, 0, 0.1}, h.Vertex)
	assert.Equal(t, [3]float64{0.5, 0, 4}, h.EndPoint, "a hadron decays where its daughter is produced")

	bl, cl := FindTrueJetDecayLength2(&evt.Jets[0], evt.TruePrimaryVertex)
	assert.InDelta(t, math.Sqrt(0.25+16), bl, 1e-12)
	assert.Zero(t, cl)
}

func TestEventFromLCIOErrors(t *testing.T) {
	cfg := lcioConfig()

	t.Run("no jets", func(t *testing.T) {
		cfg := cfg
		cfg.JetCollection = "Missing"
		in, _ := lcioEvent()
		_, err := EventFromLCIO(in, &cfg)
		assert.ErrorIs(t, err, ErrMissingCollection)
	})

	t.Run("jets of the wrong type", func(t *testing.T) {
		cfg := cfg
		cfg.JetCollection = tagColl
		in, _ := lcioEvent()
		_, err := EventFromLCIO(in, &cfg)
		assert.ErrorIs(t, err, ErrConfig)
		assert.NotErrorIs(t, err, ErrMissingCollection)
	})

	t.Run("vector of the wrong type", func(t *testing.T) {
		cfg := cfg
		cfg.BVertexChargeCollection = "Vertices"
		in, _ := lcioEvent()
		_, err := EventFromLCIO(in, &cfg)
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("no vertices", func(t *testing.T) {
		cfg := cfg
		cfg.VertexCollection = "Missing"
		in, _ := lcioEvent()
		_, err := EventFromLCIO(in, &cfg)
		assert.ErrorIs(t, err, ErrMissingCollection)
	})

	t.Run("optional truth absent", func(t *testing.T) {
		cfg := cfg
		cfg.MCParticleCollection = ""
		cfg.ZVRESDecayChainCollection = "Missing"
		in, _ := lcioEvent()
		evt, err := EventFromLCIO(in, &cfg)
		require.NoError(t, err)
		assert.False(t, evt.HasTruePrimaryVertex)
		assert.Empty(t, evt.Jets[0].Hadrons)
		assert.Empty(t, evt.Jets[0].DecayTracks)
	})
}

func TestRunHeaderFromLCIO(t *testing.T) {
	cfg := lcioConfig()
	rh := &lcio.RunHeader{RunNumber: 7, Params: lcio.Params{Strings: map[string][]string{
		tagColl: testTagNames,
		"Other": {"x"},
	}}}

	evt := &lcio.Event{}
	inputs := floatVec([]float32{1, 2, 3})
	inputs.Params.Strings = map[string][]string{"ParameterNames": testInputNames, "Unrelated": {"y"}}
	evt.Add(inputsColl, inputs)

	got := RunHeaderFromLCIO(rh, evt, &cfg)
	assert.Equal(t, 7, got.RunNumber)
	assert.Equal(t, testTagNames, got.VarNames[tagColl])
	assert.Equal(t, testInputNames, got.VarNames[inputsColl], "names fall back to the collection parameters")
	assert.NotContains(t, got.VarNames, truthColl)
	assert.NotContains(t, got.VarNames, "Other")

	got = RunHeaderFromLCIO(rh, nil, &cfg)
	assert.Len(t, got.VarNames, 1)
}

func TestTrackOrigin(t *testing.T) {
	_, mc := lcioEvent()
	assert.Equal(t, FromB, trackOrigin(mc["pi1"]))
	assert.Equal(t, FromB, trackOrigin(mc["D"]))
	assert.Equal(t, FromLight, trackOrigin(mc["B"]), "a hadron is not its own origin")
	assert.Equal(t, FromLight, trackOrigin(mc["pi2"]))

	ds := &lcio.McParticle{PDG: 431}
	k := &lcio.McParticle{PDG: 321, Parents: []*lcio.McParticle{ds}}
	pi := &lcio.McParticle{PDG: 211, Parents: []*lcio.McParticle{k}}
	assert.Equal(t, FromC, trackOrigin(pi))

	assert.True(t, isHeavyHadron(-511))
	assert.True(t, isHeavyHadron(4122))
	assert.False(t, isHeavyHadron(5), "quarks are not hadrons")
	assert.False(t, isHeavyHadron(321))
}
