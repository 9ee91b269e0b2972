package lcfiplot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPointAt(t *testing.T) {
	pts := []Point{{X: 0, Y: 0}, {X: 0.25, Y: 1}, {X: 0.5, Y: 2}, {X: 0.75, Y: 3}}
	for cut, want := range map[float64]float64{0: 0, 0.3: 1, 0.7: 2, 1: 3, -1: 0} {
		pt, ok := pointAt(pts, cut)
		require.True(t, ok)
		assert.Equal(t, want, pt.Y, "cut %v", cut)
	}
	_, ok := pointAt(nil, 0.5)
	assert.False(t, ok)

	fine := make([]Point, 100)
	for i := range fine {
		fine[i] = Point{X: float64(i) / 100, Y: float64(i)}
	}
	for _, cut := range []float64{0.29, 0.57, 0.58, 0.7, 0.99} {
		pt, ok := pointAt(fine, cut)
		require.True(t, ok)
		assert.InDelta(t, cut, pt.X, 1e-12, "cut %v lands in its own bin", cut)
	}

	// low edges accumulate rounding, 7*0.1 > 0.7
	coarse := make([]Point, 10)
	for i := range coarse {
		coarse[i] = Point{X: float64(i) * 0.1, Y: float64(i)}
	}
	pt, _ := pointAt(coarse, 0.7)
	assert.Equal(t, 7.0, pt.Y)
}

func TestSummary(t *testing.T) {
	cfg := testConfig()
	p, be := newTestProcessor(t, cfg)
	require.NoError(t, p.ProcessRunHeader(testRunHeader(1)))

	evt := makeEvent(0,
		testJet{pdg: 521, charge: 1, bTag: 0.875, nVertices: 2, vtxCharge: -0.75},
		testJet{pdg: -511, charge: 0, bTag: 0.875, nVertices: 1, vtxCharge: 0.75},
		testJet{bTag: 0.125, nVertices: 1},
	)
	evt.Jets[0].DecayTracks = []DecayTrack{{Position: Secondary, Origin: FromB}, {Position: Secondary, Origin: FromC}}
	require.NoError(t, p.ProcessEvent(evt))
	res, err := p.Finalize()
	require.NoError(t, err)

	s := NewSummary(&cfg, res, be)
	assert.Equal(t, 1, s.Events)
	require.Len(t, s.WorkingPoints, 3)
	bwp := s.WorkingPoints[0]
	assert.Equal(t, WorkingPoint{Collection: tagColl, Tag: "BTag", Cut: 0.7, Efficiency: 1, Purity: 1}, bwp)

	require.Len(t, s.VertexCharge, 2)
	assert.Equal(t, "bJet", s.VertexCharge[0].Hypothesis)
	assert.Equal(t, uint64(1), s.VertexCharge[0].Counts["truePlus"]["recoMinus"])
	assert.Equal(t, uint64(1), s.VertexCharge[0].Counts["trueNeut"]["recoPlus"])
	assert.Equal(t, 1.0, s.VertexCharge[0].Leakage)
	assert.Zero(t, s.VertexCharge[1].Leakage)

	require.Len(t, s.TrackVertex, 1)
	assert.Equal(t, TrackVertexRow{
		Hypothesis: "bJet",
		Vertices:   "2Vertices",
		Position:   "Secondary",
		Fractions:  map[string]float64{"bTrack": 0.5, "cTrack": 0.5, "lTrack": 0, "noMCP": 0},
	}, s.TrackVertex[0])

	var buf bytes.Buffer
	require.NoError(t, s.WriteYAML(&buf))
	var back Summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *s, back)
	assert.Contains(t, buf.String(), "events_passing_cuts: 1\n")
}
