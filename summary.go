package lcfiplot

import (
	"io"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// Summary is the machine-readable digest of a job.
type Summary struct {
	Events            int                   `yaml:"events"`
	EventsPassingCuts int                   `yaml:"events_passing_cuts"`
	WorkingPoints     []WorkingPoint        `yaml:"working_points"`
	VertexCharge      []VertexChargeSummary `yaml:"vertex_charge"`
	TrackVertex       []TrackVertexRow      `yaml:"track_vertex,omitempty"`
}

// WorkingPoint is the tag performance at the configured NN cut, all vertex
// multiplicities together.
type WorkingPoint struct {
	Collection    string  `yaml:"collection"`
	Tag           string  `yaml:"tag"`
	Cut           float64 `yaml:"cut"`
	Efficiency    float64 `yaml:"efficiency"`
	EfficiencyErr float64 `yaml:"efficiency_err"`
	Purity        float64 `yaml:"purity"`
	PurityErr     float64 `yaml:"purity_err"`
}

type VertexChargeSummary struct {
	Hypothesis string `yaml:"hypothesis"`
	// Counts maps true charge bucket to reconstructed sign to jets.
	Counts     map[string]map[string]uint64 `yaml:"counts"`
	Leakage    float64                      `yaml:"leakage"`
	LeakageErr float64                      `yaml:"leakage_err"`
}

// TrackVertexRow is the true-origin make-up of the tracks at one vertex
// position of one jet category.
type TrackVertexRow struct {
	Hypothesis string             `yaml:"hypothesis"`
	Vertices   string             `yaml:"vertices"`
	Position   string             `yaml:"position"`
	Fractions  map[string]float64 `yaml:"fractions"`
}

func cutOf(cfg *Config, t TagType) float64 {
	if t == BTag {
		return cfg.BTagNNCut
	}
	return cfg.CTagNNCut
}

// pointAt returns the point of a cut-indexed curve, X ascending, whose bin
// contains cut.
func pointAt(pts []Point, cut float64) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].X > cut+1e-9 }) - 1
	if i < 0 {
		i = 0
	}
	return pts[i], true
}

// NewSummary digests the results of a finalized processor.
func NewSummary(cfg *Config, res *Results, be Backend) *Summary {
	s := &Summary{Events: res.Events, EventsPassingCuts: res.EventsPassingCuts}

	for _, coll := range cfg.FlavourTagCollections {
		for t := TagType(0); t < NumTagTypes; t++ {
			dir := path.Join(coll, t.String(), AnyVertex.String())
			wp := WorkingPoint{Collection: coll, Tag: t.String(), Cut: cutOf(cfg, t)}
			if h, ok := res.Curves[path.Join(dir, "Efficiency")]; ok {
				if pt, ok := pointAt(be.Points(h), wp.Cut); ok {
					wp.Efficiency, wp.EfficiencyErr = pt.Y, pt.YErr
				}
			}
			if h, ok := res.Curves[path.Join(dir, "Purity")]; ok {
				if pt, ok := pointAt(be.Points(h), wp.Cut); ok {
					wp.Purity, wp.PurityErr = pt.Y, pt.YErr
				}
			}
			s.WorkingPoints = append(s.WorkingPoints, wp)
		}
	}

	cc := &res.ChargeConfusion
	for h := Hypothesis(0); h < NumHypotheses; h++ {
		vc := VertexChargeSummary{Hypothesis: h.String(), Counts: make(map[string]map[string]uint64)}
		for t := ChargeBucket(0); t < NumChargeBuckets; t++ {
			row := make(map[string]uint64, NumSigns)
			for sg := Sign(0); sg < NumSigns; sg++ {
				row[sg.String()] = cc.Count(h, t, sg)
			}
			vc.Counts[t.String()] = row
		}
		vc.Leakage, vc.LeakageErr, _ = cc.Leakage(h)
		s.VertexCharge = append(s.VertexCharge, vc)
	}

	tv := &res.TrackVertex
	for h := Hypothesis(0); h < NumHypotheses; h++ {
		for _, b := range []VertexBucket{TwoVertices, ThreeOrMoreVertices} {
			for pos := VertexPosition(0); pos < NumVertexPositions; pos++ {
				var n uint64
				fr := make(map[string]float64, NumTrackOrigins)
				for o := TrackOrigin(0); o < NumTrackOrigins; o++ {
					n += tv.Count(h, b, pos, o)
					fr[o.String()] = tv.Fraction(h, b, pos, o)
				}
				if n == 0 {
					continue
				}
				s.TrackVertex = append(s.TrackVertex, TrackVertexRow{
					Hypothesis: h.String(),
					Vertices:   b.String(),
					Position:   pos.String(),
					Fractions:  fr,
				})
			}
		}
	}
	return s
}

func (s *Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
