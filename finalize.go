package lcfiplot

import (
	"errors"
	"path"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Results is what a job produces besides the booked histograms.
type Results struct {
	Events            int
	EventsPassingCuts int

	// Curves maps the name of every derived point set to its handle.
	Curves map[string]Handle

	ChargeConfusion ChargeConfusion
	TrackVertex     TrackVertexTable

	// Tuple is nil unless the job was configured to make one.
	Tuple *Tuple
}

// Finalize derives every curve from the accumulated histograms. Only the
// first call does any work; later calls return the same results. No event
// may be processed afterwards.
func (p *Processor) Finalize() (*Results, error) {
	if p.results != nil {
		return p.results, nil
	}
	if p.state == Uninitialized {
		return nil, ErrNotInitialized
	}
	r := &Results{
		Events:            p.nEvents,
		EventsPassingCuts: p.nPassed,
		Curves:            make(map[string]Handle),
		ChargeConfusion:   p.confusion,
		TrackVertex:       p.trackTable,
		Tuple:             p.tuple,
	}
	steps := []func(*Results) error{
		p.CalculateEfficiencyPurityPlots,
		p.CalculateIntegralAndBackgroundPlots,
		p.CreateVertexChargeLeakagePlot,
	}
	if p.cfg.MakeAdditionalPlots {
		steps = append(steps, p.CalculateAdditionalPlots)
	}
	for _, step := range steps {
		if err := step(r); err != nil {
			return nil, err
		}
	}
	p.results = r
	p.log.Info("finalized",
		zap.Int("events", r.Events),
		zap.Int("passing_cuts", r.EventsPassingCuts),
		zap.Int("curves", len(r.Curves)))
	return r, nil
}

func (r *Results) add(name string, h Handle, err error) error {
	if err != nil {
		return err
	}
	r.Curves[name] = h
	return nil
}

// pair books an XY plot. A shape mismatch only loses this one curve.
func (p *Processor) pair(r *Results, name string, a, b Handle) error {
	h, err := CreateXYPlotFrom(p.backend, name, a, b, CoordY, CoordY)
	if errors.Is(err, ErrShapeMismatch) {
		p.log.Warn("skipping xy plot", zap.String("name", name), zap.Error(err))
		return nil
	}
	return r.add(name, h, err)
}

// CalculateEfficiencyPurityPlots books, for every collection, tag and
// vertex bucket, the efficiency, purity and per-flavour leakage curves and
// the purity-vs-efficiency and leakage-vs-efficiency pairings.
func (p *Processor) CalculateEfficiencyPurityPlots(r *Results) error {
	be := p.backend
	for ci := range p.bank.colls {
		c := &p.bank.colls[ci]
		for t := TagType(0); t < NumTagTypes; t++ {
			sigFlavour := t.Signal()
			for v := VertexBucket(0); v < NumVertexBuckets; v++ {
				dir := path.Join(c.Tag, t.String(), v.String())
				sig := c.tags[sigFlavour][t][v]
				if floats.Sum(be.Heights(sig)) == 0 {
					p.log.Debug("empty signal histogram, efficiency and purity are zero", zap.String("plot", dir))
				}

				effName := path.Join(dir, "Efficiency")
				eff, err := CreateEfficiencyPlot(be, effName, sig)
				if err := r.add(effName, eff, err); err != nil {
					return err
				}
				purName := path.Join(dir, "Purity")
				pur, err := CreatePurityPlot(be, purName, sig, c.background[t][v])
				if err := r.add(purName, pur, err); err != nil {
					return err
				}
				if err := p.pair(r, path.Join(dir, "PurityVsEfficiency"), eff, pur); err != nil {
					return err
				}

				bgName := path.Join(dir, "Leakage", "Background")
				bg, err := CreateLeakageRatePlot(be, bgName, c.background[t][v])
				if err := r.add(bgName, bg, err); err != nil {
					return err
				}
				for f := Flavour(0); f < NumFlavours; f++ {
					if f == sigFlavour {
						continue
					}
					name := path.Join(dir, "Leakage", f.String()+"Jets")
					leak, err := CreateLeakageRatePlot(be, name, c.tags[f][t][v])
					if err := r.add(name, leak, err); err != nil {
						return err
					}
					if err := p.pair(r, path.Join(dir, f.String()+"LeakageVsEfficiency"), eff, leak); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// CalculateIntegralAndBackgroundPlots fills the integral histograms from
// the tag-score histograms and books the running background sums.
func (p *Processor) CalculateIntegralAndBackgroundPlots(r *Results) error {
	be := p.backend
	for ci := range p.bank.colls {
		c := &p.bank.colls[ci]
		for t := TagType(0); t < NumTagTypes; t++ {
			for v := VertexBucket(0); v < NumVertexBuckets; v++ {
				for f := Flavour(0); f < NumFlavours; f++ {
					CreateIntegralHistogram(be, c.tags[f][t][v], c.integral[f][t][v])
				}
				name := path.Join(c.Tag, t.String(), "Background", v.String(), "IntegralPlot")
				h, err := CreateIntegralPlot(be, name, c.background[t][v])
				if err := r.add(name, h, err); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// CreateVertexChargeLeakagePlot books the vertex-charge leakage rate per
// |cos(theta)| bin for both hypotheses and fills the leakage histograms.
func (p *Processor) CreateVertexChargeLeakagePlot(r *Results) error {
	be := p.backend
	centres := binCentres(NumJetAngleBins, 0, 1)
	for h := Hypothesis(0); h < NumHypotheses; h++ {
		ys := make([]float64, NumJetAngleBins)
		errs := make([]float64, NumJetAngleBins)
		for a := range ys {
			rate, e, ok := p.confusion.LeakageAt(h, a)
			if !ok {
				continue
			}
			ys[a], errs[a] = rate, e
			if rate > 0 {
				be.Fill(p.bank.vertexCharge.leakage[h], centres[a], rate)
			}
		}
		name := path.Join("VertexCharge", h.String(), "LeakageRateVsCosTheta")
		hd, err := curve(be, name, centres, ys, errs)
		if err := r.add(name, hd, err); err != nil {
			return err
		}
	}
	return nil
}

// CalculateAdditionalPlots books the vertex-finding efficiency, jets with
// two or more vertices over all jets, against the true decay length.
func (p *Processor) CalculateAdditionalPlots(r *Results) error {
	for ci := range p.bank.colls {
		c := &p.bank.colls[ci]
		for f := FlavourB; f <= FlavourC; f++ {
			name := path.Join(c.Tag, "DecayLength", f.String()+"Jets", "VertexFindingEfficiency")
			h, err := CreateEfficiencyPlot2(p.backend, name, c.decayLengthAll[f], c.decayLengthMany[f])
			if err := r.add(name, h, err); err != nil {
				return err
			}
		}
	}
	return nil
}
