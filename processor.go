package lcfiplot

import (
	"fmt"

	"go.uber.org/zap"
)

// State is the lifecycle state of a Processor.
type State int

const (
	// Uninitialized: no run header seen yet, nothing is booked.
	Uninitialized State = iota
	// Initialized: the bank is booked and the current run is compatible
	// with the first one.
	Initialized
	// Suppressed: the current run's collections differ from the first
	// run's and its events are skipped.
	Suppressed
)

var stateNames = [...]string{"Uninitialized", "Initialized", "Suppressed"}

func (s State) String() string { return stateNames[s] }

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the processor's logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// WithBackend sets the histogram backend. The default is a HbookBackend.
func WithBackend(b Backend) Option {
	return func(p *Processor) { p.backend = b }
}

// Processor turns a stream of run headers and events into the flavour-tag
// validation plots. It is not safe for concurrent use: events must be fed
// one at a time, and Finalize must come after the last event.
type Processor struct {
	cfg     Config
	log     *zap.Logger
	backend Backend
	bank    *Bank

	state     State
	runNumber int
	firstRun  map[string][]string
	truth     TruthLayout

	confusion  ChargeConfusion
	trackTable TrackVertexTable
	tuple      *Tuple

	nEvents, nPassed int

	results *Results
}

func NewProcessor(cfg Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Processor{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.backend == nil {
		p.backend = NewHbookBackend()
	}
	p.bank = NewBank(p.backend, cfg.NumberOfPoints)
	return p, nil
}

func (p *Processor) State() State { return p.state }

func (p *Processor) Bank() *Bank { return p.bank }

// ProcessRunHeader books every plot on the first run header. Later headers
// are only checked against the first: an incompatible run is suppressed,
// a compatible one re-enables processing.
func (p *Processor) ProcessRunHeader(rh *RunHeader) error {
	if p.results != nil {
		return ErrFinalized
	}
	if p.state == Uninitialized {
		if err := p.initialiseFlavourTagInputs(rh); err != nil {
			return err
		}
		p.state = Initialized
		p.runNumber = rh.RunNumber
		p.log.Info("booked flavour tag plots",
			zap.Int("run", rh.RunNumber),
			zap.Int("collections", p.bank.Collections()),
			zap.Int("bins", p.cfg.NumberOfPoints))
		return nil
	}

	p.runNumber = rh.RunNumber
	if name, ok := p.compatible(rh); !ok {
		p.state = Suppressed
		p.log.Warn("run header differs from first run, suppressing output for run",
			zap.Int("run", rh.RunNumber), zap.String("collection", name))
		return nil
	}
	p.state = Initialized
	return nil
}

func (p *Processor) varNames(rh *RunHeader, coll string) ([]string, error) {
	names, ok := rh.VarNames[coll]
	if !ok || len(names) == 0 {
		return nil, fmt.Errorf("%w: %q has no variable names in run %d", ErrMissingCollection, coll, rh.RunNumber)
	}
	return names, nil
}

// initialiseFlavourTagInputs resolves the element index of every variable
// the fill path reads, then books the bank.
func (p *Processor) initialiseFlavourTagInputs(rh *RunHeader) error {
	p.firstRun = make(map[string][]string)
	layouts := make([]collectionLayout, len(p.cfg.FlavourTagCollections))
	for i, tagColl := range p.cfg.FlavourTagCollections {
		inColl := p.cfg.TagInputsCollections[i]
		tagNames, err := p.varNames(rh, tagColl)
		if err != nil {
			return err
		}
		inNames, err := p.varNames(rh, inColl)
		if err != nil {
			return err
		}
		l := collectionLayout{Tag: tagColl, Inputs: inColl, InputNames: inNames}
		for t := TagType(0); t < NumTagTypes; t++ {
			if l.TagIndex[t] = indexOf(tagNames, t.String()); l.TagIndex[t] < 0 {
				return fmt.Errorf("%w: %q has no %s variable", ErrConfig, tagColl, t)
			}
		}
		if l.NumVertex = indexOf(inNames, "NumVertices"); l.NumVertex < 0 {
			return fmt.Errorf("%w: %q has no NumVertices variable", ErrConfig, inColl)
		}
		l.DecayLen = indexOf(inNames, "DecayLength")
		layouts[i] = l
		p.firstRun[tagColl] = tagNames
		p.firstRun[inColl] = inNames
	}

	p.truth = TruthLayout{Flavour: -1, HadronCharge: -1, PDGCode: -1, PartonCharge: -1}
	if coll := p.cfg.TrueJetFlavourCollection; coll != "" {
		names, err := p.varNames(rh, coll)
		if err != nil {
			return err
		}
		p.truth = newTruthLayout(coll, names)
		if p.truth.Flavour < 0 && p.truth.PDGCode < 0 {
			return fmt.Errorf("%w: %q has neither TrueJetFlavour nor TruePDGCode", ErrConfig, coll)
		}
		p.firstRun[coll] = names
	}

	if p.cfg.MakeTuple {
		l := layouts[p.cfg.VertexChargeTagCollection]
		p.tuple = newTuple(l.InputNames)
	}
	return p.bank.build(layouts, &p.cfg)
}

func (p *Processor) compatible(rh *RunHeader) (string, bool) {
	for coll, want := range p.firstRun {
		got := rh.VarNames[coll]
		if len(got) != len(want) {
			return coll, false
		}
		for i := range want {
			if got[i] != want[i] {
				return coll, false
			}
		}
	}
	return "", true
}

// checkCollections makes sure every configured per-jet collection is
// present with one entry per jet.
func (p *Processor) checkCollections(evt *Event) error {
	check := func(name string) error {
		if name == "" {
			return nil
		}
		vecs, ok := evt.Vectors[name]
		if !ok {
			return fmt.Errorf("%w: %q in event %d", ErrMissingCollection, name, evt.Number)
		}
		if len(vecs) != len(evt.Jets) {
			return fmt.Errorf("%w: %q has %d entries for %d jets in event %d",
				ErrConfig, name, len(vecs), len(evt.Jets), evt.Number)
		}
		return nil
	}
	for i := range p.cfg.FlavourTagCollections {
		if err := check(p.cfg.FlavourTagCollections[i]); err != nil {
			return err
		}
		if err := check(p.cfg.TagInputsCollections[i]); err != nil {
			return err
		}
	}
	for _, name := range []string{p.cfg.TrueJetFlavourCollection, p.cfg.BVertexChargeCollection, p.cfg.CVertexChargeCollection} {
		if err := check(name); err != nil {
			return err
		}
	}
	return nil
}

// ProcessEvent fills the plots with one event.
func (p *Processor) ProcessEvent(evt *Event) error {
	switch {
	case p.results != nil:
		return ErrFinalized
	case p.state == Uninitialized:
		return ErrNotInitialized
	case p.state == Suppressed:
		return nil
	}
	if err := p.checkCollections(evt); err != nil {
		return err
	}
	p.nEvents++

	if p.cfg.VertexCollection != "" {
		p.FillVertexPlots(evt)
	}

	if !PassesEventCuts(evt, p.cfg.JetCuts) {
		return nil
	}
	p.nPassed++

	for jet := range evt.Jets {
		flavour := FindTrueJetFlavour(evt, jet, p.truth)
		for coll := range p.bank.colls {
			p.FillTagPlots(evt, coll, jet, flavour)
			p.FillInputsPlots(evt, coll, jet, flavour)
		}
		if p.tuple != nil {
			p.fillTuple(evt, jet, flavour)
		}
		p.FillVertexChargePlots(evt, jet, flavour)
		if p.cfg.MakeAdditionalPlots {
			p.FillAdditionalPlots(evt, jet, flavour)
		}
		p.FillTrackVertexTable(evt, jet, flavour)
	}
	return nil
}
