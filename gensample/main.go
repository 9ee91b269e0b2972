package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"go-hep.org/x/hep/lcio"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	nEvents   = flag.Int("n", 1000, "number of events")
	nJets     = flag.Int("jets", 2, "jets per event")
	runNumber = flag.Int("run", 1, "run number")
	bFraction = flag.Float64("bfrac", 0.3, "fraction of b jets")
	cFraction = flag.Float64("cfrac", 0.3, "fraction of c jets")
	output    = flag.String("output", "sample.slcio", "output file")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: `+os.Args[0]+` [options]

Writes a synthetic LCIO file with the jet, flavour-tag, vertex and truth
collections flavourtag reads.

options:
`,
	)
	flag.PrintDefaults()
}

var (
	tagNames   = []string{"BTag", "CTag", "BCTag"}
	truthNames = []string{"TrueJetFlavour", "TrueHadronCharge", "TruePDGCode", "TruePartonCharge"}
	inputNames = []string{
		"D0Significance1", "D0Significance2", "Z0Significance1", "Z0Significance2",
		"JointProbRPhi", "JointProbZ", "Momentum1", "Momentum2",
		"DecayLengthSignificance", "DecayLength", "PTCorrectedMass", "RawMomentum",
		"NumTracksInVertices", "SecondaryVertexProbability", "NumVertices",
	}
)

var (
	uniform = distuv.Uniform{Min: 0, Max: 1}
	gauss   = distuv.Normal{Mu: 0, Sigma: 1}
	// tag scores peak at one for the signal and at zero otherwise
	signalScore     = distuv.Beta{Alpha: 5, Beta: 1}
	backgroundScore = distuv.Beta{Alpha: 1, Beta: 5}
	bDecayLength    = distuv.Exponential{Rate: 1 / 3.0}
	cDecayLength    = distuv.Exponential{Rate: 1 / 1.0}
)

// hadron describes the heavy hadron generated for a jet.
type hadron struct {
	pdg    int32
	charge float32
}

var (
	bHadrons = []hadron{{521, 1}, {-521, -1}, {511, 0}, {-511, 0}}
	cHadrons = []hadron{{411, 1}, {-411, -1}, {421, 0}, {-421, 0}}
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() != 0 {
		printUsage()
		log.Fatal("Invalid arguments")
	}

	w, err := lcio.Create(*output)
	if err != nil {
		log.Fatal(err)
	}

	rh := lcio.RunHeader{
		RunNumber: int32(*runNumber),
		Detector:  "synthetic",
		Descr:     "flavourtag sample",
		Params: lcio.Params{Strings: map[string][]string{
			"FlavourTag":       tagNames,
			"FlavourTagInputs": inputNames,
			"TrueJetFlavour":   truthNames,
		}},
	}
	if err := w.WriteRunHeader(&rh); err != nil {
		log.Fatal(err)
	}

	for i := 0; i < *nEvents; i++ {
		evt := makeEvent(int32(*runNumber), int32(i))
		if err := w.WriteEvent(&evt); err != nil {
			log.Fatal(err)
		}
	}

	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
}

func makeEvent(run, number int32) lcio.Event {
	evt := lcio.Event{RunNumber: run, EventNumber: number, Detector: "synthetic"}

	var (
		jets    = lcio.RecParticleContainer{Parts: make([]lcio.RecParticle, *nJets)}
		tags    = lcio.FloatVec{Elements: make([][]float32, *nJets)}
		inputs  = lcio.FloatVec{Elements: make([][]float32, *nJets)}
		truth   = lcio.FloatVec{Elements: make([][]float32, *nJets)}
		bCharge = lcio.FloatVec{Elements: make([][]float32, *nJets)}
		cCharge = lcio.FloatVec{Elements: make([][]float32, *nJets)}
		vtxs    = lcio.VertexContainer{}
	)

	// parentless beam particle at the IP, then per heavy jet one heavy
	// hadron followed by the pion produced at its decay point
	mcps := lcio.McParticleContainer{Particles: make([]lcio.McParticle, 1, 1+2**nJets)}
	mcps.Particles[0] = lcio.McParticle{PDG: 23, GenStatus: 3}

	vtxs.Vtxs = append(vtxs.Vtxs, lcio.Vertex{
		Primary: 1,
		Pos:     [3]float32{float32(0.005 * gauss.Rand()), float32(0.005 * gauss.Rand()), float32(0.02 * gauss.Rand())},
		Cov:     [6]float32{0.005 * 0.005, 0, 0.005 * 0.005, 0, 0, 0.02 * 0.02},
	})

	for j := 0; j < *nJets; j++ {
		phi := 2 * math.Pi * uniform.Rand()
		cosTheta := 2*uniform.Rand() - 1
		sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
		p := 10 + 40*uniform.Rand()
		dir := [3]float64{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), cosTheta}
		jets.Parts[j].P = [3]float32{float32(p * dir[0]), float32(p * dir[1]), float32(p * dir[2])}
		jets.Parts[j].Energy = float32(p)

		flavour, pdg, hadronQ := 1, int32(0), float32(0)
		decayLength := 0.0
		nVertices := 1
		switch r := uniform.Rand(); {
		case r < *bFraction:
			h := bHadrons[int(uniform.Rand()*float64(len(bHadrons)))]
			flavour, pdg, hadronQ = 5, h.pdg, h.charge
			decayLength = bDecayLength.Rand()
			nVertices = 1 + int(3*uniform.Rand())
		case r < *bFraction+*cFraction:
			h := cHadrons[int(uniform.Rand()*float64(len(cHadrons)))]
			flavour, pdg, hadronQ = 4, h.pdg, h.charge
			decayLength = cDecayLength.Rand()
			nVertices = 1 + int(2*uniform.Rand())
		default:
			if uniform.Rand() < 0.1 {
				nVertices = 2
			}
		}

		score := func(signal bool) float32 {
			if signal {
				return float32(signalScore.Rand())
			}
			return float32(backgroundScore.Rand())
		}
		tags.Elements[j] = []float32{score(flavour == 5), score(flavour == 4), score(flavour == 4 && uniform.Rand() < 0.5)}

		partonQ := float32(-1.0 / 3)
		if flavour == 4 {
			partonQ = 2.0 / 3
		}
		if pdg < 0 {
			partonQ = -partonQ
		}
		truth.Elements[j] = []float32{float32(flavour), hadronQ, float32(pdg), partonQ}

		recoQ := func(q float32) []float32 {
			return []float32{q + float32(0.4*gauss.Rand())}
		}
		bCharge.Elements[j] = recoQ(hadronQ)
		cCharge.Elements[j] = recoQ(hadronQ)

		recoDecayLength := 0.0
		if nVertices > 1 {
			recoDecayLength = math.Max(0, decayLength+0.05*gauss.Rand())
		}
		in := make([]float32, len(inputNames))
		for k, name := range inputNames {
			switch name {
			case "NumVertices":
				in[k] = float32(nVertices)
			case "DecayLength":
				in[k] = float32(recoDecayLength)
			case "JointProbRPhi", "JointProbZ", "SecondaryVertexProbability":
				in[k] = float32(uniform.Rand())
			case "NumTracksInVertices":
				in[k] = float32(2 * (nVertices - 1))
			default:
				in[k] = float32(math.Abs(5*gauss.Rand()) + 2*decayLength)
			}
		}
		inputs.Elements[j] = in

		for v := 1; v < nVertices; v++ {
			l := recoDecayLength * float64(v) / float64(nVertices-1)
			vtxs.Vtxs = append(vtxs.Vtxs, lcio.Vertex{
				Pos: [3]float32{float32(l * dir[0]), float32(l * dir[1]), float32(l * dir[2])},
				Cov: [6]float32{0.01, 0, 0.01, 0, 0, 0.01},
			})
		}

		if pdg != 0 {
			mom := [3]float64{0.7 * p * dir[0], 0.7 * p * dir[1], 0.7 * p * dir[2]}
			end := [3]float64{decayLength * dir[0], decayLength * dir[1], decayLength * dir[2]}
			mcps.Particles = append(mcps.Particles, lcio.McParticle{
				PDG:       pdg,
				GenStatus: 2,
				Charge:    hadronQ,
				P:         mom,
			})
			// lcio derives the hadron's end point from its daughter's vertex
			pion := int32(211)
			if hadronQ < 0 {
				pion = -pion
			}
			mcps.Particles = append(mcps.Particles, lcio.McParticle{
				PDG:       pion,
				GenStatus: 1,
				Charge:    float32(math.Copysign(1, float64(pion))),
				Vertex:    end,
				P:         [3]float64{0.3 * mom[0], 0.3 * mom[1], 0.3 * mom[2]},
			})
		}
	}

	// link hadrons to the beam particle and pions to their hadron; the
	// slice no longer grows
	beam := &mcps.Particles[0]
	for i := 1; i+1 < len(mcps.Particles); i += 2 {
		h, pi := &mcps.Particles[i], &mcps.Particles[i+1]
		h.Parents = []*lcio.McParticle{beam}
		beam.Children = append(beam.Children, h)
		pi.Parents = []*lcio.McParticle{h}
		h.Children = []*lcio.McParticle{pi}
	}

	evt.Add("FTSelectedJets", &jets)
	evt.Add("FlavourTag", &tags)
	evt.Add("FlavourTagInputs", &inputs)
	evt.Add("TrueJetFlavour", &truth)
	evt.Add("BCharge", &bCharge)
	evt.Add("CCharge", &cCharge)
	evt.Add("ZVRESVertices", &vtxs)
	evt.Add("MCParticle", &mcps)
	return evt
}
