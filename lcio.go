package lcfiplot

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go-hep.org/x/hep/lcio"
)

// maxHadronJetAngle is the largest angle (rad) between a true heavy hadron
// and a jet axis for the hadron to be assigned to the jet.
const maxHadronJetAngle = 0.7

// vectorCollections lists every per-jet float-vector collection cfg reads.
func vectorCollections(cfg *Config) []string {
	var names []string
	names = append(names, cfg.FlavourTagCollections...)
	names = append(names, cfg.TagInputsCollections...)
	for _, n := range []string{cfg.TrueJetFlavourCollection, cfg.BVertexChargeCollection, cfg.CVertexChargeCollection} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

func getCollection(evt *lcio.Event, name string) (interface{}, bool) {
	if name == "" || !evt.Has(name) {
		return nil, false
	}
	return evt.Get(name), true
}

// RunHeaderFromLCIO collects the variable names of every float-vector
// collection cfg reads. Names come from the run header parameters keyed by
// collection name; when absent there they are taken from the collection's
// own "...Names" parameter in evt, which may be nil.
func RunHeaderFromLCIO(rh *lcio.RunHeader, evt *lcio.Event, cfg *Config) *RunHeader {
	out := &RunHeader{RunNumber: int(rh.RunNumber), VarNames: make(map[string][]string)}
	for _, coll := range vectorCollections(cfg) {
		if names := rh.Params.Strings[coll]; len(names) > 0 {
			out.VarNames[coll] = names
			continue
		}
		if evt == nil {
			continue
		}
		if fv, ok := getCollection(evt, coll); ok {
			if vec, ok := fv.(*lcio.FloatVec); ok {
				if names := namesParam(vec.Params); len(names) > 0 {
					out.VarNames[coll] = names
				}
			}
		}
	}
	return out
}

func namesParam(p lcio.Params) []string {
	keys := make([]string, 0, len(p.Strings))
	for k := range p.Strings {
		if strings.HasSuffix(k, "Names") {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return p.Strings[keys[0]]
}

// EventFromLCIO extracts what the processor needs from an LCIO event.
// Optional collections (MC particles, decay chains, relations) that are
// absent simply leave the truth fields empty.
func EventFromLCIO(evt *lcio.Event, cfg *Config) (*Event, error) {
	out := &Event{Number: int(evt.EventNumber), Vectors: make(map[string][][]float32)}

	jc, ok := getCollection(evt, cfg.JetCollection)
	if !ok {
		return nil, fmt.Errorf("%w: %q in event %d", ErrMissingCollection, cfg.JetCollection, evt.EventNumber)
	}
	jets, ok := jc.(*lcio.RecParticleContainer)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, not a ReconstructedParticle collection", ErrConfig, cfg.JetCollection, jc)
	}
	out.Jets = make([]Jet, len(jets.Parts))
	for i := range jets.Parts {
		out.Jets[i].P = jets.Parts[i].P
	}

	for _, name := range vectorCollections(cfg) {
		c, ok := getCollection(evt, name)
		if !ok {
			continue
		}
		vec, ok := c.(*lcio.FloatVec)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %T, not a LCFloatVec collection", ErrConfig, name, c)
		}
		out.Vectors[name] = vec.Elements
	}

	if cfg.VertexCollection != "" {
		c, ok := getCollection(evt, cfg.VertexCollection)
		if !ok {
			return nil, fmt.Errorf("%w: %q in event %d", ErrMissingCollection, cfg.VertexCollection, evt.EventNumber)
		}
		vtxs, ok := c.(*lcio.VertexContainer)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %T, not a Vertex collection", ErrConfig, cfg.VertexCollection, c)
		}
		out.Vertices = make([]Vertex, len(vtxs.Vtxs))
		for i, v := range vtxs.Vtxs {
			out.Vertices[i] = Vertex{Primary: v.Primary != 0, Pos: v.Pos, Cov: v.Cov}
		}
	}

	if c, ok := getCollection(evt, cfg.MCParticleCollection); ok {
		if mcps, ok := c.(*lcio.McParticleContainer); ok {
			attachHadrons(out, mcps)
		}
	}

	if c, ok := getCollection(evt, cfg.ZVRESDecayChainCollection); ok {
		if chains, ok := c.(*lcio.RecParticleContainer); ok {
			var rels *lcio.RelationContainer
			if rc, ok := getCollection(evt, cfg.TrueTracksToMCPCollection); ok {
				rels, _ = rc.(*lcio.RelationContainer)
			}
			attachDecayTracks(out, chains, rels)
		}
	}
	return out, nil
}

func isHeavyHadron(pdg int32) bool {
	a := pdg
	if a < 0 {
		a = -a
	}
	if a < 100 {
		return false
	}
	q := GetPDGFlavour(int(pdg))
	return q == 4 || q == 5
}

func angle64(a [3]float64, b [3]float32) float64 {
	var dot, na, nb float64
	for i := range a {
		bi := float64(b[i])
		dot += a[i] * bi
		na += a[i] * a[i]
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return math.Pi
	}
	return math.Acos(math.Max(-1, math.Min(1, dot/math.Sqrt(na*nb))))
}

// attachHadrons assigns every outermost heavy hadron to the closest jet
// and records its heavy-hadron descendants as the jet's decay chain. The
// true primary vertex is the production vertex of the first parentless
// particle.
func attachHadrons(out *Event, mcps *lcio.McParticleContainer) {
	for i := range mcps.Particles {
		if len(mcps.Particles[i].Parents) == 0 {
			out.TruePrimaryVertex = mcps.Particles[i].Vertex
			out.HasTruePrimaryVertex = true
			break
		}
	}
	if len(out.Jets) == 0 {
		return
	}
	for i := range mcps.Particles {
		mcp := &mcps.Particles[i]
		if !isHeavyHadron(mcp.PDG) || hasHeavyParent(mcp) {
			continue
		}
		best, bestAngle := -1, maxHadronJetAngle
		for j := range out.Jets {
			if a := angle64(mcp.P, out.Jets[j].P); a < bestAngle {
				best, bestAngle = j, a
			}
		}
		if best < 0 {
			continue
		}
		out.Jets[best].Hadrons = appendChain(out.Jets[best].Hadrons, mcp, 0)
	}
}

func hasHeavyParent(mcp *lcio.McParticle) bool {
	for _, p := range mcp.Parents {
		if isHeavyHadron(p.PDG) {
			return true
		}
	}
	return false
}

func appendChain(chain []Hadron, mcp *lcio.McParticle, depth int) []Hadron {
	if depth > 16 {
		return chain
	}
	chain = append(chain, Hadron{PDG: int(mcp.PDG), Vertex: mcp.Vertex, EndPoint: mcp.EndPoint()})
	for _, d := range mcp.Children {
		if isHeavyHadron(d.PDG) {
			chain = appendChain(chain, d, depth+1)
		}
	}
	return chain
}

// attachDecayTracks fills the jets' decay-chain tracks. chains holds one
// entry per jet whose daughters are the chain's tracks; rels relates
// tracks to their MC particles and may be nil.
func attachDecayTracks(out *Event, chains *lcio.RecParticleContainer, rels *lcio.RelationContainer) {
	truth := make(map[*lcio.RecParticle]*lcio.McParticle)
	if rels != nil {
		for _, rel := range rels.Rels {
			from, ok1 := rel.From.(*lcio.RecParticle)
			to, ok2 := rel.To.(*lcio.McParticle)
			if ok1 && ok2 {
				truth[from] = to
			}
		}
	}

	for j := range chains.Parts {
		if j >= len(out.Jets) {
			break
		}
		tracks := chains.Parts[j].Recs

		// rank the non-primary vertices of this chain by distance from the IP
		var secondaries []*lcio.Vertex
		seen := make(map[*lcio.Vertex]bool)
		for _, trk := range tracks {
			v := trk.StartVtx
			if v == nil || v.Primary != 0 || seen[v] {
				continue
			}
			seen[v] = true
			secondaries = append(secondaries, v)
		}
		var ip [3]float32
		sort.Slice(secondaries, func(a, b int) bool {
			return CalculateDistance32(secondaries[a].Pos, ip) < CalculateDistance32(secondaries[b].Pos, ip)
		})
		rank := make(map[*lcio.Vertex]int, len(secondaries))
		for i, v := range secondaries {
			rank[v] = i
		}

		for _, trk := range tracks {
			t := DecayTrack{Position: Isolated, Origin: NoMCP}
			switch v := trk.StartVtx; {
			case v == nil:
			case v.Primary != 0:
				t.Position = Primary
			case rank[v] == 0:
				t.Position = Secondary
			default:
				t.Position = Tertiary
			}
			if mcp, ok := truth[trk]; ok {
				t.Origin = trackOrigin(mcp)
			}
			out.Jets[j].DecayTracks = append(out.Jets[j].DecayTracks, t)
		}
	}
}

// trackOrigin walks the ancestry of mcp: a b hadron anywhere makes the
// track a b-decay product, otherwise a c hadron makes it a c-decay one.
func trackOrigin(mcp *lcio.McParticle) TrackOrigin {
	origin := FromLight
	seen := make(map[*lcio.McParticle]bool)
	queue := []*lcio.McParticle{mcp}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		if p != mcp && isHeavyHadron(p.PDG) {
			switch GetPDGFlavour(int(p.PDG)) {
			case 5:
				return FromB
			case 4:
				origin = FromC
			}
		}
		queue = append(queue, p.Parents...)
	}
	return origin
}
