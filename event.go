package lcfiplot

// RunHeader carries the variable-name lists of the per-jet float-vector
// collections, keyed by collection name.
type RunHeader struct {
	RunNumber int
	VarNames  map[string][]string
}

// Jet is one reconstructed jet together with the truth information the
// analysis may attach to it.
type Jet struct {
	P [3]float32

	// Hadrons is the true heavy-flavour decay chain associated with the
	// jet, outermost hadron first. Empty for light jets or when the sample
	// carries no MC record.
	Hadrons []Hadron

	// DecayTracks are the tracks of the jet's reconstructed decay chain.
	DecayTracks []DecayTrack
}

// Hadron is one true hadron of a decay chain.
type Hadron struct {
	PDG      int
	Vertex   [3]float64
	EndPoint [3]float64
}

// VertexPosition is the position of a vertex along a reconstructed decay
// chain, ordered by distance from the IP.
type VertexPosition int

const (
	Primary VertexPosition = iota
	Secondary
	Tertiary
	Isolated
	NumVertexPositions
)

var vertexPositionNames = [NumVertexPositions]string{"Primary", "Secondary", "Tertiary", "Isolated"}

func (p VertexPosition) String() string { return vertexPositionNames[p] }

// TrackOrigin is the true source of a decay-chain track.
type TrackOrigin int

const (
	FromB TrackOrigin = iota
	FromC
	FromLight
	NoMCP
	NumTrackOrigins
)

var trackOriginNames = [NumTrackOrigins]string{"bTrack", "cTrack", "lTrack", "noMCP"}

func (o TrackOrigin) String() string { return trackOriginNames[o] }

// DecayTrack is a track of a reconstructed decay chain.
type DecayTrack struct {
	Position VertexPosition
	Origin   TrackOrigin
}

// Vertex is a reconstructed vertex.
type Vertex struct {
	Primary bool
	Pos     [3]float32
	Cov     [6]float32
}

// Event is everything one event contributes to the plots. Vectors holds
// the per-jet float vectors of every named collection the event carries.
type Event struct {
	Number int

	Jets     []Jet
	Vectors  map[string][][]float32
	Vertices []Vertex

	TruePrimaryVertex    [3]float64
	HasTruePrimaryVertex bool
}

// Vector returns the float vector of jet in collection name. ok is false
// when the collection or the jet's entry is absent.
func (e *Event) Vector(name string, jet int) (vec []float32, ok bool) {
	coll, ok := e.Vectors[name]
	if !ok || jet < 0 || jet >= len(coll) {
		return nil, false
	}
	return coll[jet], true
}
