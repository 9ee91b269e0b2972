package lcfiplot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassesJetCuts(t *testing.T) {
	cuts := JetCuts{CosThetaMin: -0.9, CosThetaMax: 0.9, PMin: 10, PMax: 100}
	tests := []struct {
		name string
		p    [3]float32
		want bool
	}{
		{"central", [3]float32{30, 0, 0}, true},
		{"forward", [3]float32{1, 0, 30}, false},
		{"backward", [3]float32{1, 0, -30}, false},
		{"soft", [3]float32{5, 0, 0}, false},
		{"hard", [3]float32{200, 0, 0}, false},
		{"momentum on lower bound", [3]float32{10, 0, 0}, true},
		{"zero momentum", [3]float32{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PassesJetCuts(&Jet{P: tt.p}, cuts))
		})
	}
}

func TestPassesEventCuts(t *testing.T) {
	cuts := JetCuts{CosThetaMin: -0.5, CosThetaMax: 0.5, PMin: 0, PMax: 1000}
	good := Jet{P: [3]float32{10, 0, 1}}
	bad := Jet{P: [3]float32{1, 0, 10}}

	assert.True(t, PassesEventCuts(&Event{Jets: []Jet{good, good}}, cuts))
	assert.False(t, PassesEventCuts(&Event{Jets: []Jet{good, bad}}, cuts))
	assert.True(t, PassesEventCuts(&Event{}, cuts), "an event without jets has nothing to reject")
}
