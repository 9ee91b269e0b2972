package lcfiplot

import "math"

// JetCuts are the kinematic bounds every plotted jet must satisfy.
type JetCuts struct {
	CosThetaMin float64 `mapstructure:"cos_theta_jet_min" yaml:"cos_theta_jet_min"`
	CosThetaMax float64 `mapstructure:"cos_theta_jet_max" yaml:"cos_theta_jet_max"`
	PMin        float64 `mapstructure:"p_jet_min" yaml:"p_jet_min"`
	PMax        float64 `mapstructure:"p_jet_max" yaml:"p_jet_max"`
}

func jetMomentum(j *Jet) (p, cosTheta float64) {
	px, py, pz := float64(j.P[0]), float64(j.P[1]), float64(j.P[2])
	p = math.Sqrt(px*px + py*py + pz*pz)
	if p == 0 {
		return 0, math.NaN()
	}
	return p, pz / p
}

// PassesJetCuts reports whether the jet momentum and cos(theta) are both
// inside their bounds.
func PassesJetCuts(j *Jet, c JetCuts) bool {
	p, cosTheta := jetMomentum(j)
	if math.IsNaN(cosTheta) {
		return false
	}
	return cosTheta >= c.CosThetaMin && cosTheta <= c.CosThetaMax &&
		p >= c.PMin && p <= c.PMax
}

// PassesEventCuts reports whether every jet of the event passes the jet
// cuts. One failing jet rejects the whole event.
func PassesEventCuts(evt *Event, c JetCuts) bool {
	for i := range evt.Jets {
		if !PassesJetCuts(&evt.Jets[i], c) {
			return false
		}
	}
	return true
}
