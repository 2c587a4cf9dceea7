package core

import "math"

// Transmitter describes the optical source.
//
// PowerW is the launched optical power at the transmitter output and
// OpticsEfficiency the fraction surviving the transmit optics. Wide-beam
// (LED-like) sources are characterised by SemiAngleDeg, the Lambertian
// half-power semi-angle; laser-like sources by DivergenceDeg, an approximate
// divergence half-angle. IsLaser selects which geometric model applies.
type Transmitter struct {
	PowerW           float64
	OpticsEfficiency float64
	IsLaser          bool
	SemiAngleDeg     float64
	DivergenceDeg    float64

	// LambertOrderOverride, when non-nil, replaces the semi-angle-derived
	// Lambertian order. Nil means derive it.
	LambertOrderOverride *float64
}

// LambertianOrder returns the Lambertian order m of the emitter,
// m = -ln(2) / ln(cos(theta_1/2)), from the half-power semi-angle.
// An explicit override takes precedence. For laser-type transmitters the
// order is not used by the gain computation and a nominal 1.0 is returned
// for interface uniformity.
func (t Transmitter) LambertianOrder() float64 {
	if t.IsLaser {
		return 1.0
	}
	if t.LambertOrderOverride != nil {
		return *t.LambertOrderOverride
	}
	th := t.SemiAngleDeg * math.Pi / 180.0
	return -math.Ln2 / math.Log(math.Cos(th))
}
