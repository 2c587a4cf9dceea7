package core

import (
	"errors"
	"math"
)

// ErrInvalidGeometry flags a physically invalid link arrangement:
// non-positive distance, non-positive load resistance, or a field of view
// outside (0°, 90°].
var ErrInvalidGeometry = errors.New("invalid geometry")

// Numerical floors used by the gain computations. Near-singular inputs are
// floored rather than rejected so large parameter sweeps keep producing
// (possibly degenerate) numbers instead of failing mid-run.
const (
	minSinSquaredFOV = 1e-12
	minTanSquaredDiv = 1e-12
	minDivergenceDeg = 0.5
)

// Geometry captures the spatial arrangement of a single line-of-sight link
// together with the simple optics on either end.
type Geometry struct {
	// DistanceM is the Tx–Rx separation [m].
	DistanceM float64
	// ThetaTxDeg is the emission angle at the transmitter relative to its
	// beam axis [deg].
	ThetaTxDeg float64
	// PhiIncidentDeg is the incidence angle at the receiver relative to its
	// normal [deg], signed.
	PhiIncidentDeg float64
	// FOVDeg is the receiver acceptance half-angle [deg].
	FOVDeg float64
	// TxOpticsGain is an optional transmitter optics gain (e.g. a beam
	// expander); 1 means none.
	TxOpticsGain float64
	// ConcentratorIndex is the refractive index of the receiver
	// concentrator.
	ConcentratorIndex float64
}

// ConcentratorGain returns the idealized non-imaging concentrator gain,
// n^2 / sin^2(FOV). The inverse-sine form is used deliberately: gain grows
// as the field of view narrows, matching non-imaging concentrator theory.
// sin^2 is floored so a near-zero FOV degrades to a huge-but-finite gain
// instead of dividing by zero.
func (g Geometry) ConcentratorGain() float64 {
	s := math.Sin(deg2rad(g.FOVDeg))
	return g.ConcentratorIndex * g.ConcentratorIndex / math.Max(s*s, minSinSquaredFOV)
}

// FOVWindow is the hard angular cutoff: 1 if the incidence angle lies within
// the field of view, 0 otherwise. There is no soft roll-off.
func (g Geometry) FOVWindow(phiIncidentDeg float64) float64 {
	if math.Abs(phiIncidentDeg) <= g.FOVDeg {
		return 1.0
	}
	return 0.0
}

// beamPattern computes the geometric channel gain for one emitter family.
// Two implementations exist: wide-beam Lambertian sources and narrow-beam
// collimated (laser-like) sources. The variant is selected once per link
// from Transmitter.IsLaser rather than branching at every call site.
type beamPattern interface {
	gain(tx Transmitter, rx Receiver, g Geometry) float64
}

func patternFor(tx Transmitter) beamPattern {
	if tx.IsLaser {
		return collimatedBeam{}
	}
	return lambertianBeam{}
}

// lambertianBeam implements the canonical VLC line-of-sight channel model:
//
//	G = (m+1)/(2π d²) · cos^m(θ_tx) · G_tx · G_rx · A · cos(φ)
//
// gated by the hard FOV window. Transmitter optics gain and the receiver
// concentrator gain are factored in explicitly; Beer–Lambert attenuation is
// applied separately by the link.
type lambertianBeam struct{}

func (lambertianBeam) gain(tx Transmitter, rx Receiver, g Geometry) float64 {
	window := g.FOVWindow(g.PhiIncidentDeg)
	if window == 0 {
		return 0
	}
	m := tx.LambertianOrder()
	cosPhi := math.Max(math.Cos(deg2rad(g.PhiIncidentDeg)), 0)
	d := g.DistanceM
	gain := (m + 1) / (2 * math.Pi * d * d) *
		math.Pow(math.Cos(deg2rad(g.ThetaTxDeg)), m) *
		g.TxOpticsGain * g.ConcentratorGain() * rx.AreaM2 * cosPhi
	return window * math.Max(gain, 0)
}

// collimatedBeam models a narrow divergence cone whose footprint grows as
// π d² tan²(θ_div):
//
//	G = G_tx · G_rx · A · cos(φ) / (π d² tan²(θ_div))
//
// The divergence is clamped to a minimum half-angle and tan² is floored so
// very narrow beams stay finite.
type collimatedBeam struct{}

func (collimatedBeam) gain(tx Transmitter, rx Receiver, g Geometry) float64 {
	window := g.FOVWindow(g.PhiIncidentDeg)
	if window == 0 {
		return 0
	}
	theta := deg2rad(math.Max(tx.DivergenceDeg, minDivergenceDeg))
	tan := math.Tan(theta)
	cosPhi := math.Max(math.Cos(deg2rad(g.PhiIncidentDeg)), 0)
	d := g.DistanceM
	denom := math.Pi * d * d * math.Max(tan*tan, minTanSquaredDiv)
	gain := g.TxOpticsGain * g.ConcentratorGain() * rx.AreaM2 * cosPhi / denom
	return window * math.Max(gain, 0)
}

func deg2rad(deg float64) float64 { return deg * math.Pi / 180.0 }
