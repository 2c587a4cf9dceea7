package core

import (
	"fmt"
	"math"
)

// Physical constants for the current-domain noise model.
const (
	elementaryChargeC = 1.602e-19    // electron charge [C]
	boltzmannJPerK    = 1.380649e-23 // Boltzmann constant [J/K]
)

// Floors applied before divisions and logarithms so zero-signal edge cases
// degrade to very low SNR values instead of Inf/NaN.
const (
	minNoiseVariance = 1e-30
	minSNRLinear     = 1e-30
	minLoadOhm       = 1e-3
)

// Link composes a water medium, transmitter, receiver, geometry and
// turbulence spec into one evaluable line-of-sight link. Construction is
// side-effect-free and all constituents are treated as immutable for the
// link's lifetime; sweeping a parameter means constructing a new Geometry
// and Link, which keeps concurrent evaluations trivially safe.
type Link struct {
	Water WaterMedium
	Tx    Transmitter
	Rx    Receiver
	Geom  Geometry
	Turb  TurbulenceSpec

	pattern beamPattern
	sampler *TurbulenceSampler
}

// NewLink validates the arrangement and builds a link with a default
// turbulence seed. Use NewLinkWithSeed when reproducing Monte-Carlo batches
// or running parallel workers.
func NewLink(water WaterMedium, tx Transmitter, rx Receiver, geom Geometry, turb TurbulenceSpec) (*Link, error) {
	return NewLinkWithSeed(water, tx, rx, geom, turb, 1)
}

// NewLinkWithSeed is NewLink with an explicit seed for the link's turbulence
// sampler.
func NewLinkWithSeed(water WaterMedium, tx Transmitter, rx Receiver, geom Geometry, turb TurbulenceSpec, seed uint64) (*Link, error) {
	if geom.DistanceM <= 0 {
		return nil, fmt.Errorf("%w: distance %g m must be positive", ErrInvalidGeometry, geom.DistanceM)
	}
	if rx.LoadResistanceOhm <= 0 {
		return nil, fmt.Errorf("%w: load resistance %g ohm must be positive", ErrInvalidGeometry, rx.LoadResistanceOhm)
	}
	if geom.FOVDeg <= 0 || geom.FOVDeg > 90 {
		return nil, fmt.Errorf("%w: field of view %g deg outside (0, 90]", ErrInvalidGeometry, geom.FOVDeg)
	}

	sampler, err := NewTurbulenceSampler(turb, seed)
	if err != nil {
		return nil, err
	}
	return &Link{
		Water:   water,
		Tx:      tx,
		Rx:      rx,
		Geom:    geom,
		Turb:    turb,
		pattern: patternFor(tx),
		sampler: sampler,
	}, nil
}

// ReceivedPower returns the optical power at the photodetector input [W]:
//
//	Pr = Pt · ηt · exp(-c·d) · G_geom · ηr · g_turb
//
// With stochastic=false the result is fully deterministic and no randomness
// is touched. With stochastic=true exactly one turbulence draw is consumed.
func (l *Link) ReceivedPower(stochastic bool) float64 {
	pr := l.deterministicPower()
	if stochastic && !l.Turb.Deterministic() {
		pr *= l.sampler.Gain()
	}
	return pr
}

// ReceivedPowerSamples returns n stochastic received-power samples: one
// deterministic Pr multiplied by n independent fading draws. Intended for
// Monte-Carlo distributional analysis.
func (l *Link) ReceivedPowerSamples(n int) []float64 {
	base := l.deterministicPower()
	gains := l.sampler.Gains(n)
	out := make([]float64, len(gains))
	for i, g := range gains {
		out[i] = base * g
	}
	return out
}

func (l *Link) deterministicPower() float64 {
	atten := math.Exp(-l.Water.Attenuation() * l.Geom.DistanceM)
	return l.Tx.PowerW * l.Tx.OpticsEfficiency * atten *
		l.pattern.gain(l.Tx, l.Rx, l.Geom) * l.Rx.OpticsEfficiency
}

// NoiseParams carries the front-end knobs of the noise model. Zero values
// mean "absent" for RIN, dark current and background power; a zero APD gain
// or excess-noise factor defaults to 1 (no avalanche gain, no excess noise).
type NoiseParams struct {
	BandwidthHz       float64
	RIN               float64
	DarkCurrentA      float64
	BackgroundPowerW  float64
	APDGain           float64
	ExcessNoiseFactor float64
}

func (p NoiseParams) apdGain() float64 {
	if p.APDGain <= 0 {
		return 1.0
	}
	return p.APDGain
}

func (p NoiseParams) excessNoise() float64 {
	if p.ExcessNoiseFactor <= 0 {
		return 1.0
	}
	return p.ExcessNoiseFactor
}

// NoiseBreakdown reports the four current-domain noise variances
// individually [A²]. The sources are uncorrelated and additive; there are
// no covariance terms.
type NoiseBreakdown struct {
	Shot    float64
	Thermal float64
	Dark    float64
	RIN     float64
}

// Total returns the summed noise variance.
func (n NoiseBreakdown) Total() float64 {
	return n.Shot + n.Thermal + n.Dark + n.RIN
}

// NoiseVariances computes the noise contributions for a given received
// optical power:
//
//	shot    = 2·q·R·(Pr+Pbg)·B·F
//	thermal = 4·kB·T·B / R_L
//	dark    = 2·q·I_dark·B
//	rin     = (R·Pr)²·B·rin
//
// where R is the effective responsivity (photodetector responsivity scaled
// by the APD gain).
func (l *Link) NoiseVariances(prW float64, p NoiseParams) NoiseBreakdown {
	r := l.Rx.ResponsivityAPerW * p.apdGain()
	b := p.BandwidthHz

	var nb NoiseBreakdown
	nb.Shot = 2 * elementaryChargeC * r * (prW + p.BackgroundPowerW) * b * p.excessNoise()
	nb.Thermal = 4 * boltzmannJPerK * l.Rx.TemperatureK * b / math.Max(l.Rx.LoadResistanceOhm, minLoadOhm)
	if p.DarkCurrentA > 0 {
		nb.Dark = 2 * elementaryChargeC * p.DarkCurrentA * b
	}
	if p.RIN > 0 {
		sig := r * prW
		nb.RIN = sig * sig * b * p.RIN
	}
	return nb
}

// SNRdB returns the electrical SNR in decibels, (R·Pr)² over the total noise
// variance, using the deterministic received power. Both the variance and
// the linear SNR are floored so a zero-signal link reports a very low SNR
// rather than -Inf.
func (l *Link) SNRdB(p NoiseParams) float64 {
	pr := l.deterministicPower()
	r := l.Rx.ResponsivityAPerW * p.apdGain()
	sig := r * pr
	sigma2 := l.NoiseVariances(pr, p).Total()
	snr := sig * sig / math.Max(sigma2, minNoiseVariance)
	return 10 * math.Log10(math.Max(snr, minSNRLinear))
}
