package core

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestTurbulenceDeterministicWhenScintillationZero(t *testing.T) {
	s, err := NewTurbulenceSampler(TurbulenceSpec{Model: TurbulenceLognormal, ScintillationIndex: 0}, 1)
	if err != nil {
		t.Fatalf("NewTurbulenceSampler: %v", err)
	}
	for i, g := range s.Gains(10) {
		if g != 1.0 {
			t.Fatalf("gain[%d] = %v, want exactly 1.0", i, g)
		}
	}
}

func TestTurbulenceLognormalUnitMean(t *testing.T) {
	for _, scint := range []float64{0.05, 0.5, 2.0} {
		s, err := NewTurbulenceSampler(TurbulenceSpec{Model: TurbulenceLognormal, ScintillationIndex: scint}, 42)
		if err != nil {
			t.Fatalf("NewTurbulenceSampler: %v", err)
		}
		gains := s.Gains(200000)
		mean := stat.Mean(gains, nil)
		if math.Abs(mean-1.0) > 0.02 {
			t.Errorf("scint=%v: sample mean = %v, want 1.0 within 0.02", scint, mean)
		}
		for _, g := range gains[:100] {
			if g < 0 {
				t.Fatalf("scint=%v: negative fading gain %v", scint, g)
			}
		}
	}
}

func TestTurbulenceBatchRenormalizationExactUnitMean(t *testing.T) {
	specs := []TurbulenceSpec{
		{Model: TurbulenceGeneralizedGamma, ScintillationIndex: 0.3, GammaShape: 2, GammaScale: 0.5},
		{Model: TurbulenceWeibull, ScintillationIndex: 0.3, WeibullK: 1.5, WeibullLambda: 2},
	}
	for _, spec := range specs {
		s, err := NewTurbulenceSampler(spec, 7)
		if err != nil {
			t.Fatalf("%s: NewTurbulenceSampler: %v", spec.Model, err)
		}
		gains := s.Gains(1000)
		mean := stat.Mean(gains, nil)
		if math.Abs(mean-1.0) > 1e-12 {
			t.Errorf("%s: renormalized batch mean = %v, want exactly 1.0", spec.Model, mean)
		}
	}
}

// A single-draw batch from the empirically normalized models is always 1.0:
// the finite-sample correction divides the draw by itself.
func TestTurbulenceSingleDrawRenormalizedModels(t *testing.T) {
	s, err := NewTurbulenceSampler(TurbulenceSpec{Model: "gen-gamma", ScintillationIndex: 0.3}, 1)
	if err != nil {
		t.Fatalf("NewTurbulenceSampler: %v", err)
	}
	if g := s.Gain(); g != 1.0 {
		t.Errorf("single generalized-gamma draw = %v, want 1.0", g)
	}
}

func TestTurbulenceUnknownModel(t *testing.T) {
	_, err := NewTurbulenceSampler(TurbulenceSpec{Model: "rician", ScintillationIndex: 0.1}, 1)
	if !errors.Is(err, ErrUnknownTurbulenceModel) {
		t.Fatalf("expected ErrUnknownTurbulenceModel, got %v", err)
	}
}

func TestTurbulenceReproducibleWithSameSeed(t *testing.T) {
	spec := TurbulenceSpec{Model: TurbulenceLognormal, ScintillationIndex: 0.25}
	a, err := NewTurbulenceSampler(spec, 99)
	if err != nil {
		t.Fatalf("NewTurbulenceSampler: %v", err)
	}
	b, err := NewTurbulenceSampler(spec, 99)
	if err != nil {
		t.Fatalf("NewTurbulenceSampler: %v", err)
	}
	ga, gb := a.Gains(100), b.Gains(100)
	for i := range ga {
		if ga[i] != gb[i] {
			t.Fatalf("gain[%d] differs across equally-seeded samplers: %v vs %v", i, ga[i], gb[i])
		}
	}
}
