package core

import (
	"errors"
	"strings"
	"testing"
)

const scenarioDoc = `{
  "transmitters": [
    {"name": "led-520nm", "power_w": 0.1, "optics_efficiency": 0.9, "semi_angle_deg": 60},
    {"name": "laser-520nm", "power_w": 0.05, "optics_efficiency": 0.95, "is_laser": true, "divergence_deg": 1.5}
  ],
  "receivers": [
    {"name": "pd-main", "responsivity_a_per_w": 0.35, "area_m2": 5e-4,
     "optics_efficiency": 0.9, "temperature_k": 300, "load_resistance_ohm": 50}
  ],
  "setups": [
    {
      "name": "led-ps",
      "transmitter": "led-520nm",
      "receiver": "pd-main",
      "geometry": {"distance_m": 10, "fov_deg": 60, "tx_optics_gain": 1, "concentrator_index": 1.5},
      "turbulence": {"model": "lognormal", "scintillation_index": 0.1},
      "noise": {"bandwidth_hz": 1e6},
      "sweep": {"d_min_m": 1, "d_max_m": 20, "points": 39},
      "thresholds": {"sensitivity_dbm": -53.4, "ber_target": 1e-5, "snr_target_db": 50}
    }
  ]
}`

func TestLoadLinkScenario(t *testing.T) {
	reg := NewRegistry()
	scenario, err := LoadLinkScenario(reg, strings.NewReader(scenarioDoc))
	if err != nil {
		t.Fatalf("LoadLinkScenario: %v", err)
	}

	if len(scenario.TransmitterNames) != 2 || len(scenario.ReceiverNames) != 1 || len(scenario.SetupNames) != 1 {
		t.Fatalf("summary counts = %d/%d/%d, want 2/1/1",
			len(scenario.TransmitterNames), len(scenario.ReceiverNames), len(scenario.SetupNames))
	}

	laser, err := reg.Transmitter("laser-520nm")
	if err != nil {
		t.Fatalf("Transmitter: %v", err)
	}
	if !laser.IsLaser || laser.DivergenceDeg != 1.5 {
		t.Errorf("laser decoded as %+v", laser)
	}

	setup, err := reg.Setup("led-ps")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if setup.Turb.Model != TurbulenceLognormal || setup.Turb.ScintillationIndex != 0.1 {
		t.Errorf("turbulence decoded as %+v", setup.Turb)
	}
	if setup.Sweep.Points != 39 || setup.Thresholds.BERTargetMax != 1e-5 {
		t.Errorf("sweep/thresholds decoded as %+v / %+v", setup.Sweep, setup.Thresholds)
	}

	// Loaded setups must be buildable as-is.
	if _, err := reg.BuildLink("led-ps", ClearOcean(), 5, 1); err != nil {
		t.Errorf("BuildLink on loaded setup: %v", err)
	}
}

func TestLoadLinkScenarioRejectsEmptyNames(t *testing.T) {
	reg := NewRegistry()
	doc := `{"transmitters": [{"power_w": 0.1}]}`
	if _, err := LoadLinkScenario(reg, strings.NewReader(doc)); err == nil {
		t.Fatal("expected error for transmitter with empty name")
	}
}

func TestLoadLinkScenarioRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	doc := `{"transmitters": [{"name": "a", "power_w": 0.1}, {"name": "a", "power_w": 0.2}]}`
	_, err := LoadLinkScenario(reg, strings.NewReader(doc))
	if !errors.Is(err, ErrTransmitterExists) {
		t.Fatalf("expected ErrTransmitterExists, got %v", err)
	}
}

func TestLoadLinkScenarioRejectsMalformedJSON(t *testing.T) {
	reg := NewRegistry()
	if _, err := LoadLinkScenario(reg, strings.NewReader(`{"transmitters": [`)); err == nil {
		t.Fatal("expected decode error for truncated document")
	}
}
