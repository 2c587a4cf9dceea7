// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"
)

// LinkScenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging or debugging from main().
type LinkScenario struct {
	TransmitterNames []string
	ReceiverNames    []string
	SetupNames       []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type linkScenarioJSON struct {
	Transmitters []transmitterJSON `json:"transmitters"`
	Receivers    []receiverJSON    `json:"receivers"`
	Setups       []setupJSON       `json:"setups"`
}

type transmitterJSON struct {
	Name             string   `json:"name"`
	PowerW           float64  `json:"power_w"`
	OpticsEfficiency float64  `json:"optics_efficiency"`
	IsLaser          bool     `json:"is_laser"`
	SemiAngleDeg     float64  `json:"semi_angle_deg"`
	DivergenceDeg    float64  `json:"divergence_deg"`
	LambertOrder     *float64 `json:"lambert_order"` // optional override
}

type receiverJSON struct {
	Name              string  `json:"name"`
	ResponsivityAPerW float64 `json:"responsivity_a_per_w"`
	AreaM2            float64 `json:"area_m2"`
	OpticsEfficiency  float64 `json:"optics_efficiency"`
	TemperatureK      float64 `json:"temperature_k"`
	LoadResistanceOhm float64 `json:"load_resistance_ohm"`
}

type setupJSON struct {
	Name        string         `json:"name"`
	Transmitter string         `json:"transmitter"`
	Receiver    string         `json:"receiver"`
	Geometry    geometryJSON   `json:"geometry"`
	Turbulence  turbulenceJSON `json:"turbulence"`
	Noise       noiseJSON      `json:"noise"`
	Sweep       sweepJSON      `json:"sweep"`
	Thresholds  thresholdsJSON `json:"thresholds"`
}

type geometryJSON struct {
	DistanceM         float64 `json:"distance_m"`
	ThetaTxDeg        float64 `json:"theta_tx_deg"`
	PhiIncidentDeg    float64 `json:"phi_incident_deg"`
	FOVDeg            float64 `json:"fov_deg"`
	TxOpticsGain      float64 `json:"tx_optics_gain"`
	ConcentratorIndex float64 `json:"concentrator_index"`
}

type turbulenceJSON struct {
	Model              string  `json:"model"`
	ScintillationIndex float64 `json:"scintillation_index"`
	GammaShape         float64 `json:"gamma_shape"`
	GammaScale         float64 `json:"gamma_scale"`
	WeibullK           float64 `json:"weibull_k"`
	WeibullLambda      float64 `json:"weibull_lambda"`
}

type noiseJSON struct {
	BandwidthHz       float64 `json:"bandwidth_hz"`
	RIN               float64 `json:"rin"`
	DarkCurrentA      float64 `json:"dark_current_a"`
	BackgroundPowerW  float64 `json:"background_power_w"`
	APDGain           float64 `json:"apd_gain"`
	ExcessNoiseFactor float64 `json:"excess_noise_factor"`
}

type sweepJSON struct {
	MinDistanceM float64 `json:"d_min_m"`
	MaxDistanceM float64 `json:"d_max_m"`
	Points       int     `json:"points"`
}

type thresholdsJSON struct {
	SensitivityDBm float64 `json:"sensitivity_dbm"`
	BERTargetMax   float64 `json:"ber_target"`
	SNRTargetDB    float64 `json:"snr_target_db"`
}

// LoadLinkScenario reads a JSON scenario from r, registers transmitters,
// receivers and link setups in the Registry, and returns a summary of what
// was loaded.
//
// It fails on JSON / structural errors and on registry conflicts (duplicate
// names, dangling references); value-level validation such as geometry
// checks stays with NewLink so load-time and hand-built setups behave the
// same way.
func LoadLinkScenario(reg *Registry, r io.Reader) (*LinkScenario, error) {
	if reg == nil {
		return nil, fmt.Errorf("LoadLinkScenario: registry is nil")
	}

	var payload linkScenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadLinkScenario: decode failed: %w", err)
	}

	result := &LinkScenario{
		TransmitterNames: make([]string, 0, len(payload.Transmitters)),
		ReceiverNames:    make([]string, 0, len(payload.Receivers)),
		SetupNames:       make([]string, 0, len(payload.Setups)),
	}

	for _, jsTx := range payload.Transmitters {
		if jsTx.Name == "" {
			return nil, fmt.Errorf("LoadLinkScenario: transmitter with empty name")
		}
		tx := Transmitter{
			PowerW:               jsTx.PowerW,
			OpticsEfficiency:     jsTx.OpticsEfficiency,
			IsLaser:              jsTx.IsLaser,
			SemiAngleDeg:         jsTx.SemiAngleDeg,
			DivergenceDeg:        jsTx.DivergenceDeg,
			LambertOrderOverride: jsTx.LambertOrder,
		}
		if err := reg.AddTransmitter(jsTx.Name, tx); err != nil {
			return nil, fmt.Errorf("LoadLinkScenario: %w", err)
		}
		result.TransmitterNames = append(result.TransmitterNames, jsTx.Name)
	}

	for _, jsRx := range payload.Receivers {
		if jsRx.Name == "" {
			return nil, fmt.Errorf("LoadLinkScenario: receiver with empty name")
		}
		rx := Receiver{
			ResponsivityAPerW: jsRx.ResponsivityAPerW,
			AreaM2:            jsRx.AreaM2,
			OpticsEfficiency:  jsRx.OpticsEfficiency,
			TemperatureK:      jsRx.TemperatureK,
			LoadResistanceOhm: jsRx.LoadResistanceOhm,
		}
		if err := reg.AddReceiver(jsRx.Name, rx); err != nil {
			return nil, fmt.Errorf("LoadLinkScenario: %w", err)
		}
		result.ReceiverNames = append(result.ReceiverNames, jsRx.Name)
	}

	for _, jsS := range payload.Setups {
		if jsS.Name == "" {
			return nil, fmt.Errorf("LoadLinkScenario: setup with empty name")
		}
		setup := LinkSetup{
			Name:        jsS.Name,
			Transmitter: jsS.Transmitter,
			Receiver:    jsS.Receiver,
			Geom: Geometry{
				DistanceM:         jsS.Geometry.DistanceM,
				ThetaTxDeg:        jsS.Geometry.ThetaTxDeg,
				PhiIncidentDeg:    jsS.Geometry.PhiIncidentDeg,
				FOVDeg:            jsS.Geometry.FOVDeg,
				TxOpticsGain:      jsS.Geometry.TxOpticsGain,
				ConcentratorIndex: jsS.Geometry.ConcentratorIndex,
			},
			Turb: TurbulenceSpec{
				Model:              jsS.Turbulence.Model,
				ScintillationIndex: jsS.Turbulence.ScintillationIndex,
				GammaShape:         jsS.Turbulence.GammaShape,
				GammaScale:         jsS.Turbulence.GammaScale,
				WeibullK:           jsS.Turbulence.WeibullK,
				WeibullLambda:      jsS.Turbulence.WeibullLambda,
			},
			Noise: NoiseParams{
				BandwidthHz:       jsS.Noise.BandwidthHz,
				RIN:               jsS.Noise.RIN,
				DarkCurrentA:      jsS.Noise.DarkCurrentA,
				BackgroundPowerW:  jsS.Noise.BackgroundPowerW,
				APDGain:           jsS.Noise.APDGain,
				ExcessNoiseFactor: jsS.Noise.ExcessNoiseFactor,
			},
			Sweep: SweepBounds{
				MinDistanceM: jsS.Sweep.MinDistanceM,
				MaxDistanceM: jsS.Sweep.MaxDistanceM,
				Points:       jsS.Sweep.Points,
			},
			Thresholds: Thresholds{
				SensitivityDBm: jsS.Thresholds.SensitivityDBm,
				BERTargetMax:   jsS.Thresholds.BERTargetMax,
				SNRTargetDB:    jsS.Thresholds.SNRTargetDB,
			},
		}
		if err := reg.AddSetup(setup); err != nil {
			return nil, fmt.Errorf("LoadLinkScenario: %w", err)
		}
		result.SetupNames = append(result.SetupNames, jsS.Name)
	}

	return result, nil
}
