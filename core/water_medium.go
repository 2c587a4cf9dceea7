package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownWaterMedium is returned when a preset lookup by name fails.
var ErrUnknownWaterMedium = errors.New("unknown water medium")

// WaterMedium holds the inherent optical properties of a body of water at
// the reference wavelength (~520 nm). Absorption and scattering are in 1/m
// and combine into the Beer–Lambert attenuation coefficient c = a + b.
//
// Values are immutable once constructed; the presets below are literature
// values (Zayed & Shokair 2025, Table 3) and are not interpolated across
// wavelength.
type WaterMedium struct {
	Name           string
	AbsorptionPerM float64
	ScatteringPerM float64
}

// Attenuation returns the total attenuation coefficient c = a + b [1/m].
func (w WaterMedium) Attenuation() float64 {
	return w.AbsorptionPerM + w.ScatteringPerM
}

// PureSea returns the pure sea preset at 520 nm.
func PureSea() WaterMedium {
	return WaterMedium{Name: "Pure Sea", AbsorptionPerM: 0.04418, ScatteringPerM: 0.0009092}
}

// ClearOcean returns the clear ocean preset at 520 nm.
func ClearOcean() WaterMedium {
	return WaterMedium{Name: "Clear Ocean", AbsorptionPerM: 0.08642, ScatteringPerM: 0.01226}
}

// CoastalOcean returns the coastal ocean preset at 520 nm.
func CoastalOcean() WaterMedium {
	return WaterMedium{Name: "Coastal Ocean", AbsorptionPerM: 0.2179, ScatteringPerM: 0.09966}
}

// TurbidHarbor returns the turbid harbor preset at 520 nm.
func TurbidHarbor() WaterMedium {
	return WaterMedium{Name: "Turbid Harbor", AbsorptionPerM: 1.112, ScatteringPerM: 0.5266}
}

// AllWaterMedia returns the four canonical presets in clarity order,
// clearest first. Sweep drivers iterate over this.
func AllWaterMedia() []WaterMedium {
	return []WaterMedium{PureSea(), ClearOcean(), CoastalOcean(), TurbidHarbor()}
}

// WaterMediumByName resolves a preset by name. Matching is case-insensitive
// and tolerates dashes and underscores in place of spaces, so scenario files
// can say "turbid-harbor" or "Turbid Harbor" interchangeably.
func WaterMediumByName(name string) (WaterMedium, error) {
	key := normalizeMediumName(name)
	for _, w := range AllWaterMedia() {
		if normalizeMediumName(w.Name) == key {
			return w, nil
		}
	}
	return WaterMedium{}, fmt.Errorf("%w: %q", ErrUnknownWaterMedium, name)
}

func normalizeMediumName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return s
}
