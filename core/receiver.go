package core

// Receiver describes the photodetector and its analog front end.
type Receiver struct {
	// ResponsivityAPerW is the photodetector responsivity [A/W] at the
	// chosen wavelength.
	ResponsivityAPerW float64
	// AreaM2 is the detector active area [m^2].
	AreaM2 float64
	// OpticsEfficiency is the receive optics/filter efficiency (0..1).
	OpticsEfficiency float64
	// TemperatureK is the front-end temperature [K] for thermal noise.
	TemperatureK float64
	// LoadResistanceOhm is the effective transimpedance / load used by the
	// thermal noise model [Ohm].
	LoadResistanceOhm float64
}
