package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrTransmitterExists   = errors.New("transmitter already exists")
	ErrTransmitterNotFound = errors.New("transmitter not found")
	ErrReceiverExists      = errors.New("receiver already exists")
	ErrReceiverNotFound    = errors.New("receiver not found")
	ErrSetupExists         = errors.New("link setup already exists")
	ErrSetupNotFound       = errors.New("link setup not found")
	ErrSetupBadInput       = errors.New("invalid link setup")
)

// SweepBounds delimits a distance sweep.
type SweepBounds struct {
	MinDistanceM float64
	MaxDistanceM float64
	Points       int
}

// Thresholds are the acceptance criteria used by range searches:
// a receiver sensitivity in dBm, an OOK BER ceiling, and an SNR floor in dB.
type Thresholds struct {
	SensitivityDBm float64
	BERTargetMax   float64
	SNRTargetDB    float64
}

// LinkSetup names a reusable link configuration: which transmitter and
// receiver to use, the geometric arrangement, turbulence and noise
// parameters, plus sweep bounds and thresholds for the drivers. The water
// medium is deliberately not part of the setup; sweeps pair one setup with
// each medium of interest.
type LinkSetup struct {
	Name        string
	Transmitter string
	Receiver    string
	Geom        Geometry
	Turb        TurbulenceSpec
	Noise       NoiseParams
	Sweep       SweepBounds
	Thresholds  Thresholds
}

// Registry is a concurrency-safe store of named transmitters, receivers and
// link setups. It holds only immutable value objects, so handing copies out
// under RLock is safe for any number of concurrent sweep workers.
type Registry struct {
	mu sync.RWMutex

	transmitters map[string]Transmitter
	receivers    map[string]Receiver
	setups       map[string]LinkSetup
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		transmitters: make(map[string]Transmitter),
		receivers:    make(map[string]Receiver),
		setups:       make(map[string]LinkSetup),
	}
}

func (r *Registry) AddTransmitter(name string, tx Transmitter) error {
	if name == "" {
		return fmt.Errorf("%w: empty transmitter name", ErrSetupBadInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transmitters[name]; exists {
		return fmt.Errorf("%w: %q", ErrTransmitterExists, name)
	}
	r.transmitters[name] = tx
	return nil
}

func (r *Registry) Transmitter(name string) (Transmitter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.transmitters[name]
	if !ok {
		return Transmitter{}, fmt.Errorf("%w: %q", ErrTransmitterNotFound, name)
	}
	return tx, nil
}

func (r *Registry) AddReceiver(name string, rx Receiver) error {
	if name == "" {
		return fmt.Errorf("%w: empty receiver name", ErrSetupBadInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.receivers[name]; exists {
		return fmt.Errorf("%w: %q", ErrReceiverExists, name)
	}
	r.receivers[name] = rx
	return nil
}

func (r *Registry) Receiver(name string) (Receiver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rx, ok := r.receivers[name]
	if !ok {
		return Receiver{}, fmt.Errorf("%w: %q", ErrReceiverNotFound, name)
	}
	return rx, nil
}

// AddSetup registers a link setup after checking that its transmitter and
// receiver references resolve.
func (r *Registry) AddSetup(setup LinkSetup) error {
	if setup.Name == "" {
		return fmt.Errorf("%w: empty setup name", ErrSetupBadInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.setups[setup.Name]; exists {
		return fmt.Errorf("%w: %q", ErrSetupExists, setup.Name)
	}
	if _, ok := r.transmitters[setup.Transmitter]; !ok {
		return fmt.Errorf("%w: setup %q references unknown transmitter %q",
			ErrTransmitterNotFound, setup.Name, setup.Transmitter)
	}
	if _, ok := r.receivers[setup.Receiver]; !ok {
		return fmt.Errorf("%w: setup %q references unknown receiver %q",
			ErrReceiverNotFound, setup.Name, setup.Receiver)
	}
	r.setups[setup.Name] = setup
	return nil
}

func (r *Registry) Setup(name string) (LinkSetup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.setups[name]
	if !ok {
		return LinkSetup{}, fmt.Errorf("%w: %q", ErrSetupNotFound, name)
	}
	return s, nil
}

// SetupNames returns the registered setup names, sorted for stable output.
func (r *Registry) SetupNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.setups))
	for name := range r.setups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// BuildLink resolves a setup against a water medium and distance and
// constructs a fresh Link. The setup's geometry is copied with the distance
// overridden, so stored setups are never mutated.
func (r *Registry) BuildLink(setupName string, water WaterMedium, distanceM float64, seed uint64) (*Link, error) {
	setup, err := r.Setup(setupName)
	if err != nil {
		return nil, err
	}
	tx, err := r.Transmitter(setup.Transmitter)
	if err != nil {
		return nil, err
	}
	rx, err := r.Receiver(setup.Receiver)
	if err != nil {
		return nil, err
	}
	geom := setup.Geom
	geom.DistanceM = distanceM
	return NewLinkWithSeed(water, tx, rx, geom, setup.Turb, seed)
}

// Clear drops all registered transmitters, receivers and setups.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transmitters = make(map[string]Transmitter)
	r.receivers = make(map[string]Receiver)
	r.setups = make(map[string]LinkSetup)
}
