package core

import (
	"errors"
	"reflect"
	"testing"
)

func seedRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.AddTransmitter("led", fixtureTx()); err != nil {
		t.Fatalf("AddTransmitter: %v", err)
	}
	if err := reg.AddReceiver("pd", fixtureRx()); err != nil {
		t.Fatalf("AddReceiver: %v", err)
	}
	if err := reg.AddSetup(LinkSetup{
		Name:        "led-ps",
		Transmitter: "led",
		Receiver:    "pd",
		Geom:        fixtureGeom(1),
		Noise:       fixtureNoise(),
		Sweep:       SweepBounds{MinDistanceM: 1, MaxDistanceM: 20, Points: 39},
		Thresholds:  Thresholds{SensitivityDBm: -53.4, BERTargetMax: 1e-5, SNRTargetDB: 50},
	}); err != nil {
		t.Fatalf("AddSetup: %v", err)
	}
	return reg
}

func TestRegistryDuplicatesRejected(t *testing.T) {
	reg := seedRegistry(t)

	if err := reg.AddTransmitter("led", fixtureTx()); !errors.Is(err, ErrTransmitterExists) {
		t.Errorf("duplicate transmitter: got %v, want ErrTransmitterExists", err)
	}
	if err := reg.AddReceiver("pd", fixtureRx()); !errors.Is(err, ErrReceiverExists) {
		t.Errorf("duplicate receiver: got %v, want ErrReceiverExists", err)
	}
	if err := reg.AddSetup(LinkSetup{Name: "led-ps", Transmitter: "led", Receiver: "pd"}); !errors.Is(err, ErrSetupExists) {
		t.Errorf("duplicate setup: got %v, want ErrSetupExists", err)
	}
	if err := reg.AddTransmitter("", fixtureTx()); !errors.Is(err, ErrSetupBadInput) {
		t.Errorf("empty transmitter name: got %v, want ErrSetupBadInput", err)
	}
}

func TestRegistryDanglingReferences(t *testing.T) {
	reg := seedRegistry(t)

	err := reg.AddSetup(LinkSetup{Name: "bad-tx", Transmitter: "missing", Receiver: "pd"})
	if !errors.Is(err, ErrTransmitterNotFound) {
		t.Errorf("dangling transmitter: got %v, want ErrTransmitterNotFound", err)
	}
	err = reg.AddSetup(LinkSetup{Name: "bad-rx", Transmitter: "led", Receiver: "missing"})
	if !errors.Is(err, ErrReceiverNotFound) {
		t.Errorf("dangling receiver: got %v, want ErrReceiverNotFound", err)
	}
	if _, err := reg.Setup("nope"); !errors.Is(err, ErrSetupNotFound) {
		t.Errorf("missing setup: got %v, want ErrSetupNotFound", err)
	}
}

func TestRegistrySetupNamesSorted(t *testing.T) {
	reg := seedRegistry(t)
	for _, name := range []string{"zulu", "alpha"} {
		if err := reg.AddSetup(LinkSetup{Name: name, Transmitter: "led", Receiver: "pd"}); err != nil {
			t.Fatalf("AddSetup(%s): %v", name, err)
		}
	}
	got := reg.SetupNames()
	want := []string{"alpha", "led-ps", "zulu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SetupNames() = %v, want %v", got, want)
	}
}

func TestRegistryBuildLinkDoesNotMutateSetup(t *testing.T) {
	reg := seedRegistry(t)

	link, err := reg.BuildLink("led-ps", ClearOcean(), 12.5, 1)
	if err != nil {
		t.Fatalf("BuildLink: %v", err)
	}
	if link.Geom.DistanceM != 12.5 {
		t.Errorf("built link distance = %v, want 12.5", link.Geom.DistanceM)
	}

	stored, err := reg.Setup("led-ps")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if stored.Geom.DistanceM != 1 {
		t.Errorf("stored setup distance mutated to %v, want 1", stored.Geom.DistanceM)
	}
}

func TestRegistryClear(t *testing.T) {
	reg := seedRegistry(t)
	reg.Clear()
	if names := reg.SetupNames(); len(names) != 0 {
		t.Errorf("SetupNames after Clear = %v, want empty", names)
	}
	if _, err := reg.Transmitter("led"); !errors.Is(err, ErrTransmitterNotFound) {
		t.Errorf("transmitter survived Clear: %v", err)
	}
}
