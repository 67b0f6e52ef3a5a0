package lift

import (
	"errors"
	"slices"
	"testing"

	"gopkg.in/yaml.v3"
)

func busySystem(t *testing.T) *System {
	t.Helper()
	s := newTestSystem(t, 4, 1, 9)
	if err := s.Pickup(1, Passengers(6, 3), UP); err != nil {
		t.Fatalf("Pickup() error = %v", err)
	}
	if err := s.Pickup(7, Passengers(2), DOWN); err != nil {
		t.Fatalf("Pickup() error = %v", err)
	}
	ticks(s, 2)
	return s
}

func TestSnapshotRestore(t *testing.T) {
	s := busySystem(t)
	snap := s.Snapshot()

	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	again := restored.Snapshot()
	if again.Ticks != snap.Ticks || again.NextID != snap.NextID || len(again.Cars) != len(snap.Cars) || len(again.Pending) != len(snap.Pending) {
		t.Fatalf("Restore(Snapshot()) = %+v, expected %+v", again, snap)
	}
	for i := range snap.Cars {
		a, b := snap.Cars[i], again.Cars[i]
		if a.ID != b.ID || a.Floor != b.Floor || a.Direction != b.Direction ||
			!slices.Equal(a.GoalsAbove, b.GoalsAbove) || !slices.Equal(a.GoalsBelow, b.GoalsBelow) ||
			!slices.Equal(a.Passengers, b.Passengers) {
			t.Errorf("car %d = %+v, expected %+v", i, b, a)
		}
	}

	// Both copies behave the same from here on.
	ticks(s, 15)
	ticks(restored, 15)
	if s.delivered != restored.delivered || s.delivered != 3 {
		t.Errorf("delivered %d and %d, expected 3 for both", s.delivered, restored.delivered)
	}
}

func TestSnapshotYAML(t *testing.T) {
	snap := busySystem(t).Snapshot()
	data, err := yaml.Marshal(snap)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	var back FleetSnapshot
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v\n%s", err, data)
	}
	if _, err := Restore(back); err != nil {
		t.Errorf("Restore() of decoded YAML error = %v\n%s", err, data)
	}
	if back.Cars[0].Direction != snap.Cars[0].Direction {
		t.Errorf("decoded direction %s, expected %s", back.Cars[0].Direction, snap.Cars[0].Direction)
	}
	if back.Pending[0].Origin != 7 || back.Pending[0].AssignedCar != snap.Pending[0].AssignedCar {
		t.Errorf("decoded pending %+v, expected %+v", back.Pending[0], snap.Pending[0])
	}
}

func TestRestoreRejectsCorruptState(t *testing.T) {
	tests := []struct {
		name   string
		modify func(snap *FleetSnapshot)
	}{
		{"goal on own floor", func(snap *FleetSnapshot) { snap.Cars[0].GoalsAbove = []Floor{snap.Cars[0].Floor} }},
		{"goals out of order", func(snap *FleetSnapshot) { snap.Cars[1].GoalsAbove = []Floor{10, 10} }},
		{"moving without goals", func(snap *FleetSnapshot) {
			snap.Cars[1].Direction = DOWN
			snap.Cars[1].GoalsBelow = nil
		}},
		{"rider without goal", func(snap *FleetSnapshot) {
			snap.Cars[1].Passengers = Passengers(4)
			snap.Cars[1].ManifestSize = 1
		}},
		{"manifest size mismatch", func(snap *FleetSnapshot) { snap.Cars[0].ManifestSize = 9 }},
		{"duplicate id", func(snap *FleetSnapshot) { snap.Cars[1].ID = snap.Cars[0].ID }},
		{"pending for missing car", func(snap *FleetSnapshot) { snap.Pending[0].AssignedCar = 42 }},
		{"pending without goal", func(snap *FleetSnapshot) { snap.Pending[0].Origin = 8 }},
		{"two pending on one floor", func(snap *FleetSnapshot) { snap.Pending = append(snap.Pending, snap.Pending[0]) }},
		{"empty building", func(snap *FleetSnapshot) { snap.Top = snap.Bottom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := busySystem(t).Snapshot()
			tt.modify(&snap)
			if _, err := Restore(snap); !errors.Is(err, ErrCorruptState) {
				t.Errorf("Restore() error = %v, expected %v", err, ErrCorruptState)
			}
		})
	}
}

func TestRestoreKeepsIDsUnique(t *testing.T) {
	snap := busySystem(t).Snapshot()
	snap.NextID = 0
	s, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if id, _ := s.AddCar(1, 4); id != 3 {
		t.Errorf("AddCar() after restore = %d, expected 3", id)
	}
}

func TestForecast(t *testing.T) {
	s := newTestSystem(t, 4, 1)
	if n, err := s.Forecast(1, 100); err != nil || n != 0 {
		t.Errorf("Forecast() of an idle car = %d, %v, expected 0", n, err)
	}

	s.Pickup(7, Passengers(2), DOWN)
	n, err := s.Forecast(1, 100)
	if err != nil || n != 12 {
		t.Errorf("Forecast() = %d, %v, expected 12", n, err)
	}
	if s.Ticks() != 0 || len(s.pending) != 1 {
		t.Errorf("Forecast() changed the system: ticks %d pending %d", s.Ticks(), len(s.pending))
	}

	ticks(s, n)
	if !s.cars[0].idle() {
		t.Errorf("car not idle after the forecast %d ticks", n)
	}
}

func TestForecastErrors(t *testing.T) {
	s := newTestSystem(t, 4, 1)
	s.Select(1, 10)
	if _, err := s.Forecast(1, 3); !errors.Is(err, ErrNoProgress) {
		t.Errorf("Forecast() with a short limit error = %v, expected %v", err, ErrNoProgress)
	}
	if _, err := s.Forecast(5, 3); !errors.Is(err, ErrUnknownCar) {
		t.Errorf("Forecast(5) error = %v, expected %v", err, ErrUnknownCar)
	}
}
