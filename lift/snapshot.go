package lift

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CarSnapshot is a copy of one car's state, as returned by Status.
type CarSnapshot struct {
	ID           int         `yaml:"id"`
	Floor        Floor       `yaml:"floor"`
	Direction    Direction   `yaml:"direction"`
	Capacity     int         `yaml:"capacity"`
	ManifestSize int         `yaml:"manifest_size"`
	Passengers   []Passenger `yaml:"passengers,omitempty"`
	GoalsAbove   []Floor     `yaml:"goals_above,flow"`
	GoalsBelow   []Floor     `yaml:"goals_below,flow"`
}

// PendingSnapshot is a waiting hall call and the floor it waits on.
type PendingSnapshot struct {
	Origin         Floor `yaml:"origin"`
	PendingRequest `yaml:",inline"`
}

// FleetSnapshot is a copy of a whole System. It round-trips through YAML.
type FleetSnapshot struct {
	Bottom    Floor             `yaml:"bottom"`
	Top       Floor             `yaml:"top"`
	NextID    int               `yaml:"next_id"`
	Ticks     int               `yaml:"ticks"`
	Boarded   int               `yaml:"boarded"`
	Delivered int               `yaml:"delivered"`
	Cars      []CarSnapshot     `yaml:"cars"`
	Pending   []PendingSnapshot `yaml:"pending"`
}

// Snapshot copies the fleet. Pending requests are ordered by floor.
func (s *System) Snapshot() FleetSnapshot {
	snap := FleetSnapshot{
		Bottom:    s.bottom,
		Top:       s.top,
		NextID:    s.nextID,
		Ticks:     s.ticks,
		Boarded:   s.boarded,
		Delivered: s.delivered,
		Cars:      make([]CarSnapshot, 0, len(s.cars)),
		Pending:   make([]PendingSnapshot, 0, len(s.pending)),
	}
	for _, c := range s.cars {
		snap.Cars = append(snap.Cars, c.snapshot())
	}
	for _, f := range s.pending.floors() {
		req := s.pending[f]
		snap.Pending = append(snap.Pending, PendingSnapshot{
			Origin: f,
			PendingRequest: PendingRequest{
				Passengers:  append([]Passenger{}, req.Passengers...),
				AssignedCar: req.AssignedCar,
			},
		})
	}
	return snap
}

// Restore rebuilds a System from a snapshot. The result must satisfy every
// fleet invariant, otherwise the error wraps ErrCorruptState.
func Restore(snap FleetSnapshot) (*System, error) {
	return restore(snap, *Log)
}

func restore(snap FleetSnapshot, log zerolog.Logger) (*System, error) {
	s, err := newSystem(snap.Bottom, snap.Top, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if len(snap.Cars) > MaxCars {
		return nil, fmt.Errorf("%w: %d cars", ErrCorruptState, len(snap.Cars))
	}

	maxID := 0
	for _, cs := range snap.Cars {
		if cs.ID <= 0 {
			return nil, fmt.Errorf("%w: car id %d", ErrCorruptState, cs.ID)
		}
		if cs.ManifestSize != len(cs.Passengers) {
			return nil, fmt.Errorf("%w: Car-%d manifest size %d with %d passengers", ErrCorruptState, cs.ID, cs.ManifestSize, len(cs.Passengers))
		}
		c := newCar(cs.ID, cs.Floor, cs.Capacity, log)
		c.dir = cs.Direction
		// Kept as given so that verify sees any ordering fault.
		c.goalsAbove.floors = append([]Floor{}, cs.GoalsAbove...)
		c.goalsBelow.floors = append([]Floor{}, cs.GoalsBelow...)
		c.manifest.board(cs.Passengers...)
		s.cars = append(s.cars, c)
		maxID = max(maxID, cs.ID)
	}
	s.nextID = max(snap.NextID, maxID)

	for _, p := range snap.Pending {
		if _, ok := s.pending[p.Origin]; ok {
			return nil, fmt.Errorf("%w: two pending requests at %s", ErrCorruptState, p.Origin)
		}
		s.pending[p.Origin] = &PendingRequest{
			Passengers:  append([]Passenger{}, p.Passengers...),
			AssignedCar: p.AssignedCar,
		}
	}
	s.ticks = snap.Ticks
	s.boarded = snap.Boarded
	s.delivered = snap.Delivered

	if err := s.verify(false); err != nil {
		return nil, err
	}
	s.log.Info().Msgf("Restored %d cars, %d pending, tick %d", len(s.cars), len(s.pending), s.ticks)
	return s, nil
}
