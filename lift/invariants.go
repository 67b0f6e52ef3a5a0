package lift

import "fmt"

// Verify checks that the fleet is consistent. An IDLE car may still hold
// goals that were added since the last tick; it picks a direction on its
// next step.
func (s *System) Verify() error {
	return s.verify(false)
}

// mustHold panics when a mutation left the fleet inconsistent. settled is
// true at the end of a tick, when IDLE cars must have no goals.
func (s *System) mustHold(settled bool) {
	if err := s.verify(settled); err != nil {
		panic(fmt.Sprintf("lift: %v", err))
	}
}

func (s *System) verify(settled bool) error {
	ids := make(map[int]*Car, len(s.cars))
	for _, c := range s.cars {
		if _, dup := ids[c.id]; dup {
			return fmt.Errorf("%w: duplicate car id %d", ErrCorruptState, c.id)
		}
		ids[c.id] = c
		if c.id > s.nextID {
			return fmt.Errorf("%w: Car-%d beyond next id %d", ErrCorruptState, c.id, s.nextID)
		}
		if err := s.verifyCar(c, settled); err != nil {
			return err
		}
	}

	for _, f := range s.pending.floors() {
		req := s.pending[f]
		if !s.inRange(f) {
			return fmt.Errorf("%w: pending request at %s outside the building", ErrCorruptState, f)
		}
		if len(req.Passengers) == 0 {
			return fmt.Errorf("%w: pending request at %s has no passengers", ErrCorruptState, f)
		}
		c, ok := ids[req.AssignedCar]
		if !ok {
			return fmt.Errorf("%w: pending request at %s promised to missing car %d", ErrCorruptState, f, req.AssignedCar)
		}
		if !c.goalsAbove.has(f) && !c.goalsBelow.has(f) {
			return fmt.Errorf("%w: Car-%d has no goal at pending floor %s", ErrCorruptState, c.id, f)
		}
		for _, p := range req.Passengers {
			if !s.inRange(p.Destination) || p.Destination == f {
				return fmt.Errorf("%w: pending request at %s has bad destination %s", ErrCorruptState, f, p.Destination)
			}
		}
	}
	return nil
}

func (s *System) verifyCar(c *Car, settled bool) error {
	if !s.inRange(c.floor) {
		return fmt.Errorf("%w: Car-%d at %s outside [%s, %s]", ErrCorruptState, c.id, c.floor, s.bottom, s.top)
	}
	if c.capacity <= 0 {
		return fmt.Errorf("%w: Car-%d capacity %d", ErrCorruptState, c.id, c.capacity)
	}

	if !c.goalsAbove.ordered() || !c.goalsBelow.ordered() {
		return fmt.Errorf("%w: Car-%d goals out of order: above %v below %v", ErrCorruptState, c.id, c.goalsAbove.floors, c.goalsBelow.floors)
	}
	for _, g := range c.goalsAbove.floors {
		if g <= c.floor || g > s.top {
			return fmt.Errorf("%w: Car-%d at %s has goal above %s", ErrCorruptState, c.id, c.floor, g)
		}
	}
	for _, g := range c.goalsBelow.floors {
		if g >= c.floor || g < s.bottom {
			return fmt.Errorf("%w: Car-%d at %s has goal below %s", ErrCorruptState, c.id, c.floor, g)
		}
	}

	switch c.dir {
	case UP:
		if c.goalsAbove.empty() {
			return fmt.Errorf("%w: Car-%d going UP without goals above", ErrCorruptState, c.id)
		}
	case DOWN:
		if c.goalsBelow.empty() {
			return fmt.Errorf("%w: Car-%d going DOWN without goals below", ErrCorruptState, c.id)
		}
	case IDLE:
		if settled && !c.idle() {
			return fmt.Errorf("%w: Car-%d IDLE after a tick with goals", ErrCorruptState, c.id)
		}
	default:
		return fmt.Errorf("%w: Car-%d has direction %d", ErrCorruptState, c.id, int(c.dir))
	}

	for _, p := range c.manifest.passengers {
		if p.Destination != c.floor && !c.goalsAbove.has(p.Destination) && !c.goalsBelow.has(p.Destination) {
			return fmt.Errorf("%w: Car-%d carries a passenger to %s with no goal there", ErrCorruptState, c.id, p.Destination)
		}
	}
	return nil
}
