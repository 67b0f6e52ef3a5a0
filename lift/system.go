package lift

import (
	"fmt"
	"math"
	"slices"

	"github.com/michael-deng/elevator/logger"
	"github.com/rs/zerolog"
)

var Log = logger.GetLogger()

// The System owns the cars of one building plus the hall calls that have
// been promised to a car but not picked up yet. It is not safe for
// concurrent use; see Server.
type System struct {
	bottom, top Floor
	cars        []*Car       // Insertion order. Ties in assignment go to the earlier car.
	pending     pendingTable // Origin floor -> waiting passengers.
	nextID      int          // Last id handed out. Ids are never reused.
	ticks       int
	boarded     int
	delivered   int
	log         zerolog.Logger
}

// NewSystem creates an empty fleet serving floors bottom..top inclusive.
func NewSystem(bottom, top Floor) (*System, error) {
	return newSystem(bottom, top, *Log)
}

func newSystem(bottom, top Floor, log zerolog.Logger) (*System, error) {
	if bottom >= top {
		return nil, fmt.Errorf("%w: floor range [%s, %s] is empty", ErrInvalidRequest, bottom, top)
	}
	return &System{
		bottom:  bottom,
		top:     top,
		pending: make(pendingTable),
		log:     log,
	}, nil
}

func (s *System) Bottom() Floor { return s.bottom }
func (s *System) Top() Floor    { return s.top }

func (s *System) inRange(f Floor) bool {
	return s.bottom <= f && f <= s.top
}

// AddCar appends an IDLE car and returns its id.
func (s *System) AddCar(floor Floor, capacity int) (int, error) {
	if len(s.cars) >= MaxCars {
		return 0, fmt.Errorf("%w: %d cars", ErrFleetFull, len(s.cars))
	}
	if !s.inRange(floor) {
		return 0, fmt.Errorf("%w: floor %s outside [%s, %s]", ErrInvalidCar, floor, s.bottom, s.top)
	}
	if capacity <= 0 {
		return 0, fmt.Errorf("%w: capacity %d", ErrInvalidCar, capacity)
	}
	s.nextID++
	c := newCar(s.nextID, floor, capacity, s.log)
	s.cars = append(s.cars, c)
	s.log.Info().Msgf("Car-%d added at %s with capacity %d", c.id, floor, capacity)
	return c.id, nil
}

// RemoveCar takes a parked, empty car out of service.
func (s *System) RemoveCar(id int) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	if err := s.checkVacant(s.cars[i]); err != nil {
		return err
	}
	s.cars = slices.Delete(s.cars, i, i+1)
	s.log.Info().Msgf("Car-%d removed", id)
	return nil
}

// Relocate moves a parked, empty car to another floor, e.g. after manual
// operation.
func (s *System) Relocate(id int, floor Floor) error {
	c, err := s.car(id)
	if err != nil {
		return err
	}
	if !s.inRange(floor) {
		return fmt.Errorf("%w: floor %s outside [%s, %s]", ErrInvalidRequest, floor, s.bottom, s.top)
	}
	if err := s.checkVacant(c); err != nil {
		return err
	}
	s.log.Info().Msgf("Car-%d relocated from %s to %s", id, c.floor, floor)
	c.floor = floor
	return nil
}

func (s *System) checkVacant(c *Car) error {
	if !c.vacant() {
		return fmt.Errorf("%w: %v", ErrCarBusy, c)
	}
	if s.pending.promisedTo(c.id) {
		return fmt.Errorf("%w: Car-%d has a pickup pending", ErrCarBusy, c.id)
	}
	return nil
}

// Cars returns the car ids in insertion order.
func (s *System) Cars() []int {
	ids := make([]int, len(s.cars))
	for i, c := range s.cars {
		ids[i] = c.id
	}
	return ids
}

func (s *System) index(id int) (int, error) {
	for i, c := range s.cars {
		if c.id == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrUnknownCar, id)
}

func (s *System) car(id int) (*Car, error) {
	i, err := s.index(id)
	if err != nil {
		return nil, err
	}
	return s.cars[i], nil
}

// Status returns a copy of one car's state.
func (s *System) Status(id int) (CarSnapshot, error) {
	c, err := s.car(id)
	if err != nil {
		return CarSnapshot{}, err
	}
	return c.snapshot(), nil
}

// Pickup accepts a hall call: passengers waiting at origin who all travel
// dir. A car standing at origin that has room and is IDLE or already going
// dir boards them at once. Otherwise the closest car with room that is IDLE
// or going dir is sent to origin and the passengers wait for it. When no
// such car exists the call fails, even if origin already has passengers
// waiting for another car.
func (s *System) Pickup(origin Floor, passengers []Passenger, dir Direction) error {
	if err := s.checkPickup(origin, passengers, dir); err != nil {
		return err
	}
	ps := append([]Passenger{}, passengers...)

	for _, c := range s.cars {
		if c.floor == origin && c.fits(len(ps)) && c.serves(dir) {
			c.board(ps)
			s.boarded += len(ps)
			s.log.Info().Msgf("Car-%d boarding %d passengers at %s going %s", c.id, len(ps), origin, dir)
			s.mustHold(false)
			return nil
		}
	}

	c := s.closest(origin, len(ps), dir)
	if c == nil {
		return fmt.Errorf("%w: %d passengers at %s going %s", ErrNoServiceableCar, len(ps), origin, dir)
	}

	// A floor already promised to a car stays with that car. c gets no goal.
	if req, ok := s.pending[origin]; ok {
		s.pending.merge(origin, ps, req.AssignedCar)
		s.log.Info().Msgf("%d passengers at %s join the pickup promised to Car-%d", len(ps), origin, req.AssignedCar)
		s.mustHold(false)
		return nil
	}

	c.addGoal(origin)
	s.pending.merge(origin, ps, c.id)
	s.log.Info().Msgf("Car-%d at %s assigned pickup of %d at %s going %s", c.id, c.floor, len(ps), origin, dir)
	s.mustHold(false)
	return nil
}

func (s *System) checkPickup(origin Floor, passengers []Passenger, dir Direction) error {
	if len(passengers) == 0 {
		return fmt.Errorf("%w: no passengers", ErrInvalidRequest)
	}
	if !s.inRange(origin) {
		return fmt.Errorf("%w: origin %s outside [%s, %s]", ErrInvalidRequest, origin, s.bottom, s.top)
	}
	if dir != UP && dir != DOWN {
		return fmt.Errorf("%w: direction must be UP or DOWN, got %d", ErrInvalidRequest, int(dir))
	}
	for _, p := range passengers {
		if !s.inRange(p.Destination) {
			return fmt.Errorf("%w: destination %s outside [%s, %s]", ErrInvalidRequest, p.Destination, s.bottom, s.top)
		}
		if got := origin.DirectionTo(p.Destination); got != dir {
			return fmt.Errorf("%w: destination %s from %s is %s, request is %s", ErrInvalidRequest, p.Destination, origin, got, dir)
		}
	}
	return nil
}

// closest returns the nearest car that can take n passengers travelling dir.
func (s *System) closest(origin Floor, n int, dir Direction) *Car {
	var best *Car
	bestDistance := math.MaxInt
	for _, c := range s.cars {
		if !c.fits(n) || !c.serves(dir) {
			continue
		}
		if d := c.floor.distance(origin); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best
}

// Select registers a destination chosen inside a car. Choosing the floor
// the car stands on does nothing.
func (s *System) Select(id int, floor Floor) error {
	c, err := s.car(id)
	if err != nil {
		return err
	}
	if !s.inRange(floor) {
		return fmt.Errorf("%w: floor %s outside [%s, %s]", ErrInvalidRequest, floor, s.bottom, s.top)
	}
	if c.addGoal(floor) {
		s.log.Info().Msgf("Car-%d selected %s", id, floor)
	}
	s.mustHold(false)
	return nil
}

// Tick advances every car by one step, in insertion order.
func (s *System) Tick() {
	for _, c := range s.cars {
		s.step(c)
	}
	s.ticks++
	s.mustHold(true)
}

func (s *System) step(c *Car) {
	if !c.advance() {
		return
	}
	s.delivered += c.arrive()
	if ps, ok := s.pending.claim(c.floor, c.id); ok {
		c.board(ps)
		s.boarded += len(ps)
		s.log.Info().Msgf("Car-%d picked up %d waiting at %s", c.id, len(ps), c.floor)
	}
	c.retarget()
}

// Ticks returns how many times Tick has run.
func (s *System) Ticks() int { return s.ticks }
