package lift

import (
	"fmt"

	"github.com/rs/zerolog"
)

/*
	Car step rules (one call to advance per tick)

	IDLE
		goals above only          -> UP
		any goals below           -> DOWN   (a tie favours DOWN)
		no goals                  -> stay IDLE
		The floor never changes on this step.

	UP (DOWN is the mirror image)
		head of goalsAbove is the current floor -> service it
		otherwise move one floor up, and service the floor if the move
		landed on the head goal.

	Servicing a floor pops the head goal, drops off every passenger bound
	there, boards the pending request promised to this car (System does
	that part) and retargets:
		goals ahead remain        -> keep direction
		only goals behind remain  -> reverse
		no goals                  -> IDLE
*/

// Car is one elevator car. The System owns every Car; nothing outside the
// lift package holds a *Car.
type Car struct {
	id         int
	floor      Floor     // Current floor. Never a member of goalsAbove or goalsBelow.
	dir        Direction // UP or DOWN while it has goals that way; IDLE when parked.
	capacity   int       // Soft cap, checked when passengers board.
	manifest   Manifest
	goalsAbove *FloorSet // Ascending, all above floor.
	goalsBelow *FloorSet // Descending, all below floor.
	log        zerolog.Logger
}

func newCar(id int, floor Floor, capacity int, log zerolog.Logger) *Car {
	return &Car{
		id:         id,
		floor:      floor,
		dir:        IDLE,
		capacity:   capacity,
		goalsAbove: newFloorSet(UP),
		goalsBelow: newFloorSet(DOWN),
		log:        log.With().Int("car", id).Logger(),
	}
}

func (c *Car) Load() int { return c.manifest.Len() }

func (c *Car) String() string {
	return fmt.Sprintf("Car-%d(%s %s load %d/%d)", c.id, c.floor, c.dir, c.manifest.Len(), c.capacity)
}

func (c *Car) goals(dir Direction) *FloorSet {
	if dir == UP {
		return c.goalsAbove
	} else if dir == DOWN {
		return c.goalsBelow
	} else {
		panic(fmt.Sprintf("invalid direction for goals: %d", dir))
	}
}

// addGoal records a floor the car must visit. It returns false when the
// goal was already known or is the car's own floor.
func (c *Car) addGoal(goal Floor) bool {
	dir := c.floor.DirectionTo(goal)
	if dir == IDLE {
		c.log.Warn().Msgf("Car-%d ignoring goal %s: already there", c.id, goal)
		return false
	}
	return !c.goals(dir).set(goal)
}

// fits reports whether n more passengers can board without passing capacity.
func (c *Car) fits(n int) bool {
	return c.manifest.Len()+n <= c.capacity
}

// serves reports whether the car may take a hall call travelling dir.
func (c *Car) serves(dir Direction) bool {
	return c.dir == IDLE || c.dir == dir
}

func (c *Car) board(ps []Passenger) {
	for _, p := range ps {
		c.addGoal(p.Destination)
		c.manifest.board(p)
	}
	c.log.Debug().Msgf("Car-%d boarded %d at %s, load %d/%d", c.id, len(ps), c.floor, c.manifest.Len(), c.capacity)
}

func (c *Car) dropOff(floor Floor) int {
	n := c.manifest.dropOff(floor)
	if n > 0 {
		c.log.Debug().Msgf("Car-%d dropped %d at %s", c.id, n, floor)
	}
	return n
}

// idle reports whether the car is parked with nothing to do.
func (c *Car) idle() bool {
	return c.dir == IDLE && c.goalsAbove.empty() && c.goalsBelow.empty()
}

// vacant reports whether the car is idle, empty and may be removed or moved.
func (c *Car) vacant() bool {
	return c.idle() && c.manifest.Len() == 0
}

// advance performs the movement part of one step. It reports whether the
// car now stands on the head goal of its direction and must service it.
func (c *Car) advance() bool {
	switch c.dir {
	case UP, DOWN:
		head, ok := c.goals(c.dir).head()
		if !ok {
			panic(fmt.Sprintf("Car-%d moving %s without goals", c.id, c.dir))
		}
		if head != c.floor {
			c.floor = c.floor.next(c.dir)
		}
		return head == c.floor
	case IDLE:
		c.start()
		return false
	default:
		panic(fmt.Sprintf("Car-%d has unknown direction %d", c.id, c.dir))
	}
}

// start picks a direction for an IDLE car.
func (c *Car) start() {
	switch {
	case !c.goalsAbove.empty() && c.goalsBelow.empty():
		c.setDirection(UP)
	case !c.goalsBelow.empty():
		c.setDirection(DOWN)
	}
}

// arrive consumes the head goal at the current floor and unloads.
func (c *Car) arrive() int {
	c.goals(c.dir).pop()
	return c.dropOff(c.floor)
}

func (c *Car) retarget() {
	switch {
	case !c.goals(c.dir).empty():
	case !c.goals(c.dir.opposite()).empty():
		c.setDirection(c.dir.opposite())
	default:
		c.setDirection(IDLE)
	}
}

func (c *Car) setDirection(dir Direction) {
	if dir != c.dir {
		c.log.Debug().Msgf("Car-%d at %s going %s (was %s)", c.id, c.floor, dir, c.dir)
		c.dir = dir
	}
}

func (c *Car) snapshot() CarSnapshot {
	return CarSnapshot{
		ID:           c.id,
		Floor:        c.floor,
		Direction:    c.dir,
		Capacity:     c.capacity,
		ManifestSize: c.manifest.Len(),
		Passengers:   c.manifest.Passengers(),
		GoalsAbove:   c.goalsAbove.Floors(),
		GoalsBelow:   c.goalsBelow.Floors(),
	}
}
