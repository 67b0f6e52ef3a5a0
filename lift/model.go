package lift

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tick is the default wall-clock period a host waits between steps when
// it drives the System in real time. The System itself has no clock.
const Tick = 1 * time.Second

// MaxCars is the fleet size limit.
const MaxCars = 16

var (
	ErrFleetFull        = errors.New("fleet full")
	ErrUnknownCar       = errors.New("unknown car")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrNoServiceableCar = errors.New("no serviceable car")
	ErrInvalidCar       = errors.New("invalid car")
	ErrCarBusy          = errors.New("car busy")
	ErrCorruptState     = errors.New("corrupt state")
	ErrNoProgress       = errors.New("no progress")
)

type Floor int

func (f Floor) String() string { return strconv.Itoa(int(f)) }

func (f Floor) next(dir Direction) Floor {
	return Floor(int(f) + int(dir))
}

func (f Floor) DirectionTo(dest Floor) Direction {
	if f == dest {
		return IDLE
	} else if dest > f {
		return UP
	} else {
		return DOWN
	}
}

func (f Floor) distance(g Floor) int {
	if f > g {
		return int(f - g)
	}
	return int(g - f)
}

// Direction
type Direction int

const (
	UP   Direction = 1
	IDLE Direction = 0
	DOWN Direction = -1
)

func (d Direction) opposite() Direction {
	switch d {
	case UP:
		return DOWN
	case DOWN:
		return UP
	default:
		panic(fmt.Sprintf("Cannot determine opposite of direction %d", d))
	}
}

func (d Direction) String() string {
	switch d {
	case UP:
		return "UP"
	case DOWN:
		return "DOWN"
	case IDLE:
		return "IDLE"
	default:
		panic(fmt.Sprintf("Unknown direction: %d", d))
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	switch d {
	case UP, DOWN, IDLE:
		return []byte(d.String()), nil
	}
	return nil, fmt.Errorf("unknown direction %d", int(d))
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection accepts UP, DOWN and IDLE in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return UP, nil
	case "DOWN":
		return DOWN, nil
	case "IDLE":
		return IDLE, nil
	}
	return IDLE, fmt.Errorf("unknown direction %q", s)
}

// Passenger is one rider. The destination is fixed when the hall call is made.
type Passenger struct {
	Destination Floor `yaml:"destination"`
}

func (p Passenger) String() string {
	return fmt.Sprintf("Passenger(%s)", p.Destination)
}

// Passengers builds one passenger per destination.
func Passengers(destinations ...Floor) []Passenger {
	ps := make([]Passenger, len(destinations))
	for i, d := range destinations {
		ps[i] = Passenger{Destination: d}
	}
	return ps
}
