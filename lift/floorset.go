package lift

import (
	"fmt"
	"slices"
)

// FloorSet is an ordered sequence of unique floors. With order UP the
// floors ascend, with order DOWN they descend. The head is always the
// next floor a car travelling in that order will reach.
type FloorSet struct {
	order  Direction
	floors []Floor
}

func newFloorSet(order Direction) *FloorSet {
	if order != UP && order != DOWN {
		panic(fmt.Sprintf("invalid order for FloorSet: %d", order))
	}
	return &FloorSet{order: order}
}

// before reports whether a is reached before b in this set's order.
func (fs *FloorSet) before(a, b Floor) bool {
	if fs.order == UP {
		return a < b
	}
	return a > b
}

// set inserts floor in order and returns whether it was already present.
func (fs *FloorSet) set(floor Floor) bool {
	for i, f := range fs.floors {
		if f == floor {
			return true
		}
		if fs.before(floor, f) {
			fs.floors = slices.Insert(fs.floors, i, floor)
			return false
		}
	}
	fs.floors = append(fs.floors, floor)
	return false
}

func (fs *FloorSet) head() (Floor, bool) {
	if len(fs.floors) == 0 {
		return 0, false
	}
	return fs.floors[0], true
}

func (fs *FloorSet) pop() Floor {
	if len(fs.floors) == 0 {
		panic("pop from empty FloorSet")
	}
	f := fs.floors[0]
	fs.floors = fs.floors[1:]
	return f
}

func (fs *FloorSet) has(floor Floor) bool { return slices.Contains(fs.floors, floor) }
func (fs *FloorSet) empty() bool          { return len(fs.floors) == 0 }

// Floors returns a copy in set order.
func (fs *FloorSet) Floors() []Floor {
	return append([]Floor{}, fs.floors...)
}

// ordered reports whether the floors are strictly monotone in set order.
func (fs *FloorSet) ordered() bool {
	for i := 1; i < len(fs.floors); i++ {
		if !fs.before(fs.floors[i-1], fs.floors[i]) {
			return false
		}
	}
	return true
}
