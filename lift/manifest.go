package lift

// Manifest holds the passengers riding a car. Order is boarding order;
// several passengers may share a destination.
type Manifest struct {
	passengers []Passenger
}

func (m *Manifest) board(ps ...Passenger) {
	m.passengers = append(m.passengers, ps...)
}

// dropOff removes every passenger bound for floor and returns how many left.
func (m *Manifest) dropOff(floor Floor) int {
	kept := m.passengers[:0]
	for _, p := range m.passengers {
		if p.Destination != floor {
			kept = append(kept, p)
		}
	}
	n := len(m.passengers) - len(kept)
	clear(m.passengers[len(kept):])
	m.passengers = kept
	return n
}

func (m *Manifest) Len() int { return len(m.passengers) }

// Passengers returns a copy in boarding order.
func (m *Manifest) Passengers() []Passenger {
	return append([]Passenger{}, m.passengers...)
}
