package lift

import "slices"

// PendingRequest is a hall call promised to a car that has not reached the
// origin floor yet. The car is referenced by id.
type PendingRequest struct {
	Passengers  []Passenger `yaml:"passengers"`
	AssignedCar int         `yaml:"assigned_car"`
}

// pendingTable maps an origin floor to the request waiting there. There is
// at most one request per floor.
type pendingTable map[Floor]*PendingRequest

// merge adds passengers to the request at origin, creating it for carID
// when there is none. An existing request keeps its assigned car. It
// returns the car responsible for the floor.
func (t pendingTable) merge(origin Floor, ps []Passenger, carID int) int {
	if req, ok := t[origin]; ok {
		req.Passengers = append(req.Passengers, ps...)
		return req.AssignedCar
	}
	t[origin] = &PendingRequest{
		Passengers:  append([]Passenger{}, ps...),
		AssignedCar: carID,
	}
	return carID
}

// claim removes and returns the passengers waiting at floor when the
// request there is promised to carID.
func (t pendingTable) claim(floor Floor, carID int) ([]Passenger, bool) {
	req, ok := t[floor]
	if !ok || req.AssignedCar != carID {
		return nil, false
	}
	delete(t, floor)
	return req.Passengers, true
}

func (t pendingTable) promisedTo(carID int) bool {
	for _, req := range t {
		if req.AssignedCar == carID {
			return true
		}
	}
	return false
}

// floors returns the origin floors in ascending order.
func (t pendingTable) floors() []Floor {
	floors := make([]Floor, 0, len(t))
	for f := range t {
		floors = append(floors, f)
	}
	slices.Sort(floors)
	return floors
}
