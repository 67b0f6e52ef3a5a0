package lift

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Forecast returns how many ticks car id needs to finish its current work
// (park IDLE with no goals and no pickup promised to it) if no new calls
// arrive. The fleet is simulated on a copy; s is not changed.
func (s *System) Forecast(id int, limit int) (int, error) {
	if _, err := s.car(id); err != nil {
		return 0, err
	}
	sim, err := restore(s.Snapshot(), zerolog.Nop())
	if err != nil {
		return 0, err
	}
	c, err := sim.car(id)
	if err != nil {
		return 0, err
	}
	for ticks := 0; ; ticks++ {
		if c.idle() && !sim.pending.promisedTo(id) {
			return ticks, nil
		}
		if ticks >= limit {
			return 0, fmt.Errorf("%w: Car-%d still busy after %d ticks", ErrNoProgress, id, limit)
		}
		sim.Tick()
	}
}
