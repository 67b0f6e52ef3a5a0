package lift

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tiendc/go-deepcopy"
)

var ErrStopped = errors.New("server stopped")

// Server owns a System and runs every call against it on one goroutine,
// so callers on any goroutine see whole operations and whole ticks.
// Optionally it also ticks the System on a timer.
type Server struct {
	sys        *System
	chRequests chan serverRequest
	done       chan struct{}
	published  atomic.Pointer[FleetSnapshot] // Replaced after every request and tick.
}

type serverRequest struct {
	run     func(*System) error
	chReply chan<- error
}

func NewServer(sys *System) *Server {
	srv := &Server{
		sys:        sys,
		chRequests: make(chan serverRequest),
		done:       make(chan struct{}),
	}
	srv.publish()
	return srv
}

// Run serves requests until ctx is done. With tickEvery > 0 the System is
// also ticked on that period. Run must be called once.
func (srv *Server) Run(ctx context.Context, tickEvery time.Duration) error {
	defer close(srv.done)

	var timer <-chan time.Time
	if tickEvery > 0 {
		ticker := time.NewTicker(tickEvery)
		defer ticker.Stop()
		timer = ticker.C
		Log.Info().Msgf("Server ticking every %s", tickEvery)
	}
	for {
		select {
		case <-ctx.Done():
			Log.Info().Msgf("Server stopping after %d ticks", srv.sys.Ticks())
			return ctx.Err()

		case req := <-srv.chRequests:
			req.chReply <- req.run(srv.sys)
			srv.publish()

		case <-timer:
			srv.sys.Tick()
			srv.publish()
		}
	}
}

func (srv *Server) publish() {
	snap := srv.sys.Snapshot()
	srv.published.Store(&snap)
}

// Observe returns a private copy of the fleet as of the last completed
// request or tick. It does not wait for the server loop.
func (srv *Server) Observe() (FleetSnapshot, error) {
	var snap FleetSnapshot
	err := deepcopy.Copy(&snap, srv.published.Load())
	return snap, err
}

// Do runs fn on the server goroutine and returns its error.
func (srv *Server) Do(ctx context.Context, fn func(*System) error) error {
	chReply := make(chan error, 1)
	select {
	case srv.chRequests <- serverRequest{fn, chReply}:
	case <-srv.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-chReply
}

func (srv *Server) AddCar(ctx context.Context, floor Floor, capacity int) (int, error) {
	var id int
	err := srv.Do(ctx, func(s *System) (err error) {
		id, err = s.AddCar(floor, capacity)
		return err
	})
	return id, err
}

func (srv *Server) RemoveCar(ctx context.Context, id int) error {
	return srv.Do(ctx, func(s *System) error { return s.RemoveCar(id) })
}

func (srv *Server) Relocate(ctx context.Context, id int, floor Floor) error {
	return srv.Do(ctx, func(s *System) error { return s.Relocate(id, floor) })
}

func (srv *Server) Status(ctx context.Context, id int) (CarSnapshot, error) {
	var status CarSnapshot
	err := srv.Do(ctx, func(s *System) (err error) {
		status, err = s.Status(id)
		return err
	})
	return status, err
}

func (srv *Server) Pickup(ctx context.Context, origin Floor, passengers []Passenger, dir Direction) error {
	return srv.Do(ctx, func(s *System) error { return s.Pickup(origin, passengers, dir) })
}

func (srv *Server) Select(ctx context.Context, id int, floor Floor) error {
	return srv.Do(ctx, func(s *System) error { return s.Select(id, floor) })
}

// Tick steps the fleet n times as one request.
func (srv *Server) Tick(ctx context.Context, n int) error {
	return srv.Do(ctx, func(s *System) error {
		for i := 0; i < n; i++ {
			s.Tick()
		}
		return nil
	})
}

func (srv *Server) Forecast(ctx context.Context, id int, limit int) (int, error) {
	var ticks int
	err := srv.Do(ctx, func(s *System) (err error) {
		ticks, err = s.Forecast(id, limit)
		return err
	})
	return ticks, err
}

// Snapshot returns the fleet state after every request queued before it.
func (srv *Server) Snapshot(ctx context.Context) (FleetSnapshot, error) {
	var snap FleetSnapshot
	err := srv.Do(ctx, func(s *System) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}
