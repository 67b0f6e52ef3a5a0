package lift

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// startServer runs srv until the test ends. stop cancels Run and returns
// its result.
func startServer(t *testing.T, s *System, tickEvery time.Duration) (srv *Server, stop func() error) {
	t.Helper()
	srv = NewServer(s)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, tickEvery) }()
	stop = sync.OnceValue(func() error {
		cancel()
		return <-done
	})
	t.Cleanup(func() { stop() })
	return srv, stop
}

func TestServerSerialisesCalls(t *testing.T) {
	s := newTestSystem(t, 4)
	srv, _ := startServer(t, s, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < MaxCars; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := srv.AddCar(ctx, 1, 4); err != nil {
				t.Errorf("AddCar() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := srv.AddCar(ctx, 1, 4); !errors.Is(err, ErrFleetFull) {
		t.Errorf("AddCar() on a full fleet error = %v, expected %v", err, ErrFleetFull)
	}
	snap, err := srv.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	seen := map[int]bool{}
	for _, c := range snap.Cars {
		seen[c.ID] = true
	}
	if len(seen) != MaxCars {
		t.Errorf("%d distinct ids, expected %d", len(seen), MaxCars)
	}
}

func TestServerOperations(t *testing.T) {
	srv, _ := startServer(t, newTestSystem(t, 4, 1), 0)
	ctx := context.Background()

	if err := srv.Pickup(ctx, 7, Passengers(2), DOWN); err != nil {
		t.Fatalf("Pickup() error = %v", err)
	}
	n, err := srv.Forecast(ctx, 1, 100)
	if err != nil || n != 12 {
		t.Errorf("Forecast() = %d, %v, expected 12", n, err)
	}
	if err := srv.Tick(ctx, 7); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	st, err := srv.Status(ctx, 1)
	if err != nil || st.Floor != 7 || st.Direction != DOWN {
		t.Errorf("Status(1) = %+v, %v, expected DOWN at 7", st, err)
	}
	if err := srv.Select(ctx, 1, 9); err != nil {
		t.Errorf("Select() error = %v", err)
	}
	if err := srv.RemoveCar(ctx, 1); !errors.Is(err, ErrCarBusy) {
		t.Errorf("RemoveCar() of a busy car error = %v, expected %v", err, ErrCarBusy)
	}
	if err := srv.Relocate(ctx, 1, 3); !errors.Is(err, ErrCarBusy) {
		t.Errorf("Relocate() of a busy car error = %v, expected %v", err, ErrCarBusy)
	}
}

func TestServerObserve(t *testing.T) {
	srv, _ := startServer(t, newTestSystem(t, 4, 1), 0)
	ctx := context.Background()

	if err := srv.Pickup(ctx, 1, Passengers(4), UP); err != nil {
		t.Fatalf("Pickup() error = %v", err)
	}
	if err := srv.Tick(ctx, 2); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	snap, err := srv.Observe()
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if snap.Ticks != 2 || snap.Cars[0].Floor != 2 || snap.Cars[0].ManifestSize != 1 {
		t.Errorf("Observe() = %+v, expected Car-1 at 2 with 1 rider after 2 ticks", snap)
	}

	// Editing the copy leaves the next observer alone.
	snap.Cars[0].GoalsAbove[0] = 99
	again, _ := srv.Observe()
	if again.Cars[0].GoalsAbove[0] != 4 {
		t.Errorf("Observe() goals = %v after editing an earlier copy, expected [4]", again.Cars[0].GoalsAbove)
	}
}

func TestServerTicksOnTimer(t *testing.T) {
	srv, _ := startServer(t, newTestSystem(t, 4, 1), time.Millisecond)
	deadline := time.Now().Add(10 * time.Second)
	for {
		snap, err := srv.Observe()
		if err != nil {
			t.Fatalf("Observe() error = %v", err)
		}
		if snap.Ticks >= 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Ticks = %d after 10s, expected the timer to tick", snap.Ticks)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestServerStopped(t *testing.T) {
	srv, stop := startServer(t, newTestSystem(t, 4, 1), 0)
	if err := stop(); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, expected %v", err, context.Canceled)
	}

	if _, err := srv.AddCar(context.Background(), 2, 4); !errors.Is(err, ErrStopped) {
		t.Errorf("AddCar() after stop error = %v, expected %v", err, ErrStopped)
	}
}

func TestServerCallerContext(t *testing.T) {
	srv := NewServer(newTestSystem(t, 4, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := srv.Tick(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Tick() with a cancelled context error = %v, expected %v", err, context.Canceled)
	}
}
