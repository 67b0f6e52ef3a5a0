package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/michael-deng/elevator/lift"
	"github.com/michael-deng/elevator/logger"
	"gopkg.in/yaml.v3"
)

var Log = logger.GetLogger()

// ForecastLimit bounds the eta command.
const ForecastLimit = 10000

var errQuit = errors.New("quit")

// Controller is the fleet surface the console drives. *lift.Server
// implements it.
type Controller interface {
	AddCar(ctx context.Context, floor lift.Floor, capacity int) (int, error)
	RemoveCar(ctx context.Context, id int) error
	Relocate(ctx context.Context, id int, floor lift.Floor) error
	Status(ctx context.Context, id int) (lift.CarSnapshot, error)
	Pickup(ctx context.Context, origin lift.Floor, passengers []lift.Passenger, dir lift.Direction) error
	Select(ctx context.Context, id int, floor lift.Floor) error
	Tick(ctx context.Context, n int) error
	Forecast(ctx context.Context, id int, limit int) (int, error)
	Snapshot(ctx context.Context) (lift.FleetSnapshot, error)
}

type command struct {
	usage string
	run   func(c *Console, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"car":     {"car <floor> <capacity>", (*Console).addCar},
		"pickup":  {"pickup <origin> <up|down> <dest>...", (*Console).pickup},
		"select":  {"select <car> <floor>", (*Console).selectFloor},
		"status":  {"status [car]", (*Console).status},
		"tick":    {"tick [n]", (*Console).tick},
		"eta":     {"eta <car>", (*Console).eta},
		"remove":  {"remove <car>", (*Console).remove},
		"move":    {"move <car> <floor>", (*Console).move},
		"pending": {"pending", (*Console).pending},
		"dump":    {"dump", (*Console).dump},
		"save":    {"save <file>", (*Console).save},
		"help":    {"help", (*Console).help},
		"quit":    {"quit", func(*Console, context.Context, []string) error { return errQuit }},
	}
}

// Order of the help listing.
var commandOrder = []string{"car", "pickup", "select", "status", "tick", "eta", "remove", "move", "pending", "dump", "save", "help", "quit"}

type Console struct {
	ctrl Controller
	out  io.Writer
}

func New(ctrl Controller, out io.Writer) *Console {
	return &Console{ctrl: ctrl, out: out}
}

// Run executes one command per input line until quit, end of input or ctx
// is done. Command errors are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.Exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if errors.Is(err, lift.ErrStopped) || errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// Exec runs a single command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	Log.Debug().Msgf("Console: %s", line)
	return cmd.run(c, ctx, fields[1:])
}

func (c *Console) addCar(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("car")
	}
	floor, err := parseFloor(args[0])
	if err != nil {
		return err
	}
	capacity, err := parseInt("capacity", args[1])
	if err != nil {
		return err
	}
	id, err := c.ctrl.AddCar(ctx, floor, capacity)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "car %d\n", id)
	return nil
}

func (c *Console) pickup(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usageError("pickup")
	}
	origin, err := parseFloor(args[0])
	if err != nil {
		return err
	}
	dir, err := lift.ParseDirection(args[1])
	if err != nil {
		return err
	}
	dests := make([]lift.Floor, 0, len(args)-2)
	for _, arg := range args[2:] {
		f, err := parseFloor(arg)
		if err != nil {
			return err
		}
		dests = append(dests, f)
	}
	if err := c.ctrl.Pickup(ctx, origin, lift.Passengers(dests...), dir); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

func (c *Console) selectFloor(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("select")
	}
	id, err := parseInt("car", args[0])
	if err != nil {
		return err
	}
	floor, err := parseFloor(args[1])
	if err != nil {
		return err
	}
	if err := c.ctrl.Select(ctx, id, floor); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

func (c *Console) status(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		snap, err := c.ctrl.Snapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "tick %d, boarded %d, delivered %d\n", snap.Ticks, snap.Boarded, snap.Delivered)
		for _, car := range snap.Cars {
			fmt.Fprintln(c.out, formatCar(car))
		}
		return nil
	case 1:
		id, err := parseInt("car", args[0])
		if err != nil {
			return err
		}
		car, err := c.ctrl.Status(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, formatCar(car))
		return nil
	default:
		return usageError("status")
	}
}

func (c *Console) tick(ctx context.Context, args []string) error {
	n := 1
	switch len(args) {
	case 0:
	case 1:
		var err error
		if n, err = parseInt("n", args[0]); err != nil {
			return err
		}
		if n < 1 {
			return fmt.Errorf("tick count %d must be positive", n)
		}
	default:
		return usageError("tick")
	}
	if err := c.ctrl.Tick(ctx, n); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

func (c *Console) eta(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("eta")
	}
	id, err := parseInt("car", args[0])
	if err != nil {
		return err
	}
	ticks, err := c.ctrl.Forecast(ctx, id, ForecastLimit)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Car-%d idle in %d ticks\n", id, ticks)
	return nil
}

func (c *Console) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("remove")
	}
	id, err := parseInt("car", args[0])
	if err != nil {
		return err
	}
	if err := c.ctrl.RemoveCar(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

func (c *Console) move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("move")
	}
	id, err := parseInt("car", args[0])
	if err != nil {
		return err
	}
	floor, err := parseFloor(args[1])
	if err != nil {
		return err
	}
	if err := c.ctrl.Relocate(ctx, id, floor); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

func (c *Console) pending(ctx context.Context, args []string) error {
	snap, err := c.ctrl.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(snap.Pending) == 0 {
		fmt.Fprintln(c.out, "no pending pickups")
	}
	for _, p := range snap.Pending {
		fmt.Fprintf(c.out, "floor %s: %d waiting for Car-%d\n", p.Origin, len(p.Passengers), p.AssignedCar)
	}
	return nil
}

func (c *Console) dump(ctx context.Context, args []string) error {
	snap, err := c.ctrl.Snapshot(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(c.out)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return err
	}
	return enc.Close()
}

func (c *Console) save(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("save")
	}
	snap, err := c.ctrl.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := Save(args[0], snap); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s\n", args[0])
	return nil
}

func (c *Console) help(ctx context.Context, args []string) error {
	for _, name := range commandOrder {
		fmt.Fprintln(c.out, "  "+commands[name].usage)
	}
	return nil
}

// Save writes a fleet snapshot as YAML.
func Save(path string, snap lift.FleetSnapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSnapshot reads a snapshot written by Save.
func LoadSnapshot(path string) (lift.FleetSnapshot, error) {
	var snap lift.FleetSnapshot
	file, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer file.Close()
	if err := yaml.NewDecoder(file).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decoding %s: %w", path, err)
	}
	return snap, nil
}

func formatCar(car lift.CarSnapshot) string {
	return fmt.Sprintf("Car-%d floor %s %s load %d/%d above %v below %v",
		car.ID, car.Floor, car.Direction, car.ManifestSize, car.Capacity, car.GoalsAbove, car.GoalsBelow)
}

func usageError(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}

func parseInt(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", what, s)
	}
	return n, nil
}

func parseFloor(s string) (lift.Floor, error) {
	n, err := parseInt("floor", s)
	return lift.Floor(n), err
}
