package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/michael-deng/elevator/lift"
	"github.com/michael-deng/elevator/logger"
	"github.com/xyproto/randomstring"
	"gopkg.in/yaml.v3"
)

const NAME_DEFAULT_LEN = 10

// Environment variables that override the file.
const (
	EnvName         = "LIFT_NAME"
	EnvLogLevel     = "LIFT_LOG_LEVEL"
	EnvTickInterval = "LIFT_TICK_INTERVAL"
)

type Floors struct {
	Bottom lift.Floor `yaml:"bottom"`
	Top    lift.Floor `yaml:"top"`
}

type Car struct {
	Floor    lift.Floor `yaml:"floor"`
	Capacity int        `yaml:"capacity"`
}

type Config struct {
	Name         string        `yaml:"name"`
	Floors       Floors        `yaml:"floors"`
	Cars         []Car         `yaml:"cars"`
	TickInterval time.Duration `yaml:"tick_interval"`
	LogLevel     string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Floors:       Floors{Bottom: 1, Top: 10},
		Cars:         []Car{{Floor: 1, Capacity: 4}},
		TickInterval: lift.Tick,
		LogLevel:     "info",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&c); err != nil {
		return c, fmt.Errorf("decoding %s: %w", path, err)
	}
	return c, nil
}

// ApplyEnv overrides fields from envFile (skipped when empty) and then from
// the process environment, which wins.
func (c *Config) ApplyEnv(envFile string) error {
	values := map[string]string{}
	if envFile != "" {
		read, err := godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
		values = read
	}
	for _, key := range []string{EnvName, EnvLogLevel, EnvTickInterval} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	if v, ok := values[EnvName]; ok {
		c.Name = v
	}
	if v, ok := values[EnvLogLevel]; ok {
		c.LogLevel = v
	}
	if v, ok := values[EnvTickInterval]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTickInterval, err)
		}
		c.TickInterval = d
	}
	return nil
}

// Finish fills in a random name when none was given and validates.
func (c *Config) Finish() error {
	if c.Name == "" {
		c.Name = randomstring.EnglishFrequencyString(NAME_DEFAULT_LEN)
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.Floors.Bottom >= c.Floors.Top {
		errs = append(errs, fmt.Errorf("floors: bottom %s must be below top %s", c.Floors.Bottom, c.Floors.Top))
	}
	if len(c.Cars) > lift.MaxCars {
		errs = append(errs, fmt.Errorf("cars: %d configured, at most %d", len(c.Cars), lift.MaxCars))
	}
	for i, car := range c.Cars {
		if car.Floor < c.Floors.Bottom || car.Floor > c.Floors.Top {
			errs = append(errs, fmt.Errorf("cars[%d]: floor %s outside [%s, %s]", i, car.Floor, c.Floors.Bottom, c.Floors.Top))
		}
		if car.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("cars[%d]: capacity %d", i, car.Capacity))
		}
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("tick_interval: %s is negative", c.TickInterval))
	}
	return errors.Join(errs...)
}

// Build creates the System the config describes.
func (c *Config) Build() (*lift.System, error) {
	sys, err := lift.NewSystem(c.Floors.Bottom, c.Floors.Top)
	if err != nil {
		return nil, err
	}
	for _, car := range c.Cars {
		if _, err := sys.AddCar(car.Floor, car.Capacity); err != nil {
			return nil, err
		}
	}
	return sys, nil
}
