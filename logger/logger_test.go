package logger

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

var waitGroup sync.WaitGroup

func loopGetLogger(t *testing.T, routineNum int) {
	defer waitGroup.Done()
	for i := 0; i < 1000; i++ {
		if GetLogger() == nil {
			t.Errorf("GetLogger() = nil in goroutine %d, expected a non-nil logger", routineNum)
		}
	}
}

func TestGetLogger(t *testing.T) {
	if GetLogger() == nil {
		t.Errorf("GetLogger() = nil, expected a non-nil logger")
	}

	waitGroup.Add(2)
	go loopGetLogger(t, 1)
	go loopGetLogger(t, 2)
	waitGroup.Wait()
}

func TestGetLoggerConfiguredAppliesLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	first := GetLogger()
	second := GetLoggerConfigured(zerolog.Disabled)
	if first != second {
		t.Errorf("GetLoggerConfigured() = %p, expected shared logger %p", second, first)
	}
	if zerolog.GlobalLevel() != zerolog.Disabled {
		t.Errorf("GlobalLevel() = %v, expected %v", zerolog.GlobalLevel(), zerolog.Disabled)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"warn":     zerolog.WarnLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
	}
	for name, expected := range cases {
		if got, err := ParseLevel(name); err != nil || got != expected {
			t.Errorf("ParseLevel(%q) = %v, %v, expected %v", name, got, err, expected)
		}
	}
	if _, err := ParseLevel("degub"); err == nil {
		t.Errorf("ParseLevel(\"degub\") returned nil error")
	}
}
