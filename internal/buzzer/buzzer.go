// buzzer owns the single gpio pin the piezo buzzer hangs off.
// The pin is driven to its inactive level when idle, patterns are played by
// toggling it with sleeps in between, one pattern at a time.
package buzzer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"code.sztanpet.net/zvpsz/buzzer/internal/gpio"
	"code.sztanpet.net/zvpsz/buzzer/internal/pattern"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("buzzerd.buzzer")

// DefaultBeep is the length of a plain Beep.
const DefaultBeep = 10 * time.Millisecond

// State of the pin, see Controller.
type State int

const (
	Uninitialized State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNotReady is returned by Buzz when the pin was never initialized or has failed.
var ErrNotReady = errors.New("buzzer not ready")

// DriverFault is any failure reported by the gpio driver.
type DriverFault struct {
	Op  string
	Err error
}

func (e *DriverFault) Error() string {
	return "buzzer " + e.Op + ": " + e.Err.Error()
}

func (e *DriverFault) Unwrap() error {
	return e.Err
}

// PinConfig is the pin the buzzer is on, a negative Pin disables the buzzer.
type PinConfig struct {
	Pin        int
	ActiveHigh bool
}

func (c PinConfig) Disabled() bool {
	return c.Pin < 0
}

// Controller plays patterns on the buzzer pin.
// A disabled pin turns every operation into a successful no-op.
type Controller struct {
	cfg PinConfig
	drv gpio.Driver

	// held for the whole of InitPin and Buzz so patterns never interleave
	mu sync.Mutex

	stateMu sync.RWMutex
	state   State

	settingsMu sync.RWMutex
	settings   Settings

	sleep func(time.Duration)
}

func New(cfg PinConfig, drv gpio.Driver) *Controller {
	c := &Controller{
		cfg:      cfg,
		drv:      drv,
		settings: DefaultSettings(),
		sleep:    time.Sleep,
	}
	setStateMetric(c.state)
	return c
}

func (c *Controller) Config() PinConfig {
	return c.cfg
}

func (c *Controller) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// IsReady is true for a disabled pin or one that was initialized successfully.
func (c *Controller) IsReady() bool {
	if c.cfg.Disabled() {
		return true
	}
	return c.State() == Ready
}

// InitPin claims the pin as an output and sets it to the idle level.
// Can be called again after a failure.
func (c *Controller) InitPin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.Disabled() {
		c.setState(Uninitialized)
		return nil
	}

	err := c.guard("init", func() error {
		if err := c.drv.Init(); err != nil {
			return err
		}
		if err := c.drv.ConfigureOutput(c.cfg.Pin); err != nil {
			return err
		}
		return c.drv.SetLevel(c.cfg.Pin, !c.cfg.ActiveHigh)
	})
	if err != nil {
		c.setState(Failed)
		return err
	}

	c.setState(Ready)
	return nil
}

// Beep sounds the buzzer once for d.
func (c *Controller) Beep(d time.Duration) error {
	return c.Buzz(pattern.Pattern{d})
}

// Buzz plays p and blocks until it is done. Segments alternate between on and off,
// starting with on, the pin is always left at its idle level.
func (c *Controller) Buzz(p pattern.Pattern) error {
	if c.cfg.Disabled() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() != Ready {
		return ErrNotReady
	}

	err := c.guard("buzz", func() error {
		on := true
		for _, d := range p {
			if on && d > 0 {
				if err := c.drv.SetLevel(c.cfg.Pin, c.cfg.ActiveHigh); err != nil {
					return err
				}
			}
			if d > 0 {
				c.sleep(d)
			}
			// back to idle after every segment
			if err := c.drv.SetLevel(c.cfg.Pin, !c.cfg.ActiveHigh); err != nil {
				return err
			}
			on = !on
		}
		return nil
	})
	if err != nil {
		c.setState(Failed)
		return err
	}

	patternsPlayed.Inc()
	return nil
}

// guard turns driver errors and driver panics into a DriverFault.
func (c *Controller) guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DriverFault{Op: op, Err: fmt.Errorf("driver panic: %v", r)}
		}
		if err != nil {
			driverFaults.WithLabelValues(op).Inc()
			logger.Debugf("%v", err)
		}
	}()

	if err := fn(); err != nil {
		return &DriverFault{Op: op, Err: err}
	}
	return nil
}

// must hold c.mu
func (c *Controller) setState(s State) {
	c.stateMu.Lock()
	prev := c.state
	c.state = s
	c.stateMu.Unlock()

	if prev != s {
		logger.Debugf("state %v -> %v", prev, s)
	}
	setStateMetric(s)
}
