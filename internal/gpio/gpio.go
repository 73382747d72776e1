// gpio drives a single binary output line on the host board.
// The buzzer only ever needs three things from the platform: pick how pins are
// numbered, claim a pin as an output, and set it high or low.
package gpio

import (
	"errors"
	"fmt"
	"strings"
)

// Driver is implemented by every platform backend.
type Driver interface {
	// Init selects the addressing mode and opens the host, safe to call repeatedly.
	Init() error
	// ConfigureOutput claims pin and sets it up as an output.
	ConfigureOutput(pin int) error
	SetLevel(pin int, high bool) error
	Close() error
}

var (
	ErrNotOpen       = errors.New("driver not initialized")
	ErrNotConfigured = errors.New("pin not configured as output")
	ErrNoSuchPin     = errors.New("no such pin")
)

// Error records a failed driver operation on a pin.
type Error struct {
	Op  string
	Pin int
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gpio %s pin %d: %v", e.Op, e.Pin, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns the driver registered under name.
func New(name string, mode Mode) (Driver, error) {
	switch strings.ToLower(name) {
	case "periph", "":
		return NewPeriph(mode), nil
	case "rpio":
		return NewRPIO(mode), nil
	case "sysfs":
		return NewSysfs(mode), nil
	}

	return nil, fmt.Errorf("unknown gpio driver %q", name)
}
