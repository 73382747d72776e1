package gpio

import (
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// rpioDriver maps /dev/gpiomem directly, raspberry pi only
type rpioDriver struct {
	mode Mode

	mu     sync.Mutex
	opened bool
	pins   map[int]rpio.Pin
}

func NewRPIO(mode Mode) Driver {
	return &rpioDriver{
		mode: mode,
		pins: map[int]rpio.Pin{},
	}
}

func (d *rpioDriver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.opened {
		return nil
	}
	if err := rpio.Open(); err != nil {
		return &Error{Op: "init", Pin: -1, Err: err}
	}
	d.opened = true
	return nil
}

func (d *rpioDriver) ConfigureOutput(pin int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// touching an rpio.Pin before Open dereferences unmapped memory
	if !d.opened {
		return &Error{Op: "configure", Pin: pin, Err: ErrNotOpen}
	}

	line, err := d.mode.Line(pin)
	if err != nil {
		return &Error{Op: "configure", Pin: pin, Err: err}
	}

	p := rpio.Pin(line)
	p.Output()
	d.pins[pin] = p
	return nil
}

func (d *rpioDriver) SetLevel(pin int, high bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pins[pin]
	if !ok || !d.opened {
		return &Error{Op: "set", Pin: pin, Err: ErrNotConfigured}
	}

	if high {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (d *rpioDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return nil
	}
	d.opened = false
	d.pins = map[int]rpio.Pin{}
	return rpio.Close()
}
