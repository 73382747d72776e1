package gpio

import (
	"strconv"
	"sync"

	pgpio "periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

type periph struct {
	mode Mode

	mu     sync.Mutex
	opened bool
	pins   map[int]pgpio.PinIO
}

// NewPeriph returns a driver backed by periph.io, it works on most ARM boards.
func NewPeriph(mode Mode) Driver {
	return &periph{
		mode: mode,
		pins: map[int]pgpio.PinIO{},
	}
}

func (d *periph) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// host.Init is a no-op after the first successful call
	if _, err := host.Init(); err != nil {
		return &Error{Op: "init", Pin: -1, Err: err}
	}
	d.opened = true
	return nil
}

func (d *periph) ConfigureOutput(pin int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return &Error{Op: "configure", Pin: pin, Err: ErrNotOpen}
	}

	line, err := d.mode.Line(pin)
	if err != nil {
		return &Error{Op: "configure", Pin: pin, Err: err}
	}

	p := gpioreg.ByName("GPIO" + strconv.Itoa(line))
	if p == nil {
		return &Error{Op: "configure", Pin: pin, Err: ErrNoSuchPin}
	}

	d.pins[pin] = p
	return nil
}

func (d *periph) SetLevel(pin int, high bool) error {
	d.mu.Lock()
	p, ok := d.pins[pin]
	d.mu.Unlock()

	if !ok {
		return &Error{Op: "set", Pin: pin, Err: ErrNotConfigured}
	}

	// Out switches the pin to output mode on first use
	if err := p.Out(pgpio.Level(high)); err != nil {
		return &Error{Op: "set", Pin: pin, Err: err}
	}
	return nil
}

func (d *periph) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for pin, p := range d.pins {
		_ = p.Halt()
		delete(d.pins, pin)
	}
	return nil
}
