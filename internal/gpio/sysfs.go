package gpio

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// sysfs uses the legacy /sys/class/gpio interface.
// orangepi gpio numbering: (position of letter in alphabet - 1) * 32 + pin number
// e.g. PA20 => 20, use BCM mode there since the header table is raspberry pi only
type sysfs struct {
	base string
	mode Mode

	mu       sync.Mutex
	opened   bool
	exported map[int]string // pin => line, only the ones we exported ourselves
	lines    map[int]string
}

const sysfsBase = "/sys/class/gpio"

func NewSysfs(mode Mode) Driver {
	return newSysfs(sysfsBase, mode)
}

func newSysfs(base string, mode Mode) *sysfs {
	return &sysfs{
		base:     base,
		mode:     mode,
		exported: map[int]string{},
		lines:    map[int]string{},
	}
}

func (d *sysfs) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := os.Stat(d.base); err != nil {
		return &Error{Op: "init", Pin: -1, Err: err}
	}
	d.opened = true
	return nil
}

func (d *sysfs) ConfigureOutput(pin int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return &Error{Op: "configure", Pin: pin, Err: ErrNotOpen}
	}

	l, err := d.mode.Line(pin)
	if err != nil {
		return &Error{Op: "configure", Pin: pin, Err: err}
	}
	line := strconv.Itoa(l)

	if _, err := os.Stat(d.path(line)); err != nil {
		if err := write(filepath.Join(d.base, "export"), line); err != nil {
			return &Error{Op: "export", Pin: pin, Err: err}
		}
		d.exported[pin] = line
	}

	if err := write(d.path(line, "direction"), "out"); err != nil {
		return &Error{Op: "direction", Pin: pin, Err: err}
	}

	d.lines[pin] = line
	return nil
}

func (d *sysfs) SetLevel(pin int, high bool) error {
	d.mu.Lock()
	line, ok := d.lines[pin]
	d.mu.Unlock()

	if !ok {
		return &Error{Op: "set", Pin: pin, Err: ErrNotConfigured}
	}

	v := "0"
	if high {
		v = "1"
	}
	if err := write(d.path(line, "value"), v); err != nil {
		return &Error{Op: "set", Pin: pin, Err: err}
	}
	return nil
}

func (d *sysfs) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for pin, line := range d.exported {
		if err := write(filepath.Join(d.base, "unexport"), line); err != nil && firstErr == nil {
			firstErr = &Error{Op: "unexport", Pin: pin, Err: err}
		}
		delete(d.exported, pin)
	}
	d.lines = map[int]string{}
	d.opened = false

	return firstErr
}

func (d *sysfs) path(line string, file ...string) string {
	return filepath.Join(append([]string{d.base, "gpio" + line}, file...)...)
}

func write(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.WriteString(value)
	if err != nil {
		return err
	}

	if n < len(value) {
		return io.ErrShortWrite
	}

	return nil
}
