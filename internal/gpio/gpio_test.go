package gpio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestModeLine(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		pin     int
		want    int
		wantErr bool
	}{
		{"board buzzer pin", Board, 32, 12, false},
		{"board pin 3", Board, 3, 2, false},
		{"board ground", Board, 6, 0, true},
		{"board out of range", Board, 41, 0, true},
		{"bcm passthrough", BCM, 20, 20, false},
		{"negative", BCM, -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.mode.Line(tt.pin)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Line(%d) error = %v, wantErr %v", tt.pin, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Line(%d) = %d, want %d", tt.pin, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"board", Board, false},
		{"BCM", BCM, false},
		{"", Board, false},
		{" bcm ", BCM, false},
		{"wiringpi", Board, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"periph", "rpio", "sysfs", "", "SYSFS"} {
		d, err := New(name, BCM)
		if err != nil {
			t.Errorf("New(%q) error: %v", name, err)
		}
		if d == nil {
			t.Errorf("New(%q) returned nil driver", name)
		}
	}

	if _, err := New("pigpio", BCM); err == nil {
		t.Error("New() with unknown driver should return error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	var err error = &Error{Op: "set", Pin: 32, Err: ErrNotConfigured}
	if !errors.Is(err, ErrNotConfigured) {
		t.Error("errors.Is should see the wrapped error")
	}
	if err.Error() != "gpio set pin 32: pin not configured as output" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

// fakeSysfs lays out the files the kernel would provide for an exported line
func fakeSysfs(t *testing.T, exportedLines ...string) string {
	t.Helper()

	base := t.TempDir()
	for _, f := range []string{"export", "unexport"} {
		if err := os.WriteFile(filepath.Join(base, f), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}

	for _, line := range exportedLines {
		dir := filepath.Join(base, "gpio"+line)
		if err := os.Mkdir(dir, 0700); err != nil {
			t.Fatal(err)
		}
		for _, f := range []string{"direction", "value"} {
			if err := os.WriteFile(filepath.Join(dir, f), nil, 0600); err != nil {
				t.Fatal(err)
			}
		}
	}

	return base
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestSysfs_SetLevel(t *testing.T) {
	base := fakeSysfs(t, "12")
	d := newSysfs(base, Board)

	if err := d.ConfigureOutput(32); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("ConfigureOutput before Init = %v, want ErrNotOpen", err)
	}

	if err := d.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if err := d.ConfigureOutput(32); err != nil {
		t.Fatalf("ConfigureOutput() error: %v", err)
	}
	if got := readFile(t, filepath.Join(base, "gpio12", "direction")); got != "out" {
		t.Errorf("direction = %q, want out", got)
	}

	if err := d.SetLevel(32, true); err != nil {
		t.Fatalf("SetLevel(true) error: %v", err)
	}
	if got := readFile(t, filepath.Join(base, "gpio12", "value")); got != "1" {
		t.Errorf("value = %q, want 1", got)
	}

	if err := d.SetLevel(32, false); err != nil {
		t.Fatalf("SetLevel(false) error: %v", err)
	}
	if got := readFile(t, filepath.Join(base, "gpio12", "value")); got != "0" {
		t.Errorf("value = %q, want 0", got)
	}

	// already exported lines are left alone
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if got := readFile(t, filepath.Join(base, "unexport")); got != "" {
		t.Errorf("unexport = %q, want nothing written", got)
	}
}

func TestSysfs_SetLevelUnconfigured(t *testing.T) {
	d := newSysfs(fakeSysfs(t), BCM)
	_ = d.Init()

	err := d.SetLevel(4, true)
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Op != "set" || gerr.Pin != 4 {
		t.Fatalf("SetLevel() on unconfigured pin = %v", err)
	}
}

func TestSysfs_ExportAndUnexport(t *testing.T) {
	base := fakeSysfs(t)
	d := newSysfs(base, BCM)
	_ = d.Init()

	// the fake kernel does not create gpio20/ on export, so direction fails
	err := d.ConfigureOutput(20)
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Op != "direction" {
		t.Fatalf("ConfigureOutput() = %v, want direction error", err)
	}
	if got := readFile(t, filepath.Join(base, "export")); got != "20" {
		t.Errorf("export = %q, want 20", got)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if got := readFile(t, filepath.Join(base, "unexport")); got != "20" {
		t.Errorf("unexport = %q, want 20", got)
	}
}

func TestSysfs_InitMissingBase(t *testing.T) {
	d := newSysfs(filepath.Join(os.TempDir(), "does-not-exist-gpio"), BCM)
	if err := d.Init(); err == nil {
		t.Error("Init() with missing sysfs base should fail")
	}
}
