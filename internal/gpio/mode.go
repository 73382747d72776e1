package gpio

import (
	"fmt"
	"strings"
)

// Mode is the pin numbering scheme.
type Mode int

const (
	// Board numbers pins by their position on the 40 pin header.
	Board Mode = iota
	// BCM numbers pins by the SoC gpio line.
	BCM
)

func (m Mode) String() string {
	switch m {
	case Board:
		return "board"
	case BCM:
		return "bcm"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "board", "":
		return Board, nil
	case "bcm":
		return BCM, nil
	}

	return Board, fmt.Errorf("unknown pin mode %q", s)
}

// raspberry pi 40 pin header position => bcm gpio line
// power and ground positions are missing
var headerToBCM = map[int]int{
	3: 2, 5: 3, 7: 4, 8: 14, 10: 15,
	11: 17, 12: 18, 13: 27, 15: 22, 16: 23,
	18: 24, 19: 10, 21: 9, 22: 25, 23: 11,
	24: 8, 26: 7, 27: 0, 28: 1, 29: 5,
	31: 6, 32: 12, 33: 13, 35: 19, 36: 16,
	37: 26, 38: 20, 40: 21,
}

// Line translates pin to the gpio line number the drivers talk to.
func (m Mode) Line(pin int) (int, error) {
	if pin < 0 {
		return 0, ErrNoSuchPin
	}
	if m == BCM {
		return pin, nil
	}

	line, ok := headerToBCM[pin]
	if !ok {
		return 0, ErrNoSuchPin
	}
	return line, nil
}
