// pattern converts beep patterns to and from the text form they are persisted in,
// e.g. "50, 50, 50, 50, 50, 50, 100".
// Segments alternate between sounding and silence, starting with sounding.
package pattern

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxSegment is the longest a single decoded segment can be, longer values are clamped.
	MaxSegment = time.Second
	// MaxTotal is the longest a decoded pattern can play for.
	MaxTotal = 3 * time.Second
)

// Pattern is an ordered list of on, off, on, ... durations.
type Pattern []time.Duration

// Total is the time it takes to play the pattern.
func (p Pattern) Total() time.Duration {
	var t time.Duration
	for _, d := range p {
		t += d
	}
	return t
}

func (p Pattern) String() string {
	return Encode(p)
}

// Encode renders every segment as whole milliseconds, truncated, separated by ", ".
// The pattern is not validated.
func Encode(p Pattern) string {
	parts := make([]string, 0, len(p))
	for _, d := range p {
		parts = append(parts, strconv.FormatInt(int64(d/time.Millisecond), 10))
	}

	return strings.Join(parts, ", ")
}

// Decode parses a comma separated list of milliseconds.
// Tokens that are not an integer are skipped. Negative values become empty segments
// so the on/off phase of what follows is kept, values above MaxSegment are clamped. Once the running total would exceed MaxTotal decoding stops:
// the value that overflowed and everything after it are dropped.
func Decode(s string) Pattern {
	p := Pattern{}
	var total time.Duration
	for _, tok := range strings.Split(s, ",") {
		// out of range values come back as math.MaxInt64/MinInt64 and get clamped below
		ms, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			continue
		}
		var d time.Duration
		switch {
		case ms <= 0:
		case ms >= int64(MaxSegment/time.Millisecond):
			d = MaxSegment
		default:
			d = time.Duration(ms) * time.Millisecond
		}

		total += d
		if total > MaxTotal {
			break
		}
		p = append(p, d)
	}

	return p
}
