package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError describes why a subtitle block or timestamp was rejected.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Input)
}

// ParseTimestamp converts `HH:MM:SS,mmm` (or `HH:MM:SS.mmm`) into seconds.
// The millisecond part is optional.
func ParseTimestamp(s string) (float64, error) {
	clock, millis, _ := strings.Cut(strings.ReplaceAll(s, ".", ","), ",")

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, &ParseError{Input: s, Reason: "expected HH:MM:SS"}
	}

	var fields [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, &ParseError{Input: s, Reason: "non-numeric time component"}
		}
		fields[i] = n
	}

	var ms uint64
	if millis != "" {
		n, err := strconv.ParseUint(millis, 10, 32)
		if err != nil {
			return 0, &ParseError{Input: s, Reason: "non-numeric milliseconds"}
		}
		ms = n
	}

	return float64(fields[0])*3600 + float64(fields[1])*60 + float64(fields[2]) + float64(ms)/1000, nil
}

// FormatTimestamp renders seconds as `HH:MM:SS,mmm`. Negative input renders as zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	// whole milliseconds, so 3661.123 does not render as ,122
	total := int64(math.Round(seconds * 1000))

	ms := total % 1000
	s := (total / 1000) % 60
	m := (total / 60_000) % 60
	h := total / 3_600_000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
