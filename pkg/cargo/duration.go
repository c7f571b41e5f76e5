package cargo

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// PrecisionMilliseconds reports failure durations with microsecond
	// granularity. The name is historical, it comes from the runner's own
	// duration field being expressed in milliseconds.
	PrecisionMilliseconds DurationPrecision = iota
	// PrecisionSeconds reports failure durations as whole seconds.
	PrecisionSeconds
)

// DurationPrecision is the granularity applied to the duration of failed
// tests before they are reported. CI consumers disagree on how much
// precision their report viewers tolerate.
type DurationPrecision int

// ParseDurationPrecision parses a duration precision from its flag value.
func ParseDurationPrecision(value string) (DurationPrecision, error) {
	switch value {
	case "", "milliseconds":
		return PrecisionMilliseconds, nil
	case "seconds":
		return PrecisionSeconds, nil
	}

	return PrecisionMilliseconds, fmt.Errorf("%q is not a valid duration precision", value)
}

func (p DurationPrecision) String() string {
	if p == PrecisionSeconds {
		return "seconds"
	}

	return "milliseconds"
}

// Truncate applies the precision to a duration, rounding toward zero.
func (p DurationPrecision) Truncate(d time.Duration) time.Duration {
	if p == PrecisionSeconds {
		return d.Truncate(time.Second)
	}

	return d.Truncate(time.Microsecond)
}

// resolveDuration reconciles the duration encodings carried by a test event.
// exec_time wins over the millisecond duration field whenever both are
// present. ok is false when the event carries no duration at all and the
// caller must fall back to wall-clock elapsed time.
func resolveDuration(timing Timing) (d time.Duration, ok bool, err error) {
	switch {
	case timing.ExecTime != nil:
		d, err = timing.ExecTime.duration()

		return d, true, err
	case timing.DurationMS != nil:
		return time.Duration(int64(*timing.DurationMS * float64(time.Millisecond))), true, nil
	default:
		return 0, false, nil
	}
}

// duration converts the exec time to a time.Duration, rounding toward zero.
// The string form must end in the literal suffix "s", anything else means
// the field cannot be trusted.
func (e ExecTime) duration() (time.Duration, error) {
	seconds := e.seconds

	if e.isText {
		if !strings.HasSuffix(e.text, "s") {
			return 0, fmt.Errorf("%w: exec time %q does not end with \"s\"", ErrProtocol, e.text)
		}

		var err error
		seconds, err = strconv.ParseFloat(strings.TrimSuffix(e.text, "s"), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: exec time %q: %v", ErrProtocol, e.text, err)
		}
	}

	return time.Duration(int64(seconds * float64(time.Second))), nil
}
