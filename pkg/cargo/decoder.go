package cargo

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrDecode reports a line that looked like a protocol event but could not
// be decoded, even after repair.
var ErrDecode = errors.New("malformed runner event")

// acceptLine reports whether a line of combined output is a protocol event
// candidate. The runner interleaves compiler and harness diagnostics with
// the event stream; only lines whose first non-blank character is '{' are
// events.
func acceptLine(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)

	return strings.HasPrefix(trimmed, "{")
}

// decodeEvent parses a protocol line into an Event. Lines that fail to
// decode are retried once with every backslash doubled: the runner emits
// the literal backslashes of captured output unescaped inside JSON strings.
// When the repair does not help either, the reported error carries the
// original line and its decode error.
func decodeEvent(line string) (Event, error) {
	event, origErr := unmarshalEvent(line)
	if origErr == nil {
		return event, nil
	}

	if event, err := unmarshalEvent(strings.ReplaceAll(line, `\`, `\\`)); err == nil {
		return event, nil
	}

	return nil, fmt.Errorf("%w: line \"%s\": %v", ErrDecode, line, origErr)
}
