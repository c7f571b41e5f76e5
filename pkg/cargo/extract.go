package cargo

import (
	"regexp"
	"strings"
)

var patternErrorLine = regexp.MustCompile(`(?m)^[Ee]rror: .+$`)

// splitName splits a fully-qualified test name into its leaf name and
// "::"-joined module path. The module path is empty when the name has a
// single segment.
func splitName(qualified string) (name, module string) {
	segments := strings.Split(qualified, "::")

	return segments[len(segments)-1], strings.Join(segments[:len(segments)-1], "::")
}

// detectError infers a failure message from the captured output of a failed
// test. Anything written to stderr is authoritative and returned verbatim.
// Otherwise the last "Error: ..." line of stdout wins, trimmed of
// surrounding blanks. An empty result means no message could be inferred
// and the raw captures should be reported instead.
func detectError(stdout, stderr *string) string {
	if stderr != nil && strings.TrimSpace(*stderr) != "" {
		return *stderr
	}

	if stdout == nil {
		return ""
	}

	matches := patternErrorLine.FindAllString(*stdout, -1)
	if len(matches) == 0 {
		return ""
	}

	return strings.TrimSpace(matches[len(matches)-1])
}
