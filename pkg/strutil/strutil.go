package strutil

import "strings"

// TruncationMarker separates the head and tail of a string shortened by Truncate.
const TruncationMarker = "[...TRUNCATED...]"

// Truncate caps s at maxLen bytes. Strings within the limit are returned
// unchanged. Longer strings keep an equal share of their head and tail around
// the truncation marker, and the result never exceeds maxLen as long as
// maxLen covers the marker and its two surrounding newlines.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	half := (maxLen - len(TruncationMarker) - 2) / 2
	if half < 0 {
		half = 0
	}

	var truncated strings.Builder
	truncated.Grow(2*half + len(TruncationMarker) + 2)
	truncated.WriteString(s[:half])
	truncated.WriteByte('\n')
	truncated.WriteString(TruncationMarker)
	truncated.WriteByte('\n')
	truncated.WriteString(s[len(s)-half:])

	return truncated.String()
}

// ConvertKVStringsToMap is from https://github.com/moby/moby/blob/v20.10.0-rc2/runconfig/opts/parse.go
//
// ConvertKVStringsToMap converts ["key=value"] to {"key":"value"}.
func ConvertKVStringsToMap(values []string) map[string]string {
	result := make(map[string]string, len(values))

	const splitLimit = 2
	for _, value := range values {
		kv := strings.SplitN(value, "=", splitLimit)
		if len(kv) == 1 {
			result[kv[0]] = ""
		} else {
			result[kv[0]] = kv[1]
		}
	}

	return result
}
