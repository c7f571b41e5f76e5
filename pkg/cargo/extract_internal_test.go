package cargo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		input          string
		expectedName   string
		expectedModule string
	}{
		{
			name:           "nested modules",
			input:          "api::v1::fetches_data",
			expectedName:   "fetches_data",
			expectedModule: "api::v1",
		},
		{
			name:           "single module",
			input:          "tests::works",
			expectedName:   "works",
			expectedModule: "tests",
		},
		{
			name:           "crate root test",
			input:          "smoke",
			expectedName:   "smoke",
			expectedModule: "",
		},
		{
			name:           "empty name",
			input:          "",
			expectedName:   "",
			expectedModule: "",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			actualName, actualModule := splitName(test.input)
			assert.Equal(t, test.expectedName, actualName)
			assert.Equal(t, test.expectedModule, actualModule)
		})
	}
}

func TestDetectError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stdout   *string
		stderr   *string
		expected string
	}{
		{
			name:     "stderr is authoritative and kept verbatim",
			stdout:   strPtr("Error: from stdout\n"),
			stderr:   strPtr("  thread panicked at src/lib.rs:42\n"),
			expected: "  thread panicked at src/lib.rs:42\n",
		},
		{
			name:     "blank stderr falls back to stdout",
			stdout:   strPtr("Error: expected token\n"),
			stderr:   strPtr("   \n\t"),
			expected: "Error: expected token",
		},
		{
			name:     "last error line wins",
			stdout:   strPtr("Error: expected token\nstep 2 ok\nError: unexpected EOF\n"),
			stderr:   nil,
			expected: "Error: unexpected EOF",
		},
		{
			name:     "lowercase error line",
			stdout:   strPtr("error: missing field\n"),
			stderr:   nil,
			expected: "error: missing field",
		},
		{
			name:     "matched line is trimmed",
			stdout:   strPtr("Error: trailing blanks   \n"),
			stderr:   nil,
			expected: "Error: trailing blanks",
		},
		{
			name:     "error marker must start the line",
			stdout:   strPtr("some Error: mid-line\n"),
			stderr:   nil,
			expected: "",
		},
		{
			name:     "no marker at all",
			stdout:   strPtr("all fine here\n"),
			stderr:   strPtr(""),
			expected: "",
		},
		{
			name:     "no captures",
			stdout:   nil,
			stderr:   nil,
			expected: "",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, detectError(test.stdout, test.stderr))
		})
	}
}
