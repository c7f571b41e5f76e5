package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiofrance/cargo2junit/internal/logger"
	"github.com/radiofrance/cargo2junit/pkg/cargo"
	"github.com/radiofrance/cargo2junit/pkg/report"
)

func TestMain(m *testing.M) {
	lvl := "fatal"
	logger.SetLevel(&lvl)

	os.Exit(m.Run())
}

func baseConvertOpts() convertOpts {
	return convertOpts{
		Input:           "-",
		Output:          "-",
		SuiteNamePrefix: cargo.DefaultSuiteNamePrefix,
		Precision:       "milliseconds",
		MaxOutputLength: cargo.DefaultMaxOutputLength,
	}
}

func TestBuildParseOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		parseOpts, err := buildParseOptions(baseConvertOpts(), "run-123")
		require.NoError(t, err)

		assert.Equal(t, cargo.DefaultSuiteNamePrefix, parseOpts.SuiteNamePrefix)
		assert.Equal(t, cargo.PrecisionMilliseconds, parseOpts.Precision)
		assert.Equal(t, cargo.DefaultMaxOutputLength, parseOpts.MaxOutputLength)
		assert.WithinDuration(t, time.Now().UTC(), parseOpts.Timestamp, time.Minute)
		assert.Equal(t, []report.Property{{Name: "run_id", Value: "run-123"}}, parseOpts.Properties)
	})

	t.Run("explicit timestamp", func(t *testing.T) {
		t.Parallel()

		opts := baseConvertOpts()
		opts.Timestamp = "2024-05-14T12:03:09Z"

		parseOpts, err := buildParseOptions(opts, "run-123")
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 5, 14, 12, 3, 9, 0, time.UTC), parseOpts.Timestamp)
	})

	t.Run("seconds precision", func(t *testing.T) {
		t.Parallel()

		opts := baseConvertOpts()
		opts.Precision = "seconds"

		parseOpts, err := buildParseOptions(opts, "run-123")
		require.NoError(t, err)

		assert.Equal(t, cargo.PrecisionSeconds, parseOpts.Precision)
	})

	t.Run("invalid precision", func(t *testing.T) {
		t.Parallel()

		opts := baseConvertOpts()
		opts.Precision = "minutes"

		_, err := buildParseOptions(opts, "run-123")
		assert.ErrorContains(t, err, "is not a valid duration precision")
	})

	t.Run("output length too small", func(t *testing.T) {
		t.Parallel()

		opts := baseConvertOpts()
		opts.MaxOutputLength = 10

		_, err := buildParseOptions(opts, "run-123")
		assert.ErrorContains(t, err, "max output length must be at least 19, got 10")
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		t.Parallel()

		opts := baseConvertOpts()
		opts.Timestamp = "yesterday"

		_, err := buildParseOptions(opts, "run-123")
		assert.ErrorContains(t, err, "can't parse timestamp \"yesterday\"")
	})
}

func TestBuildSuiteProperties(t *testing.T) {
	t.Parallel()

	t.Run("flags override the properties file", func(t *testing.T) {
		t.Parallel()

		propertiesFile := filepath.Join(t.TempDir(), "properties.yaml")
		require.NoError(t, os.WriteFile(propertiesFile, []byte("branch: main\nci_job_id: 7423\n"), 0o644))

		opts := baseConvertOpts()
		opts.PropertiesFile = propertiesFile
		opts.Properties = []string{"branch=release", "owner=platform"}

		properties, err := buildSuiteProperties(opts, "run-123")
		require.NoError(t, err)

		assert.Equal(t, []report.Property{
			{Name: "branch", Value: "release"},
			{Name: "ci_job_id", Value: "7423"},
			{Name: "owner", Value: "platform"},
			{Name: "run_id", Value: "run-123"},
		}, properties)
	})

	t.Run("run identifier cannot be overridden", func(t *testing.T) {
		t.Parallel()

		opts := baseConvertOpts()
		opts.Properties = []string{"run_id=custom"}

		properties, err := buildSuiteProperties(opts, "run-123")
		require.NoError(t, err)

		assert.Equal(t, []report.Property{{Name: "run_id", Value: "run-123"}}, properties)
	})

	t.Run("missing properties file", func(t *testing.T) {
		t.Parallel()

		opts := baseConvertOpts()
		opts.PropertiesFile = filepath.Join(t.TempDir(), "nope.yaml")

		_, err := buildSuiteProperties(opts, "run-123")
		assert.ErrorContains(t, err, "can't read properties file")
	})

	t.Run("properties file is not a map", func(t *testing.T) {
		t.Parallel()

		propertiesFile := filepath.Join(t.TempDir(), "properties.yaml")
		require.NoError(t, os.WriteFile(propertiesFile, []byte("- branch\n- owner\n"), 0o644))

		opts := baseConvertOpts()
		opts.PropertiesFile = propertiesFile

		_, err := buildSuiteProperties(opts, "run-123")
		assert.ErrorContains(t, err, "can't parse properties file")
	})
}

func TestDoConvert(t *testing.T) {
	t.Parallel()

	stream := `{ "type": "suite", "event": "started", "test_count": 1 }
{ "type": "test", "event": "started", "name": "works" }
{ "type": "test", "event": "ok", "name": "works", "exec_time": "0.25s" }
{ "type": "suite", "event": "ok", "passed": 1, "failed": 0 }
`

	tempDir := t.TempDir()
	inputPath := filepath.Join(tempDir, "events.json")
	outputPath := filepath.Join(tempDir, "junit.xml")
	rawLogPath := filepath.Join(tempDir, "raw.log")
	require.NoError(t, os.WriteFile(inputPath, []byte(stream), 0o644))

	opts := baseConvertOpts()
	opts.Input = inputPath
	opts.Output = outputPath
	opts.RawLog = rawLogPath
	opts.Timestamp = "2024-05-14T12:03:09Z"

	require.NoError(t, doConvert(opts))

	output, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(output), `<testsuites tests="1" failures="0" errors="0" time="0.250000">`)
	assert.Contains(t, string(output), `name="cargo test #0"`)
	assert.Contains(t, string(output), `timestamp="2024-05-14T12:03:09Z"`)
	assert.Contains(t, string(output), `<property name="run_id"`)

	rawLog, err := os.ReadFile(rawLogPath)
	require.NoError(t, err)
	assert.Equal(t, stream, string(rawLog))
}

func TestDoConvertParseFailureKeepsRawLog(t *testing.T) {
	t.Parallel()

	stream := `{ "type": "test", "event": "started", "name": "orphan" }
`

	tempDir := t.TempDir()
	inputPath := filepath.Join(tempDir, "events.json")
	rawLogPath := filepath.Join(tempDir, "raw.log")
	require.NoError(t, os.WriteFile(inputPath, []byte(stream), 0o644))

	opts := baseConvertOpts()
	opts.Input = inputPath
	opts.Output = filepath.Join(tempDir, "junit.xml")
	opts.RawLog = rawLogPath

	err := doConvert(opts)
	require.ErrorIs(t, err, cargo.ErrProtocol)

	rawLog, readErr := os.ReadFile(rawLogPath)
	require.NoError(t, readErr)
	assert.Equal(t, stream, string(rawLog))
}
