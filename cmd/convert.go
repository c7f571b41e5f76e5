package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/radiofrance/cargo2junit/internal/logger"
	"github.com/radiofrance/cargo2junit/pkg/cargo"
	"github.com/radiofrance/cargo2junit/pkg/junit"
	"github.com/radiofrance/cargo2junit/pkg/publish"
	"github.com/radiofrance/cargo2junit/pkg/report"
	"github.com/radiofrance/cargo2junit/pkg/strutil"
)

type convertOpts struct {
	// Conversion options
	Input           string   `mapstructure:"input"`
	Output          string   `mapstructure:"output"`
	SuiteNamePrefix string   `mapstructure:"suite_name_prefix"`
	Timestamp       string   `mapstructure:"timestamp"`
	Precision       string   `mapstructure:"precision"`
	MaxOutputLength int      `mapstructure:"max_output_length"`
	Properties      []string `mapstructure:"property"`
	PropertiesFile  string   `mapstructure:"properties_file"`
	RawLog          string   `mapstructure:"raw_log"`
	Summary         bool     `mapstructure:"summary"`

	// Artifact publication options
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Region string `mapstructure:"s3_region"`
	S3Prefix string `mapstructure:"s3_prefix"`
}

func convertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a cargo test JSON stream into a JUnit XML report",
		Long: `cargo2junit convert reads the line-delimited JSON events emitted by
"cargo test -- -Z unstable-options --format json --report-time" and writes an
equivalent JUnit XML report.

Lines that are not JSON objects (compiler output, runner banners) are skipped.
The exit code only reflects the conversion itself, a report full of failing
tests still converts successfully.`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := convertOpts{}
			hydrateOptsFromViper(&opts)

			if err := doConvert(opts); err != nil {
				logger.Fatalf("Conversion failed: %v", err)
			}
		},
	}

	cmd.Flags().StringP("input", "i", "-",
		"Path to the cargo test JSON stream. \"-\" reads from standard input.")
	cmd.Flags().StringP("output", "o", "-",
		"Path to write the JUnit XML report to. \"-\" writes to standard output.")
	cmd.Flags().String("suite-name-prefix", cargo.DefaultSuiteNamePrefix,
		"Prefix for generated suite names, each suite is named \"<prefix> #<index>\".")
	cmd.Flags().String("timestamp", "",
		"Timestamp stamped on every suite, in RFC3339 format. Defaults to the current time.")
	cmd.Flags().String("precision", cargo.PrecisionMilliseconds.String(),
		"Granularity applied to failed test durations (\"milliseconds\" or \"seconds\").")
	cmd.Flags().Int("max-output-length", cargo.DefaultMaxOutputLength,
		"Maximum length in bytes of each captured output, longer texts are truncated in the middle.")
	cmd.Flags().StringArray("property", nil,
		"Property to attach to every suite, in key=value format. Can be repeated.")
	cmd.Flags().String("properties-file", "",
		"Path to a YAML file holding a flat map of properties to attach to every suite.")
	cmd.Flags().String("raw-log", "",
		"Path to save a verbatim copy of the consumed event stream.")
	cmd.Flags().Bool("summary", false,
		"Render a per-suite summary table on standard error.")
	cmd.Flags().String("s3-bucket", "",
		"Name of the S3 bucket to upload report artifacts to. Upload is disabled when empty.")
	cmd.Flags().String("s3-region", "",
		"Region of the S3 bucket.")
	cmd.Flags().String("s3-prefix", "reports",
		"Key prefix for uploaded report artifacts.")

	return cmd
}

// doConvert runs the whole conversion pipeline: consume the runner stream,
// serialize the report, then optionally render a summary and publish the
// artifacts.
func doConvert(opts convertOpts) error {
	runID := uuid.NewString()

	parseOpts, err := buildParseOptions(opts, runID)
	if err != nil {
		return err
	}

	input, err := openInput(opts.Input)
	if err != nil {
		return err
	}
	defer func() {
		_ = input.Close()
	}()

	stream := io.Reader(input)

	if opts.RawLog != "" {
		rawSink, err := os.Create(opts.RawLog)
		if err != nil {
			return fmt.Errorf("can't create raw log file \"%s\": %w", opts.RawLog, err)
		}
		defer func() {
			_ = rawSink.Close()
		}()

		// The copy is written as the stream is read, so it survives a parse failure.
		stream = io.TeeReader(input, rawSink)
	}

	rep, err := cargo.Parse(stream, parseOpts)
	if err != nil {
		return err
	}

	var xmlReport bytes.Buffer
	if err := junit.FromReport(rep).WriteXML(&xmlReport); err != nil {
		return err
	}

	if err := writeOutput(opts.Output, xmlReport.Bytes()); err != nil {
		return err
	}

	if opts.Summary {
		report.RenderSummary(os.Stderr, rep)
	}

	logger.Infof("Converted %d suites: %d tests, %d failures, %d skipped",
		len(rep.Suites), rep.Tests(), rep.Failures(), rep.Skipped())

	if opts.S3Bucket == "" {
		return nil
	}

	return publishArtifacts(context.Background(), opts, runID, xmlReport.Bytes())
}

// buildParseOptions validates the user-provided options and assembles the
// parser configuration for the run.
func buildParseOptions(opts convertOpts, runID string) (cargo.Options, error) {
	precision, err := cargo.ParseDurationPrecision(opts.Precision)
	if err != nil {
		return cargo.Options{}, err
	}

	minOutputLength := len(strutil.TruncationMarker) + 2
	if opts.MaxOutputLength < minOutputLength {
		return cargo.Options{}, fmt.Errorf("max output length must be at least %d, got %d",
			minOutputLength, opts.MaxOutputLength)
	}

	timestamp := time.Now().UTC()
	if opts.Timestamp != "" {
		timestamp, err = time.Parse(time.RFC3339, opts.Timestamp)
		if err != nil {
			return cargo.Options{}, fmt.Errorf("can't parse timestamp \"%s\": %w", opts.Timestamp, err)
		}
	}

	properties, err := buildSuiteProperties(opts, runID)
	if err != nil {
		return cargo.Options{}, err
	}

	return cargo.Options{
		SuiteNamePrefix: opts.SuiteNamePrefix,
		Timestamp:       timestamp,
		MaxOutputLength: opts.MaxOutputLength,
		Precision:       precision,
		Properties:      properties,
	}, nil
}

// buildSuiteProperties merges the properties file with the key=value flags,
// flags win on conflicts. The generated run identifier is always present, it
// ties the report back to its published artifacts.
func buildSuiteProperties(opts convertOpts, runID string) ([]report.Property, error) {
	merged := map[string]string{}

	if opts.PropertiesFile != "" {
		raw, err := os.ReadFile(opts.PropertiesFile)
		if err != nil {
			return nil, fmt.Errorf("can't read properties file \"%s\": %w", opts.PropertiesFile, err)
		}

		fileProps := map[string]any{}
		if err := yaml.Unmarshal(raw, &fileProps); err != nil {
			return nil, fmt.Errorf("can't parse properties file \"%s\": %w", opts.PropertiesFile, err)
		}
		for key, value := range fileProps {
			merged[key] = fmt.Sprint(value)
		}
	}

	for key, value := range strutil.ConvertKVStringsToMap(opts.Properties) {
		merged[key] = value
	}

	merged["run_id"] = runID

	properties := make([]report.Property, 0, len(merged))
	for name, value := range merged {
		properties = append(properties, report.Property{Name: name, Value: value})
	}
	sort.Slice(properties, func(i, j int) bool {
		return properties[i].Name < properties[j].Name
	})

	return properties, nil
}

// openInput opens the runner event stream, "-" names standard input.
func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("can't open input file \"%s\": %w", name, err)
	}

	return file, nil
}

// writeOutput writes the serialized report, "-" names standard output.
func writeOutput(name string, data []byte) error {
	if name == "-" {
		_, err := os.Stdout.Write(data)

		return err
	}

	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("can't write report to \"%s\": %w", name, err)
	}

	logger.Infof("JUnit report written to \"%s\"", name)

	return nil
}

func publishArtifacts(ctx context.Context, opts convertOpts, runID string, xmlReport []byte) error {
	uploader, err := publish.NewS3Uploader(ctx, opts.S3Region, opts.S3Bucket)
	if err != nil {
		return err
	}

	artifacts := []publish.Artifact{
		{
			TargetPath: path.Join(opts.S3Prefix, runID, "junit.xml"),
			Body:       xmlReport,
		},
	}

	if opts.RawLog != "" {
		raw, err := os.ReadFile(opts.RawLog)
		if err != nil {
			return fmt.Errorf("can't read back raw log file \"%s\": %w", opts.RawLog, err)
		}
		artifacts = append(artifacts, publish.Artifact{
			TargetPath: path.Join(opts.S3Prefix, runID, filepath.Base(opts.RawLog)),
			Body:       raw,
		})
	}

	if err := publish.UploadAll(ctx, uploader, artifacts); err != nil {
		return err
	}

	for _, artifact := range artifacts {
		logger.Infof("Report artifact uploaded to %s", uploader.URL(artifact.TargetPath))

		signedURL, err := uploader.PresignedURL(ctx, artifact.TargetPath)
		if err != nil {
			logger.Warnf("Can't presign download URL for \"%s\": %v", artifact.TargetPath, err)

			continue
		}
		logger.Debugf("Direct download URL: %s", signedURL)
	}

	return nil
}
