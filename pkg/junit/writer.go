package junit

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/radiofrance/cargo2junit/pkg/report"
)

// failureType tags every failure element, report viewers group failures by it.
const failureType = "cargo test"

var patternAnsiColors = regexp.MustCompile(`\x1B\[([0-9]{1,3}(;[0-9]{1,2})?)?[mGK]`)

// FromReport maps a report onto the JUnit document model. Text content is
// scrubbed of ANSI color codes here, at the serialization boundary, the
// report itself keeps captured output verbatim.
func FromReport(rep report.Report) Testsuites {
	doc := Testsuites{
		Tests:    rep.Tests(),
		Failures: rep.Failures(),
		Time:     formatSeconds(rep.Duration()),
	}

	for _, suite := range rep.Suites {
		doc.Suites = append(doc.Suites, fromSuite(suite))
	}

	return doc
}

func fromSuite(suite report.Suite) Testsuite {
	out := Testsuite{
		Name:      suite.Name,
		Tests:     len(suite.Cases),
		Failures:  suite.Failures(),
		Skipped:   suite.Skipped(),
		Time:      formatSeconds(suite.Duration()),
		Timestamp: suite.Timestamp.UTC().Format(time.RFC3339),
	}

	if len(suite.Properties) > 0 {
		props := make([]Property, 0, len(suite.Properties))
		for _, property := range suite.Properties {
			props = append(props, Property(property))
		}
		out.Properties = &Properties{Props: props}
	}

	for _, testCase := range suite.Cases {
		out.TestCases = append(out.TestCases, fromCase(testCase))
	}

	return out
}

func fromCase(testCase report.TestCase) TestCase {
	out := TestCase{
		ClassName: testCase.Module,
		Name:      testCase.Name,
		Time:      formatSeconds(testCase.Duration),
	}

	switch testCase.Status {
	case report.StatusFailure:
		out.Failure = &Failure{
			Message: fmt.Sprintf("failed %s::%s", testCase.Module, testCase.Name),
			Type:    failureType,
		}

		if testCase.Message != "" {
			out.SystemOut = removeTerminalColors(testCase.Message)
		} else {
			out.SystemOut = removeTerminalColors(testCase.SystemOut)
			out.SystemErr = removeTerminalColors(testCase.SystemErr)
		}
	case report.StatusSkipped:
		out.Skipped = &Skipped{}
	case report.StatusSuccess:
	}

	return out
}

// WriteXML serializes the document to w with the canonical XML header and
// two-space indentation.
func (ts Testsuites) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(ts); err != nil {
		return fmt.Errorf("encoding junit report: %w", err)
	}

	_, err := io.WriteString(w, "\n")

	return err
}

// formatSeconds renders a duration as the fractional seconds JUnit expects.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

// removeTerminalColors strips ANSI color codes from captured output.
// encoding/xml would otherwise replace the raw escape bytes with U+FFFD and
// garble the text in report viewers.
func removeTerminalColors(input string) string {
	return patternAnsiColors.ReplaceAllString(input, "")
}
