package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/radiofrance/cargo2junit/pkg/report"
)

func sampleReport() report.Report {
	return report.Report{
		Suites: []report.Suite{
			{
				Name: "cargo test #0",
				Cases: []report.TestCase{
					{Name: "parses", Module: "api", Status: report.StatusSuccess, Duration: 250 * time.Millisecond},
					{Name: "rejects", Module: "api", Status: report.StatusFailure, Duration: 1500 * time.Millisecond},
					{Name: "ignored", Module: "api", Status: report.StatusSkipped},
				},
			},
			{
				Name: "cargo test #1",
				Cases: []report.TestCase{
					{Name: "roundtrip", Module: "db", Status: report.StatusSuccess, Duration: 250 * time.Millisecond},
				},
			},
		},
	}
}

func TestSuiteCounters(t *testing.T) {
	t.Parallel()

	suite := sampleReport().Suites[0]

	assert.Equal(t, 1, suite.Failures())
	assert.Equal(t, 1, suite.Skipped())
	assert.Equal(t, 1750*time.Millisecond, suite.Duration())
}

func TestReportCounters(t *testing.T) {
	t.Parallel()

	rep := sampleReport()

	assert.Equal(t, 4, rep.Tests())
	assert.Equal(t, 1, rep.Failures())
	assert.Equal(t, 1, rep.Skipped())
	assert.Equal(t, 2*time.Second, rep.Duration())
}

func TestEmptyReportCounters(t *testing.T) {
	t.Parallel()

	rep := report.Report{}

	assert.Equal(t, 0, rep.Tests())
	assert.Equal(t, 0, rep.Failures())
	assert.Equal(t, 0, rep.Skipped())
	assert.Equal(t, time.Duration(0), rep.Duration())
}
