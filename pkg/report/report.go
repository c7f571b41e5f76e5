package report

import "time"

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusSkipped
)

// Status is the terminal state of a test case.
type Status int

// Property is a name/value pair attached to every suite of a run.
type Property struct {
	Name  string
	Value string
}

// TestCase is the result of a single test.
type TestCase struct {
	// Name is the last segment of the qualified test name, Module the
	// "::"-joined path of the enclosing modules. Module is empty for tests
	// declared at the crate root.
	Name   string
	Module string
	Status Status
	// Duration is zero for skipped cases.
	Duration time.Duration

	// Message is the failure message inferred from the captured output.
	// When it is empty on a failed case, SystemOut and SystemErr carry the
	// raw captures instead.
	Message   string
	SystemOut string
	SystemErr string
}

// Suite is an ordered group of test cases produced by one runner binary.
type Suite struct {
	Name       string
	Timestamp  time.Time
	Properties []Property
	Cases      []TestCase
}

// Failures returns the number of failed cases.
func (s Suite) Failures() int {
	count := 0
	for _, testCase := range s.Cases {
		if testCase.Status == StatusFailure {
			count++
		}
	}

	return count
}

// Skipped returns the number of skipped cases.
func (s Suite) Skipped() int {
	count := 0
	for _, testCase := range s.Cases {
		if testCase.Status == StatusSkipped {
			count++
		}
	}

	return count
}

// Duration returns the sum of all case durations.
func (s Suite) Duration() time.Duration {
	var total time.Duration
	for _, testCase := range s.Cases {
		total += testCase.Duration
	}

	return total
}

// Report is the ordered collection of suites completed during one run.
type Report struct {
	Suites []Suite
}

// Tests returns the total number of cases across all suites.
func (r Report) Tests() int {
	count := 0
	for _, suite := range r.Suites {
		count += len(suite.Cases)
	}

	return count
}

// Failures returns the total number of failed cases across all suites.
func (r Report) Failures() int {
	count := 0
	for _, suite := range r.Suites {
		count += suite.Failures()
	}

	return count
}

// Skipped returns the total number of skipped cases across all suites.
func (r Report) Skipped() int {
	count := 0
	for _, suite := range r.Suites {
		count += suite.Skipped()
	}

	return count
}

// Duration returns the total duration across all suites.
func (r Report) Duration() time.Duration {
	var total time.Duration
	for _, suite := range r.Suites {
		total += suite.Duration()
	}

	return total
}
