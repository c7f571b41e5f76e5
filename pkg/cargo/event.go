package cargo

import (
	"encoding/json"
	"fmt"
)

// Event is one decoded line of the runner's JSON protocol.
type Event interface {
	event()
}

// SuiteStarted announces a new suite and the number of tests it contains.
type SuiteStarted struct {
	TestCount int
}

// SuiteOk terminates a suite in which every test passed.
type SuiteOk struct {
	Passed int
	Failed int
}

// SuiteFailed terminates a suite containing at least one failed test.
type SuiteFailed struct {
	Passed int
	Failed int
}

// Timing carries the optional duration fields attached to test events.
// Runner versions disagree on the encoding: older ones emit `duration` in
// milliseconds, newer ones `exec_time` in seconds.
type Timing struct {
	DurationMS *float64
	ExecTime   *ExecTime
}

// TestStarted announces a test. Every started test terminates with exactly
// one TestOk, TestFailed or TestIgnored event.
type TestStarted struct {
	Name string
	Timing
}

// TestOk reports a passed test.
type TestOk struct {
	Name string
	Timing
}

// TestFailed reports a failed test along with its captured output.
type TestFailed struct {
	Name   string
	Stdout *string
	Stderr *string
	Timing
}

// TestIgnored reports a test that was skipped by the runner.
type TestIgnored struct {
	Name string
	Timing
}

// TestTimeout reports a test exceeding the runner's soft time limit. The
// test keeps running and still terminates with a regular completion event.
type TestTimeout struct {
	Name string
	Timing
}

func (SuiteStarted) event() {}
func (SuiteOk) event()      {}
func (SuiteFailed) event()  {}
func (TestStarted) event()  {}
func (TestOk) event()       {}
func (TestFailed) event()   {}
func (TestIgnored) event()  {}
func (TestTimeout) event()  {}

// ExecTime is the `exec_time` field of a test event. Its representation
// changed across runner versions: a float number of seconds, or the string
// "<seconds>s".
type ExecTime struct {
	text    string
	seconds float64
	isText  bool
}

func (e *ExecTime) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		e.isText = true

		return json.Unmarshal(data, &e.text)
	}

	return json.Unmarshal(data, &e.seconds)
}

// rawEvent is the superset of fields carried by protocol lines. The `type`
// field present on every line does not discriminate reliably between suite
// and test events, so interpretation is structural: suite shapes are tried
// before test shapes.
type rawEvent struct {
	Event     string    `json:"event"`
	TestCount *int      `json:"test_count"`
	Passed    *int      `json:"passed"`
	Failed    *int      `json:"failed"`
	Name      *string   `json:"name"`
	Stdout    *string   `json:"stdout"`
	Stderr    *string   `json:"stderr"`
	Duration  *float64  `json:"duration"`
	ExecTime  *ExecTime `json:"exec_time"`
}

func unmarshalEvent(line string) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, err
	}

	return raw.toEvent()
}

func (r rawEvent) toEvent() (Event, error) {
	timing := Timing{DurationMS: r.Duration, ExecTime: r.ExecTime}

	switch {
	case r.Event == "started" && r.TestCount != nil:
		return SuiteStarted{TestCount: *r.TestCount}, nil
	case (r.Event == "ok" || r.Event == "failed") && r.Passed != nil && r.Failed != nil:
		if r.Event == "ok" {
			return SuiteOk{Passed: *r.Passed, Failed: *r.Failed}, nil
		}

		return SuiteFailed{Passed: *r.Passed, Failed: *r.Failed}, nil
	case r.Name != nil:
		switch r.Event {
		case "started":
			return TestStarted{Name: *r.Name, Timing: timing}, nil
		case "ok":
			return TestOk{Name: *r.Name, Timing: timing}, nil
		case "failed":
			return TestFailed{Name: *r.Name, Stdout: r.Stdout, Stderr: r.Stderr, Timing: timing}, nil
		case "ignored":
			return TestIgnored{Name: *r.Name, Timing: timing}, nil
		case "timeout":
			return TestTimeout{Name: *r.Name, Timing: timing}, nil
		}
	}

	return nil, fmt.Errorf("fields do not match any known event shape (event=%q)", r.Event)
}
