package cargo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/radiofrance/cargo2junit/internal/logger"
	"github.com/radiofrance/cargo2junit/pkg/report"
	"github.com/radiofrance/cargo2junit/pkg/strutil"
)

// ErrProtocol reports a violation of the runner's suite/test nesting
// protocol. The stream cannot be trusted past the first violation, so
// parsing aborts without a report.
var ErrProtocol = errors.New("runner protocol violation")

const (
	// DefaultSuiteNamePrefix matches the runner's own invocation name.
	DefaultSuiteNamePrefix = "cargo test"
	// DefaultMaxOutputLength bounds each captured output at 64 KiB.
	DefaultMaxOutputLength = 65536

	// maxLineBytes caps a single protocol line. Captured test output is
	// embedded in the JSON, so lines routinely exceed bufio's default
	// token size.
	maxLineBytes = 64 << 20
)

// Options configure a parse run.
type Options struct {
	// SuiteNamePrefix prefixes every generated suite name, followed by
	// " #<index>".
	SuiteNamePrefix string
	// Timestamp is the fixed timestamp stamped on every suite of the run.
	Timestamp time.Time
	// MaxOutputLength bounds each captured text (inferred failure message,
	// stdout, stderr) in bytes.
	MaxOutputLength int
	// Precision is the granularity applied to failure durations.
	Precision DurationPrecision
	// Properties are attached to every suite of the run.
	Properties []report.Property
}

// Parse folds a runner event stream into a report. The input is consumed to
// EOF. Any decode error or protocol violation aborts parsing, no partial
// report is returned. A suite left open at EOF is dropped, the runner was
// most likely killed mid-flight.
func Parse(input io.Reader, opts Options) (report.Report, error) {
	p := &parser{
		opts:    opts,
		pending: map[string]time.Time{},
		now:     time.Now,
	}

	return p.run(input)
}

// parser is the suite/test state machine. One instance folds exactly one
// stream, it is never shared.
type parser struct {
	opts Options
	now  func() time.Time

	rep        report.Report
	suite      *report.Suite
	pending    map[string]time.Time
	suiteIndex int
}

func (p *parser) run(input io.Reader) (report.Report, error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		if !acceptLine(line) {
			continue
		}

		event, err := decodeEvent(line)
		if err != nil {
			return report.Report{}, err
		}

		if err := p.apply(event); err != nil {
			return report.Report{}, err
		}
	}

	if err := scanner.Err(); err != nil {
		return report.Report{}, fmt.Errorf("reading event stream: %w", err)
	}

	return p.rep, nil
}

func (p *parser) apply(event Event) error {
	switch ev := event.(type) {
	case SuiteStarted:
		return p.startSuite(ev)
	case SuiteOk:
		return p.finishSuite()
	case SuiteFailed:
		return p.finishSuite()
	case TestStarted:
		return p.startTest(ev.Name)
	case TestOk:
		return p.passTest(ev)
	case TestFailed:
		return p.failTest(ev)
	case TestIgnored:
		return p.skipTest(ev)
	case TestTimeout:
		if p.suite == nil {
			return fmt.Errorf("%w: test %q timed out outside a suite", ErrProtocol, ev.Name)
		}

		logger.Debugf("Test %s exceeded the time limit, a completion event is still expected", ev.Name)

		return nil
	}

	return fmt.Errorf("%w: unsupported event %T", ErrProtocol, event)
}

func (p *parser) startSuite(ev SuiteStarted) error {
	if p.suite != nil {
		return fmt.Errorf("%w: suite started while suite %q is still open", ErrProtocol, p.suite.Name)
	}

	p.suite = &report.Suite{
		Name:       fmt.Sprintf("%s #%d", p.opts.SuiteNamePrefix, p.suiteIndex),
		Timestamp:  p.opts.Timestamp,
		Properties: p.opts.Properties,
	}
	p.suiteIndex++

	logger.Debugf("Suite %s started, %d tests announced", p.suite.Name, ev.TestCount)

	return nil
}

func (p *parser) finishSuite() error {
	if p.suite == nil {
		return fmt.Errorf("%w: suite completed but none is open", ErrProtocol)
	}

	if len(p.pending) > 0 {
		return fmt.Errorf("%w: suite %q completed with unfinished tests: %s",
			ErrProtocol, p.suite.Name, strings.Join(p.pendingNames(), ", "))
	}

	p.rep.Suites = append(p.rep.Suites, *p.suite)
	p.suite = nil

	return nil
}

func (p *parser) startTest(name string) error {
	if p.suite == nil {
		return fmt.Errorf("%w: test %q started outside a suite", ErrProtocol, name)
	}

	if _, pending := p.pending[name]; pending {
		return fmt.Errorf("%w: test %q started twice", ErrProtocol, name)
	}

	p.pending[name] = p.now()

	return nil
}

func (p *parser) passTest(ev TestOk) error {
	startedAt, err := p.takeTest(ev.Name)
	if err != nil {
		return err
	}

	duration, err := p.caseDuration(ev.Timing, startedAt)
	if err != nil {
		return err
	}

	name, module := splitName(ev.Name)
	p.suite.Cases = append(p.suite.Cases, report.TestCase{
		Name:     name,
		Module:   module,
		Status:   report.StatusSuccess,
		Duration: duration,
	})

	return nil
}

func (p *parser) failTest(ev TestFailed) error {
	startedAt, err := p.takeTest(ev.Name)
	if err != nil {
		return err
	}

	duration, err := p.caseDuration(ev.Timing, startedAt)
	if err != nil {
		return err
	}

	name, module := splitName(ev.Name)
	testCase := report.TestCase{
		Name:     name,
		Module:   module,
		Status:   report.StatusFailure,
		Duration: p.opts.Precision.Truncate(duration),
	}

	if message := detectError(ev.Stdout, ev.Stderr); message != "" {
		testCase.Message = strutil.Truncate(message, p.opts.MaxOutputLength)
	} else {
		if ev.Stdout != nil {
			testCase.SystemOut = strutil.Truncate(*ev.Stdout, p.opts.MaxOutputLength)
		}
		if ev.Stderr != nil {
			testCase.SystemErr = strutil.Truncate(*ev.Stderr, p.opts.MaxOutputLength)
		}
	}

	p.suite.Cases = append(p.suite.Cases, testCase)

	return nil
}

func (p *parser) skipTest(ev TestIgnored) error {
	if _, err := p.takeTest(ev.Name); err != nil {
		return err
	}

	name, module := splitName(ev.Name)
	p.suite.Cases = append(p.suite.Cases, report.TestCase{
		Name:   name,
		Module: module,
		Status: report.StatusSkipped,
	})

	return nil
}

// takeTest resolves a completion event against the pending set and returns
// the time the test started.
func (p *parser) takeTest(name string) (time.Time, error) {
	if p.suite == nil {
		return time.Time{}, fmt.Errorf("%w: test %q completed outside a suite", ErrProtocol, name)
	}

	startedAt, pending := p.pending[name]
	if !pending {
		return time.Time{}, fmt.Errorf("%w: test %q completed but never started", ErrProtocol, name)
	}

	delete(p.pending, name)

	return startedAt, nil
}

// caseDuration picks the duration of a completed test, falling back to the
// wall-clock time elapsed since its start event when the completion event
// carries no duration of its own.
func (p *parser) caseDuration(timing Timing, startedAt time.Time) (time.Duration, error) {
	duration, resolved, err := resolveDuration(timing)
	if err != nil {
		return 0, err
	}

	if !resolved {
		duration = p.now().Sub(startedAt)
	}

	return duration, nil
}

func (p *parser) pendingNames() []string {
	names := make([]string, 0, len(p.pending))
	for name := range p.pending {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
