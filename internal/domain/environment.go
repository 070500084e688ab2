package domain

import "time"

// Environment identifies one execution context of the test suite
type Environment string

const (
	// EnvironmentHeadless runs the suite directly in the runtime binary
	EnvironmentHeadless Environment = "headless"
	// EnvironmentBrowser runs the suite inside a browser-like page
	EnvironmentBrowser Environment = "browser"
)

// Label is the short name used in console output.
// The browser environment keeps its historical "web" label.
func (e Environment) Label() string {
	switch e {
	case EnvironmentHeadless:
		return "node"
	case EnvironmentBrowser:
		return "web"
	default:
		return string(e)
	}
}

// EnvironmentSpec is everything needed to spawn one environment's harness
type EnvironmentSpec struct {
	Environment Environment
	Binary      string // Runtime binary, e.g. node
	Harness     string // Harness script passed as the first argument
	Target      string // Test path passed as the second argument
	Dir         string // Working directory of the child
}

// EnvironmentRun is the raw result of one child process
type EnvironmentRun struct {
	Environment Environment
	Stdout      string
	Stderr      string
	ExitCode    int
	Err         error // Spawn or execution error, nil on a clean exit
	Duration    time.Duration
}

// EnvironmentOutcome is either a Reported outcome carrying a TestReport
// or a Failed outcome carrying the reason no report could be obtained.
type EnvironmentOutcome struct {
	Environment Environment
	Report      *TestReport
	Err         error
	Duration    time.Duration
}

// Reported builds an outcome from a parsed report
func Reported(env Environment, report TestReport, duration time.Duration) EnvironmentOutcome {
	return EnvironmentOutcome{Environment: env, Report: &report, Duration: duration}
}

// ReportedWithError builds an outcome from a parsed report whose run still
// failed, e.g. a harness exiting with a failure status after writing its report.
// Such an outcome never passes, whatever the report says.
func ReportedWithError(env Environment, report TestReport, err error, duration time.Duration) EnvironmentOutcome {
	return EnvironmentOutcome{Environment: env, Report: &report, Err: err, Duration: duration}
}

// Failed builds an outcome for a run whose failure count could not be determined
func Failed(env Environment, err error, duration time.Duration) EnvironmentOutcome {
	return EnvironmentOutcome{Environment: env, Err: err, Duration: duration}
}

// HardFailure reports whether the environment produced no usable report
func (o EnvironmentOutcome) HardFailure() bool {
	return o.Report == nil
}

// Passed is true only for a reported run with zero failures
func (o EnvironmentOutcome) Passed() bool {
	return o.Report != nil && o.Err == nil && !o.Report.HasFailures()
}

// FailedCount returns the reported failure count; ok is false for hard failures
func (o EnvironmentOutcome) FailedCount() (count int, ok bool) {
	if o.Report == nil {
		return 0, false
	}
	return o.Report.Failed, true
}
