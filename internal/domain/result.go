package domain

// Environment run statuses as persisted in the results file
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// EnvironmentSummary is the persisted form of one EnvironmentOutcome
type EnvironmentSummary struct {
	Environment Environment     `json:"environment"`
	Status      string          `json:"status"`
	Total       int             `json:"total"`
	Passed      int             `json:"passed"`
	Failed      int             `json:"failed"`
	RuntimeMs   float64         `json:"runtime_ms"`
	Error       string          `json:"error,omitempty"`
	Failures    []FailureDetail `json:"failures"`
}

// RunMeta contains metadata about an orchestrated run
type RunMeta struct {
	Passed          bool    `json:"passed"`
	Environments    int     `json:"environments"`
	FailedTestCases int     `json:"failed_test_cases"`
	HardFailures    int     `json:"hard_failures"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// RunSummary is the complete output structure for the last run
type RunSummary struct {
	Meta         RunMeta              `json:"meta"`
	Environments []EnvironmentSummary `json:"environments"`
}

// Summarize converts an outcome to its persisted form
func Summarize(o EnvironmentOutcome) EnvironmentSummary {
	s := EnvironmentSummary{Environment: o.Environment, Failures: []FailureDetail{}}
	if o.Report == nil {
		s.Status = StatusError
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		return s
	}
	s.Total = o.Report.Total
	s.Passed = o.Report.Passed
	s.Failed = o.Report.Failed
	s.RuntimeMs = o.Report.RuntimeMs
	if o.Report.Failures != nil {
		s.Failures = o.Report.Failures
	}
	if o.Err != nil {
		s.Error = o.Err.Error()
	}
	s.Status = StatusPassed
	if !o.Passed() {
		s.Status = StatusFailed
	}
	return s
}

// FailureRef points at one failure inside a RunSummary
type FailureRef struct {
	Environment Environment
	Index       int
}

// AllFailures lists every failure across environments in run order
func (s *RunSummary) AllFailures() []FailureRef {
	var refs []FailureRef
	for _, env := range s.Environments {
		for i := range env.Failures {
			refs = append(refs, FailureRef{Environment: env.Environment, Index: i})
		}
	}
	return refs
}

// Failure resolves a FailureRef; ok is false when it no longer exists
func (s *RunSummary) Failure(ref FailureRef) (*FailureDetail, bool) {
	for i := range s.Environments {
		if s.Environments[i].Environment != ref.Environment {
			continue
		}
		if ref.Index < 0 || ref.Index >= len(s.Environments[i].Failures) {
			return nil, false
		}
		return &s.Environments[i].Failures[ref.Index], true
	}
	return nil, false
}
