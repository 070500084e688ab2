package domain

// TestReport is the structured payload a harness writes as the last line of its output.
// Passed + Failed == Total is the harness's responsibility; it is not re-derived here.
type TestReport struct {
	Total     int             `json:"total"`
	Passed    int             `json:"passed"`
	Failed    int             `json:"failed"`
	RuntimeMs float64         `json:"runtime"`
	Failures  []FailureDetail `json:"failures"`
}

// HasFailures reports whether any test case failed
func (r TestReport) HasFailures() bool {
	return r.Failed > 0
}
