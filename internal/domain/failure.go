package domain

// FailureDetail describes one failing assertion reported by a harness.
type FailureDetail struct {
	Name     string `json:"name"`
	Message  string `json:"message,omitempty"`
	Source   string `json:"source"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
	Resolved bool   `json:"resolved,omitempty"` // Set from the faills viewer, never by a harness
}
