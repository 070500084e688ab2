package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dtp/internal/domain"
)

// BuildSummary converts environment outcomes into the persisted run summary
func BuildSummary(outcomes []domain.EnvironmentOutcome, duration time.Duration, at time.Time) *domain.RunSummary {
	summary := &domain.RunSummary{
		Meta: domain.RunMeta{
			Passed:          len(outcomes) > 0,
			Environments:    len(outcomes),
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Timestamp:       at.Format(time.RFC3339),
		},
		Environments: make([]domain.EnvironmentSummary, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		env := domain.Summarize(o)
		summary.Environments = append(summary.Environments, env)
		summary.Meta.FailedTestCases += env.Failed
		if o.HardFailure() {
			summary.Meta.HardFailures++
		}
		if !o.Passed() {
			summary.Meta.Passed = false
		}
	}
	return summary
}

// Save writes the outcomes of a run to the configured JSON output file.
func (s *JSONStorage) Save(outcomes []domain.EnvironmentOutcome, duration time.Duration) (*domain.RunSummary, error) {
	summary := BuildSummary(outcomes, duration, s.now())
	if err := s.SaveSummary(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Load reads the last run from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.RunSummary, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var summary domain.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &summary, nil
}

// SaveSummary writes the full summary to the configured JSON file.
func (s *JSONStorage) SaveSummary(summary *domain.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
