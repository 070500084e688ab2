package storage

import (
	"time"

	"dtp/internal/config"
	"dtp/internal/domain"
)

// Storage persists and loads the last run (e.g. for the faills viewer).
type Storage interface {
	Save(outcomes []domain.EnvironmentOutcome, duration time.Duration) (*domain.RunSummary, error)
	Load() (*domain.RunSummary, error)
	// SaveSummary writes a full summary (e.g. after marking failures resolved).
	SaveSummary(summary *domain.RunSummary) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
	now func() time.Time
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg, now: time.Now}
}
