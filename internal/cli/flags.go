package cli

import (
	"time"

	"dtp/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	ProjectPath       string
	HeadlessTarget    string
	BrowserTarget     string
	Binary            string
	Timeout           time.Duration
	LogLevel          string
	SkipPrerequisites bool
	Progress          bool
	OpenFaills        bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath:       f.ProjectPath,
		HeadlessTarget:    f.HeadlessTarget,
		BrowserTarget:     f.BrowserTarget,
		Binary:            f.Binary,
		Timeout:           f.Timeout,
		LogLevel:          f.LogLevel,
		SkipPrerequisites: f.SkipPrerequisites,
		Progress:          f.Progress,
		OpenFaills:        f.OpenFaills,
	}
}
