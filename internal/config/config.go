package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"dtp/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Environments  []EnvironmentConfig
	Prerequisites []StepConfig
	Timeout       time.Duration

	// Optional MySQL DSN for run history
	HistoryDSN string

	LogLevel  string
	LogFormat string

	// Command flags
	Flags Flags
}

// EnvironmentConfig describes how to start one environment's harness
type EnvironmentConfig struct {
	Name    string `mapstructure:"name"`
	Binary  string `mapstructure:"binary"`
	Harness string `mapstructure:"harness"`
	Target  string `mapstructure:"target"`
}

// StepConfig is a prerequisite build step run before the tests
type StepConfig struct {
	Name    string   `mapstructure:"name"`
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

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

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		ProjectPath:    DefaultProjectPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Environments:   DefaultEnvironments(),
		Timeout:        DefaultTimeout,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
	}
}

// ApplyFlags overrides configured values with explicitly set flags
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	if flags.Timeout > 0 {
		c.Timeout = flags.Timeout
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	for i := range c.Environments {
		env := &c.Environments[i]
		if flags.Binary != "" {
			env.Binary = flags.Binary
		}
		switch domain.Environment(env.Name) {
		case domain.EnvironmentHeadless:
			if flags.HeadlessTarget != "" {
				env.Target = flags.HeadlessTarget
			}
		case domain.EnvironmentBrowser:
			if flags.BrowserTarget != "" {
				env.Target = flags.BrowserTarget
			}
		}
	}
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if len(c.Environments) == 0 {
		return errors.New("no test environments configured")
	}
	seen := make(map[string]bool)
	for i, env := range c.Environments {
		if env.Name == "" {
			return fmt.Errorf("environment %d has no name", i)
		}
		if seen[env.Name] {
			return fmt.Errorf("environment %q configured twice", env.Name)
		}
		seen[env.Name] = true
		if env.Binary == "" {
			return fmt.Errorf("environment %q has no binary", env.Name)
		}
		if env.Harness == "" {
			return fmt.Errorf("environment %q has no harness", env.Name)
		}
	}
	for i, step := range c.Prerequisites {
		if step.Command == "" {
			return fmt.Errorf("prerequisite %d (%s) has no command", i, step.Name)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	return nil
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetProjectDir returns the absolute project path used as the children's working directory
func (c *Config) GetProjectDir() string {
	if abs, err := filepath.Abs(c.ProjectPath); err == nil {
		return abs
	}
	return c.ProjectPath
}

// EnvironmentSpecs returns the spawn specs for every configured environment
func (c *Config) EnvironmentSpecs() []domain.EnvironmentSpec {
	dir := c.GetProjectDir()
	specs := make([]domain.EnvironmentSpec, 0, len(c.Environments))
	for _, env := range c.Environments {
		specs = append(specs, domain.EnvironmentSpec{
			Environment: domain.Environment(env.Name),
			Binary:      env.Binary,
			Harness:     env.Harness,
			Target:      env.Target,
			Dir:         dir,
		})
	}
	return specs
}
