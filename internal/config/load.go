package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// fileConfig is the shape of dtp.yaml and DTP_* variables
type fileConfig struct {
	Environments   []EnvironmentConfig `mapstructure:"environments"`
	Prerequisites  []StepConfig        `mapstructure:"prerequisites"`
	Binary         string              `mapstructure:"binary"`
	HeadlessTarget string              `mapstructure:"headless_target"`
	BrowserTarget  string              `mapstructure:"browser_target"`
	Timeout        time.Duration       `mapstructure:"timeout"`
	OutputDir      string              `mapstructure:"output_dir"`
	OutputFile     string              `mapstructure:"output_file"`
	HistoryDSN     string              `mapstructure:"history_dsn"`
	LogLevel       string              `mapstructure:"log_level"`
	LogFormat      string              `mapstructure:"log_format"`
}

// Load builds the configuration from defaults, <project>/.env, <project>/dtp.yaml,
// DTP_* environment variables and finally the flags, each overriding the previous.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if flags.ProjectPath != "" {
		cfg.ProjectPath = flags.ProjectPath
	}

	// .env file might not exist, that's okay - use environment variables
	envPath := filepath.Join(cfg.ProjectPath, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.AddConfigPath(cfg.ProjectPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("output_dir", DefaultOutputJSONDir)
	v.SetDefault("output_file", DefaultOutputJSONFile)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	// Unset keys are invisible to Unmarshal unless bound
	for _, key := range []string{"binary", "headless_target", "browser_target", "history_dsn"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if len(fc.Environments) > 0 {
		cfg.Environments = fc.Environments
	}
	cfg.Prerequisites = fc.Prerequisites
	cfg.Timeout = fc.Timeout
	cfg.OutputJSONDir = fc.OutputDir
	cfg.OutputJSONFile = fc.OutputFile
	cfg.HistoryDSN = fc.HistoryDSN
	cfg.LogLevel = fc.LogLevel
	cfg.LogFormat = fc.LogFormat

	// File and environment overrides share the flag override path
	cfg.ApplyFlags(Flags{
		Binary:         fc.Binary,
		HeadlessTarget: fc.HeadlessTarget,
		BrowserTarget:  fc.BrowserTarget,
	})
	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
