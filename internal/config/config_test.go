package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"dtp/internal/domain"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if len(cfg.Environments) != 2 {
		t.Fatalf("expected 2 environments, got %d", len(cfg.Environments))
	}

	if cfg.Environments[0].Harness != DefaultHeadlessHarness || cfg.Environments[1].Harness != DefaultBrowserHarness {
		t.Errorf("unexpected harnesses: %+v", cfg.Environments)
	}

	if cfg.Timeout != 0 {
		t.Errorf("expected no timeout by default, got %s", cfg.Timeout)
	}
}

func TestConfig_ApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		flags    Flags
		headless string
		browser  string
		binary   string
	}{
		{
			name:     "no flags keeps defaults",
			flags:    Flags{},
			headless: DefaultHeadlessTarget,
			browser:  DefaultBrowserTarget,
			binary:   DefaultBinary,
		},
		{
			name:     "targets override per environment",
			flags:    Flags{HeadlessTarget: "./tests/other", BrowserTarget: "tests/other.html"},
			headless: "./tests/other",
			browser:  "tests/other.html",
			binary:   DefaultBinary,
		},
		{
			name:     "binary overrides every environment",
			flags:    Flags{Binary: "/usr/local/bin/node18"},
			headless: DefaultHeadlessTarget,
			browser:  DefaultBrowserTarget,
			binary:   "/usr/local/bin/node18",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.ApplyFlags(tt.flags)

			if cfg.Environments[0].Target != tt.headless {
				t.Errorf("expected headless target %s, got %s", tt.headless, cfg.Environments[0].Target)
			}
			if cfg.Environments[1].Target != tt.browser {
				t.Errorf("expected browser target %s, got %s", tt.browser, cfg.Environments[1].Target)
			}
			for _, env := range cfg.Environments {
				if env.Binary != tt.binary {
					t.Errorf("expected binary %s for %s, got %s", tt.binary, env.Name, env.Binary)
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "no environments", mutate: func(c *Config) { c.Environments = nil }, wantErr: true},
		{name: "duplicate environment", mutate: func(c *Config) { c.Environments[1].Name = "headless" }, wantErr: true},
		{name: "missing binary", mutate: func(c *Config) { c.Environments[0].Binary = "" }, wantErr: true},
		{name: "missing harness", mutate: func(c *Config) { c.Environments[1].Harness = "" }, wantErr: true},
		{name: "step without command", mutate: func(c *Config) { c.Prerequisites = []StepConfig{{Name: "lint"}} }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_EnvironmentSpecs(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"

	specs := cfg.EnvironmentSpecs()
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].Environment != domain.EnvironmentHeadless || specs[1].Environment != domain.EnvironmentBrowser {
		t.Errorf("unexpected environments: %v, %v", specs[0].Environment, specs[1].Environment)
	}
	if specs[0].Dir != "/project" {
		t.Errorf("expected dir /project, got %s", specs[0].Dir)
	}
}

func TestConfig_GetOutputPath(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"

	expected := filepath.Join("/project", DefaultOutputJSONDir, DefaultOutputJSONFile)
	if got := cfg.GetOutputPath(); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults without files", func(t *testing.T) {
		cfg, err := Load(Flags{ProjectPath: t.TempDir()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Environments) != 2 {
			t.Errorf("expected default environments, got %d", len(cfg.Environments))
		}
		if cfg.OutputJSONDir != DefaultOutputJSONDir {
			t.Errorf("expected output dir %s, got %s", DefaultOutputJSONDir, cfg.OutputJSONDir)
		}
	})

	t.Run("config file", func(t *testing.T) {
		dir := t.TempDir()
		yaml := `timeout: 90s
environments:
  - name: headless
    binary: nodejs
    harness: run.js
    target: ./spec
prerequisites:
  - name: lint
    command: npx
    args: [eslint, src]
`
		if err := os.WriteFile(filepath.Join(dir, "dtp.yaml"), []byte(yaml), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := Load(Flags{ProjectPath: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Timeout != 90*time.Second {
			t.Errorf("expected timeout 90s, got %s", cfg.Timeout)
		}
		if len(cfg.Environments) != 1 || cfg.Environments[0].Harness != "run.js" {
			t.Errorf("unexpected environments: %+v", cfg.Environments)
		}
		if len(cfg.Prerequisites) != 1 || cfg.Prerequisites[0].Args[1] != "src" {
			t.Errorf("unexpected prerequisites: %+v", cfg.Prerequisites)
		}
	})

	t.Run("example config", func(t *testing.T) {
		example, err := os.ReadFile(filepath.Join("..", "..", "dtp.example.yaml"))
		if err != nil {
			t.Fatalf("failed to read example config: %v", err)
		}
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "dtp.yaml"), example, 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := Load(Flags{ProjectPath: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var steps []string
		for _, step := range cfg.Prerequisites {
			steps = append(steps, step.Name)
		}
		if strings.Join(steps, ",") != "eslint,browserify,terser" {
			t.Errorf("unexpected prerequisites: %v", steps)
		}
		if !reflect.DeepEqual(cfg.Environments, DefaultEnvironments()) {
			t.Errorf("expected the example environments to match the defaults, got %+v", cfg.Environments)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("expected default timeout, got %s", cfg.Timeout)
		}
	})

	t.Run("environment variables and flags", func(t *testing.T) {
		t.Setenv("DTP_BROWSER_TARGET", "tests/env.html")
		t.Setenv("DTP_TIMEOUT", "5s")

		cfg, err := Load(Flags{ProjectPath: t.TempDir(), Timeout: time.Minute, HeadlessTarget: "./flag"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Environments[1].Target != "tests/env.html" {
			t.Errorf("expected browser target from env, got %s", cfg.Environments[1].Target)
		}
		if cfg.Environments[0].Target != "./flag" {
			t.Errorf("expected headless target from flag, got %s", cfg.Environments[0].Target)
		}
		if cfg.Timeout != time.Minute {
			t.Errorf("expected flag timeout to win, got %s", cfg.Timeout)
		}
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DTP_BINARY=/opt/node/bin/node\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("DTP_BINARY") })

		cfg, err := Load(Flags{ProjectPath: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, env := range cfg.Environments {
			if env.Binary != "/opt/node/bin/node" {
				t.Errorf("expected binary from .env for %s, got %s", env.Name, env.Binary)
			}
		}
	})
}
