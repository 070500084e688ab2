package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultBinary is the runtime binary both harnesses are started with
	DefaultBinary = "node"
	// DefaultHeadlessHarness runs the suite directly in the runtime
	DefaultHeadlessHarness = "test.js"
	// DefaultBrowserHarness runs the suite in a headless browser page
	DefaultBrowserHarness = "test-chrome.js"
	// DefaultHeadlessTarget is the module path handed to the headless harness
	DefaultHeadlessTarget = "./tests/minifier"
	// DefaultBrowserTarget is the page handed to the browser harness
	DefaultBrowserTarget = "tests/index.html"
	// DefaultTimeout of zero waits for the harnesses indefinitely
	DefaultTimeout time.Duration = 0
	// DefaultLogLevel is the default sink level
	DefaultLogLevel = "info"
	// DefaultLogFormat is the default sink encoding
	DefaultLogFormat = "console"
	// ConfigFileName is looked up in the project directory without extension
	ConfigFileName = "dtp"
	// EnvPrefix prefixes every environment variable override
	EnvPrefix = "DTP"
)

// DefaultEnvironments returns the headless and browser environments
func DefaultEnvironments() []EnvironmentConfig {
	return []EnvironmentConfig{
		{Name: "headless", Binary: DefaultBinary, Harness: DefaultHeadlessHarness, Target: DefaultHeadlessTarget},
		{Name: "browser", Binary: DefaultBinary, Harness: DefaultBrowserHarness, Target: DefaultBrowserTarget},
	}
}
