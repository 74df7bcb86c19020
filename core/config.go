package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nox-hq/ctrlmatrix/core/policy"
)

// ConfigFileName is the project configuration file looked up by LoadConfig.
const ConfigFileName = ".ctrlmatrix.yaml"

// Config holds project-level configuration loaded from .ctrlmatrix.yaml.
type Config struct {
	Validate   ValidateSettings   `yaml:"validate"`
	Compliance ComplianceSettings `yaml:"compliance"`
	Policy     policy.Config      `yaml:"policy"`
	Output     OutputSettings     `yaml:"output"`
	Explain    ExplainSettings    `yaml:"explain"`
}

// ValidateSettings extends the built-in validation rules.
type ValidateSettings struct {
	KnownServices      []string `yaml:"known_services"`
	KnownFrameworks    []string `yaml:"known_frameworks"`
	SkipEvidenceChecks bool     `yaml:"skip_evidence_checks"`
}

// ComplianceSettings restricts which built-in frameworks are scored.
type ComplianceSettings struct {
	Frameworks []string `yaml:"frameworks"`
}

// OutputSettings controls default output format and directory.
type OutputSettings struct {
	Format    string `yaml:"format"`
	Directory string `yaml:"directory"`
}

// ExplainSettings controls defaults for the explain command.
type ExplainSettings struct {
	APIKeyEnv         string `yaml:"api_key_env"` // env var name to read API key from (default: OPENAI_API_KEY)
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url"`
	Timeout           string `yaml:"timeout"`             // per-request timeout (e.g., "2m", "30s")
	BatchSize         int    `yaml:"batch_size"`          // issues per LLM request (default: 10)
	RequestsPerMinute int    `yaml:"requests_per_minute"` // 0 = unlimited
	Output            string `yaml:"output"`
}

// LoadConfig reads .ctrlmatrix.yaml from root and returns the parsed config.
// If the file does not exist, a zero-value Config is returned with no error.
func LoadConfig(root string) (*Config, error) {
	return LoadConfigFile(filepath.Join(root, ConfigFileName))
}

// LoadConfigFile reads the config at path. A missing file yields a
// zero-value Config.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}
