package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (BUGHUNTER_SANDBOX_TIMEOUT, ...).
const EnvPrefix = "BUGHUNTER"

// Config holds all configuration for bughunter
type Config struct {
	Sandbox  SandboxConfig  `mapstructure:"sandbox"`
	Plugins  PluginsConfig  `mapstructure:"plugins"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	AI       AIConfig       `mapstructure:"ai"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Scan     ScanConfig     `mapstructure:"scan"`
}

// SandboxConfig controls how external tools are spawned
type SandboxConfig struct {
	Timeout     time.Duration     `mapstructure:"timeout"`
	Mode        string            `mapstructure:"mode"` // local | docker | auto
	DockerImage string            `mapstructure:"docker_image"`
	Env         map[string]string `mapstructure:"env"`
	TempRoot    string            `mapstructure:"temp_root"`
}

// PluginsConfig controls discovery and dependency installation
type PluginsConfig struct {
	Dir         string `mapstructure:"dir"`
	AutoInstall bool   `mapstructure:"auto_install"`
}

// WorkflowConfig controls workflow execution
type WorkflowConfig struct {
	SchemaValidation bool `mapstructure:"schema_validation"`
}

// AIConfig selects and configures the AI backend
type AIConfig struct {
	Provider   string        `mapstructure:"provider"` // gemini | openai
	Model      string        `mapstructure:"model"`
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// AuditConfig controls the local audit trail
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// PolicyConfig points at the security policy file
type PolicyConfig struct {
	File string `mapstructure:"file"`
}

// ScanConfig tunes multi-target scans
type ScanConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

var defaultConfig = Config{
	Sandbox: SandboxConfig{
		Timeout: 10 * time.Minute,
		Mode:    "local",
	},
	Plugins: PluginsConfig{
		Dir: "plugins",
	},
	Workflow: WorkflowConfig{
		SchemaValidation: true,
	},
	AI: AIConfig{
		Provider:   "gemini",
		Model:      "gemini-1.5-flash",
		Timeout:    60 * time.Second,
		MaxRetries: 3,
	},
	Audit: AuditConfig{
		Enabled: true,
	},
	Policy: PolicyConfig{
		File: "security_policy.yaml",
	},
	Scan: ScanConfig{
		Concurrency: 4,
	},
}

// Default returns a copy of the built-in configuration.
func Default() Config {
	c := defaultConfig
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sandbox.timeout", defaultConfig.Sandbox.Timeout)
	v.SetDefault("sandbox.mode", defaultConfig.Sandbox.Mode)
	v.SetDefault("sandbox.docker_image", defaultConfig.Sandbox.DockerImage)
	v.SetDefault("sandbox.temp_root", defaultConfig.Sandbox.TempRoot)
	v.SetDefault("plugins.dir", defaultConfig.Plugins.Dir)
	v.SetDefault("plugins.auto_install", defaultConfig.Plugins.AutoInstall)
	v.SetDefault("workflow.schema_validation", defaultConfig.Workflow.SchemaValidation)
	v.SetDefault("ai.provider", defaultConfig.AI.Provider)
	v.SetDefault("ai.model", defaultConfig.AI.Model)
	v.SetDefault("ai.endpoint", defaultConfig.AI.Endpoint)
	v.SetDefault("ai.api_key", defaultConfig.AI.APIKey)
	v.SetDefault("ai.timeout", defaultConfig.AI.Timeout)
	v.SetDefault("ai.max_retries", defaultConfig.AI.MaxRetries)
	v.SetDefault("audit.enabled", defaultConfig.Audit.Enabled)
	v.SetDefault("audit.dir", defaultConfig.Audit.Dir)
	v.SetDefault("policy.file", defaultConfig.Policy.File)
	v.SetDefault("scan.concurrency", defaultConfig.Scan.Concurrency)
}

// LoadConfig loads configuration from defaults, the first bughunter.yaml found
// in the search path, and BUGHUNTER_* environment variables. When explicitPath
// is set, only that file is read and it must exist.
func LoadConfig(explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("bughunter")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		if home, err := GetHome(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// ResolveAPIKey returns the configured key or the provider's conventional
// environment variable (GEMINI_API_KEY, OPENAI_API_KEY).
func (c AIConfig) ResolveAPIKey(getenv func(string) string) string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	switch strings.ToLower(c.Provider) {
	case "openai":
		return getenv("OPENAI_API_KEY")
	default:
		return getenv("GEMINI_API_KEY")
	}
}

// GetHome returns the bughunter home directory
func GetHome() (string, error) {
	if home := os.Getenv("BUGHUNTER_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".bughunter"), nil
}

// EnsureHome creates the bughunter home directory if it doesn't exist
func EnsureHome() (string, error) {
	homeDir, err := GetHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create bughunter home directory: %w", err)
	}
	return homeDir, nil
}

// AuditDir returns the directory for audit and feedback logs.
func (c *Config) AuditDir() (string, error) {
	if c.Audit.Dir != "" {
		if err := os.MkdirAll(c.Audit.Dir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create audit directory: %w", err)
		}
		return c.Audit.Dir, nil
	}
	return EnsureHome()
}
