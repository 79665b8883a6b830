// Package config loads skillhub settings from the config file, SKILLHUB_*
// environment variables and command line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jingkaihe/skillhub/pkg/catalog"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment overrides, e.g. SKILLHUB_WORKSPACE
	EnvPrefix = "SKILLHUB"
	// DirName is the per-user settings directory under $HOME
	DirName = ".skillhub"
	// LogFileName is where the console writes logs while the TUI owns the screen
	LogFileName = "skillhub.log"
)

// DefaultWorkspace is where the agent workspace lives unless configured
var DefaultWorkspace = filepath.Join("~", "Downloads", "my-skills")

// Config is the decoded skillhub configuration
type Config struct {
	Workspace string        `mapstructure:"workspace" json:"workspace" yaml:"workspace"`
	Catalog   CatalogConfig `mapstructure:"catalog" json:"catalog" yaml:"catalog"`
	Agent     AgentConfig   `mapstructure:"agent" json:"agent" yaml:"agent"`
	LogLevel  string        `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	LogFormat string        `mapstructure:"log_format" json:"log_format" yaml:"log_format"`
}

// CatalogConfig configures the remote catalog client
type CatalogConfig struct {
	BaseURL string              `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
	APIKey  string              `mapstructure:"api_key" json:"api_key" yaml:"api_key"`
	Timeout time.Duration       `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	Retry   catalog.RetryConfig `mapstructure:"retry" json:"retry" yaml:"retry"`
}

// AgentConfig configures the agent subprocess
type AgentConfig struct {
	APIKey      string            `mapstructure:"api_key" json:"api_key" yaml:"api_key"`
	Interpreter string            `mapstructure:"interpreter" json:"interpreter" yaml:"interpreter"`
	Script      string            `mapstructure:"script" json:"script" yaml:"script"`
	Env         map[string]string `mapstructure:"-" json:"env" yaml:"env"`
}

// Init wires environment and config file lookup into v
func Init(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/" + DirName)
	v.AddConfigPath(".")

	SetDefaults(v)
}

// SetDefaults registers the default of every key so that environment
// overrides are visible to Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("workspace", DefaultWorkspace)
	v.SetDefault("catalog.base_url", catalog.DefaultBaseURL)
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.timeout", 30*time.Second)
	v.SetDefault("catalog.retry.attempts", catalog.DefaultRetryConfig.Attempts)
	v.SetDefault("catalog.retry.initial_delay", catalog.DefaultRetryConfig.InitialDelay)
	v.SetDefault("catalog.retry.max_delay", catalog.DefaultRetryConfig.MaxDelay)
	v.SetDefault("catalog.retry.backoff_type", catalog.DefaultRetryConfig.BackoffType)
	v.SetDefault("agent.api_key", "")
	v.SetDefault("agent.interpreter", "")
	v.SetDefault("agent.script", "main.py")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// ReadInConfig loads the config file if one exists
func ReadInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// Load decodes the global viper instance
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom decodes v into a Config, expanding ~ in the workspace path
func LoadFrom(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to unmarshal configuration")
	}

	env, err := decodeEnv(v.Get("agent.env"))
	if err != nil {
		return cfg, err
	}
	cfg.Agent.Env = env

	workspace, err := ExpandHome(cfg.Workspace)
	if err != nil {
		return cfg, err
	}
	cfg.Workspace = workspace

	return cfg, cfg.Validate()
}

// decodeEnv accepts loosely typed YAML values so that `PORT: 8080` works.
// viper lowercases map keys, so names are upper-cased back.
func decodeEnv(raw interface{}) (map[string]string, error) {
	env := map[string]string{}
	if raw == nil {
		return env, nil
	}
	decoded := map[string]string{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &decoded,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create env decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "invalid agent.env")
	}
	for k, v := range decoded {
		env[strings.ToUpper(k)] = v
	}
	return env, nil
}

// Validate checks values that cannot be defaulted
func (c Config) Validate() error {
	if strings.TrimSpace(c.Workspace) == "" {
		return errors.New("workspace must not be empty")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return errors.Errorf("invalid log_format %q, must be text or json", c.LogFormat)
	}
	return nil
}

// AgentAPIKey returns the credential passed to the agent, falling back to
// ANTHROPIC_API_KEY from the environment
func (c Config) AgentAPIKey() string {
	if c.Agent.APIKey != "" {
		return c.Agent.APIKey
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

// ExpandHome replaces a leading ~ with the user home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Dir returns ~/.skillhub
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, DirName), nil
}

// LogFile returns the path of the console log file
func LogFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}
