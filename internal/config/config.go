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

const envPrefix = "WEEKPLAN"

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	AI      AIConfig      `mapstructure:"ai"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Log     LogConfig     `mapstructure:"log"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	Key    string `mapstructure:"key"`
}

type AIConfig struct {
	Provider  string        `mapstructure:"provider"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
	History   string        `mapstructure:"history"`
}

type NotifyConfig struct {
	Mode      string        `mapstructure:"mode"`
	Interval  time.Duration `mapstructure:"interval"`
	Lookahead time.Duration `mapstructure:"lookahead"`
	Buffer    int           `mapstructure:"buffer"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DataDir is where the database and log file live by default.
func DataDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dir != "" {
		return filepath.Join(dir, "weekplan")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".weekplan"
	}
	return filepath.Join(home, ".local", "share", "weekplan")
}

// DefaultConfigPath is read when no --config flag is given and the file exists.
func DefaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "weekplan", "config.yaml")
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	dataDir := DataDir()
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", filepath.Join(dataDir, "weekplan.db"))
	v.SetDefault("storage.key", "schedule-ai-tasks")
	v.SetDefault("ai.provider", "anthropic")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.base_url", "https://api.anthropic.com/v1/messages")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.history", "")
	v.SetDefault("notify.mode", "auto")
	v.SetDefault("notify.interval", 60*time.Second)
	v.SetDefault("notify.lookahead", 5*time.Minute)
	v.SetDefault("notify.buffer", 16)
	v.SetDefault("log.file", filepath.Join(dataDir, "weekplan.log"))
	v.SetDefault("log.level", "info")
}

// Load merges defaults, the YAML file at path (or the default location when
// path is empty and the file exists) and WEEKPLAN_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ai.api_key", envPrefix+"_AI_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, err
	}

	file := strings.TrimSpace(path)
	explicit := file != ""
	if !explicit {
		file = DefaultConfigPath()
	}
	if file != "" {
		if _, err := os.Stat(file); err == nil || explicit {
			v.SetConfigFile(file)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", file, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite", "file":
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be sqlite or file, got %q", c.Storage.Driver))
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, errors.New("storage.key is required"))
	}
	switch strings.ToLower(c.AI.Provider) {
	case "anthropic", "local":
	default:
		errs = append(errs, fmt.Errorf("ai.provider must be anthropic or local, got %q", c.AI.Provider))
	}
	switch strings.ToLower(c.Notify.Mode) {
	case "auto", "on", "off":
	default:
		errs = append(errs, fmt.Errorf("notify.mode must be auto, on or off, got %q", c.Notify.Mode))
	}
	if c.Notify.Interval <= 0 {
		errs = append(errs, errors.New("notify.interval must be positive"))
	}
	if c.Notify.Lookahead <= 0 {
		errs = append(errs, errors.New("notify.lookahead must be positive"))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("ai.timeout must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
