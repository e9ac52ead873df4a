package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/thiagokokada/pushguard/internal/git"
	"github.com/thiagokokada/pushguard/internal/header"
)

// Check modes select which enumeration feeds the validator for an update of an
// existing ref.
const (
	ModeCreated = "created"
	ModeAdded   = "added"
)

// EnvPrefix is prepended to upper-cased keys: PUSHGUARD_MODE, PUSHGUARD_AUDIT_PATH.
const EnvPrefix = "PUSHGUARD"

// GitConfigKey is the git config key that may point at the config file.
const GitConfigKey = "pushguard.config"

// FieldConfig declares or overrides one header field.
type FieldConfig struct {
	Name     string `mapstructure:"name"`
	Prefix   string `mapstructure:"prefix"`
	Pattern  string `mapstructure:"pattern"`
	Required bool   `mapstructure:"required"`
}

type AuditConfig struct {
	// Path of the SQLite database; empty disables the audit trail.
	Path string `mapstructure:"path"`
}

type Config struct {
	Backend    string            `mapstructure:"backend"`
	Mode       string            `mapstructure:"mode"`
	CheckTags  bool              `mapstructure:"check_tags"`
	Verbose    bool              `mapstructure:"verbose"`
	Thresholds header.Thresholds `mapstructure:"thresholds"`
	Fields     []FieldConfig     `mapstructure:"fields"`
	Required   []string          `mapstructure:"required"`
	Audit      AuditConfig       `mapstructure:"audit"`
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	th := header.DefaultThresholds()
	v.SetDefault("backend", git.BackendGitCLI)
	v.SetDefault("mode", ModeCreated)
	v.SetDefault("check_tags", false)
	v.SetDefault("verbose", false)
	v.SetDefault("thresholds.ref_min_digits", th.RefMinDigits)
	v.SetDefault("thresholds.ref_max_digits", th.RefMaxDigits)
	v.SetDefault("thresholds.summary_max_len", th.SummaryMaxLen)
	v.SetDefault("thresholds.description_min_len", th.DescriptionMinLen)
	v.SetDefault("required", []string{})
	v.SetDefault("audit.path", "")
}

// Load reads cfgFile, or pushguard.yaml from the search dirs when cfgFile is
// empty. A missing default file is not an error.
func Load(v *viper.Viper, cfgFile string, searchDirs ...string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("pushguard")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment")
	} else {
		slog.Debug("using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeCreated, ModeAdded:
	default:
		return fmt.Errorf("invalid mode %q (want %s or %s)", c.Mode, ModeCreated, ModeAdded)
	}
	switch c.Backend {
	case git.BackendGitCLI, git.BackendNative:
	default:
		return fmt.Errorf("invalid backend %q (want %s or %s)", c.Backend, git.BackendGitCLI, git.BackendNative)
	}
	return nil
}

// Validator builds the header validator: default fields from the thresholds,
// then the configured fields, then the required list.
func (c *Config) Validator() (*header.Validator, error) {
	table, err := header.DefaultTable(c.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}
	required := append([]string(nil), c.Required...)
	for _, fc := range c.Fields {
		f, err := header.NewField(fc.Name, fc.Prefix, fc.Pattern)
		if err != nil {
			return nil, fmt.Errorf("fields: %w", err)
		}
		table = table.With(f)
		if fc.Required {
			required = append(required, fc.Name)
		}
	}
	table, err = table.Require(required...)
	if err != nil {
		return nil, fmt.Errorf("required: %w", err)
	}
	return header.NewValidator(table)
}
