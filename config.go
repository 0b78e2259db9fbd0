package gxl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/viant/gxl/service/report"
)

const (
	// ConfPathEnv points at the engine configuration file.
	ConfPathEnv = "CONF_PATH"
	// EnvPrefix prefixes environment overrides, e.g. GXL_TASK_REPORT_URL.
	EnvPrefix = "GXL"
)

// Config is the engine configuration, read from TOML. The zero value disables reporting and records.
type Config struct {
	TaskReport report.Config `json:"task_report" yaml:"task_report" mapstructure:"task_report"`
	Record     RecordConfig  `json:"record" yaml:"record" mapstructure:"record"`
	// Source is the file the configuration was read from, empty when defaults are used.
	Source string `json:"-" yaml:"-" mapstructure:"-"`
}

// RecordConfig controls persistence of run records.
type RecordConfig struct {
	// Dir stores <runID>.json files when set.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() *Config {
	return &Config{
		TaskReport: report.Config{Timeout: 10},
	}
}

// DefaultConfigPath returns $CONF_PATH or $HOME/.galaxy/gxl.toml.
func DefaultConfigPath() string {
	if location := os.Getenv(ConfPathEnv); location != "" {
		return location
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".galaxy", "gxl.toml")
}

// LoadConfig reads location (DefaultConfigPath when empty); a missing file yields DefaultConfig.
func LoadConfig(location string) (*Config, error) {
	if location == "" {
		location = DefaultConfigPath()
	}
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("task_report.enabled", defaults.TaskReport.Enabled)
	v.SetDefault("task_report.url", defaults.TaskReport.URL)
	v.SetDefault("task_report.parent_id", defaults.TaskReport.ParentID)
	v.SetDefault("task_report.timeout", defaults.TaskReport.Timeout)
	v.SetDefault("record.dir", defaults.Record.Dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source := ""
	if _, err := os.Stat(location); err == nil {
		v.SetConfigFile(location)
		v.SetConfigType("toml")
		if err = v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", location, err)
		}
		source = location
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file %s: %w", location, err)
	}
	ret := &Config{}
	if err := v.Unmarshal(ret); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	ret.Source = source
	return ret, ret.Validate()
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.TaskReport.Enabled && c.TaskReport.URL == "" {
		errs = append(errs, fmt.Errorf("task_report.url is required when task_report.enabled"))
	}
	if c.TaskReport.Timeout < 0 {
		errs = append(errs, fmt.Errorf("task_report.timeout must be >= 0"))
	}
	return errors.Join(errs...)
}
