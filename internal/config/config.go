// Package config loads client settings with Viper.
//
// Precedence, highest first: command-line flags, ACTIVITIES_* environment
// variables, config.yaml in the configuration directory, built-in defaults.
// A missing config.yaml is not an error.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/activities/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "ACTIVITIES"
)

// Config keys.
const (
	KeyAPIURL    = "api_url"
	KeyTimeout   = "timeout"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyToastTTL  = "toast_ttl"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"api-url":   KeyAPIURL,
	"log-level": KeyLogLevel,
}

// BoundFlags returns the names of the flags Load binds to config keys,
// sorted.
func BoundFlags() []string {
	return slices.Sorted(maps.Keys(flagKeys))
}

// File is the on-disk form of a configuration. Durations are written in
// time.ParseDuration syntax.
type File struct {
	APIURL    string `yaml:"api_url" json:"api_url"`
	Timeout   string `yaml:"timeout" json:"timeout"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
	ToastTTL  string `yaml:"toast_ttl" json:"toast_ttl"`
}

// FileFrom converts cfg to its on-disk form.
func FileFrom(cfg types.Config) File {
	return File{
		APIURL:    cfg.APIURL,
		Timeout:   cfg.Timeout.String(),
		LogLevel:  cfg.LogLevel,
		LogFormat: cfg.LogFormat,
		ToastTTL:  cfg.ToastTTL.String(),
	}
}

// Marshal encodes cfg as YAML.
func Marshal(cfg types.Config) ([]byte, error) {
	f := FileFrom(cfg)
	data, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Path returns the config.yaml location inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, configFileExt)
}

// Load reads config.yaml from configDir, applies environment and flag
// overrides, and validates the result. flags may be nil.
func Load(configDir string, flags *pflag.FlagSet) (types.Config, error) {
	v := viper.New()
	def := types.DefaultConfig()
	v.SetDefault(KeyAPIURL, def.APIURL)
	v.SetDefault(KeyTimeout, def.Timeout)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)
	v.SetDefault(KeyToastTTL, def.ToastTTL)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return types.Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		APIURL:    v.GetString(KeyAPIURL),
		Timeout:   v.GetDuration(KeyTimeout),
		LogLevel:  strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat: strings.ToLower(v.GetString(KeyLogFormat)),
		ToastTTL:  v.GetDuration(KeyToastTTL),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// WriteDefault creates configDir and writes config.yaml with cfg's values if
// the file does not exist. It reports whether a file was written.
func WriteDefault(configDir string, cfg types.Config) (bool, error) {
	path := Path(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return false, err
	}

	header := []byte("# activities client configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
