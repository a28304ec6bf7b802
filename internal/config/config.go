// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

// Package config loads plugin settings from tslua.yaml and command-line
// flags.
//
// Flags override the file, and the file overrides defaults. A missing file is
// not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/tslua/tslua/internal/engine"
)

// FileName is the config file name inside the host's config directory.
const FileName = "tslua.yaml"

// Error codes for configuration failures.
const (
	CodeReadFailed = "CONFIG_READ_FAILED"
	CodeInvalid    = "CONFIG_INVALID"
	CodeSaveFailed = "CONFIG_SAVE_FAILED"
)

// Config holds plugin settings.
type Config struct {
	ScriptsDir     string `koanf:"scripts-dir" yaml:"scripts-dir,omitempty" json:"scripts-dir,omitempty" jsonschema:"description=Directory holding Lua scripts. Defaults to the scripts directory below the plugin root."`
	Autoload       bool   `koanf:"autoload" yaml:"autoload" json:"autoload,omitempty" jsonschema:"description=Run the autoload script when the plugin starts,default=true"`
	AutoloadScript string `koanf:"autoload-script" yaml:"autoload-script,omitempty" json:"autoload-script,omitempty" jsonschema:"description=Script run at startup and by reload,default=tslua_init.lua"`
	CallTimeout    string `koanf:"call-timeout" yaml:"call-timeout,omitempty" json:"call-timeout,omitempty" jsonschema:"description=Upper bound for one script call as a Go duration. 0 disables the bound.,default=0s,pattern=^[0-9a-zµ.]+$"`
	LogFormat      string `koanf:"log-format" yaml:"log-format,omitempty" json:"log-format,omitempty" jsonschema:"description=Log output format,enum=json,enum=text,default=text"`
	LogLevel       string `koanf:"log-level" yaml:"log-level,omitempty" json:"log-level,omitempty" jsonschema:"description=Minimum log level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	MetricsAddr    string `koanf:"metrics-addr" yaml:"metrics-addr,omitempty" json:"metrics-addr,omitempty" jsonschema:"description=Address for the metrics and health HTTP server. Empty disables it."`
}

// Default values.
const (
	DefaultCallTimeout = "0s"
	DefaultLogFormat   = "text"
	DefaultLogLevel    = "info"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Autoload:       true,
		AutoloadScript: engine.DefaultInitScript,
		CallTimeout:    DefaultCallTimeout,
		LogFormat:      DefaultLogFormat,
		LogLevel:       DefaultLogLevel,
	}
}

// RegisterFlags adds one flag per config key to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("scripts-dir", d.ScriptsDir, "directory holding Lua scripts (default: <plugin-root>/scripts)")
	fs.Bool("autoload", d.Autoload, "run the autoload script at startup")
	fs.String("autoload-script", d.AutoloadScript, "script run at startup and by reload")
	fs.String("call-timeout", d.CallTimeout, "upper bound for one script call (0 = none)")
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
}

// Load reads the config file at path, if present, then applies flags.
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults apply.
		case err != nil:
			return nil, oops.Code(CodeReadFailed).With("path", path).Wrapf(err, "reading config file")
		default:
			if err := ValidateSchema(data); err != nil {
				return nil, oops.Code(CodeInvalid).With("path", path).Wrapf(err, "config file %s", path)
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code(CodeReadFailed).With("path", path).Wrapf(err, "parsing config file")
			}
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code(CodeReadFailed).Wrapf(err, "reading flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code(CodeInvalid).Wrapf(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code(CodeInvalid).Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return oops.Code(CodeInvalid).Errorf("log-level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Autoload && c.AutoloadScript == "" {
		return oops.Code(CodeInvalid).Errorf("autoload-script is required when autoload is enabled")
	}
	return nil
}

// Timeout returns CallTimeout as a duration.
func (c *Config) Timeout() (time.Duration, error) {
	if c.CallTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CallTimeout)
	if err != nil {
		return 0, oops.Code(CodeInvalid).With("call-timeout", c.CallTimeout).Wrapf(err, "invalid call-timeout")
	}
	if d < 0 {
		return 0, oops.Code(CodeInvalid).Errorf("call-timeout must not be negative, got %s", c.CallTimeout)
	}
	return d, nil
}

// Save writes the configuration to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return oops.Code(CodeSaveFailed).Wrapf(err, "encoding config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return oops.Code(CodeSaveFailed).With("path", path).Wrapf(err, "creating config directory")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return oops.Code(CodeSaveFailed).With("path", path).Wrapf(err, "writing config file")
	}
	return nil
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// String renders the config for logs.
func (c *Config) String() string {
	return fmt.Sprintf("scripts-dir=%q autoload=%t autoload-script=%q call-timeout=%s log-format=%s log-level=%s metrics-addr=%q",
		c.ScriptsDir, c.Autoload, c.AutoloadScript, c.CallTimeout, c.LogFormat, c.LogLevel, c.MetricsAddr)
}
