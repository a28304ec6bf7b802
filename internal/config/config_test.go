// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func errCode(t *testing.T, err error) any {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	return oopsErr.Code()
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Autoload)
	assert.Equal(t, "tslua_init.lua", cfg.AutoloadScript)
	assert.Equal(t, "0s", cfg.CallTimeout)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ScriptsDir)
	assert.Empty(t, cfg.MetricsAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scripts-dir: /opt/scripts
autoload: false
call-timeout: 2s
log-format: json
log-level: debug
metrics-addr: 127.0.0.1:9100
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/opt/scripts", cfg.ScriptsDir)
	assert.False(t, cfg.Autoload)
	assert.Equal(t, "tslua_init.lua", cfg.AutoloadScript)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)

	d, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "log-level: warn\nautoload-script: boot.lua\n")
	fs := newFlags(t, "--log-level=error")

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "boot.lua", cfg.AutoloadScript, "unset flag must not clobber file value")
}

func TestLoad_FlagDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_SchemaRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "scripts: /tmp\n"},
		{"wrong type", "call-timeout: 5\n"},
		{"bad enum", "log-format: xml\n"},
		{"bool as string", "autoload: \"maybe\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), nil)
			require.Error(t, err)
			assert.Equal(t, CodeInvalid, errCode(t, err))
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "log-level: [unterminated\n"), nil)
	require.Error(t, err)
	assert.Equal(t, CodeInvalid, errCode(t, err))
}

func TestLoad_UnreadablePath(t *testing.T) {
	// A directory cannot be read as a file.
	_, err := Load(t.TempDir(), nil)
	require.Error(t, err)
	assert.Equal(t, CodeReadFailed, errCode(t, err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log-format"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "log-level"},
		{"bad timeout", func(c *Config) { c.CallTimeout = "soon" }, "call-timeout"},
		{"negative timeout", func(c *Config) { c.CallTimeout = "-1s" }, "negative"},
		{"autoload without script", func(c *Config) { c.AutoloadScript = "" }, "autoload-script"},
		{"no autoload no script", func(c *Config) { c.Autoload = false; c.AutoloadScript = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, CodeInvalid, errCode(t, err))
		})
	}
}

func TestTimeout(t *testing.T) {
	cfg := Config{}
	d, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Zero(t, d)

	cfg.CallTimeout = "1m30s"
	d, err = cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	want := Default()
	want.LogLevel = "warn"
	want.Autoload = false
	want.MetricsAddr = ":9100"

	require.NoError(t, Save(path, &want))

	got, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "tslua.yaml"), Path(filepath.Join("a", "b")))
}

func TestString(t *testing.T) {
	cfg := Default()
	s := cfg.String()
	assert.Contains(t, s, `autoload-script="tslua_init.lua"`)
	assert.Contains(t, s, "log-level=info")
}
