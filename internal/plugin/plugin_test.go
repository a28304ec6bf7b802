// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package plugin

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tslua/tslua/internal/config"
	"github.com/tslua/tslua/pkg/ts3"
)

type tab struct {
	mu    sync.Mutex
	lines []string
}

func (t *tab) print(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, msg)
}

func (t *tab) all() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	plugin *Plugin
	tab    *tab
	paths  Paths
}

// newFixture creates a plugin with an optional init script in its scripts
// directory.
func newFixture(t *testing.T, initScript string, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		tab: &tab{},
		paths: Paths{
			Config: t.TempDir(),
			Plugin: t.TempDir(),
		},
	}
	scripts := filepath.Join(f.paths.Plugin, "scripts")
	require.NoError(t, os.MkdirAll(scripts, 0o750))
	if initScript != "" {
		require.NoError(t, os.WriteFile(filepath.Join(scripts, "tslua_init.lua"), []byte(initScript), 0o600))
	}

	funcs := &ts3.Functions{PrintMessageToCurrentTab: f.tab.print}
	f.plugin = New(funcs, append([]Option{WithLogger(quietLogger())}, opts...)...)
	t.Cleanup(func() { f.plugin.Shutdown(context.Background()) })
	return f
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	require.NoError(t, f.plugin.Init(context.Background(), f.paths))
}

const greeter = `
local ts3 = require("ts3api")
function on_connect(conn)
  ts3.print_message(conn, "connected " .. conn)
end
function on_disconnect(conn)
  ts3.print_message(conn, "disconnected " .. conn)
end
function on_text_message(conn, mode, to, from, name, uid, msg)
  ts3.print_message(conn, name .. ": " .. msg)
end
function on_command(conn, name, rest)
  ts3.print_message(conn, name .. " -> " .. rest)
end
`

func TestPlugin_CommandsBeforeInit(t *testing.T) {
	f := newFixture(t, "")

	assert.False(t, f.plugin.Ready())
	assert.Equal(t, 0, f.plugin.ProcessCommand(context.Background(), 1, "status"))
	assert.Contains(t, f.tab.all(), "Lua Engine: Not initialized")
}

func TestPlugin_InitRunsAutoload(t *testing.T) {
	f := newFixture(t, greeter)
	f.init(t)

	require.True(t, f.plugin.Ready())
	assert.True(t, f.plugin.Engine().HasFunction("on_connect"))
	assert.Empty(t, f.plugin.Engine().LastError())
}

func TestPlugin_InitWithoutAutoloadScript(t *testing.T) {
	f := newFixture(t, "")
	f.init(t)

	assert.True(t, f.plugin.Ready())
	assert.Empty(t, f.plugin.Engine().LastError(), "missing init script is not an error")
}

func TestPlugin_InitWithFaultyAutoload(t *testing.T) {
	f := newFixture(t, `error("boom", 0)`)
	f.init(t)

	assert.True(t, f.plugin.Ready(), "a faulting script leaves the engine usable")
	assert.Contains(t, f.plugin.Engine().LastError(), "boom")
}

func TestPlugin_AutoloadDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Autoload = false
	f := newFixture(t, greeter, WithConfig(&cfg))
	f.init(t)

	assert.True(t, f.plugin.Ready())
	assert.False(t, f.plugin.Engine().HasFunction("on_connect"))
}

func TestPlugin_ConfigFileSelectsAutoloadScript(t *testing.T) {
	f := newFixture(t, "")
	scripts := filepath.Join(f.paths.Plugin, "scripts")
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "boot.lua"), []byte("function booted() end"), 0o600))
	require.NoError(t, os.WriteFile(config.Path(f.paths.Config), []byte("autoload-script: boot.lua\n"), 0o600))

	f.init(t)

	assert.True(t, f.plugin.Engine().HasFunction("booted"))
	assert.Equal(t, "boot.lua", f.plugin.Config().AutoloadScript)
}

func TestPlugin_InvalidConfigFallsBackToDefaults(t *testing.T) {
	f := newFixture(t, greeter)
	require.NoError(t, os.WriteFile(config.Path(f.paths.Config), []byte("log-level: loud\n"), 0o600))

	f.init(t)

	assert.True(t, f.plugin.Ready())
	assert.Equal(t, config.Default(), f.plugin.Config())
	assert.True(t, f.plugin.Engine().HasFunction("on_connect"))
}

func TestPlugin_ScriptsDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tslua_init.lua"), []byte("function elsewhere() end"), 0o600))

	cfg := config.Default()
	cfg.ScriptsDir = dir
	f := newFixture(t, "", WithConfig(&cfg))
	f.init(t)

	assert.Equal(t, dir, f.plugin.Engine().ScriptsRoot())
	assert.True(t, f.plugin.Engine().HasFunction("elsewhere"))
}

func TestPlugin_InitTwiceIsNoop(t *testing.T) {
	f := newFixture(t, greeter)
	f.init(t)
	eng := f.plugin.Engine()

	f.init(t)
	assert.Same(t, eng, f.plugin.Engine())
}

func TestPlugin_ShutdownAndReinit(t *testing.T) {
	f := newFixture(t, greeter)
	f.init(t)

	f.plugin.Shutdown(context.Background())
	assert.False(t, f.plugin.Ready())
	f.plugin.Shutdown(context.Background())

	f.init(t)
	assert.True(t, f.plugin.Ready())
	assert.True(t, f.plugin.Engine().HasFunction("on_connect"))
}

func TestPlugin_CallbacksDuringReinit(t *testing.T) {
	f := newFixture(t, greeter)
	f.init(t)
	ctx := context.Background()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			f.plugin.OnTextMessage(ctx, 1, ts3.TargetChannel, 0, 3, "alice", "uid", "hi")
			f.plugin.ProcessCommand(ctx, 1, "status")
			_ = f.plugin.Ready()
			_ = f.plugin.Config()
		}
	}()

	for range 5 {
		f.plugin.Shutdown(ctx)
		f.init(t)
	}
	close(done)
	wg.Wait()

	assert.True(t, f.plugin.Ready())
	assert.True(t, f.plugin.Engine().HasFunction("on_text_message"))
}

func TestPlugin_EventsReachScripts(t *testing.T) {
	f := newFixture(t, greeter)
	f.init(t)
	ctx := context.Background()

	f.plugin.OnConnectStatusChanged(ctx, 7, ts3.StatusConnected, ts3.ErrorOK)
	f.plugin.OnConnectStatusChanged(ctx, 7, ts3.StatusConnecting, ts3.ErrorOK)
	f.plugin.OnTextMessage(ctx, 7, ts3.TargetChannel, 0, 3, "alice", "uid", "hi")
	f.plugin.OnClientMove(ctx, 7, 3, 1, 2, 0, "")
	f.plugin.OnTalkStatusChange(ctx, 7, ts3.TalkStatusTalking, false, 3)
	f.plugin.OnConnectStatusChanged(ctx, 7, ts3.StatusDisconnected, ts3.ErrorCode(1))

	assert.Equal(t, []string{"connected 7", "alice: hi", "disconnected 7"}, f.tab.all())
}

func TestPlugin_UnknownCommandForwarded(t *testing.T) {
	f := newFixture(t, greeter)
	f.init(t)

	code := f.plugin.ProcessCommand(context.Background(), 2, `greet "big world"`)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{`greet -> "big world"`}, f.tab.all())
}

func TestPlugin_CommandKeyword(t *testing.T) {
	assert.Equal(t, "tslua", New(nil).CommandKeyword())
	assert.Equal(t, "lua", New(nil, WithCommandKeyword("lua")).CommandKeyword())
	assert.Equal(t, "tslua", New(nil, WithCommandKeyword("")).CommandKeyword())
}

func TestPlugin_WithOutput(t *testing.T) {
	var out bytes.Buffer
	p := New(nil, WithOutput(&out), WithLogger(quietLogger()))

	assert.Equal(t, 0, p.ProcessCommand(context.Background(), 1, "info"))
	assert.Equal(t, "TsLua Plugin v1.4.0 by TsLua Contributors\n", out.String())
}

func TestPlugin_MetricsServer(t *testing.T) {
	cfg := config.Default()
	cfg.MetricsAddr = "127.0.0.1:0"
	f := newFixture(t, "", WithConfig(&cfg))
	f.init(t)

	require.NotNil(t, f.plugin.metrics)
	addr := f.plugin.metrics.Addr()

	resp, err := http.Get("http://" + addr + "/healthz/readiness")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "tslua_engine_ready 1")

	f.plugin.Shutdown(context.Background())
	assert.Nil(t, f.plugin.metrics)
}

func TestPlugin_ConfiguresLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var logs bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"
	p := New(nil, WithConfig(&cfg), WithLogOutput(&logs))
	t.Cleanup(func() { p.Shutdown(context.Background()) })

	require.NoError(t, p.Init(context.Background(), Paths{Config: t.TempDir(), Plugin: t.TempDir()}))

	assert.Contains(t, logs.String(), `"msg":"plugin starting"`)
	assert.Contains(t, logs.String(), `"service":"tslua"`)
}

func TestPaths_ResolveDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	got, err := Paths{}.resolve()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/cfg", "tslua"), got.Config)
	assert.Equal(t, filepath.Join("/data", "tslua"), got.Plugin)

	got, err = Paths{Config: "a", Plugin: "b"}.resolve()
	require.NoError(t, err)
	assert.Equal(t, Paths{Config: "a", Plugin: "b"}, got)
}

func TestPaths_ResolveFailsWithoutHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")

	p := New(nil, WithLogger(quietLogger()))
	err := p.Init(context.Background(), Paths{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "config directory"))
	assert.False(t, p.Ready())
}
