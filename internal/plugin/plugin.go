// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

// Package plugin ties the scripting engine to the host client.
//
// A Plugin owns one engine. Init loads configuration, starts the
// interpreter and runs the autoload script; every host callback after that
// is forwarded to the command handler or the event dispatcher. Scripting
// failures never fail the plugin: the host keeps a loaded plugin that
// reports "not initialized" until the next Init.
package plugin

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/tslua/tslua/internal/command"
	"github.com/tslua/tslua/internal/config"
	"github.com/tslua/tslua/internal/engine"
	"github.com/tslua/tslua/internal/events"
	"github.com/tslua/tslua/internal/hostapi"
	"github.com/tslua/tslua/internal/logging"
	"github.com/tslua/tslua/internal/observability"
	"github.com/tslua/tslua/internal/xdg"
	"github.com/tslua/tslua/pkg/errutil"
	"github.com/tslua/tslua/pkg/ts3"
)

const metricsStopTimeout = 5 * time.Second

// Paths are the directories the host assigns to the plugin.
type Paths struct {
	// Config holds tslua.yaml. Empty means the XDG config directory.
	Config string
	// Plugin is the plugin root; scripts live in its scripts directory.
	// Empty means the XDG data directory.
	Plugin string
}

func (p Paths) resolve() (Paths, error) {
	if p.Config == "" {
		dir, err := xdg.ConfigDir()
		if err != nil {
			return p, oops.In("plugin").Wrapf(err, "resolving config directory")
		}
		p.Config = dir
	}
	if p.Plugin == "" {
		dir, err := xdg.DataDir()
		if err != nil {
			return p, oops.In("plugin").Wrapf(err, "resolving plugin directory")
		}
		p.Plugin = dir
	}
	return p, nil
}

// wiring is the engine and its consumers built from one config. Host
// callbacks read it without taking the plugin lock.
type wiring struct {
	engine     *engine.Engine
	dispatcher *events.Dispatcher
	commands   *command.Handler
	cfg        config.Config
}

// Plugin is the host-facing entry point.
type Plugin struct {
	mu sync.Mutex

	funcs   *ts3.Functions
	about   Metadata
	out     io.Writer
	flags   *pflag.FlagSet
	fixed   *config.Config
	logger  *slog.Logger
	logOut  io.Writer
	keyword string

	wired   atomic.Pointer[wiring]
	metrics *observability.Server

	initialized bool
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithConfig uses cfg instead of reading tslua.yaml during Init.
func WithConfig(cfg *config.Config) Option {
	return func(p *Plugin) {
		p.fixed = cfg
	}
}

// WithFlags applies flag overrides when Init reads tslua.yaml.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(p *Plugin) {
		p.flags = fs
	}
}

// WithLogger uses logger instead of configuring the default logger from
// the loaded config.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithLogOutput sets where the configured logger writes. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(p *Plugin) {
		p.logOut = w
	}
}

// WithOutput replaces the host chat tab as the command reply sink.
func WithOutput(w io.Writer) Option {
	return func(p *Plugin) {
		p.out = w
	}
}

// WithVersion sets the reported version. An invalid version is ignored.
func WithVersion(version string) Option {
	return func(p *Plugin) {
		if v, err := ParseVersion(version); err == nil {
			p.about.Version = v
		}
	}
}

// WithCommandKeyword overrides the chat command keyword.
func WithCommandKeyword(keyword string) Option {
	return func(p *Plugin) {
		if keyword != "" {
			p.keyword = keyword
		}
	}
}

// New creates a plugin bound to the host function table. funcs may be nil
// when no host is attached.
func New(funcs *ts3.Functions, opts ...Option) *Plugin {
	p := &Plugin{
		funcs:   funcs,
		about:   DefaultMetadata(),
		keyword: command.DefaultKeyword,
		logOut:  os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.out == nil {
		p.out = NewTabWriter(funcs)
	}

	cfg := config.Default()
	if p.fixed != nil {
		cfg = *p.fixed
	}
	p.build(cfg)
	return p
}

// build wires a fresh engine and its consumers for cfg and publishes them.
// The engine is not started.
func (p *Plugin) build(cfg config.Config) *wiring {
	logger := p.logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		errutil.LogError(logger, "ignoring call timeout", err)
	}

	eng := engine.New(
		engine.WithModule(hostapi.New(p.funcs, hostapi.WithLogger(logger))),
		engine.WithCallTimeout(timeout),
		engine.WithInitScript(cfg.AutoloadScript),
		engine.WithScriptsDir(cfg.ScriptsDir),
	)
	w := &wiring{
		engine:     eng,
		dispatcher: events.NewDispatcher(eng, events.WithLogger(logger)),
		cfg:        cfg,
	}
	w.commands = command.NewHandler(eng, p.out,
		command.WithKeyword(p.keyword),
		command.WithAbout(command.About{
			Name:    p.about.Name,
			Version: p.about.Version.String(),
			Author:  p.about.Author,
		}),
		command.WithLogger(logger),
	)
	p.wired.Store(w)
	return w
}

// Init loads configuration, starts the engine and runs the autoload
// script. It only fails when the plugin directories cannot be resolved;
// scripting failures are logged and leave the engine not ready.
func (p *Plugin) Init(ctx context.Context, paths Paths) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		slog.Warn("plugin already initialized")
		return nil
	}

	paths, err := paths.resolve()
	if err != nil {
		return err
	}

	cfg := p.loadConfig(paths.Config)
	if p.logger == nil {
		p.logger = logging.SetDefault("tslua", p.about.Version.String(), cfg.LogFormat, cfg.LogLevel, p.logOut)
	}
	w := p.build(cfg)

	p.logger.Info("plugin starting",
		"name", p.about.Name,
		"version", p.about.Version.String(),
		"config_dir", paths.Config,
		"plugin_dir", paths.Plugin,
	)

	if err := w.engine.Init(ctx, paths.Plugin); err != nil {
		errutil.LogError(p.logger, "scripting disabled", err)
	} else if cfg.Autoload {
		p.autoload(ctx, w.engine, cfg.AutoloadScript)
	}

	if cfg.MetricsAddr != "" {
		p.startMetrics(cfg.MetricsAddr, w.engine)
	}

	p.initialized = true
	return nil
}

func (p *Plugin) loadConfig(dir string) config.Config {
	if p.fixed != nil {
		return *p.fixed
	}

	cfg, err := config.Load(config.Path(dir), p.flags)
	if err != nil {
		errutil.LogError(slog.Default(), "invalid configuration, using defaults", err)
		return config.Default()
	}
	return *cfg
}

// autoload runs the startup script. A missing script is not an error.
func (p *Plugin) autoload(ctx context.Context, eng *engine.Engine, name string) {
	path := filepath.Join(eng.ScriptsRoot(), name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		p.logger.Info("no autoload script", "path", path)
		return
	}
	if err := eng.Load(ctx, path); err != nil {
		errutil.LogError(p.logger, "autoload script failed", err)
		return
	}
	p.logger.Info("autoload script loaded", "path", path)
}

func (p *Plugin) startMetrics(addr string, eng *engine.Engine) {
	srv := observability.NewServer(addr, eng.IsReady, RegisterMetrics)
	errCh, err := srv.Start()
	if err != nil {
		errutil.LogError(p.logger, "metrics server not started", err)
		return
	}
	p.metrics = srv
	go func() {
		for err := range errCh {
			errutil.LogError(p.logger, "metrics server failed", err)
		}
	}()
}

// Shutdown stops the metrics server and the engine. It is safe to call
// more than once.
func (p *Plugin) Shutdown(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.metrics != nil {
		stopCtx, cancel := context.WithTimeout(ctx, metricsStopTimeout)
		if err := p.metrics.Stop(stopCtx); err != nil {
			errutil.LogError(p.log(), "metrics server stop failed", err)
		}
		cancel()
		p.metrics = nil
	}

	p.wired.Load().engine.Shutdown(ctx)
	if p.initialized {
		p.log().Info("plugin stopped")
	}
	p.initialized = false
}

func (p *Plugin) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

// Ready reports whether scripting is available.
func (p *Plugin) Ready() bool {
	return p.wired.Load().engine.IsReady()
}

// Engine returns the engine owned by the plugin. Init replaces it.
func (p *Plugin) Engine() *engine.Engine {
	return p.wired.Load().engine
}

// Config returns the active configuration.
func (p *Plugin) Config() config.Config {
	return p.wired.Load().cfg
}

// CommandKeyword is the keyword the host routes chat commands by.
func (p *Plugin) CommandKeyword() string {
	return p.keyword
}

// ProcessCommand handles one command line. It returns 0 when the command
// was handled and 1 when it was handled but failed.
func (p *Plugin) ProcessCommand(ctx context.Context, conn uint64, input string) int {
	return p.wired.Load().commands.ProcessCommand(ctx, conn, input)
}

// OnConnectStatusChanged forwards a connection state change.
func (p *Plugin) OnConnectStatusChanged(ctx context.Context, conn uint64, status ts3.ConnectStatus, code ts3.ErrorCode) {
	p.wired.Load().dispatcher.OnConnectStatusChanged(ctx, conn, status, code)
}

// OnClientMove forwards a client channel move.
func (p *Plugin) OnClientMove(ctx context.Context, conn uint64, client ts3.AnyID, oldChannel, newChannel uint64, visibility int, moveMessage string) {
	p.wired.Load().dispatcher.OnClientMove(ctx, conn, client, oldChannel, newChannel, visibility, moveMessage)
}

// OnTextMessage forwards a received text message.
func (p *Plugin) OnTextMessage(ctx context.Context, conn uint64, targetMode, toID, fromID ts3.AnyID, fromName, fromUniqueID, message string) {
	p.wired.Load().dispatcher.OnTextMessage(ctx, conn, targetMode, toID, fromID, fromName, fromUniqueID, message)
}

// OnTalkStatusChange forwards a talk status change.
func (p *Plugin) OnTalkStatusChange(ctx context.Context, conn uint64, status int, isReceivedWhisper bool, client ts3.AnyID) {
	p.wired.Load().dispatcher.OnTalkStatusChange(ctx, conn, status, isReceivedWhisper, client)
}

// RegisterMetrics registers every scripting collector with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	engine.RegisterMetrics(reg)
	events.RegisterMetrics(reg)
	command.RegisterMetrics(reg)
}
