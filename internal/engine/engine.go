// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

// Package engine embeds a Lua interpreter and exposes its lifecycle, script
// loading and function invocation to the host.
//
// One Engine owns one interpreter. Every operation that touches the
// interpreter runs under a single mutex; faults raised by script code are
// captured into the last-error slot and returned as oops errors, never
// propagated as panics.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ScriptExt is the recognized script file extension.
const ScriptExt = ".lua"

// DefaultInitScript is the script loaded at startup and by Reload.
const DefaultInitScript = "tslua_init" + ScriptExt

// scriptsDirName is the scripts directory below the plugin root.
const scriptsDirName = "scripts"

// Phase is the lifecycle state of an Engine.
type Phase int32

// Lifecycle phases.
const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseReady
	PhaseShuttingDown
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	case PhaseShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Engine owns an embedded Lua interpreter.
type Engine struct {
	mu sync.Mutex

	factory     *StateFactory
	modules     []Module
	initScript  string
	scriptsDir  string
	callTimeout time.Duration
	tracer      trace.Tracer

	state   *lua.LState
	globals *lua.LTable
	hooks   *hookRegistry

	scriptsRoot atomic.Pointer[string]
	phase       atomic.Int32
	ready       atomic.Bool
	lastErr     errorState
}

// Option configures an Engine.
type Option func(*Engine)

// WithModule registers a host module loaded through require().
func WithModule(m Module) Option {
	return func(e *Engine) {
		e.modules = append(e.modules, m)
	}
}

// WithCallTimeout bounds every script execution. Zero means no bound: a
// script that never returns blocks its caller.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.callTimeout = d
	}
}

// WithInitScript overrides the script name used by Reload.
func WithInitScript(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.initScript = name
		}
	}
}

// WithScriptsDir overrides the scripts root, which otherwise is the
// "scripts" directory below the plugin root.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// WithStateFactory replaces the factory used to create the interpreter.
func WithStateFactory(f *StateFactory) Option {
	return func(e *Engine) {
		if f != nil {
			e.factory = f
		}
	}
}

// New creates an engine. The interpreter is not started until Init.
func New(opts ...Option) *Engine {
	e := &Engine{
		factory:    NewStateFactory(),
		initScript: DefaultInitScript,
		tracer:     otel.Tracer("github.com/tslua/tslua/internal/engine"),
		hooks:      newHookRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init starts the interpreter. Calling Init on a ready engine logs a warning
// and returns nil without touching the interpreter.
//
// Host modules are registered before the interpreter runs any code, the
// scripts root is appended to package.path, and the globals table is kept
// as the shared namespace for every script. On failure nothing is retained.
func (e *Engine) Init(ctx context.Context, pluginRoot string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ready.Load() {
		slog.Warn("scripting engine already initialized", "code", CodeAlreadyInitialized)
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "engine.init")
	defer span.End()

	e.setPhase(PhaseInitializing)
	e.lastErr.clear()

	root := e.scriptsDir
	if root == "" {
		root = filepath.Join(pluginRoot, scriptsDirName)
	}
	span.SetAttributes(attribute.String("scripts.root", root))
	slog.Info("initializing scripting engine", "plugin_root", pluginRoot, "scripts_root", root)

	L, err := e.factory.NewState(ctx, e.modules)
	if err != nil {
		return e.failInit(err, "failed to start interpreter")
	}

	if err := appendSearchPath(L, root); err != nil {
		L.Close()
		return e.failInit(err, "failed to set module search path")
	}

	globals, ok := L.Get(lua.GlobalsIndex).(*lua.LTable)
	if !ok {
		L.Close()
		return e.failInit(oops.Errorf("globals table unavailable"), "failed to acquire global namespace")
	}

	e.state = L
	e.globals = globals
	e.hooks.reset()
	e.hooks.refresh(L, globals)
	e.scriptsRoot.Store(&root)
	e.ready.Store(true)
	e.setPhase(PhaseReady)
	engineReady.Set(1)

	slog.Info("scripting engine initialized", "scripts_root", root)
	return nil
}

func (e *Engine) failInit(cause error, msg string) error {
	e.state = nil
	e.globals = nil
	e.ready.Store(false)
	e.setPhase(PhaseUninitialized)
	e.lastErr.set(msg + ": " + cause.Error())
	slog.Error("scripting engine initialization failed", "error", cause, "step", msg)
	return oops.Code(CodeInitFailure).In("engine").Wrapf(cause, "%s", msg)
}

// Shutdown stops the interpreter. It is a no-op when the engine is not
// ready, so a second call does nothing.
func (e *Engine) Shutdown(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready.Load() {
		return
	}

	_, span := e.tracer.Start(ctx, "engine.shutdown")
	defer span.End()

	slog.Info("shutting down scripting engine")
	e.setPhase(PhaseShuttingDown)
	e.ready.Store(false)

	for _, m := range e.modules {
		m.Shutdown()
	}

	e.globals = nil
	e.hooks.reset()
	e.state.Close()
	e.state = nil

	e.setPhase(PhaseUninitialized)
	engineReady.Set(0)
	slog.Info("scripting engine shut down")
}

// IsReady reports whether the interpreter is running.
func (e *Engine) IsReady() bool {
	return e.ready.Load()
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

func (e *Engine) setPhase(p Phase) {
	e.phase.Store(int32(p))
}

// ScriptsRoot returns the scripts directory chosen by the last successful
// Init, or "" if the engine never started.
func (e *Engine) ScriptsRoot() string {
	if p := e.scriptsRoot.Load(); p != nil {
		return *p
	}
	return ""
}

// LastError returns the most recent failure message, or "" if the last
// fallible operation succeeded.
func (e *Engine) LastError() string {
	return e.lastErr.get()
}

// DefinedHooks returns the hooks the loaded scripts currently implement.
func (e *Engine) DefinedHooks() []Hook {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hooks.defined()
}

// notReady records and returns the not-ready failure.
func (e *Engine) notReady(operation string) error {
	e.lastErr.set(msgNotReady)
	return errNotReady(operation)
}
