// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package engine

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ScriptRef names a script to load.
type ScriptRef struct {
	// Path is the file to open.
	Path string
	// DisplayName is the requested name with the script extension ensured.
	DisplayName string
}

// ResolveScript builds a reference for name. The script extension is
// appended when missing and relative names are resolved against root.
func ResolveScript(root, name string) ScriptRef {
	display := name
	if !strings.EqualFold(filepath.Ext(name), ScriptExt) {
		display = name + ScriptExt
	}
	path := display
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return ScriptRef{Path: path, DisplayName: display}
}

// ResolveScript resolves name against this engine's scripts root.
func (e *Engine) ResolveScript(name string) ScriptRef {
	return ResolveScript(e.ScriptsRoot(), name)
}

// Load executes the script at path in the shared global namespace.
//
// Every script writes into the same globals table, so loading a second
// script replaces any hook functions it redefines and keeps the rest.
func (e *Engine) Load(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx, path)
}

// Reload runs the init script from the scripts root again.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready.Load() {
		return e.notReady("reload")
	}

	slog.Info("reloading init script", "script", e.initScript)
	if err := e.load(ctx, filepath.Join(e.ScriptsRoot(), e.initScript)); err != nil {
		slog.Warn("failed to reload init script", "script", e.initScript, "error", e.lastErr.get())
		return err
	}
	slog.Info("reloaded init script", "script", e.initScript)
	return nil
}

// Exec runs a chunk of code in the shared global namespace.
func (e *Engine) Exec(ctx context.Context, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready.Load() {
		return e.notReady("exec")
	}
	if strings.TrimSpace(code) == "" {
		e.lastErr.set("empty code string")
		return oops.Code(CodeScriptExecution).In("engine").Errorf("empty code string")
	}

	ctx, span := e.tracer.Start(ctx, "engine.exec")
	defer span.End()

	slog.Debug("executing code", "code", code)
	e.lastErr.clear()

	fn, err := e.state.LoadString(code)
	if err != nil {
		return e.scriptFault(span, "<exec>", err)
	}
	// Code that runs before a fault still writes the shared globals.
	defer e.hooks.refresh(e.state, e.globals)
	if err := e.protectedCall(ctx, fn); err != nil {
		return e.scriptFault(span, "<exec>", err)
	}
	return nil
}

func (e *Engine) load(ctx context.Context, path string) (err error) {
	if !e.ready.Load() {
		scriptLoads.WithLabelValues(StatusNotReady).Inc()
		return e.notReady("load")
	}

	ctx, span := e.tracer.Start(ctx, "engine.load", trace.WithAttributes(attribute.String("script.path", path)))
	defer span.End()
	defer func() {
		recordScriptLoad(err)
	}()

	slog.Info("loading script", "path", path)
	e.lastErr.clear()

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		e.lastErr.set("failed to open script file: " + err.Error())
		slog.Error("failed to open script", "path", path, "error", err)
		span.SetStatus(codes.Error, "open failed")
		return oops.Code(CodeScriptNotFound).
			In("engine").
			With("path", path).
			Wrapf(err, "failed to open script file")
	}
	defer func() { _ = f.Close() }()

	fn, err := e.state.Load(f, path)
	if err != nil {
		return e.scriptFault(span, path, err)
	}
	callErr := e.protectedCall(ctx, fn)
	// Definitions made before a fault stay in the shared globals.
	e.hooks.refresh(e.state, e.globals)
	if callErr != nil {
		return e.scriptFault(span, path, callErr)
	}

	slog.Info("script loaded", "path", path, "hooks", len(e.hooks.defined()))
	return nil
}

// scriptFault records a compile or runtime fault raised by script code.
func (e *Engine) scriptFault(span trace.Span, source string, cause error) error {
	msg := faultMessage(cause)
	e.lastErr.set(msg)
	slog.Error("script error", "source", source, "error", msg)
	span.RecordError(cause)
	span.SetStatus(codes.Error, msg)
	return oops.Code(CodeScriptExecution).
		In("engine").
		With("source", source).
		Wrapf(cause, "script execution failed")
}

// protectedCall runs fn inside a protected call, bounded by the configured
// call timeout. Panics escaping Go functions are turned into errors.
func (e *Engine) protectedCall(ctx context.Context, fn lua.LValue, args ...lua.LValue) (err error) {
	L := e.state

	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}
	if ctx.Done() != nil {
		L.SetContext(ctx)
		defer L.RemoveContext()
	}

	top := L.GetTop()
	defer func() {
		if r := recover(); r != nil {
			L.SetTop(top)
			err = oops.Errorf("lua panic: %v", r)
		}
	}()

	return L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
}
