// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Call invokes the global function name with args.
//
// A missing or non-callable global is not an error: scripts implement only
// the functions they care about, so Call returns nil without doing anything.
func (e *Engine) Call(ctx context.Context, name string, args ...Arg) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready.Load() {
		return e.notReady("call")
	}
	if name == "" {
		e.lastErr.set("invalid function name")
		return oops.Code(CodeFunctionCall).In("engine").Errorf("invalid function name")
	}

	e.lastErr.clear()

	fn := e.globals.RawGetString(name)
	if !isCallable(e.state, fn) {
		slog.Debug("script function not found or not callable", "function", name)
		hookCalls.WithLabelValues(name, StatusAbsent).Inc()
		return nil
	}
	return e.invoke(ctx, name, fn, args)
}

// CallHook invokes hook with args, which must match the hook signature.
// An unimplemented hook returns nil.
func (e *Engine) CallHook(ctx context.Context, hook Hook, args ...Arg) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready.Load() {
		return e.notReady("call")
	}

	e.lastErr.clear()

	if err := hook.check(args); err != nil {
		e.lastErr.set("failed to build arguments: " + err.Error())
		hookCalls.WithLabelValues(hook.Name(), StatusError).Inc()
		return oops.Code(CodeArgumentMarshal).
			In("engine").
			With("function", hook.Name()).
			Wrapf(err, "failed to build arguments")
	}

	fn := e.hooks.lookup(hook)
	if fn == nil {
		slog.Debug("hook not implemented", "hook", hook.Name())
		hookCalls.WithLabelValues(hook.Name(), StatusAbsent).Inc()
		return nil
	}
	return e.invoke(ctx, hook.Name(), fn, args)
}

// HasFunction reports whether the global name is callable.
func (e *Engine) HasFunction(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready.Load() {
		return false
	}
	return isCallable(e.state, e.globals.RawGetString(name))
}

func (e *Engine) invoke(ctx context.Context, name string, fn lua.LValue, args []Arg) error {
	ctx, span := e.tracer.Start(ctx, "engine.call", trace.WithAttributes(
		attribute.String("function", name),
		attribute.Int("args", len(args)),
	))
	defer span.End()

	values := make([]lua.LValue, len(args))
	for i, a := range args {
		v, err := a.LValue()
		if err != nil {
			e.lastErr.set(fmt.Sprintf("failed to build arguments: argument %d: %s", i+1, err))
			hookCalls.WithLabelValues(name, StatusError).Inc()
			span.SetStatus(codes.Error, "argument marshal failed")
			return oops.Code(CodeArgumentMarshal).
				In("engine").
				With("function", name).
				With("position", i+1).
				Wrapf(err, "failed to build arguments")
		}
		values[i] = v
	}

	start := time.Now()
	callErr := e.protectedCall(ctx, fn, values...)
	callDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	// The call may have defined or removed hooks.
	e.hooks.refresh(e.state, e.globals)

	if callErr != nil {
		msg := faultMessage(callErr)
		e.lastErr.set(msg)
		hookCalls.WithLabelValues(name, StatusError).Inc()
		slog.Error("script function failed", "function", name, "error", msg)
		span.RecordError(callErr)
		span.SetStatus(codes.Error, msg)
		return oops.Code(CodeFunctionCall).
			In("engine").
			With("function", name).
			Wrapf(callErr, "function call failed")
	}

	hookCalls.WithLabelValues(name, StatusSuccess).Inc()
	return nil
}
