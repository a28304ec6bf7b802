// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package command

import (
	"context"
	"io"
	"log/slog"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tslua/tslua/internal/engine"
	"github.com/tslua/tslua/pkg/errutil"
)

// Command results reported to the host.
const (
	Handled = 0
	Failed  = 1
)

// DefaultKeyword is the host command keyword the plugin registers.
const DefaultKeyword = "tslua"

var tracer = otel.Tracer("github.com/tslua/tslua/internal/command")

// About describes the plugin for the info command.
type About struct {
	Name    string
	Version string
	Author  string
}

// Handler parses command lines and runs them.
type Handler struct {
	engine   Engine
	out      io.Writer
	keyword  string
	about    About
	registry *Registry
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithKeyword sets the keyword shown in usage messages.
func WithKeyword(keyword string) Option {
	return func(h *Handler) {
		if keyword != "" {
			h.keyword = keyword
		}
	}
}

// WithAbout sets the plugin description printed by the info command.
func WithAbout(about About) Option {
	return func(h *Handler) {
		h.about = about
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler creates a handler that drives eng and writes replies to out.
func NewHandler(eng Engine, out io.Writer, opts ...Option) *Handler {
	h := &Handler{
		engine:   eng,
		out:      out,
		keyword:  DefaultKeyword,
		registry: NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.out == nil {
		h.out = io.Discard
	}
	h.registerBuiltins()
	return h
}

// Registry returns the top-level command registry.
func (h *Handler) Registry() *Registry {
	return h.registry
}

// ProcessCommand runs one command line for connection conn and returns
// Handled or Failed.
func (h *Handler) ProcessCommand(ctx context.Context, conn uint64, input string) int {
	metrics := NewMetricsRecorder()
	defer metrics.Record()

	h.logger.Debug("processing command", "command", input, "connection_id", conn)

	parsed, err := Parse(input)
	if err != nil {
		metrics.SetCommandName("invalid")
		metrics.SetStatus(StatusInvalid)
		h.logger.Warn("invalid command", "command", input, "error", err)
		writeOutput(ctx, &CommandExecution{Output: h.out}, "invalid", "Invalid command: "+errutil.Message(err))
		return Failed
	}

	ctx, span := tracer.Start(ctx, "command.execute", trace.WithAttributes(
		attribute.String("command.name", parsed.Name),
		attribute.Int64("connection.id", int64(conn)), //nolint:gosec // trace attribute only
	))
	defer span.End()

	exec := &CommandExecution{
		ConnectionID: conn,
		InvokedAs:    parsed.Name,
		Args:         parsed.Args,
		Rest:         parsed.Rest,
		Output:       h.out,
		parsed:       parsed,
	}

	entry, ok := h.registry.Get(parsed.Name)
	if !ok {
		metrics.SetCommandName("forward")
		return h.forward(ctx, exec, metrics, span)
	}

	metrics.SetCommandName(entry.Name)
	if err := entry.Handler(ctx, exec); err != nil {
		metrics.SetStatus(statusFor(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.Warn("command execution failed", "command", entry.Name, "error", err)
		return Failed
	}
	return Handled
}

// forward hands a command the plugin does not know to the script's
// on_command hook.
func (h *Handler) forward(ctx context.Context, exec *CommandExecution, metrics *MetricsRecorder, span trace.Span) int {
	if !h.engine.IsReady() || !h.engine.HasFunction(engine.HookCommand.Name()) {
		metrics.SetStatus(StatusNotFound)
		err := ErrUnknownCommand(exec.InvokedAs)
		h.logger.Warn("unknown command", "command", exec.InvokedAs)
		writeOutputf(ctx, exec, "forward", "Unknown command: %s (try /%s help)", exec.InvokedAs, h.keyword)
		span.SetStatus(codes.Error, err.Error())
		return Failed
	}

	err := h.engine.CallHook(ctx, engine.HookCommand,
		engine.Uint64(exec.ConnectionID),
		engine.String(exec.InvokedAs),
		engine.String(exec.Rest),
	)
	if err != nil {
		metrics.SetStatus(StatusError)
		errutil.LogError(h.logger, "on_command failed", err)
		writeOutputf(ctx, exec, "forward", "Command failed: %s", h.lastError())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Failed
	}
	metrics.SetStatus(StatusForwarded)
	return Handled
}

func (h *Handler) lastError() string {
	if msg := h.engine.LastError(); msg != "" {
		return msg
	}
	return "Unknown error"
}

// statusFor maps an error to a metrics status label.
func statusFor(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return StatusError
	}
	switch oopsErr.Code() {
	case CodeUnknownSubcommand:
		return StatusNotFound
	case CodeInvalidArgs:
		return StatusInvalid
	default:
		return StatusError
	}
}
