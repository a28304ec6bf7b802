// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

// Package events forwards host client callbacks to script hooks.
//
// Dispatch never fails the caller. The host delivers these callbacks from
// its event pump, so script faults are logged and counted, and the engine
// keeps the message in its last-error slot.
package events

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/tslua/tslua/internal/engine"
	"github.com/tslua/tslua/pkg/errutil"
	"github.com/tslua/tslua/pkg/ts3"
)

// Invoker calls script hooks. *engine.Engine satisfies it.
type Invoker interface {
	IsReady() bool
	CallHook(ctx context.Context, hook engine.Hook, args ...engine.Arg) error
}

// Dispatcher maps host events to hook calls.
type Dispatcher struct {
	invoker Invoker
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher that calls hooks through invoker.
func NewDispatcher(invoker Invoker, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		invoker: invoker,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch forwards ev to its hook, if any.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	kind := ev.Kind()

	if d.invoker == nil || !d.invoker.IsReady() {
		dispatchTotal.WithLabelValues(kind, StatusNotReady).Inc()
		return
	}

	hook, args, ok := ev.hookCall()
	if !ok {
		dispatchTotal.WithLabelValues(kind, StatusSkipped).Inc()
		return
	}

	dispatchID := ulid.Make().String()
	logger := d.logger.With("dispatch_id", dispatchID, "event", kind, "hook", hook.Name())
	logger.Debug("dispatching event")

	if err := d.invoker.CallHook(ctx, hook, args...); err != nil {
		dispatchTotal.WithLabelValues(kind, StatusError).Inc()
		errutil.LogError(logger, "event dispatch failed", err)
		return
	}
	dispatchTotal.WithLabelValues(kind, StatusDispatched).Inc()
}

// OnConnectStatusChanged forwards a connection state change.
func (d *Dispatcher) OnConnectStatusChanged(ctx context.Context, conn uint64, status ts3.ConnectStatus, code ts3.ErrorCode) {
	d.Dispatch(ctx, ConnectStatusChanged{ConnectionID: conn, Status: status, ErrorCode: code})
}

// OnClientMove forwards a client channel move.
func (d *Dispatcher) OnClientMove(ctx context.Context, conn uint64, client ts3.AnyID, oldChannel, newChannel uint64, visibility int, moveMessage string) {
	d.Dispatch(ctx, ClientMoved{
		ConnectionID: conn,
		ClientID:     client,
		OldChannelID: oldChannel,
		NewChannelID: newChannel,
		Visibility:   visibility,
		MoveMessage:  moveMessage,
	})
}

// OnTextMessage forwards a received chat message. The host return value for
// this callback is always 0, so nothing is returned.
func (d *Dispatcher) OnTextMessage(ctx context.Context, conn uint64, targetMode, toID, fromID ts3.AnyID, fromName, fromUniqueID, message string) {
	d.Dispatch(ctx, TextMessageReceived{
		ConnectionID: conn,
		TargetMode:   targetMode,
		ToID:         toID,
		FromID:       fromID,
		FromName:     fromName,
		FromUniqueID: fromUniqueID,
		Message:      message,
	})
}

// OnTalkStatusChange forwards a talk status change.
func (d *Dispatcher) OnTalkStatusChange(ctx context.Context, conn uint64, status int, isReceivedWhisper bool, client ts3.AnyID) {
	d.Dispatch(ctx, TalkStatusChanged{
		ConnectionID:      conn,
		Status:            status,
		IsReceivedWhisper: isReceivedWhisper,
		ClientID:          client,
	})
}
