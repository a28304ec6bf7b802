// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package events

import (
	"github.com/tslua/tslua/internal/engine"
	"github.com/tslua/tslua/pkg/ts3"
)

// Event is a host callback the dispatcher knows how to forward.
// The set is closed; only types in this package implement it.
type Event interface {
	// Kind is a short name used in logs and metrics.
	Kind() string
	// hookCall maps the event to a hook and its arguments. ok is false when
	// the event triggers no hook.
	hookCall() (hook engine.Hook, args []engine.Arg, ok bool)
}

// ConnectStatusChanged is delivered when a connection changes state.
type ConnectStatusChanged struct {
	ConnectionID uint64
	Status       ts3.ConnectStatus
	ErrorCode    ts3.ErrorCode
}

// Kind implements Event.
func (ConnectStatusChanged) Kind() string { return "connect_status" }

// A connection counts as connected only when status 2 arrives without an
// error. Status 0 is a disconnect whatever the error. Transitional states
// trigger nothing.
func (e ConnectStatusChanged) hookCall() (engine.Hook, []engine.Arg, bool) {
	switch {
	case e.Status == ts3.StatusConnected && e.ErrorCode == ts3.ErrorOK:
		return engine.HookConnect, []engine.Arg{engine.Uint64(e.ConnectionID)}, true
	case e.Status == ts3.StatusDisconnected:
		return engine.HookDisconnect, []engine.Arg{engine.Uint64(e.ConnectionID)}, true
	default:
		return 0, nil, false
	}
}

// ClientMoved is delivered when a client changes channel.
type ClientMoved struct {
	ConnectionID uint64
	ClientID     ts3.AnyID
	OldChannelID uint64
	NewChannelID uint64
	Visibility   int
	MoveMessage  string
}

// Kind implements Event.
func (ClientMoved) Kind() string { return "client_move" }

func (e ClientMoved) hookCall() (engine.Hook, []engine.Arg, bool) {
	return engine.HookClientMove, []engine.Arg{
		engine.Uint64(e.ConnectionID),
		clientArg(e.ClientID),
		engine.Uint64(e.OldChannelID),
		engine.Uint64(e.NewChannelID),
	}, true
}

// TextMessageReceived is delivered for every chat message.
type TextMessageReceived struct {
	ConnectionID uint64
	TargetMode   ts3.AnyID
	ToID         ts3.AnyID
	FromID       ts3.AnyID
	FromName     string
	FromUniqueID string
	Message      string
}

// Kind implements Event.
func (TextMessageReceived) Kind() string { return "text_message" }

func (e TextMessageReceived) hookCall() (engine.Hook, []engine.Arg, bool) {
	return engine.HookTextMessage, []engine.Arg{
		engine.Uint64(e.ConnectionID),
		clientArg(e.TargetMode),
		clientArg(e.ToID),
		clientArg(e.FromID),
		engine.String(e.FromName),
		engine.String(e.FromUniqueID),
		engine.String(e.Message),
	}, true
}

// TalkStatusChanged is delivered when a client starts or stops talking.
type TalkStatusChanged struct {
	ConnectionID      uint64
	Status            int
	IsReceivedWhisper bool
	ClientID          ts3.AnyID
}

// Kind implements Event.
func (TalkStatusChanged) Kind() string { return "talk_status" }

func (e TalkStatusChanged) hookCall() (engine.Hook, []engine.Arg, bool) {
	return engine.HookTalkStatusChange, []engine.Arg{
		engine.Uint64(e.ConnectionID),
		engine.Int32(int32(e.Status)), //nolint:gosec // host status values are small
		clientArg(e.ClientID),
	}, true
}

// clientArg passes a 16-bit host id as the signed value scripts receive.
func clientArg(id ts3.AnyID) engine.Arg {
	return engine.Int16(int16(id)) //nolint:gosec // reinterpreting the host's 16-bit id
}
