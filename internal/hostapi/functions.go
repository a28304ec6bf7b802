// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

// Package hostapi exposes host client functions to Lua scripts as the
// ts3api module.
//
// L is the idiomatic variable name for lua.LState in the gopher-lua
// community.
//
//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
package hostapi

import (
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/tslua/tslua/pkg/ts3"
)

// ModuleName is the name scripts pass to require().
const ModuleName = "ts3api"

// DefaultAudioIdent is the preprocessor value read by get_audio_level when
// no identifier is given.
const DefaultAudioIdent = "decibel_last_period"

// Functions provides host functions to Lua scripts.
type Functions struct {
	host   *ts3.Functions
	logger *slog.Logger
}

// Option configures Functions.
type Option func(*Functions)

// WithLogger sets the logger that receives script log() output.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Functions) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates host functions backed by the host function table. A nil table
// is allowed; every function then returns its neutral value.
func New(host *ts3.Functions, opts ...Option) *Functions {
	f := &Functions{
		host:   host,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.host == nil {
		f.host = &ts3.Functions{}
	}
	return f
}

// Name returns the require() name of the module.
func (f *Functions) Name() string { return ModuleName }

// Loader builds the module table. It is registered in package.preload.
func (f *Functions) Loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"print_message":        f.printMessage,
		"get_client_id":        f.getClientID,
		"get_client_name":      f.getClientName,
		"send_channel_message": f.sendChannelMessage,
		"send_server_message":  f.sendServerMessage,
		"log":                  f.log,
		"get_audio_level":      f.getAudioLevel,
		"start_recording":      f.startRecording,
		"stop_recording":       f.stopRecording,
	})
	L.Push(mod)
	return 1
}

// Shutdown is called when the engine stops.
func (f *Functions) Shutdown() {
	f.logger.Debug("host api module shut down", "module", ModuleName)
}

func (f *Functions) printMessage(L *lua.LState) int {
	conn := checkConnectionID(L, 1)
	message := L.CheckString(2)
	targetMode := L.OptInt(3, 0)

	if !f.host.Print(message) {
		f.logger.Debug("print_message: host print unavailable", "connection_id", conn, "target_mode", targetMode)
	}
	return 0
}

func (f *Functions) getClientID(L *lua.LState) int {
	conn := checkConnectionID(L, 1)

	if f.host.GetClientID == nil {
		L.Push(lua.LNil)
		return 1
	}
	id, err := f.host.GetClientID(conn)
	if err != nil {
		f.logger.Debug("get_client_id failed", "connection_id", conn, "error", err)
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(id))
	return 1
}

func (f *Functions) getClientName(L *lua.LState) int {
	conn := checkConnectionID(L, 1)
	client := checkClientID(L, 2)

	if f.host.GetClientVariableAsString == nil {
		L.Push(lua.LNil)
		return 1
	}
	name, err := f.host.GetClientVariableAsString(conn, client, ts3.ClientNickname)
	if err != nil {
		f.logger.Debug("get_client_name failed", "connection_id", conn, "client_id", client, "error", err)
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(name))
	return 1
}

func (f *Functions) sendChannelMessage(L *lua.LState) int {
	conn := checkConnectionID(L, 1)
	message := L.CheckString(2)

	if f.host.RequestSendChannelTextMsg == nil {
		f.logger.Error("send_channel_message: host function not available")
		return 0
	}
	// Channel 0 targets the client's current channel.
	if err := f.host.RequestSendChannelTextMsg(conn, message, 0); err != nil {
		f.logger.Warn("failed to send channel message", "connection_id", conn, "error", err)
		return 0
	}
	f.logger.Debug("channel message sent", "connection_id", conn)
	return 0
}

func (f *Functions) sendServerMessage(L *lua.LState) int {
	conn := checkConnectionID(L, 1)
	message := L.CheckString(2)

	if f.host.RequestSendServerTextMsg == nil {
		return 0
	}
	if err := f.host.RequestSendServerTextMsg(conn, message); err != nil {
		f.logger.Warn("failed to send server message", "connection_id", conn, "error", err)
	}
	return 0
}

func (f *Functions) log(L *lua.LState) int {
	message := L.CheckString(1)
	level := L.OptInt(2, 0)

	logger := f.logger.With("source", "script")
	switch level {
	case 0:
		logger.Info(message)
	case 1:
		logger.Warn(message)
	case 2:
		logger.Error(message)
	default:
		logger.Debug(message)
	}
	return 0
}

func (f *Functions) getAudioLevel(L *lua.LState) int {
	conn := checkConnectionID(L, 1)
	ident := L.OptString(2, DefaultAudioIdent)

	if f.host.GetPreProcessorInfoValueFloat == nil {
		L.Push(lua.LNil)
		return 1
	}
	v, err := f.host.GetPreProcessorInfoValueFloat(conn, ident)
	if err != nil {
		f.logger.Debug("get_audio_level failed", "connection_id", conn, "ident", ident, "error", err)
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (f *Functions) startRecording(L *lua.LState) int {
	conn := checkConnectionID(L, 1)
	L.Push(lua.LBool(f.recording(conn, "start", f.host.StartVoiceRecording)))
	return 1
}

func (f *Functions) stopRecording(L *lua.LState) int {
	conn := checkConnectionID(L, 1)
	L.Push(lua.LBool(f.recording(conn, "stop", f.host.StopVoiceRecording)))
	return 1
}

func (f *Functions) recording(conn uint64, action string, fn func(uint64) error) bool {
	if fn == nil {
		return false
	}
	if err := fn(conn); err != nil {
		f.logger.Warn("failed to "+action+" voice recording", "connection_id", conn, "error", err)
		return false
	}
	f.logger.Info("voice recording "+action, "connection_id", conn)
	return true
}
