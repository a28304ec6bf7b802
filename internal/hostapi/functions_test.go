// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package hostapi_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/tslua/tslua/internal/hostapi"
	"github.com/tslua/tslua/pkg/ts3"
)

// fakeHost records calls made through the host function table.
type fakeHost struct {
	printed      []string
	channelMsgs  []string
	serverMsgs   []string
	nameQueries  []ts3.AnyID
	audioIdents  []string
	recordingOps []string
	fail         bool
}

func (h *fakeHost) functions() *ts3.Functions {
	err := func() error {
		if h.fail {
			return ts3.ErrorCode(1)
		}
		return nil
	}
	return &ts3.Functions{
		PrintMessageToCurrentTab: func(msg string) { h.printed = append(h.printed, msg) },
		GetClientID: func(uint64) (ts3.AnyID, error) {
			return 42, err()
		},
		GetClientVariableAsString: func(_ uint64, id ts3.AnyID, _ ts3.ClientProperty) (string, error) {
			h.nameQueries = append(h.nameQueries, id)
			return "Alice", err()
		},
		RequestSendChannelTextMsg: func(_ uint64, msg string, _ uint64) error {
			h.channelMsgs = append(h.channelMsgs, msg)
			return err()
		},
		RequestSendServerTextMsg: func(_ uint64, msg string) error {
			h.serverMsgs = append(h.serverMsgs, msg)
			return err()
		},
		GetPreProcessorInfoValueFloat: func(_ uint64, ident string) (float32, error) {
			h.audioIdents = append(h.audioIdents, ident)
			return -12.5, err()
		},
		StartVoiceRecording: func(uint64) error {
			h.recordingOps = append(h.recordingOps, "start")
			return err()
		},
		StopVoiceRecording: func(uint64) error {
			h.recordingOps = append(h.recordingOps, "stop")
			return err()
		},
	}
}

// newState returns a Lua state with the module preloaded.
func newState(t *testing.T, f *hostapi.Functions) *lua.LState {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	L.PreloadModule(f.Name(), f.Loader)
	require.NoError(t, L.DoString(`ts = require("ts3api")`))
	return L
}

func TestFunctions_Name(t *testing.T) {
	assert.Equal(t, "ts3api", hostapi.New(nil).Name())
}

func TestFunctions_PrintMessage(t *testing.T) {
	host := &fakeHost{}
	L := newState(t, hostapi.New(host.functions()))

	require.NoError(t, L.DoString(`ts.print_message(1, "hello")`))
	require.NoError(t, L.DoString(`ts.print_message(1, "with mode", 2)`))

	assert.Equal(t, []string{"hello", "with mode"}, host.printed)
}

func TestFunctions_GetClientID(t *testing.T) {
	host := &fakeHost{}
	L := newState(t, hostapi.New(host.functions()))

	require.NoError(t, L.DoString(`id = ts.get_client_id(1)`))
	assert.Equal(t, lua.LNumber(42), L.GetGlobal("id"))

	host.fail = true
	require.NoError(t, L.DoString(`id = ts.get_client_id(1)`))
	assert.Equal(t, lua.LNil, L.GetGlobal("id"))
}

func TestFunctions_GetClientName(t *testing.T) {
	host := &fakeHost{}
	L := newState(t, hostapi.New(host.functions()))

	require.NoError(t, L.DoString(`name = ts.get_client_name(1, 7)`))
	assert.Equal(t, lua.LString("Alice"), L.GetGlobal("name"))

	// Negative ids are the signed form delivered to hooks.
	require.NoError(t, L.DoString(`ts.get_client_name(1, -1)`))
	assert.Equal(t, []ts3.AnyID{7, 65535}, host.nameQueries)

	host.fail = true
	require.NoError(t, L.DoString(`name = ts.get_client_name(1, 7)`))
	assert.Equal(t, lua.LNil, L.GetGlobal("name"))
}

func TestFunctions_SendMessages(t *testing.T) {
	host := &fakeHost{}
	L := newState(t, hostapi.New(host.functions()))

	require.NoError(t, L.DoString(`
ts.send_channel_message(1, "to channel")
ts.send_server_message(1, "to server")
`))

	assert.Equal(t, []string{"to channel"}, host.channelMsgs)
	assert.Equal(t, []string{"to server"}, host.serverMsgs)

	host.fail = true
	require.NoError(t, L.DoString(`ts.send_channel_message(1, "fails quietly")`))
}

func TestFunctions_GetAudioLevel(t *testing.T) {
	host := &fakeHost{}
	L := newState(t, hostapi.New(host.functions()))

	require.NoError(t, L.DoString(`
a = ts.get_audio_level(1)
b = ts.get_audio_level(1, "voiceactivation_level")
`))

	assert.Equal(t, lua.LNumber(-12.5), L.GetGlobal("a"))
	assert.Equal(t, []string{hostapi.DefaultAudioIdent, "voiceactivation_level"}, host.audioIdents)
}

func TestFunctions_Recording(t *testing.T) {
	host := &fakeHost{}
	L := newState(t, hostapi.New(host.functions()))

	require.NoError(t, L.DoString(`started = ts.start_recording(1); stopped = ts.stop_recording(1)`))
	assert.Equal(t, lua.LTrue, L.GetGlobal("started"))
	assert.Equal(t, lua.LTrue, L.GetGlobal("stopped"))

	host.fail = true
	require.NoError(t, L.DoString(`started = ts.start_recording(1)`))
	assert.Equal(t, lua.LFalse, L.GetGlobal("started"))
	assert.Equal(t, []string{"start", "stop", "start"}, host.recordingOps)
}

func TestFunctions_MissingHostFunctions(t *testing.T) {
	L := newState(t, hostapi.New(nil))

	require.NoError(t, L.DoString(`
ts.print_message(1, "nowhere")
ts.send_channel_message(1, "nowhere")
ts.send_server_message(1, "nowhere")
id = ts.get_client_id(1)
name = ts.get_client_name(1, 2)
level = ts.get_audio_level(1)
rec = ts.start_recording(1)
`))

	assert.Equal(t, lua.LNil, L.GetGlobal("id"))
	assert.Equal(t, lua.LNil, L.GetGlobal("name"))
	assert.Equal(t, lua.LNil, L.GetGlobal("level"))
	assert.Equal(t, lua.LFalse, L.GetGlobal("rec"))
}

func TestFunctions_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	L := newState(t, hostapi.New(nil, hostapi.WithLogger(logger)))

	tests := []struct {
		code  string
		level string
	}{
		{`ts.log("default level")`, "level=INFO"},
		{`ts.log("info", 0)`, "level=INFO"},
		{`ts.log("warn", 1)`, "level=WARN"},
		{`ts.log("error", 2)`, "level=ERROR"},
		{`ts.log("other", 9)`, "level=DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			buf.Reset()
			require.NoError(t, L.DoString(tt.code))
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), "source=script")
		})
	}
}

func TestFunctions_ArgumentValidation(t *testing.T) {
	L := newState(t, hostapi.New((&fakeHost{}).functions()))

	tests := []struct {
		name string
		code string
	}{
		{"missing connection id", `ts.get_client_id()`},
		{"negative connection id", `ts.get_client_id(-1)`},
		{"fractional connection id", `ts.get_client_id(1.5)`},
		{"non-numeric string id", `ts.get_client_id("abc")`},
		{"table connection id", `ts.get_client_id({})`},
		{"missing message", `ts.print_message(1)`},
		{"client id too large", `ts.get_client_name(1, 70000)`},
		{"client id too small", `ts.get_client_name(1, -40000)`},
		{"log without message", `ts.log()`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := L.DoString(tt.code)
			require.Error(t, err)
		})
	}
}

func TestFunctions_ArgumentErrorsAreCatchable(t *testing.T) {
	L := newState(t, hostapi.New(nil))

	require.NoError(t, L.DoString(`ok = pcall(ts.get_client_id, -5)`))
	assert.Equal(t, lua.LFalse, L.GetGlobal("ok"))
}

func TestFunctions_LargeConnectionIDAsString(t *testing.T) {
	var got uint64
	host := &ts3.Functions{
		GetClientID: func(conn uint64) (ts3.AnyID, error) {
			got = conn
			return 0, nil
		},
	}
	L := newState(t, hostapi.New(host))

	require.NoError(t, L.DoString(`ts.get_client_id("18446744073709551615")`))
	assert.Equal(t, uint64(18446744073709551615), got)
}

func TestFunctions_Shutdown(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hostapi.New(nil, hostapi.WithLogger(logger)).Shutdown()

	assert.Contains(t, buf.String(), "module=ts3api")
}
