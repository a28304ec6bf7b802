// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/tslua/tslua/internal/command"
	"github.com/tslua/tslua/pkg/ts3"
)

const (
	consoleClientID   ts3.AnyID = 1
	consoleClientName           = "console"
)

// console stands in for the voice client: it prints what scripts send and
// answers queries with fixed values.
type console struct {
	mu        sync.Mutex
	out       io.Writer
	recording map[uint64]bool
}

func newConsole(out io.Writer) *console {
	return &console{out: out, recording: make(map[uint64]bool)}
}

func (c *console) println(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	//nolint:errcheck // console output is best effort
	fmt.Fprintf(c.out, format+"\n", args...)
}

// functions returns the host function table backed by the console.
func (c *console) functions() *ts3.Functions {
	return &ts3.Functions{
		PrintMessageToCurrentTab: func(message string) {
			c.println("%s", message)
		},
		GetClientID: func(uint64) (ts3.AnyID, error) {
			return consoleClientID, nil
		},
		GetClientVariableAsString: func(_ uint64, id ts3.AnyID, property ts3.ClientProperty) (string, error) {
			if property != ts3.ClientNickname {
				return "", ts3.ErrorCode(0x0200)
			}
			if id == consoleClientID {
				return consoleClientName, nil
			}
			return fmt.Sprintf("client%d", id), nil
		},
		RequestSendChannelTextMsg: func(conn uint64, message string, channel uint64) error {
			c.println("[%d channel %d] %s", conn, channel, message)
			return nil
		},
		RequestSendServerTextMsg: func(conn uint64, message string) error {
			c.println("[%d server] %s", conn, message)
			return nil
		},
		GetPreProcessorInfoValueFloat: func(uint64, string) (float32, error) {
			return 0, nil
		},
		StartVoiceRecording: func(conn uint64) error {
			return c.setRecording(conn, true)
		},
		StopVoiceRecording: func(conn uint64) error {
			return c.setRecording(conn, false)
		},
	}
}

func (c *console) setRecording(conn uint64, on bool) error {
	c.mu.Lock()
	if c.recording[conn] == on {
		c.mu.Unlock()
		return ts3.ErrorCode(0x0001)
	}
	c.recording[conn] = on
	c.mu.Unlock()

	state := "stopped"
	if on {
		state = "started"
	}
	c.println("[%d] recording %s", conn, state)
	return nil
}

// eventSink receives simulated host events.
type eventSink interface {
	OnConnectStatusChanged(ctx context.Context, conn uint64, status ts3.ConnectStatus, code ts3.ErrorCode)
	OnClientMove(ctx context.Context, conn uint64, client ts3.AnyID, oldChannel, newChannel uint64, visibility int, moveMessage string)
	OnTextMessage(ctx context.Context, conn uint64, targetMode, toID, fromID ts3.AnyID, fromName, fromUniqueID, message string)
	OnTalkStatusChange(ctx context.Context, conn uint64, status int, isReceivedWhisper bool, client ts3.AnyID)
}

const eventUsage = `event connect <conn> <status> [error]
event move <conn> <client> <old-channel> <new-channel> [visibility] [message]
event text <conn> <mode> <to> <from> <name> <message>
event talk <conn> <status> <whisper> <client>`

// dispatchEvent parses an "event ..." line and delivers it to sink.
func dispatchEvent(ctx context.Context, sink eventSink, parsed *command.ParsedCommand) error {
	a := eventArgs{args: parsed.Args}
	if len(a.args) == 0 {
		return oops.Code("INVALID_EVENT").Errorf("missing event kind")
	}
	kind := a.args[0]
	a.args = a.args[1:]

	switch kind {
	case "connect":
		conn, status, code := a.num(0), a.integer(1), a.numOpt(2)
		if err := a.check(2); err != nil {
			return err
		}
		sink.OnConnectStatusChanged(ctx, conn, ts3.ConnectStatus(status), ts3.ErrorCode(code))
	case "move":
		conn, client, oldCh, newCh := a.num(0), a.clientID(1), a.num(2), a.num(3)
		visibility := int(a.numOpt(4))
		if err := a.check(4); err != nil {
			return err
		}
		sink.OnClientMove(ctx, conn, client, oldCh, newCh, visibility, a.text(5))
	case "text":
		conn, mode, to, from := a.num(0), a.clientID(1), a.clientID(2), a.clientID(3)
		if err := a.check(5); err != nil {
			return err
		}
		name := a.args[4]
		sink.OnTextMessage(ctx, conn, mode, to, from, name, name, a.text(5))
	case "talk":
		conn, status, whisper, client := a.num(0), a.integer(1), a.flag(2), a.clientID(3)
		if err := a.check(4); err != nil {
			return err
		}
		sink.OnTalkStatusChange(ctx, conn, status, whisper, client)
	default:
		return oops.Code("INVALID_EVENT").With("kind", kind).Errorf("unknown event %q", kind)
	}
	return nil
}

// eventArgs converts positional event arguments, remembering the first
// conversion error.
type eventArgs struct {
	args []string
	err  error
}

func (a *eventArgs) fail(i int, err error) {
	if a.err == nil {
		a.err = oops.Code("INVALID_EVENT").With("position", i).Wrapf(err, "argument %d", i+1)
	}
}

func (a *eventArgs) check(required int) error {
	if len(a.args) < required {
		return oops.Code("INVALID_EVENT").Errorf("expected at least %d arguments, got %d", required, len(a.args))
	}
	return a.err
}

func (a *eventArgs) get(i int) (string, bool) {
	if i >= len(a.args) {
		return "", false
	}
	return a.args[i], true
}

func (a *eventArgs) num(i int) uint64 {
	s, ok := a.get(i)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		a.fail(i, err)
	}
	return v
}

func (a *eventArgs) numOpt(i int) uint64 {
	if _, ok := a.get(i); !ok {
		return 0
	}
	return a.num(i)
}

func (a *eventArgs) integer(i int) int {
	s, ok := a.get(i)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		a.fail(i, err)
	}
	return v
}

func (a *eventArgs) clientID(i int) ts3.AnyID {
	s, ok := a.get(i)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		a.fail(i, err)
	}
	return ts3.AnyID(v)
}

func (a *eventArgs) flag(i int) bool {
	s, ok := a.get(i)
	if !ok {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		a.fail(i, err)
	}
	return v
}

// text joins the arguments from i on into one message.
func (a *eventArgs) text(i int) string {
	if i >= len(a.args) {
		return ""
	}
	return strings.Join(a.args[i:], " ")
}

// logEventError reports a malformed event line to the console.
func logEventError(c *console, err error) {
	slog.Debug("invalid event", "error", err)
	c.println("Invalid event: %s", err.Error())
	c.println("%s", eventUsage)
}
