// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

// Package command implements the plugin's chat command surface.
//
// The host strips its command keyword and hands the rest of the line to
// Handler.ProcessCommand, which answers 0 when the command was handled and
// 1 when it was handled but failed.
package command

import (
	"context"
	"io"

	"github.com/tslua/tslua/internal/engine"
)

// Engine is the part of the scripting engine the command surface drives.
// *engine.Engine satisfies it.
type Engine interface {
	IsReady() bool
	LastError() string
	ScriptsRoot() string
	ResolveScript(name string) engine.ScriptRef
	Load(ctx context.Context, path string) error
	Reload(ctx context.Context) error
	Exec(ctx context.Context, code string) error
	HasFunction(name string) bool
	CallHook(ctx context.Context, hook engine.Hook, args ...engine.Arg) error
	DefinedHooks() []engine.Hook
}

// CommandHandler is the function signature for command handlers.
//
//nolint:revive // CommandHandler reads better at call sites than Handler, which is taken
type CommandHandler func(ctx context.Context, exec *CommandExecution) error

// CommandEntry is a registered top-level command.
//
//nolint:revive // matches CommandHandler
type CommandEntry struct {
	Name    string         // canonical name (e.g., "status")
	Aliases []string       // alternative names
	Handler CommandHandler // implementation
	Usage   string         // usage pattern (e.g., "lua load <script>")
	Help    string         // short description (one line)
}

// CommandExecution provides context for one command execution.
//
//nolint:revive // matches CommandHandler
type CommandExecution struct {
	ConnectionID uint64
	InvokedAs    string
	Args         []string // arguments after the command name
	Rest         string   // raw text after the command name
	Output       io.Writer

	parsed *ParsedCommand
}

// Arg returns the i-th argument, or "" when absent.
func (e *CommandExecution) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i]
}

// shift returns the execution for the subcommand named by the first argument.
func (e *CommandExecution) shift() *CommandExecution {
	next := &CommandExecution{
		ConnectionID: e.ConnectionID,
		InvokedAs:    e.InvokedAs,
		Output:       e.Output,
	}
	if e.parsed != nil {
		next.parsed = e.parsed.Shift()
		next.Args = next.parsed.Args
		next.Rest = next.parsed.Rest
	} else if len(e.Args) > 0 {
		next.Args = e.Args[1:]
	}
	return next
}
