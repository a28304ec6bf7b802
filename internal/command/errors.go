// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package command

import (
	"github.com/samber/oops"
)

// Error codes for command failures.
const (
	CodeEmptyInput        = "EMPTY_INPUT"
	CodeInvalidSyntax     = "INVALID_SYNTAX"
	CodeUnknownCommand    = "UNKNOWN_COMMAND"
	CodeUnknownSubcommand = "UNKNOWN_SUBCOMMAND"
	CodeInvalidArgs       = "INVALID_ARGS"
	CodeEngineUnavailable = "ENGINE_UNAVAILABLE"
	CodeScriptFailed      = "SCRIPT_FAILED"
)

// ErrUnknownCommand creates an error for an unknown command.
func ErrUnknownCommand(cmd string) error {
	return oops.Code(CodeUnknownCommand).
		With("command", cmd).
		Errorf("unknown command: %s", cmd)
}

// ErrUnknownSubcommand creates an error for an unknown group subcommand.
func ErrUnknownSubcommand(group, sub string) error {
	return oops.Code(CodeUnknownSubcommand).
		With("command", group).
		With("subcommand", sub).
		Errorf("unknown %s command: %s", group, sub)
}

// ErrInvalidArgs creates an error for missing or malformed arguments.
func ErrInvalidArgs(cmd, usage string) error {
	return oops.Code(CodeInvalidArgs).
		With("command", cmd).
		With("usage", usage).
		Errorf("invalid arguments")
}

// ErrEngineUnavailable creates an error for commands that need a running engine.
func ErrEngineUnavailable(cmd string) error {
	return oops.Code(CodeEngineUnavailable).
		With("command", cmd).
		Errorf("scripting engine is not initialized")
}

// ScriptError wraps an engine failure with the message shown to the user.
func ScriptError(message string, cause error) error {
	return oops.Code(CodeScriptFailed).
		Public(message).
		Wrap(cause)
}
