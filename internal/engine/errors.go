// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package engine

import (
	"errors"
	"sync/atomic"
	"unicode/utf8"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// Error codes for engine failures.
const (
	CodeEngineNotReady     = "ENGINE_NOT_READY"
	CodeAlreadyInitialized = "ALREADY_INITIALIZED"
	CodeInitFailure        = "INTERPRETER_INIT_FAILURE"
	CodeScriptNotFound     = "SCRIPT_NOT_FOUND"
	CodeScriptExecution    = "SCRIPT_EXECUTION_FAULT"
	CodeFunctionCall       = "FUNCTION_CALL_FAULT"
	CodeArgumentMarshal    = "ARGUMENT_MARSHAL_FAILURE"
)

// MaxErrorLength bounds the last-error slot in bytes.
const MaxErrorLength = 511

const msgNotReady = "scripting engine not initialized"

// errNotReady builds the error returned by every operation that needs a
// running interpreter.
func errNotReady(operation string) error {
	return oops.Code(CodeEngineNotReady).
		In("engine").
		With("operation", operation).
		Errorf(msgNotReady)
}

// errorState is the single last-error slot. Writers hold the engine lock;
// readers never block.
type errorState struct {
	msg atomic.Pointer[string]
}

func (s *errorState) set(msg string) {
	msg = truncate(msg, MaxErrorLength)
	s.msg.Store(&msg)
}

func (s *errorState) clear() {
	s.msg.Store(nil)
}

func (s *errorState) get() string {
	if p := s.msg.Load(); p != nil {
		return *p
	}
	return ""
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// faultMessage extracts the display text from a Lua fault. The stack trace
// and error type are dropped.
func faultMessage(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil && apiErr.Object != lua.LNil {
		return apiErr.Object.String()
	}
	return err.Error()
}
