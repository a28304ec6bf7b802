// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package engine

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Hook identifies a script callback with a reserved name and fixed shape.
type Hook int

// Known hooks.
const (
	HookConnect Hook = iota + 1
	HookDisconnect
	HookClientMove
	HookTextMessage
	HookTalkStatusChange
	HookCommand
)

type hookSpec struct {
	name      string
	signature []Kind
}

var hookSpecs = map[Hook]hookSpec{
	HookConnect:          {"on_connect", []Kind{KindUint64}},
	HookDisconnect:       {"on_disconnect", []Kind{KindUint64}},
	HookClientMove:       {"on_client_move", []Kind{KindUint64, KindInt16, KindUint64, KindUint64}},
	HookTextMessage:      {"on_text_message", []Kind{KindUint64, KindInt16, KindInt16, KindInt16, KindString, KindString, KindString}},
	HookTalkStatusChange: {"on_talk_status_change", []Kind{KindUint64, KindInt32, KindInt16}},
	HookCommand:          {"on_command", []Kind{KindUint64, KindString, KindString}},
}

// Hooks returns every known hook in declaration order.
func Hooks() []Hook {
	return []Hook{HookConnect, HookDisconnect, HookClientMove, HookTextMessage, HookTalkStatusChange, HookCommand}
}

// ParseHook maps a global function name to its hook.
func ParseHook(name string) (Hook, bool) {
	for _, h := range Hooks() {
		if hookSpecs[h].name == name {
			return h, true
		}
	}
	return 0, false
}

// Name returns the global function name scripts define.
func (h Hook) Name() string {
	if spec, ok := hookSpecs[h]; ok {
		return spec.name
	}
	return fmt.Sprintf("hook(%d)", int(h))
}

// String implements fmt.Stringer.
func (h Hook) String() string { return h.Name() }

// Signature returns the positional argument kinds, in order.
func (h Hook) Signature() []Kind {
	spec, ok := hookSpecs[h]
	if !ok {
		return nil
	}
	out := make([]Kind, len(spec.signature))
	copy(out, spec.signature)
	return out
}

// check verifies args match the hook signature.
func (h Hook) check(args []Arg) error {
	spec, ok := hookSpecs[h]
	if !ok {
		return fmt.Errorf("unknown hook %d", int(h))
	}
	if len(args) != len(spec.signature) {
		return fmt.Errorf("%s takes %d arguments, got %d", spec.name, len(spec.signature), len(args))
	}
	for i, want := range spec.signature {
		if got := args[i].Kind(); got != want {
			return fmt.Errorf("%s argument %d: want %s, got %s", spec.name, i+1, want, got)
		}
	}
	return nil
}

// hookRegistry caches the callable bound to each hook name. It is rebuilt
// from the globals table after anything that may have changed it.
type hookRegistry struct {
	fns map[Hook]lua.LValue
}

func newHookRegistry() *hookRegistry {
	return &hookRegistry{fns: make(map[Hook]lua.LValue)}
}

func (r *hookRegistry) refresh(L *lua.LState, globals *lua.LTable) { //nolint:gocritic // L is the gopher-lua convention
	for _, h := range Hooks() {
		v := globals.RawGetString(h.Name())
		if isCallable(L, v) {
			r.fns[h] = v
		} else {
			delete(r.fns, h)
		}
	}
}

func (r *hookRegistry) lookup(h Hook) lua.LValue {
	return r.fns[h]
}

func (r *hookRegistry) defined() []Hook {
	var out []Hook
	for _, h := range Hooks() {
		if _, ok := r.fns[h]; ok {
			out = append(out, h)
		}
	}
	return out
}

func (r *hookRegistry) reset() {
	clear(r.fns)
}

// isCallable reports whether v can be invoked: a function, or a table or
// userdata with a __call metamethod.
func isCallable(L *lua.LState, v lua.LValue) bool { //nolint:gocritic // L is the gopher-lua convention
	switch v.(type) {
	case *lua.LFunction:
		return true
	case *lua.LTable, *lua.LUserData:
		return L.GetMetaField(v, "__call") != lua.LNil
	default:
		return false
	}
}
