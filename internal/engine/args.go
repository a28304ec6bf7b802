// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package engine

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Kind is the declared type of a positional argument.
type Kind uint8

// Argument kinds understood by the invoker.
const (
	KindInvalid Kind = iota
	KindUint64
	KindInt16
	KindInt32
	KindFloat64
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUint64:
		return "u64"
	case KindInt16:
		return "i16"
	case KindInt32:
		return "i32"
	case KindFloat64:
		return "f64"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Arg is one typed positional argument. The zero Arg is invalid.
type Arg struct {
	kind Kind
	u    uint64
	i    int64
	f    float64
	s    string
}

// Uint64 builds an unsigned 64-bit argument.
func Uint64(v uint64) Arg { return Arg{kind: KindUint64, u: v} }

// Int16 builds a narrow signed argument.
func Int16(v int16) Arg { return Arg{kind: KindInt16, i: int64(v)} }

// Int32 builds a signed 32-bit argument.
func Int32(v int32) Arg { return Arg{kind: KindInt32, i: int64(v)} }

// Float64 builds a floating point argument.
func Float64(v float64) Arg { return Arg{kind: KindFloat64, f: v} }

// String builds a text argument.
func String(v string) Arg { return Arg{kind: KindString, s: v} }

// Kind returns the declared kind.
func (a Arg) Kind() Kind { return a.kind }

// LValue converts the argument to its Lua representation. Lua 5.1 numbers are
// doubles, so integers above 2^53 lose precision.
func (a Arg) LValue() (lua.LValue, error) {
	switch a.kind {
	case KindUint64:
		return lua.LNumber(float64(a.u)), nil
	case KindInt16, KindInt32:
		return lua.LNumber(float64(a.i)), nil
	case KindFloat64:
		return lua.LNumber(a.f), nil
	case KindString:
		return lua.LString(a.s), nil
	default:
		return nil, fmt.Errorf("unsupported argument kind %s", a.kind)
	}
}

// String renders the argument for logs.
func (a Arg) String() string {
	switch a.kind {
	case KindUint64:
		return fmt.Sprintf("%d", a.u)
	case KindInt16, KindInt32:
		return fmt.Sprintf("%d", a.i)
	case KindFloat64:
		return fmt.Sprintf("%g", a.f)
	case KindString:
		return fmt.Sprintf("%q", a.s)
	default:
		return "<invalid>"
	}
}
