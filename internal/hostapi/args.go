// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package hostapi

import (
	"math"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/tslua/tslua/pkg/ts3"
)

// Client ids arrive in hooks as signed 16-bit values, so both the signed and
// unsigned ranges are accepted.
const (
	minClientID = math.MinInt16
	maxClientID = math.MaxUint16
)

// checkConnectionID reads a connection id at position n. Lua numbers are
// doubles, so ids above 2^53 may be passed as decimal strings.
func checkConnectionID(L *lua.LState, n int) uint64 { //nolint:gocritic // L is the gopher-lua convention
	switch v := L.Get(n).(type) {
	case lua.LNumber:
		f := float64(v)
		if f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 {
			L.ArgError(n, "connection id must be a non-negative integer")
			return 0
		}
		return uint64(f)
	case lua.LString:
		id, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			L.ArgError(n, "connection id must be a non-negative integer")
			return 0
		}
		return id
	default:
		L.TypeError(n, lua.LTNumber)
		return 0
	}
}

// checkClientID reads a client id at position n.
func checkClientID(L *lua.LState, n int) ts3.AnyID { //nolint:gocritic // L is the gopher-lua convention
	f := float64(L.CheckNumber(n))
	if f != math.Trunc(f) || f < minClientID || f > maxClientID {
		L.ArgError(n, "client id out of range")
		return 0
	}
	return ts3.AnyID(uint16(int32(f)))
}
