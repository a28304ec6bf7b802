// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package engine

import (
	"context"
	"fmt"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
)

// Module is a Go-implemented Lua module made available to scripts through
// require(). Modules are registered before any script code runs.
type Module interface {
	// Name is the require() name.
	Name() string
	// Loader builds the module table and pushes it.
	Loader(L *lua.LState) int
	// Shutdown releases module resources when the engine stops.
	Shutdown()
}

// library is a Lua standard library opened on every new state.
type library struct {
	name string
	fn   lua.LGFunction
}

// standardLibraries returns the full gopher-lua standard library. Scripts are
// trusted and see the host filesystem, so nothing is withheld. The package
// library comes first because module registration depends on it.
func standardLibraries() []library {
	return []library{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.IoLibName, lua.OpenIo},
		{lua.OsLibName, lua.OpenOs},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.DebugLibName, lua.OpenDebug},
		{lua.ChannelLibName, lua.OpenChannel},
		{lua.CoroutineLibName, lua.OpenCoroutine},
	}
}

// StateFactory creates Lua states with the standard libraries opened and
// host modules preloaded.
type StateFactory struct {
	libraries []library
}

// NewStateFactory creates a new state factory.
func NewStateFactory() *StateFactory {
	return &StateFactory{
		libraries: standardLibraries(),
	}
}

// NewState creates a Lua state, opens the libraries and registers modules
// into package.preload. The returned state has not run any script code.
//
// The ctx parameter is reserved for cancellation of library setup.
func (f *StateFactory) NewState(_ context.Context, modules []Module) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("failed to open library %q: %w", lib.name, err)
		}
	}

	if len(modules) > 0 {
		pkg, ok := L.GetGlobal("package").(*lua.LTable)
		if !ok {
			L.Close()
			return nil, fmt.Errorf("package library not available")
		}
		if _, ok := pkg.RawGetString("preload").(*lua.LTable); !ok {
			L.Close()
			return nil, fmt.Errorf("package.preload is not a table")
		}
		for _, m := range modules {
			L.PreloadModule(m.Name(), m.Loader)
		}
	}

	return L, nil
}

// appendSearchPath adds dir/?.lua to package.path so scripts can require
// their siblings.
func appendSearchPath(L *lua.LState, dir string) error { //nolint:gocritic // L is the gopher-lua convention
	pkg, ok := L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return fmt.Errorf("package library not available")
	}
	entry := filepath.Join(dir, "?"+ScriptExt)
	if current := lua.LVAsString(pkg.RawGetString("path")); current != "" {
		entry = current + ";" + entry
	}
	pkg.RawSetString("path", lua.LString(entry))
	return nil
}
