// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package command

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/tslua/tslua/internal/engine"
)

// scriptSubcommands lists the script group subcommands in help order.
var scriptSubcommands = []string{"status", "load", "reload", "list", "exec"}

// script runs a subcommand of the script group.
func (h *Handler) script(ctx context.Context, exec *CommandExecution) error {
	if !h.engine.IsReady() {
		h.logger.Error("Lua engine is not initialized")
		writeOutput(ctx, exec, scriptGroup, "Lua engine is not initialized")
		writeOutput(ctx, exec, scriptGroup, "Scripting may be disabled - check plugin logs")
		return ErrEngineUnavailable(scriptGroup)
	}

	if len(exec.Args) == 0 {
		usage := "Usage: /" + h.keyword + " " + exec.InvokedAs + " <" + strings.Join(scriptSubcommands, "|") + ">"
		h.logger.Warn(usage)
		writeOutput(ctx, exec, scriptGroup, usage)
		return ErrInvalidArgs(scriptGroup, usage)
	}

	sub := exec.shift()

	switch name := exec.Args[0]; name {
	case "status":
		return h.scriptStatus(ctx, sub)
	case "load":
		return h.scriptLoad(ctx, sub)
	case "reload":
		return h.scriptReload(ctx, sub)
	case "list":
		return h.scriptList(ctx, sub)
	case "exec":
		return h.scriptExec(ctx, sub)
	default:
		msg := "Unknown " + exec.InvokedAs + " command: " + name
		h.logger.Warn(msg)
		writeOutput(ctx, exec, scriptGroup, msg)
		writeOutput(ctx, exec, scriptGroup, "Available: "+strings.Join(scriptSubcommands, ", "))
		return ErrUnknownSubcommand(scriptGroup, name)
	}
}

func (h *Handler) scriptStatus(ctx context.Context, exec *CommandExecution) error {
	writeOutput(ctx, exec, "lua status", "Lua Engine: Running")
	if msg := h.engine.LastError(); msg != "" {
		writeOutputf(ctx, exec, "lua status", "Last error: %s", msg)
	} else {
		writeOutput(ctx, exec, "lua status", "No errors")
	}

	hooks := h.engine.DefinedHooks()
	if len(hooks) > 0 {
		names := make([]string, len(hooks))
		for i, hk := range hooks {
			names[i] = hk.Name()
		}
		writeOutputf(ctx, exec, "lua status", "Hooks: %s", strings.Join(names, ", "))
	}
	return nil
}

func (h *Handler) scriptLoad(ctx context.Context, exec *CommandExecution) error {
	name := exec.Arg(0)
	if name == "" {
		usage := "Usage: /" + h.keyword + " " + exec.InvokedAs + " load <script_name>"
		h.logger.Warn(usage)
		writeOutput(ctx, exec, "lua load", usage)
		writeOutputf(ctx, exec, "lua load", "Example: /%s %s load auto_greeter%s", h.keyword, exec.InvokedAs, engine.ScriptExt)
		return ErrInvalidArgs("lua load", usage)
	}

	if h.engine.ScriptsRoot() == "" {
		writeOutput(ctx, exec, "lua load", "Scripts directory not available")
		return ErrEngineUnavailable("lua load")
	}

	ref := h.engine.ResolveScript(name)
	writeOutputf(ctx, exec, "lua load", "Loading Lua script: %s", ref.DisplayName)

	if err := h.engine.Load(ctx, ref.Path); err != nil {
		msg := "Failed to load " + ref.DisplayName + ": " + h.lastError()
		writeOutput(ctx, exec, "lua load", msg)
		return ScriptError(msg, err)
	}

	h.logger.Info("script loaded by command", "script", ref.DisplayName)
	writeOutputf(ctx, exec, "lua load", "Successfully loaded: %s", ref.DisplayName)
	return nil
}

func (h *Handler) scriptReload(ctx context.Context, exec *CommandExecution) error {
	writeOutput(ctx, exec, "lua reload", "Reloading init script...")

	if err := h.engine.Reload(ctx); err != nil {
		msg := "Failed to reload scripts: " + h.lastError()
		writeOutput(ctx, exec, "lua reload", msg)
		return ScriptError(msg, err)
	}

	writeOutput(ctx, exec, "lua reload", "Successfully reloaded all scripts")
	return nil
}

func (h *Handler) scriptList(ctx context.Context, exec *CommandExecution) error {
	pattern := exec.Arg(0)
	if pattern == "" {
		pattern = "*"
	}
	matcher, err := glob.Compile(pattern)
	if err != nil {
		writeOutputf(ctx, exec, "lua list", "Invalid pattern: %s", pattern)
		return oops.Code(CodeInvalidArgs).With("pattern", pattern).Wrapf(err, "compiling pattern")
	}

	root := h.engine.ScriptsRoot()
	entries, err := os.ReadDir(root)
	if err != nil {
		writeOutputf(ctx, exec, "lua list", "Cannot read scripts directory: %s", root)
		return oops.Code(CodeScriptFailed).With("root", root).Wrapf(err, "reading scripts directory")
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), engine.ScriptExt) {
			continue
		}
		if matcher.Match(name) || matcher.Match(strings.TrimSuffix(name, engine.ScriptExt)) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		writeOutput(ctx, exec, "lua list", "No scripts found")
		return nil
	}
	writeOutputf(ctx, exec, "lua list", "Scripts in %s:", root)
	for _, name := range names {
		writeOutput(ctx, exec, "lua list", "  "+name)
	}
	return nil
}

func (h *Handler) scriptExec(ctx context.Context, exec *CommandExecution) error {
	code := exec.Rest
	if strings.TrimSpace(code) == "" {
		usage := "Usage: /" + h.keyword + " " + exec.InvokedAs + " exec <code>"
		writeOutput(ctx, exec, "lua exec", usage)
		return ErrInvalidArgs("lua exec", usage)
	}

	if err := h.engine.Exec(ctx, code); err != nil {
		msg := "Execution failed: " + h.lastError()
		writeOutput(ctx, exec, "lua exec", msg)
		return ScriptError(msg, err)
	}
	writeOutput(ctx, exec, "lua exec", "OK")
	return nil
}
