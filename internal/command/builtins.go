// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package command

import (
	"context"
	"strings"
)

// scriptGroup is the canonical name of the script command group.
const scriptGroup = "lua"

func (h *Handler) registerBuiltins() {
	h.registry.Register(CommandEntry{
		Name:    "help",
		Handler: h.help,
		Usage:   "help",
		Help:    "Show this help message",
	})
	h.registry.Register(CommandEntry{
		Name:    "status",
		Handler: h.status,
		Usage:   "status",
		Help:    "Show plugin status",
	})
	h.registry.Register(CommandEntry{
		Name:    "info",
		Handler: h.info,
		Usage:   "info",
		Help:    "Show plugin information",
	})
	h.registry.Register(CommandEntry{
		Name:    scriptGroup,
		Aliases: []string{"python", "py", "script"},
		Handler: h.script,
		Usage:   "lua <status|load|reload|list|exec>",
		Help:    "Manage Lua scripts",
	})
}

func (h *Handler) help(ctx context.Context, exec *CommandExecution) error {
	k := h.keyword
	lines := []string{
		h.displayName() + " Commands:",
		"  /" + k + " help                - Show this help message",
		"  /" + k + " status              - Show plugin status",
		"  /" + k + " info                - Show plugin information",
		"  /" + k + " lua status          - Show Lua engine status",
		"  /" + k + " lua load <script>   - Load a Lua script",
		"  /" + k + " lua reload          - Reload the init script",
		"  /" + k + " lua list [pattern]  - List scripts in the scripts directory",
		"  /" + k + " lua exec <code>     - Run a line of Lua",
		"  /" + k + " <other> [args]      - Passed to the script's on_command",
	}
	for _, line := range lines {
		h.logger.Info(strings.TrimSpace(line))
		writeOutput(ctx, exec, "help", line)
	}
	return nil
}

func (h *Handler) status(ctx context.Context, exec *CommandExecution) error {
	msg := h.displayName() + " Status: Active"
	h.logger.Info(msg)
	writeOutput(ctx, exec, "status", msg)
	if h.engine.IsReady() {
		writeOutput(ctx, exec, "status", "Lua Engine: Initialized")
	} else {
		writeOutput(ctx, exec, "status", "Lua Engine: Not initialized")
	}
	return nil
}

func (h *Handler) info(ctx context.Context, exec *CommandExecution) error {
	msg := h.displayName()
	if h.about.Version != "" {
		msg += " v" + h.about.Version
	}
	if h.about.Author != "" {
		msg += " by " + h.about.Author
	}
	h.logger.Info(msg)
	writeOutput(ctx, exec, "info", msg)
	return nil
}

func (h *Handler) displayName() string {
	if h.about.Name != "" {
		return h.about.Name
	}
	return "TsLua Plugin"
}
