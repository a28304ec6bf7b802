// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tslua/tslua/internal/engine"
	"github.com/tslua/tslua/internal/hostapi"
)

const defaultCheckTimeout = 5 * time.Second

// NewCheckCmd creates the check subcommand.
func NewCheckCmd(_ *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check <script>...",
		Short: "Load scripts in a fresh engine and report faults",
		Long: `Load each script into its own engine with no client attached and
report whether it ran. Host functions that need a client return nil.
Hooks defined by a script are listed after it loads.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, script := range args {
				if !checkScript(cmd, script, timeout) {
					failed++
				}
			}
			if failed > 0 {
				return oops.Code("CHECK_FAILED").Errorf("%d of %d scripts failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultCheckTimeout, "upper bound for running one script (0 = none)")

	return cmd
}

func checkScript(cmd *cobra.Command, script string, timeout time.Duration) bool {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	path, err := filepath.Abs(script)
	if err != nil {
		fmt.Fprintf(out, "FAIL %s: %v\n", script, err)
		return false
	}

	eng := engine.New(
		engine.WithModule(hostapi.New(nil)),
		engine.WithScriptsDir(filepath.Dir(path)),
		engine.WithCallTimeout(timeout),
	)
	if err := eng.Init(ctx, filepath.Dir(path)); err != nil {
		fmt.Fprintf(out, "FAIL %s: %s\n", script, eng.LastError())
		return false
	}
	defer eng.Shutdown(context.WithoutCancel(ctx))

	if err := eng.Load(ctx, path); err != nil {
		fmt.Fprintf(out, "FAIL %s: %s\n", script, eng.LastError())
		return false
	}

	hooks := eng.DefinedHooks()
	names := make([]string, 0, len(hooks))
	for _, h := range hooks {
		names = append(names, h.Name())
	}
	if len(names) == 0 {
		fmt.Fprintf(out, "ok   %s\n", script)
	} else {
		fmt.Fprintf(out, "ok   %s (hooks: %s)\n", script, strings.Join(names, ", "))
	}
	return true
}
