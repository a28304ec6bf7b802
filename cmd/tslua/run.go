// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tslua/tslua/internal/command"
	"github.com/tslua/tslua/internal/config"
	"github.com/tslua/tslua/internal/plugin"
)

// runConfig holds flags for the run command that are not config keys.
type runConfig struct {
	connection uint64
}

// NewRunCmd creates the run subcommand.
func NewRunCmd(opts *rootOptions) *cobra.Command {
	rc := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Host the plugin on the console",
		Long: `Start the plugin with a console standing in for the voice client.

Each input line is a plugin command ("help", "lua load greet", ...). An
optional leading "/tslua" is ignored. Lines starting with "event" simulate
client events:

` + eventUsage + `

"quit" or end of input stops the plugin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runConsole(ctx, opts, rc, cmd)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().Uint64Var(&rc.connection, "connection", 1, "connection id used for commands")

	return cmd
}

func runConsole(ctx context.Context, opts *rootOptions, rc *runConfig, cmd *cobra.Command) error {
	con := newConsole(cmd.OutOrStdout())

	p := plugin.New(con.functions(),
		plugin.WithFlags(cmd.Flags()),
		plugin.WithVersion(version),
		plugin.WithLogOutput(cmd.ErrOrStderr()),
	)
	if err := p.Init(ctx, opts.paths()); err != nil {
		return err
	}
	defer p.Shutdown(context.WithoutCancel(ctx))

	prefix := "/" + p.CommandKeyword()
	lines := readLines(ctx, cmd.InOrStdin())

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if !handleLine(ctx, p, con, rc.connection, prefix, line) {
				return nil
			}
		}
	}
}

// handleLine processes one console line. It returns false when the console
// should stop.
func handleLine(ctx context.Context, p *plugin.Plugin, con *console, conn uint64, prefix, line string) bool {
	line = strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(line, prefix); ok && (rest == "" || rest[0] == ' ') {
		line = strings.TrimSpace(rest)
	}

	switch line {
	case "":
		return true
	case "quit", "exit":
		return false
	}

	parsed, err := command.Parse(line)
	if err == nil && parsed.Name == "event" {
		if err := dispatchEvent(ctx, p, parsed); err != nil {
			logEventError(con, err)
		}
		return true
	}

	// Failures are already reported on the console by the command handler.
	_ = p.ProcessCommand(ctx, conn, line)
	return true
}

// readLines streams lines from r until EOF or ctx ends.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
