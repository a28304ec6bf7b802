// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package command

import (
	"context"
	"fmt"
	"log/slog"
)

// logOutputError logs a write failure at warn level and increments the
// command output failure metric. The command itself does not fail.
func logOutputError(ctx context.Context, cmd string, bytesWritten int, err error) {
	slog.WarnContext(ctx, "failed to write command output",
		"command", cmd,
		"bytes_written", bytesWritten,
		"error", err,
	)
	RecordOutputFailure(cmd)
}

// writeOutput writes one line to the command output and logs any errors.
func writeOutput(ctx context.Context, exec *CommandExecution, cmd, msg string) {
	if n, err := fmt.Fprintln(exec.Output, msg); err != nil {
		logOutputError(ctx, cmd, n, err)
	}
}

// writeOutputf writes a formatted line to the command output and logs any errors.
func writeOutputf(ctx context.Context, exec *CommandExecution, cmd, format string, args ...any) {
	writeOutput(ctx, exec, cmd, fmt.Sprintf(format, args...))
}
