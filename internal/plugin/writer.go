// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package plugin

import (
	"bytes"
	"sync"

	"github.com/samber/oops"

	"github.com/tslua/tslua/pkg/ts3"
)

// TabWriter writes complete lines to the host's current chat tab.
// Partial lines are buffered until a newline arrives.
type TabWriter struct {
	mu    sync.Mutex
	funcs *ts3.Functions
	buf   bytes.Buffer
}

// NewTabWriter returns a writer printing through funcs.
func NewTabWriter(funcs *ts3.Functions) *TabWriter {
	return &TabWriter{funcs: funcs}
}

// Write implements io.Writer. It fails when the host cannot print; the
// returned count then covers only the bytes of p already printed.
func (w *TabWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	carried := w.buf.Len()
	printed := 0
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line; keep it for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			return len(p), nil
		}
		if !w.funcs.Print(line[:len(line)-1]) {
			w.buf.Reset()
			return max(printed-carried, 0), oops.In("plugin").Errorf("host cannot print messages")
		}
		printed += len(line)
	}
}
