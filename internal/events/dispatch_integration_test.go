// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

//go:build integration

package events_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tslua/tslua/internal/engine"
	"github.com/tslua/tslua/internal/events"
	"github.com/tslua/tslua/pkg/ts3"
)

var _ = Describe("Dispatching host events into scripts", func() {
	var (
		ctx        context.Context
		eng        *engine.Engine
		dispatcher *events.Dispatcher
		scripts    string
	)

	writeScript := func(name, content string) string {
		path := filepath.Join(scripts, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	global := func(code string) {
		Expect(eng.Exec(ctx, code)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		root := GinkgoT().TempDir()
		scripts = filepath.Join(root, "scripts")
		Expect(os.MkdirAll(scripts, 0o750)).To(Succeed())

		eng = engine.New()
		Expect(eng.Init(ctx, root)).To(Succeed())
		dispatcher = events.NewDispatcher(eng)
	})

	AfterEach(func() {
		eng.Shutdown(ctx)
	})

	Describe("connection status", func() {
		BeforeEach(func() {
			Expect(eng.Load(ctx, writeScript("conn.lua", `
connects, disconnects = 0, 0
function on_connect(conn) connects = connects + 1; last_conn = conn end
function on_disconnect(conn) disconnects = disconnects + 1 end
`))).To(Succeed())
		})

		It("calls on_connect once for a clean connect", func() {
			dispatcher.OnConnectStatusChanged(ctx, 5, ts3.StatusConnected, ts3.ErrorOK)
			global(`assert(connects == 1 and last_conn == 5)`)
		})

		It("ignores a connect that carries an error", func() {
			dispatcher.OnConnectStatusChanged(ctx, 5, ts3.StatusConnected, ts3.ErrorCode(1))
			global(`assert(connects == 0)`)
		})

		It("calls on_disconnect regardless of the error code", func() {
			dispatcher.OnConnectStatusChanged(ctx, 5, ts3.StatusDisconnected, ts3.ErrorCode(1))
			global(`assert(disconnects == 1)`)
		})

		It("ignores transitional states", func() {
			for _, s := range []ts3.ConnectStatus{ts3.StatusConnecting, ts3.StatusConnectionEstablishing, ts3.StatusConnectionEstablished} {
				dispatcher.OnConnectStatusChanged(ctx, 5, s, ts3.ErrorOK)
			}
			global(`assert(connects == 0 and disconnects == 0)`)
		})
	})

	Describe("text messages", func() {
		It("passes the seven fields in order", func() {
			Expect(eng.Load(ctx, writeScript("text.lua", `
function on_text_message(conn, mode, to, from, name, uid, msg)
  got = table.concat({conn, mode, to, from, name, uid, msg}, "|")
end
`))).To(Succeed())

			dispatcher.OnTextMessage(ctx, 1, ts3.TargetServer, 0, 12, "Carol", "abc=", "hi there")

			global(`assert(got == "1|3|0|12|Carol|abc=|hi there", got)`)
		})

		It("keeps the handler after loading an unrelated script", func() {
			Expect(eng.Load(ctx, writeScript("text.lua", `
count = 0
function on_text_message(...) count = count + 1 end
`))).To(Succeed())
			Expect(eng.Load(ctx, writeScript("other.lua", `function on_connect(conn) end`))).To(Succeed())

			dispatcher.OnTextMessage(ctx, 1, 1, 1, 1, "a", "b", "c")

			global(`assert(count == 1)`)
		})
	})

	Describe("faulting hooks", func() {
		It("records the fault and keeps dispatching", func() {
			Expect(eng.Load(ctx, writeScript("faulty.lua", `
calls = 0
function on_client_move(conn, client, old, new)
  calls = calls + 1
  error("move failed")
end
`))).To(Succeed())

			dispatcher.OnClientMove(ctx, 1, 2, 3, 4, 0, "")
			Expect(eng.LastError()).To(ContainSubstring("move failed"))

			dispatcher.OnClientMove(ctx, 1, 2, 3, 4, 0, "")
			global(`assert(calls == 2)`)
			Expect(eng.IsReady()).To(BeTrue())
		})
	})

	Describe("absent hooks", func() {
		It("is a no-op for every event kind", func() {
			dispatcher.OnConnectStatusChanged(ctx, 1, ts3.StatusConnected, ts3.ErrorOK)
			dispatcher.OnConnectStatusChanged(ctx, 1, ts3.StatusDisconnected, ts3.ErrorOK)
			dispatcher.OnClientMove(ctx, 1, 2, 3, 4, 0, "")
			dispatcher.OnTextMessage(ctx, 1, 1, 1, 1, "a", "b", "c")
			dispatcher.OnTalkStatusChange(ctx, 1, ts3.TalkStatusTalking, false, 2)

			Expect(eng.LastError()).To(BeEmpty())
		})
	})
})
