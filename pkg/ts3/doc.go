// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

// Package ts3 describes the parts of the voice client's plugin ABI that the
// scripting bridge consumes: the host function table, connection and talk
// status values, and host error codes.
//
// The host owns these values. Nothing in this package talks to a real client;
// a host integration fills in a Functions table and forwards its callbacks.
package ts3
