// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package ts3

import "fmt"

// AnyID is the host's 16-bit client identifier.
type AnyID uint16

// ErrorCode is a host result code. ErrorOK means success.
type ErrorCode uint32

// ErrorOK is the host's success code.
const ErrorOK ErrorCode = 0

// Error implements error so host functions can return codes directly.
func (c ErrorCode) Error() string {
	return fmt.Sprintf("host error %d", uint32(c))
}

// ConnectStatus is the connection state reported by connect status callbacks.
type ConnectStatus int

// Connection states, numbered as the host numbers them.
const (
	StatusDisconnected           ConnectStatus = 0
	StatusConnecting             ConnectStatus = 1
	StatusConnected              ConnectStatus = 2
	StatusConnectionEstablishing ConnectStatus = 3
	StatusConnectionEstablished  ConnectStatus = 4
)

// String returns a readable name for the status.
func (s ConnectStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusConnectionEstablishing:
		return "establishing"
	case StatusConnectionEstablished:
		return "established"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Talk status values delivered with talk status callbacks.
const (
	TalkStatusNotTalking           = 0
	TalkStatusTalking              = 1
	TalkStatusTalkingWhileDisabled = 2
)

// Text message target modes.
const (
	TargetClient  AnyID = 1
	TargetChannel AnyID = 2
	TargetServer  AnyID = 3
)

// ClientProperty selects a client variable for string queries.
type ClientProperty int

// ClientNickname is the client variable holding the display name.
const ClientNickname ClientProperty = 1

// LogLevel is the host's log severity.
type LogLevel int

// Host log levels.
const (
	LogLevelCritical LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelDebug
	LogLevelInfo
	LogLevelDevel
)
