// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package ts3

// Functions is the function table the host hands to the plugin at load time.
//
// Any entry may be nil when the running client does not provide it. Callers
// must treat a nil entry as "facility unavailable", not as an error.
type Functions struct {
	// PrintMessageToCurrentTab writes a line to the active chat tab.
	PrintMessageToCurrentTab func(message string)

	// GetClientID returns the local client's id on a connection.
	GetClientID func(connectionID uint64) (AnyID, error)

	// GetClientVariableAsString reads a string property of a client.
	GetClientVariableAsString func(connectionID uint64, clientID AnyID, property ClientProperty) (string, error)

	// RequestSendChannelTextMsg sends a message to a channel (0 = current).
	RequestSendChannelTextMsg func(connectionID uint64, message string, channelID uint64) error

	// RequestSendServerTextMsg sends a message to the whole server.
	RequestSendServerTextMsg func(connectionID uint64, message string) error

	// GetPreProcessorInfoValueFloat reads a capture preprocessor value.
	GetPreProcessorInfoValueFloat func(connectionID uint64, ident string) (float32, error)

	// StartVoiceRecording starts recording on a connection.
	StartVoiceRecording func(connectionID uint64) error

	// StopVoiceRecording stops recording on a connection.
	StopVoiceRecording func(connectionID uint64) error
}

// Print writes message to the current tab if the host supports it.
// It reports whether the host accepted the message.
func (f *Functions) Print(message string) bool {
	if f == nil || f.PrintMessageToCurrentTab == nil {
		return false
	}
	f.PrintMessageToCurrentTab(message)
	return true
}
