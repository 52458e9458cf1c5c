package interfaces

// Logger defines the interface for logging
// Minimal interface with only essential formatted logging methods
type Logger interface {
	// Core logging methods
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
	Debugf(format string, args ...interface{})
}

// EventEmitter defines the interface for emitting recorder lifecycle events.
// The hosting application can implement this to bridge replay/record activity
// into its own observability layer. All methods are called from the goroutine
// that issued the completion call.
type EventEmitter interface {
	// EmitReplayServed fires when a stored interaction is served instead of a
	// live call. index is the interaction's storage index, consumed/remaining
	// describe the replay session's cursor position after serving.
	EmitReplayServed(index int, consumed int, remaining int)

	// EmitLiveCallStart fires just before the live provider is invoked.
	EmitLiveCallStart()

	// EmitLiveCallSuccess fires after a live call returned successfully.
	// savedIndex is the storage index the interaction was recorded at, or 0
	// when recording is disabled or persistence failed.
	EmitLiveCallSuccess(savedIndex int)

	// EmitLiveCallError fires when the live provider returned an error.
	EmitLiveCallError(err error)

	// EmitRecordError fires when persisting an interaction failed. The live
	// response is still returned to the caller; this is the secondary signal.
	EmitRecordError(err error)
}
