package llmrecorder

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Invoker is the swappable indirection point between an application and its
// live completion call. The application routes calls through the Invoker;
// enabling replay mode installs a Recorder around the held live call, and
// disabling it restores direct, unrecorded calls. This replaces the
// runtime-patching approach with explicit dependency injection.
type Invoker struct {
	mu   sync.Mutex
	live LiveCallFunc
	rec  *Recorder
}

// NewInvoker creates an Invoker around a live call function.
func NewInvoker(live LiveCallFunc) *Invoker {
	return &Invoker{live: live}
}

// SetLiveCall replaces the live call the invoker delegates to. An active
// recorder keeps the function it was built with until replay mode is
// re-enabled.
func (v *Invoker) SetLiveCall(live LiveCallFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.live = live
}

// EnableReplayMode wraps the held live call in a Recorder. Calling it while
// already enabled fully supersedes the previous configuration: a fresh
// cursor and storage binding, no state carried over.
func (v *Invoker) EnableReplayMode(replayDir string, opts ...Option) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.live == nil {
		return fmt.Errorf("no live call function configured")
	}
	rec, err := New(v.live, replayDir, opts...)
	if err != nil {
		return err
	}
	v.rec = rec
	return nil
}

// DisableReplayMode restores direct live calls: no replay, no recording, no
// cursor consultation. Safe to call repeatedly or without prior activation.
func (v *Invoker) DisableReplayMode() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rec = nil
}

// Enabled reports whether a recorder is currently installed.
func (v *Invoker) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rec != nil
}

// Recorder returns the active recorder, or nil when replay mode is off.
func (v *Invoker) Recorder() *Recorder {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rec
}

// Completion routes a call through the active recorder, or straight to the
// live call when replay mode is off.
func (v *Invoker) Completion(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	v.mu.Lock()
	rec, live := v.rec, v.live
	v.mu.Unlock()

	if rec != nil {
		return rec.Completion(ctx, request)
	}
	if live == nil {
		return nil, fmt.Errorf("no live call function configured")
	}
	return live(ctx, request)
}

// defaultInvoker backs the package-level convenience surface. The package
// functions are thin forwarders; all state lives in the Invoker.
var defaultInvoker = &Invoker{}

// SetLiveCall configures the live call used by the package-level surface.
func SetLiveCall(live LiveCallFunc) {
	defaultInvoker.SetLiveCall(live)
}

// EnableReplayMode enables replay mode on the package-level invoker.
func EnableReplayMode(replayDir string, opts ...Option) error {
	return defaultInvoker.EnableReplayMode(replayDir, opts...)
}

// DisableReplayMode disables replay mode on the package-level invoker.
// Idempotent; a no-op when replay mode was never enabled.
func DisableReplayMode() {
	defaultInvoker.DisableReplayMode()
}

// Completion routes a call through the package-level invoker.
func Completion(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	return defaultInvoker.Completion(ctx, request)
}
