// Package llmrecorder records LLM request/response pairs to durable storage
// and replays them on later runs, so chained multi-step pipelines can be
// frozen, inspected, hand-edited and re-run without live provider calls.
//
// Each completion call is routed through a Recorder wrapping the live call:
// while recorded interactions remain (up to the configured replay count) the
// stored response is returned verbatim and the provider is never contacted;
// once replay is exhausted, calls go live and - when recording is enabled -
// each live exchange is appended to the save directory as one JSON document
// per call.
package llmrecorder

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/manishiitg/llm-recorder-go/internal/store"
)

// Recorder is the interception engine: it decides, per call, whether to
// serve a recorded response or forward to the live provider, and persists
// live exchanges. A Recorder carries one replay session; calls are expected
// one at a time, though the cursor and store each guard their own critical
// section.
type Recorder struct {
	live    LiveCallFunc
	cfg     config
	cursor  *store.Cursor
	replays *store.Store
	saves   *store.Store
}

// New builds a Recorder around the given live call. Replay records are
// loaded from replayDir before the save directory is prepared for writing,
// so configurations where the two directories coincide still see every
// pre-existing record. When the directories coincide, existing records stay
// on disk: new live calls append after the highest existing index and
// records beyond the replay count are simply orphaned, never overwritten.
func New(live LiveCallFunc, replayDir string, opts ...Option) (*Recorder, error) {
	if live == nil {
		return nil, fmt.Errorf("live call function is required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.replayDir = filepath.Clean(replayDir)
	if cfg.saveDir == "" {
		cfg.saveDir = cfg.replayDir
	} else {
		cfg.saveDir = filepath.Clean(cfg.saveDir)
	}

	replays := store.New(cfg.fs, cfg.replayDir, cfg.logger)
	available, err := replays.Load()
	if err != nil {
		return nil, err
	}
	if cfg.replayCount > len(available) {
		// Tolerated and clamped, not a failure.
		cfg.logger.Infof("replay count %d exceeds the %d interactions in %s; replaying all of them",
			cfg.replayCount, len(available), cfg.replayDir)
	}
	cursor := store.NewCursor(available, cfg.replayCount)

	saves := store.New(cfg.fs, cfg.saveDir, cfg.logger)
	if cfg.recording {
		// Replay data is already in memory at this point. A distinct save
		// directory starts fresh; a shared one keeps its records so replay
		// input survives and new appends continue past the existing maximum.
		if cfg.saveDir != cfg.replayDir {
			if err := saves.Clear(); err != nil {
				return nil, err
			}
		} else if err := saves.Ensure(); err != nil {
			return nil, err
		}
	}

	return &Recorder{
		live:    live,
		cfg:     cfg,
		cursor:  cursor,
		replays: replays,
		saves:   saves,
	}, nil
}

// Completion serves the next recorded response if one remains, otherwise
// forwards to the live provider. Live responses are persisted before
// returning when recording is enabled; replayed responses are never
// re-recorded. Provider errors pass through unchanged.
func (r *Recorder) Completion(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	if !r.cfg.recording && r.cursor.Exhausted() {
		// Fully inactive: no persistence, no cursor interaction.
		return r.live(ctx, request)
	}

	if it, ok := r.cursor.Next(); ok {
		r.cfg.logger.Infof("replaying interaction %d of %d", r.cursor.Consumed(), r.cursor.Limit())
		if r.cfg.emitter != nil {
			r.cfg.emitter.EmitReplayServed(it.Index, r.cursor.Consumed(), r.cursor.Remaining())
		}
		if it.Failed() {
			return nil, &ReplayedProviderError{Message: it.CallError}
		}
		return it.Response, nil
	}

	r.cfg.logger.Infof("making live LLM call")
	if r.cfg.emitter != nil {
		r.cfg.emitter.EmitLiveCallStart()
	}
	response, err := r.live(ctx, request)
	if err != nil {
		if r.cfg.emitter != nil {
			r.cfg.emitter.EmitLiveCallError(err)
		}
		if r.cfg.recording && r.cfg.persistErrors {
			r.record(store.Interaction{
				RecordedAt: r.cfg.now().UTC(),
				Request:    request,
				CallError:  err.Error(),
			})
		}
		return nil, err
	}

	savedIndex := 0
	if r.cfg.recording {
		savedIndex = r.record(store.Interaction{
			RecordedAt: r.cfg.now().UTC(),
			Request:    request,
			Response:   response,
		})
	}
	if r.cfg.emitter != nil {
		r.cfg.emitter.EmitLiveCallSuccess(savedIndex)
	}
	return response, nil
}

// record appends an interaction to the save directory. A persistence failure
// is surfaced through the logger and event emitter but does not fail the
// call: losing the recording is better than losing the caller's answer.
func (r *Recorder) record(it store.Interaction) int {
	index, err := r.saves.Append(it)
	if err != nil {
		r.cfg.logger.Errorf("failed to record interaction: %v", err)
		if r.cfg.emitter != nil {
			r.cfg.emitter.EmitRecordError(err)
		}
		return 0
	}
	return index
}

// ReplayRemaining returns how many stored interactions may still be served.
func (r *Recorder) ReplayRemaining() int {
	return r.cursor.Remaining()
}

// ReplayConsumed returns how many stored interactions have been served.
func (r *Recorder) ReplayConsumed() int {
	return r.cursor.Consumed()
}

// ReplayDir returns the directory interactions were loaded from.
func (r *Recorder) ReplayDir() string {
	return r.cfg.replayDir
}

// SaveDir returns the directory new interactions are written to.
func (r *Recorder) SaveDir() string {
	return r.cfg.saveDir
}
