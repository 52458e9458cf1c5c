package llmrecorder

import (
	"context"
	"encoding/json"

	"github.com/manishiitg/llm-recorder-go/internal/store"
)

// LiveCallFunc issues a real completion call against the provider. The
// request and response payloads are opaque JSON documents; the recorder
// passes them through unmodified. Errors returned here are propagated to the
// application untouched - no wrapping, no retry.
type LiveCallFunc func(ctx context.Context, request json.RawMessage) (json.RawMessage, error)

// Re-export storage types for callers that inspect or seed recordings.
type Interaction = store.Interaction
type StorageError = store.StorageError

// ReplayAll replays every interaction available in the replay directory.
// This is the default when WithReplayCount is not given.
const ReplayAll = -1

// ReplayedProviderError reports a provider failure that was recorded in a
// previous run and is now being served back during replay. Only produced
// when error records were persisted via WithPersistErrors.
type ReplayedProviderError struct {
	Message string
}

func (e *ReplayedProviderError) Error() string {
	return e.Message
}
