package store

import (
	"encoding/json"
	"time"
)

// Interaction represents one captured request/response exchange with the
// live provider. The request and response payloads are kept as raw JSON so
// they round-trip byte-for-byte and stay hand-editable on disk.
type Interaction struct {
	// Index is the interaction's position in the storage directory. It is
	// encoded in the filename, not in the document body, so a hand-edited
	// record can never disagree with its own location.
	Index int `json:"-"`

	// RecordedAt is informational only; ordering is by Index.
	RecordedAt time.Time `json:"recorded_at"`

	// Request is the full request payload as sent to the provider.
	Request json.RawMessage `json:"request"`

	// Response is the provider's response payload. Empty when the record
	// captures a failed call.
	Response json.RawMessage `json:"response,omitempty"`

	// CallError tags a record that captured a provider failure instead of a
	// response. Exactly one of Response and CallError is set.
	CallError string `json:"call_error,omitempty"`
}

// Failed reports whether this record captured a provider failure.
func (it *Interaction) Failed() bool {
	return it.CallError != ""
}
