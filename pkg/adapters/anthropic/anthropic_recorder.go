// Package anthropic provides a recording wrapper around the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	llmrecorder "github.com/manishiitg/llm-recorder-go"
)

// MessagesRecorder records and replays Anthropic messages. It mirrors
// client.Messages.New.
type MessagesRecorder struct {
	client anthropic.Client
	rec    *llmrecorder.Recorder
}

// NewMessagesRecorder wraps an Anthropic client with record/replay over
// replayDir.
func NewMessagesRecorder(client anthropic.Client, replayDir string, opts ...llmrecorder.Option) (*MessagesRecorder, error) {
	m := &MessagesRecorder{client: client}
	rec, err := llmrecorder.New(m.liveCall, replayDir, opts...)
	if err != nil {
		return nil, err
	}
	m.rec = rec
	return m, nil
}

// New creates a message, served from the replay store while records remain
// and live (and recorded) afterwards.
func (m *MessagesRecorder) New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	request, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message params: %w", err)
	}

	raw, err := m.rec.Completion(ctx, request)
	if err != nil {
		return nil, err
	}

	var message anthropic.Message
	if err := json.Unmarshal(raw, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recorded message: %w", err)
	}
	return &message, nil
}

// Recorder exposes the underlying recorder, e.g. to check replay progress.
func (m *MessagesRecorder) Recorder() *llmrecorder.Recorder {
	return m.rec
}

func (m *MessagesRecorder) liveCall(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	var params anthropic.MessageNewParams
	if err := json.Unmarshal(request, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message params: %w", err)
	}
	message, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return raw, nil
}
