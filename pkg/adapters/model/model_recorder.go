// Package model wraps any llmtypes.Model with record/replay, providing a
// provider-agnostic recording layer for applications built on the Model
// interface rather than a specific SDK.
package model

import (
	"context"
	"encoding/json"
	"fmt"

	llmrecorder "github.com/manishiitg/llm-recorder-go"
	"github.com/manishiitg/llm-recorder-go/llmtypes"
)

// RecordingModel implements llmtypes.Model around an inner model. Replayed
// calls never reach the inner model; live calls are forwarded and recorded.
type RecordingModel struct {
	inner llmtypes.Model
	rec   *llmrecorder.Recorder
}

// generateRequest is the persisted form of one GenerateContent call.
type generateRequest struct {
	ModelID  string                    `json:"model_id,omitempty"`
	Messages []llmtypes.MessageContent `json:"messages"`
	Options  llmtypes.CallOptions      `json:"options,omitempty"`
}

// Wrap builds a RecordingModel recording to/replaying from replayDir.
func Wrap(inner llmtypes.Model, replayDir string, opts ...llmrecorder.Option) (*RecordingModel, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner model is required")
	}
	m := &RecordingModel{inner: inner}
	rec, err := llmrecorder.New(m.liveCall, replayDir, opts...)
	if err != nil {
		return nil, err
	}
	m.rec = rec
	return m, nil
}

// GenerateContent implements the llmtypes.Model interface
func (m *RecordingModel) GenerateContent(ctx context.Context, messages []llmtypes.MessageContent, options ...llmtypes.CallOption) (*llmtypes.ContentResponse, error) {
	resolved := llmtypes.CallOptions{}
	for _, opt := range options {
		opt(&resolved)
	}

	request, err := json.Marshal(generateRequest{
		ModelID:  m.inner.GetModelID(),
		Messages: messages,
		Options:  resolved,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	raw, err := m.rec.Completion(ctx, request)
	if err != nil {
		return nil, err
	}

	var response llmtypes.ContentResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recorded response: %w", err)
	}
	return &response, nil
}

// GetModelID returns the inner model's ID
func (m *RecordingModel) GetModelID() string {
	return m.inner.GetModelID()
}

// Recorder exposes the underlying recorder, e.g. to check replay progress.
func (m *RecordingModel) Recorder() *llmrecorder.Recorder {
	return m.rec
}

// liveCall rebuilds the typed call from its persisted form and forwards it
// to the inner model. The request round-trips through JSON either way, so a
// replayed run and a live run see identical payloads on disk.
func (m *RecordingModel) liveCall(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	var req generateRequest
	if err := json.Unmarshal(request, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generate request: %w", err)
	}
	response, err := m.inner.GenerateContent(ctx, req.Messages, llmtypes.Options(req.Options))
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal live response: %w", err)
	}
	return raw, nil
}
