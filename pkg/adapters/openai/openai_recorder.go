// Package openai provides a recording wrapper around the OpenAI chat
// completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"

	llmrecorder "github.com/manishiitg/llm-recorder-go"
)

// ChatRecorder records and replays OpenAI chat completions. It mirrors
// client.Chat.Completions.New, so swapping it in requires no changes to how
// params are built or how the response is consumed.
type ChatRecorder struct {
	client *openaisdk.Client
	rec    *llmrecorder.Recorder
}

// NewChatRecorder wraps an OpenAI client with record/replay over replayDir.
func NewChatRecorder(client *openaisdk.Client, replayDir string, opts ...llmrecorder.Option) (*ChatRecorder, error) {
	if client == nil {
		return nil, fmt.Errorf("openai client is required")
	}
	c := &ChatRecorder{client: client}
	rec, err := llmrecorder.New(c.liveCall, replayDir, opts...)
	if err != nil {
		return nil, err
	}
	c.rec = rec
	return c, nil
}

// New creates a chat completion, served from the replay store while records
// remain and live (and recorded) afterwards. The returned value is a fully
// populated *openaisdk.ChatCompletion either way.
func (c *ChatRecorder) New(ctx context.Context, params openaisdk.ChatCompletionNewParams) (*openaisdk.ChatCompletion, error) {
	request, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat completion params: %w", err)
	}

	raw, err := c.rec.Completion(ctx, request)
	if err != nil {
		return nil, err
	}

	var completion openaisdk.ChatCompletion
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recorded chat completion: %w", err)
	}
	return &completion, nil
}

// Recorder exposes the underlying recorder, e.g. to check replay progress.
func (c *ChatRecorder) Recorder() *llmrecorder.Recorder {
	return c.rec
}

func (c *ChatRecorder) liveCall(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	var params openaisdk.ChatCompletionNewParams
	if err := json.Unmarshal(request, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat completion params: %w", err)
	}
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(completion)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat completion: %w", err)
	}
	return raw, nil
}
