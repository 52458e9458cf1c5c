// Package google provides a recording wrapper around the Google GenAI
// GenerateContent API.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"google.golang.org/genai"

	llmrecorder "github.com/manishiitg/llm-recorder-go"
)

// GenerateRecorder records and replays GenerateContent calls. It mirrors
// client.Models.GenerateContent.
type GenerateRecorder struct {
	client *genai.Client
	rec    *llmrecorder.Recorder
}

// generateRequest is the persisted form of one GenerateContent call.
type generateRequest struct {
	Model    string                       `json:"model"`
	Contents []*genai.Content             `json:"contents"`
	Config   *genai.GenerateContentConfig `json:"config,omitempty"`
}

// NewGenerateRecorder wraps a GenAI client with record/replay over replayDir.
func NewGenerateRecorder(client *genai.Client, replayDir string, opts ...llmrecorder.Option) (*GenerateRecorder, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is required")
	}
	g := &GenerateRecorder{client: client}
	rec, err := llmrecorder.New(g.liveCall, replayDir, opts...)
	if err != nil {
		return nil, err
	}
	g.rec = rec
	return g, nil
}

// NewClient creates a GenAI client authenticated with GOOGLE_API_KEY (or
// GEMINI_API_KEY) against the Gemini Developer API.
func NewClient(ctx context.Context) (*genai.Client, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY or GEMINI_API_KEY environment variable is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// GenerateContent generates content, served from the replay store while
// records remain and live (and recorded) afterwards.
func (g *GenerateRecorder) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	request, err := json.Marshal(generateRequest{
		Model:    model,
		Contents: contents,
		Config:   config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	raw, err := g.rec.Completion(ctx, request)
	if err != nil {
		return nil, err
	}

	var response genai.GenerateContentResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recorded response: %w", err)
	}
	return &response, nil
}

// Recorder exposes the underlying recorder, e.g. to check replay progress.
func (g *GenerateRecorder) Recorder() *llmrecorder.Recorder {
	return g.rec
}

func (g *GenerateRecorder) liveCall(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	var req generateRequest
	if err := json.Unmarshal(request, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generate request: %w", err)
	}
	response, err := g.client.Models.GenerateContent(ctx, req.Model, req.Contents, req.Config)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate response: %w", err)
	}
	return raw, nil
}
