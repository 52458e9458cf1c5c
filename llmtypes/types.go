package llmtypes

import (
	"context"
	"encoding/json"
	"fmt"
)

// Model is the core interface for LLM implementations
type Model interface {
	GenerateContent(ctx context.Context, messages []MessageContent, options ...CallOption) (*ContentResponse, error)
	// GetModelID returns the model ID for this LLM instance
	// Returns empty string if the model ID is not available
	GetModelID() string
}

// ChatMessageType represents the role of a chat message
type ChatMessageType string

const (
	ChatMessageTypeSystem  ChatMessageType = "system"
	ChatMessageTypeHuman   ChatMessageType = "human"
	ChatMessageTypeAI      ChatMessageType = "ai"
	ChatMessageTypeTool    ChatMessageType = "tool"
	ChatMessageTypeGeneric ChatMessageType = "generic"
)

// ContentPart is an interface for different types of message parts
type ContentPart interface{}

// TextContent represents a text content part
type TextContent struct {
	Text string
}

// ImageContent represents an image content part
// Supports both base64-encoded images and image URLs
type ImageContent struct {
	// SourceType is either "base64" or "url"
	SourceType string
	// MediaType is the MIME type (e.g., "image/jpeg", "image/png")
	MediaType string
	// Data contains base64 data or the image URL depending on SourceType
	Data string
}

// MessageContent represents a message in the conversation. Messages
// round-trip through JSON with typed part envelopes so recorded
// conversations survive serialization without losing part types.
type MessageContent struct {
	Role  ChatMessageType
	Parts []ContentPart
}

// partEnvelope is the on-disk form of a ContentPart.
type partEnvelope struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	SourceType string `json:"source_type,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
	Data       string `json:"data,omitempty"`
}

type messageEnvelope struct {
	Role  ChatMessageType `json:"role"`
	Parts []partEnvelope  `json:"parts"`
}

func (m MessageContent) MarshalJSON() ([]byte, error) {
	env := messageEnvelope{Role: m.Role, Parts: make([]partEnvelope, 0, len(m.Parts))}
	for _, p := range m.Parts {
		switch part := p.(type) {
		case TextContent:
			env.Parts = append(env.Parts, partEnvelope{Type: "text", Text: part.Text})
		case ImageContent:
			env.Parts = append(env.Parts, partEnvelope{
				Type:       "image",
				SourceType: part.SourceType,
				MediaType:  part.MediaType,
				Data:       part.Data,
			})
		default:
			return nil, fmt.Errorf("unsupported content part type %T", p)
		}
	}
	return json.Marshal(env)
}

func (m *MessageContent) UnmarshalJSON(data []byte) error {
	var env messageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	m.Role = env.Role
	m.Parts = make([]ContentPart, 0, len(env.Parts))
	for _, p := range env.Parts {
		switch p.Type {
		case "text":
			m.Parts = append(m.Parts, TextContent{Text: p.Text})
		case "image":
			m.Parts = append(m.Parts, ImageContent{
				SourceType: p.SourceType,
				MediaType:  p.MediaType,
				Data:       p.Data,
			})
		default:
			return fmt.Errorf("unsupported content part type %q", p.Type)
		}
	}
	return nil
}

// ToolCall represents a tool/function call request
type ToolCall struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	FunctionCall *FunctionCall `json:"function,omitempty"`
}

// FunctionCall represents a function call with name and arguments
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ContentResponse represents the response from an LLM
type ContentResponse struct {
	Choices []*ContentChoice `json:"choices"`
	Usage   *Usage           `json:"usage,omitempty"`
}

// ContentChoice represents a single choice in the response
type ContentChoice struct {
	Content    string     `json:"content"`
	StopReason string     `json:"stop_reason,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// Usage represents token usage information
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// CallOptions holds the resolved per-call options
type CallOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	JSONMode    bool    `json:"json_mode,omitempty"`
}

// CallOption configures a single GenerateContent call
type CallOption func(opts *CallOptions)
