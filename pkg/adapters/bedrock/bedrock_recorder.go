// Package bedrock provides a recording wrapper around the AWS Bedrock
// Converse API. Only text conversations are round-tripped; tool-use and
// document blocks are not preserved in recordings.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	llmrecorder "github.com/manishiitg/llm-recorder-go"
)

// ConverseRecorder records and replays Bedrock Converse calls.
type ConverseRecorder struct {
	client *bedrockruntime.Client
	rec    *llmrecorder.Recorder
}

// ConverseRequest is the recorder's plain-JSON form of a Converse call. The
// SDK's union content blocks do not survive a JSON round-trip, so the
// adapter converts to and from this representation at the boundary.
type ConverseRequest struct {
	ModelID     string            `json:"model_id"`
	System      string            `json:"system,omitempty"`
	Messages    []ConverseMessage `json:"messages"`
	Temperature *float32          `json:"temperature,omitempty"`
	MaxTokens   *int32            `json:"max_tokens,omitempty"`
}

// ConverseMessage is a single text turn.
type ConverseMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ConverseResponse is the plain-JSON form of the assistant's reply.
type ConverseResponse struct {
	Role       string         `json:"role"`
	Text       string         `json:"text"`
	StopReason string         `json:"stop_reason,omitempty"`
	Usage      *ConverseUsage `json:"usage,omitempty"`
}

// ConverseUsage mirrors the Converse token counts.
type ConverseUsage struct {
	InputTokens  int32 `json:"input_tokens"`
	OutputTokens int32 `json:"output_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

// NewConverseRecorder wraps a Bedrock runtime client with record/replay
// over replayDir.
func NewConverseRecorder(client *bedrockruntime.Client, replayDir string, opts ...llmrecorder.Option) (*ConverseRecorder, error) {
	if client == nil {
		return nil, fmt.Errorf("bedrock client is required")
	}
	b := &ConverseRecorder{client: client}
	rec, err := llmrecorder.New(b.liveCall, replayDir, opts...)
	if err != nil {
		return nil, err
	}
	b.rec = rec
	return b, nil
}

// NewClient creates a Bedrock runtime client from the default AWS config
// chain (environment, shared config, instance role).
func NewClient(ctx context.Context, region string) (*bedrockruntime.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

// Converse runs one conversation turn, served from the replay store while
// records remain and live (and recorded) afterwards.
func (b *ConverseRecorder) Converse(ctx context.Context, req ConverseRequest) (*ConverseResponse, error) {
	request, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal converse request: %w", err)
	}

	raw, err := b.rec.Completion(ctx, request)
	if err != nil {
		return nil, err
	}

	var response ConverseResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recorded converse response: %w", err)
	}
	return &response, nil
}

// Recorder exposes the underlying recorder, e.g. to check replay progress.
func (b *ConverseRecorder) Recorder() *llmrecorder.Recorder {
	return b.rec
}

func (b *ConverseRecorder) liveCall(ctx context.Context, request json.RawMessage) (json.RawMessage, error) {
	var req ConverseRequest
	if err := json.Unmarshal(request, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal converse request: %w", err)
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(req.ModelID),
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}
	for _, msg := range req.Messages {
		input.Messages = append(input.Messages, types.Message{
			Role: types.ConversationRole(msg.Role),
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: msg.Text},
			},
		})
	}
	if req.Temperature != nil || req.MaxTokens != nil {
		input.InferenceConfig = &types.InferenceConfiguration{
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}
	}

	output, err := b.client.Converse(ctx, input)
	if err != nil {
		return nil, err
	}

	response := ConverseResponse{StopReason: string(output.StopReason)}
	if msg, ok := output.Output.(*types.ConverseOutputMemberMessage); ok {
		response.Role = string(msg.Value.Role)
		for _, block := range msg.Value.Content {
			if text, ok := block.(*types.ContentBlockMemberText); ok {
				response.Text += text.Value
			}
		}
	}
	if output.Usage != nil {
		response.Usage = &ConverseUsage{
			InputTokens:  aws.ToInt32(output.Usage.InputTokens),
			OutputTokens: aws.ToInt32(output.Usage.OutputTokens),
			TotalTokens:  aws.ToInt32(output.Usage.TotalTokens),
		}
	}

	raw, err := json.Marshal(&response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal converse response: %w", err)
	}
	return raw, nil
}
