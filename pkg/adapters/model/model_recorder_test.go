package model

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmrecorder "github.com/manishiitg/llm-recorder-go"
	"github.com/manishiitg/llm-recorder-go/llmtypes"
)

// fakeModel counts how often it is actually invoked.
type fakeModel struct {
	calls       int
	lastOptions llmtypes.CallOptions
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llmtypes.MessageContent, options ...llmtypes.CallOption) (*llmtypes.ContentResponse, error) {
	f.calls++
	for _, opt := range options {
		opt(&f.lastOptions)
	}
	return &llmtypes.ContentResponse{
		Choices: []*llmtypes.ContentChoice{{Content: "the sky is blue", StopReason: "stop"}},
		Usage:   &llmtypes.Usage{InputTokens: 4, OutputTokens: 5, TotalTokens: 9},
	}, nil
}

func (f *fakeModel) GetModelID() string {
	return "fake-model-1"
}

func TestRecordingModelRecordsThenReplays(t *testing.T) {
	fs := afero.NewMemMapFs()
	inner := &fakeModel{}
	ctx := context.Background()
	messages := []llmtypes.MessageContent{
		llmtypes.TextParts(llmtypes.ChatMessageTypeHuman, "why is the sky blue?"),
	}

	wrapped, err := Wrap(inner, "recordings", llmrecorder.WithFs(fs))
	require.NoError(t, err)

	live, err := wrapped.GenerateContent(ctx, messages, llmtypes.WithTemperature(0.3))
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 0.3, inner.lastOptions.Temperature, "options survive the round-trip to the inner model")

	// A second wrapper over the same recordings serves the stored response
	// without touching the inner model.
	wrapped, err = Wrap(inner, "recordings", llmrecorder.WithFs(fs))
	require.NoError(t, err)

	replayed, err := wrapped.GenerateContent(ctx, messages, llmtypes.WithTemperature(0.3))
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "replayed calls must not reach the inner model")
	assert.Equal(t, live, replayed)
	assert.Equal(t, 1, wrapped.Recorder().ReplayConsumed())
}

func TestRecordingModelReportsInnerModelID(t *testing.T) {
	wrapped, err := Wrap(&fakeModel{}, "recordings", llmrecorder.WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)
	assert.Equal(t, "fake-model-1", wrapped.GetModelID())
}

func TestWrapRequiresInnerModel(t *testing.T) {
	_, err := Wrap(nil, "recordings", llmrecorder.WithFs(afero.NewMemMapFs()))
	require.Error(t, err)
}
