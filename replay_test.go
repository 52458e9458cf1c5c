package llmrecorder

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokerRoutesThroughRecorderWhenEnabled(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedRecordings(t, fs, "recordings", 1)
	live := &countingLive{}
	inv := NewInvoker(live.call)

	ctx := context.Background()

	// Off by default: straight to the provider, nothing recorded.
	_, err := inv.Completion(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, live.calls)
	assert.False(t, inv.Enabled())

	require.NoError(t, inv.EnableReplayMode("recordings", WithFs(fs)))
	assert.True(t, inv.Enabled())

	resp, err := inv.Completion(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"recorded":1}`, string(resp))
	assert.Equal(t, 1, live.calls)
}

func TestInvokerDisableRestoresDirectCalls(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedRecordings(t, fs, "recordings", 1)
	live := &countingLive{}
	inv := NewInvoker(live.call)

	require.NoError(t, inv.EnableReplayMode("recordings", WithFs(fs)))
	inv.DisableReplayMode()
	inv.DisableReplayMode() // repeated deactivation is a no-op

	_, err := inv.Completion(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, live.calls)
	assert.Nil(t, inv.Recorder())
	assert.Len(t, loadRecordings(t, fs, "recordings"), 1, "disabled invoker never records")
}

func TestInvokerReenableSupersedesPreviousSession(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedRecordings(t, fs, "recordings", 1)
	live := &countingLive{}
	inv := NewInvoker(live.call)

	ctx := context.Background()
	require.NoError(t, inv.EnableReplayMode("recordings", WithFs(fs)))
	_, err := inv.Completion(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Recorder().ReplayRemaining())

	// A fresh activation starts a fresh cursor over the same recordings.
	require.NoError(t, inv.EnableReplayMode("recordings", WithFs(fs)))
	resp, err := inv.Completion(ctx, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"recorded":1}`, string(resp))
	assert.Equal(t, 0, live.calls)
}

func TestInvokerRequiresLiveCall(t *testing.T) {
	inv := &Invoker{}

	err := inv.EnableReplayMode("recordings", WithFs(afero.NewMemMapFs()))
	require.Error(t, err)

	_, err = inv.Completion(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
}

func TestPackageLevelSurface(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedRecordings(t, fs, "recordings", 1)
	live := &countingLive{}

	SetLiveCall(live.call)
	defer func() {
		DisableReplayMode()
		SetLiveCall(nil)
	}()

	require.NoError(t, EnableReplayMode("recordings", WithFs(fs)))

	resp, err := Completion(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"recorded":1}`, string(resp))
	assert.Equal(t, 0, live.calls)

	DisableReplayMode()
	_, err = Completion(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, live.calls)
}
