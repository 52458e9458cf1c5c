package store

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manishiitg/llm-recorder-go/internal/logging"
)

// failingFs simulates permission problems: failReads rejects opens (so
// directory listings fail), failWrites rejects write opens.
type failingFs struct {
	afero.Fs
	failReads  bool
	failWrites bool
}

func (f *failingFs) Open(name string) (afero.File, error) {
	if f.failReads {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.failWrites && flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 {
		return nil, os.ErrPermission
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return New(fs, "recordings", logging.Nop()), fs
}

func writeRecord(t *testing.T, fs afero.Fs, name, response string) {
	t.Helper()
	doc := fmt.Sprintf(`{"recorded_at":"2026-08-01T10:00:00Z","request":{"q":1},"response":%s}`, response)
	require.NoError(t, afero.WriteFile(fs, "recordings/"+name, []byte(doc), 0o644))
}

func TestAppendAssignsSequentialIndices(t *testing.T) {
	s, fs := newTestStore(t)

	for want := 1; want <= 3; want++ {
		index, err := s.Append(Interaction{
			RecordedAt: time.Now().UTC(),
			Request:    json.RawMessage(`{"q":1}`),
			Response:   json.RawMessage(fmt.Sprintf(`{"n":%d}`, want)),
		})
		require.NoError(t, err)
		assert.Equal(t, want, index)
	}

	for i := 1; i <= 3; i++ {
		exists, err := afero.Exists(fs, fmt.Sprintf("recordings/%d.interaction.json", i))
		require.NoError(t, err)
		assert.True(t, exists)
	}
}

func TestAppendContinuesAfterExistingMax(t *testing.T) {
	s, fs := newTestStore(t)
	writeRecord(t, fs, "7.interaction.json", `{"n":7}`)

	index, err := s.Append(Interaction{Request: json.RawMessage(`{}`), Response: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, 8, index)
}

func TestAppendLeavesNoTempFiles(t *testing.T) {
	s, fs := newTestStore(t)

	_, err := s.Append(Interaction{Request: json.RawMessage(`{}`), Response: json.RawMessage(`{}`)})
	require.NoError(t, err)

	infos, err := afero.ReadDir(fs, "recordings")
	require.NoError(t, err)
	for _, info := range infos {
		assert.NotContains(t, info.Name(), ".tmp")
	}
}

func TestLoadOrdersByIndexNotFilename(t *testing.T) {
	s, fs := newTestStore(t)
	writeRecord(t, fs, "10.interaction.json", `{"n":10}`)
	writeRecord(t, fs, "2.interaction.json", `{"n":2}`)
	writeRecord(t, fs, "1.interaction.json", `{"n":1}`)

	interactions, err := s.Load()
	require.NoError(t, err)
	require.Len(t, interactions, 3)
	assert.Equal(t, 1, interactions[0].Index)
	assert.Equal(t, 2, interactions[1].Index)
	assert.Equal(t, 10, interactions[2].Index)
	assert.JSONEq(t, `{"n":10}`, string(interactions[2].Response))
}

func TestLoadSkipsMalformedAndForeignFiles(t *testing.T) {
	s, fs := newTestStore(t)
	writeRecord(t, fs, "1.interaction.json", `{"n":1}`)
	require.NoError(t, afero.WriteFile(fs, "recordings/2.interaction.json", []byte("not json"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "recordings/notes.txt", []byte("hi"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "recordings/abc.interaction.json", []byte(`{}`), 0o644))

	interactions, err := s.Load()
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, 1, interactions[0].Index)
}

func TestLoadKeepsFirstOnDuplicateIndex(t *testing.T) {
	s, fs := newTestStore(t)
	writeRecord(t, fs, "07.interaction.json", `{"n":"first"}`)
	writeRecord(t, fs, "7.interaction.json", `{"n":"second"}`)

	interactions, err := s.Load()
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, 7, interactions[0].Index)
	assert.JSONEq(t, `{"n":"first"}`, string(interactions[0].Response))
}

func TestLoadMissingDirectory(t *testing.T) {
	s, _ := newTestStore(t)

	interactions, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, interactions)
}

func TestLoadUnreadableDirectoryFailsWithStorageError(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("recordings", 0o755))
	s := New(&failingFs{Fs: base, failReads: true}, "recordings", logging.Nop())

	_, err := s.Load()
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "load", storageErr.Op)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestFailedAppendLeavesPriorRecordsUntouched(t *testing.T) {
	base := afero.NewMemMapFs()
	fs := &failingFs{Fs: base}
	s := New(fs, "recordings", logging.Nop())

	_, err := s.Append(Interaction{Request: json.RawMessage(`{"q":1}`), Response: json.RawMessage(`{"n":1}`)})
	require.NoError(t, err)
	before, err := afero.ReadFile(base, "recordings/1.interaction.json")
	require.NoError(t, err)

	fs.failWrites = true
	_, err = s.Append(Interaction{Request: json.RawMessage(`{"q":2}`), Response: json.RawMessage(`{"n":2}`)})
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)

	after, err := afero.ReadFile(base, "recordings/1.interaction.json")
	require.NoError(t, err)
	assert.Equal(t, before, after, "prior record must survive a failed append byte for byte")

	infos, err := afero.ReadDir(base, "recordings")
	require.NoError(t, err)
	require.Len(t, infos, 1, "no partial or temp file may remain")
	assert.Equal(t, "1.interaction.json", infos[0].Name())
}

func TestLoadRoundTripsErrorRecords(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Append(Interaction{
		Request:   json.RawMessage(`{"q":1}`),
		CallError: "rate limited",
	})
	require.NoError(t, err)

	interactions, err := s.Load()
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.True(t, interactions[0].Failed())
	assert.Equal(t, "rate limited", interactions[0].CallError)
	assert.Empty(t, interactions[0].Response)
}

func TestClearRemovesOnlyInteractionArtifacts(t *testing.T) {
	s, fs := newTestStore(t)
	writeRecord(t, fs, "1.interaction.json", `{"n":1}`)
	require.NoError(t, afero.WriteFile(fs, "recordings/2.interaction.json.tmp", []byte("partial"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "recordings/notes.txt", []byte("keep me"), 0o644))

	require.NoError(t, s.Clear())

	for name, want := range map[string]bool{
		"recordings/1.interaction.json":     false,
		"recordings/2.interaction.json.tmp": false,
		"recordings/notes.txt":              true,
	} {
		exists, err := afero.Exists(fs, name)
		require.NoError(t, err)
		assert.Equal(t, want, exists, name)
	}
}

func TestClearMissingDirectoryCreatesIt(t *testing.T) {
	s, fs := newTestStore(t)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())

	isDir, err := afero.IsDir(fs, "recordings")
	require.NoError(t, err)
	assert.True(t, isDir)
}
