package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/manishiitg/llm-recorder-go/interfaces"
)

const (
	// fileSuffix is the artifact naming scheme: <index>.interaction.json
	fileSuffix = ".interaction.json"

	// originIndex is the first index assigned in an empty directory.
	originIndex = 1
)

// StorageError reports a failure in the persistence layer: an unreadable or
// unwritable directory, or a failed write. Malformed individual records do
// not produce a StorageError on load; they are skipped with a warning.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Store persists Interactions as one JSON document per call in a single
// directory, append-only, keyed by a monotonic index encoded in the
// filename. Append uses a write-then-rename publish so a failed write never
// corrupts previously written records.
type Store struct {
	mu     sync.Mutex
	fs     afero.Fs
	dir    string
	logger interfaces.Logger
}

// New creates a store over the given directory. A nil fs defaults to the
// OS filesystem; logger must not be nil.
func New(fs afero.Fs, dir string, logger interfaces.Logger) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{
		fs:     fs,
		dir:    filepath.Clean(dir),
		logger: logger,
	}
}

// Dir returns the directory this store reads and writes.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads every valid interaction record in ascending index order.
// A missing or empty directory yields an empty slice. Malformed records are
// skipped with a warning rather than aborting the load; an unreadable
// directory fails with a StorageError.
func (s *Store) Load() ([]Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "load", Path: s.dir, Err: err}
	}

	type entry struct {
		index int
		name  string
	}
	var entries []entry
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), fileSuffix) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(info.Name(), fileSuffix))
		if err != nil || index < originIndex {
			s.logger.Errorf("skipping interaction file with unparseable index: %s", info.Name())
			continue
		}
		entries = append(entries, entry{index: index, name: info.Name()})
	}

	// Ascending index, filename tiebreak if two files parse to the same index
	// (e.g. "7" and "07" - a data-integrity problem worth surfacing).
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].index != entries[j].index {
			return entries[i].index < entries[j].index
		}
		return entries[i].name < entries[j].name
	})

	interactions := make([]Interaction, 0, len(entries))
	lastIndex := -1
	for _, e := range entries {
		if e.index == lastIndex {
			s.logger.Errorf("duplicate interaction index %d (%s); keeping the first occurrence", e.index, e.name)
			continue
		}
		path := filepath.Join(s.dir, e.name)
		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			s.logger.Errorf("skipping unreadable interaction %s: %v", e.name, err)
			continue
		}
		var it Interaction
		if err := json.Unmarshal(data, &it); err != nil {
			s.logger.Errorf("skipping malformed interaction %s: %v", e.name, err)
			continue
		}
		it.Index = e.index
		interactions = append(interactions, it)
		lastIndex = e.index
	}
	return interactions, nil
}

// Clear removes all interaction artifacts under the directory, then ensures
// the directory exists and is writable. Clearing a missing or already-empty
// directory succeeds. Files that are not interaction records are left alone.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil && !os.IsNotExist(err) {
		return &StorageError{Op: "clear", Path: s.dir, Err: err}
	}
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		if !strings.HasSuffix(name, fileSuffix) && !strings.HasSuffix(name, fileSuffix+".tmp") {
			continue
		}
		path := filepath.Join(s.dir, name)
		if err := s.fs.Remove(path); err != nil {
			return &StorageError{Op: "clear", Path: path, Err: err}
		}
	}
	return s.ensureLocked()
}

// Ensure creates the directory if it does not exist yet.
func (s *Store) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked()
}

func (s *Store) ensureLocked() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: s.dir, Err: err}
	}
	return nil
}

// Append persists a new record at the next available index (one past the
// highest index currently on disk, or the origin in an empty directory) and
// returns the index it was written at. The read-max-and-write sequence is a
// single critical section so concurrent appends cannot produce duplicate or
// gapped indices.
func (s *Store) Append(it Interaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLocked(); err != nil {
		return 0, err
	}

	next := originIndex
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return 0, &StorageError{Op: "append", Path: s.dir, Err: err}
	}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), fileSuffix) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(info.Name(), fileSuffix))
		if err != nil {
			continue
		}
		if index >= next {
			next = index + 1
		}
	}

	it.Index = next
	data, err := json.MarshalIndent(&it, "", "  ")
	if err != nil {
		return 0, &StorageError{Op: "append", Path: s.dir, Err: err}
	}
	data = append(data, '\n')

	// Write to a temp file and rename so a failed write leaves prior records
	// untouched and no partially written record is ever visible.
	path := filepath.Join(s.dir, fmt.Sprintf("%d%s", next, fileSuffix))
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		return 0, &StorageError{Op: "append", Path: tmpPath, Err: err}
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return 0, &StorageError{Op: "append", Path: path, Err: err}
	}

	s.logger.Debugf("recorded interaction %d in %s", next, s.dir)
	return next, nil
}
