// Package ledger reads and writes the per-directory record of the last
// adopted upstream state.
//
// The ledger is the only authority on whether a target directory is up to
// date. It is written after the file pass and replaced atomically, so an
// interrupted sync leaves the previous entry in place.
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/bianoble/ghmirror/internal/source"
)

// ErrCorrupt is returned by Load when the ledger file cannot be decoded.
var ErrCorrupt = errors.New("corrupt ledger")

// Store loads and saves ledger entries.
type Store struct {
	Fs     afero.Fs
	Clock  clockwork.Clock
	Logger logrus.FieldLogger
}

// NewStore returns a Store on the OS filesystem and the real clock.
func NewStore(logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{Fs: afero.NewOsFs(), Clock: clockwork.NewRealClock(), Logger: logger}
}

// Path returns the ledger path for a target directory.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads the entry in dir. A missing ledger returns (nil, false, nil).
func (s *Store) Load(dir string) (*Entry, bool, error) {
	path := Path(dir)
	data, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("%w %s: %w", ErrCorrupt, path, err)
	}
	return &e, true, nil
}

// Current returns the entry in dir, or nil when there is none. A corrupt
// ledger is logged and treated as absent so the next sync rewrites it. Any
// other read failure is returned and the recorded state stays authoritative.
func (s *Store) Current(dir string) (*Entry, error) {
	e, ok, err := s.Load(dir)
	if errors.Is(err, ErrCorrupt) {
		s.Logger.WithError(err).WithField("dir", dir).Warn("Ignoring corrupt ledger, the project will be resynced")
		return nil, nil
	}
	if err != nil || !ok {
		return nil, err
	}
	return e, nil
}

// NeedsUpdate reports whether cand should be adopted into dir. It also
// returns the entry cand was compared against, nil when there was none.
func (s *Store) NeedsUpdate(dir string, cand source.Candidate) (*Entry, bool, error) {
	prev, err := s.Current(dir)
	if err != nil {
		return nil, false, err
	}
	needs, err := Compare(prev, cand)
	if err != nil {
		return prev, false, fmt.Errorf("comparing with ledger: %w", err)
	}
	return prev, needs, nil
}

// Save records cand as adopted into dir. The entry is written to a temp file
// in dir and renamed over the ledger.
func (s *Store) Save(dir string, cand source.Candidate) (*Entry, error) {
	e, err := NewEntry(cand, s.Clock.Now())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("marshaling ledger: %w", err)
	}

	tmp, err := afero.TempFile(s.Fs, dir, FileName+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp ledger in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = s.Fs.Remove(tmpName)
		return nil, fmt.Errorf("writing temp ledger %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.Fs.Remove(tmpName)
		return nil, fmt.Errorf("closing temp ledger %s: %w", tmpName, err)
	}

	if err := s.Fs.Chmod(tmpName, 0644); err != nil {
		_ = s.Fs.Remove(tmpName)
		return nil, fmt.Errorf("setting ledger permissions: %w", err)
	}

	path := Path(dir)
	if err := s.Fs.Rename(tmpName, path); err != nil {
		_ = s.Fs.Remove(tmpName)
		return nil, fmt.Errorf("renaming temp ledger to %s: %w", path, err)
	}
	return e, nil
}
