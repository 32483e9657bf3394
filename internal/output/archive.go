package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Archive persists profile results as JSON files in a directory and
// maintains an index of archived runs. The index is guarded by a file
// lock so concurrent stampede invocations can share one archive.
type Archive struct {
	dir string
}

// IndexEntry describes one archived run.
type IndexEntry struct {
	RunID    string    `json:"run_id"`
	Profile  string    `json:"profile"`
	File     string    `json:"file"`
	SavedAt  time.Time `json:"saved_at"`
	Target   string    `json:"target,omitempty"`
	Protocol string    `json:"protocol,omitempty"`
}

func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Save writes the result to <runID>-<profile>.json and appends an
// index entry. It returns the path of the written report.
func (a *Archive) Save(entry IndexEntry, result any) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}

	entry.File = fmt.Sprintf("%s-%s.json", entry.RunID, entry.Profile)
	entry.SavedAt = time.Now()

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	path := filepath.Join(a.dir, entry.File)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	if err := a.appendIndex(entry); err != nil {
		return "", err
	}
	return path, nil
}

// Index returns all archived runs, oldest first.
func (a *Archive) Index() ([]IndexEntry, error) {
	lock := flock.New(a.lockPath())
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking archive index: %w", err)
	}
	defer func() { _ = lock.Unlock() }()
	return a.readIndex()
}

func (a *Archive) appendIndex(entry IndexEntry) error {
	lock := flock.New(a.lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking archive index: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	entries, err := a.readIndex()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding archive index: %w", err)
	}
	if err := os.WriteFile(a.indexPath(), data, 0o644); err != nil {
		return fmt.Errorf("writing archive index: %w", err)
	}
	return nil
}

func (a *Archive) readIndex() ([]IndexEntry, error) {
	data, err := os.ReadFile(a.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading archive index: %w", err)
	}
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding archive index: %w", err)
	}
	return entries, nil
}

func (a *Archive) indexPath() string { return filepath.Join(a.dir, "index.json") }
func (a *Archive) lockPath() string  { return filepath.Join(a.dir, "index.lock") }
