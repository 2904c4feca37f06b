package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jdalgard/pageplan/pkg/errors"
)

// FileArchive stores records as JSON files in a directory, one file per
// record named by its ID.
type FileArchive struct {
	dir string
}

// NewFileArchive creates a file archive in the given directory. The
// directory is created if it doesn't exist.
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create archive dir")
	}
	return &FileArchive{dir: dir}, nil
}

func (a *FileArchive) path(id string) string {
	return filepath.Join(a.dir, id+".json")
}

// Put stores a record.
func (a *FileArchive) Put(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record ID is required")
	}
	path := a.path(rec.ID)
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record already exists: %s", rec.ID)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode record")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write record")
	}
	return nil
}

// Get retrieves a record by ID.
func (a *FileArchive) Get(ctx context.Context, id string) (Record, error) {
	data, err := os.ReadFile(a.path(id))
	if os.IsNotExist(err) {
		return Record{}, errors.New(errors.ErrCodePlanNotFound, "no archived plan: %s", id)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInternal, err, "read record")
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInternal, err, "decode record %s", id)
	}
	return rec, nil
}

// List returns summaries of all records, newest first.
func (a *FileArchive) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read archive dir")
	}

	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := a.Get(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			// Skip unreadable entries instead of failing the whole listing.
			continue
		}
		summaries = append(summaries, rec.summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Close does nothing for a file archive.
func (a *FileArchive) Close() error { return nil }

var _ Archive = (*FileArchive)(nil)
