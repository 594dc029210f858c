package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yamori/gleaner/pkg/domain/interfaces"
	"github.com/yamori/gleaner/pkg/domain/model"
)

type jsonStore struct {
	baseDir string
}

// NewJSONStore creates an archive store that keeps one JSON file per ISO
// week under baseDir. The directory is created on first use.
func NewJSONStore(baseDir string) interfaces.ItemStore {
	return &jsonStore{baseDir: baseDir}
}

func (s *jsonStore) path(week model.Week) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create archive directory", goerr.V("dir", s.baseDir))
	}
	return filepath.Join(s.baseDir, week.FileName()), nil
}

// Load returns the items archived for week. A missing file is an empty
// archive, not an error.
func (s *jsonStore) Load(week model.Week) ([]model.Item, error) {
	path, err := s.path(week)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Item{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read archive file", goerr.V("path", path))
	}

	var items []model.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, goerr.Wrap(err, "failed to decode archive file", goerr.V("path", path))
	}

	return items, nil
}

// LoadIndex returns the archived items with the set of known IDs.
func (s *jsonStore) LoadIndex(week model.Week) ([]model.Item, map[string]struct{}, error) {
	items, err := s.Load(week)
	if err != nil {
		return nil, nil, err
	}

	ids := make(map[string]struct{}, len(items))
	for _, it := range items {
		ids[it.ID] = struct{}{}
	}

	return items, ids, nil
}

// Save replaces the week's archive with items.
func (s *jsonStore) Save(week model.Week, items []model.Item) error {
	path, err := s.path(week)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode archive", goerr.V("path", path))
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write archive file", goerr.V("path", path))
	}

	return nil
}
