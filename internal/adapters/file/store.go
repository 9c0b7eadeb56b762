// Package file implements ports.RecordStore on the local filesystem,
// mirroring the historical output layout: <base>/<stage>/<uuid>.json.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// Store persists records as indented JSON files.
type Store struct {
	BasePath string
}

// NewStore creates a file store rooted at basePath. If basePath is empty,
// it defaults to "output".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = "output"
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(stage, id string) string {
	return filepath.Join(s.BasePath, stage, id+".json")
}

// Save writes the record under <base>/<stage>/<id>.json, creating the
// stage directory as needed.
func (s *Store) Save(ctx context.Context, stage, id string, record any) error {
	if stage == "" || id == "" {
		return fmt.Errorf("stage and id cannot be empty")
	}

	dir := filepath.Join(s.BasePath, stage)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure output directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := os.WriteFile(s.path(stage, id), data, 0644); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}
	return nil
}

// Load reads a record's raw JSON.
func (s *Store) Load(ctx context.Context, stage, id string) (json.RawMessage, error) {
	if stage == "" || id == "" {
		return nil, fmt.Errorf("stage and id cannot be empty")
	}

	data, err := os.ReadFile(s.path(stage, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	return data, nil
}

// Delete removes the record file.
func (s *Store) Delete(ctx context.Context, stage, id string) error {
	err := os.Remove(s.path(stage, id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	return nil
}

// List returns the ids of all records saved under a stage.
func (s *Store) List(ctx context.Context, stage string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.BasePath, stage))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			name := entry.Name()
			ids = append(ids, name[:len(name)-len(".json")])
		}
	}
	return ids, nil
}
