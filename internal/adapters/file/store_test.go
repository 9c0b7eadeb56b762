package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-automation-wiki/iterate/internal/adapters/file"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ports.RunRecordStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	base := t.TempDir()
	store := file.NewStore(base)

	rec := domain.TreeRecord{
		Metadata: domain.Metadata{
			UUID:        "0b9c2a65-9df1-4f3e-8a6d-1f2e3c4b5a69",
			DateCreated: "2025-03-01T12:30:45.123456",
			Task:        "Hallucinate Tree",
			TimeTaken:   "0:00:10",
		},
		Tree: domain.Node{Step: "Build a website"},
	}

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "hallucinate-tree", rec.UUID, rec))

	// output/<stage>/<uuid>.json with indented JSON.
	path := filepath.Join(base, "hallucinate-tree", rec.UUID+".json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "    \"uuid\"")
}

func TestFileStore_EmptyArgs(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", "id", struct{}{}))
	assert.Error(t, store.Save(ctx, "stage", "", struct{}{}))
	_, err := store.Load(ctx, "", "id")
	assert.Error(t, err)
}
