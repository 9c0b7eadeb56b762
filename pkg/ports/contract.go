package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// RunRecordStoreContract runs a suite of tests verifying that a
// RecordStore implementation adheres to the interface contract.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	ctx := context.Background()
	stage := "contract-test"
	id := "contract-" + time.Now().Format("20060102150405")

	record := domain.TreeRecord{
		Metadata: domain.Metadata{
			UUID:        id,
			DateCreated: "2025-03-01T12:30:45.123456",
			Task:        "Hallucinate Tree",
			TimeTaken:   "0:00:10",
		},
		Tree: domain.Node{Step: "Build a website", Children: []domain.Node{
			{Step: "Develop the backend"},
		}},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, stage, id, record)
		require.NoError(t, err, "Save should not return error")

		raw, err := store.Load(ctx, stage, id)
		require.NoError(t, err, "Load should not return error")

		var loaded domain.TreeRecord
		require.NoError(t, json.Unmarshal(raw, &loaded))
		assert.Equal(t, record.UUID, loaded.UUID)
		assert.Equal(t, record.Tree.Step, loaded.Tree.Step)
		require.Len(t, loaded.Tree.Children, 1)
	})

	t.Run("Save Raw JSON", func(t *testing.T) {
		rawID := id + "-raw"
		encoded, err := json.MarshalIndent(record, "", "    ")
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, stage, rawID, json.RawMessage(encoded)))
		defer func() { _ = store.Delete(ctx, stage, rawID) }()

		raw, err := store.Load(ctx, stage, rawID)
		require.NoError(t, err)

		// The stored content must still be a JSON object, not a
		// base64-encoded string of the original bytes.
		var loaded map[string]any
		require.NoError(t, json.Unmarshal(raw, &loaded))
		assert.Equal(t, "Hallucinate Tree", loaded["task"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, stage, "missing-"+id)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, stage, id, record))
		require.NoError(t, store.Delete(ctx, stage, id))

		_, err := store.Load(ctx, stage, id)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")

		// Double delete is a no-op.
		assert.NoError(t, store.Delete(ctx, stage, id))
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, stage, id1, record))
		require.NoError(t, store.Save(ctx, stage, id2, record))
		defer func() {
			_ = store.Delete(ctx, stage, id1)
			_ = store.Delete(ctx, stage, id2)
		}()

		ids, err := store.List(ctx, stage)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})

	t.Run("List Empty Stage", func(t *testing.T) {
		ids, err := store.List(ctx, "never-used-stage")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
