package ports

import (
	"context"
	"encoding/json"
)

// RecordStore persists pipeline records. Records are grouped by the stage
// that produced them and addressed by their envelope UUID, mirroring the
// output/<stage>/<uuid>.json layout of the file store.
type RecordStore interface {
	// Save persists a record under the given stage and id. The store
	// marshals the record itself; pass a json.RawMessage to store
	// already-encoded JSON verbatim.
	Save(ctx context.Context, stage, id string, record any) error

	// Load retrieves the raw JSON of a record.
	// Returns domain.ErrRecordNotFound if the record does not exist.
	Load(ctx context.Context, stage, id string) (json.RawMessage, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, stage, id string) error

	// List returns the ids of all records saved under a stage.
	List(ctx context.Context, stage string) ([]string, error)
}
