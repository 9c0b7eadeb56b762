package validator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

func validMetadata() domain.Metadata {
	return domain.Metadata{
		UUID:        "5ae4df8f-2e7e-4f8f-9f1b-3a9c8d2f6b7e",
		DateCreated: "2025-03-22T18:56:02.651521",
		Task:        "Node Expansion",
		TimeTaken:   "0:00:41.618741",
	}
}

func TestValidateMetadata_Valid(t *testing.T) {
	assert.NoError(t, ValidateMetadata(validMetadata()))
}

func TestValidateMetadata_AcceptsZonedTimestamps(t *testing.T) {
	m := validMetadata()
	m.DateCreated = "2025-03-22T18:56:02Z"
	assert.NoError(t, ValidateMetadata(m))
}

func TestValidateMetadata_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Metadata)
		key    string
	}{
		{"bad uuid", func(m *domain.Metadata) { m.UUID = "not-a-uuid" }, "uuid"},
		{"bad timestamp", func(m *domain.Metadata) { m.DateCreated = "yesterday" }, "date_created"},
		{"missing task", func(m *domain.Metadata) { m.Task = "" }, "task"},
		{"missing time_taken", func(m *domain.Metadata) { m.TimeTaken = "" }, "time_taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetadata()
			tt.mutate(&m)

			err := ValidateMetadata(m)
			require.Error(t, err)

			errs := ValidationErrors(err)
			require.Len(t, errs, 1)
			verr, ok := errs[0].(*ValidationError)
			require.True(t, ok, "error should be *ValidationError, got %T", errs[0])
			assert.Equal(t, tt.key, verr.Key)
		})
	}
}

func TestValidateTree(t *testing.T) {
	tree := domain.Node{Step: "root", Children: []domain.Node{
		{Step: "ok"},
		{Step: "", Children: []domain.Node{{Step: "child of broken"}}},
	}}

	err := ValidateTree(tree)
	require.Error(t, err)
	errs := ValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "tree[1]")
}

func TestValidateExpansion_Fixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "expand-node.json"))
	require.NoError(t, err)

	var rec domain.ExpansionRecord
	require.NoError(t, json.Unmarshal(data, &rec))

	require.NoError(t, ValidateExpansion(rec))

	// Walking tree by [1] must land on the recorded step.
	node, err := rec.ExpandedNode()
	require.NoError(t, err)
	assert.Equal(t, "Develop the backend", node.Step)
}

func TestValidateExpansion_PathMismatch(t *testing.T) {
	rec := domain.ExpansionRecord{
		Metadata: validMetadata(),
		Tree: domain.Node{Step: "root", Children: []domain.Node{
			{Step: "first"}, {Step: "second"},
		}},
		ExpandedNodePath: []int{0},
		ExpandedNodeStep: "second",
	}

	err := ValidateExpansion(rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expanded_node_step")
}

func TestValidateExpansion_DanglingPath(t *testing.T) {
	rec := domain.ExpansionRecord{
		Metadata:         validMetadata(),
		Tree:             domain.Node{Step: "root"},
		ExpandedNodePath: []int{3},
		ExpandedNodeStep: "anything",
	}

	err := ValidateExpansion(rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expanded_node_path")
}

func TestValidateExpansion_PlainTreeRecord(t *testing.T) {
	// Records without expansion fields validate as plain trees.
	rec := domain.ExpansionRecord{
		Metadata: validMetadata(),
		Tree:     domain.Node{Step: "root"},
	}
	assert.NoError(t, ValidateExpansion(rec))
}

func TestValidateRaw(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "expand-node.json"))
	require.NoError(t, err)
	assert.NoError(t, ValidateRaw(data))

	assert.Error(t, ValidateRaw([]byte("{not json")))
}
