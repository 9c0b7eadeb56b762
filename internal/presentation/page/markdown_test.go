package page

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

func TestTreeNestedList(t *testing.T) {
	tree := domain.Node{
		Step: "Build a website",
		Children: []domain.Node{
			{Step: "Design the layout"},
			{Step: "Develop the backend", Children: []domain.Node{
				{Step: "Set up the database"},
			}},
		},
	}

	out := Tree(tree)
	assert.Equal(t, "- Build a website\n"+
		"    - Design the layout\n"+
		"    - Develop the backend\n"+
		"        - Set up the database\n", out)
}

func TestRecordExpansion(t *testing.T) {
	doc := map[string]any{
		"uuid":         "abc-123",
		"date_created": "2025-03-28T16:15:34.203705",
		"task":         "Node Expansion",
		"time_taken":   "0:00:03.817941",
		"tree": map[string]any{
			"step": "Build a website",
			"children": []any{
				map[string]any{"step": "Design the layout"},
			},
		},
		"expanded_node_path": []any{float64(0)},
		"expanded_node_step": "Design the layout",
	}

	out := Record(doc)
	assert.Contains(t, out, "# Node Expansion")
	assert.Contains(t, out, "| Uuid | abc-123 |")
	assert.Contains(t, out, "## Task Tree")
	assert.Contains(t, out, "Expanded node: **Design the layout**")
	assert.Contains(t, out, "- Build a website\n    - Design the layout")
}

func TestRecordTimelineAndChallenges(t *testing.T) {
	doc := map[string]any{
		"timeline": map[string]any{
			"historical":  map[string]any{"1950s": "Industrial ovens", "1990s": "PLC lines"},
			"predictions": map[string]any{"2030s": "Robotic bakeries"},
		},
		"challenges": map[string]any{
			"topic": "Bread Baking",
			"challenges": []any{
				map[string]any{"title": "Dough handling", "explanation": "Dough is sticky."},
			},
		},
	}

	out := Record(doc)
	assert.Contains(t, out, "## Automation Timeline")
	assert.Contains(t, out, "- **1950s**: Industrial ovens")
	assert.Contains(t, out, "- **2030s**: Robotic bakeries")
	assert.Contains(t, out, "### Dough handling")

	// historical decades come out sorted
	assert.Less(t, strings.Index(out, "1950s"), strings.Index(out, "1990s"))
}

func TestRecordTextOutputs(t *testing.T) {
	doc := map[string]any{
		"output_text":     []any{"First paragraph.", "Second paragraph."},
		"search_queries":  []any{"how to bake bread"},
		"extracted_steps": []any{"Mix dough", "Bake"},
	}

	out := Record(doc)
	assert.Contains(t, out, "## Output\n\nFirst paragraph.\n\nSecond paragraph.")
	assert.Contains(t, out, "- how to bake bread")
	assert.Contains(t, out, "1. Mix dough\n2. Bake")
}

func writeDoc(t *testing.T, dir, name string, doc any) {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestAssemble(t *testing.T) {
	dir := t.TempDir()

	writeDoc(t, dir, "flow-metadata.json", map[string]any{
		"uuid": "flow-1", "task": "Complete Automation Flow", "time_taken": "0:01:00",
	})
	writeDoc(t, dir, "1.json", map[string]any{
		"task":          "Page Metadata Generation",
		"page_metadata": map[string]any{"title": "Bread Baking", "automation_status": "Early Automation"},
	})
	writeDoc(t, dir, "2.json", map[string]any{
		"task": "Hallucinate Tree",
		"tree": map[string]any{"step": "Bake bread", "children": []any{map[string]any{"step": "Mix dough"}}},
	})
	writeDoc(t, dir, "alt1.json", map[string]any{
		"task": "Hallucinate Tree",
		"tree": map[string]any{"step": "Bake bread", "children": []any{map[string]any{"step": "Prepare starter"}}},
	})

	out, err := Assemble(dir)
	require.NoError(t, err)

	assert.Contains(t, out, "# Bread Baking")
	assert.Contains(t, out, "| Uuid | flow-1 |")
	assert.Contains(t, out, "- Bake bread\n    - Mix dough")
	assert.Contains(t, out, "## Alternative Approach 1")
	assert.Contains(t, out, "Prepare starter")

	// per-stage envelopes are stripped from sections
	assert.NotContains(t, out, "# Page Metadata Generation")
}

func TestAssembleMissingMetadata(t *testing.T) {
	_, err := Assemble(t.TempDir())
	require.Error(t, err)
}
