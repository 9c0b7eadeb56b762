package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-automation-wiki/iterate/internal/logging"
	"github.com/universal-automation-wiki/iterate/internal/validator"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

func websiteTree() domain.Node {
	return domain.Node{
		Step: "Build a website",
		Children: []domain.Node{
			{Step: "Design the layout"},
			{Step: "Develop the backend"},
			{Step: "Deploy the site"},
		},
	}
}

func treeInput(tree domain.Node) map[string]any {
	// Input documents arrive as decoded JSON, so the tree is a raw map.
	return map[string]any{
		"step": tree.Step,
		"children": func() []any {
			var out []any
			for _, c := range tree.Children {
				out = append(out, treeInput(c))
			}
			return out
		}(),
	}
}

func TestExpand_ByPath(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`[{"step": "Set up the database"}, {"step": "Write API endpoints"}]`,
	}}
	expand := NewExpand(completer, logging.NewNop())

	rec, err := expand.Run(context.Background(), Input{
		"tree":      treeInput(websiteTree()),
		"node_path": []any{float64(1)},
	})
	require.NoError(t, err)

	record, ok := rec.(domain.ExpansionRecord)
	require.True(t, ok, "Run should return an ExpansionRecord, got %T", rec)

	assert.Equal(t, "Node Expansion", record.Task)
	assert.Equal(t, []int{1}, record.ExpandedNodePath)
	assert.Equal(t, "Develop the backend", record.ExpandedNodeStep)

	node, err := record.ExpandedNode()
	require.NoError(t, err)
	require.Len(t, node.Children, 2)
	assert.Equal(t, "Set up the database", node.Children[0].Step)

	// The record must satisfy the persisted-format invariant.
	require.NoError(t, validator.ValidateExpansion(record))

	// Siblings are untouched.
	sibling, err := record.Tree.NodeAt([]int{0})
	require.NoError(t, err)
	assert.Equal(t, "Design the layout", sibling.Step)
	assert.Empty(t, sibling.Children)
}

func TestExpand_ByStepText(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{`[{"step": "Pick a host"}]`}}
	expand := NewExpand(completer, logging.NewNop())

	rec, err := expand.Run(context.Background(), Input{
		"tree":      treeInput(websiteTree()),
		"node_step": "Deploy the site",
	})
	require.NoError(t, err)

	record := rec.(domain.ExpansionRecord)
	assert.Equal(t, []int{2}, record.ExpandedNodePath)
	assert.Equal(t, "Deploy the site", record.ExpandedNodeStep)
}

func TestExpand_RootByStepText(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{`[{"step": "Plan"}]`}}
	expand := NewExpand(completer, logging.NewNop())

	rec, err := expand.Run(context.Background(), Input{
		"tree":      treeInput(websiteTree()),
		"node_step": "Build a website",
	})
	require.NoError(t, err)

	record := rec.(domain.ExpansionRecord)
	require.NotNil(t, record.ExpandedNodePath)
	assert.Empty(t, record.ExpandedNodePath, "root expansion records an empty path")
	require.Len(t, record.Tree.Children, 1)
	assert.Equal(t, "Plan", record.Tree.Children[0].Step)
}

func TestExpand_MergeKeepsExistingChildren(t *testing.T) {
	tree := websiteTree()
	tree.Children[1].Children = []domain.Node{{Step: "Set up the database"}}

	completer := &scriptedCompleter{responses: []string{`[{"step": "Write API endpoints"}]`}}
	expand := NewExpand(completer, logging.NewNop())

	rec, err := expand.Run(context.Background(), Input{
		"tree":             treeInput(tree),
		"node_path":        []any{float64(1)},
		"replace_existing": false,
	})
	require.NoError(t, err)

	node, err := rec.(domain.ExpansionRecord).ExpandedNode()
	require.NoError(t, err)
	require.Len(t, node.Children, 2)
	assert.Equal(t, "Set up the database", node.Children[0].Step)
	assert.Equal(t, "Write API endpoints", node.Children[1].Step)
}

func TestExpand_ReplaceDiscardsExistingChildren(t *testing.T) {
	tree := websiteTree()
	tree.Children[1].Children = []domain.Node{{Step: "Old substep"}}

	completer := &scriptedCompleter{responses: []string{`[{"step": "New substep"}]`}}
	expand := NewExpand(completer, logging.NewNop())

	rec, err := expand.Run(context.Background(), Input{
		"tree":      treeInput(tree),
		"node_path": []any{float64(1)},
	})
	require.NoError(t, err)

	node, err := rec.(domain.ExpansionRecord).ExpandedNode()
	require.NoError(t, err)
	require.Len(t, node.Children, 1)
	assert.Equal(t, "New substep", node.Children[0].Step)
}

func TestExpand_MissingNode(t *testing.T) {
	expand := NewExpand(&scriptedCompleter{}, logging.NewNop())

	_, err := expand.Run(context.Background(), Input{
		"tree":      treeInput(websiteTree()),
		"node_path": []any{float64(7)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNodeNotFound))

	_, err = expand.Run(context.Background(), Input{
		"tree":      treeInput(websiteTree()),
		"node_step": "No such step",
	})
	assert.True(t, errors.Is(err, domain.ErrNodeNotFound))
}

func TestExpand_NoSelector(t *testing.T) {
	expand := NewExpand(&scriptedCompleter{}, logging.NewNop())
	_, err := expand.Run(context.Background(), Input{"tree": treeInput(websiteTree())})
	assert.True(t, errors.Is(err, domain.ErrNodeNotFound))
}

func TestExpand_FallbackSubstepOnUnparseableResponse(t *testing.T) {
	// An empty-array response still yields the placeholder substep.
	completer := &scriptedCompleter{responses: []string{`[]`}}
	expand := NewExpand(completer, logging.NewNop())

	rec, err := expand.Run(context.Background(), Input{
		"tree":      treeInput(websiteTree()),
		"node_path": []any{float64(0)},
	})
	require.NoError(t, err)

	node, err := rec.(domain.ExpansionRecord).ExpandedNode()
	require.NoError(t, err)
	require.Len(t, node.Children, 1)
	assert.Equal(t, "No valid substeps could be generated", node.Children[0].Step)
}
