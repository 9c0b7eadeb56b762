package iterate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-automation-wiki/iterate/pkg/config"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(Version))
}

func testPipeline(t *testing.T, completer ports.Completer) *Pipeline {
	t.Helper()

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "output")
	cfg.FlowDir = filepath.Join(t.TempDir(), "flow")
	cfg.Model = "test-model"

	p, err := New(cfg, WithCompleter(completer))
	require.NoError(t, err)
	return p
}

func TestRunStage(t *testing.T) {
	var models []string
	completer := ports.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		models = append(models, req.Model)
		return `[{"step": "Mix dough"}, {"step": "Bake"}]`, nil
	})

	p := testPipeline(t, completer)

	record, err := p.RunStage(context.Background(), "hallucinate-tree", map[string]any{
		"task": "Bake bread", "depth": 1,
	})
	require.NoError(t, err)

	tree, ok := record.(domain.TreeRecord)
	require.True(t, ok)
	assert.Equal(t, "Bake bread", tree.Tree.Step)
	assert.Len(t, tree.Tree.Children, 2)

	// configured model reaches the completer when the input names none
	require.NotEmpty(t, models)
	assert.Equal(t, "test-model", models[0])
}

func TestRunStageUnknown(t *testing.T) {
	p := testPipeline(t, ports.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		return "", nil
	}))

	_, err := p.RunStage(context.Background(), "no-such-stage", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestRunFlow(t *testing.T) {
	completer := ports.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		switch {
		case strings.Contains(req.System, "hierarchical steps"):
			return `[{"step": "Mix dough"}]`, nil
		case strings.Contains(req.System, "timelines"):
			return `{"historical": {"1950s": "Industrial ovens"}, "predictions": {}}`, nil
		case strings.Contains(req.System, "automation challenges"):
			return `{"challenges": [{"title": "Dough handling", "explanation": "Sticky."}]}`, nil
		default:
			return `{"title": "Bread Baking"}`, nil
		}
	})

	p := testPipeline(t, completer)

	dir, err := p.RunFlow(context.Background(), map[string]any{
		"task": "Bake bread", "topic": "Bread Baking", "depth": 1,
	}, "input.json", "")
	require.NoError(t, err)

	for _, name := range []string{"input.json", "1.json", "2.json", "3.json", "4.json", "flow-metadata.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestStages(t *testing.T) {
	p := testPipeline(t, ports.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		return "", nil
	}))

	names := p.Stages()
	assert.Contains(t, names, "hallucinate-tree")
	assert.Contains(t, names, "expand-node")
	assert.Len(t, names, 12)
}
