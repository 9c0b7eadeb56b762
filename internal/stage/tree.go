package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/universal-automation-wiki/iterate/internal/parse"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

const treeSystemPrompt = "You are an AI that breaks down complex tasks into hierarchical steps. " +
	"For each task, generate a set of sub-steps needed to complete it. " +
	"Maintain clarity and logical order. " +
	"Format your response as a valid JSON array of step objects, where each object has a 'step' field " +
	"and optionally a 'children' array containing substeps. " +
	"Example format: [{'step': 'Main step 1', 'children': [{'step': 'Substep 1.1'}, {'step': 'Substep 1.2'}]}, {'step': 'Main step 2'}] " +
	"Your entire response must be parseable as JSON. Do not include markdown formatting, code blocks, or commentary."

// Tree generates a full task decomposition tree from a single task label.
type Tree struct {
	completer ports.Completer
	logger    *slog.Logger
}

// NewTree creates the tree generation stage.
func NewTree(completer ports.Completer, logger *slog.Logger) *Tree {
	return &Tree{completer: completer, logger: logger}
}

func (t *Tree) Name() string { return "hallucinate-tree" }

// TreeInput is the input document for tree generation.
type TreeInput struct {
	common `json:",squash"`
	Task   string `json:"task"`
	Depth  int    `json:"depth"`
}

// Run decomposes the task recursively down to the requested depth
// (default 2) and returns a TreeRecord.
func (t *Tree) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts TreeInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}
	if opts.Task == "" {
		opts.Task = "Unknown Task"
	}
	if opts.Depth <= 0 {
		opts.Depth = 2
	}

	tree, err := t.expandStep(ctx, opts, opts.Task, 0)
	if err != nil {
		return nil, err
	}
	tree = parse.RepairEmbedded(tree)

	return domain.TreeRecord{
		Metadata: domain.NewMetadata("Hallucinate Tree", start),
		Tree:     tree,
	}, nil
}

func (t *Tree) expandStep(ctx context.Context, opts TreeInput, step string, depth int) (domain.Node, error) {
	if depth >= opts.Depth {
		return domain.Node{Step: step, Children: []domain.Node{}}, nil
	}

	prompt := "Break down the following task into 3-7 sub-steps. " +
		fmt.Sprintf("Task: %s\n\n", step) +
		"Return ONLY a JSON array of step objects, with no markdown formatting, code blocks, or extra text."

	response, err := t.completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  treeSystemPrompt,
		Prompt:  prompt,
		Options: opts.Parameters,
	})
	if err != nil {
		return domain.Node{}, fmt.Errorf("expand %q: %w", step, err)
	}

	substeps := parse.Nodes(response)
	t.logger.Debug("expanded step", "step", step, "depth", depth, "substeps", len(substeps))

	// Substeps the model left childless get their own expansion round
	// until the depth budget runs out.
	if depth+1 < opts.Depth {
		for i, sub := range substeps {
			if len(sub.Children) > 0 || sub.Step == "" {
				continue
			}
			child, err := t.expandStep(ctx, opts, sub.Step, depth+1)
			if err != nil {
				return domain.Node{}, err
			}
			substeps[i].Children = child.Children
		}
	}

	return domain.Node{Step: step, Children: substeps}, nil
}
