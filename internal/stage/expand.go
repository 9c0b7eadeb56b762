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

const expandSystemPrompt = "You are an AI that breaks down tasks into detailed steps. " +
	"For the given task, generate a set of specific, actionable substeps needed to complete it. " +
	"Maintain clarity and logical order. " +
	"Format your response as a valid JSON array of step objects, where each object has a 'step' field. " +
	"Example format: [{'step': 'First detailed step'}, {'step': 'Second detailed step'}] " +
	"Your entire response must be parseable as JSON. Do not include markdown formatting or commentary."

// Expand generates substeps for one node of an existing tree and writes
// the expanded node back at its path.
type Expand struct {
	completer ports.Completer
	logger    *slog.Logger
}

// NewExpand creates the node expansion stage.
func NewExpand(completer ports.Completer, logger *slog.Logger) *Expand {
	return &Expand{completer: completer, logger: logger}
}

func (e *Expand) Name() string { return "expand-node" }

// ExpandInput is the input document for node expansion. The target node
// is addressed either by an index path or by its step text.
type ExpandInput struct {
	common          `json:",squash"`
	Tree            domain.Node `json:"tree"`
	NodePath        []int       `json:"node_path"`
	NodeStep        string      `json:"node_step"`
	ReplaceExisting *bool       `json:"replace_existing"`
	NumSubsteps     int         `json:"num_substeps"`
}

// Run expands the addressed node and returns an ExpansionRecord whose
// expanded_node_path and expanded_node_step always agree with the tree.
func (e *Expand) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts ExpandInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	target, path, err := e.locate(opts)
	if err != nil {
		return nil, err
	}

	e.logger.Info("expanding node", "step", target.Step, "path", path)

	substeps, err := e.generateSubsteps(ctx, opts, target)
	if err != nil {
		return nil, err
	}

	expanded := target.Clone()
	replace := opts.ReplaceExisting == nil || *opts.ReplaceExisting
	if replace || len(expanded.Children) == 0 {
		expanded.Children = substeps
	} else {
		expanded.Children = append(expanded.Children, substeps...)
	}

	updated, err := opts.Tree.ReplaceAt(path, expanded)
	if err != nil {
		return nil, fmt.Errorf("write expanded node back: %w", err)
	}

	return domain.ExpansionRecord{
		Metadata:         domain.NewMetadata("Node Expansion", start),
		Tree:             updated,
		ExpandedNodePath: path,
		ExpandedNodeStep: target.Step,
	}, nil
}

// locate resolves the target node, preferring the index path over the
// step text. The returned path is never nil so it serializes as [] for
// a root expansion.
func (e *Expand) locate(opts ExpandInput) (domain.Node, []int, error) {
	if len(opts.NodePath) > 0 {
		node, err := opts.Tree.NodeAt(opts.NodePath)
		if err != nil {
			return domain.Node{}, nil, fmt.Errorf("node_path %v: %w", opts.NodePath, err)
		}
		return node, opts.NodePath, nil
	}

	if opts.NodeStep != "" {
		node, path, ok := opts.Tree.Find(opts.NodeStep)
		if !ok {
			return domain.Node{}, nil, fmt.Errorf("node_step %q: %w", opts.NodeStep, domain.ErrNodeNotFound)
		}
		if path == nil {
			path = []int{}
		}
		return node, path, nil
	}

	return domain.Node{}, nil, fmt.Errorf("input names neither node_path nor node_step: %w", domain.ErrNodeNotFound)
}

func (e *Expand) generateSubsteps(ctx context.Context, opts ExpandInput, target domain.Node) ([]domain.Node, error) {
	substepRange := "3-7"
	if opts.NumSubsteps > 0 {
		substepRange = fmt.Sprintf("%d", opts.NumSubsteps)
	}

	step := target.Step
	if step == "" {
		step = "Unknown Task"
	}

	prompt := fmt.Sprintf("Break down the following task into %s detailed substeps:\n\n", substepRange) +
		fmt.Sprintf("Task: %s\n\n", step) +
		"Return ONLY a JSON array of step objects, with no markdown formatting, code blocks, or extra text."

	response, err := e.completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  expandSystemPrompt,
		Prompt:  prompt,
		Options: opts.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("expand node %q: %w", target.Step, err)
	}

	substeps := parse.Nodes(response)
	if len(substeps) == 0 {
		substeps = []domain.Node{{Step: "No valid substeps could be generated", Children: []domain.Node{}}}
	}
	return substeps, nil
}
