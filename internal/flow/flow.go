// Package flow orchestrates a full pipeline run: a sequence of stages
// executed against one input document, with every artifact collected in
// a per-flow directory.
package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/universal-automation-wiki/iterate/internal/stage"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// Policy decides what happens when a stage fails.
type Policy string

const (
	// PolicyStop aborts the flow, writing interrupted flow metadata.
	PolicyStop Policy = "stop"
	// PolicyContinue logs the failure and moves to the next stage.
	PolicyContinue Policy = "continue"
	// PolicyRetry re-runs the stage up to MaxRetries times, then stops.
	PolicyRetry Policy = "retry"
)

// Step is one planned stage run: the stage name and the artifact
// filename inside the flow directory.
type Step struct {
	Stage  string
	Output string
}

// DefaultPlan is the standard page-generation sequence.
func DefaultPlan() []Step {
	return []Step{
		{Stage: "metadata", Output: "1.json"},
		{Stage: "hallucinate-tree", Output: "2.json"},
		{Stage: "automation-timeline", Output: "3.json"},
		{Stage: "automation-challenges", Output: "4.json"},
	}
}

// Metadata is the flow-metadata.json artifact.
type Metadata struct {
	domain.Metadata
	InputFile string   `json:"input_file"`
	StagesRun []string `json:"stages_run"`
}

// Result reports a completed (or interrupted) flow.
type Result struct {
	UUID      string
	Dir       string
	StagesRun []string
}

// Runner executes flows.
type Runner struct {
	registry   *stage.Registry
	baseDir    string
	plan       []Step
	policy     Policy
	maxRetries int
	logger     *slog.Logger
	onStart    func()
	onStage    func(stage string, err error)
}

type Option func(*Runner)

// WithBaseDir sets the directory flows are created under (default "flow").
func WithBaseDir(dir string) Option {
	return func(r *Runner) { r.baseDir = dir }
}

// WithPlan overrides the stage sequence.
func WithPlan(plan []Step) Option {
	return func(r *Runner) { r.plan = plan }
}

// WithPolicy sets the failure policy (default PolicyStop).
func WithPolicy(p Policy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithMaxRetries bounds PolicyRetry re-runs per stage (default 2).
func WithMaxRetries(n int) Option {
	return func(r *Runner) { r.maxRetries = n }
}

// WithLogger sets the flow logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithStartHook registers a callback invoked once per flow start.
func WithStartHook(fn func()) Option {
	return func(r *Runner) { r.onStart = fn }
}

// WithStageHook registers a callback invoked after every stage run
// with its final outcome.
func WithStageHook(fn func(stage string, err error)) Option {
	return func(r *Runner) { r.onStage = fn }
}

// NewRunner creates a flow runner over the given stage registry.
func NewRunner(registry *stage.Registry, opts ...Option) *Runner {
	r := &Runner{
		registry:   registry,
		baseDir:    "flow",
		plan:       DefaultPlan(),
		policy:     PolicyStop,
		maxRetries: 2,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the planned stages against the input document. The
// returned result names the flow directory even when the flow was
// interrupted; the error reports the stage that stopped it.
func (r *Runner) Run(ctx context.Context, in stage.Input, inputFile, breadcrumbs string) (*Result, error) {
	start := time.Now()
	if r.onStart != nil {
		r.onStart()
	}

	flowID := uuid.NewString()
	dir := filepath.Join(r.baseDir, flowID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create flow directory: %w", err)
	}
	result := &Result{UUID: flowID, Dir: dir}

	r.logger.Info("flow started", "uuid", flowID, "stages", len(r.plan))

	if err := writeJSON(filepath.Join(dir, "input.json"), map[string]any(in)); err != nil {
		return result, err
	}
	if breadcrumbs != "" {
		if err := os.WriteFile(filepath.Join(dir, "breadcrumbs.txt"), []byte(breadcrumbs), 0644); err != nil {
			return result, fmt.Errorf("write breadcrumbs: %w", err)
		}
	}

	for i, step := range r.plan {
		r.logger.Info("running stage", "step", i+1, "total", len(r.plan), "stage", step.Stage)

		err := r.runStep(ctx, in, dir, step)
		if r.onStage != nil {
			r.onStage(step.Stage, err)
		}
		if err != nil {
			if r.policy == PolicyContinue {
				r.logger.Warn("stage failed, continuing", "stage", step.Stage, "error", err)
				continue
			}
			r.logger.Error("stage failed, stopping flow", "stage", step.Stage, "error", err)
			r.writeMetadata(dir, start, inputFile, result.StagesRun, true)
			return result, fmt.Errorf("stage %s: %w", step.Stage, err)
		}
		result.StagesRun = append(result.StagesRun, step.Stage)
	}

	if err := r.runAlternatives(ctx, in, dir); err != nil {
		r.writeMetadata(dir, start, inputFile, result.StagesRun, true)
		return result, err
	}

	if err := r.writeMetadata(dir, start, inputFile, result.StagesRun, false); err != nil {
		return result, err
	}

	r.logger.Info("flow completed", "uuid", flowID, "elapsed", time.Since(start))
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, in stage.Input, dir string, step Step) error {
	st, err := r.registry.Get(step.Stage)
	if err != nil {
		return err
	}

	attempts := 1
	if r.policy == PolicyRetry {
		attempts += r.maxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := st.Run(ctx, in)
		if err == nil {
			return writeJSON(filepath.Join(dir, step.Output), record)
		}
		lastErr = err
		if attempt < attempts {
			r.logger.Warn("stage failed, retrying", "stage", step.Stage, "attempt", attempt, "error", err)
		}
	}
	return lastErr
}

// runAlternatives generates extra trees with a temperature ladder so the
// flow captures diverse decompositions of the same task.
func (r *Runner) runAlternatives(ctx context.Context, in stage.Input, dir string) error {
	n := alternativeCount(in)
	if n == 0 {
		return nil
	}

	tree, err := r.registry.Get("hallucinate-tree")
	if err != nil {
		return err
	}

	inputsDir := filepath.Join(dir, "inputs")
	if err := os.MkdirAll(inputsDir, 0755); err != nil {
		return fmt.Errorf("create alternative inputs directory: %w", err)
	}

	for i := 0; i < n; i++ {
		alt := alternativeInput(in, i)

		if err := writeJSON(filepath.Join(inputsDir, fmt.Sprintf("alt_input_%d.json", i+1)), map[string]any(alt)); err != nil {
			return err
		}

		record, err := tree.Run(ctx, alt)
		if err != nil {
			return fmt.Errorf("alternative tree %d: %w", i+1, err)
		}
		if err := writeJSON(filepath.Join(dir, fmt.Sprintf("alt%d.json", i+1)), record); err != nil {
			return err
		}
		r.logger.Info("alternative tree generated", "index", i+1)
	}
	return nil
}

func alternativeCount(in stage.Input) int {
	switch v := in["alternatives"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// alternativeInput derives a variation of the input document with a
// distinct temperature and a named approach.
func alternativeInput(in stage.Input, i int) stage.Input {
	alt := make(stage.Input, len(in)+2)
	for k, v := range in {
		alt[k] = v
	}

	params := make(map[string]any)
	if existing, ok := in["parameters"].(map[string]any); ok {
		for k, v := range existing {
			params[k] = v
		}
	}
	params["temperature"] = 0.3 + float64(i)*0.15
	alt["parameters"] = params

	switch i {
	case 0:
		alt["approach_name"] = "Efficiency-Optimized Approach"
		alt["approach_description"] = "This approach prioritizes minimizing resource usage and production time."
	case 1:
		alt["approach_name"] = "Safety-Optimized Approach"
		alt["approach_description"] = "This approach focuses on maximizing safety and reliability."
	case 2:
		alt["approach_name"] = "Hybridized Approach"
		alt["approach_description"] = "This approach balances efficiency with safety considerations."
	default:
		alt["approach_name"] = fmt.Sprintf("Alternative Approach %d", i+1)
		alt["approach_description"] = "An alternative methodology for approaching this process."
	}
	return alt
}

func (r *Runner) writeMetadata(dir string, start time.Time, inputFile string, stagesRun []string, interrupted bool) error {
	task := "Complete Automation Flow"
	if interrupted {
		task = "Complete Automation Flow (interrupted)"
	}

	meta := Metadata{
		Metadata:  domain.NewMetadata(task, start),
		InputFile: inputFile,
		StagesRun: stagesRun,
	}
	return writeJSON(filepath.Join(dir, "flow-metadata.json"), meta)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
