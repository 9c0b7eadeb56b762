package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/universal-automation-wiki/iterate/internal/stage"
)

// stageCommands maps CLI subcommands to registry stage names.
var stageCommands = []struct {
	use   string
	stage string
	short string
}{
	{"tree", "hallucinate-tree", "Generate a task decomposition tree"},
	{"expand", "expand-node", "Expand one node of an existing task tree"},
	{"metadata", "metadata", "Generate wiki page metadata for a topic"},
	{"timeline", "automation-timeline", "Generate an automation timeline for a topic"},
	{"challenges", "automation-challenges", "Generate automation challenges for a topic"},
	{"steps", "extract-steps", "Extract numbered steps from article text"},
	{"summary", "summary", "Summarize input text"},
	{"queries", "search-queries", "Generate search queries for a task"},
	{"basic-english", "basic-english", "Translate text into BASIC English"},
	{"ste", "simplified-technical-english", "Translate text into Simplified Technical English"},
	{"merge-facts", "merge-duplicate-facts", "Merge duplicate facts into a deduplicated list"},
	{"facts", "facts", "Generate facts about a topic"},
}

func init() {
	for _, sc := range stageCommands {
		name := sc.stage
		cmd := &cobra.Command{
			Use:   sc.use + " <input.json> [output.json]",
			Short: sc.short,
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStage(cmd, name, args)
			},
		}
		rootCmd.AddCommand(cmd)
	}
}

// runStage reads the input document, executes the stage, and writes
// the record to the given path or to the record store under
// <output>/<stage>/<uuid>.json.
func runStage(cmd *cobra.Command, name string, args []string) error {
	p, logger, err := loadPipeline(cmd)
	if err != nil {
		return err
	}

	input, err := readInput(args[0])
	if err != nil {
		return err
	}

	record, err := p.RunStage(cmd.Context(), name, input)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if len(args) > 1 {
		if err := os.WriteFile(args[1], data, 0644); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		fmt.Println(args[1])
		return nil
	}

	id := recordID(record)
	if err := p.Store.Save(cmd.Context(), name, id, record); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	logger.Info("record saved", "stage", name, "id", id)
	fmt.Printf("%s/%s\n", name, id)
	return nil
}

func readInput(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse input %s: %w", path, err)
	}
	return input, nil
}

func recordID(record any) string {
	if env, ok := record.(stage.Enveloped); ok {
		return env.Envelope().UUID
	}
	return "record"
}
