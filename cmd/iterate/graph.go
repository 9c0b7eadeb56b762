package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"

	"github.com/universal-automation-wiki/iterate/internal/presentation/graph"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

var graphCmd = &cobra.Command{
	Use:   "graph <record.json>",
	Short: "Export a task tree as a Mermaid diagram",
	Long:  `Reads a tree or expansion record and outputs a Mermaid flowchart (graph TD). For expansion records the expanded node is highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse record %s: %w", args[0], err)
		}

		raw, ok := doc["tree"].(map[string]any)
		if !ok {
			return fmt.Errorf("%s carries no tree", args[0])
		}
		var tree domain.Node
		if err := mapstructure.WeakDecode(raw, &tree); err != nil {
			return fmt.Errorf("decode tree: %w", err)
		}

		var overlay *graph.Overlay
		if rawPath, ok := doc["expanded_node_path"].([]any); ok {
			path := make([]int, len(rawPath))
			for i, v := range rawPath {
				if f, ok := v.(float64); ok {
					path[i] = int(f)
				}
			}
			overlay = &graph.Overlay{HighlightPath: path}
		}

		fmt.Print(graph.GenerateMermaid(tree, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
