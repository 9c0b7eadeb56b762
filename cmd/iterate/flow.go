package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flowCmd = &cobra.Command{
	Use:   "flow <input.json>",
	Short: "Run the full stage sequence for one input document",
	Long:  `Runs metadata, tree, timeline and challenges generation against a single input document, collecting every artifact in a per-flow directory under the flow base dir.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, logger, err := loadPipeline(cmd)
		if err != nil {
			return err
		}

		input, err := readInput(args[0])
		if err != nil {
			return err
		}

		breadcrumbs, _ := cmd.Flags().GetString("breadcrumbs")

		dir, err := p.RunFlow(cmd.Context(), input, args[0], breadcrumbs)
		if err != nil {
			if dir != "" {
				logger.Error("flow interrupted", "dir", dir, "error", err)
			}
			return err
		}

		fmt.Println(dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flowCmd)
	flowCmd.Flags().String("breadcrumbs", "", "Provenance note stored alongside the flow artifacts")
}
