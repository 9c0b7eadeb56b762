package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/universal-automation-wiki/iterate/internal/presentation/page"
	"github.com/universal-automation-wiki/iterate/internal/presentation/tui"
)

var showCmd = &cobra.Command{
	Use:   "show <record.json | flow-dir>",
	Short: "Render a record or a flow directory as markdown",
	Long:  `Assembles the record (or every record in a flow directory) into a markdown page and renders it to the terminal. When stdout is not a terminal the raw markdown is printed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markdown, err := assemble(args[0])
		if err != nil {
			return err
		}

		render := tui.NewRenderer()
		out, err := render(markdown)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func assemble(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return page.Assemble(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parse record %s: %w", path, err)
	}
	return page.Record(doc), nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
