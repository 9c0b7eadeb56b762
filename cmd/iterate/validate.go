package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/universal-automation-wiki/iterate/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <record.json>",
	Short: "Validate a record document",
	Long:  `Checks the record envelope, the tree shape, and agreement between expanded_node_path and expanded_node_step.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}

		if err := validator.ValidateRaw(data); err != nil {
			errs := validator.ValidationErrors(err)
			if len(errs) == 0 {
				return err
			}
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, "-", e)
			}
			return fmt.Errorf("%s: %d validation error(s)", args[0], len(errs))
		}

		fmt.Printf("%s: valid\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
