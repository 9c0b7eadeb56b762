package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/universal-automation-wiki/iterate"
	"github.com/universal-automation-wiki/iterate/internal/presentation/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of iterate",
	Run: func(cmd *cobra.Command, args []string) {
		if tui.IsTerminal() {
			tui.PrintBanner(iterate.Version)
			return
		}
		fmt.Printf("iterate version %s\n", strings.TrimSpace(iterate.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
