package main

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/universal-automation-wiki/iterate"
	mcpAdapter "github.com/universal-automation-wiki/iterate/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the pipeline as an MCP server over stdio, exposing tree
generation, node expansion and record validation as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, logger, err := loadPipeline(cmd)
		if err != nil {
			return err
		}

		// Keep Stdout clean for JSON-RPC.
		log.SetOutput(os.Stderr)

		srv := mcpAdapter.NewServer(p.Registry, strings.TrimSpace(iterate.Version), logger)
		logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
