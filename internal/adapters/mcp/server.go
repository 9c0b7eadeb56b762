// Package mcp exposes the pipeline stages as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/universal-automation-wiki/iterate/internal/stage"
	"github.com/universal-automation-wiki/iterate/internal/validator"
)

// Server wraps the stage registry and exposes it as an MCP server.
type Server struct {
	registry  *stage.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the given stage registry.
func NewServer(registry *stage.Registry, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		registry:  registry,
		logger:    logger,
		mcpServer: server.NewMCPServer("iterate-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: generate_tree
	s.mcpServer.AddTool(mcp.NewTool("generate_tree",
		mcp.WithDescription("Decompose a task into a hierarchical tree of steps."),
		mcp.WithString("task", mcp.Required(), mcp.Description("The task to decompose")),
		mcp.WithNumber("depth", mcp.Description("Recursion depth of the decomposition (default 2)")),
		mcp.WithString("model", mcp.Description("Model name override")),
	), s.handleStage("hallucinate-tree", func(args map[string]any) stage.Input {
		in := stage.Input{"task": args["task"]}
		if depth, ok := args["depth"]; ok {
			in["depth"] = depth
		}
		return in
	}))

	// TOOL: expand_node
	s.mcpServer.AddTool(mcp.NewTool("expand_node",
		mcp.WithDescription("Expand one node of an existing task tree into substeps. "+
			"The node is located by its index path or by its step text."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("JSON of the tree to expand")),
		mcp.WithString("node_path", mcp.Description("JSON array of child indexes from the root (optional)")),
		mcp.WithString("node_step", mcp.Description("Step text of the node to expand (optional)")),
		mcp.WithNumber("num_substeps", mcp.Description("How many substeps to request")),
		mcp.WithString("model", mcp.Description("Model name override")),
	), s.handleStage("expand-node", func(args map[string]any) stage.Input {
		in := stage.Input{}
		if treeStr, ok := args["tree"].(string); ok {
			var tree map[string]any
			if err := json.Unmarshal([]byte(treeStr), &tree); err == nil {
				in["tree"] = tree
			}
		}
		if pathStr, ok := args["node_path"].(string); ok && pathStr != "" {
			var path []any
			if err := json.Unmarshal([]byte(pathStr), &path); err == nil {
				in["node_path"] = path
			}
		}
		if step, ok := args["node_step"].(string); ok && step != "" {
			in["node_step"] = step
		}
		if n, ok := args["num_substeps"]; ok {
			in["num_substeps"] = n
		}
		return in
	}))

	// TOOL: validate_record
	s.mcpServer.AddTool(mcp.NewTool("validate_record",
		mcp.WithDescription("Validate a record document: envelope fields, tree shape, "+
			"and agreement between expanded_node_path and expanded_node_step."),
		mcp.WithString("record", mcp.Required(), mcp.Description("JSON of the record to validate")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		record, err := request.RequireString("record")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		verdict := map[string]any{"valid": true, "errors": []string{}}
		if err := validator.ValidateRaw([]byte(record)); err != nil {
			errs := validator.ValidationErrors(err)
			if len(errs) == 0 {
				return mcp.NewToolResultError(err.Error()), nil
			}
			messages := make([]string, len(errs))
			for i, e := range errs {
				messages[i] = e.Error()
			}
			verdict["valid"] = false
			verdict["errors"] = messages
		}

		out, _ := json.Marshal(verdict)
		return mcp.NewToolResultText(string(out)), nil
	})
}

// handleStage builds a tool handler that maps tool arguments to a stage
// input, runs the stage, and returns the record as JSON text.
func (s *Server) handleStage(name string, buildInput func(map[string]any) stage.Input) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := s.registry.Get(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		args := request.GetArguments()
		in := buildInput(args)
		if model, ok := args["model"].(string); ok && model != "" {
			in["model"] = model
		}

		record, err := st.Run(ctx, in)
		if err != nil {
			s.logger.Error("stage failed", "stage", name, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
		}

		out, err := json.Marshal(record)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal record: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
