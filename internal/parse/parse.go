// Package parse recovers structured data from model responses. Models are
// instructed to answer with bare JSON but routinely wrap it in markdown
// fences, prepend commentary, or fall back to prose; every helper here
// degrades gracefully instead of failing the stage.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// CleanFences strips markdown code fences from a model response.
func CleanFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Lines splits a response into trimmed, non-empty lines. Lines starting
// with '#' are treated as commentary and dropped.
func Lines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

var (
	bulletRe = regexp.MustCompile(`^-\s+`)
	numberRe = regexp.MustCompile(`^[0-9]+\.\s+`)
)

// StripListMarkers removes leading "- " bullets and "1. " numbering that
// models add despite instructions.
func StripListMarkers(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = bulletRe.ReplaceAllString(line, "")
		line = numberRe.ReplaceAllString(line, "")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Nodes parses a response expected to be a JSON array of step objects.
// List items may be objects with step/children fields or bare strings.
// When the response is not valid JSON, each line becomes a single step.
func Nodes(response string) []domain.Node {
	cleaned := CleanFences(response)

	// The line-split fallback is only for responses that are not JSON
	// at all. A valid array that converts to nothing stays empty so
	// callers can supply their own placeholder.
	var raw []any
	if err := json.Unmarshal([]byte(cleaned), &raw); err == nil {
		return convertNodes(raw)
	}

	var nodes []domain.Node
	for _, line := range Lines(cleaned) {
		nodes = append(nodes, domain.Node{Step: line})
	}
	return nodes
}

func convertNodes(items []any) []domain.Node {
	var nodes []domain.Node
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			node := domain.Node{}
			if step, ok := v["step"].(string); ok {
				node.Step = step
			}
			if children, ok := v["children"].([]any); ok {
				node.Children = convertNodes(children)
			}
			if node.Step != "" {
				nodes = append(nodes, node)
			}
		case string:
			if v != "" {
				nodes = append(nodes, domain.Node{Step: v})
			}
		}
	}
	return nodes
}

// Object parses a response expected to be a single JSON object, salvaging
// progressively: a direct parse, then the content of a ```json fence,
// then whatever sits between the outermost braces.
func Object(response string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(response), &obj); err == nil {
		return obj, nil
	}

	if idx := strings.Index(response, "```json"); idx >= 0 {
		rest := response[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &obj); err == nil {
				return obj, nil
			}
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(response[start:end+1]), &obj); err == nil {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("response is not valid JSON")
}

// RepairEmbedded walks a tree and expands nodes whose step text is itself
// a JSON payload, replacing their children with the parsed steps. Nodes
// that fail to parse are left unchanged.
func RepairEmbedded(node domain.Node) domain.Node {
	step := strings.TrimSpace(node.Step)
	if strings.HasPrefix(step, "[") || strings.HasPrefix(step, "{") {
		var raw any
		if err := json.Unmarshal([]byte(step), &raw); err == nil {
			switch v := raw.(type) {
			case []any:
				node.Children = convertNodes(v)
			case map[string]any:
				node.Children = convertNodes([]any{v})
			}
		}
	}

	for i, c := range node.Children {
		node.Children[i] = RepairEmbedded(c)
	}
	return node
}
