// Package graph renders task trees as Mermaid diagrams.
package graph

import (
	"fmt"
	"strings"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// Overlay highlights a node in the generated graph, typically the one
// an expansion record targeted.
type Overlay struct {
	HighlightPath []int
}

// GenerateMermaid produces a Mermaid flowchart (graph TD) for a task
// tree. Node IDs are index paths ("root", "n1", "n1_2") so the diagram
// stays stable across renames of the step text.
func GenerateMermaid(tree domain.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	sb.WriteString(fmt.Sprintf("    root((\"%s\"))\n", escapeLabel(tree.Step)))
	writeChildren(&sb, "root", tree.Children)

	if overlay != nil && overlay.HighlightPath != nil {
		sb.WriteString("\n    classDef expanded fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s expanded;\n", nodeID(overlay.HighlightPath)))
	}

	return sb.String()
}

func writeChildren(sb *strings.Builder, parentID string, children []domain.Node) {
	for i, child := range children {
		id := fmt.Sprintf("%s_%d", parentID, i)
		if parentID == "root" {
			id = fmt.Sprintf("n%d", i)
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, escapeLabel(child.Step)))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))
		writeChildren(sb, id, child.Children)
	}
}

// nodeID converts an index path to the Mermaid node identifier. The
// empty path names the root.
func nodeID(path []int) string {
	if len(path) == 0 {
		return "root"
	}
	parts := make([]string, len(path))
	for i, idx := range path {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "n" + strings.Join(parts, "_")
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
