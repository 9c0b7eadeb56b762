// Package page assembles stage records and flow directories into
// markdown documents.
package page

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// Tree renders a task tree as a nested markdown list.
func Tree(node domain.Node) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- %s\n", node.Step))
	writeChildren(&sb, node.Children, 1)
	return sb.String()
}

func writeChildren(sb *strings.Builder, children []domain.Node, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, child := range children {
		sb.WriteString(fmt.Sprintf("%s- %s\n", indent, child.Step))
		writeChildren(sb, child.Children, depth+1)
	}
}

// Record renders a single loaded record document as markdown. The
// section layout follows the record shape: every record gets its
// envelope, then type-specific sections for trees, expansions,
// timelines, challenges and page metadata.
func Record(doc map[string]any) string {
	var sb strings.Builder

	if task, ok := doc["task"].(string); ok && task != "" {
		sb.WriteString(fmt.Sprintf("# %s\n\n", task))
	}
	writeEnvelope(&sb, doc)

	if raw, ok := doc["tree"].(map[string]any); ok {
		var tree domain.Node
		if err := mapstructure.WeakDecode(raw, &tree); err == nil {
			sb.WriteString("## Task Tree\n\n")
			if path, ok := doc["expanded_node_path"]; ok {
				sb.WriteString(fmt.Sprintf("Expanded node: **%v** at path `%v`\n\n",
					doc["expanded_node_step"], path))
			}
			sb.WriteString(Tree(tree))
			sb.WriteString("\n")
		}
	}

	if steps, ok := doc["extracted_steps"].([]any); ok {
		sb.WriteString("## Extracted Steps\n\n")
		for i, step := range steps {
			sb.WriteString(fmt.Sprintf("%d. %v\n", i+1, step))
		}
		sb.WriteString("\n")
	}

	if raw, ok := doc["timeline"].(map[string]any); ok {
		var timeline domain.Timeline
		if err := mapstructure.WeakDecode(raw, &timeline); err == nil {
			writeTimeline(&sb, timeline)
		}
	}

	if raw, ok := doc["challenges"].(map[string]any); ok {
		var challenges domain.Challenges
		if err := mapstructure.WeakDecode(raw, &challenges); err == nil {
			writeChallenges(&sb, challenges)
		}
	}

	if meta, ok := doc["page_metadata"].(map[string]any); ok {
		writePageMetadata(&sb, meta)
	}

	if out, ok := doc["output_text"].([]any); ok {
		sb.WriteString("## Output\n\n")
		for _, paragraph := range out {
			sb.WriteString(fmt.Sprintf("%v\n\n", paragraph))
		}
	}

	if queries, ok := doc["search_queries"].([]any); ok {
		sb.WriteString("## Search Queries\n\n")
		for _, q := range queries {
			sb.WriteString(fmt.Sprintf("- %v\n", q))
		}
		sb.WriteString("\n")
	}

	for _, key := range []string{"facts", "merged_facts"} {
		if facts, ok := doc[key].([]any); ok {
			sb.WriteString(fmt.Sprintf("## %s\n\n", titleize(key)))
			for _, f := range facts {
				sb.WriteString(fmt.Sprintf("- %v\n", f))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func writeEnvelope(sb *strings.Builder, doc map[string]any) {
	sb.WriteString("| | |\n|---|---|\n")
	for _, key := range []string{"uuid", "date_created", "time_taken"} {
		if v, ok := doc[key]; ok {
			sb.WriteString(fmt.Sprintf("| %s | %v |\n", titleize(key), v))
		}
	}
	sb.WriteString("\n")
}

func writeTimeline(sb *strings.Builder, timeline domain.Timeline) {
	sb.WriteString("## Automation Timeline\n\n")
	sb.WriteString("### Historical\n\n")
	for _, decade := range sortedKeys(timeline.Historical) {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", decade, timeline.Historical[decade]))
	}
	sb.WriteString("\n### Predictions\n\n")
	for _, decade := range sortedKeys(timeline.Predictions) {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", decade, timeline.Predictions[decade]))
	}
	sb.WriteString("\n")
}

func writeChallenges(sb *strings.Builder, challenges domain.Challenges) {
	sb.WriteString("## Automation Challenges\n\n")
	for _, c := range challenges.Challenges {
		sb.WriteString(fmt.Sprintf("### %s\n\n%s\n\n", c.Title, c.Explanation))
	}
}

func writePageMetadata(sb *strings.Builder, meta map[string]any) {
	sb.WriteString("## Page Metadata\n\n")
	for _, key := range sortedKeys(meta) {
		sb.WriteString(fmt.Sprintf("- **%s**: %v\n", titleize(key), meta[key]))
	}
	sb.WriteString("\n")
}

// Assemble builds a full wiki page from a flow directory: page
// metadata, the task tree, timeline, challenges and any alternative
// trees, in that order.
func Assemble(dir string) (string, error) {
	var sb strings.Builder

	meta, err := readDoc(filepath.Join(dir, "flow-metadata.json"))
	if err != nil {
		return "", fmt.Errorf("read flow metadata: %w", err)
	}

	title := "Automation Flow"
	if pageMeta, err := readDoc(filepath.Join(dir, "1.json")); err == nil {
		if pm, ok := pageMeta["page_metadata"].(map[string]any); ok {
			if t, ok := pm["title"].(string); ok && t != "" {
				title = t
			}
		}
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	writeEnvelope(&sb, meta)

	for _, name := range []string{"1.json", "2.json", "3.json", "4.json"} {
		doc, err := readDoc(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		doc = stripEnvelope(doc)
		sb.WriteString(Record(doc))
	}

	alts, _ := filepath.Glob(filepath.Join(dir, "alt*.json"))
	sort.Strings(alts)
	for i, path := range alts {
		doc, err := readDoc(path)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("## Alternative Approach %d\n\n", i+1))
		sb.WriteString(Record(stripEnvelope(doc)))
	}

	return sb.String(), nil
}

func readDoc(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// stripEnvelope drops the per-stage envelope so assembled sections do
// not repeat uuid and timing tables.
func stripEnvelope(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch k {
		case "uuid", "date_created", "task", "time_taken":
		default:
			out[k] = v
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func titleize(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
