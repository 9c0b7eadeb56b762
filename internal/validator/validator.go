// Package validator checks pipeline records against the persisted record
// format: a well-formed envelope, a well-formed tree, and agreement
// between the expanded node path and the denormalized step text.
package validator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// timeLayouts are the accepted date_created forms. The pipeline writes
// zone-less ISO-8601 with microseconds; older records and external
// producers may include an offset.
var timeLayouts = []string{
	domain.TimeFormat,
	time.RFC3339Nano,
	time.RFC3339,
}

// ValidateMetadata checks the record envelope.
func ValidateMetadata(m domain.Metadata) error {
	var errs []error

	if _, err := uuid.Parse(m.UUID); err != nil {
		errs = append(errs, &ValidationError{Key: "uuid", Reason: "not a valid UUID", Value: m.UUID})
	}
	if !parsesAsTime(m.DateCreated) {
		errs = append(errs, &ValidationError{Key: "date_created", Reason: "not a valid ISO-8601 timestamp", Value: m.DateCreated})
	}
	if m.Task == "" {
		errs = append(errs, &ValidationError{Key: "task", Reason: "required"})
	}
	if m.TimeTaken == "" {
		errs = append(errs, &ValidationError{Key: "time_taken", Reason: "required"})
	}

	return aggregate(errs)
}

func parsesAsTime(s string) bool {
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ValidateTree checks that every node in the tree carries a non-empty
// step. Errors name nodes by their index path from the root.
func ValidateTree(tree domain.Node) error {
	var errs []error
	tree.Walk(func(path []int, n domain.Node) bool {
		if n.Step == "" {
			errs = append(errs, &ValidationError{
				Key:    fmt.Sprintf("tree%v", path),
				Reason: "node has an empty step",
			})
		}
		return true
	})
	return aggregate(errs)
}

// ValidateExpansion checks a full expansion record: envelope, tree shape,
// and the invariant that walking the tree by expanded_node_path lands on
// a node whose step equals expanded_node_step. Records without expansion
// fields are validated as plain tree records.
func ValidateExpansion(rec domain.ExpansionRecord) error {
	var errs []error

	if err := ValidateMetadata(rec.Metadata); err != nil {
		errs = append(errs, ValidationErrors(err)...)
	}
	if err := ValidateTree(rec.Tree); err != nil {
		errs = append(errs, ValidationErrors(err)...)
	}

	if rec.ExpandedNodePath != nil || rec.ExpandedNodeStep != "" {
		node, err := rec.Tree.NodeAt(rec.ExpandedNodePath)
		if err != nil {
			errs = append(errs, &ValidationError{
				Key:    "expanded_node_path",
				Reason: "does not resolve to a node",
				Value:  rec.ExpandedNodePath,
			})
		} else if node.Step != rec.ExpandedNodeStep {
			errs = append(errs, &ValidationError{
				Key:    "expanded_node_step",
				Reason: fmt.Sprintf("node at path has step %q", node.Step),
				Value:  rec.ExpandedNodeStep,
			})
		}
	}

	return aggregate(errs)
}

// ValidateRaw parses raw JSON as an expansion record and validates it.
// Plain tree records pass as well, since the expansion fields are
// optional on read.
func ValidateRaw(data []byte) error {
	var rec domain.ExpansionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("parse record: %w", err)
	}
	return ValidateExpansion(rec)
}
