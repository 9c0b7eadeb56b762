package stage

import (
	"fmt"
	"log/slog"

	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

// Registry holds the available stages by name.
type Registry struct {
	order  []string
	stages map[string]Stage
}

// NewRegistry constructs every stage against the given completer.
func NewRegistry(completer ports.Completer, logger *slog.Logger) *Registry {
	all := []Stage{
		NewPageMetadata(completer, logger),
		NewTree(completer, logger),
		NewExpand(completer, logger),
		NewTimeline(completer, logger),
		NewChallenges(completer, logger),
		NewExtractSteps(completer, logger),
		NewSummary(completer, logger),
		NewQueries(completer, logger),
		NewBasicEnglish(completer, logger),
		NewSimplifiedTechnicalEnglish(completer, logger),
		NewMergeFacts(completer, logger),
		NewFacts(completer, logger),
	}

	r := &Registry{stages: make(map[string]Stage, len(all))}
	for _, s := range all {
		r.order = append(r.order, s.Name())
		r.stages[s.Name()] = s
	}
	return r
}

// Get returns the stage registered under name.
func (r *Registry) Get(name string) (Stage, error) {
	s, ok := r.stages[name]
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", name)
	}
	return s, nil
}

// Names returns the stage names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
