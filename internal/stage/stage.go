// Package stage implements the pipeline programs: each stage reads an
// input document, prompts the model, salvages the response, and returns
// a record wrapped in the standard envelope.
package stage

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// Input is a parsed input document. Stages decode the fields they need
// and ignore the rest, so one document can drive a whole flow.
type Input map[string]any

// Stage is a single pipeline program.
type Stage interface {
	// Name is the stage identifier, used as the output directory name.
	Name() string

	// Run executes the stage and returns its record. Every record embeds
	// domain.Metadata, so it satisfies Enveloped.
	Run(ctx context.Context, in Input) (any, error)
}

// Enveloped is implemented by every record through the embedded
// domain.Metadata.
type Enveloped interface {
	Envelope() domain.Metadata
}

// decode maps an input document onto a typed options struct. Decoding is
// weakly typed: JSON numbers arrive as float64 and clients are loose
// about ints vs strings.
func decode(in Input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build input decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(in)); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

// common holds the fields shared by every input document.
type common struct {
	Model      string         `json:"model"`
	Parameters map[string]any `json:"parameters"`
}
