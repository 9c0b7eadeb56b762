package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/universal-automation-wiki/iterate/internal/parse"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

const metadataSystemPrompt = "You are an AI assistant specialized in creating consistent metadata for technical topics. " +
	"Generate appropriate metadata for the topic provided, including: " +
	"- A descriptive title (using the topic name) MAXIMUM 2-3 WORDS DO NOT INCLUDE A SUBTITLE (e.g., ANYTHING AFTER A SEMICOLON) " +
	"- A subtitle that explains the scope " +
	"- Current automation status (No Automation, Very Early Automation, Early Automation, Some Automation, Partially Fully Automated, Mostly Fully Automated, or Fully Automated) " +
	"- Percentage estimate of progress toward full automation (as a percentage). BE CRITICAL, do not exaggerate current status. E.g., '25%' would be appropriate for topics where some partial automation is POSSIBLE." +
	"- Explanatory text (2-3 FULL paragraphs) that describes the topic and its automation journey." +
	"Format your response as a JSON object with these fields."

// PageMetadata generates wiki page metadata for a topic.
type PageMetadata struct {
	completer ports.Completer
	logger    *slog.Logger
}

// NewPageMetadata creates the page metadata stage.
func NewPageMetadata(completer ports.Completer, logger *slog.Logger) *PageMetadata {
	return &PageMetadata{completer: completer, logger: logger}
}

func (p *PageMetadata) Name() string { return "metadata" }

// MetadataInput is the input document for metadata generation. When the
// document already carries a metadata object it is passed through
// unchanged without a model call.
type MetadataInput struct {
	common   `json:",squash"`
	Topic    string         `json:"topic"`
	Metadata map[string]any `json:"metadata"`
}

func (p *PageMetadata) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts MetadataInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	meta := opts.Metadata
	if meta == nil {
		response, err := p.completer.Complete(ctx, ports.CompletionRequest{
			Model:   opts.Model,
			System:  metadataSystemPrompt,
			Prompt:  fmt.Sprintf("Create metadata for a Universal Automation Wiki page about: %s", opts.Topic),
			Options: opts.Parameters,
		})
		if err != nil {
			return nil, fmt.Errorf("generate page metadata: %w", err)
		}

		meta, err = parse.Object(response)
		if err != nil {
			p.logger.Error("metadata response is not valid JSON", "error", err)
			return nil, fmt.Errorf("parse page metadata: %w", err)
		}
	}

	return domain.PageMetadataRecord{
		Metadata:     domain.NewMetadata("Page Metadata Generation", start),
		PageMetadata: meta,
	}, nil
}
