package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/universal-automation-wiki/iterate/internal/parse"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

const timelineSystemPrompt = "You are an AI assistant specialized in creating historical timelines and future predictions " +
	"for automation technologies. Your task is to create a comprehensive timeline that includes " +
	"both historical events and future predictions related to the given topic."

// Timeline generates a decade-keyed automation history and forecast for
// a topic.
type Timeline struct {
	completer ports.Completer
	logger    *slog.Logger
}

// NewTimeline creates the automation timeline stage.
func NewTimeline(completer ports.Completer, logger *slog.Logger) *Timeline {
	return &Timeline{completer: completer, logger: logger}
}

func (t *Timeline) Name() string { return "automation-timeline" }

// TimelineInput is the input document for timeline generation. A
// pre-supplied timeline is passed through without a model call.
type TimelineInput struct {
	common   `json:",squash"`
	Topic    string           `json:"topic"`
	Timeline *domain.Timeline `json:"timeline"`
}

func (t *Timeline) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts TimelineInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	timeline := opts.Timeline
	if timeline == nil {
		prompt := fmt.Sprintf("Create an automation timeline for: %s\n\n", opts.Topic) +
			"Please provide:\n" +
			"1. A historical timeline showing key developments by decade (1920s through present)\n" +
			"2. Future predictions by decade showing how automation will likely progress\n" +
			"3. Continue predictions until full automation is reached (if possible)\n\n" +
			"Format your response as a JSON object with two main sections:\n" +
			"- 'historical': an object with decades as keys (e.g., '1920s', '1930s') and descriptions as values\n" +
			"- 'predictions': an object with future decades as keys (e.g., '2030s', '2040s')\n" +
			"Only include decades that have significant events relevant to the topic."

		response, err := t.completer.Complete(ctx, ports.CompletionRequest{
			Model:   opts.Model,
			System:  timelineSystemPrompt,
			Prompt:  prompt,
			Options: opts.Parameters,
		})
		if err != nil {
			return nil, fmt.Errorf("generate automation timeline: %w", err)
		}

		obj, err := parse.Object(response)
		if err != nil {
			return nil, fmt.Errorf("parse automation timeline: %w", err)
		}

		timeline = &domain.Timeline{}
		if err := mapstructure.WeakDecode(obj, timeline); err != nil {
			return nil, fmt.Errorf("decode automation timeline: %w", err)
		}
	}

	return domain.TimelineRecord{
		Metadata: domain.NewMetadata("Automation Timeline Generation", start),
		Timeline: *timeline,
	}, nil
}
