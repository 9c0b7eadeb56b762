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

const challengesSystemPrompt = "You are an AI assistant specialized in analyzing automation challenges. " +
	"Your task is to identify and explain the current technical, practical, and " +
	"conceptual challenges that make automation difficult in a specific field or topic."

// ChallengesStage generates the list of obstacles to automating a topic.
type ChallengesStage struct {
	completer ports.Completer
	logger    *slog.Logger
}

// NewChallenges creates the automation challenges stage.
func NewChallenges(completer ports.Completer, logger *slog.Logger) *ChallengesStage {
	return &ChallengesStage{completer: completer, logger: logger}
}

func (c *ChallengesStage) Name() string { return "automation-challenges" }

// ChallengesInput is the input document for challenge generation.
type ChallengesInput struct {
	common `json:",squash"`
	Topic  string `json:"topic"`
}

func (c *ChallengesStage) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts ChallengesInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Create a list of automation challenges for: %s\n\n", opts.Topic) +
		"Please provide:\n" +
		"1. 4-8 specific challenges that make automation difficult in this field\n" +
		"2. For each challenge, provide a concise title and detailed explanation\n" +
		"3. Focus on technical limitations, practical constraints, and human expertise that's difficult to replicate\n\n" +
		"Format your response as a JSON object.\n" +
		"Only include challenges that are significantly relevant to the topic."

	response, err := c.completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  challengesSystemPrompt,
		Prompt:  prompt,
		Options: opts.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("generate automation challenges: %w", err)
	}

	obj, err := parse.Object(response)
	if err != nil {
		return nil, fmt.Errorf("parse automation challenges: %w", err)
	}

	challenges := domain.Challenges{Topic: opts.Topic}
	if err := mapstructure.WeakDecode(obj, &challenges); err != nil {
		return nil, fmt.Errorf("decode automation challenges: %w", err)
	}
	if challenges.Topic == "" {
		challenges.Topic = opts.Topic
	}

	return domain.ChallengesRecord{
		Metadata:   domain.NewMetadata("Automation Challenges Generation", start),
		Challenges: challenges,
	}, nil
}
