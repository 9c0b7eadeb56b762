package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/universal-automation-wiki/iterate/internal/parse"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

// TextInput is the input document shared by the text stages.
type TextInput struct {
	common          `json:",squash"`
	Task            string   `json:"task"`
	InputText       []string `json:"input_text"`
	ArticleText     []string `json:"article_text"`
	Facts           []string `json:"facts"`
	OutputFormat    string   `json:"output_format"`
	SuccessCriteria any      `json:"success_criteria"`
	NumQueries      int      `json:"estimated_num_queries_to_generate"`
}

// appendCriteria adds the optional output format and success criteria
// clauses the way every original program did.
func appendCriteria(prompt string, opts TextInput) string {
	if opts.OutputFormat != "" {
		prompt += fmt.Sprintf("\n\nProvide output as: %s", opts.OutputFormat)
	}
	if opts.SuccessCriteria != nil {
		criteria, err := json.MarshalIndent(opts.SuccessCriteria, "", "  ")
		if err == nil {
			prompt += fmt.Sprintf("\n\nSuccess Criteria:\n%s", criteria)
		}
	}
	return prompt
}

// --- Step extraction ---

const extractSystemPrompt = "You are an AI assistant specialized in extracting actionable instructions from text. " +
	"Your task is to take an article, recipe, or guide and distill it into a clear, step-by-step list of instructions. Follow these guidelines: " +
	"Extract only the necessary steps. Ignore background information, explanations, anecdotes, or unnecessary details. " +
	"Keep steps concise and clear. Ensure each step is actionable and uses direct language. " +
	"Maintain logical order. Ensure the steps follow a clear and natural progression. " +
	"Output the instructions in a simple list format with no numbers, symbols, markdown, or extra formatting."

// ExtractSteps distills an article into an ordered list of actionable steps.
type ExtractSteps struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewExtractSteps(completer ports.Completer, logger *slog.Logger) *ExtractSteps {
	return &ExtractSteps{completer: completer, logger: logger}
}

func (s *ExtractSteps) Name() string { return "extract-steps" }

func (s *ExtractSteps) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts TextInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	article := strings.Join(opts.ArticleText, "\n\n")
	prompt := fmt.Sprintf("Please extract the step-by-step instructions from the following article:\n\nARTICLE:\n%s\n\n", article) +
		"Remember to:\n" +
		"1. Extract only necessary, actionable steps\n" +
		"2. Keep steps concise and clear\n" +
		"3. Maintain logical order\n" +
		"4. Present steps in a simple list format without numbers or formatting\n\n" +
		"Each step should be on its own line, with no numbering.\n"

	response, err := s.completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  extractSystemPrompt,
		Prompt:  prompt,
		Options: opts.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("extract steps: %w", err)
	}

	return domain.StepsRecord{
		Metadata:       domain.NewMetadata("Step Extraction", start),
		ModelUsed:      opts.Model,
		ArticleText:    opts.ArticleText,
		ExtractedSteps: filterStepLines(response),
	}, nil
}

// filterStepLines drops residual markdown and numbered headings that
// models emit despite the no-formatting instruction.
func filterStepLines(response string) []string {
	response = strings.ReplaceAll(response, "```", "")
	response = strings.ReplaceAll(response, "**", "")

	var steps []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || stepNumberRe.MatchString(line) || strings.HasPrefix(line, "Step") {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}

var stepNumberRe = regexp.MustCompile(`^[0-9]+\.`)

// --- Summary ---

const summarySystemPrompt = "You are an AI assistant specialized in summarizing content. " +
	"Your goal is to provide a concise and clear summary of the provided text. " +
	"Ensure that the summary captures the key points, main ideas, and critical details. " +
	"Keep the summary brief, precise, and easy to understand. " +
	"Avoid unnecessary details or opinions. " +
	"Follow the output format as specified by the user if provided; otherwise, return a plain text summary."

// Summary condenses input text into a short summary, one paragraph per
// output line.
type Summary struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewSummary(completer ports.Completer, logger *slog.Logger) *Summary {
	return &Summary{completer: completer, logger: logger}
}

func (s *Summary) Name() string { return "summary" }

func (s *Summary) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts TextInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	prompt := appendCriteria(
		fmt.Sprintf("Summarize the following text concisely:\n\n%s", strings.Join(opts.InputText, "\n\n")),
		opts,
	)

	response, err := s.completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  summarySystemPrompt,
		Prompt:  prompt,
		Options: opts.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	var paragraphs []string
	for _, p := range strings.Split(response, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	return domain.TextRecord{
		Metadata:   domain.NewMetadata("Summarise", start),
		OutputText: paragraphs,
	}, nil
}

// --- Search queries ---

const queriesSystemPrompt = "You are a search query generation assistant. " +
	"Your task is to take a given topic and generate multiple high-quality search engine queries that help retrieve comprehensive, relevant, and useful information. " +
	"For each topic, generate a variety of queries, including: " +
	"General queries that provide a broad overview. " +
	"Specific queries targeting authoritative sources. " +
	"Question-based queries to find FAQ-style answers. " +
	"Alternative phrasings to ensure diverse results. " +
	"Advanced search operator queries (e.g., site:, filetype:, intitle:) for precision. " +
	"Output the queries in a simple list format with no numbers, symbols, or extra formatting. " +
	"Separate each query with a single newline."

// Queries generates search engine queries covering a topic.
type Queries struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewQueries(completer ports.Completer, logger *slog.Logger) *Queries {
	return &Queries{completer: completer, logger: logger}
}

func (q *Queries) Name() string { return "search-queries" }

func (q *Queries) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts TextInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("%s\nNumber of Search Queries to generate: %d\n", strings.Join(opts.InputText, " "), opts.NumQueries)
	prompt = appendCriteria(prompt, opts)

	response, err := q.completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  queriesSystemPrompt,
		Prompt:  prompt,
		Options: opts.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("generate search queries: %w", err)
	}

	return domain.QueriesRecord{
		Metadata:      domain.NewMetadata("Search Query Generations", start),
		SearchQueries: parse.Lines(response),
	}, nil
}

// --- BASIC English ---

const basicEnglishSystemPrompt = "Convert the given text into BASIC English. " +
	"Use only words from the BASIC English list (850 words). " +
	"Make all sentences short, clear, and simple. Do not use difficult words. " +
	"If needed, explain with easy words. Keep numbers and measurements clear. " +
	"If the sentence is already simple, do not change it."

// BasicEnglish rewrites text using the 850-word BASIC English vocabulary.
type BasicEnglish struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewBasicEnglish(completer ports.Completer, logger *slog.Logger) *BasicEnglish {
	return &BasicEnglish{completer: completer, logger: logger}
}

func (b *BasicEnglish) Name() string { return "basic-english" }

func (b *BasicEnglish) Run(ctx context.Context, in Input) (any, error) {
	return runTranslation(ctx, b.completer, in, translationSpec{
		task:   "BASIC English conversion",
		system: basicEnglishSystemPrompt,
		prompt: func(opts TextInput) string {
			return appendCriteria(strings.Join(opts.InputText, " "), opts)
		},
	})
}

// --- Simplified Technical English ---

const steSystemPrompt = "You are an AI assistant specializing in Simplified Technical English (STE) conversion. " +
	"Follow these strict STE rules:" +
	"\n1. USE SHORT SENTENCES - Maximum 20 words per sentence. Prefer 10-15 words." +
	"\n2. ONE IDEA PER SENTENCE - Split complex sentences into multiple simple ones." +
	"\n3. USE ACTIVE VOICE - Say who does what. Avoid passive constructions." +
	"\n4. USE APPROVED VOCABULARY - Prefer simple, common technical words." +
	"\n5. BE CONSISTENT - Use the same word for the same thing throughout." +
	"\n6. AVOID AMBIGUITY - Each sentence must have exactly one meaning."

// SimplifiedTechnicalEnglish rewrites text following STE writing rules.
type SimplifiedTechnicalEnglish struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewSimplifiedTechnicalEnglish(completer ports.Completer, logger *slog.Logger) *SimplifiedTechnicalEnglish {
	return &SimplifiedTechnicalEnglish{completer: completer, logger: logger}
}

func (s *SimplifiedTechnicalEnglish) Name() string { return "simplified-technical-english" }

func (s *SimplifiedTechnicalEnglish) Run(ctx context.Context, in Input) (any, error) {
	return runTranslation(ctx, s.completer, in, translationSpec{
		task:   "Simplified Technical English conversion",
		system: steSystemPrompt,
		prompt: func(opts TextInput) string {
			return appendCriteria(
				fmt.Sprintf("Convert this text to Simplified Technical English:\n\n%s", strings.Join(opts.InputText, "\n\n")),
				opts,
			)
		},
	})
}

type translationSpec struct {
	task   string
	system string
	prompt func(TextInput) string
}

func runTranslation(ctx context.Context, completer ports.Completer, in Input, spec translationSpec) (any, error) {
	start := time.Now()

	var opts TextInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	response, err := completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  spec.system,
		Prompt:  spec.prompt(opts),
		Options: opts.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.task, err)
	}

	return domain.TextRecord{
		Metadata:   domain.NewMetadata(spec.task, start),
		ModelUsed:  opts.Model,
		InputText:  opts.InputText,
		OutputText: strings.Split(response, "\n"),
	}, nil
}

// --- Merge duplicate facts ---

const mergeFactsSystemPrompt = "You are an AI assistant specialized in merging duplicate facts. " +
	"Your goal is to combine facts that are identical or very similar, ensuring that unique details are preserved. " +
	"Do not merge facts if slight differences contribute additional information. " +
	"Provide a final list of unique, merged facts in a clear and concise manner. " +
	"Each merged fact should be on its own line. Do not number the facts. " +
	"Do not explain your reasoning. Do not add any conversational context. Do not output anything other than the merged facts."

// MergeFacts collapses duplicate or near-duplicate facts into one list.
type MergeFacts struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewMergeFacts(completer ports.Completer, logger *slog.Logger) *MergeFacts {
	return &MergeFacts{completer: completer, logger: logger}
}

func (m *MergeFacts) Name() string { return "merge-duplicate-facts" }

func (m *MergeFacts) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts TextInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("Merge the following duplicate or similar facts carefully. " +
		"Avoid under-merging (keeping redundant facts) and over-merging (losing important details). " +
		"Here are the facts:\n\n")
	for _, fact := range opts.Facts {
		fmt.Fprintf(&sb, "- %s\n", fact)
	}
	prompt := appendCriteria(sb.String(), opts)

	response, err := m.completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  mergeFactsSystemPrompt,
		Prompt:  prompt,
		Options: opts.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("merge duplicate facts: %w", err)
	}

	return domain.MergedFactsRecord{
		Metadata:    domain.NewMetadata("Merge Duplicate Facts", start),
		MergedFacts: parse.StripListMarkers(parse.Lines(response)),
	}, nil
}

// --- Facts ---

const factsSystemPrompt = "You are a knowledgeable assistant specialized in providing accurate, concise, and informative facts about various topics. " +
	"Your responses should be factual, specific, and organized. " +
	"When asked about a subject, provide clear, detailed information based on your knowledge, focusing on relevant details. " +
	"Present your information in a clear, structured format with one fact per line. " +
	"Avoid unnecessary commentary, opinions, or irrelevant details. " +
	"Focus on providing factual, educational content about the requested topic. " +
	"Focus on having a wide variety of facts. " +
	"Output the instructions in a simple list format with no numbers, symbols, markdown, or extra formatting."

// Facts generates a list of facts about a topic. The record's task field
// carries the prompted topic, not a program label.
type Facts struct {
	completer ports.Completer
	logger    *slog.Logger
}

func NewFacts(completer ports.Completer, logger *slog.Logger) *Facts {
	return &Facts{completer: completer, logger: logger}
}

func (f *Facts) Name() string { return "facts" }

func (f *Facts) Run(ctx context.Context, in Input) (any, error) {
	start := time.Now()

	var opts TextInput
	if err := decode(in, &opts); err != nil {
		return nil, err
	}

	response, err := f.completer.Complete(ctx, ports.CompletionRequest{
		Model:   opts.Model,
		System:  factsSystemPrompt,
		Prompt:  opts.Task,
		Options: opts.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("generate facts: %w", err)
	}

	meta := domain.NewMetadata(opts.Task, start)
	return domain.FactsRecord{
		Metadata:  meta,
		ModelUsed: opts.Model,
		Facts:     parse.Lines(response),
	}, nil
}
