package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeFormat is the layout used for the date_created field. Historical
// records carry ISO-8601 timestamps with microsecond precision and no
// zone designator.
const TimeFormat = "2006-01-02T15:04:05.999999"

// Metadata is the envelope shared by every record the pipeline emits.
type Metadata struct {
	UUID        string `json:"uuid"`
	DateCreated string `json:"date_created"`
	Task        string `json:"task"`
	TimeTaken   string `json:"time_taken"`
}

// NewMetadata builds an envelope for a run that started at the given time
// and is finishing now. Task is the human-readable label of the program
// that produced the record, e.g. "Node Expansion".
func NewMetadata(task string, start time.Time) Metadata {
	end := time.Now()
	return Metadata{
		UUID:        uuid.NewString(),
		DateCreated: end.Format(TimeFormat),
		Task:        task,
		TimeTaken:   FormatElapsed(end.Sub(start)),
	}
}

// Envelope returns the metadata itself. It exists so any record that
// embeds Metadata exposes its envelope through a common interface.
func (m Metadata) Envelope() Metadata {
	return m
}

// FormatElapsed renders a duration in the form historical records use:
// "H:MM:SS.ffffff", with a "N days, " prefix past 24 hours and the
// fractional part dropped on exact seconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	micros := (d - s*time.Second) / time.Microsecond

	out := fmt.Sprintf("%d:%02d:%02d", h, m, s)
	if micros > 0 {
		out += fmt.Sprintf(".%06d", micros)
	}
	if days == 1 {
		out = "1 day, " + out
	} else if days > 1 {
		out = fmt.Sprintf("%d days, %s", days, out)
	}
	return out
}

// TreeRecord is the output of the tree generation stage: an envelope
// wrapping a full task tree.
type TreeRecord struct {
	Metadata
	Tree Node `json:"tree"`
}

// ExpansionRecord is the output of the node expansion stage. It carries
// the updated tree together with the index path of the node that was
// expanded and a denormalized copy of that node's step text.
type ExpansionRecord struct {
	Metadata
	Tree             Node   `json:"tree"`
	ExpandedNodePath []int  `json:"expanded_node_path"`
	ExpandedNodeStep string `json:"expanded_node_step"`
}

// ExpandedNode resolves the recorded path against the tree.
func (r ExpansionRecord) ExpandedNode() (Node, error) {
	return r.Tree.NodeAt(r.ExpandedNodePath)
}

// StepsRecord is the output of the step extraction stage.
type StepsRecord struct {
	Metadata
	ModelUsed      string   `json:"model_used"`
	ArticleText    []string `json:"article_text"`
	ExtractedSteps []string `json:"extracted_steps"`
}

// TextRecord is the output of the plain text stages (summary, BASIC
// English, Simplified Technical English). InputText is only populated by
// the translation stages.
type TextRecord struct {
	Metadata
	ModelUsed  string   `json:"model_used,omitempty"`
	InputText  []string `json:"input_text,omitempty"`
	OutputText []string `json:"output_text"`
}

// QueriesRecord is the output of the search query generation stage.
type QueriesRecord struct {
	Metadata
	SearchQueries []string `json:"search_queries"`
}

// FactsRecord is the output of the fact generation stage. Task holds the
// prompted topic rather than a program label.
type FactsRecord struct {
	Metadata
	ModelUsed string   `json:"model_used"`
	Facts     []string `json:"facts"`
}

// MergedFactsRecord is the output of the duplicate fact merge stage.
type MergedFactsRecord struct {
	Metadata
	MergedFacts []string `json:"merged_facts"`
}

// PageMetadataRecord is the output of the page metadata stage. The page
// metadata itself is model-shaped free-form JSON (title, subtitle,
// automation status, progress percentage, explanatory text).
type PageMetadataRecord struct {
	Metadata
	PageMetadata map[string]any `json:"page_metadata"`
}

// Timeline holds decade-keyed automation history and predictions.
type Timeline struct {
	Historical  map[string]string `json:"historical"`
	Predictions map[string]string `json:"predictions"`
}

// TimelineRecord is the output of the automation timeline stage.
type TimelineRecord struct {
	Metadata
	Timeline Timeline `json:"timeline"`
}

// Challenge is a single automation obstacle with its explanation.
type Challenge struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// Challenges groups the obstacles identified for a topic.
type Challenges struct {
	Topic      string      `json:"topic"`
	Challenges []Challenge `json:"challenges"`
}

// ChallengesRecord is the output of the automation challenges stage.
type ChallengesRecord struct {
	Metadata
	Challenges Challenges `json:"challenges"`
}
