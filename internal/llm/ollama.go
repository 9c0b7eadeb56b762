// Package llm provides the Ollama-backed completer and its decorators
// (response caching, metrics instrumentation).
package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

// DefaultModel is used when an input document does not name a model.
const DefaultModel = "gemma3"

// Ollama is a ports.Completer backed by a local Ollama server.
type Ollama struct {
	client *api.Client
}

// NewOllama creates a completer for the given host URL. An empty host
// falls back to the OLLAMA_HOST environment variable and then the
// default localhost address.
func NewOllama(host string) (*Ollama, error) {
	if host == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client from environment: %w", err)
		}
		return &Ollama{client: client}, nil
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
	}
	return &Ollama{client: api.NewClient(u, http.DefaultClient)}, nil
}

// Complete issues a non-streaming chat request and returns the trimmed
// response content.
func (o *Ollama) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Options: req.Options,
		Stream:  &stream,
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", domain.ErrEmptyResponse
	}
	return content, nil
}
