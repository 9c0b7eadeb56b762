package ports

import "context"

// CompletionRequest describes a single chat completion: a model name, a
// system message, a user message, and model options (temperature, seed,
// context size) passed through untouched.
type CompletionRequest struct {
	Model   string
	System  string
	Prompt  string
	Options map[string]any
}

// Completer produces a chat completion. Implementations must honour
// context cancellation and return the response content with surrounding
// whitespace trimmed.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
