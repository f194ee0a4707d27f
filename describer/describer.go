package describer

import "context"

// RoleAssistant is the role attached to replies authored by the model.
const RoleAssistant = "assistant"

// Request is a single chat completion with one user message.
type Request struct {
	Model string

	// Prompt is the text part of the user message.
	Prompt string

	// ImageURL, if set, is sent as a second message part referencing an image
	// by URL. Backends that cannot reference images by URL download it.
	ImageURL string

	// MaxTokens caps the length of the reply.
	MaxTokens int64
}

// Choice is one candidate reply from the model.
type Choice struct {
	Role    string
	Content string
}

// Describer sends chat completions to a specific LLM backend.
type Describer interface {
	// Name returns the name of the backend, e.g. "openai" or "llama"
	Name() string

	// Complete sends req to the backend and returns the choices in the order
	// the backend produced them. The provided ctx is used as a parent context
	// for the request to the LLM server.
	Complete(ctx context.Context, req Request) ([]Choice, error)
}
