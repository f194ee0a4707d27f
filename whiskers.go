package whiskers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/chriskillpack/whiskers/describer"
	"github.com/chriskillpack/whiskers/internal/llama"
	"github.com/chriskillpack/whiskers/internal/openai"
	"github.com/chriskillpack/whiskers/internal/openrouter"
)

var ErrUnknownBackend = errors.New("unknown LLM backend")

type InitOptions struct {
	Backend string // "openai", "openrouter" or "llama"

	OpenRouterKey string

	LlamaServer string
	LlamaSeed   int

	ImageURLTemplate string

	DescriptionModel     string
	DescriptionPrompt    string
	DescriptionMaxTokens int64

	TagsModel     string
	TagsPrompt    string
	TagsMaxTokens int64

	HttpClient *http.Client // if nil uses http.DefaultClient
}

// Prompt is the fixed part of a completion request.
type Prompt struct {
	Model     string
	Text      string
	MaxTokens int64
}

type Whiskers struct {
	describer.Describer

	Images *ImageHost

	description Prompt
	tags        Prompt
}

// Init selects the LLM backend named by hio.Backend and wires it up with the
// image host.
func Init(hio InitOptions) (*Whiskers, error) {
	httpClient := hio.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var d describer.Describer
	switch hio.Backend {
	case "openai", "":
		d = openai.Init(httpClient)
	case "openrouter":
		if hio.OpenRouterKey == "" {
			return nil, fmt.Errorf("openrouter backend needs an API key")
		}
		d = openrouter.Init(hio.OpenRouterKey)
	case "llama":
		if hio.LlamaServer == "" {
			return nil, fmt.Errorf("llama backend needs a server address")
		}
		d = llama.Init(hio.LlamaServer, hio.LlamaSeed, httpClient)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, hio.Backend)
	}

	return New(d, NewImageHost(hio.ImageURLTemplate, httpClient), hio), nil
}

// New builds a Whiskers around an existing backend. Only the prompt related
// fields of hio are used.
func New(d describer.Describer, images *ImageHost, hio InitOptions) *Whiskers {
	return &Whiskers{
		Describer: d,
		Images:    images,
		description: Prompt{
			Model:     hio.DescriptionModel,
			Text:      hio.DescriptionPrompt,
			MaxTokens: hio.DescriptionMaxTokens,
		},
		tags: Prompt{
			Model:     hio.TagsModel,
			Text:      hio.TagsPrompt,
			MaxTokens: hio.TagsMaxTokens,
		},
	}
}

// TagsModel returns the model used by Tags.
func (w *Whiskers) TagsModel() string { return w.tags.Model }

// DescriptionModel returns the model used by Describe.
func (w *Whiskers) DescriptionModel() string { return w.description.Model }
