package openrouter

import (
	"context"

	"github.com/chriskillpack/whiskers/describer"

	"github.com/revrost/go-openrouter"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context,
		ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

type router struct {
	client chatClient
}

var _ describer.Describer = &router{}

func Init(apiKey string) *router {
	return &router{
		client: openrouter.NewClient(
			apiKey,
			openrouter.WithXTitle("whiskers"),
		),
	}
}

func (r *router) Name() string { return "openrouter" }

func (r *router) Complete(ctx context.Context, req describer.Request) ([]describer.Choice, error) {
	ccr := openrouter.ChatCompletionRequest{
		Messages:  []openrouter.ChatCompletionMessage{userMessage(req)},
		Model:     req.Model,
		MaxTokens: int(req.MaxTokens),
	}

	resp, err := r.client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return nil, err
	}

	choices := make([]describer.Choice, len(resp.Choices))
	for i, c := range resp.Choices {
		choices[i] = describer.Choice{
			Role:    c.Message.Role,
			Content: c.Message.Content.Text,
		}
	}

	return choices, nil
}

func userMessage(req describer.Request) openrouter.ChatCompletionMessage {
	if req.ImageURL == "" {
		return openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleUser,
			Content: openrouter.Content{Text: req.Prompt},
		}
	}

	return openrouter.ChatCompletionMessage{
		Role: openrouter.ChatMessageRoleUser,
		Content: openrouter.Content{Multi: []openrouter.ChatMessagePart{
			{
				Type: openrouter.ChatMessagePartTypeText,
				Text: req.Prompt,
			},
			{
				Type:     openrouter.ChatMessagePartTypeImageURL,
				ImageURL: &openrouter.ChatMessageImageURL{URL: req.ImageURL},
			},
		}},
	}
}
