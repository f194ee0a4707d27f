package openai

import (
	"context"
	"net/http"

	"github.com/chriskillpack/whiskers/describer"

	oagc "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type openai struct {
	oac *oagc.Client
}

var _ describer.Describer = &openai{}

// Init returns an OpenAI backend. The API key and base URL are picked up by
// the SDK from OPENAI_API_KEY and OPENAI_BASE_URL. Extra options are applied
// last and win.
func Init(httpClient *http.Client, opts ...option.RequestOption) *openai {
	opts = append([]option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}, opts...)

	return &openai{
		oac: oagc.NewClient(opts...),
	}
}

func (o *openai) Name() string { return "openai" }

func (o *openai) Complete(ctx context.Context, req describer.Request) ([]describer.Choice, error) {
	params := oagc.ChatCompletionNewParams{
		Messages: oagc.F([]oagc.ChatCompletionMessageParamUnion{userMessage(req)}),
		Model:    oagc.F(oagc.ChatModel(req.Model)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = oagc.Int(req.MaxTokens)
	}

	resp, err := o.oac.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}

	choices := make([]describer.Choice, len(resp.Choices))
	for i, c := range resp.Choices {
		choices[i] = describer.Choice{
			Role:    string(c.Message.Role),
			Content: c.Message.Content,
		}
	}

	return choices, nil
}

// A plain text message unless the request references an image, in which case
// the text goes first followed by the image URL.
func userMessage(req describer.Request) oagc.ChatCompletionMessageParamUnion {
	if req.ImageURL == "" {
		// Plain string content rather than a single text part
		return oagc.ChatCompletionUserMessageParam{
			Role:    oagc.F(oagc.ChatCompletionUserMessageParamRoleUser),
			Content: oagc.F[oagc.ChatCompletionUserMessageParamContentUnion](shared.UnionString(req.Prompt)),
		}
	}

	return oagc.UserMessageParts(
		oagc.TextPart(req.Prompt),
		oagc.ImagePart(req.ImageURL),
	)
}
