package openrouter

import (
	"context"
	"errors"
	"testing"

	"github.com/chriskillpack/whiskers/describer"
	"github.com/revrost/go-openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	got  openrouter.ChatCompletionRequest
	resp openrouter.ChatCompletionResponse
	err  error
}

func (m *mockClient) CreateChatCompletion(_ context.Context,
	ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
	m.got = ccr
	return m.resp, m.err
}

func reply(role, text string) openrouter.ChatCompletionChoice {
	return openrouter.ChatCompletionChoice{
		Message: openrouter.ChatCompletionMessage{
			Role:    role,
			Content: openrouter.Content{Text: text},
		},
	}
}

func TestComplete(t *testing.T) {
	testCases := []struct {
		name        string
		req         describer.Request
		resp        openrouter.ChatCompletionResponse
		err         error
		wantChoices []describer.Choice
		wantErr     bool
	}{
		{
			name: "text prompt",
			req:  describer.Request{Model: "openai/gpt-3.5-turbo", Prompt: "tags for: a cat", MaxTokens: 10},
			resp: openrouter.ChatCompletionResponse{
				Choices: []openrouter.ChatCompletionChoice{reply(openrouter.ChatMessageRoleAssistant, "single-cat")},
			},
			wantChoices: []describer.Choice{{Role: "assistant", Content: "single-cat"}},
		},
		{
			name: "image prompt",
			req: describer.Request{
				Model:     "openai/gpt-4o",
				Prompt:    "describe",
				ImageURL:  "https://images.example/7.jpg",
				MaxTokens: 1000,
			},
			resp: openrouter.ChatCompletionResponse{
				Choices: []openrouter.ChatCompletionChoice{
					reply(openrouter.ChatMessageRoleUser, "echo"),
					reply(openrouter.ChatMessageRoleAssistant, "It's a cat."),
				},
			},
			wantChoices: []describer.Choice{
				{Role: "user", Content: "echo"},
				{Role: "assistant", Content: "It's a cat."},
			},
		},
		{
			name:    "API error returned",
			req:     describer.Request{Model: "m", Prompt: "fail"},
			err:     errors.New("api failure"),
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockClient{resp: tc.resp, err: tc.err}
			r := &router{client: mock}

			choices, err := r.Complete(t.Context(), tc.req)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantChoices, choices)

			assert.Equal(t, tc.req.Model, mock.got.Model)
			assert.Equal(t, int(tc.req.MaxTokens), mock.got.MaxTokens)
			require.Len(t, mock.got.Messages, 1)
			msg := mock.got.Messages[0]
			assert.Equal(t, openrouter.ChatMessageRoleUser, msg.Role)

			if tc.req.ImageURL == "" {
				assert.Equal(t, tc.req.Prompt, msg.Content.Text)
				assert.Empty(t, msg.Content.Multi)
				return
			}
			require.Len(t, msg.Content.Multi, 2)
			assert.Equal(t, openrouter.ChatMessagePartTypeText, msg.Content.Multi[0].Type)
			assert.Equal(t, tc.req.Prompt, msg.Content.Multi[0].Text)
			assert.Equal(t, openrouter.ChatMessagePartTypeImageURL, msg.Content.Multi[1].Type)
			assert.Equal(t, tc.req.ImageURL, msg.Content.Multi[1].ImageURL.URL)
		})
	}
}
