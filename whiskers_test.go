package whiskers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Run("backends", func(t *testing.T) {
		for _, hio := range []InitOptions{
			{Backend: "openai"},
			{Backend: ""},
			{Backend: "openrouter", OpenRouterKey: "sk-or"},
			{Backend: "llama", LlamaServer: "http://localhost:8080"},
		} {
			w, err := Init(hio)
			require.NoError(t, err, "backend %q", hio.Backend)

			want := hio.Backend
			if want == "" {
				want = "openai"
			}
			assert.Equal(t, want, w.Name())
		}
	})

	t.Run("missing settings", func(t *testing.T) {
		_, err := Init(InitOptions{Backend: "openrouter"})
		assert.Error(t, err, "openrouter without a key")

		_, err = Init(InitOptions{Backend: "llama"})
		assert.Error(t, err, "llama without a server")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Init(InitOptions{Backend: "ollama"})
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})

	t.Run("models", func(t *testing.T) {
		w, err := Init(InitOptions{DescriptionModel: "vision", TagsModel: "text"})
		require.NoError(t, err)
		assert.Equal(t, "vision", w.DescriptionModel())
		assert.Equal(t, "text", w.TagsModel())
	})
}
