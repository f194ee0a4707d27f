package whiskers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageURL(t *testing.T) {
	testCases := []struct {
		name string
		tmpl string
		id   string
		want string
	}{
		{"suffix", "https://cats.example/img/{imgid}.jpg", "42", "https://cats.example/img/42.jpg"},
		{"query", "https://cats.example/get?id={imgid}&size=full", "abc", "https://cats.example/get?id=abc&size=full"},
		{"repeated", "https://cats.example/{imgid}/{imgid}", "x", "https://cats.example/x/x"},
		{"no placeholder", "https://cats.example/random", "42", "https://cats.example/random"},
		{"verbatim id", "https://cats.example/{imgid}", "a b%2F", "https://cats.example/a b%2F"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := NewImageHost(tc.tmpl, nil).URL(tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.want, u)
		})
	}

	t.Run("no template", func(t *testing.T) {
		_, err := NewImageHost("", nil).URL("42")
		assert.ErrorIs(t, err, ErrNoImageURLTemplate)
	})
}

func TestImageFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img/7.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	h := NewImageHost(srv.URL+"/img/{imgid}.jpg", srv.Client())

	t.Run("found", func(t *testing.T) {
		resp, err := h.Fetch(t.Context(), "7")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "jpegdata", string(body))
		assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	})

	t.Run("upstream status is not an error", func(t *testing.T) {
		resp, err := h.Fetch(t.Context(), "8")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("no template", func(t *testing.T) {
		_, err := NewImageHost("", srv.Client()).Fetch(t.Context(), "7")
		assert.ErrorIs(t, err, ErrNoImageURLTemplate)
	})
}
