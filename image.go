package whiskers

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ImageIDPlaceholder is replaced by the image id in the URL template.
const ImageIDPlaceholder = "{imgid}"

var ErrNoImageURLTemplate = errors.New("no image URL template configured (IMAGE_URL_TMPL)")

// ImageHost fetches images from the upstream image host.
type ImageHost struct {
	tmpl   string
	client *http.Client
}

func NewImageHost(tmpl string, httpClient *http.Client) *ImageHost {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ImageHost{tmpl: tmpl, client: httpClient}
}

// URL returns the upstream URL for the image id. The id is inserted as is,
// it is neither escaped nor validated.
func (h *ImageHost) URL(id string) (string, error) {
	if h.tmpl == "" {
		return "", ErrNoImageURLTemplate
	}
	return strings.ReplaceAll(h.tmpl, ImageIDPlaceholder, id), nil
}

// Fetch issues a GET for the image id. The caller owns the response body.
// Non-2xx responses are not errors.
func (h *ImageHost) Fetch(ctx context.Context, id string) (*http.Response, error) {
	u, err := h.URL(id)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	return h.client.Do(req)
}
