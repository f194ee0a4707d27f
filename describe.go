package whiskers

import (
	"context"
	"fmt"
	"strings"

	"github.com/chriskillpack/whiskers/describer"
)

const (
	// DescriptionFallback is the description returned when the model sends
	// back no assistant reply.
	DescriptionFallback = "the assistant is out for lunch"

	// TagsFallback is the text tags are parsed from when the model sends back
	// no assistant reply. It parses to a single empty tag.
	TagsFallback = ""
)

type DescriptionResult struct {
	Description string `json:"description"`
	ImageID     string `json:"imgid"`
}

type TagsResult struct {
	Tags    []string `json:"tags"`
	ImageID string   `json:"imgid"`
}

// Describe asks the description model to describe the image with the given id.
// The model is handed the upstream image URL, the image bytes never pass
// through this process.
func (w *Whiskers) Describe(ctx context.Context, imgID string) (DescriptionResult, error) {
	u, err := w.Images.URL(imgID)
	if err != nil {
		return DescriptionResult{}, err
	}

	choices, err := w.Complete(ctx, describer.Request{
		Model:     w.description.Model,
		Prompt:    w.description.Text,
		ImageURL:  u,
		MaxTokens: w.description.MaxTokens,
	})
	if err != nil {
		return DescriptionResult{}, fmt.Errorf("describe %q with %s: %w", imgID, w.Name(), err)
	}

	return DescriptionResult{
		Description: AssistantText(choices, DescriptionFallback),
		ImageID:     imgID,
	}, nil
}

// Tags extracts tags from a description. imgID is only echoed back.
func (w *Whiskers) Tags(ctx context.Context, imgID, description string) (TagsResult, error) {
	choices, err := w.Complete(ctx, describer.Request{
		Model:     w.tags.Model,
		Prompt:    w.tags.Text + " " + description,
		MaxTokens: w.tags.MaxTokens,
	})
	if err != nil {
		return TagsResult{}, fmt.Errorf("tag %q with %s: %w", imgID, w.Name(), err)
	}

	return TagsResult{
		Tags:    SplitTags(AssistantText(choices, TagsFallback)),
		ImageID: imgID,
	}, nil
}

// AssistantText returns the content of the first choice authored by the
// assistant, or fallback if there is none.
func AssistantText(choices []describer.Choice, fallback string) string {
	for _, c := range choices {
		if c.Role == describer.RoleAssistant {
			return c.Content
		}
	}

	return fallback
}

// SplitTags splits a comma separated list and trims whitespace from each tag.
// Empty input gives a single empty tag, not an empty slice.
func SplitTags(s string) []string {
	tags := strings.Split(s, ",")
	for i, t := range tags {
		tags[i] = strings.TrimSpace(t)
	}

	return tags
}
