package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	DefaultDescriptionPrompt = "Describe this image. Focus on the cat or cats in the photo. What do they look like? " +
		"What are they doing? In what surroundings are they?"

	DefaultTagsPrompt = "The following description is about cats and their surroundings. Extract up to five " +
		"useful tags such as the number of cats, their color, their actions, and where they are (e.g. pavement, " +
		"roof, couch). The tags should be lower case and if multiple words, separated by a '-' (e.g. single-cat). " +
		"Do not include any bullet points or numbers in the response, just a comma-separated list of tags. " +
		"Description:"
)

var backends = []string{"openai", "openrouter", "llama"}

// Config is resolved once at startup from the environment.
type Config struct {
	ListenAddr string
	LogLevel   zerolog.Level

	ImageURLTemplate string

	Backend          string
	OpenRouterAPIKey string
	LlamaServer      string
	LlamaSeed        int

	DescriptionModel     string
	DescriptionPrompt    string
	DescriptionMaxTokens int64

	TagsModel     string
	TagsPrompt    string
	TagsMaxTokens int64

	// Use DescriptionModel for tags, matching older deployments.
	TagsUseDescriptionModel bool

	UpstreamTimeout time.Duration
	ShutdownTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("LISTEN_ADDR", ":8000")
	v.SetDefault("LOG_LEVEL", "DEBUG")
	v.SetDefault("IMAGE_URL_TMPL", "")
	v.SetDefault("LLM_BACKEND", "openai")
	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("LLAMA_SERVER", "")
	v.SetDefault("LLAMA_SEED", 385480504)
	v.SetDefault("DESCRIPTION_MODEL", "gpt-4-vision-preview")
	v.SetDefault("DESCRIPTION_PROMPT", DefaultDescriptionPrompt)
	v.SetDefault("DESCRIPTION_MAX_TOKENS", 1000)
	v.SetDefault("TAGS_MODEL", "gpt-3.5-turbo")
	v.SetDefault("TAGS_PROMPT", DefaultTagsPrompt)
	v.SetDefault("TAGS_MAX_TOKENS", 10)
	v.SetDefault("TAGS_USE_DESCRIPTION_MODEL", false)
	v.SetDefault("UPSTREAM_TIMEOUT", "0s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads .env from the working directory, if there is one, and then
// resolves the configuration from the environment. Variables already set in
// the environment take precedence over .env.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit .env files. Missing files are skipped.
func LoadFiles(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	level, err := parseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	c := &Config{
		ListenAddr:              v.GetString("LISTEN_ADDR"),
		LogLevel:                level,
		ImageURLTemplate:        v.GetString("IMAGE_URL_TMPL"),
		Backend:                 strings.ToLower(v.GetString("LLM_BACKEND")),
		OpenRouterAPIKey:        v.GetString("OPENROUTER_API_KEY"),
		LlamaServer:             v.GetString("LLAMA_SERVER"),
		DescriptionModel:        v.GetString("DESCRIPTION_MODEL"),
		DescriptionPrompt:       v.GetString("DESCRIPTION_PROMPT"),
		TagsModel:               v.GetString("TAGS_MODEL"),
		TagsPrompt:              v.GetString("TAGS_PROMPT"),
		TagsUseDescriptionModel: v.GetBool("TAGS_USE_DESCRIPTION_MODEL"),
	}

	// viper's typed getters return zero on parse failure, so numbers and
	// durations are parsed here to surface bad values.
	if c.LlamaSeed, err = parseInt(v, "LLAMA_SEED"); err != nil {
		return nil, err
	}
	maxTokens, err := parseInt(v, "DESCRIPTION_MAX_TOKENS")
	if err != nil {
		return nil, err
	}
	c.DescriptionMaxTokens = int64(maxTokens)
	if maxTokens, err = parseInt(v, "TAGS_MAX_TOKENS"); err != nil {
		return nil, err
	}
	c.TagsMaxTokens = int64(maxTokens)

	if c.UpstreamTimeout, err = parseDuration(v, "UPSTREAM_TIMEOUT"); err != nil {
		return nil, err
	}
	if c.ShutdownTimeout, err = parseDuration(v, "SHUTDOWN_TIMEOUT"); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	known := false
	for _, b := range backends {
		known = known || c.Backend == b
	}
	if !known {
		return fmt.Errorf("invalid LLM_BACKEND %q, expected one of %s", c.Backend, strings.Join(backends, ", "))
	}

	if c.Backend == "openrouter" && c.OpenRouterAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required when LLM_BACKEND=openrouter")
	}
	if c.Backend == "llama" && c.LlamaServer == "" {
		return fmt.Errorf("LLAMA_SERVER is required when LLM_BACKEND=llama")
	}
	if c.DescriptionMaxTokens <= 0 || c.TagsMaxTokens <= 0 {
		return fmt.Errorf("DESCRIPTION_MAX_TOKENS and TAGS_MAX_TOKENS must be positive")
	}

	return nil
}

// TagsModelInUse returns the model the tag extractor sends requests to.
func (c *Config) TagsModelInUse() string {
	if c.TagsUseDescriptionModel {
		return c.DescriptionModel
	}
	return c.TagsModel
}

// parseLevel accepts zerolog level names in any case, plus the "warning" and
// "critical" aliases.
func parseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "warning":
		s = "warn"
	case "critical":
		s = "fatal"
	}
	return zerolog.ParseLevel(s)
}

func parseInt(v *viper.Viper, key string) (int, error) {
	s := v.GetString(key)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	s := v.GetString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}
