package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chriskillpack/whiskers"
	"github.com/chriskillpack/whiskers/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func run(ctx context.Context, srv *Server, shutdownTimeout time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if cfg.ImageURLTemplate == "" {
		log.Warn().Msg("IMAGE_URL_TMPL is not set, image and description requests will fail")
	}
	if cfg.TagsUseDescriptionModel {
		log.Warn().Str("model", cfg.DescriptionModel).Msg("TAGS_USE_DESCRIPTION_MODEL set, tags use the description model")
	}

	hio := whiskers.InitOptions{
		Backend:              cfg.Backend,
		OpenRouterKey:        cfg.OpenRouterAPIKey,
		LlamaServer:          cfg.LlamaServer,
		LlamaSeed:            cfg.LlamaSeed,
		ImageURLTemplate:     cfg.ImageURLTemplate,
		DescriptionModel:     cfg.DescriptionModel,
		DescriptionPrompt:    cfg.DescriptionPrompt,
		DescriptionMaxTokens: cfg.DescriptionMaxTokens,
		TagsModel:            cfg.TagsModelInUse(),
		TagsPrompt:           cfg.TagsPrompt,
		TagsMaxTokens:        cfg.TagsMaxTokens,
		HttpClient: &http.Client{
			Timeout: cfg.UpstreamTimeout,
		},
	}
	w, err := whiskers.Init(hio)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize")
	}
	log.Info().
		Str("backend", w.Name()).
		Str("description_model", w.DescriptionModel()).
		Str("tags_model", w.TagsModel()).
		Msg("using LLM backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := NewServer(w, cfg.ListenAddr, log.Logger)
	if err := run(ctx, srv, cfg.ShutdownTimeout); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
