package main

import (
	"fmt"
	"log/slog"
	"time"

	"socialstorm/internal/config"
	"socialstorm/internal/logging"
	"socialstorm/internal/matcher"
	"socialstorm/internal/providers"
	"socialstorm/internal/providers/library"
	"socialstorm/internal/providers/pexels"
	"socialstorm/internal/providers/pixabay"
	"socialstorm/internal/providers/unsplash"
	"socialstorm/internal/services/llm"
	"socialstorm/internal/subjects"
	"socialstorm/internal/synth"
	"socialstorm/internal/usagestore"
	"socialstorm/internal/variety"
)

// engine bundles the wired orchestrator with the resources the caller
// must close when the run finishes.
type engine struct {
	orchestrator *matcher.Orchestrator
	store        *usagestore.Store
	llm          *llm.Client
}

func (e *engine) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// buildEngine assembles the full matching stack from configuration.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*engine, error) {
	fetcher := providers.NewFetcher(nil, cfg.Synth.FFprobeBinary)

	providerList, err := buildProviders(cfg, fetcher)
	if err != nil {
		return nil, err
	}

	var lib *library.Provider
	if cfg.Library.Enabled {
		lib = library.New(library.NewDirCatalog(cfg.Library.Dir), logger)
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	registry := subjects.NewRegistry(logger,
		subjects.NewQuestionExtractor(llmClient),
		subjects.NewMultiSubjectExtractor(),
		subjects.NewSymbolicExtractor(llmClient),
		subjects.NewEmotionExtractor(),
		subjects.NewGeneralExtractor(llmClient, logger),
	)
	for _, strategy := range registry.Strategies() {
		logger.Debug("subject strategy registered",
			logging.String("strategy", strategy.Name()),
			logging.Bool("available", strategy.Available()))
	}

	blocker := variety.NewBlocker(llmClient, logger,
		variety.WithWindow(cfg.Matcher.RepeatWindow))

	renderer := synth.NewRenderer(synth.Options{
		FFmpegBinary:  cfg.Synth.FFmpegBinary,
		FFprobeBinary: cfg.Synth.FFprobeBinary,
		ClipSeconds:   cfg.Synth.ClipSeconds,
		Width:         cfg.Synth.Width,
		Height:        cfg.Synth.Height,
		FPS:           cfg.Synth.FPS,
	}, logger)

	var store *usagestore.Store
	if cfg.Usage.Enabled {
		store, err = usagestore.Open(cfg.Usage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open usage store: %w", err)
		}
	}

	orchestrator := matcher.New(
		providerList,
		lib,
		registry,
		blocker,
		renderer,
		llmClient,
		store,
		matcher.Options{
			MaxSubjects:        cfg.Matcher.MaxSubjects,
			MaxAttempts:        cfg.Matcher.MaxAttempts,
			SceneBudget:        time.Duration(cfg.Matcher.SceneBudgetSeconds) * time.Second,
			ProviderTimeout:    time.Duration(cfg.Matcher.ProviderTimeoutSeconds) * time.Second,
			VideoScoreFloor:    cfg.Matcher.VideoScoreFloor,
			ImageScoreFloor:    cfg.Matcher.ImageScoreFloor,
			AllowRawImage:      cfg.Matcher.AllowRawImage,
			RelaxLandmarkFinal: cfg.Matcher.RelaxLandmarkFinal,
		},
		logger,
	)

	return &engine{orchestrator: orchestrator, store: store, llm: llmClient}, nil
}

func buildProviders(cfg *config.Config, fetcher *providers.Fetcher) ([]providers.Provider, error) {
	var list []providers.Provider

	if cfg.Pexels.Enabled {
		client, err := pexels.New(cfg.Pexels.APIKey, cfg.Pexels.BaseURL, fetcher)
		if err != nil {
			return nil, fmt.Errorf("pexels: %w", err)
		}
		list = append(list, client.VideoProvider(), client.PhotoProvider())
	}
	if cfg.Pixabay.Enabled {
		client, err := pixabay.New(cfg.Pixabay.APIKey, cfg.Pixabay.BaseURL, fetcher)
		if err != nil {
			return nil, fmt.Errorf("pixabay: %w", err)
		}
		list = append(list, client.VideoProvider(), client.PhotoProvider())
	}
	if cfg.Unsplash.Enabled {
		client, err := unsplash.New(cfg.Unsplash.AccessKey, cfg.Unsplash.BaseURL, fetcher)
		if err != nil {
			return nil, fmt.Errorf("unsplash: %w", err)
		}
		list = append(list, client.Provider())
	}

	return list, nil
}
