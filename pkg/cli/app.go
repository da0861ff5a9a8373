package cli

import (
	"context"
	"fmt"
	"log"

	"doc-narrator/pkg/config"
	"doc-narrator/pkg/db"
	"doc-narrator/pkg/fetch"
	"doc-narrator/pkg/httpclient"
	"doc-narrator/pkg/jobs"
	"doc-narrator/pkg/lang"
	"doc-narrator/pkg/narrate"
	"doc-narrator/pkg/pipeline"
	"doc-narrator/pkg/segment"
	"doc-narrator/pkg/speech"
	"doc-narrator/pkg/translate"
)

// app holds the wired components shared by the commands
type app struct {
	manager *jobs.Manager
	store   db.RunStore
}

// newPipeline wires the pipeline stages from the config
func newPipeline(cfg config.Config) (*pipeline.Pipeline, error) {
	clientType, err := httpclient.ParseClientType(cfg.Fetch.Client)
	if err != nil {
		return nil, err
	}
	client := httpclient.NewClient(clientType, cfg.Fetch.Timeout)

	translator, err := translate.New(cfg.Translation.Provider, cfg.Translation.Endpoint, cfg.Translation.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}
	synth := speech.NewCommandSynthesizer(cfg.Speech.Command, cfg.Speech.Rate, cfg.Speech.Voice)

	return pipeline.NewPipeline(pipeline.Stages{
		Fetcher:   fetch.New(client),
		Segmenter: segment.NewPunktSegmenter(),
		Narrator:  narrate.New(translator, synth),
		Detector:  lang.NewLinguaDetector(),
	}), nil
}

// newApp builds the job manager and, when configured, the run history store
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	p, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}

	store, err := db.Open(ctx, cfg.HistoryOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}

	var recorder jobs.RunRecorder
	if store != nil {
		recorder = store
	}
	return &app{
		manager: jobs.NewManager(p, jobs.NewEventBus(cfg.Events.Max), recorder),
		store:   store,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if a.store == nil {
		return
	}
	if err := a.store.Close(ctx); err != nil {
		log.Printf("History: close failed: %v", err)
	}
}
