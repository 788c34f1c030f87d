package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lily-ai/lily/internal/config"
	"github.com/lily-ai/lily/internal/emotion"
	"github.com/lily-ai/lily/internal/engine"
	"github.com/lily-ai/lily/internal/httpapi"
	"github.com/lily-ai/lily/internal/memory"
	"github.com/lily-ai/lily/internal/model"
	"github.com/lily-ai/lily/internal/observability"
	"github.com/lily-ai/lily/internal/retrieval"
	"github.com/lily-ai/lily/internal/session"
	"github.com/lily-ai/lily/internal/voice"
	"github.com/lily-ai/lily/internal/wakeword"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := memory.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("memory store init failed: %v", err)
	}
	defer store.Close()
	retryingStore := memory.WithWriteRetry(store, func(op string) {
		metrics.MemoryWriteRetries.WithLabelValues(op).Inc()
	})

	index := retrieval.New(cfg.RetrievalEnabled, retrieval.NewHashEmbedder(cfg.EmbeddingDim))
	defer index.Close()

	adapter, err := model.NewAdapter(cfg.ModelAdapterMode, cfg.OllamaURL, cfg.ModelName, cfg.ModelTimeoutSecs)
	if err != nil {
		log.Fatalf("model adapter init failed: %v", err)
	}

	persona := engine.LoadPersona(cfg.PersonaPath)
	core := engine.New(
		emotion.NewMachine(),
		retryingStore,
		index,
		adapter,
		metrics,
		persona,
		engine.Options{
			ContextTurns:         cfg.ContextTurns,
			RetrievalTopK:        cfg.RetrievalTopK,
			PromptCharBudget:     cfg.PromptCharBudget,
			EmotionWindow:        cfg.EmotionWindow,
			Temperature:          cfg.Temperature,
			TopP:                 cfg.TopP,
			TopK:                 cfg.TopK,
			IndexFallbackReplies: cfg.IndexFallbackReplies,
		},
	)

	files, err := voice.NewFileStore(cfg.AudioDir)
	if err != nil {
		log.Fatalf("audio file store init failed: %v", err)
	}
	files.CleanOld(cfg.AudioMaxAge)

	detector := wakeword.NewDetector(cfg.WakeWord, func() {
		log.Printf("wake word %q detected", cfg.WakeWord)
	})
	detector.Enable()

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	var pinger httpapi.Pinger
	if p, ok := adapter.(httpapi.Pinger); ok {
		pinger = p
	}

	api := httpapi.New(
		cfg,
		core,
		sessions,
		metrics,
		detector,
		files,
		voice.NewMockSynthesizer(files),
		voice.NewMockTranscriber(),
		pinger,
	)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 30*time.Second)
	files.StartJanitor(runCtx, time.Minute, cfg.AudioMaxAge)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
