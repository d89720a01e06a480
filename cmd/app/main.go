// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-ai-callbot/internal/config"
	"voice-ai-callbot/internal/domain/ports/adapter"
	aiAdapters "voice-ai-callbot/internal/infra/adapters/ai"
	"voice-ai-callbot/internal/infra/adapters/twilio"
	"voice-ai-callbot/internal/infra/logging"
	"voice-ai-callbot/internal/infra/memory"
	"voice-ai-callbot/internal/infra/metrics"
	"voice-ai-callbot/internal/infra/sched"
	"voice-ai-callbot/internal/infra/web"
	"voice-ai-callbot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop call provider, canned AI)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Stores ----
	conversations := memory.NewConversationRepo()
	callLog := memory.NewCallLogRepo()

	// ---- AI adapter (Gemini -> OpenAI) ----
	providers := map[string]adapter.AIServiceAdapter{}
	if cfg.AI.GeminiKey != "" {
		gem, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		providers["gemini"] = gem
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	}
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		providers["openai"] = oa
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	}
	if len(providers) == 0 {
		if !cfg.Runtime.Dev {
			log.Fatalf("no AI provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
		}
		providers["gemini"] = aiAdapters.NewEchoAdapter()
		logger.Warn().Msg("AI adapter: echo (dev)")
	}
	ai := aiAdapters.NewMultiAIAdapter("gemini", providers)

	// ---- Call control (Twilio, noop in dev without credentials) ----
	var callCtrl adapter.CallControlAdapter
	if cfg.Twilio.AccountSID != "" {
		callCtrl, err = twilio.NewClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
		if err != nil {
			log.Fatalf("twilio: %v", err)
		}
	} else {
		if !cfg.Runtime.Dev {
			log.Fatalf("twilio.account_sid is required outside dev mode")
		}
		callCtrl = twilio.NewNoopAdapter(logger)
	}

	// ---- Use cases ----
	responder := usecase.NewResponderUseCase(
		ai,
		cfg.AI.DefaultModel,
		adapter.GenerationOptions{MaxOutputTokens: cfg.AI.MaxOutputTokens, Temperature: cfg.AI.Temperature},
		cfg.AI.RequestTimeout,
		logger,
	)
	convUC := usecase.NewConversationUseCase(conversations, callLog, responder, usecase.ConversationConfig{
		ListenTimeoutEarly: cfg.Conversation.ListenTimeoutEarly,
		ListenTimeoutLate:  cfg.Conversation.ListenTimeoutLate,
	}, logger)

	// ---- Idle sweeper (off unless a TTL is configured) ----
	if cfg.Conversation.IdleTTL > 0 {
		sweeper := sched.NewIdleSweeper(cfg.Conversation.SweepInterval, cfg.Conversation.IdleTTL, conversations, logger)
		go func() {
			if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("idle sweeper stopped")
			}
		}()
	}

	// ---- HTTP server ----
	webSrv := web.NewServer(convUC, callCtrl, cfg.Server.BaseURL, cfg.Server.Voice, cfg.Admin.APIKey, cfg.Runtime.Dev, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: webSrv.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	cancel()
}
