package main

import (
	"context"
	"log"
	"time"

	"github.com/rs/zerolog"

	"voice-ai-callbot/internal/domain/ports/adapter"
	aiadapter "voice-ai-callbot/internal/infra/adapters/ai"
	"voice-ai-callbot/internal/infra/memory"
	"voice-ai-callbot/internal/usecase"
)

// Scripted walk through one call, no provider and no model key needed.
func main() {
	logger := zerolog.Nop()

	conversations := memory.NewConversationRepo()
	callLog := memory.NewCallLogRepo()

	responder := usecase.NewResponderUseCase(
		aiadapter.NewEchoAdapter(),
		"echo",
		adapter.GenerationOptions{MaxOutputTokens: 120, Temperature: 0.7},
		2*time.Second,
		&logger,
	)
	convUC := usecase.NewConversationUseCase(conversations, callLog, responder, usecase.ConversationConfig{}, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	callID := "CAdemo001"
	callContext := "Today's Topic: Goroutines\nProgress: 40%\nMonth: 2"

	outcome, err := convUC.StartCall(ctx, callID, callContext)
	if err != nil {
		log.Fatalf("start call error: %v", err)
	}
	log.Printf("greeting: %q (listen %s)", outcome.Reply, outcome.ListenTimeout)

	for _, utterance := range []string{
		"hello",
		"what is today's topic",
		"how do channels work",
		"", // listening window elapsed
		"goodbye",
	} {
		outcome, err = convUC.HandleUtterance(ctx, callID, utterance)
		if err != nil {
			log.Fatalf("turn error for %q: %v", utterance, err)
		}
		log.Printf("caller: %-28q bot [%s]: %q (action=%s)", utterance, outcome.Source, outcome.Reply, outcome.Action)
	}

	view, err := convUC.Status(ctx, callID)
	if err != nil {
		log.Fatalf("status error: %v", err)
	}
	log.Printf("final status: %d exchanges, log=%s", view.Conversation.ExchangeCount, view.Log.Status)
}
