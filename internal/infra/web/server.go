package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"voice-ai-callbot/internal/domain/ports/adapter"
	"voice-ai-callbot/internal/infra/logging"
	"voice-ai-callbot/internal/usecase"
)

// Server wires the provider webhooks and the administrative JSON surface.
type Server struct {
	convUC   usecase.ConversationUseCase
	callCtrl adapter.CallControlAdapter
	baseURL  string
	voice    string
	apiKey   string
	dev      bool
	log      *zerolog.Logger
}

func NewServer(
	convUC usecase.ConversationUseCase,
	callCtrl adapter.CallControlAdapter,
	baseURL, voice, apiKey string,
	dev bool,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		convUC:   convUC,
		callCtrl: callCtrl,
		baseURL:  strings.TrimRight(baseURL, "/"),
		voice:    voice,
		apiKey:   apiKey,
		dev:      dev,
		log:      &l,
	}
}

// Router builds the full route tree. Webhooks are deliberately
// unauthenticated (the provider signs requests; verifying is out of scope);
// admin routes take the bearer key when one is configured.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Callbot is running!"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Provider webhooks
	r.Post("/voice", s.handleVoice)
	r.Post("/process_speech", s.handleProcessSpeech)

	// Admin JSON surface
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/call_status/{callID}", s.handleCallStatus)
		r.Get("/active_calls", s.handleActiveCalls)
		r.Post("/make_call", s.handleMakeCall)
	})

	return r
}

// traceMiddleware tags every request with a trace id and logs it.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		if sid := r.FormValue("CallSid"); sid != "" {
			ctx = logging.WithCallSID(ctx, sid)
		}
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authMiddleware provides simple Bearer token authentication for the admin
// API. With no key configured the surface stays open (dev setups).
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}
		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
