package web

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"voice-ai-callbot/internal/infra/logging"
	"voice-ai-callbot/internal/infra/metrics"
	"voice-ai-callbot/internal/usecase"
)

const speechAction = "/process_speech"

// handleVoice answers the call-start webhook: greet and arm the first
// listening window. The context string rides in on the "context" query
// parameter of the callback URL.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := r.FormValue("CallSid")
	callContext := r.URL.Query().Get("context")

	if callID == "" {
		s.renderTwiML(w, NewVoiceResponse().
			Say("Sorry, something went wrong with this call.", s.voice).
			Hangup())
		return
	}

	outcome, err := s.convUC.StartCall(ctx, callID, callContext)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("start call failed")
		// The caller never hears a technical error; re-prompt instead.
		s.renderTwiML(w, NewVoiceResponse().
			Say("Sorry, I'm having trouble right now. Please ask your question.", s.voice).
			GatherSpeech(5, speechAction))
		return
	}

	if outcome.CallStarted {
		metrics.IncCallStarted()
	}
	s.renderTwiML(w, NewVoiceResponse().
		Say(outcome.Reply, s.voice).
		GatherSpeech(int(outcome.ListenTimeout.Seconds()), speechAction))
}

// handleProcessSpeech advances the conversation with a transcribed
// utterance (possibly empty on a listening-window timeout).
func (s *Server) handleProcessSpeech(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := r.FormValue("CallSid")
	speech := r.FormValue("SpeechResult")
	if conf := r.FormValue("Confidence"); conf != "" {
		logging.With(ctx, s.log).Debug().Str("confidence", conf).Msg("speech result")
	}

	if callID == "" {
		s.renderTwiML(w, NewVoiceResponse().
			Say("Sorry, something went wrong with this call.", s.voice).
			Hangup())
		return
	}

	outcome, err := s.convUC.HandleUtterance(ctx, callID, speech)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("handle utterance failed")
		s.renderTwiML(w, NewVoiceResponse().
			Say("Sorry, I missed that. Could you say it again?", s.voice).
			GatherSpeech(5, speechAction))
		return
	}

	if outcome.Exchanged {
		metrics.IncExchange()
		metrics.IncReplySelected(outcome.Source)
	}
	if outcome.CallEnded {
		metrics.IncCallEnded()
	}

	resp := NewVoiceResponse().Say(outcome.Reply, s.voice)
	if outcome.Action == usecase.ActionListen {
		resp.GatherSpeech(int(outcome.ListenTimeout.Seconds()), speechAction)
	} else {
		resp.Hangup()
	}
	s.renderTwiML(w, resp)
}

func (s *Server) handleCallStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := chi.URLParam(r, "callID")

	view, err := s.convUC.Status(ctx, callID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "unknown call id")
		return
	}

	// providerStatus is best-effort; the summary is the payload that matters.
	view.ProviderStatus = "unknown"
	if status, err := s.callCtrl.CallStatus(ctx, callID); err == nil && status != "" {
		view.ProviderStatus = status
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleActiveCalls(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.convUC.ActiveCalls(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list calls")
		return
	}

	response := struct {
		ActiveCount   int `json:"activeCount"`
		Conversations any `json:"conversations"`
	}{
		ActiveCount:   len(summaries),
		Conversations: summaries,
	}
	writeJSON(w, http.StatusOK, response)
}

type makeCallRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Context     string `json:"context"`
}

func (s *Server) handleMakeCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req makeCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" {
		writeJSONError(w, http.StatusBadRequest, "phoneNumber is required")
		return
	}

	webhookURL := s.baseURL + "/voice"
	if req.Context != "" {
		webhookURL += "?context=" + url.QueryEscape(req.Context)
	}

	callID, err := s.callCtrl.StartCall(ctx, req.PhoneNumber, webhookURL)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("outbound call failed")
		writeJSONError(w, http.StatusBadGateway, "failed to place call")
		return
	}

	logging.With(ctx, s.log).Info().
		Str("call_sid", callID).
		Str("to", logging.Redact(req.PhoneNumber, s.dev)).
		Msg("outbound call placed")

	response := struct {
		Success bool   `json:"success"`
		CallID  string `json:"callId"`
		Message string `json:"message"`
	}{
		Success: true,
		CallID:  callID,
		Message: "call started",
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) renderTwiML(w http.ResponseWriter, resp *VoiceResponse) {
	body, err := resp.Render()
	if err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, struct {
		Error string `json:"error"`
	}{Error: msg})
}
