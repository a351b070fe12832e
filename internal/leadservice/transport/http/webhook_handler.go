package http

import (
	"context"
	"log/slog"
	"net/http"

	chi_middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hearthline/leadline/internal/leadservice/app"
)

// IntakeController is the application surface the webhook endpoints drive.
type IntakeController interface {
	HandleIncomingCall(ctx context.Context, from string) app.CallPrompt
	HandleVoicemailComplete(ctx context.Context, from, recordingURL string) (string, error)
	HandleTranscription(ctx context.Context, from, text, recordingSID string) error
	HandleIncomingSMS(ctx context.Context, from, body string) (string, error)
}

// WebhookHandler terminates the telephony provider's callbacks. Payloads are
// form-encoded; missing fields are handled best-effort (empty values), since
// the provider has no use for a validation failure mid-conversation.
type WebhookHandler struct {
	intake IntakeController
	logger *slog.Logger

	transcribeCallbackPath string
	voicemailActionPath    string
}

// NewWebhookHandler creates a WebhookHandler. The path arguments are baked
// into the <Record> verb so the provider knows where to deliver the
// recording and transcription callbacks.
func NewWebhookHandler(intake IntakeController, logger *slog.Logger, transcribeCallbackPath, voicemailActionPath string) *WebhookHandler {
	return &WebhookHandler{
		intake:                 intake,
		logger:                 logger.With("handler", "webhooks"),
		transcribeCallbackPath: transcribeCallbackPath,
		voicemailActionPath:    voicemailActionPath,
	}
}

func (h *WebhookHandler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", chi_middleware.GetReqID(r.Context()))
}

// HandleVoice answers an incoming call with the greeting and a record verb.
func (h *WebhookHandler) HandleVoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	from := r.PostFormValue("From")
	logger.InfoContext(ctx, "Voice webhook received", "from", from)

	prompt := h.intake.HandleIncomingCall(ctx, from)

	renderTwiML(w, logger, VoiceResponse{
		Say: []Say{{Voice: sayVoice, Text: prompt.Greeting}},
		Record: &Record{
			Timeout:            3,
			Transcribe:         true,
			TranscribeCallback: h.transcribeCallbackPath,
			Action:             h.voicemailActionPath,
			MaxLength:          prompt.MaxRecordingSeconds,
		},
	})
}

// HandleVoicemailComplete stores the voicemail lead and confirms to the
// caller before hanging up.
func (h *WebhookHandler) HandleVoicemailComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	from := r.PostFormValue("From")
	recordingURL := r.PostFormValue("RecordingUrl")
	logger.InfoContext(ctx, "Voicemail webhook received", "from", from, "has_recording_url", recordingURL != "")

	confirmation, err := h.intake.HandleVoicemailComplete(ctx, from, recordingURL)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to process voicemail", "error", err)
		http.Error(w, "Failed to process voicemail", http.StatusInternalServerError)
		return
	}

	renderTwiML(w, logger, VoiceResponse{
		Say:    []Say{{Voice: sayVoice, Text: confirmation}},
		Hangup: &Hangup{},
	})
}

// HandleTranscription attaches a finished transcription to its lead.
// Replies with an empty 200; the provider fires this callback blind.
func (h *WebhookHandler) HandleTranscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	from := r.PostFormValue("From")
	text := r.PostFormValue("TranscriptionText")
	recordingSID := r.PostFormValue("RecordingSid")
	logger.InfoContext(ctx, "Transcription webhook received", "from", from, "recording_sid", recordingSID)

	if err := h.intake.HandleTranscription(ctx, from, text, recordingSID); err != nil {
		logger.ErrorContext(ctx, "Failed to process transcription", "error", err)
		http.Error(w, "Failed to process transcription", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleSMS records an SMS lead and texts the acknowledgment back.
func (h *WebhookHandler) HandleSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	logger.InfoContext(ctx, "SMS webhook received", "from", from, "body_len", len(body))

	ack, err := h.intake.HandleIncomingSMS(ctx, from, body)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to process incoming SMS", "error", err)
		http.Error(w, "Failed to process SMS", http.StatusInternalServerError)
		return
	}

	renderTwiML(w, logger, MessagingResponse{
		Message: []Message{{Text: ack}},
	})
}
