package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook paths, also baked into the <Record> verb of the voice reply.
const (
	VoicePath             = "/webhooks/twilio/voice"
	VoicemailCompletePath = "/webhooks/twilio/voicemail-complete"
	TranscriptionPath     = "/webhooks/twilio/transcription"
	SMSPath               = "/webhooks/twilio/sms"
)

// NewRouter assembles the full HTTP surface: provider webhooks, dashboard,
// lead API, health and metrics.
func NewRouter(webhooks *WebhookHandler, dashboard *DashboardHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chi_middleware.RequestID)
	r.Use(chi_middleware.RealIP)
	r.Use(chi_middleware.Recoverer)
	r.Use(chi_middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post(VoicePath, webhooks.HandleVoice)
	r.Post(VoicemailCompletePath, webhooks.HandleVoicemailComplete)
	r.Post(TranscriptionPath, webhooks.HandleTranscription)
	r.Post(SMSPath, webhooks.HandleSMS)

	r.Get("/", dashboard.HandleIndex)
	r.Get("/toggle-status/{leadID}", dashboard.HandleToggleStatus)
	r.Get("/api/lead/{leadID}", dashboard.HandleGetLead)
	r.Post("/api/lead/{leadID}/notes", dashboard.HandleSaveNotes)

	return r
}
