package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hearthline/leadline/internal/leadservice/adapters/smsprovider"
	"github.com/hearthline/leadline/internal/leadservice/domain"
	"github.com/hearthline/leadline/internal/leadservice/notify"
	"github.com/hearthline/leadline/internal/leadservice/parser"
)

// Alert headers, matching the wording the operator is used to.
const (
	alertHeaderVoicemail   = "New voicemail"
	alertHeaderTranscribed = "Voicemail transcribed"
	alertHeaderSMS         = "New lead via SMS"
)

const transcriptionNotePrefix = "Voicemail transcription: "

// IntakeConfig is the slice of application config the intake flow needs.
type IntakeConfig struct {
	Business              notify.BusinessInfo
	ProviderPhone         string // number alerts are sent from
	OperatorPhone         string // number alerts are sent to
	DedupWindow           time.Duration
	TranscriptionLookback time.Duration
	MaxRecordingSeconds   int
}

// IntakeService orchestrates one inbound telephony event end-to-end:
// parse/construct the lead, persist it, decide whether to alert the
// operator, and hand the transport layer the synchronous reply. Each event
// is handled within its request; there are no queues or retries.
type IntakeService struct {
	leadRepo domain.LeadRepository
	notifLog domain.NotificationLogRepository
	provider smsprovider.Adapter
	cfg      IntakeConfig
	logger   *slog.Logger
}

// NewIntakeService creates an IntakeService.
func NewIntakeService(
	leadRepo domain.LeadRepository,
	notifLog domain.NotificationLogRepository,
	provider smsprovider.Adapter,
	cfg IntakeConfig,
	logger *slog.Logger,
) *IntakeService {
	return &IntakeService{
		leadRepo: leadRepo,
		notifLog: notifLog,
		provider: provider,
		cfg:      cfg,
		logger:   logger.With("component", "intake_service"),
	}
}

// CallPrompt is the reply to an incoming voice call: a spoken greeting plus
// recording instructions. No lead exists yet at this point.
type CallPrompt struct {
	Greeting            string
	MaxRecordingSeconds int
}

// HandleIncomingCall answers an incoming call. It only builds the prompt;
// the lead is created later, when the voicemail actually lands.
func (s *IntakeService) HandleIncomingCall(ctx context.Context, from string) CallPrompt {
	s.logger.InfoContext(ctx, "Incoming call", "from", from)
	webhookEventsCounter.WithLabelValues("voice", "ok").Inc()
	return CallPrompt{
		Greeting:            notify.VoicemailGreeting(s.cfg.Business),
		MaxRecordingSeconds: s.cfg.MaxRecordingSeconds,
	}
}

// HandleVoicemailComplete records a new voicemail lead and alerts the
// operator right away; the transcription follows asynchronously. The
// returned string is the spoken confirmation for the caller.
func (s *IntakeService) HandleVoicemailComplete(ctx context.Context, from, recordingURL string) (string, error) {
	lead := domain.NewLead(domain.NewLeadParams{
		CustomerPhone: from,
		HasVoicemail:  true,
		VoicemailURL:  nullIfEmpty(recordingURL),
	})

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		webhookEventsCounter.WithLabelValues("voicemail", "error").Inc()
		return "", fmt.Errorf("creating voicemail lead: %w", err)
	}
	leadsCreatedCounter.WithLabelValues("voicemail").Inc()
	s.logger.InfoContext(ctx, "Voicemail lead created", "lead_id", lead.ID, "from", from)

	// No recording URL means the caller hung up without leaving a message;
	// they get the reply-with-your-details auto-text.
	s.notifyNewLead(ctx, lead, alertHeaderVoicemail, recordingURL == "")

	webhookEventsCounter.WithLabelValues("voicemail", "ok").Inc()
	return notify.HangupConfirmation(), nil
}

// HandleTranscription attaches a late-arriving transcription to the lead it
// belongs to and re-alerts the operator with the excerpt. Correlation is by
// phone number and voicemail flag inside the lookback window only; when no
// lead matches the event is logged and dropped (the provider gets its 200
// either way).
func (s *IntakeService) HandleTranscription(ctx context.Context, from, text, recordingSID string) error {
	logger := s.logger.With("from", from, "recording_sid", recordingSID)

	lead, err := s.leadRepo.FindRecentVoicemailLead(ctx, from, s.cfg.TranscriptionLookback)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.WarnContext(ctx, "Transcription arrived with no matching voicemail lead")
			webhookEventsCounter.WithLabelValues("transcription", "no_match").Inc()
			return nil
		}
		webhookEventsCounter.WithLabelValues("transcription", "error").Inc()
		return fmt.Errorf("correlating transcription from %s: %w", from, err)
	}

	if _, err := s.leadRepo.SetTranscription(ctx, lead.ID, text); err != nil {
		webhookEventsCounter.WithLabelValues("transcription", "error").Inc()
		return fmt.Errorf("storing transcription on lead %s: %w", lead.ID, err)
	}
	if _, err := s.leadRepo.AppendNote(ctx, lead.ID, transcriptionNotePrefix+text); err != nil {
		// Note append failing is not worth failing the webhook over; the
		// transcription itself is already stored.
		logger.ErrorContext(ctx, "Failed to append transcription note", "error", err, "lead_id", lead.ID)
	}
	lead.OriginalMessage = sql.NullString{String: text, Valid: true}
	logger.InfoContext(ctx, "Transcription attached to lead", "lead_id", lead.ID)

	// Deliberately not deduped: this updates an alert the operator already
	// got for this very lead minutes ago.
	s.sendOperatorAlert(ctx, lead, alertHeaderTranscribed, true)

	webhookEventsCounter.WithLabelValues("transcription", "ok").Inc()
	return nil
}

// HandleIncomingSMS parses and records an SMS lead and alerts the operator.
// The returned string is the acknowledgment texted back to the customer.
func (s *IntakeService) HandleIncomingSMS(ctx context.Context, from, body string) (string, error) {
	parsed := parser.Parse(body)

	lead := domain.NewLead(domain.NewLeadParams{
		CustomerPhone:   from,
		Name:            parsed.Name,
		Address:         parsed.Address,
		Service:         parsed.Service,
		OriginalMessage: nullIfEmpty(body),
	})

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		webhookEventsCounter.WithLabelValues("sms", "error").Inc()
		return "", fmt.Errorf("creating SMS lead: %w", err)
	}
	leadsCreatedCounter.WithLabelValues("sms").Inc()
	s.logger.InfoContext(ctx, "SMS lead created",
		"lead_id", lead.ID, "from", from,
		"parsed_name", parsed.Name.Valid, "parsed_address", parsed.Address.Valid, "parsed_service", parsed.Service.Valid)

	s.notifyNewLead(ctx, lead, alertHeaderSMS, false)

	webhookEventsCounter.WithLabelValues("sms", "ok").Inc()
	return notify.CustomerAck(s.cfg.Business), nil
}

// notifyNewLead runs the outbound texts for a freshly created lead: the
// operator alert and, when the caller left no recording, the instructional
// auto-text back to the customer. One dedup check covers both sends and the
// customer number is recorded once, so a repeat caller generates at most one
// round of texts per window. Every failure on this path is logged and
// swallowed: the provider expects its synchronous webhook reply regardless
// of what happens to the texts.
//
// The transcription re-alert does not go through here: it updates an alert
// the operator already received, so the dedup window must not eat it.
func (s *IntakeService) notifyNewLead(ctx context.Context, lead *domain.Lead, header string, autoText bool) {
	notified, err := s.notifLog.WasRecentlyNotified(ctx, lead.CustomerPhone, s.cfg.DedupWindow)
	if err != nil {
		s.logger.ErrorContext(ctx, "Dedup check failed; sending anyway", "error", err, "lead_id", lead.ID)
	} else if notified {
		s.logger.InfoContext(ctx, "Texts suppressed by dedup window", "lead_id", lead.ID, "customer_phone", lead.CustomerPhone)
		operatorAlertsCounter.WithLabelValues("suppressed_dedup").Inc()
		return
	}

	sent := s.sendOperatorAlert(ctx, lead, header, false)
	if autoText && s.sendAutoText(ctx, lead.CustomerPhone) {
		sent = true
	}
	if !sent {
		return
	}

	if err := s.notifLog.Record(ctx, lead.CustomerPhone); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record notification for dedup", "error", err, "lead_id", lead.ID)
	}
}

// sendOperatorAlert composes and sends one operator alert, reporting whether
// the provider accepted it.
func (s *IntakeService) sendOperatorAlert(ctx context.Context, lead *domain.Lead, header string, includeTranscription bool) bool {
	if s.cfg.OperatorPhone == "" {
		s.logger.WarnContext(ctx, "Operator phone not configured; alert skipped", "lead_id", lead.ID)
		operatorAlertsCounter.WithLabelValues("compose_skipped").Inc()
		return false
	}

	body := notify.OperatorAlert(lead, header, includeTranscription)
	resp, err := s.provider.Send(ctx, smsprovider.SendRequest{
		From: s.cfg.ProviderPhone,
		To:   s.cfg.OperatorPhone,
		Body: body,
	})
	if err != nil || !resp.Success {
		s.logger.ErrorContext(ctx, "Failed to send operator alert",
			"error", err, "lead_id", lead.ID, "provider", s.provider.GetName())
		operatorAlertsCounter.WithLabelValues("send_failed").Inc()
		return false
	}

	s.logger.InfoContext(ctx, "Operator alert sent",
		"lead_id", lead.ID, "provider_message_id", resp.ProviderMessageID)
	operatorAlertsCounter.WithLabelValues("sent").Inc()
	return true
}

// sendAutoText texts reply instructions back to a caller who hung up without
// leaving a message, reporting whether the provider accepted it.
func (s *IntakeService) sendAutoText(ctx context.Context, customerPhone string) bool {
	resp, err := s.provider.Send(ctx, smsprovider.SendRequest{
		From: s.cfg.ProviderPhone,
		To:   customerPhone,
		Body: notify.AutoText(s.cfg.Business),
	})
	if err != nil || !resp.Success {
		s.logger.ErrorContext(ctx, "Failed to send auto-text",
			"error", err, "customer_phone", customerPhone, "provider", s.provider.GetName())
		autoTextsCounter.WithLabelValues("send_failed").Inc()
		return false
	}

	s.logger.InfoContext(ctx, "Auto-text sent", "customer_phone", customerPhone, "provider_message_id", resp.ProviderMessageID)
	autoTextsCounter.WithLabelValues("sent").Inc()
	return true
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
