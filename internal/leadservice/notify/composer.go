// Package notify renders every outbound text body the service sends: the
// operator alert, the customer-facing confirmations, and the voice greeting.
// Everything here is a pure function over a lead and the business settings.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/hearthline/leadline/internal/leadservice/domain"
)

// TranscriptionExcerptLimit caps how much of a voicemail transcription is
// quoted in the operator alert, to keep the alert inside a couple of SMS
// segments.
const TranscriptionExcerptLimit = 200

// BusinessInfo carries the business constants used in message templates.
// Injected at construction time, never read from globals.
type BusinessInfo struct {
	Name              string
	Phone             string
	ResponseTimeHours int
}

// OperatorAlert formats the SMS sent to the operator when a lead arrives or
// its transcription lands. header is the message type ("New voicemail",
// "New lead via SMS", ...). When includeTranscription is set and the lead
// has an original message, a truncated excerpt is included.
func OperatorAlert(lead *domain.Lead, header string, includeTranscription bool) string {
	var b strings.Builder

	b.WriteString(strings.ToUpper(header))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "From: %s\n", lead.CustomerPhone)

	if lead.Name.Valid {
		fmt.Fprintf(&b, "Name: %s\n", lead.Name.String)
	}
	if lead.Address.Valid {
		fmt.Fprintf(&b, "Address: %s\n", lead.Address.String)
	}
	if lead.Service.Valid {
		fmt.Fprintf(&b, "Service: %s\n", lead.Service.String)
	}

	if includeTranscription && lead.OriginalMessage.Valid {
		fmt.Fprintf(&b, "\nTranscription:\n%s\n", excerpt(lead.OriginalMessage.String))
	}

	if lead.VoicemailURL.Valid {
		fmt.Fprintf(&b, "\nListen: %s\n", lead.VoicemailURL.String)
	}

	b.WriteString("\nView dashboard to manage leads")
	return b.String()
}

// CustomerAck is the auto-reply after an inbound SMS lead is recorded.
func CustomerAck(biz BusinessInfo) string {
	return fmt.Sprintf(
		"Thank you! We received your information and will call you back within %d hours from %s.",
		biz.ResponseTimeHours, biz.Phone,
	)
}

// AutoText asks a caller who did not leave details to reply with name,
// address and inquiry.
func AutoText(biz BusinessInfo) string {
	return fmt.Sprintf(
		"Thanks for reaching out to %s. We're unavailable for a call right now, but please reply with:\n"+
			"- Your name\n- Your address\n- Your inquiry\n"+
			"We'll call you back from %s within %d hours.",
		biz.Name, biz.Phone, biz.ResponseTimeHours,
	)
}

// VoicemailGreeting is spoken to callers before recording starts.
func VoicemailGreeting(biz BusinessInfo) string {
	return fmt.Sprintf(
		"Thank you for calling %s. We're currently unavailable. Please leave a message after the beep.",
		biz.Name,
	)
}

// HangupConfirmation is spoken once a voicemail has been recorded.
func HangupConfirmation() string {
	return "Thank you. We'll call you back soon."
}

// FormatClock renders a timestamp the way the dashboard and alerts show it:
// H:MM AM/PM without a leading zero on the hour.
func FormatClock(t time.Time) string {
	return t.Format("3:04 PM")
}

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= TranscriptionExcerptLimit {
		return s
	}
	return string(runes[:TranscriptionExcerptLimit]) + "..."
}
