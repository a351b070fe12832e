package http

import (
	"database/sql"
	"time"

	"github.com/hearthline/leadline/internal/leadservice/domain"
)

// leadResponse is the JSON shape of a lead for the dashboard API. Optional
// columns render as null rather than the sql.NullString envelope.
type leadResponse struct {
	ID              string    `json:"id"`
	CustomerPhone   string    `json:"customer_phone"`
	Name            *string   `json:"name"`
	Address         *string   `json:"address"`
	Service         *string   `json:"service"`
	HasVoicemail    bool      `json:"has_voicemail"`
	VoicemailURL    *string   `json:"voicemail_url"`
	OriginalMessage *string   `json:"original_message"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

func toLeadResponse(l *domain.Lead) leadResponse {
	return leadResponse{
		ID:              l.ID.String(),
		CustomerPhone:   l.CustomerPhone,
		Name:            nullable(l.Name),
		Address:         nullable(l.Address),
		Service:         nullable(l.Service),
		HasVoicemail:    l.HasVoicemail,
		VoicemailURL:    nullable(l.VoicemailURL),
		OriginalMessage: nullable(l.OriginalMessage),
		Status:          string(l.Status),
		Notes:           nullable(l.Notes),
		CreatedAt:       l.CreatedAt,
	}
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// saveNotesRequest is the body of POST /api/lead/{leadID}/notes.
type saveNotesRequest struct {
	Notes string `json:"notes" validate:"required"`
}

type saveNotesResponse struct {
	Success bool `json:"success"`
}
