package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the operator-facing triage state of a lead.
type LeadStatus string

const (
	StatusNew        LeadStatus = "new"
	StatusCalledBack LeadStatus = "called_back"
	StatusScheduled  LeadStatus = "scheduled"
	StatusClosed     LeadStatus = "closed"
)

// AllStatuses lists every valid status, in display order. Stats reporting
// zero-fills from this list so a day with no closed leads still reports
// closed: 0.
var AllStatuses = []LeadStatus{StatusNew, StatusCalledBack, StatusScheduled, StatusClosed}

// Valid reports whether s is one of the four known statuses.
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusCalledBack, StatusScheduled, StatusClosed:
		return true
	}
	return false
}

// Toggle returns the status the dashboard toggle moves a lead to:
// called_back and scheduled go back to new, everything else (new, closed)
// advances to called_back.
func (s LeadStatus) Toggle() LeadStatus {
	if s == StatusCalledBack || s == StatusScheduled {
		return StatusNew
	}
	return StatusCalledBack
}

// Lead is one customer contact event (voicemail or SMS) awaiting follow-up.
// Optional columns use sql.NullString so an absent value stays distinct from
// an empty string. Leads are never deleted; after creation only Status,
// Notes and OriginalMessage change.
type Lead struct {
	ID              uuid.UUID      `json:"id"`
	CustomerPhone   string         `json:"customer_phone"`
	Name            sql.NullString `json:"name"`
	Address         sql.NullString `json:"address"`
	Service         sql.NullString `json:"service"`
	HasVoicemail    bool           `json:"has_voicemail"`
	VoicemailURL    sql.NullString `json:"voicemail_url"`
	OriginalMessage sql.NullString `json:"original_message"`
	Status          LeadStatus     `json:"status"`
	Notes           sql.NullString `json:"notes"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewLeadParams carries the caller-supplied fields for lead creation. Zero
// Null fields are persisted as NULL.
type NewLeadParams struct {
	CustomerPhone   string
	Name            sql.NullString
	Address         sql.NullString
	Service         sql.NullString
	HasVoicemail    bool
	VoicemailURL    sql.NullString
	OriginalMessage sql.NullString
}

// NewLead builds a Lead from intake params. ID and CreatedAt are assigned
// here, once; Status always starts at new.
func NewLead(p NewLeadParams) *Lead {
	return &Lead{
		ID:              uuid.New(),
		CustomerPhone:   p.CustomerPhone,
		Name:            p.Name,
		Address:         p.Address,
		Service:         p.Service,
		HasVoicemail:    p.HasVoicemail,
		VoicemailURL:    p.VoicemailURL,
		OriginalMessage: p.OriginalMessage,
		Status:          StatusNew,
		CreatedAt:       time.Now().UTC(),
	}
}

// DayStats aggregates lead counts for one calendar day.
type DayStats struct {
	Total    int                `json:"total"`
	ByStatus map[LeadStatus]int `json:"by_status"`
}

// NewDayStats returns a DayStats with every status present at zero.
func NewDayStats() DayStats {
	byStatus := make(map[LeadStatus]int, len(AllStatuses))
	for _, s := range AllStatuses {
		byStatus[s] = 0
	}
	return DayStats{ByStatus: byStatus}
}
