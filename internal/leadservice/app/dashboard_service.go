package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hearthline/leadline/internal/leadservice/domain"
)

// DashboardService is the read/triage side: recent leads with day stats for
// the main view, plus the status toggle and note editing the operator uses.
type DashboardService struct {
	leadRepo        domain.LeadRepository
	dashboardWindow time.Duration
	loc             *time.Location
	logger          *slog.Logger
}

// NewDashboardService creates a DashboardService. window bounds how far back
// the overview looks (typically 72h); loc is the zone the dashboard presents
// times in, so "today" in the stats matches the timestamps on the page.
func NewDashboardService(leadRepo domain.LeadRepository, window time.Duration, loc *time.Location, logger *slog.Logger) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{
		leadRepo:        leadRepo,
		dashboardWindow: window,
		loc:             loc,
		logger:          logger.With("component", "dashboard_service"),
	}
}

// Overview bundles what the main dashboard page renders.
type Overview struct {
	Leads []*domain.Lead
	Stats domain.DayStats
}

// Overview returns the recent leads (most recent first) and today's counts.
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	leads, err := s.leadRepo.ListRecent(ctx, s.dashboardWindow)
	if err != nil {
		return nil, fmt.Errorf("loading recent leads: %w", err)
	}
	stats, err := s.leadRepo.StatsForDay(ctx, time.Now().In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("loading day stats: %w", err)
	}
	return &Overview{Leads: leads, Stats: stats}, nil
}

// Lead fetches one lead by id (domain.ErrNotFound when absent).
func (s *DashboardService) Lead(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	return s.leadRepo.GetByID(ctx, id)
}

// ToggleStatus applies the dashboard toggle rule to a lead and returns false
// when the lead does not exist.
func (s *DashboardService) ToggleStatus(ctx context.Context, id uuid.UUID) (bool, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("loading lead %s for toggle: %w", id, err)
	}

	next := lead.Status.Toggle()
	ok, err := s.leadRepo.UpdateStatus(ctx, id, next)
	if err != nil {
		return false, fmt.Errorf("toggling status of lead %s: %w", id, err)
	}
	if ok {
		s.logger.InfoContext(ctx, "Lead status toggled", "lead_id", id, "from", lead.Status, "to", next)
	}
	return ok, nil
}

// SaveNote appends operator-entered text to the lead's notes.
func (s *DashboardService) SaveNote(ctx context.Context, id uuid.UUID, text string) (bool, error) {
	ok, err := s.leadRepo.AppendNote(ctx, id, text)
	if err != nil {
		return false, fmt.Errorf("saving note on lead %s: %w", id, err)
	}
	return ok, nil
}
