package http

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hearthline/leadline/internal/leadservice/app"
	"github.com/hearthline/leadline/internal/leadservice/domain"
	"github.com/hearthline/leadline/internal/leadservice/notify"
)

// DashboardProvider is the application surface behind the dashboard pages
// and the lead API.
type DashboardProvider interface {
	Overview(ctx context.Context) (*app.Overview, error)
	Lead(ctx context.Context, id uuid.UUID) (*domain.Lead, error)
	ToggleStatus(ctx context.Context, id uuid.UUID) (bool, error)
	SaveNote(ctx context.Context, id uuid.UUID, text string) (bool, error)
}

type DashboardHandler struct {
	dashboard DashboardProvider
	logger    *slog.Logger
	validate  *validator.Validate
	tmpl      *template.Template
}

// NewDashboardHandler creates a DashboardHandler rendering templates from
// templatesDir (expects dashboard.html there). loc is the zone timestamps
// are rendered in; it must match the zone the day stats are computed in.
func NewDashboardHandler(dashboard DashboardProvider, logger *slog.Logger, validate *validator.Validate, loc *time.Location, templatesDir string) (*DashboardHandler, error) {
	if loc == nil {
		loc = time.Local
	}
	tmpl, err := template.New("dashboard.html").Funcs(template.FuncMap{
		"clock": notify.FormatClock,
		"local": func(t time.Time) time.Time { return t.In(loc) },
		"stat": func(s domain.DayStats, name string) int {
			return s.ByStatus[domain.LeadStatus(name)]
		},
	}).ParseFiles(templatesDir + "/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger.With("handler", "dashboard"),
		validate:  validate,
		tmpl:      tmpl,
	}, nil
}

func (h *DashboardHandler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", chi_middleware.GetReqID(r.Context()))
}

// HandleIndex renders the triage view: recent leads plus today's counts.
func (h *DashboardHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	overview, err := h.dashboard.Overview(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load dashboard overview", "error", err)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, overview); err != nil {
		logger.ErrorContext(ctx, "Failed to render dashboard template", "error", err)
	}
}

// HandleToggleStatus cycles a lead's status and bounces back to the index.
// An unknown or malformed id still redirects; the dashboard is the only
// caller and has nothing useful to do with an error page.
func (h *DashboardHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		logger.WarnContext(ctx, "Toggle with malformed lead id", "raw_id", chi.URLParam(r, "leadID"))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if _, err := h.dashboard.ToggleStatus(ctx, id); err != nil {
		logger.ErrorContext(ctx, "Failed to toggle lead status", "error", err, "lead_id", id)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleGetLead serves one lead as JSON for the detail modal.
func (h *DashboardHandler) HandleGetLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}

	lead, err := h.dashboard.Lead(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
			return
		}
		logger.ErrorContext(ctx, "Failed to load lead", "error", err, "lead_id", id)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	respondJSON(w, http.StatusOK, toLeadResponse(lead))
}

// HandleSaveNotes appends a note to a lead from the detail modal.
func (h *DashboardHandler) HandleSaveNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		respondJSON(w, http.StatusOK, saveNotesResponse{Success: false})
		return
	}

	var req saveNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Malformed notes payload", "error", err, "lead_id", id)
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "notes is required"})
		return
	}

	ok, err := h.dashboard.SaveNote(ctx, id, req.Notes)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to save note", "error", err, "lead_id", id)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	respondJSON(w, http.StatusOK, saveNotesResponse{Success: ok})
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
