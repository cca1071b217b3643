package handler

import (
	"context"
	"net/http"

	"github.com/iho/ledger-es/internal/adapter/http/dto"
	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/projection"
	"github.com/iho/ledger-es/internal/usecase"
)

// DashboardQueries defines the reads needed by DashboardHandler.
type DashboardQueries interface {
	GetDashboard(ctx context.Context) (*domain.Dashboard, error)
	ProjectionStatus(ctx context.Context) ([]usecase.ProjectionCursor, error)
}

// EngineStatus reports the live state of the projection engine.
type EngineStatus interface {
	Name() string
	State() projection.State
	Position() uint64
}

// DashboardHandler serves the dashboard and projection status.
type DashboardHandler struct {
	queries DashboardQueries
	engine  EngineStatus
}

// NewDashboardHandler creates a new DashboardHandler. engine may be nil when
// the projection runs in another process.
func NewDashboardHandler(queries DashboardQueries, engine EngineStatus) *DashboardHandler {
	return &DashboardHandler{queries: queries, engine: engine}
}

// Dashboard returns the dashboard.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.queries.GetDashboard(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to get dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardFromDomain(d))
}

// Projections returns stored projection cursors and the engine state.
func (h *DashboardHandler) Projections(w http.ResponseWriter, r *http.Request) {
	cursors, err := h.queries.ProjectionStatus(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to get projection status", err)
		return
	}

	resp := dto.ProjectionStatusResponse{Projections: dto.ProjectionsFromUseCase(cursors)}
	if h.engine != nil {
		resp.Engine = &dto.EngineStatus{
			Name:     h.engine.Name(),
			State:    string(h.engine.State()),
			Position: h.engine.Position(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
