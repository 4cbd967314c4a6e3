package api

import (
	"context"
	"fmt"
	"net/http"

	"whiteknight/core"
	"whiteknight/service"

	"github.com/gorilla/mux"
)

// SignalService is the signal surface of the investigation service
type SignalService interface {
	LogSignal(ctx context.Context, in service.SignalInput) (*core.Signal, error)
	GetSignal(ctx context.Context, id string) (*core.Signal, error)
	ListSignals(ctx context.Context, filter core.SignalFilter) ([]core.Signal, error)
}

// SignalRequest is the body of POST /api/signal. case_id may also be given
// as a query parameter, which takes precedence.
type SignalRequest struct {
	SignalType *string `json:"signal_type" validate:"required"`
	Location   *string `json:"location" validate:"required"`
	Strength   *int    `json:"strength" validate:"required"`
	Timestamp  string  `json:"timestamp"`
	SourceID   string  `json:"source_id"`
	CaseID     string  `json:"case_id"`
}

// SignalResponse wraps a single signal
type SignalResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Signal  *core.Signal `json:"signal"`
}

// SignalListResponse wraps a filtered signal list
type SignalListResponse struct {
	Success      bool          `json:"success"`
	TotalSignals int           `json:"total_signals"`
	Signals      []core.Signal `json:"signals"`
}

// logSignal handles POST /api/signal
func (a *API) logSignal(w http.ResponseWriter, r *http.Request) {
	var req SignalRequest
	if err := a.decodeJSONBody(w, r, &req); err != nil {
		return
	}
	if err := a.validateRequest(w, req); err != nil {
		return
	}

	sig, err := a.service.LogSignal(r.Context(), service.SignalInput{
		SignalType: core.SignalType(*req.SignalType),
		Location:   *req.Location,
		Strength:   *req.Strength,
		Timestamp:  req.Timestamp,
		SourceID:   req.SourceID,
		CaseID:     firstNonEmpty(r.URL.Query().Get("case_id"), req.CaseID),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log signal", err, a.logger)
		return
	}

	a.respondJSON(w, SignalResponse{
		Success: true,
		Message: fmt.Sprintf("Signal logged: %s", sig.SignalType),
		Signal:  sig,
	}, http.StatusOK)
}

// listSignals handles GET /api/signals?signal_type=&case_id=
func (a *API) listSignals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	signals, err := a.service.ListSignals(r.Context(), core.SignalFilter{
		SignalType: core.SignalType(query.Get("signal_type")),
		CaseID:     query.Get("case_id"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list signals", err, a.logger)
		return
	}

	a.respondJSON(w, SignalListResponse{Success: true, TotalSignals: len(signals), Signals: signals}, http.StatusOK)
}

// getSignal handles GET /api/signals/{signal_id}
func (a *API) getSignal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["signal_id"]

	sig, err := a.service.GetSignal(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err, fmt.Sprintf("Signal %s not found", id), "Failed to get signal")
		return
	}

	a.respondJSON(w, SignalResponse{Success: true, Signal: sig}, http.StatusOK)
}
