package api

import (
	"context"
	"fmt"
	"net/http"

	"whiteknight/core"

	"github.com/gorilla/mux"
)

// ThreatService is the threat surface of the investigation service
type ThreatService interface {
	DetectThreat(ctx context.Context, signalID string, level core.ThreatLevel, caseID string) (*core.Threat, error)
	GetThreat(ctx context.Context, id string) (*core.Threat, error)
	ListThreats(ctx context.Context, filter core.ThreatFilter) ([]core.Threat, error)
}

// ThreatRequest carries the inputs of POST /api/threat. Every field may also
// be given as a query parameter; query parameters take precedence.
type ThreatRequest struct {
	SignalID    string `json:"signal_id" validate:"required"`
	ThreatLevel string `json:"threat_level"`
	CaseID      string `json:"case_id"`
}

// ThreatResponse wraps a single threat
type ThreatResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Threat  *core.Threat `json:"threat"`
}

// ThreatListResponse wraps a filtered threat list
type ThreatListResponse struct {
	Success      bool          `json:"success"`
	TotalThreats int           `json:"total_threats"`
	Threats      []core.Threat `json:"threats"`
}

// detectThreat handles POST /api/threat
func (a *API) detectThreat(w http.ResponseWriter, r *http.Request) {
	var body ThreatRequest
	if err := a.decodeOptionalJSONBody(w, r, &body); err != nil {
		return
	}

	query := r.URL.Query()
	req := ThreatRequest{
		SignalID:    firstNonEmpty(query.Get("signal_id"), body.SignalID),
		ThreatLevel: firstNonEmpty(query.Get("threat_level"), body.ThreatLevel, string(core.DefaultThreatLevel)),
		CaseID:      firstNonEmpty(query.Get("case_id"), body.CaseID),
	}
	if err := a.validateRequest(w, req); err != nil {
		return
	}

	threat, err := a.service.DetectThreat(r.Context(), req.SignalID, core.ThreatLevel(req.ThreatLevel), req.CaseID)
	if err != nil {
		a.writeServiceError(w, err, fmt.Sprintf("Signal %s not found", req.SignalID), "Failed to detect threat")
		return
	}

	a.respondJSON(w, ThreatResponse{
		Success: true,
		Message: fmt.Sprintf("Threat detected: %s", threat.ThreatLevel),
		Threat:  threat,
	}, http.StatusOK)
}

// listThreats handles GET /api/threats?threat_level=&case_id=
func (a *API) listThreats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	threats, err := a.service.ListThreats(r.Context(), core.ThreatFilter{
		ThreatLevel: core.ThreatLevel(query.Get("threat_level")),
		CaseID:      query.Get("case_id"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list threats", err, a.logger)
		return
	}

	a.respondJSON(w, ThreatListResponse{Success: true, TotalThreats: len(threats), Threats: threats}, http.StatusOK)
}

// getThreat handles GET /api/threats/{threat_id}
func (a *API) getThreat(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["threat_id"]

	threat, err := a.service.GetThreat(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err, fmt.Sprintf("Threat %s not found", id), "Failed to get threat")
		return
	}

	a.respondJSON(w, ThreatResponse{Success: true, Threat: threat}, http.StatusOK)
}
