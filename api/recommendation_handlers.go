package api

import (
	"context"
	"fmt"
	"net/http"

	"whiteknight/core"

	"github.com/gorilla/mux"
)

// RecommendationService is the recommendation surface of the investigation service
type RecommendationService interface {
	Recommend(ctx context.Context, threatID string) (*core.Recommendation, error)
	ListRecommendations(ctx context.Context, filter core.RecommendationFilter) ([]core.Recommendation, error)
	ApplyRecommendation(ctx context.Context, id string) (*core.Recommendation, error)
}

// RecommendRequest carries the threat to generate a recommendation for.
// threat_id may also be given as a query parameter, which takes precedence.
type RecommendRequest struct {
	ThreatID string `json:"threat_id" validate:"required"`
}

// RecommendationResponse wraps a single recommendation
type RecommendationResponse struct {
	Success        bool                 `json:"success"`
	Message        string               `json:"message"`
	Recommendation *core.Recommendation `json:"recommendation"`
}

// RecommendationListResponse wraps a filtered recommendation list
type RecommendationListResponse struct {
	Success              bool                  `json:"success"`
	TotalRecommendations int                   `json:"total_recommendations"`
	Recommendations      []core.Recommendation `json:"recommendations"`
}

// ApplyResponse reports an applied recommendation. commands_executed echoes
// the mitigation commands; nothing is actually run.
type ApplyResponse struct {
	Success          bool                 `json:"success"`
	Message          string               `json:"message"`
	Recommendation   *core.Recommendation `json:"recommendation"`
	CommandsExecuted []string             `json:"commands_executed"`
}

// recommend handles POST /api/ai/recommend
func (a *API) recommend(w http.ResponseWriter, r *http.Request) {
	var body RecommendRequest
	if err := a.decodeOptionalJSONBody(w, r, &body); err != nil {
		return
	}

	req := RecommendRequest{ThreatID: firstNonEmpty(r.URL.Query().Get("threat_id"), body.ThreatID)}
	if err := a.validateRequest(w, req); err != nil {
		return
	}

	rec, err := a.service.Recommend(r.Context(), req.ThreatID)
	if err != nil {
		a.writeServiceError(w, err, fmt.Sprintf("Threat %s not found", req.ThreatID), "Failed to generate recommendation")
		return
	}

	a.respondJSON(w, RecommendationResponse{
		Success:        true,
		Message:        "AI recommendation generated",
		Recommendation: rec,
	}, http.StatusOK)
}

// listRecommendations handles GET /api/ai/recommendations?threat_id=
func (a *API) listRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := a.service.ListRecommendations(r.Context(), core.RecommendationFilter{
		ThreatID: r.URL.Query().Get("threat_id"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recommendations", err, a.logger)
		return
	}

	a.respondJSON(w, RecommendationListResponse{
		Success:              true,
		TotalRecommendations: len(recs),
		Recommendations:      recs,
	}, http.StatusOK)
}

// applyRecommendation handles POST /api/ai/recommendations/{recommendation_id}/apply
func (a *API) applyRecommendation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["recommendation_id"]

	rec, err := a.service.ApplyRecommendation(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err, fmt.Sprintf("Recommendation %s not found", id), "Failed to apply recommendation")
		return
	}

	a.respondJSON(w, ApplyResponse{
		Success:          true,
		Message:          "Mitigation applied",
		Recommendation:   rec,
		CommandsExecuted: rec.MitigationCommands,
	}, http.StatusOK)
}
