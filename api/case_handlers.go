package api

import (
	"context"
	"fmt"
	"net/http"

	"whiteknight/core"
	"whiteknight/service"

	"github.com/gorilla/mux"
)

// CaseService is the case surface of the investigation service
type CaseService interface {
	CreateCase(ctx context.Context, in service.CaseInput) (*core.Case, error)
	GetCase(ctx context.Context, id string) (*core.Case, error)
	ListCases(ctx context.Context) ([]core.Case, error)
	UpdateCase(ctx context.Context, id string, in service.CaseInput) (*core.Case, error)
	DeleteCase(ctx context.Context, id string) (*core.Case, error)
	AddEvidence(ctx context.Context, caseID string, data map[string]interface{}) (*core.Case, error)
}

// CaseRequest is the body of case create and replace requests. Presence of
// title, description and investigator is required; empty strings are allowed.
type CaseRequest struct {
	Title        *string `json:"title" validate:"required"`
	Description  *string `json:"description" validate:"required"`
	Investigator *string `json:"investigator" validate:"required"`
	Priority     string  `json:"priority"`
}

func (r CaseRequest) input() service.CaseInput {
	return service.CaseInput{
		Title:        *r.Title,
		Description:  *r.Description,
		Investigator: *r.Investigator,
		Priority:     r.Priority,
	}
}

// CaseResponse wraps a single case
type CaseResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Case    *core.Case `json:"case"`
}

// CaseListResponse wraps all cases
type CaseListResponse struct {
	Success    bool        `json:"success"`
	TotalCases int         `json:"total_cases"`
	Cases      []core.Case `json:"cases"`
}

// EvidenceResponse reports the case's evidence count after an attachment
type EvidenceResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	CaseID        string `json:"case_id"`
	EvidenceID    string `json:"evidence_id"`
	EvidenceCount int    `json:"evidence_count"`
}

func caseNotFound(id string) string {
	return fmt.Sprintf("Case %s not found", id)
}

// decodeCaseRequest decodes and validates a case body, writing a 422 on failure
func (a *API) decodeCaseRequest(w http.ResponseWriter, r *http.Request) (*CaseRequest, bool) {
	var req CaseRequest
	if err := a.decodeJSONBody(w, r, &req); err != nil {
		return nil, false
	}
	if err := a.validateRequest(w, req); err != nil {
		return nil, false
	}
	return &req, true
}

// createCase handles POST /api/case
func (a *API) createCase(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeCaseRequest(w, r)
	if !ok {
		return
	}

	c, err := a.service.CreateCase(r.Context(), req.input())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create case", err, a.logger)
		return
	}

	a.respondJSON(w, CaseResponse{Success: true, Message: "Case created successfully", Case: c}, http.StatusOK)
}

// listCases handles GET /api/cases
func (a *API) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := a.service.ListCases(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cases", err, a.logger)
		return
	}

	a.respondJSON(w, CaseListResponse{Success: true, TotalCases: len(cases), Cases: cases}, http.StatusOK)
}

// getCase handles GET /api/cases/{case_id}
func (a *API) getCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["case_id"]

	c, err := a.service.GetCase(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err, caseNotFound(id), "Failed to get case")
		return
	}

	a.respondJSON(w, CaseResponse{Success: true, Case: c}, http.StatusOK)
}

// updateCase handles PUT /api/cases/{case_id}
func (a *API) updateCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["case_id"]

	req, ok := a.decodeCaseRequest(w, r)
	if !ok {
		return
	}

	c, err := a.service.UpdateCase(r.Context(), id, req.input())
	if err != nil {
		a.writeServiceError(w, err, caseNotFound(id), "Failed to update case")
		return
	}

	a.respondJSON(w, CaseResponse{Success: true, Message: "Case updated successfully", Case: c}, http.StatusOK)
}

// deleteCase handles DELETE /api/cases/{case_id}. The removed record is returned.
func (a *API) deleteCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["case_id"]

	c, err := a.service.DeleteCase(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, err, caseNotFound(id), "Failed to delete case")
		return
	}

	a.respondJSON(w, CaseResponse{Success: true, Message: "Case deleted successfully", Case: c}, http.StatusOK)
}

// addEvidence handles POST /api/cases/{case_id}/evidence. Any JSON object is accepted.
func (a *API) addEvidence(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["case_id"]

	var data map[string]interface{}
	if err := a.decodeJSONBody(w, r, &data); err != nil {
		return
	}

	c, err := a.service.AddEvidence(r.Context(), id, data)
	if err != nil {
		a.writeServiceError(w, err, caseNotFound(id), "Failed to add evidence")
		return
	}

	var evidenceID string
	if n := len(c.Evidence); n > 0 {
		evidenceID = c.Evidence[n-1].EvidenceID
	}

	a.respondJSON(w, EvidenceResponse{
		Success:       true,
		Message:       "Evidence added successfully",
		CaseID:        c.CaseID,
		EvidenceID:    evidenceID,
		EvidenceCount: c.EvidenceCount,
	}, http.StatusOK)
}
