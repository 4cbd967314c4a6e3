package api

import (
	"net/http"

	"whiteknight/core"
)

// DashboardResponse wraps the aggregate snapshot
type DashboardResponse struct {
	Success   bool            `json:"success"`
	Dashboard *core.Dashboard `json:"dashboard"`
}

// RootResponse is the platform banner served at /
type RootResponse struct {
	Platform string `json:"platform"`
	Version  string `json:"version"`
	Status   string `json:"status"`
	Mission  string `json:"mission"`
}

// InfoResponse describes the API surface
type InfoResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

var endpoints = []string{
	"/",
	"/health",
	"/api/info",
	"/api/case",
	"/api/cases",
	"/api/cases/{case_id}",
	"/api/cases/{case_id}/evidence",
	"/api/signal",
	"/api/signals",
	"/api/signals/{signal_id}",
	"/api/threat",
	"/api/threats",
	"/api/threats/{threat_id}",
	"/api/ai/recommend",
	"/api/ai/recommendations",
	"/api/ai/recommendations/{recommendation_id}/apply",
	"/api/dashboard",
	"/api/dashboard/stream",
	"/metrics",
}

// getDashboard handles GET /api/dashboard?case_id=. An unknown case yields case: null.
func (a *API) getDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.service.Dashboard(r.Context(), r.URL.Query().Get("case_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build dashboard", err, a.logger)
		return
	}

	a.respondJSON(w, DashboardResponse{Success: true, Dashboard: d}, http.StatusOK)
}

func (a *API) root(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, RootResponse{
		Platform: core.PlatformName,
		Version:  core.PlatformVersion,
		Status:   "online",
		Mission:  core.PlatformMission,
	}, http.StatusOK)
}

func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func (a *API) info(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, InfoResponse{
		Name:      core.PlatformTitle,
		Version:   core.PlatformVersion,
		Endpoints: endpoints,
	}, http.StatusOK)
}

func (a *API) routeNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found", nil, a.logger)
}

func (a *API) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil, a.logger)
}
