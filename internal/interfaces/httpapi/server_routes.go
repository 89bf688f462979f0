package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerAnalyticsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/standings", handler.GetStandings)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/stats/global", handler.GetGlobalStats)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/corpus/status", handler.GetCorpusStatus)
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/{team}/summary", handler.GetTeamSummary)
	mux.HandleFunc("GET /v1/teams/{team}/performance", handler.GetTeamPerformance)
	mux.HandleFunc("GET /v1/teams/{team}/players", handler.ListTeamPlayers)
	mux.HandleFunc("GET /v1/teams/{team}/managers", handler.ListTeamManagers)
	mux.HandleFunc("GET /v1/teams/{team}/players/minutes", handler.ListTeamPlayerMinutes)
	mux.HandleFunc("GET /v1/teams/{team}/players/competitiveness", handler.ListTeamPlayerCompetitiveness)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncJob)))
}
