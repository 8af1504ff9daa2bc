package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/competitions", handler.ListCompetitions)
	mux.HandleFunc("GET /v1/competitions/{competitionID}", handler.GetCompetition)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/matches", handler.ListMatchesByCompetition)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/groups", RequireAuth(verifier, http.HandlerFunc(handler.CreateGroup)))
	mux.Handle("GET /v1/groups", RequireAuth(verifier, http.HandlerFunc(handler.ListMyGroups)))
	mux.Handle("POST /v1/groups/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinGroupByInvite)))
	mux.Handle("PUT /v1/groups/{groupID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateGroupName)))

	mux.Handle("GET /v1/groups/{groupID}/rules", RequireAuth(verifier, http.HandlerFunc(handler.ListGroupRules)))
	mux.Handle("POST /v1/groups/{groupID}/rules", RequireAuth(verifier, http.HandlerFunc(handler.AddGroupRule)))
	mux.Handle("PUT /v1/groups/{groupID}/rules/{ruleID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateGroupRule)))
	mux.Handle("DELETE /v1/groups/{groupID}/rules/{ruleID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteGroupRule)))

	mux.Handle("POST /v1/groups/{groupID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPrediction)))
	mux.Handle("GET /v1/groups/{groupID}/predictions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPredictions)))

	mux.Handle("GET /v1/groups/{groupID}/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.GetGroupLeaderboard)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CreateMatch)))
	mux.Handle("PUT /v1/internal/matches/{matchID}/result", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SetMatchResult)))
	mux.Handle("PUT /v1/internal/matches/{matchID}/status", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SetMatchStatus)))
	mux.Handle("POST /v1/internal/jobs/finalize-scoring", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFinalizeScoringJob)))
}
