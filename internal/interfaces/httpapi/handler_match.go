package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/kickpool/prediction-league/internal/usecase"
)

func (h *Handler) ListMatchesByCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchesByCompetition")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	matches, err := h.matchService.ListByCompetition(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(ctx, m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	found, err := h.matchService.GetByID(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, found))
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	var req createMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	kickoffAt, err := time.Parse(time.RFC3339, req.KickoffAtUTC)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: kickoff_at_utc must be RFC3339: %v", usecase.ErrInvalidInput, err))
		return
	}

	created, err := h.matchService.Create(ctx, usecase.CreateMatchInput{
		CompetitionID: req.CompetitionID,
		HomeTeam:      req.HomeTeam,
		AwayTeam:      req.AwayTeam,
		KickoffAt:     kickoffAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "competition_id", req.CompetitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(ctx, created))
}

func (h *Handler) SetMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetMatchResult")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))

	var req setMatchResultRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.matchService.SetResult(ctx, usecase.SetMatchResultInput{
		MatchID:   matchID,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
		Status:    req.Status,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set match result failed", "match_id", matchID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, updated))
}

func (h *Handler) SetMatchStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetMatchStatus")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))

	var req setMatchStatusRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.matchService.SetStatus(ctx, matchID, req.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "set match status failed", "match_id", matchID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(ctx, updated))
}
