package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/kickpool/prediction-league/internal/usecase"
)

// RunFinalizeScoringJob is the internal entry point an operator or scheduler
// hits once a match result has been recorded. Re-running it for an already
// scored match is a no-op success.
func (h *Handler) RunFinalizeScoringJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFinalizeScoringJob")
	defer span.End()

	if h.scoringService == nil {
		writeError(ctx, w, fmt.Errorf("%w: scoring service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req finalizeScoringRequest
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

	result, err := h.scoringService.FinalizeMatchScoring(ctx, req.MatchID)
	if err != nil {
		h.logger.ErrorContext(ctx, "finalize match scoring failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	if h.leaderboardService != nil {
		// Fresh standings should be readable immediately after scoring
		// instead of waiting out the cache TTL.
		for _, groupID := range result.GroupIDs {
			h.leaderboardService.Invalidate(ctx, groupID)
		}
	}

	writeSuccess(ctx, w, http.StatusOK, finalizeScoringResultDTO{
		MatchID:           result.MatchID,
		PredictionsScored: result.PredictionsScored,
	})
}
