package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/kickpool/prediction-league/internal/usecase"
)

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	var req submitPredictionRequest
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

	submitted, err := h.predictionService.Submit(ctx, usecase.SubmitPredictionInput{
		UserID:    principal.UserID,
		MatchID:   req.MatchID,
		GroupID:   groupID,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction failed", "user_id", principal.UserID, "group_id", groupID, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(ctx, submitted))
}

func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPredictions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	predictions, err := h.predictionService.ListMineByGroup(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my predictions failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]predictionDTO, 0, len(predictions))
	for _, p := range predictions {
		items = append(items, predictionToDTO(ctx, p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
