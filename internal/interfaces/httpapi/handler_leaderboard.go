package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kickpool/prediction-league/internal/usecase"
)

func (h *Handler) GetGroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGroupLeaderboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	rows, err := h.leaderboardService.ListByGroup(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get group leaderboard failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, leaderboardRowToDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
