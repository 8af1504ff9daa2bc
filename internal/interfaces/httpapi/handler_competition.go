package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	competitions, err := h.competitionService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]competitionDTO, 0, len(competitions))
	for _, c := range competitions {
		items = append(items, competitionToDTO(c))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompetition")
	defer span.End()

	competitionID := strings.TrimSpace(r.PathValue("competitionID"))
	found, err := h.competitionService.GetByID(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get competition failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(found))
}
