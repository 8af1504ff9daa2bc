package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/kickpool/prediction-league/internal/usecase"
)

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGroup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createGroupRequest
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

	created, err := h.groupService.CreateGroup(ctx, usecase.CreateGroupInput{
		OwnerUserID:   principal.UserID,
		CompetitionID: req.CompetitionID,
		Name:          req.Name,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create group failed", "user_id", principal.UserID, "competition_id", req.CompetitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, groupToDTO(ctx, created))
}

func (h *Handler) ListMyGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyGroups")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	groups, err := h.groupService.ListMyGroups(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my groups failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		items = append(items, groupToDTO(ctx, g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) JoinGroupByInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinGroupByInvite")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req joinGroupByInviteRequest
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

	joined, err := h.groupService.JoinByInviteCode(ctx, principal.UserID, req.InviteCode)
	if err != nil {
		h.logger.WarnContext(ctx, "join group by invite failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupToDTO(ctx, joined))
}

func (h *Handler) UpdateGroupName(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateGroupName")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	var req updateGroupRequest
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

	if err := h.groupService.UpdateGroupName(ctx, principal.UserID, groupID, req.Name); err != nil {
		h.logger.WarnContext(ctx, "update group name failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *Handler) ListGroupRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGroupRules")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	rules, err := h.groupService.ListRules(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list group rules failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]ruleDTO, 0, len(rules))
	for _, rule := range rules {
		items = append(items, ruleToDTO(rule))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AddGroupRule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddGroupRule")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))

	var req upsertRuleRequest
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

	created, err := h.groupService.AddRule(ctx, usecase.UpsertRuleInput{
		UserID:      principal.UserID,
		GroupID:     groupID,
		Category:    req.Category,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add group rule failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, ruleToDTO(created))
}

func (h *Handler) UpdateGroupRule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateGroupRule")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))
	ruleID := strings.TrimSpace(r.PathValue("ruleID"))

	var req upsertRuleRequest
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

	updated, err := h.groupService.UpdateRule(ctx, usecase.UpsertRuleInput{
		UserID:      principal.UserID,
		GroupID:     groupID,
		RuleID:      ruleID,
		Category:    req.Category,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update group rule failed", "user_id", principal.UserID, "group_id", groupID, "rule_id", ruleID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ruleToDTO(updated))
}

func (h *Handler) DeleteGroupRule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteGroupRule")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	groupID := strings.TrimSpace(r.PathValue("groupID"))
	ruleID := strings.TrimSpace(r.PathValue("ruleID"))

	if err := h.groupService.DeleteRule(ctx, principal.UserID, groupID, ruleID); err != nil {
		h.logger.WarnContext(ctx, "delete group rule failed", "user_id", principal.UserID, "group_id", groupID, "rule_id", ruleID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}
