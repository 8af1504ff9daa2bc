package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kickpool/prediction-league/internal/domain/competition"
	"github.com/kickpool/prediction-league/internal/domain/group"
	"github.com/kickpool/prediction-league/internal/domain/scoring"
	"github.com/kickpool/prediction-league/internal/platform/id"
)

const maxGroupNameLength = 64

type CreateGroupInput struct {
	OwnerUserID   string
	CompetitionID string
	Name          string
}

type UpsertRuleInput struct {
	UserID      string
	GroupID     string
	RuleID      string
	Category    string
	Description string
	Points      int
}

// GroupService owns group lifecycle, membership and scoring-rule management.
type GroupService struct {
	competitionRepo competition.Repository
	groupRepo       group.Repository
	scoringRepo     scoring.Repository
	idGenerator     id.Generator
	now             func() time.Time
}

func NewGroupService(
	competitionRepo competition.Repository,
	groupRepo group.Repository,
	scoringRepo scoring.Repository,
	idGenerator id.Generator,
) *GroupService {
	return &GroupService{
		competitionRepo: competitionRepo,
		groupRepo:       groupRepo,
		scoringRepo:     scoringRepo,
		idGenerator:     idGenerator,
		now:             time.Now,
	}
}

// CreateGroup creates the group, enrolls the owner as its first member and
// seeds the three default scoring rules.
func (s *GroupService) CreateGroup(ctx context.Context, input CreateGroupInput) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.CreateGroup")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return group.Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if len(name) > maxGroupNameLength {
		return group.Group{}, fmt.Errorf("%w: group name exceeds %d characters", ErrInvalidInput, maxGroupNameLength)
	}
	if strings.TrimSpace(input.OwnerUserID) == "" {
		return group.Group{}, fmt.Errorf("%w: owner user id is required", ErrInvalidInput)
	}

	_, exists, err := s.competitionRepo.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return group.Group{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return group.Group{}, fmt.Errorf("%w: competition=%s", ErrNotFound, input.CompetitionID)
	}

	groupID, err := s.idGenerator.NewID()
	if err != nil {
		return group.Group{}, fmt.Errorf("generate group id: %w", err)
	}
	inviteCode, err := s.idGenerator.NewID()
	if err != nil {
		return group.Group{}, fmt.Errorf("generate invite code: %w", err)
	}

	now := s.now().UTC()
	g := group.Group{
		ID:            groupID,
		CompetitionID: input.CompetitionID,
		OwnerUserID:   input.OwnerUserID,
		Name:          name,
		InviteCode:    inviteCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.groupRepo.Create(ctx, g); err != nil {
		return group.Group{}, fmt.Errorf("create group: %w", err)
	}
	if err := s.groupRepo.AddMember(ctx, group.Member{
		GroupID:  groupID,
		UserID:   input.OwnerUserID,
		JoinedAt: now,
	}); err != nil {
		return group.Group{}, fmt.Errorf("add owner membership: %w", err)
	}

	for _, rule := range scoring.DefaultRules(groupID) {
		ruleID, err := s.idGenerator.NewID()
		if err != nil {
			return group.Group{}, fmt.Errorf("generate rule id: %w", err)
		}
		rule.ID = ruleID
		rule.CreatedAt = now
		rule.UpdatedAt = now
		if err := s.scoringRepo.CreateRule(ctx, rule); err != nil {
			return group.Group{}, fmt.Errorf("seed scoring rule %s: %w", rule.Category, err)
		}
	}

	return g, nil
}

func (s *GroupService) JoinByInviteCode(ctx context.Context, userID, inviteCode string) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.JoinByInviteCode")
	defer span.End()

	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return group.Group{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	g, exists, err := s.groupRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group by invite code: %w", err)
	}
	if !exists {
		return group.Group{}, fmt.Errorf("%w: no group for invite code", ErrNotFound)
	}

	alreadyMember, err := s.groupRepo.IsMember(ctx, g.ID, userID)
	if err != nil {
		return group.Group{}, fmt.Errorf("check membership: %w", err)
	}
	if alreadyMember {
		return g, nil
	}

	if err := s.groupRepo.AddMember(ctx, group.Member{
		GroupID:  g.ID,
		UserID:   userID,
		JoinedAt: s.now().UTC(),
	}); err != nil {
		return group.Group{}, fmt.Errorf("add membership: %w", err)
	}

	return g, nil
}

func (s *GroupService) ListMyGroups(ctx context.Context, userID string) ([]group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListMyGroups")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	groups, err := s.groupRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}
	return groups, nil
}

func (s *GroupService) UpdateGroupName(ctx context.Context, userID, groupID, name string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.UpdateGroupName")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxGroupNameLength {
		return fmt.Errorf("%w: group name must be 1-%d characters", ErrInvalidInput, maxGroupNameLength)
	}

	if err := s.groupRepo.UpdateName(ctx, groupID, userID, name); err != nil {
		return fmt.Errorf("update group name: %w", err)
	}
	return nil
}

func (s *GroupService) ListRules(ctx context.Context, userID, groupID string) ([]scoring.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListRules")
	defer span.End()

	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	rules, err := s.scoringRepo.ListRulesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list scoring rules: %w", err)
	}
	return rules, nil
}

func (s *GroupService) AddRule(ctx context.Context, input UpsertRuleInput) (scoring.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.AddRule")
	defer span.End()

	rule, err := s.buildRule(ctx, input)
	if err != nil {
		return scoring.Rule{}, err
	}

	ruleID, err := s.idGenerator.NewID()
	if err != nil {
		return scoring.Rule{}, fmt.Errorf("generate rule id: %w", err)
	}
	rule.ID = ruleID

	if err := s.scoringRepo.CreateRule(ctx, rule); err != nil {
		return scoring.Rule{}, fmt.Errorf("create scoring rule: %w", err)
	}
	return rule, nil
}

func (s *GroupService) UpdateRule(ctx context.Context, input UpsertRuleInput) (scoring.Rule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.UpdateRule")
	defer span.End()

	if strings.TrimSpace(input.RuleID) == "" {
		return scoring.Rule{}, fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}

	rule, err := s.buildRule(ctx, input)
	if err != nil {
		return scoring.Rule{}, err
	}
	rule.ID = input.RuleID

	if err := s.scoringRepo.UpdateRule(ctx, rule); err != nil {
		return scoring.Rule{}, fmt.Errorf("update scoring rule: %w", err)
	}
	return rule, nil
}

func (s *GroupService) DeleteRule(ctx context.Context, userID, groupID, ruleID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.DeleteRule")
	defer span.End()

	if err := s.requireOwner(ctx, groupID, userID); err != nil {
		return err
	}

	if err := s.scoringRepo.DeleteRule(ctx, groupID, ruleID); err != nil {
		return fmt.Errorf("delete scoring rule: %w", err)
	}
	return nil
}

func (s *GroupService) buildRule(ctx context.Context, input UpsertRuleInput) (scoring.Rule, error) {
	if err := s.requireOwner(ctx, input.GroupID, input.UserID); err != nil {
		return scoring.Rule{}, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return scoring.Rule{}, fmt.Errorf("%w: rule description is required", ErrInvalidInput)
	}
	if input.Points < 0 {
		return scoring.Rule{}, fmt.Errorf("%w: rule points cannot be negative", ErrInvalidInput)
	}

	category := scoring.Category(strings.TrimSpace(input.Category))
	switch category {
	case scoring.CategoryExactScore, scoring.CategoryCorrectWinner, scoring.CategoryCorrectDraw, scoring.CategoryCustom:
	case scoring.CategoryUnknown:
		category = scoring.CategoryFromDescription(description)
	default:
		return scoring.Rule{}, fmt.Errorf("%w: unknown rule category %q", ErrInvalidInput, input.Category)
	}

	now := s.now().UTC()
	return scoring.Rule{
		GroupID:     input.GroupID,
		Category:    category,
		Description: description,
		Points:      input.Points,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID string) error {
	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check group membership: %w", err)
	}
	if !isMember {
		return fmt.Errorf("%w: user=%s is not a member of group=%s", ErrUnauthorized, userID, groupID)
	}
	return nil
}

func (s *GroupService) requireOwner(ctx context.Context, groupID, userID string) error {
	g, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: group=%s", ErrNotFound, groupID)
	}
	if g.OwnerUserID != userID {
		return fmt.Errorf("%w: only the group owner can manage rules", ErrUnauthorized)
	}
	return nil
}
