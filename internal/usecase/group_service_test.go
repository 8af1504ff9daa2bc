package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kickpool/prediction-league/internal/domain/competition"
	"github.com/kickpool/prediction-league/internal/domain/scoring"
	"github.com/kickpool/prediction-league/internal/infrastructure/repository/memory"
	"github.com/kickpool/prediction-league/internal/platform/id"
)

func newGroupService(t *testing.T) (*GroupService, *memory.GroupRepository, *memory.ScoringRepository) {
	t.Helper()

	competitionRepo := memory.NewCompetitionRepository([]competition.Competition{
		{ID: "comp-1", Name: "Premier League", Season: "2025/2026"},
	})
	groupRepo := memory.NewGroupRepository(nil)
	scoringRepo := memory.NewScoringRepository()

	service := NewGroupService(competitionRepo, groupRepo, scoringRepo, id.NewRandomGenerator())
	return service, groupRepo, scoringRepo
}

func TestGroupService_CreateGroup_SeedsDefaultRulesAndOwnerMembership(t *testing.T) {
	ctx := context.Background()
	service, groupRepo, scoringRepo := newGroupService(t)

	created, err := service.CreateGroup(ctx, CreateGroupInput{
		OwnerUserID:   "alice",
		CompetitionID: "comp-1",
		Name:          "Office Pool",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if created.ID == "" || created.InviteCode == "" {
		t.Fatalf("group must get id and invite code: %+v", created)
	}

	isMember, err := groupRepo.IsMember(ctx, created.ID, "alice")
	if err != nil || !isMember {
		t.Fatalf("owner must be enrolled: member=%v err=%v", isMember, err)
	}

	rules, err := scoringRepo.ListRulesByGroup(ctx, created.ID)
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("expected 3 seeded rules, got %d", len(rules))
	}
	points := make(map[scoring.Category]int, 3)
	for _, rule := range rules {
		points[rule.Category] = rule.Points
	}
	if points[scoring.CategoryExactScore] != 5 || points[scoring.CategoryCorrectWinner] != 3 || points[scoring.CategoryCorrectDraw] != 3 {
		t.Fatalf("unexpected seeded points: %+v", points)
	}
}

func TestGroupService_CreateGroup_UnknownCompetition(t *testing.T) {
	service, _, _ := newGroupService(t)

	_, err := service.CreateGroup(context.Background(), CreateGroupInput{
		OwnerUserID:   "alice",
		CompetitionID: "missing",
		Name:          "Office Pool",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupService_CreateGroup_RejectsBlankName(t *testing.T) {
	service, _, _ := newGroupService(t)

	_, err := service.CreateGroup(context.Background(), CreateGroupInput{
		OwnerUserID:   "alice",
		CompetitionID: "comp-1",
		Name:          "   ",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGroupService_JoinByInviteCode(t *testing.T) {
	ctx := context.Background()
	service, groupRepo, _ := newGroupService(t)

	created, err := service.CreateGroup(ctx, CreateGroupInput{
		OwnerUserID:   "alice",
		CompetitionID: "comp-1",
		Name:          "Office Pool",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	joined, err := service.JoinByInviteCode(ctx, "bob", created.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.ID != created.ID {
		t.Fatalf("join must resolve the created group: got=%s want=%s", joined.ID, created.ID)
	}

	member, ok, err := groupRepo.GetMember(ctx, created.ID, "bob")
	if err != nil || !ok {
		t.Fatalf("bob must be a member: ok=%v err=%v", ok, err)
	}
	if member.TotalPoints != 0 {
		t.Fatalf("new member must start at zero points: got=%d", member.TotalPoints)
	}

	// Rejoin is a no-op success.
	if _, err := service.JoinByInviteCode(ctx, "bob", created.InviteCode); err != nil {
		t.Fatalf("rejoin must succeed: %v", err)
	}

	if _, err := service.JoinByInviteCode(ctx, "carol", "bogus-code"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown invite code, got %v", err)
	}
}

func TestGroupService_RuleManagement_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newGroupService(t)

	created, err := service.CreateGroup(ctx, CreateGroupInput{
		OwnerUserID:   "alice",
		CompetitionID: "comp-1",
		Name:          "Office Pool",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := service.JoinByInviteCode(ctx, "bob", created.InviteCode); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = service.AddRule(ctx, UpsertRuleInput{
		UserID:      "bob",
		GroupID:     created.ID,
		Category:    string(scoring.CategoryCustom),
		Description: "Bonus for derby matches",
		Points:      2,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner must not add rules, got %v", err)
	}

	added, err := service.AddRule(ctx, UpsertRuleInput{
		UserID:      "alice",
		GroupID:     created.ID,
		Category:    string(scoring.CategoryCustom),
		Description: "Bonus for derby matches",
		Points:      2,
	})
	if err != nil {
		t.Fatalf("owner add rule: %v", err)
	}

	added.Points = 4
	updated, err := service.UpdateRule(ctx, UpsertRuleInput{
		UserID:      "alice",
		GroupID:     created.ID,
		RuleID:      added.ID,
		Category:    string(added.Category),
		Description: added.Description,
		Points:      4,
	})
	if err != nil {
		t.Fatalf("owner update rule: %v", err)
	}
	if updated.Points != 4 {
		t.Fatalf("unexpected updated points: got=%d want=4", updated.Points)
	}

	rules, err := service.ListRules(ctx, "bob", created.ID)
	if err != nil {
		t.Fatalf("member list rules: %v", err)
	}
	if len(rules) != 4 {
		t.Fatalf("expected 3 seeds + 1 custom, got %d", len(rules))
	}

	if err := service.DeleteRule(ctx, "alice", created.ID, added.ID); err != nil {
		t.Fatalf("owner delete rule: %v", err)
	}
	if _, err := service.ListRules(ctx, "mallory", created.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-member must not list rules, got %v", err)
	}
}

func TestGroupService_AddRule_ClassifiesFromDescriptionWhenUntagged(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newGroupService(t)

	created, err := service.CreateGroup(ctx, CreateGroupInput{
		OwnerUserID:   "alice",
		CompetitionID: "comp-1",
		Name:          "Office Pool",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	added, err := service.AddRule(ctx, UpsertRuleInput{
		UserID:      "alice",
		GroupID:     created.ID,
		Description: "Double Exact Score weekend",
		Points:      10,
	})
	if err != nil {
		t.Fatalf("add rule: %v", err)
	}
	if added.Category != scoring.CategoryExactScore {
		t.Fatalf("description should classify as exact_score, got %s", added.Category)
	}
}
