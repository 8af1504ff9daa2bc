package scoring

import "context"

type Repository interface {
	CreateRule(ctx context.Context, rule Rule) error
	UpdateRule(ctx context.Context, rule Rule) error
	DeleteRule(ctx context.Context, groupID, ruleID string) error
	ListRulesByGroup(ctx context.Context, groupID string) ([]Rule, error)
	ListRulesByGroups(ctx context.Context, groupIDs []string) (map[string][]Rule, error)
}
