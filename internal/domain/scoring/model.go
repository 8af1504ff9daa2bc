package scoring

import (
	"strings"
	"time"
)

// Category tags a rule with the prediction outcome it rewards. Older rows
// created before the tag existed carry CategoryUnknown and are classified
// from their description instead.
type Category string

const (
	CategoryUnknown       Category = ""
	CategoryExactScore    Category = "exact_score"
	CategoryCorrectWinner Category = "correct_winner"
	CategoryCorrectDraw   Category = "correct_draw"
	CategoryCustom        Category = "custom"
)

const (
	DefaultExactScorePoints    = 5
	DefaultCorrectWinnerPoints = 3
	DefaultCorrectDrawPoints   = 3
)

type Rule struct {
	ID          string
	GroupID     string
	Category    Category
	Description string
	Points      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultRules returns the three seed rules every new group starts with.
func DefaultRules(groupID string) []Rule {
	return []Rule{
		{GroupID: groupID, Category: CategoryExactScore, Description: "Exact score", Points: DefaultExactScorePoints},
		{GroupID: groupID, Category: CategoryCorrectWinner, Description: "Correct winner", Points: DefaultCorrectWinnerPoints},
		{GroupID: groupID, Category: CategoryCorrectDraw, Description: "Correct draw", Points: DefaultCorrectDrawPoints},
	}
}

// CategoryFromDescription classifies a free-text rule description by
// case-insensitive substring match. This preserves the behavior of rule rows
// that predate the category tag; edited or localized descriptions fall
// through to CategoryCustom.
func CategoryFromDescription(description string) Category {
	normalized := strings.ToLower(strings.TrimSpace(description))
	switch {
	case strings.Contains(normalized, "exact score"):
		return CategoryExactScore
	case strings.Contains(normalized, "correct winner"):
		return CategoryCorrectWinner
	case strings.Contains(normalized, "correct draw"):
		return CategoryCorrectDraw
	default:
		return CategoryCustom
	}
}

// EffectiveCategory resolves the category for rule lookup, falling back to
// description matching when the tag is missing.
func (r Rule) EffectiveCategory() Category {
	if r.Category != CategoryUnknown && r.Category != CategoryCustom {
		return r.Category
	}
	if r.Category == CategoryCustom {
		return CategoryCustom
	}
	return CategoryFromDescription(r.Description)
}
