package scoring

// Outcome is the result class of a score line.
type Outcome string

const (
	OutcomeHomeWin Outcome = "home_win"
	OutcomeAwayWin Outcome = "away_win"
	OutcomeDraw    Outcome = "draw"
)

func Classify(homeScore, awayScore int) Outcome {
	switch {
	case homeScore > awayScore:
		return OutcomeHomeWin
	case homeScore < awayScore:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// RuleSet resolves point values per category for one group. A group may have
// edited or deleted any of its seed rules; missing categories fall back to
// the default point values.
type RuleSet struct {
	pointsByCategory map[Category]int
}

func NewRuleSet(rules []Rule) RuleSet {
	pointsByCategory := make(map[Category]int, len(rules))
	for _, rule := range rules {
		category := rule.EffectiveCategory()
		if category == CategoryCustom || category == CategoryUnknown {
			continue
		}
		if _, exists := pointsByCategory[category]; exists {
			continue
		}
		pointsByCategory[category] = rule.Points
	}
	return RuleSet{pointsByCategory: pointsByCategory}
}

func (s RuleSet) PointsFor(category Category) int {
	if points, ok := s.pointsByCategory[category]; ok {
		return points
	}
	switch category {
	case CategoryExactScore:
		return DefaultExactScorePoints
	case CategoryCorrectWinner:
		return DefaultCorrectWinnerPoints
	case CategoryCorrectDraw:
		return DefaultCorrectDrawPoints
	default:
		return 0
	}
}

// ComputePoints awards points for one prediction against the actual result.
// An exact score match is exclusive: it never also earns winner or draw
// points. The function is total over integer inputs; score validation happens
// at the edges.
func ComputePoints(predictedHome, predictedAway, actualHome, actualAway int, rules RuleSet) int {
	if predictedHome == actualHome && predictedAway == actualAway {
		return rules.PointsFor(CategoryExactScore)
	}

	predicted := Classify(predictedHome, predictedAway)
	actual := Classify(actualHome, actualAway)
	if predicted != actual {
		return 0
	}
	if actual == OutcomeDraw {
		return rules.PointsFor(CategoryCorrectDraw)
	}
	return rules.PointsFor(CategoryCorrectWinner)
}
