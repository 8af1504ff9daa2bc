package prediction

import "context"

type Repository interface {
	// Upsert creates or replaces the prediction for its (user, match, group)
	// triple. The triple is unique; storage enforces it.
	Upsert(ctx context.Context, p Prediction) error
	GetByUserMatchGroup(ctx context.Context, userID, matchID, groupID string) (Prediction, bool, error)
	ListByMatch(ctx context.Context, matchID string) ([]Prediction, error)
	ListByGroupAndUser(ctx context.Context, groupID, userID string) ([]Prediction, error)

	// SetPoints persists the earned points only when the prediction has not
	// been scored yet. It returns false when the guard did not apply.
	SetPoints(ctx context.Context, predictionID string, points int) (bool, error)
}
