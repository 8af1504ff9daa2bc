package group

import "context"

type Repository interface {
	Create(ctx context.Context, g Group) error
	GetByID(ctx context.Context, groupID string) (Group, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (Group, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Group, error)
	UpdateName(ctx context.Context, groupID, ownerUserID, name string) error

	AddMember(ctx context.Context, m Member) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	GetMember(ctx context.Context, groupID, userID string) (Member, bool, error)

	// IncrementMemberPoints adds delta to the member's running total as an
	// atomic storage-level increment.
	IncrementMemberPoints(ctx context.Context, groupID, userID string, delta int) error
}
