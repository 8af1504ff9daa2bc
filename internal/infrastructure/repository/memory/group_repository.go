package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kickpool/prediction-league/internal/domain/group"
)

type GroupRepository struct {
	mu           sync.RWMutex
	groups       map[string]group.Group
	byInviteCode map[string]string
	members      map[string]group.Member
}

func NewGroupRepository(groups []group.Group) *GroupRepository {
	byID := make(map[string]group.Group, len(groups))
	byInviteCode := make(map[string]string, len(groups))
	for _, item := range groups {
		byID[item.ID] = item
		byInviteCode[item.InviteCode] = item.ID
	}

	return &GroupRepository{
		groups:       byID,
		byInviteCode: byInviteCode,
		members:      make(map[string]group.Member),
	}
}

func memberKey(groupID, userID string) string {
	return groupID + "|" + userID
}

func (r *GroupRepository) Create(_ context.Context, g group.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[g.ID]; exists {
		return fmt.Errorf("group %s already exists", g.ID)
	}
	if _, exists := r.byInviteCode[g.InviteCode]; exists {
		return fmt.Errorf("invite code for group %s already taken", g.ID)
	}

	r.groups[g.ID] = g
	r.byInviteCode[g.InviteCode] = g.ID
	return nil
}

func (r *GroupRepository) GetByID(_ context.Context, groupID string) (group.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[groupID]
	return g, ok, nil
}

func (r *GroupRepository) GetByInviteCode(_ context.Context, inviteCode string) (group.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groupID, ok := r.byInviteCode[inviteCode]
	if !ok {
		return group.Group{}, false, nil
	}
	g, ok := r.groups[groupID]
	return g, ok, nil
}

func (r *GroupRepository) ListByUser(_ context.Context, userID string) ([]group.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]group.Group, 0)
	for _, m := range r.members {
		if m.UserID != userID {
			continue
		}
		if g, ok := r.groups[m.GroupID]; ok {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *GroupRepository) UpdateName(_ context.Context, groupID, ownerUserID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s not found", groupID)
	}
	if g.OwnerUserID != ownerUserID {
		return fmt.Errorf("user %s does not own group %s", ownerUserID, groupID)
	}

	g.Name = name
	g.UpdatedAt = time.Now().UTC()
	r.groups[groupID] = g
	return nil
}

func (r *GroupRepository) AddMember(_ context.Context, m group.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memberKey(m.GroupID, m.UserID)
	if _, exists := r.members[key]; exists {
		return fmt.Errorf("user %s is already a member of group %s", m.UserID, m.GroupID)
	}

	r.members[key] = m
	return nil
}

func (r *GroupRepository) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[memberKey(groupID, userID)]
	return ok, nil
}

func (r *GroupRepository) GetMember(_ context.Context, groupID, userID string) (group.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[memberKey(groupID, userID)]
	return m, ok, nil
}

func (r *GroupRepository) IncrementMemberPoints(_ context.Context, groupID, userID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memberKey(groupID, userID)
	m, ok := r.members[key]
	if !ok {
		return fmt.Errorf("user %s is not a member of group %s", userID, groupID)
	}

	m.TotalPoints += delta
	m.UpdatedAt = time.Now().UTC()
	r.members[key] = m
	return nil
}
