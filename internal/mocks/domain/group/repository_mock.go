// Code generated by mockery v2.53.5. DO NOT EDIT.

package groupmock

import (
	context "context"

	group "github.com/kickpool/prediction-league/internal/domain/group"
	mock "github.com/stretchr/testify/mock"
)

// Repository is an autogenerated mock type for the Repository type
type Repository struct {
	mock.Mock
}

// AddMember provides a mock function with given fields: ctx, m
func (_m *Repository) AddMember(ctx context.Context, m group.Member) error {
	ret := _m.Called(ctx, m)

	if len(ret) == 0 {
		panic("no return value specified for AddMember")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, group.Member) error); ok {
		r0 = rf(ctx, m)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Create provides a mock function with given fields: ctx, g
func (_m *Repository) Create(ctx context.Context, g group.Group) error {
	ret := _m.Called(ctx, g)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, group.Group) error); ok {
		r0 = rf(ctx, g)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, groupID
func (_m *Repository) GetByID(ctx context.Context, groupID string) (group.Group, bool, error) {
	ret := _m.Called(ctx, groupID)

	if len(ret) == 0 {
		panic("no return value specified for GetByID")
	}

	var r0 group.Group
	var r1 bool
	var r2 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (group.Group, bool, error)); ok {
		return rf(ctx, groupID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) group.Group); ok {
		r0 = rf(ctx, groupID)
	} else {
		r0 = ret.Get(0).(group.Group)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) bool); ok {
		r1 = rf(ctx, groupID)
	} else {
		r1 = ret.Get(1).(bool)
	}

	if rf, ok := ret.Get(2).(func(context.Context, string) error); ok {
		r2 = rf(ctx, groupID)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// GetByInviteCode provides a mock function with given fields: ctx, inviteCode
func (_m *Repository) GetByInviteCode(ctx context.Context, inviteCode string) (group.Group, bool, error) {
	ret := _m.Called(ctx, inviteCode)

	if len(ret) == 0 {
		panic("no return value specified for GetByInviteCode")
	}

	var r0 group.Group
	var r1 bool
	var r2 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (group.Group, bool, error)); ok {
		return rf(ctx, inviteCode)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) group.Group); ok {
		r0 = rf(ctx, inviteCode)
	} else {
		r0 = ret.Get(0).(group.Group)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) bool); ok {
		r1 = rf(ctx, inviteCode)
	} else {
		r1 = ret.Get(1).(bool)
	}

	if rf, ok := ret.Get(2).(func(context.Context, string) error); ok {
		r2 = rf(ctx, inviteCode)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// GetMember provides a mock function with given fields: ctx, groupID, userID
func (_m *Repository) GetMember(ctx context.Context, groupID string, userID string) (group.Member, bool, error) {
	ret := _m.Called(ctx, groupID, userID)

	if len(ret) == 0 {
		panic("no return value specified for GetMember")
	}

	var r0 group.Member
	var r1 bool
	var r2 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (group.Member, bool, error)); ok {
		return rf(ctx, groupID, userID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) group.Member); ok {
		r0 = rf(ctx, groupID, userID)
	} else {
		r0 = ret.Get(0).(group.Member)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) bool); ok {
		r1 = rf(ctx, groupID, userID)
	} else {
		r1 = ret.Get(1).(bool)
	}

	if rf, ok := ret.Get(2).(func(context.Context, string, string) error); ok {
		r2 = rf(ctx, groupID, userID)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// IncrementMemberPoints provides a mock function with given fields: ctx, groupID, userID, delta
func (_m *Repository) IncrementMemberPoints(ctx context.Context, groupID string, userID string, delta int) error {
	ret := _m.Called(ctx, groupID, userID, delta)

	if len(ret) == 0 {
		panic("no return value specified for IncrementMemberPoints")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, int) error); ok {
		r0 = rf(ctx, groupID, userID, delta)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// IsMember provides a mock function with given fields: ctx, groupID, userID
func (_m *Repository) IsMember(ctx context.Context, groupID string, userID string) (bool, error) {
	ret := _m.Called(ctx, groupID, userID)

	if len(ret) == 0 {
		panic("no return value specified for IsMember")
	}

	var r0 bool
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (bool, error)); ok {
		return rf(ctx, groupID, userID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) bool); ok {
		r0 = rf(ctx, groupID, userID)
	} else {
		r0 = ret.Get(0).(bool)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, groupID, userID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListByUser provides a mock function with given fields: ctx, userID
func (_m *Repository) ListByUser(ctx context.Context, userID string) ([]group.Group, error) {
	ret := _m.Called(ctx, userID)

	if len(ret) == 0 {
		panic("no return value specified for ListByUser")
	}

	var r0 []group.Group
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]group.Group, error)); ok {
		return rf(ctx, userID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []group.Group); ok {
		r0 = rf(ctx, userID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]group.Group)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, userID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateName provides a mock function with given fields: ctx, groupID, ownerUserID, name
func (_m *Repository) UpdateName(ctx context.Context, groupID string, ownerUserID string, name string) error {
	ret := _m.Called(ctx, groupID, ownerUserID, name)

	if len(ret) == 0 {
		panic("no return value specified for UpdateName")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) error); ok {
		r0 = rf(ctx, groupID, ownerUserID, name)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewRepository creates a new instance of Repository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *Repository {
	mock := &Repository{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
