// Code generated by mockery v2.53.5. DO NOT EDIT.

package matchmock

import (
	context "context"

	match "github.com/kickpool/prediction-league/internal/domain/match"
	mock "github.com/stretchr/testify/mock"

	time "time"
)

// Repository is an autogenerated mock type for the Repository type
type Repository struct {
	mock.Mock
}

// ClaimScoring provides a mock function with given fields: ctx, matchID, at
func (_m *Repository) ClaimScoring(ctx context.Context, matchID string, at time.Time) (bool, error) {
	ret := _m.Called(ctx, matchID, at)

	if len(ret) == 0 {
		panic("no return value specified for ClaimScoring")
	}

	var r0 bool
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, time.Time) (bool, error)); ok {
		return rf(ctx, matchID, at)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, time.Time) bool); ok {
		r0 = rf(ctx, matchID, at)
	} else {
		r0 = ret.Get(0).(bool)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, time.Time) error); ok {
		r1 = rf(ctx, matchID, at)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Create provides a mock function with given fields: ctx, m
func (_m *Repository) Create(ctx context.Context, m match.Match) error {
	ret := _m.Called(ctx, m)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, match.Match) error); ok {
		r0 = rf(ctx, m)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, matchID
func (_m *Repository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	ret := _m.Called(ctx, matchID)

	if len(ret) == 0 {
		panic("no return value specified for GetByID")
	}

	var r0 match.Match
	var r1 bool
	var r2 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (match.Match, bool, error)); ok {
		return rf(ctx, matchID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) match.Match); ok {
		r0 = rf(ctx, matchID)
	} else {
		r0 = ret.Get(0).(match.Match)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) bool); ok {
		r1 = rf(ctx, matchID)
	} else {
		r1 = ret.Get(1).(bool)
	}

	if rf, ok := ret.Get(2).(func(context.Context, string) error); ok {
		r2 = rf(ctx, matchID)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// ListByCompetition provides a mock function with given fields: ctx, competitionID
func (_m *Repository) ListByCompetition(ctx context.Context, competitionID string) ([]match.Match, error) {
	ret := _m.Called(ctx, competitionID)

	if len(ret) == 0 {
		panic("no return value specified for ListByCompetition")
	}

	var r0 []match.Match
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]match.Match, error)); ok {
		return rf(ctx, competitionID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []match.Match); ok {
		r0 = rf(ctx, competitionID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]match.Match)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, competitionID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReleaseScoring provides a mock function with given fields: ctx, matchID
func (_m *Repository) ReleaseScoring(ctx context.Context, matchID string) error {
	ret := _m.Called(ctx, matchID)

	if len(ret) == 0 {
		panic("no return value specified for ReleaseScoring")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, matchID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UpdateResult provides a mock function with given fields: ctx, matchID, homeScore, awayScore, status
func (_m *Repository) UpdateResult(ctx context.Context, matchID string, homeScore int, awayScore int, status string) error {
	ret := _m.Called(ctx, matchID, homeScore, awayScore, status)

	if len(ret) == 0 {
		panic("no return value specified for UpdateResult")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int, int, string) error); ok {
		r0 = rf(ctx, matchID, homeScore, awayScore, status)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UpdateStatus provides a mock function with given fields: ctx, matchID, status
func (_m *Repository) UpdateStatus(ctx context.Context, matchID string, status string) error {
	ret := _m.Called(ctx, matchID, status)

	if len(ret) == 0 {
		panic("no return value specified for UpdateStatus")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, matchID, status)
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
