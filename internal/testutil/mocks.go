// Package testutil carries shared repository mocks for command tests.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetUsers(ctx context.Context, ids []string, startFrom *string, maxItems int) ([]domain.User, error) {
	args := m.Called(ids, startFrom, maxItems)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) GetUserByKeyHash(ctx context.Context, keyHash string) (*domain.User, error) {
	args := m.Called(keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(user)
	return args.Error(0)
}

type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepo) GetGroups(ctx context.Context, ids []string) ([]domain.Group, error) {
	args := m.Called(ids)
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupRepo) GetGroupIDsForUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(userID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGroupRepo) SaveGroup(ctx context.Context, group domain.Group) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockGroupRepo) AddGroupMember(ctx context.Context, groupID, userID string) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}
