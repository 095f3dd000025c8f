package store

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xynexa/collab-server/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRepository) CreateAccount(params CreateAccountParams) (types.User, error) {
	args := m.Called(params)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockRepository) GetUserByEmail(email string) (types.User, error) {
	args := m.Called(email)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockRepository) GetUserById(id string) (types.User, error) {
	args := m.Called(id)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockRepository) UpdateUserStatus(email, status string, lastActive time.Time) error {
	args := m.Called(email, status, lastActive)
	return args.Error(0)
}
func (m *MockRepository) CreateMessage(params CreateMessageParams) (types.Message, error) {
	args := m.Called(params)
	return args.Get(0).(types.Message), args.Error(1)
}
func (m *MockRepository) MarkMessageRead(messageId string) error {
	args := m.Called(messageId)
	return args.Error(0)
}
func (m *MockRepository) GetConversation(userId, peerId string, limit int) ([]types.Message, error) {
	args := m.Called(userId, peerId, limit)
	return args.Get(0).([]types.Message), args.Error(1)
}
func (m *MockRepository) CreateGroupMessage(params CreateGroupMessageParams) (types.GroupMessage, error) {
	args := m.Called(params)
	return args.Get(0).(types.GroupMessage), args.Error(1)
}
func (m *MockRepository) GetGroupMessages(groupId string, limit int) ([]types.GroupMessage, error) {
	args := m.Called(groupId, limit)
	return args.Get(0).([]types.GroupMessage), args.Error(1)
}
func (m *MockRepository) CreateBoard(params CreateBoardParams) (*types.Board, error) {
	args := m.Called(params)
	if board, ok := args.Get(0).(*types.Board); ok {
		return board, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockRepository) GetBoard(boardId string) (*types.Board, error) {
	args := m.Called(boardId)
	if board, ok := args.Get(0).(*types.Board); ok {
		return board, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockRepository) UpdateBoardStatus(boardId, status string) (*types.Board, error) {
	args := m.Called(boardId, status)
	if board, ok := args.Get(0).(*types.Board); ok {
		return board, args.Error(1)
	}
	return nil, args.Error(1)
}
