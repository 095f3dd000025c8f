package store

import (
	"time"

	"github.com/xynexa/collab-server/internal/types"
)

type Repository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (types.User, error)
	GetUserByEmail(email string) (types.User, error)
	GetUserById(id string) (types.User, error)
	UpdateUserStatus(email, status string, lastActive time.Time) error
	CreateMessage(params CreateMessageParams) (types.Message, error)
	MarkMessageRead(messageId string) error
	GetConversation(userId, peerId string, limit int) ([]types.Message, error)
	CreateGroupMessage(params CreateGroupMessageParams) (types.GroupMessage, error)
	GetGroupMessages(groupId string, limit int) ([]types.GroupMessage, error)
	CreateBoard(params CreateBoardParams) (*types.Board, error)
	GetBoard(boardId string) (*types.Board, error)
	UpdateBoardStatus(boardId, status string) (*types.Board, error)
}
