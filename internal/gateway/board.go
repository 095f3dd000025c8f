package gateway

import (
	"encoding/json"

	"github.com/xynexa/collab-server/internal/types"
)

func (g *Gateway) handleUpdateTaskStatus(data json.RawMessage) {
	var payload UpdateTaskStatusPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.BoardId == "" {
		return
	}

	g.UpdateTaskStatus(payload.BoardId, payload.NewStatus)
}

// UpdateTaskStatus persists the status change, re-reads the full board
// aggregate and pushes it to every member's private room, one independent
// emission per member. An unknown board is a silent no-op; this path has no
// synchronous caller expecting a response.
func (g *Gateway) UpdateTaskStatus(boardId, newStatus string) {
	board, err := g.boards.UpdateBoardStatus(boardId, newStatus)
	if err != nil {
		g.log.Printf("error updating board %s status: %v", boardId, err)
		return
	}
	g.BroadcastBoard(board)
}

// BroadcastBoard fans an already-updated board aggregate out to each
// member's private room without touching the store; REST handlers that
// persisted the change themselves call this directly.
func (g *Gateway) BroadcastBoard(board *types.Board) {
	if board == nil {
		return
	}

	ev := NewEvent(EventBoardStatusUpdated, board)
	for _, member := range board.Members {
		if member.Id == "" {
			continue
		}
		g.registry.EmitRoom(member.Id, ev)
	}
	g.stats.Incr("BoardBroadcasts")
}
