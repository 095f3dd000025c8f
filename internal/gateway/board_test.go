package gateway

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xynexa/collab-server/internal/stats"
	"github.com/xynexa/collab-server/internal/store"
	"github.com/xynexa/collab-server/internal/types"
)

func TestUpdateTaskStatus(t *testing.T) {
	t.Run("pushes the board to every member", func(t *testing.T) {
		board := &types.Board{
			Id:     "b1",
			Title:  "Launch plan",
			Status: "done",
			Members: []types.UserProfile{
				{Id: "u1", FirstName: "Ada"},
				{Id: "u2", FirstName: "Grace"},
			},
		}

		db := &store.MockRepository{}
		defer db.AssertExpectations(t)
		db.On("UpdateBoardStatus", "b1", "done").Return(board, nil).Once()

		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)
		su.On("Incr", "BoardBroadcasts").Once()

		g := newTestGateway(t, db, su)

		member1 := newTestClient(t, "conn-1")
		member2 := newTestClient(t, "conn-2")
		outsider := newTestClient(t, "conn-3")
		g.registry.AddClient(member1)
		g.registry.AddClient(member2)
		g.registry.AddClient(outsider)
		g.registry.Join("u1", member1)
		g.registry.Join("u2", member2)

		g.HandleEvent(member1, EventUpdateTaskStatus, mustMarshal(t, UpdateTaskStatusPayload{
			BoardId:   "b1",
			NewStatus: "done",
		}))

		for _, c := range []*Client{member1, member2} {
			events := drainEvents(c)
			if assert.Len(t, events, 1, "expected one board event for %s", c.id) {
				assert.Equal(t, EventBoardStatusUpdated, events[0].Name)
				assert.Equal(t, board, events[0].Data, "expected the full board aggregate")
			}
		}
		assert.Empty(t, drainEvents(outsider), "expected nothing for a non-member")
	})

	t.Run("unknown board is a silent no-op", func(t *testing.T) {
		db := &store.MockRepository{}
		defer db.AssertExpectations(t)
		db.On("UpdateBoardStatus", "missing", "done").Return(nil, sql.ErrNoRows).Once()

		g := newTestGateway(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, "conn-1")
		g.registry.AddClient(c)
		g.registry.Join("u1", c)

		g.HandleEvent(c, EventUpdateTaskStatus, mustMarshal(t, UpdateTaskStatusPayload{
			BoardId:   "missing",
			NewStatus: "done",
		}))

		assert.Empty(t, drainEvents(c), "expected no emissions for an unknown board")
	})

	t.Run("missing boardId is dropped", func(t *testing.T) {
		db := &store.MockRepository{}
		defer db.AssertExpectations(t)

		g := newTestGateway(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, "conn-1")
		g.registry.AddClient(c)

		g.HandleEvent(c, EventUpdateTaskStatus, mustMarshal(t, UpdateTaskStatusPayload{NewStatus: "done"}))
		assert.Empty(t, drainEvents(c), "expected nothing without a boardId")
	})
}

func TestBroadcastBoard(t *testing.T) {
	t.Run("skips members without an id", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)
		su.On("Incr", "BoardBroadcasts").Once()

		g := newTestGateway(t, &store.MockRepository{}, su)
		member := newTestClient(t, "conn-1")
		g.registry.AddClient(member)
		g.registry.Join("u1", member)

		g.BroadcastBoard(&types.Board{
			Id: "b1",
			Members: []types.UserProfile{
				{Id: "u1"},
				{FirstName: "no id"},
			},
		})

		assert.Len(t, drainEvents(member), 1, "expected one event for the identified member")
	})

	t.Run("nil board is ignored", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		defer su.AssertExpectations(t)

		g := newTestGateway(t, &store.MockRepository{}, su)
		g.BroadcastBoard(nil)
	})
}
