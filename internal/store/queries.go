package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/xynexa/collab-server/internal/types"
)

const defaultMessageLimit = 50

func (db *PgRepository) CreateAccount(params CreateAccountParams) (types.User, error) {
	id, err := db.newId()
	if err != nil {
		return types.User{}, fmt.Errorf("generate id: %w", err)
	}

	res := db.conn.QueryRow(
		"INSERT INTO users (id, email, first_name, image_url, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, email, first_name, image_url, status, created_at",
		id,
		params.Email,
		params.FirstName,
		params.ImageUrl,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u types.User
	err = res.Scan(
		&u.Id,
		&u.Email,
		&u.FirstName,
		&u.ImageUrl,
		&u.Status,
		&u.CreatedAt,
	)

	return u, err
}

func (db *PgRepository) GetUserByEmail(email string) (types.User, error) {
	res := db.conn.QueryRow(
		"SELECT id, email, first_name, image_url, password_hash, status, last_active, created_at, updated_at "+
			"FROM users WHERE email = $1",
		email,
	)

	var u types.User
	err := res.Scan(
		&u.Id,
		&u.Email,
		&u.FirstName,
		&u.ImageUrl,
		&u.PasswordHash,
		&u.Status,
		&u.LastActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgRepository) GetUserById(id string) (types.User, error) {
	res := db.conn.QueryRow(
		"SELECT id, email, first_name, image_url, password_hash, status, last_active, created_at, updated_at "+
			"FROM users WHERE id = $1",
		id,
	)

	var u types.User
	err := res.Scan(
		&u.Id,
		&u.Email,
		&u.FirstName,
		&u.ImageUrl,
		&u.PasswordHash,
		&u.Status,
		&u.LastActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgRepository) UpdateUserStatus(email, status string, lastActive time.Time) error {
	res, err := db.conn.Exec(
		"UPDATE users SET status = $2, last_active = $3, updated_at = $4 WHERE email = $1",
		email,
		status,
		lastActive,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgRepository) CreateMessage(params CreateMessageParams) (types.Message, error) {
	id, err := db.newId()
	if err != nil {
		return types.Message{}, fmt.Errorf("generate id: %w", err)
	}

	res := db.conn.QueryRow(
		"INSERT INTO messages (id, sender_id, receiver_id, text, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, sender_id, receiver_id, text, read, created_at",
		id,
		params.SenderId,
		params.ReceiverId,
		params.Text,
		time.Now().UTC(),
	)

	var m types.Message
	err = res.Scan(
		&m.Id,
		&m.SenderId,
		&m.ReceiverId,
		&m.Text,
		&m.Read,
		&m.Timestamp,
	)

	return m, err
}

func (db *PgRepository) MarkMessageRead(messageId string) error {
	res, err := db.conn.Exec(
		"UPDATE messages SET read = TRUE WHERE id = $1",
		messageId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgRepository) GetConversation(userId, peerId string, limit int) ([]types.Message, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}

	rows, err := db.conn.Query(
		"SELECT id, sender_id, receiver_id, text, read, created_at FROM messages "+
			"WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1) "+
			"ORDER BY created_at DESC LIMIT $3",
		userId,
		peerId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(&m.Id, &m.SenderId, &m.ReceiverId, &m.Text, &m.Read, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgRepository) CreateGroupMessage(params CreateGroupMessageParams) (types.GroupMessage, error) {
	id, err := db.newId()
	if err != nil {
		return types.GroupMessage{}, fmt.Errorf("generate id: %w", err)
	}

	res := db.conn.QueryRow(
		"INSERT INTO group_messages (id, group_id, sender_id, content, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, group_id, sender_id, content, created_at",
		id,
		params.GroupId,
		params.SenderId,
		params.Content,
		time.Now().UTC(),
	)

	var gm types.GroupMessage
	err = res.Scan(
		&gm.Id,
		&gm.GroupId,
		&gm.SenderId,
		&gm.Content,
		&gm.Timestamp,
	)

	return gm, err
}

func (db *PgRepository) GetGroupMessages(groupId string, limit int) ([]types.GroupMessage, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}

	rows, err := db.conn.Query(
		"SELECT id, group_id, sender_id, content, created_at FROM group_messages "+
			"WHERE group_id = $1 ORDER BY created_at DESC LIMIT $2",
		groupId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []types.GroupMessage
	for rows.Next() {
		var gm types.GroupMessage
		if err := rows.Scan(&gm.Id, &gm.GroupId, &gm.SenderId, &gm.Content, &gm.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, gm)
	}

	return messages, rows.Err()
}

func (db *PgRepository) CreateBoard(params CreateBoardParams) (*types.Board, error) {
	id, err := db.newId()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO boards (id, title, status, owner_id, created_at) VALUES ($1, $2, $3, $4, $5)",
		id,
		params.Title,
		params.Status,
		params.OwnerId,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	memberIds := params.MemberIds
	if len(memberIds) == 0 {
		memberIds = []string{params.OwnerId}
	}
	for _, memberId := range memberIds {
		_, err = tx.Exec(
			"INSERT INTO board_members (board_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			id,
			memberId,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return db.GetBoard(id)
}

func (db *PgRepository) GetBoard(boardId string) (*types.Board, error) {
	res := db.conn.QueryRow(
		"SELECT id, title, status, owner_id, created_at, updated_at FROM boards WHERE id = $1",
		boardId,
	)

	var b types.Board
	err := res.Scan(
		&b.Id,
		&b.Title,
		&b.Status,
		&b.OwnerId,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := db.loadBoardAggregate(&b); err != nil {
		return nil, err
	}

	return &b, nil
}

// UpdateBoardStatus updates the board's status and timestamp, then returns
// the full refreshed aggregate including members, comments and attachments.
func (db *PgRepository) UpdateBoardStatus(boardId, status string) (*types.Board, error) {
	res := db.conn.QueryRow(
		"UPDATE boards SET status = $2, updated_at = $3 WHERE id = $1 "+
			"RETURNING id, title, status, owner_id, created_at, updated_at",
		boardId,
		status,
		time.Now().UTC(),
	)

	var b types.Board
	err := res.Scan(
		&b.Id,
		&b.Title,
		&b.Status,
		&b.OwnerId,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := db.loadBoardAggregate(&b); err != nil {
		return nil, err
	}

	return &b, nil
}

func (db *PgRepository) loadBoardAggregate(b *types.Board) error {
	rows, err := db.conn.Query(
		"SELECT u.id, u.first_name, u.email, u.image_url FROM board_members bm "+
			"JOIN users u ON u.id = bm.user_id WHERE bm.board_id = $1",
		b.Id,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p types.UserProfile
		if err := rows.Scan(&p.Id, &p.FirstName, &p.Email, &p.ImageUrl); err != nil {
			return err
		}
		b.Members = append(b.Members, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	commentRows, err := db.conn.Query(
		"SELECT id, board_id, author_id, text, created_at FROM board_comments "+
			"WHERE board_id = $1 ORDER BY created_at",
		b.Id,
	)
	if err != nil {
		return err
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var c types.Comment
		if err := commentRows.Scan(&c.Id, &c.BoardId, &c.AuthorId, &c.Text, &c.CreatedAt); err != nil {
			return err
		}
		b.Comments = append(b.Comments, c)
	}
	if err := commentRows.Err(); err != nil {
		return err
	}

	attachmentRows, err := db.conn.Query(
		"SELECT id, board_id, name, url FROM board_attachments WHERE board_id = $1",
		b.Id,
	)
	if err != nil {
		return err
	}
	defer attachmentRows.Close()

	for attachmentRows.Next() {
		var a types.Attachment
		if err := attachmentRows.Scan(&a.Id, &a.BoardId, &a.Name, &a.Url); err != nil {
			return err
		}
		b.Attachments = append(b.Attachments, a)
	}

	return attachmentRows.Err()
}
