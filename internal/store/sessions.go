package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/motumbon/contratos/internal/model"
)

// Get 读取会话数据；过期或不存在时 ok=false
func (s *Store) Get(ctx context.Context, sessionID string) (*model.RecordSet, bool, error) {
	var payload string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM sessions WHERE id = ?`, sessionID,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	if expiresAt > 0 && s.now().Unix() > expiresAt {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
			return nil, false, fmt.Errorf("failed to drop expired session: %w", err)
		}
		return nil, false, nil
	}

	var rs model.RecordSet
	if err := json.Unmarshal([]byte(payload), &rs); err != nil {
		return nil, false, fmt.Errorf("failed to decode session: %w", err)
	}
	return &rs, true, nil
}

// Put 整体替换会话数据
func (s *Store) Put(ctx context.Context, sessionID string, rs *model.RecordSet) error {
	payload, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	now := s.now()
	var expiresAt int64
	if s.sessionTTL > 0 {
		expiresAt = now.Add(s.sessionTTL).Unix()
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at > 0 AND expires_at < ?`, now.Unix(),
	); err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, payload, updated_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at
	`, sessionID, string(payload), now.UTC(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete 删除会话数据
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CountSessions 未过期会话数量
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE expires_at = 0 OR expires_at >= ?`, s.now().Unix(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
