package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/motumbon/contratos/internal/model"
)

// 上传状态
const (
	UploadProcessing = "processing"
	UploadSuccess    = "success"
	UploadError      = "error"
)

// CreateUploadLog 创建上传日志，返回 id
func (s *Store) CreateUploadLog(ctx context.Context, sessionID, filename string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO upload_logs (session_id, filename, file_size, file_hash, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sessionID, filename, fileSize, fileHash, UploadProcessing, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to create upload log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get upload log id: %w", err)
	}
	return id, nil
}

// FinishUploadLog 完成上传日志
func (s *Store) FinishUploadLog(ctx context.Context, id int64, status, kind, errorMessage string, recordCount int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE upload_logs SET
			status = ?,
			kind = ?,
			error_message = ?,
			record_count = ?,
			completed_at = ?
		WHERE id = ?
	`, status, kind, errorMessage, recordCount, s.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}
	return nil
}

// ListUploadLogs 最近的上传日志（新到旧）；sessionID 为空时返回全部会话
func (s *Store) ListUploadLogs(ctx context.Context, sessionID string, limit int) ([]model.UploadLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	const cols = `id, session_id, filename, file_size, file_hash, status, kind, error_message, record_count, created_at`
	if sessionID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+` FROM upload_logs ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+` FROM upload_logs WHERE session_id = ? ORDER BY id DESC LIMIT ?`, sessionID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query upload logs: %w", err)
	}
	defer rows.Close()

	out := []model.UploadLog{}
	for rows.Next() {
		var l model.UploadLog
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Filename, &l.FileSize, &l.FileHash,
			&l.Status, &l.Kind, &l.ErrorMessage, &l.RecordCount, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
