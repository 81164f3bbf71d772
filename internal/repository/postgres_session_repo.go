package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/newsboard/internal/model"
)

const (
	insertSessionSQL = `INSERT INTO sessions (id, user_id, username, email, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	// 期限切れの行はクリーンアップ前でも見えないようにする
	selectLiveSessionSQL = `SELECT id, user_id, username, email, expires_at, created_at
FROM sessions
WHERE id = $1 AND expires_at > now()`

	deleteSessionSQL         = `DELETE FROM sessions WHERE id = $1`
	deleteUserSessionsSQL    = `DELETE FROM sessions WHERE user_id = $1`
	deleteExpiredSessionsSQL = `DELETE FROM sessions WHERE expires_at <= now()`
)

// PostgresSessionRepo はsessionsテーブルに保存するSessionRepository。
// 複数のAPIプロセスとworkerでセッションを共有する場合に使う。
type PostgresSessionRepo struct {
	db *sql.DB
}

func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

func (r *PostgresSessionRepo) Create(ctx context.Context, s *model.Session) error {
	if _, err := r.db.ExecContext(ctx, insertSessionSQL,
		s.ID, s.UserID, s.Username, s.Email, s.ExpiresAt, s.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は有効なセッションを返す。存在しないか期限切れならnil。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.QueryRowContext(ctx, selectLiveSessionSQL, id).
		Scan(&s.ID, &s.UserID, &s.Username, &s.Email, &s.ExpiresAt, &s.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &s, nil
}

func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, deleteUserSessionsSQL, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, deleteExpiredSessionsSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

var _ SessionRepository = (*PostgresSessionRepo)(nil)
