package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// SessionRepo persists the bearer tokens issued at sign-in.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create stores a session row for the token.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token) VALUES (?,?)",
		userID, token)
	return err
}

// FindByToken returns the session holding token, or ErrSessionNotFound.
func (r *SessionRepo) FindByToken(ctx context.Context, token string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, created_at FROM sessions WHERE token=? LIMIT 1",
		token).Scan(&s.ID, &s.UserID, &s.Token, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrSessionNotFound
	}
	return s, err
}

// DeleteByUser removes every session of the user.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	return err
}
