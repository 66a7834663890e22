package postgres

import (
	"context"
	"errors"
	"fmt"

	"personality-bot/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

// SaveSession stores the user's bearer token, replacing any previous one.
// The users row is created on the fly so a login before /start still works.
func (s *Store) SaveSession(ctx context.Context, session *models.Session) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.RollbackUnlessCommitted()

	_, err = tx.
		InsertBySql(`INSERT INTO users (id, created_at) VALUES (?, NOW()) ON CONFLICT (id) DO NOTHING`, session.UserID).
		ExecContext(ctx)
	if err != nil {
		s.logger.Error("failed to ensure user for session",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("ensure user: %w", err)
	}

	query := `
		INSERT INTO sessions (user_id, access_token, username, created_at)
		VALUES (?, ?, ?, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			username     = EXCLUDED.username,
			created_at   = NOW()
	`

	_, err = tx.
		InsertBySql(query, session.UserID, session.AccessToken, session.Username).
		ExecContext(ctx)
	if err != nil {
		s.logger.Error("failed to save session",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("save session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}

	s.logger.Info("session saved",
		zap.Int64("user_id", session.UserID),
		zap.String("username", session.Username),
	)

	return nil
}

// GetSession returns nil, nil when the user has no session.
func (s *Store) GetSession(ctx context.Context, userID int64) (*models.Session, error) {
	var session models.Session

	err := s.sess.
		Select("user_id", "access_token", "username", "created_at").
		From("sessions").
		Where("user_id = ?", userID).
		LoadOneContext(ctx, &session)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get session",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, userID int64) error {
	_, err := s.sess.
		DeleteFrom("sessions").
		Where("user_id = ?", userID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete session",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("session deleted", zap.Int64("user_id", userID))
	return nil
}

// GetSessionsToNotify returns the sessions of users with notifications on.
func (s *Store) GetSessionsToNotify(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session

	query := `
		SELECT s.user_id, s.access_token, s.username, s.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE u.check_enabled = true
		ORDER BY u.last_check NULLS FIRST
	`

	_, err := s.sess.
		SelectBySql(query).
		LoadContext(ctx, &sessions)

	if err != nil {
		s.logger.Error("failed to get sessions to notify", zap.Error(err))
		return nil, fmt.Errorf("get sessions to notify: %w", err)
	}

	s.logger.Debug("sessions to notify", zap.Int("count", len(sessions)))

	return sessions, nil
}
