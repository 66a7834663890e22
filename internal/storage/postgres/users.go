package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"personality-bot/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.sess.
		InsertInto("users").
		Columns("id", "username", "first_name", "last_name", "created_at", "check_enabled").
		Values(user.ID, user.Username, user.FirstName, user.LastName, time.Now(), user.CheckEnabled).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to create user",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.Stringp("username", user.Username),
	)

	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	err := s.sess.
		Select("*").
		From("users").
		Where("id = ?", userID).
		LoadOneContext(ctx, &user)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get user",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetOrCreateUser also refreshes the Telegram profile fields of a known user.
func (s *Store) GetOrCreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := s.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if !sameProfile(existing, user) {
		existing.Username = user.Username
		existing.FirstName = user.FirstName
		existing.LastName = user.LastName
		if err := s.UpdateUser(ctx, existing); err != nil {
			return nil, err
		}
	}

	return existing, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := s.sess.
		Update("users").
		Set("username", user.Username).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("check_enabled", user.CheckEnabled).
		Where("id = ?", user.ID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update user",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user updated", zap.Int64("user_id", user.ID))
	return nil
}

func (s *Store) UpdateLastCheck(ctx context.Context, userID int64) error {
	_, err := s.sess.
		Update("users").
		Set("last_check", time.Now()).
		Where("id = ?", userID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update last check",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("update last check: %w", err)
	}

	return nil
}

func (s *Store) SetCheckEnabled(ctx context.Context, userID int64, enabled bool) error {
	_, err := s.sess.
		Update("users").
		Set("check_enabled", enabled).
		Where("id = ?", userID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set check enabled",
			zap.Int64("user_id", userID),
			zap.Bool("enabled", enabled),
			zap.Error(err),
		)
		return fmt.Errorf("set check enabled: %w", err)
	}

	s.logger.Info("check enabled updated",
		zap.Int64("user_id", userID),
		zap.Bool("enabled", enabled),
	)

	return nil
}

type UserStats struct {
	Submissions   int
	SeenVacancies int
	LoggedIn      bool
}

func (s *Store) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	var stats UserStats

	err := s.sess.
		Select("COUNT(*)").
		From("submissions").
		Where("user_id = ?", userID).
		LoadOneContext(ctx, &stats.Submissions)
	if err != nil {
		return nil, fmt.Errorf("get submission count: %w", err)
	}

	err = s.sess.
		Select("COUNT(*)").
		From("user_seen_vacancies").
		Where("user_id = ?", userID).
		LoadOneContext(ctx, &stats.SeenVacancies)
	if err != nil {
		return nil, fmt.Errorf("get seen count: %w", err)
	}

	var sessions int
	err = s.sess.
		Select("COUNT(*)").
		From("sessions").
		Where("user_id = ?", userID).
		LoadOneContext(ctx, &sessions)
	if err != nil {
		return nil, fmt.Errorf("get session count: %w", err)
	}
	stats.LoggedIn = sessions > 0

	return &stats, nil
}

func sameProfile(a, b *models.User) bool {
	return eqStringp(a.Username, b.Username) &&
		eqStringp(a.FirstName, b.FirstName) &&
		eqStringp(a.LastName, b.LastName)
}

func eqStringp(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
