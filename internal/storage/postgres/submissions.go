package postgres

import (
	"context"
	"errors"
	"fmt"

	"personality-bot/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

func (s *Store) SaveSubmission(ctx context.Context, userID int64, cardID string) error {
	var id int64

	err := s.sess.
		SelectBySql(`INSERT INTO submissions (user_id, card_id, created_at) VALUES (?, ?, NOW()) RETURNING id`, userID, cardID).
		LoadOneContext(ctx, &id)

	if err != nil {
		s.logger.Error("failed to save submission",
			zap.Int64("user_id", userID),
			zap.String("card_id", cardID),
			zap.Error(err),
		)
		return fmt.Errorf("save submission: %w", err)
	}

	s.logger.Info("submission saved",
		zap.Int64("user_id", userID),
		zap.Int64("submission_id", id),
		zap.String("card_id", cardID),
	)

	return nil
}

// LastSubmission returns nil, nil when the user never submitted a card.
func (s *Store) LastSubmission(ctx context.Context, userID int64) (*models.Submission, error) {
	var sub models.Submission

	err := s.sess.
		Select("id", "user_id", "card_id", "created_at").
		From("submissions").
		Where("user_id = ?", userID).
		OrderDesc("created_at").
		Limit(1).
		LoadOneContext(ctx, &sub)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get last submission",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("last submission: %w", err)
	}

	return &sub, nil
}
