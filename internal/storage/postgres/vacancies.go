package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// MarkVacanciesAsSeen records the ids and refreshes seen_at for ids already
// recorded, so vacancies the backend still lists survive the age cleanup.
func (s *Store) MarkVacanciesAsSeen(ctx context.Context, userID int64, vacancyIDs []string) error {
	if len(vacancyIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO user_seen_vacancies (user_id, vacancy_id, seen_at)
		SELECT ?, unnest(?::text[]), NOW()
		ON CONFLICT (user_id, vacancy_id) DO UPDATE SET seen_at = EXCLUDED.seen_at
	`

	_, err := s.sess.
		InsertBySql(query, userID, pq.Array(vacancyIDs)).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to mark vacancies as seen",
			zap.Int64("user_id", userID),
			zap.Int("count", len(vacancyIDs)),
			zap.Error(err),
		)
		return fmt.Errorf("mark vacancies as seen: %w", err)
	}

	return nil
}

// GetUnseenVacancies returns the ids from vacancyIDs the user was not notified about yet.
func (s *Store) GetUnseenVacancies(ctx context.Context, userID int64, vacancyIDs []string) ([]string, error) {
	if len(vacancyIDs) == 0 {
		return []string{}, nil
	}

	query := `
		SELECT unnest(?::text[]) AS id
		EXCEPT
		SELECT vacancy_id FROM user_seen_vacancies WHERE user_id = ?
	`

	var unseen []string

	_, err := s.sess.
		SelectBySql(query, pq.Array(vacancyIDs), userID).
		LoadContext(ctx, &unseen)

	if err != nil {
		s.logger.Error("failed to get unseen vacancies",
			zap.Int64("user_id", userID),
			zap.Int("total_vacancies", len(vacancyIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get unseen vacancies: %w", err)
	}

	s.logger.Debug("unseen vacancies",
		zap.Int64("user_id", userID),
		zap.Int("total", len(vacancyIDs)),
		zap.Int("unseen", len(unseen)),
	)

	return unseen, nil
}

// HasSeenVacancies reports whether the user was ever notified; the first run
// only records the current vacancies as a baseline.
func (s *Store) HasSeenVacancies(ctx context.Context, userID int64) (bool, error) {
	var count int

	err := s.sess.
		Select("COUNT(*)").
		From("user_seen_vacancies").
		Where("user_id = ?", userID).
		LoadOneContext(ctx, &count)

	if err != nil {
		s.logger.Error("failed to count seen vacancies",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return false, fmt.Errorf("has seen vacancies: %w", err)
	}

	return count > 0, nil
}

func (s *Store) CleanOldSeenVacancies(ctx context.Context, daysOld int) (int64, error) {
	result, err := s.sess.
		DeleteFrom("user_seen_vacancies").
		Where("seen_at < NOW() - make_interval(days => ?)", daysOld).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to clean old seen vacancies",
			zap.Int("days_old", daysOld),
			zap.Error(err),
		)
		return 0, fmt.Errorf("clean old seen vacancies: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	s.logger.Info("old seen vacancies cleaned",
		zap.Int("days_old", daysOld),
		zap.Int64("count", rowsAffected),
	)

	return rowsAffected, nil
}
