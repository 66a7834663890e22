package scheduler

import (
	"context"
	"fmt"
	"time"

	"personality-bot/internal/api/personality"
	"personality-bot/internal/bot/utils"
	"personality-bot/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	maxListedVacancies = 20
	seenRetentionDays  = 30
	cleanupSchedule    = "@daily"
	checkTimeout       = 5 * time.Minute
)

type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Store interface {
	GetSessionsToNotify(ctx context.Context) ([]models.Session, error)
	HasSeenVacancies(ctx context.Context, userID int64) (bool, error)
	GetUnseenVacancies(ctx context.Context, userID int64, vacancyIDs []string) ([]string, error)
	MarkVacanciesAsSeen(ctx context.Context, userID int64, vacancyIDs []string) error
	UpdateLastCheck(ctx context.Context, userID int64) error
	CleanOldSeenVacancies(ctx context.Context, daysOld int) (int64, error)
}

type API interface {
	Status(ctx context.Context) (string, error)
	ListVacancies(ctx context.Context, token string, limit, offset int) ([]models.Vacancy, error)
}

// VacancyChecker tells logged-in HR users about vacancies they have not seen yet.
type VacancyChecker struct {
	bot      Sender
	store    Store
	api      API
	schedule string
	limit    int
	pause    time.Duration
	logger   *zap.Logger
}

func New(bot Sender, store Store, api API, schedule string, vacanciesLimit int, logger *zap.Logger) *VacancyChecker {
	return &VacancyChecker{
		bot:      bot,
		store:    store,
		api:      api,
		schedule: schedule,
		limit:    vacanciesLimit,
		pause:    2 * time.Second,
		logger:   logger,
	}
}

// Start runs the checks on schedule until ctx is done, then waits for a
// running check to finish.
func (vc *VacancyChecker) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{vc.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{vc.logger})),
	)

	if _, err := c.AddFunc(vc.schedule, func() { vc.CheckAll(ctx) }); err != nil {
		return fmt.Errorf("schedule vacancy check %q: %w", vc.schedule, err)
	}
	if _, err := c.AddFunc(cleanupSchedule, func() { vc.cleanup(ctx) }); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}

	c.Start()
	vc.logger.Info("vacancy checker started", zap.String("schedule", vc.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	vc.logger.Info("vacancy checker stopped")

	return nil
}

func (vc *VacancyChecker) CheckAll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if _, err := vc.api.Status(ctx); err != nil {
		vc.logger.Warn("backend is down, skipping vacancy check", zap.Error(err))
		return
	}

	sessions, err := vc.store.GetSessionsToNotify(ctx)
	if err != nil {
		vc.logger.Error("failed to get sessions to notify", zap.Error(err))
		return
	}

	if len(sessions) == 0 {
		vc.logger.Debug("no users to check")
		return
	}

	vc.logger.Info("checking vacancies for users", zap.Int("count", len(sessions)))

	for i, session := range sessions {
		sent, err := vc.checkSession(ctx, session)
		if err != nil {
			vc.logger.Error("failed to check vacancies for user",
				zap.Int64("user_id", session.UserID),
				zap.Error(err),
			)
			continue
		}

		if err := vc.store.UpdateLastCheck(ctx, session.UserID); err != nil {
			vc.logger.Error("failed to update last check",
				zap.Int64("user_id", session.UserID),
				zap.Error(err),
			)
		}

		if sent > 0 {
			vc.logger.Info("sent new vacancies to user",
				zap.Int64("user_id", session.UserID),
				zap.Int("count", sent),
			)
		}

		if i < len(sessions)-1 && !vc.wait(ctx) {
			return
		}
	}

	vc.logger.Info("finished vacancy check for all users")
}

// checkSession returns how many vacancies the user was told about. The first
// check of a user only records what already exists. Every listed id is marked
// on each run, so only vacancies gone from the backend age out of the table.
func (vc *VacancyChecker) checkSession(ctx context.Context, session models.Session) (int, error) {
	vacancies, err := vc.api.ListVacancies(ctx, session.AccessToken, vc.limit, 0)
	if err != nil {
		return 0, fmt.Errorf("list vacancies: %w", err)
	}
	if len(vacancies) == 0 {
		return 0, nil
	}

	seenBefore, err := vc.store.HasSeenVacancies(ctx, session.UserID)
	if err != nil {
		return 0, fmt.Errorf("has seen vacancies: %w", err)
	}

	listedIDs := personality.ExtractVacancyIDs(vacancies)
	unseenIDs, err := vc.store.GetUnseenVacancies(ctx, session.UserID, listedIDs)
	if err != nil {
		return 0, fmt.Errorf("get unseen vacancies: %w", err)
	}

	notified := 0
	if seenBefore && len(unseenIDs) > 0 {
		if err := vc.notify(session.UserID, pickVacancies(vacancies, unseenIDs)); err != nil {
			return 0, err
		}
		notified = len(unseenIDs)
	}

	if err := vc.store.MarkVacanciesAsSeen(ctx, session.UserID, listedIDs); err != nil {
		return 0, fmt.Errorf("mark vacancies as seen: %w", err)
	}

	if !seenBefore {
		vc.logger.Debug("recorded vacancy baseline",
			zap.Int64("user_id", session.UserID),
			zap.Int("count", len(listedIDs)),
		)
	}
	return notified, nil
}

func (vc *VacancyChecker) notify(userID int64, vacancies []models.Vacancy) error {
	_, err := vc.bot.Send(
		&tele.User{ID: userID},
		utils.FormatNewVacancyNotification(vacancies, maxListedVacancies),
		tele.ModeMarkdownV2,
	)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (vc *VacancyChecker) cleanup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	removed, err := vc.store.CleanOldSeenVacancies(ctx, seenRetentionDays)
	if err != nil {
		vc.logger.Error("failed to clean seen vacancies", zap.Error(err))
		return
	}
	vc.logger.Info("seen vacancies cleaned", zap.Int64("removed", removed))
}

// wait pauses between users so Telegram does not throttle the bot.
func (vc *VacancyChecker) wait(ctx context.Context) bool {
	if vc.pause <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(vc.pause)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// pickVacancies keeps the vacancies whose id is in ids, in list order.
func pickVacancies(vacancies []models.Vacancy, ids []string) []models.Vacancy {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var out []models.Vacancy
	for _, v := range vacancies {
		if wanted[v.ID] {
			out = append(out, v)
		}
	}
	return out
}

// cronLogger routes cron's own logging to zap.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
