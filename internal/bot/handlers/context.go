package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"personality-bot/internal/api/personality"
	"personality-bot/internal/config"
	"personality-bot/internal/storage/postgres"
	"personality-bot/internal/storage/redis"
	"personality-bot/internal/workspace"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const dbTimeout = 10 * time.Second

// Conversation states kept in Redis
const (
	StateIdle              = ""
	StateAwaitingLoginUser = "awaiting_login_username"
	StateAwaitingLoginPass = "awaiting_login_password"
	StateAwaitingRegUser   = "awaiting_register_username"
	StateAwaitingRegPass   = "awaiting_register_password"
	StateAwaitingResume    = "awaiting_resume"
	StateAwaitingVideo     = "awaiting_video"
	StateAwaitingLetter    = "awaiting_letter"
	StateAwaitingVacTitle  = "awaiting_vacancy_title"
	StateAwaitingVacDesc   = "awaiting_vacancy_description"
	StateAwaitingVacSalary = "awaiting_vacancy_salary"
	StateAwaitingThreshold = "awaiting_threshold"
)

// Temp data keys
const (
	tempAuth    = "auth"
	tempUpload  = "upload"
	tempVacancy = "vacancy"
)

// Context contains deps for all handlers
type Context struct {
	Workspace *workspace.Service
	Store     *postgres.Store
	Cache     *redis.Cache
	Config    *config.Config
	Logger    *zap.Logger
}

// apiContext bounds one user action that talks to the backend.
func (ctx *Context) apiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ctx.Config.APITimeout)
}

func dbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func setUserState(ctx *Context, userID int64, state string) error {
	dbCtx, cancel := dbContext()
	defer cancel()
	return ctx.Cache.SetUserState(dbCtx, userID, state)
}

func getUserState(ctx *Context, userID int64) (string, error) {
	dbCtx, cancel := dbContext()
	defer cancel()
	return ctx.Cache.GetUserState(dbCtx, userID)
}

func clearUserState(ctx *Context, userID int64) error {
	dbCtx, cancel := dbContext()
	defer cancel()
	return ctx.Cache.DeleteUserState(dbCtx, userID)
}

func clearTempData(ctx *Context, userID int64) {
	dbCtx, cancel := dbContext()
	defer cancel()
	if err := ctx.Cache.DeleteTempData(dbCtx, userID, tempAuth, tempUpload, tempVacancy); err != nil {
		ctx.Logger.Warn("failed to clear temp data", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// errorText turns a failed operation into a message for the user.
func errorText(err error) string {
	var apiErr *personality.APIError

	switch {
	case errors.Is(err, workspace.ErrNotAuthenticated):
		return "🔒 Сначала войдите в кабинет HR: /login"
	case errors.Is(err, personality.ErrUnauthorized):
		return "🔒 Доступ запрещён или сессия истекла. Войдите снова: /login"
	case errors.Is(err, personality.ErrBadRequest) && errors.As(err, &apiErr) && apiErr.Detail != "":
		return fmt.Sprintf("⚠️ Сервис отклонил запрос: %s", apiErr.Detail)
	case errors.Is(err, personality.ErrBadRequest), errors.Is(err, workspace.ErrInvalidInput):
		return "⚠️ Проверьте введённые данные"
	case errors.Is(err, personality.ErrNotFound):
		return "🤷 Не найдено"
	case errors.Is(err, context.DeadlineExceeded):
		return "⏳ Сервис не ответил вовремя. Попробуйте позже."
	case errors.Is(err, personality.ErrUnavailable):
		return "🔌 Сервис оценки недоступен. Попробуйте позже."
	default:
		return "😔 Ошибка. Попробуйте позже."
	}
}

// showLoading sends the "in progress" placeholder; nil when sending failed.
func showLoading(c tele.Context, text string) *tele.Message {
	msg, err := c.Bot().Send(c.Recipient(), text)
	if err != nil {
		return nil
	}
	return msg
}

func hideLoading(c tele.Context, msg *tele.Message) {
	if msg != nil {
		_ = c.Bot().Delete(msg)
	}
}
