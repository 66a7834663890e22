package handlers

import (
	"context"

	"personality-bot/internal/bot/utils"
	"personality-bot/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /start command
func HandleStart(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		ctx.Logger.Info("user started bot",
			zap.Int64("user_id", userID),
			zap.String("username", c.Sender().Username),
		)

		dbCtx, cancel := dbContext()
		defer cancel()

		if _, err := ensureUser(dbCtx, ctx, c.Sender()); err != nil {
			return c.Send("😔 Ошибка. Попробуйте позже.")
		}

		if err := clearUserState(ctx, userID); err != nil {
			ctx.Logger.Warn("failed to clear user state", zap.Error(err))
		}
		clearTempData(ctx, userID)

		return c.Send(
			utils.FormatWelcomeMessage(c.Sender().FirstName),
			utils.MainMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

// /cancel command and the cancel button
func HandleCancel(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return cancelConversation(ctx, c)
	}
}

func cancelConversation(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID

	if err := clearUserState(ctx, userID); err != nil {
		ctx.Logger.Warn("failed to clear state", zap.Error(err))
	}
	clearTempData(ctx, userID)

	return c.Send("❌ Операция отменена", utils.MainMenuKeyboard())
}

// ensureUser registers the Telegram user on first contact and keeps the
// stored profile in sync.
func ensureUser(dbCtx context.Context, ctx *Context, sender *tele.User) (*models.User, error) {
	user, err := ctx.Store.GetOrCreateUser(dbCtx, &models.User{
		ID:           sender.ID,
		Username:     stringPtr(sender.Username),
		FirstName:    stringPtr(sender.FirstName),
		LastName:     stringPtr(sender.LastName),
		CheckEnabled: true,
	})
	if err != nil {
		ctx.Logger.Error("get or create user failed", zap.Int64("user_id", sender.ID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
