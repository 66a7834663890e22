package handlers

import (
	"personality-bot/internal/bot/utils"
	"personality-bot/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /settings command
func HandleSettings(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		dbCtx, cancel := dbContext()
		defer cancel()

		user, err := ensureUser(dbCtx, ctx, c.Sender())
		if err != nil {
			return c.Send("😔 Ошибка при получении настроек")
		}

		stats, err := ctx.Store.GetUserStats(dbCtx, userID)
		if err != nil {
			ctx.Logger.Warn("failed to get user stats", zap.Int64("user_id", userID), zap.Error(err))
		}

		return c.Send(
			utils.FormatSettingsMessage(user, stats, scheduleText(ctx)),
			utils.SettingsKeyboard(user.CheckEnabled),
			tele.ModeMarkdownV2,
		)
	}
}

func handleSettingsToggle(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID

	dbCtx, cancel := dbContext()
	defer cancel()

	user, err := ensureUser(dbCtx, ctx, c.Sender())
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "😔 Ошибка"})
	}

	enabled := !user.CheckEnabled
	if err := ctx.Store.SetCheckEnabled(dbCtx, userID, enabled); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "😔 Ошибка сохранения"})
	}
	user.CheckEnabled = enabled

	stats, err := ctx.Store.GetUserStats(dbCtx, userID)
	if err != nil {
		ctx.Logger.Warn("failed to get user stats", zap.Int64("user_id", userID), zap.Error(err))
	}

	if err := c.Edit(
		utils.FormatSettingsMessage(user, stats, scheduleText(ctx)),
		utils.SettingsKeyboard(enabled),
		tele.ModeMarkdownV2,
	); err != nil {
		ctx.Logger.Warn("failed to edit message", zap.Error(err))
	}

	return c.Respond(&tele.CallbackResponse{Text: toggleResponse(user)})
}

func toggleResponse(user *models.User) string {
	if user.CheckEnabled {
		return "✅ Уведомления включены"
	}
	return "🔕 Уведомления отключены"
}

func scheduleText(ctx *Context) string {
	if !ctx.Config.NotifyEnabled {
		return "выключено на сервере"
	}
	return ctx.Config.NotifySchedule
}
