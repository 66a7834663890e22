package handlers

import (
	"personality-bot/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /help
func HandleHelp(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(
			utils.FormatHelpMessage(),
			utils.MainMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

// /status
func HandleStatus(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		apiCtx, cancel := ctx.apiContext()
		defer cancel()

		res := ctx.Workspace.Health(apiCtx)

		dbCtx, dbCancel := dbContext()
		defer dbCancel()

		dbErr := ctx.Store.Ping(dbCtx)
		cacheErr := ctx.Cache.Ping(dbCtx)
		if dbErr != nil || cacheErr != nil {
			ctx.Logger.Warn("storage health check failed",
				zap.NamedError("postgres", dbErr),
				zap.NamedError("redis", cacheErr),
			)
		}

		return c.Send(
			utils.FormatStatus(res.Value, res.OK())+"\n\n"+utils.FormatStorageStatus(dbErr == nil, cacheErr == nil),
			tele.ModeMarkdownV2,
		)
	}
}
