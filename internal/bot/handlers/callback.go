package handlers

import (
	"personality-bot/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// HandleCallback processes all callback queries from inline buttons
func HandleCallback(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			ctx.Logger.Warn("callback is nil")
			return nil
		}

		action, args := utils.ParseCallback(cb.Data)

		ctx.Logger.Debug("received callback",
			zap.Int64("user_id", c.Sender().ID),
			zap.String("action", action),
			zap.Strings("args", args),
		)

		switch action {
		case utils.CbFilterModel:
			return handleFilterModel(ctx, c, args)
		case utils.CbFilterParam:
			return handleFilterParameter(ctx, c, args)
		case utils.CbFilterRemove:
			return handleFilterRemove(ctx, c, args)
		case utils.CbFilterApply:
			return handleFilterApply(ctx, c)
		case utils.CbFilterClose:
			return handleFilterClose(ctx, c)
		case utils.CbCandidates:
			return handleCandidatesMore(ctx, c, args)
		case utils.CbSettings:
			return handleSettingsToggle(ctx, c)
		default:
			ctx.Logger.Warn("unknown callback action",
				zap.String("action", action),
				zap.String("data", cb.Data),
			)
			return c.Respond(&tele.CallbackResponse{Text: "❓ Неизвестное действие"})
		}
	}
}
