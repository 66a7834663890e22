package handlers

import (
	"personality-bot/internal/bot/utils"
	"personality-bot/internal/models"
	"personality-bot/internal/workspace"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /results shows the scores of the user's last submitted card.
func HandleResults(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		dbCtx, cancel := dbContext()
		defer cancel()

		submission, err := ctx.Store.LastSubmission(dbCtx, userID)
		if err != nil {
			ctx.Logger.Error("failed to get last submission", zap.Int64("user_id", userID), zap.Error(err))
			return c.Send("😔 Ошибка. Попробуйте позже.")
		}
		if submission == nil {
			return c.Send("ℹ️ Вы ещё не отправляли анкету. Отправить: /upload", utils.MainMenuKeyboard())
		}

		loading := showLoading(c, "🔍 Ищу анкету...")

		apiCtx, cancelAPI := ctx.apiContext()
		defer cancelAPI()

		res := ctx.Workspace.GetCandidate(apiCtx, userID, submission.CardID)
		hideLoading(c, loading)

		switch {
		case res.Failed():
			return c.Send(errorText(res.Err))
		case res.Empty():
			return c.Send("🤷 Анкета больше не найдена на сервере. Отправьте новую: /upload", utils.MainMenuKeyboard())
		}

		if err := c.Send(
			utils.FormatResults(res.Value, submission.CreatedAt),
			utils.CandidateLinksKeyboard(*res.Value),
			tele.ModeMarkdownV2,
		); err != nil {
			return err
		}

		return sendAdvice(ctx, c, res.Value)
	}
}

// sendAdvice adds the backend's recommendations when the card has enough
// scores. Failures are logged by the workspace and not shown.
func sendAdvice(ctx *Context, c tele.Context, card *models.Candidate) error {
	if len(card.PersonalityModels) < workspace.MinAdviceScores {
		return nil
	}

	loading := showLoading(c, "💡 Готовлю рекомендации...")

	apiCtx, cancel := ctx.apiContext()
	defer cancel()

	res := ctx.Workspace.Advice(apiCtx, c.Sender().ID, card)
	hideLoading(c, loading)

	if !res.OK() {
		return nil
	}

	return c.Send(utils.FormatAdvice(res.Value), tele.ModeMarkdownV2)
}
