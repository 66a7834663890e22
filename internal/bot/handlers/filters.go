package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"personality-bot/internal/board"
	"personality-bot/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /filters opens the filter dialog over the current working list.
func HandleFilters(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		state, ok := loadBoard(ctx, c, false)
		if !ok {
			return nil
		}

		if len(state.Candidates) == 0 {
			return c.Send("😔 В списке нет кандидатов для фильтрации. Нажмите «🔄 Обновить».", utils.HRMenuKeyboard())
		}

		return sendFilterDialog(c, state)
	}
}

func sendFilterDialog(c tele.Context, state board.State) error {
	return c.Send(
		utils.FormatFilterDialog(state),
		utils.FilterDialogKeyboard(state),
		tele.ModeMarkdownV2,
	)
}

func editFilterDialog(ctx *Context, c tele.Context, state board.State) error {
	if err := c.Edit(
		utils.FormatFilterDialog(state),
		utils.FilterDialogKeyboard(state),
		tele.ModeMarkdownV2,
	); err != nil {
		ctx.Logger.Warn("failed to edit message", zap.Error(err))
		return sendFilterDialog(c, state)
	}
	return nil
}

// dialogBoard returns the cached board for a dialog callback. The dialog is
// only meaningful over a loaded board, so nothing is fetched here.
func dialogBoard(ctx *Context, c tele.Context) (board.State, bool) {
	dbCtx, cancel := dbContext()
	defer cancel()

	state, err := ctx.Cache.GetBoard(dbCtx, c.Sender().ID)
	if err != nil {
		ctx.Logger.Error("failed to get board", zap.Int64("user_id", c.Sender().ID), zap.Error(err))
		_ = c.Respond(&tele.CallbackResponse{Text: "😔 Ошибка"})
		return state, false
	}
	if !state.Loaded {
		_ = c.Respond(&tele.CallbackResponse{Text: "⌛️ Данные устарели, откройте /board снова", ShowAlert: true})
		return state, false
	}

	return state, true
}

func handleFilterModel(ctx *Context, c tele.Context, args []string) error {
	if len(args) < 1 {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Неверный формат"})
	}

	state, ok := dialogBoard(ctx, c)
	if !ok {
		return nil
	}

	next, err := state.SelectModel(args[0])
	if err != nil {
		ctx.Logger.Warn("invalid model selected", zap.String("model", args[0]), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "❓ Неизвестная модель"})
	}

	saveBoard(ctx, c.Sender().ID, next)
	if err := clearUserState(ctx, c.Sender().ID); err != nil {
		ctx.Logger.Warn("failed to clear state", zap.Error(err))
	}

	if err := editFilterDialog(ctx, c, next); err != nil {
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: next.SelectedModel})
}

func handleFilterParameter(ctx *Context, c tele.Context, args []string) error {
	index, err := callbackIndex(args)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Неверный формат"})
	}

	state, ok := dialogBoard(ctx, c)
	if !ok {
		return nil
	}

	params := state.AvailableParameters()
	if index >= len(params) {
		return c.Respond(&tele.CallbackResponse{Text: "⌛️ Список параметров изменился"})
	}

	next, err := state.SelectParameter(params[index])
	if err != nil {
		ctx.Logger.Warn("invalid parameter selected", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "❓ Сначала выберите модель"})
	}

	saveBoard(ctx, c.Sender().ID, next)
	if err := setUserState(ctx, c.Sender().ID, StateAwaitingThreshold); err != nil {
		ctx.Logger.Error("failed to set user state", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "😔 Ошибка"})
	}

	if err := editFilterDialog(ctx, c, next); err != nil {
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: "Введите минимальную уверенность"})
}

func handleFilterRemove(ctx *Context, c tele.Context, args []string) error {
	index, err := callbackIndex(args)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Неверный формат"})
	}

	state, ok := dialogBoard(ctx, c)
	if !ok {
		return nil
	}

	next, err := state.RemoveFilter(index)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "⌛️ Фильтр уже удалён"})
	}

	saveBoard(ctx, c.Sender().ID, next)

	if err := editFilterDialog(ctx, c, next); err != nil {
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: "🗑 Удалено"})
}

// handleFilterApply narrows the working list. The previous list is gone until a reload.
func handleFilterApply(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID

	state, ok := dialogBoard(ctx, c)
	if !ok {
		return nil
	}

	if len(state.Pending) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "ℹ️ Добавьте хотя бы один фильтр"})
	}

	before := len(state.Candidates)
	next := state.Apply()
	saveBoard(ctx, userID, next)

	if err := clearUserState(ctx, userID); err != nil {
		ctx.Logger.Warn("failed to clear state", zap.Error(err))
	}

	ctx.Logger.Info("filters applied",
		zap.Int64("user_id", userID),
		zap.Int("filters", len(state.Pending)),
		zap.Int("before", before),
		zap.Int("after", len(next.Candidates)),
	)

	text := fmt.Sprintf("✅ Фильтры применены\n\nБыло кандидатов: %d\nОсталось: %d\n\nПолный список вернётся после «🔄 Обновить»",
		before, len(next.Candidates))
	if err := c.Edit(text); err != nil {
		ctx.Logger.Warn("failed to edit message", zap.Error(err))
		if err := c.Send(text); err != nil {
			return err
		}
	}
	if err := c.Respond(&tele.CallbackResponse{Text: "✅ Применено"}); err != nil {
		ctx.Logger.Warn("failed to respond", zap.Error(err))
	}

	return HandleCandidates(ctx)(c)
}

func handleFilterClose(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID

	state, ok := dialogBoard(ctx, c)
	if !ok {
		return nil
	}

	saveBoard(ctx, userID, state.CloseFilters())

	if err := clearUserState(ctx, userID); err != nil {
		ctx.Logger.Warn("failed to clear state", zap.Error(err))
	}

	if err := c.Edit("✖️ Фильтры закрыты"); err != nil {
		ctx.Logger.Warn("failed to edit message", zap.Error(err))
		return c.Send("✖️ Фильтры закрыты", utils.HRMenuKeyboard())
	}

	return c.Respond(&tele.CallbackResponse{Text: "✖️ Закрыто"})
}

func handleThresholdInput(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID

	threshold, err := utils.ParseThreshold(c.Text())
	if err != nil {
		return c.Reply("⚠️ Введите число, например 0.7")
	}

	dbCtx, cancel := dbContext()
	defer cancel()

	state, err := ctx.Cache.GetBoard(dbCtx, userID)
	if err != nil {
		ctx.Logger.Error("failed to get board", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	next, err := state.AddFilter(threshold)
	if err != nil {
		_ = clearUserState(ctx, userID)
		if errors.Is(err, board.ErrNoModelSelected) || errors.Is(err, board.ErrNoParameter) {
			return c.Send("⌛️ Выбор сброшен. Откройте /filters и выберите параметр снова.", utils.HRMenuKeyboard())
		}
		ctx.Logger.Error("failed to add filter", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	saveBoard(ctx, userID, next)

	if err := clearUserState(ctx, userID); err != nil {
		ctx.Logger.Warn("failed to clear state", zap.Error(err))
	}

	return sendFilterDialog(c, next)
}

func callbackIndex(args []string) (int, error) {
	if len(args) < 1 {
		return 0, errors.New("missing index")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index %q", args[0])
	}
	return index, nil
}
