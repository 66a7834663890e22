package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"personality-bot/internal/api/personality"
	"personality-bot/internal/board"
	"personality-bot/internal/bot/utils"
	"personality-bot/internal/documents"
	"personality-bot/internal/models"
	"personality-bot/internal/storage/redis"
	"personality-bot/internal/workspace"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	cardsPerPage         = 10
	vacanciesPerMessage  = 20
	spreadsheetMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFileName       = "candidates.xlsx"
	skipDescriptionInput = "-"
)

type vacancyDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// /board and the HR cabinet button
func HandleBoard(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		dbCtx, cancel := dbContext()
		defer cancel()

		if !ctx.Workspace.IsAuthenticated(dbCtx, userID) {
			return c.Send(
				"*👔 Кабинет HR*\n\nВойдите или зарегистрируйтесь, чтобы работать с кандидатами\\.",
				utils.GuestKeyboard(),
				tele.ModeMarkdownV2,
			)
		}

		state, ok := loadBoard(ctx, c, false)
		if !ok {
			return nil
		}

		return c.Send(
			utils.FormatBoardSummary(state),
			utils.HRMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

// HandleReload re-fetches both lists; this is the only way to undo applied filters.
func HandleReload(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		state, ok := loadBoard(ctx, c, true)
		if !ok {
			return nil
		}

		return c.Send(
			"🔄 Данные обновлены\n\n"+utils.FormatBoardSummary(state),
			utils.HRMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

func HandleCandidates(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		state, ok := loadBoard(ctx, c, false)
		if !ok {
			return nil
		}

		if len(state.Candidates) == 0 {
			return c.Send(
				"😔 Кандидатов нет\\.\n\nЕсли применены фильтры, нажмите «🔄 Обновить», чтобы вернуть полный список\\.",
				utils.HRMenuKeyboard(),
				tele.ModeMarkdownV2,
			)
		}

		if err := c.Send(
			utils.FormatCandidatesHeader(len(state.Candidates)),
			utils.HRMenuKeyboard(),
			tele.ModeMarkdownV2,
		); err != nil {
			return err
		}

		return sendCandidatePage(ctx, c, state, 0)
	}
}

// handleCandidatesMore sends the next page of cards from the cached board.
func handleCandidatesMore(ctx *Context, c tele.Context, args []string) error {
	offset, err := callbackIndex(args)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Неверный формат"})
	}

	state, ok := dialogBoard(ctx, c)
	if !ok {
		return nil
	}

	if err := c.Respond(); err != nil {
		ctx.Logger.Warn("failed to respond", zap.Error(err))
	}
	// the old button would send the same page again
	if err := c.Delete(); err != nil {
		ctx.Logger.Debug("failed to delete more button", zap.Error(err))
	}

	return sendCandidatePage(ctx, c, state, offset)
}

func sendCandidatePage(ctx *Context, c tele.Context, state board.State, offset int) error {
	total := len(state.Candidates)
	start, end, next := candidatePage(total, offset)

	for i, candidate := range state.Candidates[start:end] {
		err := c.Send(
			utils.FormatCandidate(start+i+1, candidate),
			utils.CandidateLinksKeyboard(candidate),
			tele.ModeMarkdownV2,
			tele.NoPreview,
		)
		if err != nil {
			ctx.Logger.Error("failed to send candidate",
				zap.String("card_id", candidate.ID),
				zap.Error(err),
			)
		}
	}

	if next < 0 {
		return nil
	}

	return c.Send(
		utils.FormatCandidatesPage(start, end, total),
		utils.MoreCandidatesKeyboard(next),
		tele.ModeMarkdownV2,
	)
}

// candidatePage returns the bounds of the page that starts at offset and the
// offset of the following page, or -1 when nothing is left.
func candidatePage(total, offset int) (start, end, next int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}

	end = offset + cardsPerPage
	if end >= total {
		return offset, total, -1
	}
	return offset, end, end
}

func HandleVacancies(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		state, ok := loadBoard(ctx, c, false)
		if !ok {
			return nil
		}

		if len(state.Vacancies) == 0 {
			return c.Send("😔 Вакансий пока нет. Добавьте первую: «➕ Вакансия»", utils.HRMenuKeyboard())
		}

		if err := c.Send(
			utils.FormatVacanciesHeader(len(state.Vacancies)),
			utils.HRMenuKeyboard(),
			tele.ModeMarkdownV2,
		); err != nil {
			return err
		}

		for start := 0; start < len(state.Vacancies); start += vacanciesPerMessage {
			end := start + vacanciesPerMessage
			if end > len(state.Vacancies) {
				end = len(state.Vacancies)
			}

			if err := c.Send(
				utils.FormatVacancyItems(state.Vacancies[start:end], start),
				tele.ModeMarkdownV2,
			); err != nil {
				ctx.Logger.Error("failed to send vacancies", zap.Int("from", start), zap.Error(err))
				return c.Send("😔 Ошибка при отправке списка вакансий")
			}
		}

		return nil
	}
}

// /export sends the current board as a spreadsheet.
func HandleExport(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		state, ok := loadBoard(ctx, c, false)
		if !ok {
			return nil
		}

		data, err := documents.ExportBoard(state)
		if err != nil {
			ctx.Logger.Error("failed to export board", zap.Int64("user_id", c.Sender().ID), zap.Error(err))
			return c.Send("😔 Не удалось сформировать файл")
		}

		doc := &tele.Document{
			File:     tele.FromReader(bytes.NewReader(data)),
			FileName: exportFileName,
			MIME:     spreadsheetMIME,
			Caption:  fmt.Sprintf("📊 Кандидатов: %d, вакансий: %d", len(state.Candidates), len(state.Vacancies)),
		}

		return c.Send(doc, utils.HRMenuKeyboard())
	}
}

func HandleAddVacancy(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		dbCtx, cancel := dbContext()
		defer cancel()

		if !ctx.Workspace.IsAuthenticated(dbCtx, userID) {
			return replyError(c, workspace.ErrNotAuthenticated)
		}

		if err := setUserState(ctx, userID, StateAwaitingVacTitle); err != nil {
			ctx.Logger.Error("failed to set user state", zap.Error(err))
			return c.Send("😔 Ошибка. Попробуйте позже.")
		}

		return c.Send(
			"➕ *Новая вакансия*\n\nВведите название:",
			utils.CancelKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

func handleVacancyTitle(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID
	title := strings.TrimSpace(c.Text())

	if title == "" {
		return c.Reply("⚠️ Название не может быть пустым")
	}

	dbCtx, cancel := dbContext()
	defer cancel()

	if err := ctx.Cache.SetTempData(dbCtx, userID, tempVacancy, vacancyDraft{Title: title}); err != nil {
		ctx.Logger.Error("failed to save vacancy draft", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	if err := setUserState(ctx, userID, StateAwaitingVacDesc); err != nil {
		ctx.Logger.Error("failed to set user state", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	return c.Send("📝 Введите описание вакансии (или «-», чтобы пропустить):", utils.CancelKeyboard())
}

func handleVacancyDescription(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID
	description := strings.TrimSpace(c.Text())
	if description == skipDescriptionInput {
		description = ""
	}

	dbCtx, cancel := dbContext()
	defer cancel()

	draft, ok, err := loadVacancyDraft(ctx, c)
	if !ok {
		return err
	}

	draft.Description = description
	if err := ctx.Cache.SetTempData(dbCtx, userID, tempVacancy, draft); err != nil {
		ctx.Logger.Error("failed to save vacancy draft", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	if err := setUserState(ctx, userID, StateAwaitingVacSalary); err != nil {
		ctx.Logger.Error("failed to set user state", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	return c.Send("💰 Введите зарплату числом, например 150000 (0, если не указана):", utils.CancelKeyboard())
}

func handleVacancySalary(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID

	salary, err := utils.ParseSalary(c.Text())
	if err != nil {
		return c.Reply("⚠️ Введите неотрицательное целое число, например 150000")
	}

	draft, ok, err := loadVacancyDraft(ctx, c)
	if !ok {
		return err
	}

	if err := clearUserState(ctx, userID); err != nil {
		ctx.Logger.Warn("failed to clear state", zap.Error(err))
	}
	clearTempData(ctx, userID)

	apiCtx, cancel := ctx.apiContext()
	defer cancel()

	res := ctx.Workspace.CreateVacancy(apiCtx, userID, models.NewVacancy{
		Title:       draft.Title,
		Description: draft.Description,
		Salary:      salary,
	})
	if res.Failed() {
		return replyError(c, res.Err)
	}

	return c.Send(
		"✅ *Вакансия создана*\n\n"+utils.FormatVacancy(*res.Value)+
			"\n_Она появится в списке после «🔄 Обновить»\\._",
		utils.HRMenuKeyboard(),
		tele.ModeMarkdownV2,
	)
}

// loadVacancyDraft reports ok=false when the user has already been answered.
func loadVacancyDraft(ctx *Context, c tele.Context) (vacancyDraft, bool, error) {
	userID := c.Sender().ID

	dbCtx, cancel := dbContext()
	defer cancel()

	var draft vacancyDraft
	err := ctx.Cache.GetTempData(dbCtx, userID, tempVacancy, &draft)
	if errors.Is(err, redis.ErrNotFound) {
		_ = clearUserState(ctx, userID)
		return draft, false, c.Send("⌛️ Время ввода истекло. Начните заново: «➕ Вакансия»", utils.HRMenuKeyboard())
	}
	if err != nil {
		ctx.Logger.Error("failed to load vacancy draft", zap.Error(err))
		return draft, false, c.Send("😔 Ошибка. Попробуйте позже.")
	}

	return draft, true, nil
}

// loadBoard returns the user's board, fetching it when it is missing or when
// force is set. On failure the user has already been answered.
func loadBoard(ctx *Context, c tele.Context, force bool) (board.State, bool) {
	userID := c.Sender().ID

	dbCtx, cancel := dbContext()
	defer cancel()

	if !force {
		state, err := ctx.Cache.GetBoard(dbCtx, userID)
		if err != nil {
			ctx.Logger.Warn("failed to get cached board", zap.Int64("user_id", userID), zap.Error(err))
		} else if state.Loaded {
			return state, true
		}
	}

	loading := showLoading(c, "🔍 Загружаю кандидатов и вакансии...")

	apiCtx, cancelAPI := ctx.apiContext()
	defer cancelAPI()

	res := ctx.Workspace.LoadBoard(apiCtx, userID)
	hideLoading(c, loading)

	if res.Failed() {
		_ = replyError(c, res.Err)
		return board.State{}, false
	}

	saveBoard(ctx, userID, res.Value)
	return res.Value, true
}

func saveBoard(ctx *Context, userID int64, state board.State) {
	dbCtx, cancel := dbContext()
	defer cancel()

	if err := ctx.Cache.SetBoard(dbCtx, userID, state, ctx.Config.BoardTTL); err != nil {
		ctx.Logger.Error("failed to save board", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func dropBoard(ctx *Context, userID int64) {
	dbCtx, cancel := dbContext()
	defer cancel()

	if err := ctx.Cache.DeleteBoard(dbCtx, userID); err != nil {
		ctx.Logger.Warn("failed to drop board", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// replyError answers a failed operation; auth failures also bring up the
// login keyboard.
func replyError(c tele.Context, err error) error {
	if errors.Is(err, workspace.ErrNotAuthenticated) || errors.Is(err, personality.ErrUnauthorized) {
		return c.Send(errorText(err), utils.GuestKeyboard())
	}
	return c.Send(errorText(err))
}
