package handlers

import (
	"strings"

	"personality-bot/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var menuButtons = map[string]bool{
	utils.BtnUpload:     true,
	utils.BtnResults:    true,
	utils.BtnHR:         true,
	utils.BtnSettings:   true,
	utils.BtnHelp:       true,
	utils.BtnLogin:      true,
	utils.BtnRegister:   true,
	utils.BtnCandidates: true,
	utils.BtnVacancies:  true,
	utils.BtnFilters:    true,
	utils.BtnAddVacancy: true,
	utils.BtnReload:     true,
	utils.BtnExport:     true,
	utils.BtnLogout:     true,
	utils.BtnBack:       true,
}

// HandleText processes all text messages
func HandleText(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())
		userID := c.Sender().ID

		// Cancel works from any step
		if text == utils.BtnCancel {
			return cancelConversation(ctx, c)
		}

		state, err := getUserState(ctx, userID)
		if err != nil {
			ctx.Logger.Warn("failed to get user state", zap.Error(err))
			state = StateIdle
		}

		if state != StateIdle {
			if !menuButtons[text] {
				return handleStateInput(ctx, c, state)
			}
			// a menu button abandons the current step
			_ = clearUserState(ctx, userID)
			clearTempData(ctx, userID)
		}

		switch text {
		// Main menu
		case utils.BtnUpload:
			return HandleUpload(ctx)(c)
		case utils.BtnResults:
			return HandleResults(ctx)(c)
		case utils.BtnHR:
			return HandleBoard(ctx)(c)
		case utils.BtnSettings:
			return HandleSettings(ctx)(c)
		case utils.BtnHelp:
			return HandleHelp(ctx)(c)

		// Guest menu
		case utils.BtnLogin:
			return HandleLogin(ctx)(c)
		case utils.BtnRegister:
			return HandleRegister(ctx)(c)

		// HR menu
		case utils.BtnCandidates:
			return HandleCandidates(ctx)(c)
		case utils.BtnVacancies:
			return HandleVacancies(ctx)(c)
		case utils.BtnFilters:
			return HandleFilters(ctx)(c)
		case utils.BtnAddVacancy:
			return HandleAddVacancy(ctx)(c)
		case utils.BtnReload:
			return HandleReload(ctx)(c)
		case utils.BtnExport:
			return HandleExport(ctx)(c)
		case utils.BtnLogout:
			return HandleLogout(ctx)(c)
		case utils.BtnBack:
			return c.Send("Главное меню", utils.MainMenuKeyboard())

		default:
			return c.Reply("Используйте кнопки меню или команды")
		}
	}
}

func handleStateInput(ctx *Context, c tele.Context, state string) error {
	switch state {
	case StateAwaitingLoginUser:
		return handleAuthUsername(ctx, c, StateAwaitingLoginPass)
	case StateAwaitingLoginPass:
		return handleAuthPassword(ctx, c, false)
	case StateAwaitingRegUser:
		return handleAuthUsername(ctx, c, StateAwaitingRegPass)
	case StateAwaitingRegPass:
		return handleAuthPassword(ctx, c, true)
	case StateAwaitingResume:
		return c.Reply("📎 Отправьте резюме файлом в формате PDF", utils.CancelKeyboard())
	case StateAwaitingVideo:
		return c.Reply("🎬 Отправьте видео в формате MP4", utils.CancelKeyboard())
	case StateAwaitingLetter:
		return handleLetter(ctx, c)
	case StateAwaitingVacTitle:
		return handleVacancyTitle(ctx, c)
	case StateAwaitingVacDesc:
		return handleVacancyDescription(ctx, c)
	case StateAwaitingVacSalary:
		return handleVacancySalary(ctx, c)
	case StateAwaitingThreshold:
		return handleThresholdInput(ctx, c)
	default:
		ctx.Logger.Warn("unknown user state", zap.String("state", state))
		_ = clearUserState(ctx, c.Sender().ID)
		return c.Reply("Используйте кнопки меню или команды", utils.MainMenuKeyboard())
	}
}
