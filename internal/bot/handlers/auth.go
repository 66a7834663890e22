package handlers

import (
	"errors"
	"fmt"
	"strings"

	"personality-bot/internal/api/personality"
	"personality-bot/internal/bot/utils"
	"personality-bot/internal/storage/redis"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type authDraft struct {
	Username string `json:"username"`
}

// /login
func HandleLogin(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return startAuth(ctx, c, StateAwaitingLoginUser, "🔑 *Вход в кабинет HR*")
	}
}

// /register
func HandleRegister(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return startAuth(ctx, c, StateAwaitingRegUser, "📝 *Регистрация HR*")
	}
}

func startAuth(ctx *Context, c tele.Context, state, title string) error {
	userID := c.Sender().ID

	dbCtx, cancel := dbContext()
	defer cancel()

	session, err := ctx.Workspace.Session(dbCtx, userID)
	if err != nil {
		ctx.Logger.Error("failed to load session", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}
	if session != nil {
		return c.Send(
			fmt.Sprintf("ℹ️ Вы уже вошли как *%s*\\.\n\nЧтобы сменить аккаунт, сначала выйдите: /logout",
				utils.EscapeMarkdown(session.Username)),
			utils.HRMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}

	if err := setUserState(ctx, userID, state); err != nil {
		ctx.Logger.Error("failed to set user state", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	return c.Send(
		title+"\n\nВведите имя пользователя:",
		utils.CancelKeyboard(),
		tele.ModeMarkdownV2,
	)
}

func handleAuthUsername(ctx *Context, c tele.Context, next string) error {
	userID := c.Sender().ID
	username := strings.TrimSpace(c.Text())

	if username == "" {
		return c.Reply("⚠️ Имя пользователя не может быть пустым")
	}

	dbCtx, cancel := dbContext()
	defer cancel()

	if err := ctx.Cache.SetTempData(dbCtx, userID, tempAuth, authDraft{Username: username}); err != nil {
		ctx.Logger.Error("failed to save auth draft", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	if err := setUserState(ctx, userID, next); err != nil {
		ctx.Logger.Error("failed to set user state", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	return c.Send("🔒 Введите пароль:\n\nСообщение с паролем будет удалено из чата.", utils.CancelKeyboard())
}

func handleAuthPassword(ctx *Context, c tele.Context, register bool) error {
	userID := c.Sender().ID
	password := c.Text()

	if err := c.Delete(); err != nil {
		ctx.Logger.Warn("failed to delete password message", zap.Int64("user_id", userID), zap.Error(err))
	}

	dbCtx, cancel := dbContext()
	defer cancel()

	var draft authDraft
	err := ctx.Cache.GetTempData(dbCtx, userID, tempAuth, &draft)
	if errors.Is(err, redis.ErrNotFound) {
		_ = clearUserState(ctx, userID)
		return c.Send("⌛️ Время ввода истекло. Начните заново: /login", utils.MainMenuKeyboard())
	}
	if err != nil {
		ctx.Logger.Error("failed to load auth draft", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	if password == "" {
		return c.Send("⚠️ Пароль не может быть пустым. Введите пароль:", utils.CancelKeyboard())
	}

	if err := clearUserState(ctx, userID); err != nil {
		ctx.Logger.Warn("failed to clear state", zap.Error(err))
	}
	clearTempData(ctx, userID)

	if register {
		return completeRegister(ctx, c, draft.Username, password)
	}
	return completeLogin(ctx, c, draft.Username, password)
}

func completeLogin(ctx *Context, c tele.Context, username, password string) error {
	userID := c.Sender().ID

	loading := showLoading(c, "⏳ Вхожу...")

	apiCtx, cancel := ctx.apiContext()
	defer cancel()

	res := ctx.Workspace.Login(apiCtx, userID, username, password)
	hideLoading(c, loading)

	if res.Failed() {
		if errors.Is(res.Err, personality.ErrUnauthorized) {
			return c.Send("❌ Неверное имя пользователя или пароль. Попробуйте ещё раз: /login", utils.MainMenuKeyboard())
		}
		return c.Send(errorText(res.Err), utils.MainMenuKeyboard())
	}

	dropBoard(ctx, userID)

	return c.Send(
		fmt.Sprintf("✅ Вы вошли как *%s*\\.\n\nОткройте кабинет кнопками ниже\\.", utils.EscapeMarkdown(res.Value.Username)),
		utils.HRMenuKeyboard(),
		tele.ModeMarkdownV2,
	)
}

func completeRegister(ctx *Context, c tele.Context, username, password string) error {
	userID := c.Sender().ID

	loading := showLoading(c, "⏳ Регистрирую...")

	apiCtx, cancel := ctx.apiContext()
	defer cancel()

	res := ctx.Workspace.Register(apiCtx, userID, username, password)
	hideLoading(c, loading)

	switch {
	case res.Failed():
		return c.Send(errorText(res.Err), utils.MainMenuKeyboard())
	case res.Empty():
		return c.Send("✅ Аккаунт создан. Теперь войдите: /login", utils.GuestKeyboard())
	}

	dropBoard(ctx, userID)

	return c.Send(
		fmt.Sprintf("✅ Аккаунт *%s* создан, вы вошли\\.", utils.EscapeMarkdown(res.Value.Username)),
		utils.HRMenuKeyboard(),
		tele.ModeMarkdownV2,
	)
}

// /logout
func HandleLogout(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		dbCtx, cancel := dbContext()
		defer cancel()

		res := ctx.Workspace.Logout(dbCtx, userID)
		if res.Failed() {
			return c.Send(errorText(res.Err))
		}

		dropBoard(ctx, userID)

		if res.Empty() {
			return c.Send("ℹ️ Вы не были авторизованы", utils.MainMenuKeyboard())
		}
		return c.Send("👋 Вы вышли из кабинета HR", utils.MainMenuKeyboard())
	}
}

// /whoami
func HandleWhoami(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		apiCtx, cancel := ctx.apiContext()
		defer cancel()

		res := ctx.Workspace.Whoami(apiCtx, c.Sender().ID)
		if res.Failed() {
			return c.Send(errorText(res.Err))
		}

		return c.Send(utils.FormatIdentity(res.Value), tele.ModeMarkdownV2)
	}
}
