package handlers

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"personality-bot/internal/bot/utils"
	"personality-bot/internal/documents"
	"personality-bot/internal/models"
	"personality-bot/internal/storage/redis"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// uploadDraft holds Telegram file IDs between the steps; the files are
// downloaded only when the candidate submits.
type uploadDraft struct {
	ResumeFileID string `json:"resume_file_id"`
	ResumeName   string `json:"resume_name"`
	VideoFileID  string `json:"video_file_id"`
	VideoName    string `json:"video_name"`
}

// /upload
func HandleUpload(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		clearTempData(ctx, userID)

		if err := setUserState(ctx, userID, StateAwaitingResume); err != nil {
			ctx.Logger.Error("failed to set user state", zap.Error(err))
			return c.Send("😔 Ошибка. Попробуйте позже.")
		}

		return c.Send(
			"📤 *Анкета кандидата*\n\n"+
				"*Шаг 1/3\\.* Отправьте резюме файлом в формате PDF\\.",
			utils.CancelKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

// HandleDocument accepts the résumé, and the video when it is sent as a file.
func HandleDocument(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		doc := c.Message().Document
		if doc == nil {
			return nil
		}

		state, err := getUserState(ctx, c.Sender().ID)
		if err != nil {
			ctx.Logger.Warn("failed to get user state", zap.Error(err))
			state = StateIdle
		}

		switch state {
		case StateAwaitingResume:
			return handleResume(ctx, c, doc)
		case StateAwaitingVideo:
			return handleVideo(ctx, c, &doc.File, doc.FileName, doc.MIME)
		default:
			return c.Reply("ℹ️ Сейчас я не жду файлов. Чтобы отправить анкету: /upload")
		}
	}
}

func HandleVideo(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		video := c.Message().Video
		if video == nil {
			return nil
		}

		state, err := getUserState(ctx, c.Sender().ID)
		if err != nil {
			ctx.Logger.Warn("failed to get user state", zap.Error(err))
			state = StateIdle
		}

		if state != StateAwaitingVideo {
			return c.Reply("ℹ️ Сейчас я не жду видео. Чтобы отправить анкету: /upload")
		}

		return handleVideo(ctx, c, &video.File, video.FileName, video.MIME)
	}
}

func handleResume(ctx *Context, c tele.Context, doc *tele.Document) error {
	userID := c.Sender().ID

	if !isPDF(doc.FileName, doc.MIME) {
		return c.Reply("⚠️ Резюме должно быть в формате PDF")
	}
	if err := documents.CheckSize(int64(doc.FileSize), ctx.Config.MaxUploadSize); err != nil {
		return c.Reply(fmt.Sprintf("⚠️ Файл слишком большой. Максимум %d МБ", ctx.Config.MaxUploadSize>>20))
	}

	data, err := downloadFile(c, &doc.File, ctx.Config.MaxUploadSize)
	if err != nil {
		ctx.Logger.Error("failed to download resume", zap.Int64("user_id", userID), zap.Error(err))
		return c.Reply("😔 Не удалось получить файл. Попробуйте ещё раз.")
	}

	info, err := documents.InspectResume(data)
	if err != nil {
		ctx.Logger.Info("resume rejected", zap.Int64("user_id", userID), zap.Error(err))
		return c.Reply("⚠️ Не удалось прочитать PDF. Проверьте файл и отправьте снова.")
	}

	dbCtx, cancel := dbContext()
	defer cancel()

	draft := uploadDraft{
		ResumeFileID: doc.FileID,
		ResumeName:   doc.FileName,
	}
	if err := ctx.Cache.SetTempData(dbCtx, userID, tempUpload, draft); err != nil {
		ctx.Logger.Error("failed to save upload draft", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	if err := setUserState(ctx, userID, StateAwaitingVideo); err != nil {
		ctx.Logger.Error("failed to set user state", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	note := ""
	if !info.HasText {
		note = "\n\n_В резюме не найден текст\\. Если это скан, оценка может быть менее точной\\._"
	}

	return c.Send(
		fmt.Sprintf("✅ Резюме получено \\(страниц: %d\\)%s\n\n*Шаг 2/3\\.* Отправьте видеовизитку в формате MP4\\.", info.Pages, note),
		utils.CancelKeyboard(),
		tele.ModeMarkdownV2,
	)
}

func handleVideo(ctx *Context, c tele.Context, file *tele.File, name, mime string) error {
	userID := c.Sender().ID

	if !isMP4(name, mime) {
		return c.Reply("⚠️ Видео должно быть в формате MP4")
	}
	if err := documents.CheckSize(int64(file.FileSize), ctx.Config.MaxUploadSize); err != nil {
		return c.Reply(fmt.Sprintf("⚠️ Видео слишком большое. Максимум %d МБ", ctx.Config.MaxUploadSize>>20))
	}

	dbCtx, cancel := dbContext()
	defer cancel()

	var draft uploadDraft
	err := ctx.Cache.GetTempData(dbCtx, userID, tempUpload, &draft)
	if errors.Is(err, redis.ErrNotFound) {
		_ = clearUserState(ctx, userID)
		return c.Send("⌛️ Время ввода истекло. Начните заново: /upload", utils.MainMenuKeyboard())
	}
	if err != nil {
		ctx.Logger.Error("failed to load upload draft", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	draft.VideoFileID = file.FileID
	draft.VideoName = name
	if err := ctx.Cache.SetTempData(dbCtx, userID, tempUpload, draft); err != nil {
		ctx.Logger.Error("failed to save upload draft", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	if err := setUserState(ctx, userID, StateAwaitingLetter); err != nil {
		ctx.Logger.Error("failed to set user state", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	return c.Send(
		"✅ Видео получено\n\n*Шаг 3/3\\.* Напишите мотивационное письмо одним сообщением\\.",
		utils.CancelKeyboard(),
		tele.ModeMarkdownV2,
	)
}

func handleLetter(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID
	letter := strings.TrimSpace(c.Text())

	if letter == "" {
		return c.Reply("⚠️ Письмо не может быть пустым")
	}

	dbCtx, cancel := dbContext()
	defer cancel()

	var draft uploadDraft
	err := ctx.Cache.GetTempData(dbCtx, userID, tempUpload, &draft)
	if errors.Is(err, redis.ErrNotFound) || (err == nil && (draft.ResumeFileID == "" || draft.VideoFileID == "")) {
		_ = clearUserState(ctx, userID)
		return c.Send("⌛️ Время ввода истекло. Начните заново: /upload", utils.MainMenuKeyboard())
	}
	if err != nil {
		ctx.Logger.Error("failed to load upload draft", zap.Error(err))
		return c.Send("😔 Ошибка. Попробуйте позже.")
	}

	if err := clearUserState(ctx, userID); err != nil {
		ctx.Logger.Warn("failed to clear state", zap.Error(err))
	}
	clearTempData(ctx, userID)

	return submitUpload(ctx, c, draft, letter)
}

func submitUpload(ctx *Context, c tele.Context, draft uploadDraft, letter string) error {
	userID := c.Sender().ID

	loading := showLoading(c, "⏳ Загружаю файлы и оцениваю анкету. Это может занять пару минут...")
	defer hideLoading(c, loading)

	resume, err := downloadFile(c, &tele.File{FileID: draft.ResumeFileID}, ctx.Config.MaxUploadSize)
	if err != nil {
		ctx.Logger.Error("failed to download resume", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("😔 Не удалось получить резюме. Начните заново: /upload", utils.MainMenuKeyboard())
	}

	video, err := downloadFile(c, &tele.File{FileID: draft.VideoFileID}, ctx.Config.MaxUploadSize)
	if err != nil {
		ctx.Logger.Error("failed to download video", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("😔 Не удалось получить видео. Начните заново: /upload", utils.MainMenuKeyboard())
	}

	if err := documents.CheckVideo(video); err != nil {
		ctx.Logger.Info("video rejected", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("⚠️ Файл видео не похож на MP4. Начните заново: /upload", utils.MainMenuKeyboard())
	}

	apiCtx, cancel := ctx.apiContext()
	defer cancel()

	res := ctx.Workspace.UploadCandidate(apiCtx, userID, models.CandidateUpload{
		ResumeName:       draft.ResumeName,
		Resume:           resume,
		VideoName:        draft.VideoName,
		Video:            video,
		MotivationLetter: letter,
	})
	if res.Failed() {
		return c.Send(errorText(res.Err), utils.MainMenuKeyboard())
	}

	card := res.Value
	rememberSubmission(ctx, c, card.ID)

	ctx.Logger.Info("candidate uploaded",
		zap.Int64("user_id", userID),
		zap.String("card_id", card.ID),
		zap.Int("scores", len(card.PersonalityModels)),
	)

	return c.Send(
		utils.FormatUploadResult(card),
		utils.MainMenuKeyboard(),
		tele.ModeMarkdownV2,
	)
}

func rememberSubmission(ctx *Context, c tele.Context, cardID string) {
	dbCtx, cancel := dbContext()
	defer cancel()

	if _, err := ensureUser(dbCtx, ctx, c.Sender()); err != nil {
		return
	}
	if err := ctx.Store.SaveSubmission(dbCtx, c.Sender().ID, cardID); err != nil {
		ctx.Logger.Warn("failed to save submission",
			zap.Int64("user_id", c.Sender().ID),
			zap.String("card_id", cardID),
			zap.Error(err),
		)
	}
}

// downloadFile reads a Telegram file into memory; the reader is closed
// before returning.
func downloadFile(c tele.Context, file *tele.File, limit int64) ([]byte, error) {
	rc, err := c.Bot().File(file)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", file.FileID, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.FileID, err)
	}
	if err := documents.CheckSize(int64(len(data)), limit); err != nil {
		return nil, err
	}

	return data, nil
}

func isPDF(name, mime string) bool {
	return mime == "application/pdf" || strings.EqualFold(path.Ext(name), ".pdf")
}

func isMP4(name, mime string) bool {
	return mime == "video/mp4" || strings.EqualFold(path.Ext(name), ".mp4")
}
