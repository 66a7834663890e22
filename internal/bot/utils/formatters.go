package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"personality-bot/internal/board"
	"personality-bot/internal/candidates"
	"personality-bot/internal/models"
	"personality-bot/internal/storage/postgres"
	"personality-bot/internal/workspace"
)

func FormatWelcomeMessage(firstName string) string {
	name := firstName
	if name == "" {
		name = "друг"
	}

	return fmt.Sprintf(`👋 Привет, *%s*\!

Я бот платформы оценки личности кандидатов\.

*Кандидатам:*
• Отправьте резюме \(PDF\), видеовизитку \(MP4\) и мотивационное письмо
• Получите профиль по моделям OCEAN, MBTI и RIASEC

*HR\-специалистам:*
• Просматривайте кандидатов и вакансии
• Фильтруйте кандидатов по параметрам личности
• Выгружайте результаты в Excel

Начните с кнопок меню или /help`, EscapeMarkdown(name))
}

func FormatHelpMessage() string {
	return `*📖 Справка*

*Для кандидатов:*

/upload \- отправить анкету
/results \- результаты последней анкеты

*Для HR:*

/login \- войти
/register \- зарегистрироваться
/board \- кабинет HR
/filters \- фильтры кандидатов
/export \- выгрузка в Excel
/whoami \- текущий аккаунт
/logout \- выйти

*Прочее:*

/settings \- уведомления о новых вакансиях
/status \- состояние сервиса
/cancel \- отменить текущее действие

*Как работают фильтры:*

1️⃣ Выберите модель
2️⃣ Выберите параметр
3️⃣ Введите минимальную уверенность
4️⃣ Нажмите «Применить»

Фильтры сужают текущий список\. Чтобы вернуть всех кандидатов, нажмите «🔄 Обновить»\.`
}

// FormatScores renders personality scores grouped by model.
func FormatScores(pms []models.PersonalityModel) string {
	grouped := candidates.GroupByModel(pms)
	if grouped.Len() == 0 {
		return "_Оценки пока не готовы_\n"
	}

	var sb strings.Builder
	for _, model := range grouped.Models() {
		sb.WriteString(fmt.Sprintf("🧠 *%s*\n", EscapeMarkdown(model)))
		for _, score := range grouped.Scores(model) {
			sb.WriteString(fmt.Sprintf("   • %s: %s\n",
				EscapeMarkdown(score.Parameter),
				EscapeMarkdown(FormatConfidence(score.Confidence)),
			))
		}
	}

	return sb.String()
}

func FormatCandidate(index int, c models.Candidate) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*%d\\. Кандидат* `%s`\n", index, EscapeMarkdown(c.ID)))

	if !c.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("📅 *Создан:* %s\n", EscapeMarkdown(FormatDate(c.CreatedAt.Time))))
	}

	if c.MotivationLetter != "" {
		sb.WriteString(fmt.Sprintf("✉️ %s\n", EscapeMarkdown(TruncateString(c.MotivationLetter, 200))))
	}

	sb.WriteString("\n")
	sb.WriteString(FormatScores(c.PersonalityModels))

	return sb.String()
}

func FormatCandidatesHeader(total int) string {
	return fmt.Sprintf("👥 *Кандидатов:* %d", total)
}

// FormatCandidatesPage describes a page of cards by its zero-based bounds.
func FormatCandidatesPage(start, end, total int) string {
	return fmt.Sprintf("Показаны %d\\-%d из %d", start+1, end, total)
}

func FormatUploadResult(c *models.Candidate) string {
	var sb strings.Builder

	sb.WriteString("✅ *Анкета обработана\\!*\n\n")
	sb.WriteString(fmt.Sprintf("*ID анкеты:* `%s`\n\n", EscapeMarkdown(c.ID)))
	sb.WriteString(FormatScores(c.PersonalityModels))
	sb.WriteString("\nПосмотреть результаты снова: /results")

	return sb.String()
}

func FormatResults(c *models.Candidate, submittedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("📄 *Результаты вашей анкеты*\n\n")
	sb.WriteString(fmt.Sprintf("*Отправлена:* %s\n\n", EscapeMarkdown(FormatDate(submittedAt))))
	sb.WriteString(FormatScores(c.PersonalityModels))

	return sb.String()
}

func FormatAdvice(advice string) string {
	return "💡 *Рекомендации*\n\n" + EscapeMarkdown(TruncateString(advice, 1000))
}

func FormatVacancy(v models.Vacancy) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("*%s*\n\n", EscapeMarkdown(v.Title)))
	sb.WriteString(fmt.Sprintf("💰 *Зарплата:* %s\n", EscapeMarkdown(FormatSalary(v.Salary))))

	if v.Description != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", EscapeMarkdown(TruncateString(v.Description, 500))))
	}

	if len(v.PersonalityModels) > 0 {
		sb.WriteString("\n*Профиль вакансии:*\n")
		sb.WriteString(FormatScores(v.PersonalityModels))
	}

	return sb.String()
}

func FormatVacanciesHeader(total int) string {
	return fmt.Sprintf("💼 *Вакансий:* %d", total)
}

// FormatVacancyItems renders a numbered slice of the vacancy list starting at start+1.
func FormatVacancyItems(vacancies []models.Vacancy, start int) string {
	var sb strings.Builder

	for i, v := range vacancies {
		sb.WriteString(fmt.Sprintf("*%d\\. %s*\n", start+i+1, EscapeMarkdown(v.Title)))
		sb.WriteString(fmt.Sprintf("   💰 %s\n", EscapeMarkdown(FormatSalary(v.Salary))))
		if v.Description != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", EscapeMarkdown(TruncateString(v.Description, 80))))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatNewVacancyNotification lists at most limit vacancies and counts the rest.
func FormatNewVacancyNotification(vacancies []models.Vacancy, limit int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔔 *Новые вакансии:* %d\n\n", len(vacancies)))

	shown := vacancies
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, v := range shown {
		sb.WriteString(fmt.Sprintf("• *%s* \\- %s\n",
			EscapeMarkdown(v.Title),
			EscapeMarkdown(FormatSalary(v.Salary)),
		))
	}
	if rest := len(vacancies) - len(shown); rest > 0 {
		sb.WriteString(fmt.Sprintf("\n_\\.\\.\\.и ещё %d_\n", rest))
	}

	return sb.String()
}

func FormatBoardSummary(state board.State) string {
	var sb strings.Builder

	sb.WriteString("*👔 Кабинет HR*\n\n")
	sb.WriteString(fmt.Sprintf("👥 *Кандидатов:* %d\n", len(state.Candidates)))
	sb.WriteString(fmt.Sprintf("💼 *Вакансий:* %d\n", len(state.Vacancies)))

	if len(state.Candidates) == 0 && len(state.Vacancies) == 0 {
		sb.WriteString("\n_Пока пусто\\. Добавьте вакансию или дождитесь анкет кандидатов\\._")
	}

	return sb.String()
}

func FormatFilterDialog(state board.State) string {
	var sb strings.Builder

	sb.WriteString("*🔎 Фильтры кандидатов*\n\n")
	sb.WriteString(fmt.Sprintf("*В списке:* %d\n", len(state.Candidates)))

	switch {
	case state.SelectedModel == "":
		sb.WriteString("\n1️⃣ Выберите модель\n")
	case state.SelectedParameter == "":
		sb.WriteString(fmt.Sprintf("\n*Модель:* %s\n", EscapeMarkdown(state.SelectedModel)))
		if len(state.AvailableParameters()) == 0 {
			sb.WriteString("_У кандидатов в списке нет параметров этой модели_\n")
		} else {
			sb.WriteString("2️⃣ Выберите параметр\n")
		}
	default:
		sb.WriteString(fmt.Sprintf("\n*Модель:* %s\n", EscapeMarkdown(state.SelectedModel)))
		sb.WriteString(fmt.Sprintf("*Параметр:* %s\n", EscapeMarkdown(state.SelectedParameter)))
		sb.WriteString("3️⃣ Отправьте минимальную уверенность, например `0.7`\n")
	}

	if len(state.Pending) > 0 {
		sb.WriteString("\n*Будут применены:*\n")
		for i, f := range state.Pending {
			sb.WriteString(fmt.Sprintf("%d\\. %s · %s ≥ %s\n",
				i+1,
				EscapeMarkdown(f.Model),
				EscapeMarkdown(f.Parameter),
				EscapeMarkdown(FormatConfidence(f.Threshold)),
			))
		}
	}

	return sb.String()
}

func FormatSettingsMessage(user *models.User, stats *postgres.UserStats, schedule string) string {
	var sb strings.Builder

	sb.WriteString("*⚙️ Настройки уведомлений*\n\n")

	status := "❌ Отключены"
	if user.CheckEnabled {
		status = "✅ Включены"
	}
	sb.WriteString(fmt.Sprintf("*Статус:* %s\n", status))
	sb.WriteString(fmt.Sprintf("*Расписание:* `%s`\n", EscapeMarkdown(schedule)))

	if user.LastCheck != nil {
		sb.WriteString(fmt.Sprintf("*Последняя проверка:* %s\n", EscapeMarkdown(FormatDate(*user.LastCheck))))
	}

	if stats != nil {
		sb.WriteString("\n*📊 Статистика:*\n")
		sb.WriteString(fmt.Sprintf("• Анкет отправлено: %d\n", stats.Submissions))
		sb.WriteString(fmt.Sprintf("• Вакансий просмотрено: %d\n", stats.SeenVacancies))
		if stats.LoggedIn {
			sb.WriteString("• Вход в кабинет HR: ✅\n")
		} else {
			sb.WriteString("• Вход в кабинет HR: ❌\n")
		}
	}

	if user.CheckEnabled {
		sb.WriteString("\n_Уведомления приходят только после входа в кабинет HR_")
	}

	return sb.String()
}

func FormatIdentity(id workspace.Identity) string {
	var sb strings.Builder

	sb.WriteString("*👤 Текущий аккаунт*\n\n")
	sb.WriteString(fmt.Sprintf("*Логин:* %s\n", EscapeMarkdown(id.Username)))

	if id.Account != nil {
		sb.WriteString(fmt.Sprintf("*ID:* `%s`\n", EscapeMarkdown(id.Account.ID)))
		if id.Account.Email != nil && *id.Account.Email != "" {
			sb.WriteString(fmt.Sprintf("*Email:* %s\n", EscapeMarkdown(*id.Account.Email)))
		}
		if id.Account.Phone != nil && *id.Account.Phone != "" {
			sb.WriteString(fmt.Sprintf("*Телефон:* %s\n", EscapeMarkdown(*id.Account.Phone)))
		}
	} else if id.AccountID != "" {
		sb.WriteString(fmt.Sprintf("*ID:* `%s`\n", EscapeMarkdown(id.AccountID)))
	}

	if id.ExpiresAt != nil {
		sb.WriteString(fmt.Sprintf("*Сессия до:* %s\n", EscapeMarkdown(FormatDate(*id.ExpiresAt))))
	}

	return sb.String()
}

func FormatStatus(status string, healthy bool) string {
	if !healthy {
		return "🔴 *Сервис оценки недоступен*\n\nПопробуйте позже\\."
	}
	return fmt.Sprintf("🟢 *Сервис оценки работает*\n\n*Статус:* %s", EscapeMarkdown(status))
}

func FormatStorageStatus(postgresOK, redisOK bool) string {
	mark := func(ok bool) string {
		if ok {
			return "🟢"
		}
		return "🔴"
	}
	return fmt.Sprintf("%s PostgreSQL\n%s Redis", mark(postgresOK), mark(redisOK))
}

func FormatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatSalary groups digits by thousands: 150000 -> "150 000 ₽".
func FormatSalary(salary int) string {
	if salary <= 0 {
		return "не указана"
	}

	digits := strconv.Itoa(salary)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteRune(' ')
		}
		sb.WriteRune(d)
	}
	sb.WriteString(" ₽")

	return sb.String()
}

func FormatDate(t time.Time) string {
	return t.Local().Format("02.01.2006 15:04")
}

// EscapeMarkdown escapes special characters for Telegram MarkdownV2
func EscapeMarkdown(text string) string {
	// \ _ * [ ] ( ) ~ ` > # + - = | { } . !
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)

	return replacer.Replace(text)
}

// TruncateString cuts by runes so Cyrillic text is never split mid-character.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
