package utils

import (
	"fmt"
	"strconv"
	"strings"

	"personality-bot/internal/board"
	"personality-bot/internal/models"

	tele "gopkg.in/telebot.v3"
)

// Reply keyboard buttons
const (
	BtnUpload   = "📤 Отправить анкету"
	BtnHR       = "👔 Кабинет HR"
	BtnResults  = "📄 Мои результаты"
	BtnSettings = "⚙️ Настройки"
	BtnHelp     = "❓ Справка"

	BtnLogin    = "🔑 Войти"
	BtnRegister = "📝 Регистрация"
	BtnLogout   = "🚪 Выйти"

	BtnCandidates = "👥 Кандидаты"
	BtnVacancies  = "💼 Вакансии"
	BtnFilters    = "🔎 Фильтры"
	BtnAddVacancy = "➕ Вакансия"
	BtnReload     = "🔄 Обновить"
	BtnExport     = "📊 Экспорт"

	BtnBack   = "◀️ Назад"
	BtnCancel = "❌ Отмена"
)

// Callback actions
const (
	CbFilterModel  = "flt_model"
	CbFilterParam  = "flt_param"
	CbFilterRemove = "flt_remove"
	CbFilterApply  = "flt_apply"
	CbFilterClose  = "flt_close"
	CbSettings     = "settings_toggle"
	CbCandidates   = "cands_more"
)

func MainMenuKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	menu.Reply(
		menu.Row(menu.Text(BtnUpload), menu.Text(BtnResults)),
		menu.Row(menu.Text(BtnHR)),
		menu.Row(menu.Text(BtnSettings), menu.Text(BtnHelp)),
	)

	return menu
}

func HRMenuKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	menu.Reply(
		menu.Row(menu.Text(BtnCandidates), menu.Text(BtnVacancies)),
		menu.Row(menu.Text(BtnFilters), menu.Text(BtnAddVacancy)),
		menu.Row(menu.Text(BtnReload), menu.Text(BtnExport)),
		menu.Row(menu.Text(BtnLogout), menu.Text(BtnBack)),
	)

	return menu
}

func GuestKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	menu.Reply(
		menu.Row(menu.Text(BtnLogin), menu.Text(BtnRegister)),
		menu.Row(menu.Text(BtnBack)),
	)

	return menu
}

func CancelKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	menu.Reply(menu.Row(menu.Text(BtnCancel)))

	return menu
}

func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

func SettingsKeyboard(checkEnabled bool) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}

	var btnToggle tele.Btn
	if checkEnabled {
		btnToggle = menu.Data("🔕 Отключить уведомления", CbSettings)
	} else {
		btnToggle = menu.Data("🔔 Включить уведомления", CbSettings)
	}

	menu.Inline(menu.Row(btnToggle))

	return menu
}

// FilterDialogKeyboard renders the filter dialog: model choice, then the
// parameters available for the chosen model, then the pending filters.
// Parameters are addressed by index into State.AvailableParameters.
func FilterDialogKeyboard(state board.State) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row

	var modelBtns []tele.Btn
	for _, m := range models.ModelOptions() {
		text := m
		if m == state.SelectedModel {
			text = "• " + m + " •"
		}
		modelBtns = append(modelBtns, menu.Data(text, CbFilterModel+":"+m))
	}
	rows = append(rows, menu.Row(modelBtns...))

	if state.SelectedModel != "" {
		var row []tele.Btn
		for i, p := range state.AvailableParameters() {
			text := TruncateString(p, 24)
			if p == state.SelectedParameter {
				text = "✔️ " + text
			}
			row = append(row, menu.Data(text, CbFilterParam+":"+strconv.Itoa(i)))
			if len(row) == 2 {
				rows = append(rows, menu.Row(row...))
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, menu.Row(row...))
		}
	}

	for i, f := range state.Pending {
		text := fmt.Sprintf("🗑 %d. %s %s ≥ %s", i+1, f.Model, TruncateString(f.Parameter, 16), FormatConfidence(f.Threshold))
		rows = append(rows, menu.Row(menu.Data(text, CbFilterRemove+":"+strconv.Itoa(i))))
	}

	rows = append(rows, menu.Row(
		menu.Data("✅ Применить", CbFilterApply),
		menu.Data("✖️ Закрыть", CbFilterClose),
	))

	menu.Inline(rows...)
	return menu
}

func MoreCandidatesKeyboard(offset int) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("⬇️ Ещё кандидаты", CbCandidates+":"+strconv.Itoa(offset))))
	return menu
}

// CandidateLinksKeyboard offers the candidate's video and résumé when the
// backend returned absolute links.
func CandidateLinksKeyboard(c models.Candidate) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}

	var btns []tele.Btn
	if isHTTPURL(c.VideoLink) {
		btns = append(btns, menu.URL("🎬 Видео", c.VideoLink))
	}
	if isHTTPURL(c.ResumeLink) {
		btns = append(btns, menu.URL("📄 Резюме", c.ResumeLink))
	}
	if len(btns) == 0 {
		return nil
	}

	menu.Inline(menu.Row(btns...))
	return menu
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
