package documents

import (
	"bytes"
	"fmt"

	"personality-bot/internal/board"
	"personality-bot/internal/candidates"

	"github.com/xuri/excelize/v2"
)

const (
	candidatesSheet = "Candidates"
	scoresSheet     = "Scores"
	vacanciesSheet  = "Vacancies"
)

// ExportBoard renders the board's working candidate list and its vacancies
// as an .xlsx workbook.
func ExportBoard(state board.State) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(scoresSheet); err != nil {
		return nil, fmt.Errorf("create scores sheet: %w", err)
	}
	if _, err := f.NewSheet(vacanciesSheet); err != nil {
		return nil, fmt.Errorf("create vacancies sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeCandidates(f, state, headerStyle); err != nil {
		return nil, fmt.Errorf("write candidates sheet: %w", err)
	}
	if err := writeScores(f, state, headerStyle); err != nil {
		return nil, fmt.Errorf("write scores sheet: %w", err)
	}
	if err := writeVacancies(f, state, headerStyle); err != nil {
		return nil, fmt.Errorf("write vacancies sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeCandidates(f *excelize.File, state board.State, style int) error {
	if err := writeHeader(f, candidatesSheet, style, []string{"#", "ID", "Created", "Video", "Resume", "Motivation letter"}); err != nil {
		return err
	}
	_ = f.SetColWidth(candidatesSheet, "B", "B", 38)
	_ = f.SetColWidth(candidatesSheet, "C", "C", 20)
	_ = f.SetColWidth(candidatesSheet, "D", "E", 40)
	_ = f.SetColWidth(candidatesSheet, "F", "F", 60)

	for i, c := range state.Candidates {
		created := ""
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Format("2006-01-02 15:04")
		}
		if err := writeRow(f, candidatesSheet, i+2, i+1, c.ID, created, c.VideoLink, c.ResumeLink, c.MotivationLetter); err != nil {
			return err
		}
	}
	return nil
}

func writeScores(f *excelize.File, state board.State, style int) error {
	if err := writeHeader(f, scoresSheet, style, []string{"Candidate", "Model", "Parameter", "Confidence"}); err != nil {
		return err
	}
	_ = f.SetColWidth(scoresSheet, "A", "A", 38)
	_ = f.SetColWidth(scoresSheet, "C", "C", 24)

	row := 2
	for _, c := range state.Candidates {
		grouped := candidates.GroupByModel(c.PersonalityModels)
		for _, model := range grouped.Models() {
			for _, score := range grouped.Scores(model) {
				if err := writeRow(f, scoresSheet, row, c.ID, model, score.Parameter, score.Confidence); err != nil {
					return err
				}
				row++
			}
		}
	}

	if row > 2 {
		return f.AutoFilter(scoresSheet, fmt.Sprintf("A1:D%d", row-1), []excelize.AutoFilterOptions{})
	}
	return nil
}

func writeVacancies(f *excelize.File, state board.State, style int) error {
	if err := writeHeader(f, vacanciesSheet, style, []string{"ID", "Title", "Salary", "Description"}); err != nil {
		return err
	}
	_ = f.SetColWidth(vacanciesSheet, "A", "A", 38)
	_ = f.SetColWidth(vacanciesSheet, "B", "B", 30)
	_ = f.SetColWidth(vacanciesSheet, "D", "D", 60)

	for i, v := range state.Vacancies {
		if err := writeRow(f, vacanciesSheet, i+2, v.ID, v.Title, v.Salary, v.Description); err != nil {
			return err
		}
	}
	return nil
}
