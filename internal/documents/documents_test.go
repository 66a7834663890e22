package documents_test

import (
	"bytes"
	"fmt"
	"testing"

	"personality-bot/internal/board"
	"personality-bot/internal/documents"
	"personality-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// minimalPDF builds a one-page document with a correct xref table.
func minimalPDF() []byte {
	content := "BT /F1 12 Tf 72 720 Td (Jane Doe) Tj ET"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestInspectResume(t *testing.T) {
	info, err := documents.InspectResume(minimalPDF())
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
}

func TestInspectResume_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("my resume")},
		{"truncated", []byte("%PDF-1.4\n1 0 obj\n<<")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := documents.InspectResume(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, documents.ErrNotPDF)
		})
	}
}

func TestCheckVideo(t *testing.T) {
	mp4 := append([]byte{0, 0, 0, 0x18}, []byte("ftypmp42\x00\x00\x00\x00")...)
	assert.NoError(t, documents.CheckVideo(mp4))

	assert.ErrorIs(t, documents.CheckVideo([]byte("RIFF....AVI LIST")), documents.ErrNotMP4)
	assert.ErrorIs(t, documents.CheckVideo([]byte("short")), documents.ErrNotMP4)
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, documents.CheckSize(10, 10))
	assert.NoError(t, documents.CheckSize(10, 0))
	assert.ErrorIs(t, documents.CheckSize(11, 10), documents.ErrTooLarge)
}

func TestExportBoard(t *testing.T) {
	state := board.Loaded(
		[]models.Candidate{{
			ID:         "c1",
			VideoLink:  "https://cdn/v.mp4",
			ResumeLink: "https://cdn/r.pdf",
			PersonalityModels: []models.PersonalityModel{
				{Model: models.ModelOCEAN, Parameter: "Openness", Confidence: 0.8},
				{Model: models.ModelMBTI, Parameter: "INTJ", Confidence: 0.6},
			},
		}},
		[]models.Vacancy{{ID: "v1", Title: "Go developer", Salary: 5000}},
	)

	data, err := documents.ExportBoard(state)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Candidates", "Scores", "Vacancies"}, f.GetSheetList())

	get := func(sheet, cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "ID", get("Candidates", "B1"))
	assert.Equal(t, "c1", get("Candidates", "B2"))
	assert.Equal(t, "https://cdn/v.mp4", get("Candidates", "D2"))

	assert.Equal(t, "OCEAN", get("Scores", "B2"))
	assert.Equal(t, "Openness", get("Scores", "C2"))
	assert.Equal(t, "MBTI", get("Scores", "B3"))
	assert.Equal(t, "INTJ", get("Scores", "C3"))

	assert.Equal(t, "Go developer", get("Vacancies", "B2"))
	assert.Equal(t, "5000", get("Vacancies", "C2"))
}

func TestExportBoard_Empty(t *testing.T) {
	data, err := documents.ExportBoard(board.State{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
