// Package documents checks candidate files before they are uploaded and
// renders the HR board as a spreadsheet.
package documents

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrNotPDF   = errors.New("file is not a PDF document")
	ErrEmptyPDF = errors.New("PDF document has no pages")
	ErrNotMP4   = errors.New("file is not an MP4 video")
	ErrTooLarge = errors.New("file is too large")
)

type ResumeInfo struct {
	Pages   int
	HasText bool
}

// InspectResume parses data as a PDF and reports its page count and whether
// any page carries extractable text.
func InspectResume(data []byte) (info *ResumeInfo, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}

	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	pages := r.NumPage()
	if pages == 0 {
		return nil, ErrEmptyPDF
	}

	info = &ResumeInfo{Pages: pages}
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			info.HasText = true
			break
		}
	}

	return info, nil
}

// CheckVideo accepts ISO base media files, which start with an ftyp box.
func CheckVideo(data []byte) error {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return ErrNotMP4
	}
	return nil
}

func CheckSize(size, limit int64) error {
	if limit > 0 && size > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, limit)
	}
	return nil
}
