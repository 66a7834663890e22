package personality

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"personality-bot/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ContentTypePDF = "application/pdf"
	ContentTypeMP4 = "video/mp4"
)

// CreateCard uploads a candidate's résumé, video and motivation letter and
// returns the scored card.
func (c *Client) CreateCard(ctx context.Context, token string, upload models.CandidateUpload) (*models.Candidate, error) {
	body, contentType, err := encodeCardForm(upload)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	data, err := c.doRequest(ctx, request{
		method:      http.MethodPost,
		path:        "/card/",
		body:        body,
		contentType: contentType,
		token:       token,
	})
	if err != nil {
		c.logger.Error("failed to create card",
			zap.Int("resume_bytes", len(upload.Resume)),
			zap.Int("video_bytes", len(upload.Video)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create card: %w", err)
	}

	var card models.Candidate
	if err := c.parseResponse(data, &card); err != nil {
		c.logger.Error("failed to parse card", zap.Error(err))
		return nil, err
	}

	c.logger.Info("card created",
		zap.String("card_id", card.ID),
		zap.Int("scores", len(card.PersonalityModels)),
	)

	return &card, nil
}

func (c *Client) ListCards(ctx context.Context, token string, limit, offset int) ([]models.Candidate, error) {
	data, err := c.get(ctx, "/card/", token, pageParams(limit, offset))
	if err != nil {
		c.logger.Error("failed to list cards",
			zap.Int("limit", limit),
			zap.Int("offset", offset),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list cards: %w", err)
	}

	var cards []models.Candidate
	if err := c.parseResponse(data, &cards); err != nil {
		c.logger.Error("failed to parse cards", zap.Error(err))
		return nil, err
	}

	c.logger.Debug("cards listed", zap.Int("returned", len(cards)))

	return cards, nil
}

func (c *Client) GetCard(ctx context.Context, token, cardID string) (*models.Candidate, error) {
	if _, err := uuid.Parse(cardID); err != nil {
		return nil, fmt.Errorf("get card: invalid id %q: %w", cardID, ErrBadRequest)
	}

	data, err := c.get(ctx, "/card/"+cardID, token, nil)
	if err != nil {
		c.logger.Error("failed to get card",
			zap.String("card_id", cardID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get card: %w", err)
	}

	var card models.Candidate
	if err := c.parseResponse(data, &card); err != nil {
		return nil, err
	}

	return &card, nil
}

// The backend mounts the advice route right after the card prefix, without a
// separating slash.
const adviceEndpoint = "/cardadvice/"

// Advice asks the backend to write short work recommendations from the card's
// scores. The backend answers 400 when the card has fewer than six of them.
func (c *Client) Advice(ctx context.Context, token, cardID string) (string, error) {
	if _, err := uuid.Parse(cardID); err != nil {
		return "", fmt.Errorf("advice: invalid id %q: %w", cardID, ErrBadRequest)
	}

	data, err := c.get(ctx, adviceEndpoint+cardID, token, nil)
	if err != nil {
		c.logger.Warn("failed to get advice",
			zap.String("card_id", cardID),
			zap.Error(err),
		)
		return "", fmt.Errorf("advice: %w", err)
	}

	var advice string
	if err := c.parseResponse(data, &advice); err != nil {
		return "", err
	}

	return strings.TrimSpace(advice), nil
}

func encodeCardForm(upload models.CandidateUpload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeFilePart(w, "pdf_file", nameOr(upload.ResumeName, "resume.pdf"), ContentTypePDF, upload.Resume); err != nil {
		return nil, "", err
	}
	if err := writeFilePart(w, "video_file", nameOr(upload.VideoName, "video.mp4"), ContentTypeMP4, upload.Video); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("motivation_letter", upload.MotivationLetter); err != nil {
		return nil, "", fmt.Errorf("write motivation letter: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field, filename, contentType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
