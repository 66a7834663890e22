package personality

import (
	"context"
	"fmt"

	"personality-bot/internal/models"

	"go.uber.org/zap"
)

func (c *Client) CreateVacancy(ctx context.Context, token string, vacancy models.NewVacancy) (*models.Vacancy, error) {
	data, err := c.postJSON(ctx, "/vacancy/", token, vacancy)
	if err != nil {
		c.logger.Error("failed to create vacancy",
			zap.String("title", vacancy.Title),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create vacancy: %w", err)
	}

	var created models.Vacancy
	if err := c.parseResponse(data, &created); err != nil {
		c.logger.Error("failed to parse created vacancy", zap.Error(err))
		return nil, err
	}

	c.logger.Info("vacancy created",
		zap.String("vacancy_id", created.ID),
		zap.String("title", created.Title),
	)

	return &created, nil
}

func (c *Client) ListVacancies(ctx context.Context, token string, limit, offset int) ([]models.Vacancy, error) {
	data, err := c.get(ctx, "/vacancy/", token, pageParams(limit, offset))
	if err != nil {
		c.logger.Error("failed to list vacancies",
			zap.Int("limit", limit),
			zap.Int("offset", offset),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list vacancies: %w", err)
	}

	var vacancies []models.Vacancy
	if err := c.parseResponse(data, &vacancies); err != nil {
		c.logger.Error("failed to parse vacancies", zap.Error(err))
		return nil, err
	}

	c.logger.Debug("vacancies listed", zap.Int("returned", len(vacancies)))

	return vacancies, nil
}

func ExtractVacancyIDs(vacancies []models.Vacancy) []string {
	ids := make([]string, len(vacancies))
	for i, v := range vacancies {
		ids[i] = v.ID
	}
	return ids
}
