package models

import "time"

type Vacancy struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Salary            int                `json:"salary"`
	PersonalityModels []PersonalityModel `json:"personality_models"`
}

// NewVacancy is the body of a vacancy creation request.
type NewVacancy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Salary      int    `json:"salary"`
}

type UserSeenVacancy struct {
	UserID    int64     `db:"user_id"`
	VacancyID string    `db:"vacancy_id"`
	SeenAt    time.Time `db:"seen_at"`
}
