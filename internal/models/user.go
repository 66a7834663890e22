package models

import "time"

type User struct {
	ID           int64      `db:"id"`
	Username     *string    `db:"username"`
	FirstName    *string    `db:"first_name"`
	LastName     *string    `db:"last_name"`
	CreatedAt    time.Time  `db:"created_at"`
	LastCheck    *time.Time `db:"last_check"`
	CheckEnabled bool       `db:"check_enabled"`
}

// Session is the stored bearer token of one Telegram user.
type Session struct {
	UserID      int64     `db:"user_id" json:"user_id"`
	AccessToken string    `db:"access_token" json:"access_token"`
	Username    string    `db:"username" json:"username"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Submission remembers which backend card a Telegram user created.
type Submission struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	CardID    string    `db:"card_id"`
	CreatedAt time.Time `db:"created_at"`
}
