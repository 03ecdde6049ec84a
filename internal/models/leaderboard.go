package model

import "time"

type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Points       int       `json:"points"`
	Level        int       `json:"level"`
	Badge        string    `json:"badge"`
	HelpedPeople int       `json:"helped_people"`
	JoinedAt     time.Time `json:"joined_at"`
}

type UserRank struct {
	UserID     string  `json:"user_id"`
	Rank       int     `json:"rank"`
	Points     int     `json:"points"`
	TotalUsers int     `json:"total_users"`
	Percentile float64 `json:"percentile"` // Top X%
}
