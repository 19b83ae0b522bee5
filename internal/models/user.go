package models

import "time"

// User is an account on the platform. Every user can act as an artist
// (own albums and tracks) and as a playlist author.
type User struct {
	ID         int64     `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	About      string    `json:"about,omitempty" db:"about"`
	Avatar     string    `json:"avatar,omitempty" db:"avatar"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	DateJoined time.Time `json:"date_joined" db:"date_joined"`
}
