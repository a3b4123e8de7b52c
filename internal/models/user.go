package models

import (
	"strings"
	"time"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	DisplayName  string `gorm:"type:varchar(100)"        json:"display_name"`
	PasswordHash string `gorm:"type:varchar(100)"        json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailMatches compares addresses case-insensitively, the way the rest of
// the invite flow treats them.
func (u *User) EmailMatches(email string) bool {
	return strings.EqualFold(u.Email, strings.TrimSpace(email))
}
