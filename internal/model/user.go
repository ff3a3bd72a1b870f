package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account that can send or receive invitations.
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username string    `json:"username" gorm:"uniqueIndex;not null"`
	Email    string    `json:"email" gorm:"uniqueIndex;not null"`
	Name     string    `json:"name"`

	// Timestamps
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt *time.Time `json:"-" gorm:"column:deleted_at;index"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// IsDeleted returns true if the account has been soft deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// DisplayName returns the name shown in notifications.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
