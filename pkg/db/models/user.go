package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Name         string        `gorm:"column:name;not null"`
	Email        string        `gorm:"type:text;not null;uniqueIndex:idx_users_email"`
	PasswordHash string        `gorm:"column:password_hash;not null"`
	Phone        string        `gorm:"column:phone;not null"`
	Address      types.JSONMap `gorm:"column:address;type:jsonb"`
	Role         enums.Role    `gorm:"column:role;type:text;not null;default:user"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id so inserts work on every supported driver.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
