package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIToken is a bearer token bound to one tenant.
type APIToken struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);index;not null"`
	Name      string    `gorm:"column:name;type:varchar(128)"`
	Token     string    `gorm:"column:token;type:varchar(64);not null;uniqueIndex"`
	Revoked   bool      `gorm:"column:revoked;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (APIToken) TableName() string {
	return "api_tokens"
}

func (t *APIToken) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
