package entities

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a meeting participant keyed by email
type Contact struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FirstName string    `json:"first_name,omitempty" gorm:"type:varchar(255)"`
	LastName  string    `json:"last_name,omitempty" gorm:"type:varchar(255)"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}
