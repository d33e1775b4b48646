package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Project is a read-mostly catalog entry used for meeting assignment
type Project struct {
	ID           int64                       `json:"id" gorm:"primary_key;autoIncrement"`
	Name         string                      `json:"name" gorm:"type:varchar(255);not null"`
	Description  string                      `json:"description,omitempty" gorm:"type:text"`
	Keywords     datatypes.JSONSlice[string] `json:"keywords,omitempty" gorm:"type:jsonb"`
	Aliases      datatypes.JSONSlice[string] `json:"aliases,omitempty" gorm:"type:jsonb"`
	Stakeholders datatypes.JSONSlice[string] `json:"stakeholders,omitempty" gorm:"type:jsonb"`
	Status       string                      `json:"status" gorm:"type:varchar(50);default:'active'"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Project) TableName() string {
	return "projects"
}
