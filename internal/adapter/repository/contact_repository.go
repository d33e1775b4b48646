package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
)

// ContactRepository handles contact data operations
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) repositories.ContactRepository {
	return &ContactRepository{db: db}
}

// UpsertByEmail inserts a contact or refreshes the name fields when the
// email already exists
func (r *ContactRepository) UpsertByEmail(ctx context.Context, contact *entities.Contact) error {
	if contact == nil || contact.Email == "" {
		return errors.New("contact email cannot be empty")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"first_name": contact.FirstName,
				"last_name":  contact.LastName,
				"updated_at": time.Now(),
			}),
		}).
		Create(contact).Error
}
