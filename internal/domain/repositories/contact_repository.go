package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
)

// ContactRepository defines the interface for contact data access
type ContactRepository interface {
	// UpsertByEmail inserts a contact or refreshes the name fields when
	// the email already exists
	UpsertByEmail(ctx context.Context, contact *entities.Contact) error
}
