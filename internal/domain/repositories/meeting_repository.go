package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// ExistsByFirefliesID reports whether a meeting with the given source id is stored
	ExistsByFirefliesID(ctx context.Context, firefliesID string) (bool, error)

	// Create inserts a fully populated meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// CreateMinimal inserts only the core field set, used as a fallback
	// when the full insert is rejected
	CreateMinimal(ctx context.Context, meeting *entities.Meeting) error

	// FindByID finds a meeting by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// UpdateFields applies a partial update to one meeting
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error

	// ListIDs returns the ids of all stored meetings
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// ListRecent returns the most recent meetings ordered by date descending
	ListRecent(ctx context.Context, limit int) ([]*entities.Meeting, error)
}
