package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
)

// InsightRepository defines the interface for insight data access
type InsightRepository interface {
	// CountByMeetingID returns how many insights exist for a meeting
	CountByMeetingID(ctx context.Context, meetingID uuid.UUID) (int64, error)

	// CreateBatch inserts a set of insights in one statement
	CreateBatch(ctx context.Context, insights []*entities.Insight) error

	// ListByMeetingIDs returns insights belonging to any of the given meetings
	ListByMeetingIDs(ctx context.Context, meetingIDs []uuid.UUID) ([]*entities.Insight, error)

	// ListByProjectID returns insights linked to one project
	ListByProjectID(ctx context.Context, projectID int64) ([]*entities.Insight, error)
}
