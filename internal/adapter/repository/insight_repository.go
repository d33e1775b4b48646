package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/johnquangdev/meeting-intel/errors"
	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
)

// InsightRepository handles insight data operations
type InsightRepository struct {
	db *gorm.DB
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *gorm.DB) repositories.InsightRepository {
	return &InsightRepository{db: db}
}

// CountByMeetingID returns how many insights exist for a meeting
func (r *InsightRepository) CountByMeetingID(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Insight{}).
		Where("meeting_id = ?", meetingID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.ErrDBQueryFailed("count_by_meeting_id", err)
	}
	return count, nil
}

// CreateBatch inserts a set of insights in one statement
func (r *InsightRepository) CreateBatch(ctx context.Context, insights []*entities.Insight) error {
	if len(insights) == 0 {
		return errors.New("insights cannot be empty")
	}
	return r.db.WithContext(ctx).Create(insights).Error
}

// ListByMeetingIDs returns insights belonging to any of the given meetings
func (r *InsightRepository) ListByMeetingIDs(ctx context.Context, meetingIDs []uuid.UUID) ([]*entities.Insight, error) {
	if len(meetingIDs) == 0 {
		return nil, nil
	}
	var insights []*entities.Insight
	err := r.db.WithContext(ctx).
		Where("meeting_id IN ?", meetingIDs).
		Order("created_at DESC").
		Find(&insights).Error
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_by_meeting_ids", err)
	}
	return insights, nil
}

// ListByProjectID returns insights linked to one project
func (r *InsightRepository) ListByProjectID(ctx context.Context, projectID int64) ([]*entities.Insight, error) {
	var insights []*entities.Insight
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&insights).Error
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_by_project_id", err)
	}
	return insights, nil
}
