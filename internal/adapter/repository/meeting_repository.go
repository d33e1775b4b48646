package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/johnquangdev/meeting-intel/errors"
	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &MeetingRepository{db: db}
}

// ExistsByFirefliesID reports whether a meeting with the given source id is stored
func (r *MeetingRepository) ExistsByFirefliesID(ctx context.Context, firefliesID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("fireflies_id = ?", firefliesID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.ErrDBQueryFailed("exists_by_fireflies_id", err)
	}
	return count > 0, nil
}

// Create creates a fully populated meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// CreateMinimal inserts only the core field set
func (r *MeetingRepository) CreateMinimal(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	minimal := &entities.Meeting{
		ID:               meeting.ID,
		FirefliesID:      meeting.FirefliesID,
		Title:            meeting.Title,
		Date:             meeting.Date,
		DurationMinutes:  meeting.DurationMinutes,
		TranscriptURL:    meeting.TranscriptURL,
		Summary:          meeting.Summary,
		RawMetadata:      meeting.RawMetadata,
		ProcessingStatus: entities.MeetingStatusPending,
	}
	return r.db.WithContext(ctx).Create(minimal).Error
}

// FindByID retrieves a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// UpdateFields applies a partial update to one meeting
func (r *MeetingRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ListIDs returns the ids of all stored meetings
func (r *MeetingRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_ids", err)
	}
	return ids, nil
}

// ListRecent returns the most recent meetings ordered by date descending
func (r *MeetingRepository) ListRecent(ctx context.Context, limit int) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(limit).
		Find(&meetings).Error
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_recent", err)
	}
	return meetings, nil
}
