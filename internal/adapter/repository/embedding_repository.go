package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	apperrors "github.com/johnquangdev/meeting-intel/errors"
	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
)

// EmbeddingRepository handles embedding data operations
type EmbeddingRepository struct {
	db *gorm.DB
}

// NewEmbeddingRepository creates a new embedding repository
func NewEmbeddingRepository(db *gorm.DB) repositories.EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

// CreateBatch inserts all chunks of one meeting
func (r *EmbeddingRepository) CreateBatch(ctx context.Context, embeddings []*entities.MeetingEmbedding) error {
	if len(embeddings) == 0 {
		return errors.New("embeddings cannot be empty")
	}
	return r.db.WithContext(ctx).Create(embeddings).Error
}

// DeleteByMeetingID removes every chunk stored for a meeting
func (r *EmbeddingRepository) DeleteByMeetingID(ctx context.Context, meetingID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Delete(&entities.MeetingEmbedding{}).Error
}

// ListMeetingIDs returns the distinct meeting ids that have embeddings
func (r *EmbeddingRepository) ListMeetingIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entities.MeetingEmbedding{}).
		Distinct("meeting_id").
		Pluck("meeting_id", &ids).Error
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_meeting_ids", err)
	}
	return ids, nil
}

// SearchSimilar returns chunks ordered by cosine similarity to the query vector
func (r *EmbeddingRepository) SearchSimilar(ctx context.Context, query pgvector.Vector, projectID *int64, limit int, threshold float64) ([]*repositories.ScoredChunk, error) {
	var results []*repositories.ScoredChunk

	q := r.db.WithContext(ctx).
		Model(&entities.MeetingEmbedding{}).
		Select("meeting_embeddings.*, 1 - (meeting_embeddings.embedding <=> ?) as similarity", query).
		Where("1 - (meeting_embeddings.embedding <=> ?) >= ?", query, threshold)

	if projectID != nil {
		q = q.Joins("JOIN meetings ON meetings.id = meeting_embeddings.meeting_id").
			Where("meetings.project_id = ?", *projectID)
	}

	err := q.Order("similarity DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("search_similar", err)
	}
	return results, nil
}
