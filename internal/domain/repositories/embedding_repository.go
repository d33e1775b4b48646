package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/pgvector/pgvector-go"
)

// ScoredChunk is an embedding row with its cosine similarity to a query vector
type ScoredChunk struct {
	entities.MeetingEmbedding
	Similarity float64 `json:"similarity"`
}

// EmbeddingRepository defines the interface for embedding data access
type EmbeddingRepository interface {
	// CreateBatch inserts all chunks of one meeting
	CreateBatch(ctx context.Context, embeddings []*entities.MeetingEmbedding) error

	// DeleteByMeetingID removes every chunk stored for a meeting
	DeleteByMeetingID(ctx context.Context, meetingID uuid.UUID) error

	// ListMeetingIDs returns the distinct meeting ids that have embeddings
	ListMeetingIDs(ctx context.Context) ([]uuid.UUID, error)

	// SearchSimilar returns chunks ordered by cosine similarity to the query
	// vector, filtered to similarity >= threshold. A non-nil projectID
	// restricts results to meetings linked to that project.
	SearchSimilar(ctx context.Context, query pgvector.Vector, projectID *int64, limit int, threshold float64) ([]*ScoredChunk, error)
}
