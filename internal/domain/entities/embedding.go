package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// ChunkMetadata is the per-chunk snapshot stored alongside each vector
type ChunkMetadata struct {
	MeetingTitle      string `json:"meeting_title"`
	MeetingDate       string `json:"meeting_date"`
	ChunkPreview      string `json:"chunk_preview"`
	ChunkNumber       int    `json:"chunk_number"`
	TotalChunks       int    `json:"total_chunks"`
	HasActionItems    bool   `json:"has_action_items"`
	HasDecisions      bool   `json:"has_decisions"`
	HasRisks          bool   `json:"has_risks"`
	ParticipantsCount int    `json:"participants_count"`
}

// MeetingEmbedding is one embedded chunk of a meeting's content block.
// ChunkIndex values are contiguous from 0 within a meeting.
type MeetingEmbedding struct {
	ID         uuid.UUID                         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID  uuid.UUID                         `json:"meeting_id" gorm:"type:uuid;not null;index"`
	ChunkIndex int                               `json:"chunk_index" gorm:"not null"`
	ChunkText  string                            `json:"chunk_text" gorm:"type:text"`
	Embedding  pgvector.Vector                   `json:"-" gorm:"type:vector(384)"`
	Metadata   datatypes.JSONType[ChunkMetadata] `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time                         `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MeetingEmbedding) TableName() string {
	return "meeting_embeddings"
}
