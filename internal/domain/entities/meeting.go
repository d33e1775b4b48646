package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Meeting processing status values
const (
	MeetingStatusPending   = "pending"
	MeetingStatusProcessed = "processed"
	MeetingStatusFailed    = "failed"
)

// Meeting is the stored meeting record. FirefliesID is the sole
// deduplication key against the transcript source.
type Meeting struct {
	ID                   uuid.UUID                                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FirefliesID          string                                     `json:"fireflies_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	Title                string                                     `json:"title" gorm:"type:varchar(500)"`
	Date                 time.Time                                  `json:"date" gorm:"index"`
	DurationMinutes      float64                                    `json:"duration_minutes"`
	Participants         datatypes.JSONSlice[string]                `json:"participants,omitempty" gorm:"type:jsonb"`
	Summary              string                                     `json:"summary,omitempty" gorm:"type:text"`
	ActionItems          datatypes.JSONSlice[string]                `json:"action_items,omitempty" gorm:"type:jsonb"`
	Decisions            datatypes.JSONSlice[string]                `json:"decisions,omitempty" gorm:"type:jsonb"`
	Risks                datatypes.JSONSlice[string]                `json:"risks,omitempty" gorm:"type:jsonb"`
	Topics               datatypes.JSONSlice[string]                `json:"topics,omitempty" gorm:"type:jsonb"`
	Tags                 datatypes.JSONSlice[string]                `json:"tags,omitempty" gorm:"type:jsonb"`
	SentimentScore       float64                                    `json:"sentiment_score"`
	ProjectID            *int64                                     `json:"project_id,omitempty" gorm:"index"`
	AssignmentConfidence *float64                                   `json:"assignment_confidence,omitempty"`
	AssignmentSignals    datatypes.JSONType[map[string]interface{}] `json:"assignment_signals,omitempty" gorm:"type:jsonb"`
	TranscriptURL        string                                     `json:"transcript_url,omitempty" gorm:"type:varchar(1000)"`
	StorageBucketPath    string                                     `json:"storage_bucket_path,omitempty" gorm:"type:varchar(1000)"`
	RawMetadata          datatypes.JSONType[map[string]interface{}] `json:"raw_metadata,omitempty" gorm:"type:jsonb"`
	ProcessingStatus     string                                     `json:"processing_status" gorm:"type:varchar(20);default:'pending'"`
	ProcessingVersion    int                                        `json:"processing_version" gorm:"default:1"`
	CreatedAt            time.Time                                  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time                                  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a new meeting keyed by the source transcript id
func NewMeeting(firefliesID string) *Meeting {
	return &Meeting{
		ID:               uuid.New(),
		FirefliesID:      firefliesID,
		ProcessingStatus: MeetingStatusPending,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}
