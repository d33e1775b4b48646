package entities

import (
	"time"

	"github.com/google/uuid"
)

// Insight type values
const (
	InsightTypeRisk        = "risk"
	InsightTypeOpportunity = "opportunity"
	InsightTypeDecision    = "decision"
	InsightTypeActionItem  = "action_item"
	InsightTypeStrategic   = "strategic"
	InsightTypeTechnical   = "technical"
)

// Insight severity tiers
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Insight is a typed intelligence row derived from one meeting.
// Generation is idempotent per meeting: existing rows are never replaced.
type Insight struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID       uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index"`
	ProjectID       *int64    `json:"project_id,omitempty" gorm:"index"`
	InsightType     string    `json:"insight_type" gorm:"type:varchar(50);not null"`
	Title           string    `json:"title" gorm:"type:varchar(500)"`
	Description     string    `json:"description" gorm:"type:text"`
	ConfidenceScore float64   `json:"confidence_score"`
	Severity        string    `json:"severity,omitempty" gorm:"type:varchar(20)"`
	Resolved        bool      `json:"resolved" gorm:"default:false"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Insight) TableName() string {
	return "ai_insights"
}
