package dto

// SyncRequest triggers a pipeline run
type SyncRequest struct {
	HoursBack   int `json:"hours_back" validate:"gte=0,lte=8760"`
	MinMeetings int `json:"min_meetings" validate:"gte=0,lte=500"`
}

// AskRequest asks a question over stored meeting intelligence
type AskRequest struct {
	Question  string `json:"question" validate:"required,min=3"`
	ProjectID *int64 `json:"project_id,omitempty"`
	Semantic  bool   `json:"semantic,omitempty"`
}

// AskResponse carries the assistant answer
type AskResponse struct {
	Answer string `json:"answer"`
}

// TranscriptWebhookRequest is the payload of a transcript-ready webhook
type TranscriptWebhookRequest struct {
	TranscriptID string `json:"transcript_id" validate:"required"`
	EventType    string `json:"event_type,omitempty"`
}
