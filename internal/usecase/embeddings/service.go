package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
)

const (
	maxChunkSize = 8000
	previewSize  = 500
)

// EmbeddingClient is the embedding surface the service needs
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// Service generates and maintains meeting embeddings
type Service struct {
	embedder      EmbeddingClient
	meetingRepo   repositories.MeetingRepository
	embeddingRepo repositories.EmbeddingRepository
	logger        *zap.Logger
}

// NewService creates a new embedding service
func NewService(embedder EmbeddingClient, meetingRepo repositories.MeetingRepository, embeddingRepo repositories.EmbeddingRepository, logger *zap.Logger) *Service {
	return &Service{
		embedder:      embedder,
		meetingRepo:   meetingRepo,
		embeddingRepo: embeddingRepo,
		logger:        logger,
	}
}

// EmbedMeeting builds the meeting's content block, chunks it and stores one
// embedding row per chunk. Returns the number of chunks stored.
func (s *Service) EmbedMeeting(ctx context.Context, meetingID uuid.UUID) (int, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	if meeting == nil {
		return 0, fmt.Errorf("meeting %s not found", meetingID)
	}

	content := BuildContent(meeting)
	if strings.TrimSpace(content) == "" {
		return 0, nil
	}

	chunks := ChunkText(content, maxChunkSize)
	rows := make([]*entities.MeetingEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embedder.CreateEmbedding(ctx, chunk)
		if err != nil {
			return 0, err
		}
		rows = append(rows, &entities.MeetingEmbedding{
			ID:         uuid.New(),
			MeetingID:  meeting.ID,
			ChunkIndex: i,
			ChunkText:  chunk,
			Embedding:  pgvector.NewVector(vector),
			Metadata: datatypes.NewJSONType(entities.ChunkMetadata{
				MeetingTitle:      meeting.Title,
				MeetingDate:       meeting.Date.Format("2006-01-02"),
				ChunkPreview:      preview(chunk),
				ChunkNumber:       i + 1,
				TotalChunks:       len(chunks),
				HasActionItems:    len(meeting.ActionItems) > 0,
				HasDecisions:      len(meeting.Decisions) > 0,
				HasRisks:          len(meeting.Risks) > 0,
				ParticipantsCount: len(meeting.Participants),
			}),
		})
	}

	if err := s.embeddingRepo.CreateBatch(ctx, rows); err != nil {
		return 0, err
	}

	s.logger.Info("🧠 Embedded meeting",
		zap.String("meeting_id", meetingID.String()),
		zap.Int("chunks", len(rows)),
	)
	return len(rows), nil
}

// Regenerate removes every stored chunk for the meeting and embeds it again
func (s *Service) Regenerate(ctx context.Context, meetingID uuid.UUID) (int, error) {
	if err := s.embeddingRepo.DeleteByMeetingID(ctx, meetingID); err != nil {
		return 0, err
	}
	return s.EmbedMeeting(ctx, meetingID)
}

// BackfillAll embeds every meeting that has no stored embeddings yet.
// Returns the number of meetings embedded.
func (s *Service) BackfillAll(ctx context.Context) (int, error) {
	allIDs, err := s.meetingRepo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	embeddedIDs, err := s.embeddingRepo.ListMeetingIDs(ctx)
	if err != nil {
		return 0, err
	}

	embedded := make(map[uuid.UUID]bool, len(embeddedIDs))
	for _, id := range embeddedIDs {
		embedded[id] = true
	}

	count := 0
	for _, id := range allIDs {
		if embedded[id] {
			continue
		}
		if _, err := s.EmbedMeeting(ctx, id); err != nil {
			s.logger.Error("❌ Backfill embedding failed",
				zap.String("meeting_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		count++
	}

	if count > 0 {
		s.logger.Info("🧠 Backfilled embeddings", zap.Int("meetings", count))
	}
	return count, nil
}

// BuildContent renders the meeting into the text block that gets embedded
func BuildContent(meeting *entities.Meeting) string {
	var parts []string

	header := fmt.Sprintf("Meeting: %s", meeting.Title)
	if !meeting.Date.IsZero() {
		header += fmt.Sprintf("\nDate: %s", meeting.Date.Format("2006-01-02"))
	}
	parts = append(parts, header)

	if len(meeting.Participants) > 0 {
		parts = append(parts, "Participants: "+strings.Join(meeting.Participants, ", "))
	}
	if meeting.Summary != "" {
		parts = append(parts, "Summary:\n"+meeting.Summary)
	}
	if len(meeting.Topics) > 0 {
		parts = append(parts, "Topics: "+strings.Join(meeting.Topics, ", "))
	}
	if len(meeting.ActionItems) > 0 {
		parts = append(parts, "Action Items:\n- "+strings.Join(meeting.ActionItems, "\n- "))
	}
	if len(meeting.Decisions) > 0 {
		parts = append(parts, "Decisions:\n- "+strings.Join(meeting.Decisions, "\n- "))
	}
	if len(meeting.Risks) > 0 {
		parts = append(parts, "Risks:\n- "+strings.Join(meeting.Risks, "\n- "))
	}

	return strings.Join(parts, "\n\n")
}

// ChunkText splits text into chunks of at most maxSize characters,
// preferring paragraph boundaries. A single paragraph larger than maxSize
// is hard-split.
func ChunkText(text string, maxSize int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		if paragraph == "" {
			continue
		}

		if len(paragraph) > maxSize {
			flush()
			for start := 0; start < len(paragraph); start += maxSize {
				end := start + maxSize
				if end > len(paragraph) {
					end = len(paragraph)
				}
				chunks = append(chunks, strings.TrimSpace(paragraph[start:end]))
			}
			continue
		}

		// +2 accounts for the paragraph separator
		if current.Len() > 0 && current.Len()+len(paragraph)+2 > maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return chunks
}

func preview(chunk string) string {
	if len(chunk) <= previewSize {
		return chunk
	}
	return chunk[:previewSize]
}
