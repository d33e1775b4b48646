package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
	"github.com/johnquangdev/meeting-intel/internal/usecase/insights"
	"github.com/johnquangdev/meeting-intel/pkg/config"
	"github.com/johnquangdev/meeting-intel/pkg/fireflies"
)

// RunStats summarizes one pipeline run. It is a value, returned per run
// and never shared.
type RunStats struct {
	TotalFetched int       `json:"total_fetched"`
	New          int       `json:"new"`
	Existing     int       `json:"existing"`
	Processed    int       `json:"processed"`
	Failed       int       `json:"failed"`
	Backfilled   int       `json:"backfilled"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	LastError    string    `json:"last_error,omitempty"`
}

// TranscriptSource fetches transcripts from the transcription API
type TranscriptSource interface {
	FetchWindow(ctx context.Context, since time.Time, minCount int) ([]fireflies.RawTranscript, error)
	FetchByID(ctx context.Context, id string) (*fireflies.RawTranscript, error)
}

// Analyzer extracts structured intelligence from one meeting
type Analyzer interface {
	AnalyzeMeeting(ctx context.Context, in insights.MeetingInput) *insights.Analysis
	GenerateInsights(ctx context.Context, meetingID uuid.UUID) (int, error)
}

// Embedder maintains meeting embeddings
type Embedder interface {
	EmbedMeeting(ctx context.Context, meetingID uuid.UUID) (int, error)
	BackfillAll(ctx context.Context) (int, error)
}

// ProjectAssigner links meetings to projects
type ProjectAssigner interface {
	Assign(ctx context.Context, meeting *entities.Meeting) (*int64, error)
}

// ObjectStore uploads rendered transcript documents
type ObjectStore interface {
	UploadMarkdown(ctx context.Context, objectName string, content string) (string, error)
}

// Service orchestrates the full sync pipeline. It assumes a single writer:
// the dedup check and the insert are not guarded against concurrent runs,
// the unique index on fireflies_id backstops that assumption.
type Service struct {
	source      TranscriptSource
	analyzer    Analyzer
	embedder    Embedder
	assigner    ProjectAssigner
	store       ObjectStore
	meetingRepo repositories.MeetingRepository
	contactRepo repositories.ContactRepository
	cfg         config.SyncConfig
	logger      *zap.Logger

	mu        gosync.Mutex
	lastStats *RunStats
}

// NewService creates a new sync service. A nil store or assigner disables
// that stage.
func NewService(
	source TranscriptSource,
	analyzer Analyzer,
	embedder Embedder,
	assigner ProjectAssigner,
	store ObjectStore,
	meetingRepo repositories.MeetingRepository,
	contactRepo repositories.ContactRepository,
	cfg config.SyncConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		source:      source,
		analyzer:    analyzer,
		embedder:    embedder,
		assigner:    assigner,
		store:       store,
		meetingRepo: meetingRepo,
		contactRepo: contactRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run executes one full pipeline pass: fetch the transcript window,
// process each new transcript, then backfill missing embeddings.
// Per-transcript failures are counted and never abort the batch.
func (s *Service) Run(ctx context.Context, hoursBack, minMeetings int) (*RunStats, error) {
	stats := &RunStats{StartedAt: time.Now().UTC()}
	since := stats.StartedAt.Add(-time.Duration(hoursBack) * time.Hour)

	s.logger.Info("🔄 Starting sync run",
		zap.Int("hours_back", hoursBack),
		zap.Int("min_meetings", minMeetings),
	)

	transcripts, err := s.source.FetchWindow(ctx, since, minMeetings)
	if err != nil {
		stats.LastError = err.Error()
		stats.FinishedAt = time.Now().UTC()
		s.saveStats(stats)
		return stats, err
	}
	stats.TotalFetched = len(transcripts)

	for i := range transcripts {
		t := &transcripts[i]
		exists, err := s.meetingRepo.ExistsByFirefliesID(ctx, t.ID)
		if err != nil {
			stats.Failed++
			stats.LastError = err.Error()
			continue
		}
		if exists {
			stats.Existing++
			continue
		}

		stats.New++
		if err := s.processTranscript(ctx, t); err != nil {
			stats.Failed++
			stats.LastError = err.Error()
			s.logger.Error("❌ Transcript processing failed",
				zap.String("fireflies_id", t.ID),
				zap.String("title", t.Title),
				zap.Error(err),
			)
			continue
		}
		stats.Processed++
	}

	backfilled, err := s.embedder.BackfillAll(ctx)
	if err != nil {
		stats.LastError = err.Error()
	}
	stats.Backfilled = backfilled

	stats.FinishedAt = time.Now().UTC()
	s.saveStats(stats)

	s.logger.Info("✅ Sync run finished",
		zap.Int("fetched", stats.TotalFetched),
		zap.Int("new", stats.New),
		zap.Int("existing", stats.Existing),
		zap.Int("processed", stats.Processed),
		zap.Int("failed", stats.Failed),
		zap.Int("backfilled", stats.Backfilled),
		zap.Duration("elapsed", stats.FinishedAt.Sub(stats.StartedAt)),
	)
	return stats, nil
}

// SyncOne processes a single transcript by source id, used by the webhook
// path. Already stored transcripts are skipped.
func (s *Service) SyncOne(ctx context.Context, transcriptID string) error {
	exists, err := s.meetingRepo.ExistsByFirefliesID(ctx, transcriptID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("Transcript already stored, skipping",
			zap.String("fireflies_id", transcriptID),
		)
		return nil
	}

	t, err := s.source.FetchByID(ctx, transcriptID)
	if err != nil {
		return err
	}
	return s.processTranscript(ctx, t)
}

// LastStats returns a copy of the most recent run's stats, or nil when no
// run has completed yet
func (s *Service) LastStats() *RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastStats == nil {
		return nil
	}
	copied := *s.lastStats
	return &copied
}

func (s *Service) saveStats(stats *RunStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *stats
	s.lastStats = &copied
}

// processTranscript runs one transcript through normalize, analyze,
// render, store, persist, assign, insight and embed stages
func (s *Service) processTranscript(ctx context.Context, t *fireflies.RawTranscript) error {
	meeting := s.normalize(t)

	if outline := t.Outline(); outline != "" {
		analysis := s.analyzer.AnalyzeMeeting(ctx, insights.MeetingInput{
			Title:            t.Title,
			Date:             t.Date.Time,
			Participants:     meeting.Participants,
			Outline:          outline,
			KnownActionItems: t.ActionItems(),
			KnownTopics:      t.Topics(),
		})
		s.applyAnalysis(meeting, analysis)
	}

	if s.store != nil {
		objectName := fmt.Sprintf("transcripts/%s.md", t.ID)
		url, err := s.store.UploadMarkdown(ctx, objectName, RenderMarkdown(meeting))
		if err != nil {
			s.logger.Warn("⚠️ Markdown upload failed",
				zap.String("fireflies_id", t.ID),
				zap.Error(err),
			)
		} else {
			meeting.StorageBucketPath = url
		}
	}

	if err := s.insertMeeting(ctx, meeting); err != nil {
		return err
	}

	s.upsertContacts(ctx, t)

	if s.assigner != nil {
		if _, err := s.assigner.Assign(ctx, meeting); err != nil {
			s.logger.Warn("⚠️ Project assignment failed",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
	}

	if _, err := s.analyzer.GenerateInsights(ctx, meeting.ID); err != nil {
		s.logger.Warn("⚠️ Insight generation failed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
	}

	if _, err := s.embedder.EmbedMeeting(ctx, meeting.ID); err != nil {
		s.logger.Warn("⚠️ Embedding failed, backfill will retry",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
	}

	return s.meetingRepo.UpdateFields(ctx, meeting.ID, map[string]interface{}{
		"processing_status": entities.MeetingStatusProcessed,
	})
}

// normalize maps the raw transcript onto a meeting entity, defaulting
// the title and date when the source omits them
func (s *Service) normalize(t *fireflies.RawTranscript) *entities.Meeting {
	meeting := entities.NewMeeting(t.ID)
	meeting.Title = t.Title
	if meeting.Title == "" {
		meeting.Title = "Untitled Meeting"
	}
	meeting.Date = t.Date.Time
	if meeting.Date.IsZero() {
		meeting.Date = time.Now().UTC()
	}
	meeting.DurationMinutes = t.DurationMinutes()
	meeting.Participants = t.Participants()
	meeting.Summary = t.Outline()
	meeting.ActionItems = t.ActionItems()
	meeting.Topics = t.Topics()
	meeting.TranscriptURL = t.TranscriptURL
	if score, ok := t.SentimentScore(); ok {
		meeting.SentimentScore = score
	} else {
		meeting.SentimentScore = 0.5
	}
	meeting.ProcessingVersion = s.cfg.ProcessingVersion

	var raw map[string]interface{}
	if b, err := json.Marshal(t); err == nil {
		if err := json.Unmarshal(b, &raw); err == nil {
			meeting.RawMetadata = datatypes.NewJSONType(raw)
		}
	}
	return meeting
}

// applyAnalysis overlays the analysis result onto the meeting, preferring
// the richer analysis output over the source-provided fields
func (s *Service) applyAnalysis(meeting *entities.Meeting, analysis *insights.Analysis) {
	if analysis.Summary != "" {
		meeting.Summary = analysis.Summary
	}
	if len(analysis.ActionItems) > 0 {
		items := make([]string, 0, len(analysis.ActionItems))
		for _, item := range analysis.ActionItems {
			items = append(items, insights.FormatActionItem(item))
		}
		meeting.ActionItems = items
	}
	if len(analysis.Decisions) > 0 {
		meeting.Decisions = analysis.Decisions
	}
	if len(analysis.Risks) > 0 {
		risks := make([]string, 0, len(analysis.Risks))
		for _, risk := range analysis.Risks {
			risks = append(risks, insights.FormatRisk(risk))
		}
		meeting.Risks = risks
	}
	if len(analysis.Topics) > 0 {
		meeting.Topics = analysis.Topics
	}
	if len(analysis.ProjectRefs) > 0 {
		meeting.Tags = analysis.ProjectRefs
	}
	if analysis.SentimentAnalyzed {
		meeting.SentimentScore = analysis.Sentiment
	}
}

// insertMeeting tries the full insert first. On failure it retries with
// the minimal field set and best-effort updates the rest.
func (s *Service) insertMeeting(ctx context.Context, meeting *entities.Meeting) error {
	err := s.meetingRepo.Create(ctx, meeting)
	if err == nil {
		return nil
	}
	s.logger.Warn("⚠️ Full insert failed, retrying with minimal fields",
		zap.String("fireflies_id", meeting.FirefliesID),
		zap.Error(err),
	)

	if err := s.meetingRepo.CreateMinimal(ctx, meeting); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"participants":    meeting.Participants,
		"action_items":    meeting.ActionItems,
		"decisions":       meeting.Decisions,
		"risks":           meeting.Risks,
		"topics":          meeting.Topics,
		"tags":            meeting.Tags,
		"sentiment_score": meeting.SentimentScore,
	}
	if meeting.StorageBucketPath != "" {
		fields["storage_bucket_path"] = meeting.StorageBucketPath
	}
	if err := s.meetingRepo.UpdateFields(ctx, meeting.ID, fields); err != nil {
		s.logger.Warn("⚠️ Post-insert update failed, minimal record kept",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// upsertContacts records participant emails as contacts
func (s *Service) upsertContacts(ctx context.Context, t *fireflies.RawTranscript) {
	if s.contactRepo == nil {
		return
	}
	emails := t.ParticipantList
	if len(emails) == 0 && t.OrganizerEmail != "" {
		emails = []string{t.OrganizerEmail}
	}
	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if !strings.Contains(email, "@") {
			continue
		}
		contact := &entities.Contact{
			ID:        uuid.New(),
			Email:     email,
			FirstName: nameFromEmail(email),
		}
		if err := s.contactRepo.UpsertByEmail(ctx, contact); err != nil {
			s.logger.Debug("Contact upsert failed",
				zap.String("email", email),
				zap.Error(err),
			)
		}
	}
}

func nameFromEmail(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)

	words := strings.Fields(local)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
