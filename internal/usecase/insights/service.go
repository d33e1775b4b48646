package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
	pkgai "github.com/johnquangdev/meeting-intel/pkg/ai"
)

const defaultSentiment = 0.5

// CompletionClient is the LLM surface the service needs
type CompletionClient interface {
	ChatCompletion(ctx context.Context, messages []pkgai.Message) (string, error)
}

// MeetingInput is the normalized transcript data fed into analysis
type MeetingInput struct {
	Title            string
	Date             time.Time
	Participants     []string
	Outline          string
	KnownActionItems []string
	KnownTopics      []string
}

// Analysis is the outcome of analyzing one meeting. Degraded is set when
// the LLM call failed and the result carries only source-provided data.
// SentimentAnalyzed reports whether Sentiment came from the model rather
// than the neutral fallback.
type Analysis struct {
	InsightSet
	Sentiment         float64
	SentimentAnalyzed bool
	Degraded          bool
}

// Service extracts structured intelligence from meeting transcripts
type Service struct {
	llm         CompletionClient
	meetingRepo repositories.MeetingRepository
	insightRepo repositories.InsightRepository
	parser      *Parser
	logger      *zap.Logger
}

// NewService creates a new insight service
func NewService(llm CompletionClient, meetingRepo repositories.MeetingRepository, insightRepo repositories.InsightRepository, logger *zap.Logger) *Service {
	return &Service{
		llm:         llm,
		meetingRepo: meetingRepo,
		insightRepo: insightRepo,
		parser:      NewParser(),
		logger:      logger,
	}
}

const analysisPrompt = `You are a senior project manager reviewing a meeting transcript summary. Analyze it and respond with exactly these numbered sections:

1. EXECUTIVE SUMMARY: 2-3 sentences capturing the purpose and outcome of the meeting.
2. ACTION ITEMS: one bullet per item as "- [Owner] action | Priority: high/medium/low | Due: date if mentioned".
3. KEY DECISIONS: one bullet per decision made.
4. RISKS IDENTIFIED: one bullet per risk, including severity words where appropriate.
5. MAIN TOPICS: one bullet per topic discussed.
6. KEY POINTS: one bullet per important point.
7. FOLLOW-UPS: one bullet per follow-up needed before the next meeting.
8. PROJECT REFERENCES: one bullet per project or initiative mentioned by name.
9. OVERALL SENTIMENT: a single number between 0.0 (very negative) and 1.0 (very positive) for the overall tone of the meeting.

Write "None" under any section with nothing to report.`

// AnalyzeMeeting runs one completion over the meeting data and parses the
// response. On completion failure it degrades to the source-provided
// summary, action items and topics with a neutral sentiment.
func (s *Service) AnalyzeMeeting(ctx context.Context, in MeetingInput) *Analysis {
	messages := []pkgai.Message{
		{Role: "system", Content: analysisPrompt},
		{Role: "user", Content: s.buildAnalysisInput(in)},
	}

	content, err := s.llm.ChatCompletion(ctx, messages)
	if err != nil {
		s.logger.Warn("⚠️ Analysis completion failed, falling back to source data",
			zap.String("title", in.Title),
			zap.Error(err),
		)
		return s.degradedAnalysis(in)
	}

	set := s.parser.Parse(content)
	if set.Summary == "" && in.Outline != "" {
		set.Summary = in.Outline
	}
	if len(set.Topics) == 0 {
		set.Topics = in.KnownTopics
	}

	analysis := &Analysis{InsightSet: *set, Sentiment: defaultSentiment}
	if score, ok := s.parser.Sentiment(content); ok {
		analysis.Sentiment = score
		analysis.SentimentAnalyzed = true
	}
	return analysis
}

func (s *Service) buildAnalysisInput(in MeetingInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", in.Title)
	if !in.Date.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", in.Date.Format("2006-01-02"))
	}
	if len(in.Participants) > 0 {
		fmt.Fprintf(&b, "Participants: %s\n", strings.Join(in.Participants, ", "))
	}
	b.WriteString("\nSummary:\n")
	b.WriteString(in.Outline)
	if len(in.KnownActionItems) > 0 {
		b.WriteString("\n\nAction items noted by the transcription service:\n")
		for _, item := range in.KnownActionItems {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return b.String()
}

func (s *Service) degradedAnalysis(in MeetingInput) *Analysis {
	set := InsightSet{
		Summary: in.Outline,
		Topics:  in.KnownTopics,
	}
	for _, item := range in.KnownActionItems {
		set.ActionItems = append(set.ActionItems, ActionItem{Action: item, Priority: "medium"})
	}
	return &Analysis{InsightSet: set, Sentiment: defaultSentiment, Degraded: true}
}

// GenerateInsights produces typed insight rows for one meeting. The
// operation is idempotent: when rows already exist their count is
// returned and nothing is regenerated.
func (s *Service) GenerateInsights(ctx context.Context, meetingID uuid.UUID) (int, error) {
	existing, err := s.insightRepo.CountByMeetingID(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		s.logger.Debug("Insights already generated, skipping",
			zap.String("meeting_id", meetingID.String()),
			zap.Int64("existing", existing),
		)
		return int(existing), nil
	}

	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	if meeting == nil {
		return 0, fmt.Errorf("meeting %s not found", meetingID)
	}

	insights := s.insightsFromLLM(ctx, meeting)
	if len(insights) == 0 {
		insights = s.insightsFromStoredFields(meeting)
	}
	if len(insights) == 0 {
		return 0, nil
	}

	if err := s.insightRepo.CreateBatch(ctx, insights); err != nil {
		return 0, err
	}

	s.logger.Info("💡 Generated insights",
		zap.String("meeting_id", meetingID.String()),
		zap.Int("count", len(insights)),
	)
	return len(insights), nil
}

const insightsPrompt = `You are an analyst extracting typed insights from a meeting record. Respond with a JSON array only. Each element must be an object with fields: "type" (one of risk, opportunity, decision, action_item, strategic, technical), "title" (short), "description", "confidence" (0 to 1), "severity" (critical, high, medium or low, for risks only).`

type llmInsight struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Severity    string  `json:"severity"`
}

var validInsightTypes = map[string]bool{
	entities.InsightTypeRisk:        true,
	entities.InsightTypeOpportunity: true,
	entities.InsightTypeDecision:    true,
	entities.InsightTypeActionItem:  true,
	entities.InsightTypeStrategic:   true,
	entities.InsightTypeTechnical:   true,
}

func (s *Service) insightsFromLLM(ctx context.Context, meeting *entities.Meeting) []*entities.Insight {
	input := fmt.Sprintf("Meeting: %s\nSummary: %s\nAction items: %s\nDecisions: %s\nRisks: %s",
		meeting.Title,
		meeting.Summary,
		strings.Join(meeting.ActionItems, "; "),
		strings.Join(meeting.Decisions, "; "),
		strings.Join(meeting.Risks, "; "),
	)

	content, err := s.llm.ChatCompletion(ctx, []pkgai.Message{
		{Role: "system", Content: insightsPrompt},
		{Role: "user", Content: input},
	})
	if err != nil {
		s.logger.Warn("⚠️ Insight completion failed, deriving from stored fields",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	var parsed []llmInsight
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		s.logger.Warn("⚠️ Unparseable insight response, deriving from stored fields",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	var insights []*entities.Insight
	for _, item := range parsed {
		if !validInsightTypes[item.Type] || item.Title == "" {
			continue
		}
		insights = append(insights, &entities.Insight{
			ID:              uuid.New(),
			MeetingID:       meeting.ID,
			ProjectID:       meeting.ProjectID,
			InsightType:     item.Type,
			Title:           item.Title,
			Description:     item.Description,
			ConfidenceScore: item.Confidence,
			Severity:        item.Severity,
		})
	}
	return insights
}

// insightsFromStoredFields derives typed rows directly from the meeting's
// stored lists when no LLM output is available
func (s *Service) insightsFromStoredFields(meeting *entities.Meeting) []*entities.Insight {
	var insights []*entities.Insight
	add := func(insightType, title, description, severity string) {
		insights = append(insights, &entities.Insight{
			ID:              uuid.New(),
			MeetingID:       meeting.ID,
			ProjectID:       meeting.ProjectID,
			InsightType:     insightType,
			Title:           title,
			Description:     description,
			ConfidenceScore: defaultSentiment,
			Severity:        severity,
		})
	}

	for _, item := range meeting.ActionItems {
		add(entities.InsightTypeActionItem, truncate(item, 200), item, "")
	}
	for _, decision := range meeting.Decisions {
		add(entities.InsightTypeDecision, truncate(decision, 200), decision, "")
	}
	for _, risk := range meeting.Risks {
		add(entities.InsightTypeRisk, truncate(risk, 200), risk, ExtractSeverity(risk))
	}
	return insights
}

// ProjectInsightSummary aggregates stored insights for one project
type ProjectInsightSummary struct {
	ProjectID      int64          `json:"project_id"`
	Total          int            `json:"total"`
	CountsByType   map[string]int `json:"counts_by_type"`
	CriticalItems  []string       `json:"critical_items"`
	OpenRisks      []string       `json:"open_risks"`
	PendingActions []string       `json:"pending_actions"`
}

// ProjectSummary aggregates every stored insight for one project
func (s *Service) ProjectSummary(ctx context.Context, projectID int64) (*ProjectInsightSummary, error) {
	rows, err := s.insightRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	summary := &ProjectInsightSummary{
		ProjectID:    projectID,
		Total:        len(rows),
		CountsByType: make(map[string]int),
	}
	for _, row := range rows {
		summary.CountsByType[row.InsightType]++
		if row.Severity == entities.SeverityCritical {
			summary.CriticalItems = append(summary.CriticalItems, row.Title)
		}
		if row.InsightType == entities.InsightTypeRisk && !row.Resolved {
			summary.OpenRisks = append(summary.OpenRisks, row.Title)
		}
		if row.InsightType == entities.InsightTypeActionItem && !row.Resolved {
			summary.PendingActions = append(summary.PendingActions, row.Title)
		}
	}
	return summary, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
