package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
	pkgai "github.com/johnquangdev/meeting-intel/pkg/ai"
)

const (
	recentWindow       = 30
	maxContextMeetings = 5
	semanticLimit      = 8
	semanticThreshold  = 0.3
)

// CompletionClient is the LLM surface the chat service needs
type CompletionClient interface {
	ChatCompletion(ctx context.Context, messages []pkgai.Message) (string, error)
}

// EmbeddingClient embeds the question for the semantic path
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}

// Service answers questions over stored meeting intelligence
type Service struct {
	llm           CompletionClient
	embedder      EmbeddingClient
	meetingRepo   repositories.MeetingRepository
	insightRepo   repositories.InsightRepository
	embeddingRepo repositories.EmbeddingRepository
	logger        *zap.Logger
}

// NewService creates a new chat service
func NewService(llm CompletionClient, embedder EmbeddingClient, meetingRepo repositories.MeetingRepository, insightRepo repositories.InsightRepository, embeddingRepo repositories.EmbeddingRepository, logger *zap.Logger) *Service {
	return &Service{
		llm:           llm,
		embedder:      embedder,
		meetingRepo:   meetingRepo,
		insightRepo:   insightRepo,
		embeddingRepo: embeddingRepo,
		logger:        logger,
	}
}

const answerPrompt = `You are a meeting intelligence assistant. Answer the question using only the meeting context provided. When the context does not contain the answer, say so. Cite meeting titles when referencing specific meetings.`

// Answer finds the meetings most relevant to the question by keyword
// scoring over the recent window, assembles their context and asks the LLM
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question cannot be empty")
	}

	recent, err := s.meetingRepo.ListRecent(ctx, recentWindow)
	if err != nil {
		return "", err
	}
	if len(recent) == 0 {
		return "No meetings have been synced yet.", nil
	}

	matched := scoreMeetings(question, recent)
	if len(matched) == 0 {
		// Nothing matched the keywords, fall back to the most recent meetings
		matched = recent
	}
	if len(matched) > maxContextMeetings {
		matched = matched[:maxContextMeetings]
	}

	contextBlock, err := s.buildContext(ctx, matched)
	if err != nil {
		return "", err
	}

	return s.llm.ChatCompletion(ctx, []pkgai.Message{
		{Role: "system", Content: answerPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, question)},
	})
}

// AnswerSemantic embeds the question and retrieves the nearest chunks via
// vector search before asking the LLM
func (s *Service) AnswerSemantic(ctx context.Context, question string, projectID *int64) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question cannot be empty")
	}

	vector, err := s.embedder.CreateEmbedding(ctx, question)
	if err != nil {
		return "", err
	}

	chunks, err := s.embeddingRepo.SearchSimilar(ctx, pgvector.NewVector(vector), projectID, semanticLimit, semanticThreshold)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "No relevant meeting content was found for that question.", nil
	}

	var b strings.Builder
	for _, chunk := range chunks {
		meta := chunk.Metadata.Data()
		fmt.Fprintf(&b, "--- %s (%s, similarity %.2f) ---\n%s\n\n",
			meta.MeetingTitle, meta.MeetingDate, chunk.Similarity, chunk.ChunkText)
	}

	return s.llm.ChatCompletion(ctx, []pkgai.Message{
		{Role: "system", Content: answerPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", b.String(), question)},
	})
}

// scoreMeetings ranks meetings by keyword hits in title, summary and topics
func scoreMeetings(question string, meetings []*entities.Meeting) []*entities.Meeting {
	keywords := extractKeywords(question)
	if len(keywords) == 0 {
		return nil
	}

	type scored struct {
		meeting *entities.Meeting
		score   int
	}
	var hits []scored
	for _, m := range meetings {
		haystack := strings.ToLower(m.Title + " " + m.Summary + " " + strings.Join(m.Topics, " "))
		score := 0
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{meeting: m, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]*entities.Meeting, len(hits))
	for i, h := range hits {
		out[i] = h.meeting
	}
	return out
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "how": true, "why": true, "did": true, "does": true,
	"about": true, "with": true, "from": true, "that": true, "this": true,
	"have": true, "has": true, "our": true, "any": true, "all": true,
}

func extractKeywords(question string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if len(word) < 3 || stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// buildContext assembles the textual context block for the matched meetings
func (s *Service) buildContext(ctx context.Context, meetings []*entities.Meeting) (string, error) {
	ids := make([]uuid.UUID, len(meetings))
	for i, m := range meetings {
		ids[i] = m.ID
	}

	insightRows, err := s.insightRepo.ListByMeetingIDs(ctx, ids)
	if err != nil {
		return "", err
	}
	insightsByMeeting := make(map[uuid.UUID][]*entities.Insight)
	for _, row := range insightRows {
		insightsByMeeting[row.MeetingID] = append(insightsByMeeting[row.MeetingID], row)
	}

	var b strings.Builder
	for _, m := range meetings {
		fmt.Fprintf(&b, "--- %s (%s) ---\n", m.Title, m.Date.Format("2006-01-02"))
		if len(m.Participants) > 0 {
			fmt.Fprintf(&b, "Participants: %s\n", strings.Join(m.Participants, ", "))
		}
		if m.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", m.Summary)
		}
		if len(m.ActionItems) > 0 {
			fmt.Fprintf(&b, "Action items: %s\n", strings.Join(m.ActionItems, "; "))
		}
		if len(m.Decisions) > 0 {
			fmt.Fprintf(&b, "Decisions: %s\n", strings.Join(m.Decisions, "; "))
		}
		for _, insight := range insightsByMeeting[m.ID] {
			fmt.Fprintf(&b, "Insight (%s): %s\n", insight.InsightType, insight.Title)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
