package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
	pkgai "github.com/johnquangdev/meeting-intel/pkg/ai"
)

type fakeCompletion struct {
	response string
	prompts  []string
	calls    int
}

func (f *fakeCompletion) ChatCompletion(_ context.Context, messages []pkgai.Message) (string, error) {
	f.calls++
	for _, m := range messages {
		f.prompts = append(f.prompts, m.Content)
	}
	return f.response, nil
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return make([]float32, 384), nil
}

type fakeMeetingStore struct {
	recent []*entities.Meeting
}

func (f *fakeMeetingStore) ExistsByFirefliesID(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeMeetingStore) Create(context.Context, *entities.Meeting) error        { return nil }
func (f *fakeMeetingStore) CreateMinimal(context.Context, *entities.Meeting) error { return nil }
func (f *fakeMeetingStore) FindByID(context.Context, uuid.UUID) (*entities.Meeting, error) {
	return nil, nil
}
func (f *fakeMeetingStore) UpdateFields(context.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}
func (f *fakeMeetingStore) ListIDs(context.Context) ([]uuid.UUID, error) { return nil, nil }
func (f *fakeMeetingStore) ListRecent(context.Context, int) ([]*entities.Meeting, error) {
	return f.recent, nil
}

type fakeInsightStore struct {
	rows []*entities.Insight
}

func (f *fakeInsightStore) CountByMeetingID(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeInsightStore) CreateBatch(context.Context, []*entities.Insight) error { return nil }
func (f *fakeInsightStore) ListByMeetingIDs(context.Context, []uuid.UUID) ([]*entities.Insight, error) {
	return f.rows, nil
}
func (f *fakeInsightStore) ListByProjectID(context.Context, int64) ([]*entities.Insight, error) {
	return nil, nil
}

type fakeEmbeddingStore struct {
	chunks    []*repositories.ScoredChunk
	projectID *int64
}

func (f *fakeEmbeddingStore) CreateBatch(context.Context, []*entities.MeetingEmbedding) error {
	return nil
}
func (f *fakeEmbeddingStore) DeleteByMeetingID(context.Context, uuid.UUID) error { return nil }
func (f *fakeEmbeddingStore) ListMeetingIDs(context.Context) ([]uuid.UUID, error) {
	return nil, nil
}
func (f *fakeEmbeddingStore) SearchSimilar(_ context.Context, _ pgvector.Vector, projectID *int64, _ int, _ float64) ([]*repositories.ScoredChunk, error) {
	f.projectID = projectID
	return f.chunks, nil
}

func storedMeeting(title, summary string, topics ...string) *entities.Meeting {
	m := entities.NewMeeting(uuid.NewString())
	m.Title = title
	m.Summary = summary
	m.Topics = topics
	m.Date = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return m
}

func newTestService(llm *fakeCompletion, meetings *fakeMeetingStore, insightStore *fakeInsightStore, embeddings *fakeEmbeddingStore) *Service {
	return NewService(llm, &fakeEmbedder{}, meetings, insightStore, embeddings, zap.NewNop())
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	svc := newTestService(&fakeCompletion{}, &fakeMeetingStore{}, &fakeInsightStore{}, nil)

	_, err := svc.Answer(context.Background(), "   ")
	assert.Error(t, err)
}

func TestAnswer_NoMeetings(t *testing.T) {
	llm := &fakeCompletion{}
	svc := newTestService(llm, &fakeMeetingStore{}, &fakeInsightStore{}, nil)

	answer, err := svc.Answer(context.Background(), "What did we decide about the launch?")
	require.NoError(t, err)
	assert.Equal(t, "No meetings have been synced yet.", answer)
	assert.Zero(t, llm.calls)
}

func TestAnswer_KeywordMatchedContext(t *testing.T) {
	launch := storedMeeting("Launch planning", "We agreed on the rollout schedule.", "launch")
	launch.ActionItems = []string{"Jane: Review the proposal"}
	unrelated := storedMeeting("HR policies", "Vacation policy updates.")

	llm := &fakeCompletion{response: "The launch moves to July 15."}
	svc := newTestService(llm, &fakeMeetingStore{recent: []*entities.Meeting{unrelated, launch}}, &fakeInsightStore{}, nil)

	answer, err := svc.Answer(context.Background(), "What did we decide about the launch?")
	require.NoError(t, err)
	assert.Equal(t, "The launch moves to July 15.", answer)

	prompt := llm.prompts[len(llm.prompts)-1]
	assert.Contains(t, prompt, "Launch planning")
	assert.Contains(t, prompt, "Jane: Review the proposal")
	assert.NotContains(t, prompt, "HR policies")
}

func TestAnswer_FallsBackToRecent(t *testing.T) {
	recent := storedMeeting("Weekly sync", "General updates.")
	llm := &fakeCompletion{response: "Nothing specific was discussed."}
	svc := newTestService(llm, &fakeMeetingStore{recent: []*entities.Meeting{recent}}, &fakeInsightStore{}, nil)

	// No keyword overlaps with the stored meeting
	_, err := svc.Answer(context.Background(), "Tell me about kubernetes migrations")
	require.NoError(t, err)
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.prompts[len(llm.prompts)-1], "Weekly sync")
}

func TestAnswer_CapsContextMeetings(t *testing.T) {
	var recent []*entities.Meeting
	for i := 0; i < 10; i++ {
		recent = append(recent, storedMeeting("Launch review", "launch status"))
	}
	llm := &fakeCompletion{response: "ok"}
	svc := newTestService(llm, &fakeMeetingStore{recent: recent}, &fakeInsightStore{}, nil)

	_, err := svc.Answer(context.Background(), "launch status?")
	require.NoError(t, err)

	prompt := llm.prompts[len(llm.prompts)-1]
	assert.Equal(t, maxContextMeetings, strings.Count(prompt, "--- Launch review"))
}

func TestAnswer_IncludesInsights(t *testing.T) {
	meeting := storedMeeting("Launch planning", "rollout schedule", "launch")
	insightStore := &fakeInsightStore{rows: []*entities.Insight{
		{MeetingID: meeting.ID, InsightType: entities.InsightTypeRisk, Title: "Vendor delay"},
	}}
	llm := &fakeCompletion{response: "ok"}
	svc := newTestService(llm, &fakeMeetingStore{recent: []*entities.Meeting{meeting}}, insightStore, nil)

	_, err := svc.Answer(context.Background(), "any launch risks?")
	require.NoError(t, err)
	assert.Contains(t, llm.prompts[len(llm.prompts)-1], "Insight (risk): Vendor delay")
}

func TestExtractKeywords(t *testing.T) {
	keywords := extractKeywords("What did we decide about the Q3 launch?")
	assert.NotContains(t, keywords, "what")
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "we")
	assert.Contains(t, keywords, "decide")
	assert.Contains(t, keywords, "launch")
}

func TestScoreMeetings_OrdersByHits(t *testing.T) {
	oneHit := storedMeeting("Budget review", "launch mentioned once")
	twoHits := storedMeeting("Launch planning", "launch rollout schedule", "schedule")

	matched := scoreMeetings("launch schedule", []*entities.Meeting{oneHit, twoHits})
	require.Len(t, matched, 2)
	assert.Equal(t, "Launch planning", matched[0].Title)
}

func TestAnswerSemantic_BuildsChunkContext(t *testing.T) {
	chunk := &repositories.ScoredChunk{Similarity: 0.82}
	chunk.ChunkText = "We agreed to ship on July 15."
	chunk.Metadata = datatypes.NewJSONType(entities.ChunkMetadata{
		MeetingTitle: "Launch planning",
		MeetingDate:  "2025-06-01",
	})

	embeddings := &fakeEmbeddingStore{chunks: []*repositories.ScoredChunk{chunk}}
	llm := &fakeCompletion{response: "Ship date is July 15."}
	svc := newTestService(llm, &fakeMeetingStore{}, &fakeInsightStore{}, embeddings)

	projectID := int64(7)
	answer, err := svc.AnswerSemantic(context.Background(), "When do we ship?", &projectID)
	require.NoError(t, err)
	assert.Equal(t, "Ship date is July 15.", answer)

	require.NotNil(t, embeddings.projectID)
	assert.Equal(t, int64(7), *embeddings.projectID)

	prompt := llm.prompts[len(llm.prompts)-1]
	assert.Contains(t, prompt, "Launch planning")
	assert.Contains(t, prompt, "similarity 0.82")
	assert.Contains(t, prompt, "We agreed to ship on July 15.")
}

func TestAnswerSemantic_NoChunks(t *testing.T) {
	llm := &fakeCompletion{}
	svc := newTestService(llm, &fakeMeetingStore{}, &fakeInsightStore{}, &fakeEmbeddingStore{})

	answer, err := svc.AnswerSemantic(context.Background(), "When do we ship?", nil)
	require.NoError(t, err)
	assert.Equal(t, "No relevant meeting content was found for that question.", answer)
	assert.Zero(t, llm.calls)
}
