package embeddings

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
)

type fakeEmbedder struct {
	calls []string
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, input string) ([]float32, error) {
	f.calls = append(f.calls, input)
	return make([]float32, 384), nil
}

type fakeMeetingStore struct {
	meetings map[uuid.UUID]*entities.Meeting
}

func (f *fakeMeetingStore) ExistsByFirefliesID(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeMeetingStore) Create(context.Context, *entities.Meeting) error        { return nil }
func (f *fakeMeetingStore) CreateMinimal(context.Context, *entities.Meeting) error { return nil }
func (f *fakeMeetingStore) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	return f.meetings[id], nil
}
func (f *fakeMeetingStore) UpdateFields(context.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}
func (f *fakeMeetingStore) ListIDs(context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.meetings))
	for id := range f.meetings {
		ids = append(ids, id)
	}
	return ids, nil
}
func (f *fakeMeetingStore) ListRecent(context.Context, int) ([]*entities.Meeting, error) {
	return nil, nil
}

type fakeEmbeddingStore struct {
	rows map[uuid.UUID][]*entities.MeetingEmbedding
}

func newFakeEmbeddingStore() *fakeEmbeddingStore {
	return &fakeEmbeddingStore{rows: make(map[uuid.UUID][]*entities.MeetingEmbedding)}
}

func (f *fakeEmbeddingStore) CreateBatch(_ context.Context, embeddings []*entities.MeetingEmbedding) error {
	for _, e := range embeddings {
		f.rows[e.MeetingID] = append(f.rows[e.MeetingID], e)
	}
	return nil
}
func (f *fakeEmbeddingStore) DeleteByMeetingID(_ context.Context, meetingID uuid.UUID) error {
	delete(f.rows, meetingID)
	return nil
}
func (f *fakeEmbeddingStore) ListMeetingIDs(context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	return ids, nil
}
func (f *fakeEmbeddingStore) SearchSimilar(context.Context, pgvector.Vector, *int64, int, float64) ([]*repositories.ScoredChunk, error) {
	return nil, nil
}

func testMeeting() *entities.Meeting {
	m := entities.NewMeeting("ff-1")
	m.Title = "Planning"
	m.Summary = "We planned the launch."
	m.Participants = []string{"Alice", "Bob"}
	m.ActionItems = []string{"Jane: Review"}
	return m
}

func TestChunkText_SingleChunk(t *testing.T) {
	chunks := ChunkText("short text", 100)
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestChunkText_PrefersParagraphBoundaries(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60) + "\n\n" + strings.Repeat("c", 60)
	chunks := ChunkText(text, 130)

	require.Len(t, chunks, 2)
	// First two paragraphs fit together, the third starts a new chunk whole
	assert.Contains(t, chunks[0], "a")
	assert.Contains(t, chunks[0], "b")
	assert.NotContains(t, chunks[0], "c")
	assert.Equal(t, strings.Repeat("c", 60), chunks[1])
}

func TestChunkText_HardSplitsOversizedParagraph(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := ChunkText(text, 100)

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
	}
	assert.Equal(t, 250, len(chunks[0])+len(chunks[1])+len(chunks[2]))
}

func TestChunkText_Empty(t *testing.T) {
	assert.Nil(t, ChunkText("   ", 100))
}

func TestBuildContent_Sections(t *testing.T) {
	content := BuildContent(testMeeting())

	assert.Contains(t, content, "Meeting: Planning")
	assert.Contains(t, content, "Participants: Alice, Bob")
	assert.Contains(t, content, "We planned the launch.")
	assert.Contains(t, content, "Action Items:\n- Jane: Review")
	// Sections are separated by blank lines
	assert.Contains(t, content, "\n\n")
}

func TestEmbedMeeting_ContiguousChunkIndexes(t *testing.T) {
	meeting := testMeeting()
	store := newFakeEmbeddingStore()
	svc := NewService(&fakeEmbedder{}, &fakeMeetingStore{meetings: map[uuid.UUID]*entities.Meeting{meeting.ID: meeting}}, store, zap.NewNop())

	count, err := svc.EmbedMeeting(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.Positive(t, count)

	rows := store.rows[meeting.ID]
	require.Len(t, rows, count)
	for i, row := range rows {
		assert.Equal(t, i, row.ChunkIndex)
		meta := row.Metadata.Data()
		assert.Equal(t, "Planning", meta.MeetingTitle)
		assert.Equal(t, i+1, meta.ChunkNumber)
		assert.Equal(t, count, meta.TotalChunks)
		assert.True(t, meta.HasActionItems)
		assert.False(t, meta.HasRisks)
		assert.Equal(t, 2, meta.ParticipantsCount)
	}
}

func TestRegenerate_ReplacesAllChunks(t *testing.T) {
	meeting := testMeeting()
	store := newFakeEmbeddingStore()
	svc := NewService(&fakeEmbedder{}, &fakeMeetingStore{meetings: map[uuid.UUID]*entities.Meeting{meeting.ID: meeting}}, store, zap.NewNop())

	_, err := svc.EmbedMeeting(context.Background(), meeting.ID)
	require.NoError(t, err)
	firstIDs := make(map[uuid.UUID]bool)
	for _, row := range store.rows[meeting.ID] {
		firstIDs[row.ID] = true
	}

	count, err := svc.Regenerate(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.Len(t, store.rows[meeting.ID], count)

	// Every row is new, nothing from the first generation survives
	for _, row := range store.rows[meeting.ID] {
		assert.False(t, firstIDs[row.ID])
	}
}

func TestBackfillAll_OnlyMissingMeetings(t *testing.T) {
	embedded := testMeeting()
	missing := testMeeting()
	missing.FirefliesID = "ff-2"

	store := newFakeEmbeddingStore()
	meetings := &fakeMeetingStore{meetings: map[uuid.UUID]*entities.Meeting{
		embedded.ID: embedded,
		missing.ID:  missing,
	}}
	svc := NewService(&fakeEmbedder{}, meetings, store, zap.NewNop())

	_, err := svc.EmbedMeeting(context.Background(), embedded.ID)
	require.NoError(t, err)
	before := len(store.rows[embedded.ID])

	count, err := svc.BackfillAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, store.rows[embedded.ID], before)
	assert.NotEmpty(t, store.rows[missing.ID])
}
