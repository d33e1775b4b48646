package projects

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-intel/pkg/ai"
)

type fakeCompletion struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompletion) ChatCompletion(_ context.Context, _ []pkgai.Message) (string, error) {
	f.calls++
	return f.response, f.err
}

type fakeProjectStore struct {
	projects []*entities.Project
	listed   int
}

func (f *fakeProjectStore) List(context.Context) ([]*entities.Project, error) {
	f.listed++
	return f.projects, nil
}
func (f *fakeProjectStore) FindByID(context.Context, int64) (*entities.Project, error) {
	return nil, nil
}

type fakeMeetingStore struct {
	updates map[uuid.UUID]map[string]interface{}
}

func (f *fakeMeetingStore) ExistsByFirefliesID(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeMeetingStore) Create(context.Context, *entities.Meeting) error        { return nil }
func (f *fakeMeetingStore) CreateMinimal(context.Context, *entities.Meeting) error { return nil }
func (f *fakeMeetingStore) FindByID(context.Context, uuid.UUID) (*entities.Meeting, error) {
	return nil, nil
}
func (f *fakeMeetingStore) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if f.updates == nil {
		f.updates = make(map[uuid.UUID]map[string]interface{})
	}
	f.updates[id] = fields
	return nil
}
func (f *fakeMeetingStore) ListIDs(context.Context) ([]uuid.UUID, error) { return nil, nil }
func (f *fakeMeetingStore) ListRecent(context.Context, int) ([]*entities.Meeting, error) {
	return nil, nil
}

func apolloProject() *entities.Project {
	return &entities.Project{
		ID:           1,
		Name:         "Apollo",
		Keywords:     []string{"launch", "rocket", "payload", "telemetry"},
		Aliases:      []string{"project a"},
		Stakeholders: []string{"jane"},
	}
}

func meetingWith(title, summary string) *entities.Meeting {
	m := entities.NewMeeting("ff-1")
	m.Title = title
	m.Summary = summary
	return m
}

func TestMatchByKeywords_Signals(t *testing.T) {
	project := apolloProject()

	t.Run("name match", func(t *testing.T) {
		match := MatchByKeywords(meetingWith("Apollo weekly", ""), project)
		require.NotNil(t, match)
		assert.Equal(t, 1.0, match.Score)
		assert.Equal(t, "name", match.Signal)
	})

	t.Run("alias match", func(t *testing.T) {
		match := MatchByKeywords(meetingWith("Project A status", ""), project)
		require.NotNil(t, match)
		assert.Equal(t, 0.9, match.Score)
		assert.Equal(t, "alias", match.Signal)
	})

	t.Run("keyword overlap ratio", func(t *testing.T) {
		match := MatchByKeywords(meetingWith("Sync", "launch and rocket discussed"), project)
		require.NotNil(t, match)
		// 2 of 4 keywords hit
		assert.InDelta(t, 0.5*0.7, match.Score, 1e-9)
		assert.Equal(t, "keywords", match.Signal)
	})

	t.Run("stakeholder match", func(t *testing.T) {
		m := meetingWith("Sync", "")
		m.Participants = []string{"Jane Doe"}
		match := MatchByKeywords(m, project)
		require.NotNil(t, match)
		assert.Equal(t, 0.5, match.Score)
		assert.Equal(t, "stakeholder", match.Signal)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, MatchByKeywords(meetingWith("Unrelated", "nothing relevant"), project))
	})
}

func TestAssign_StrictlyAboveThreshold(t *testing.T) {
	// Heuristic and LLM both land exactly on the threshold: no assignment
	project := &entities.Project{ID: 1, Name: "Apollo"}
	llm := &fakeCompletion{response: `{"project_id": 1, "confidence": 0.6, "reasoning": "weak"}`}
	meetings := &fakeMeetingStore{}
	assigner := NewAssigner(&fakeProjectStore{projects: []*entities.Project{project}}, meetings, llm, nil, 0.6, zap.NewNop())

	got, err := assigner.Assign(context.Background(), meetingWith("Unrelated", ""))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, meetings.updates)
}

func TestAssign_JustAboveThreshold(t *testing.T) {
	project := &entities.Project{ID: 1, Name: "Apollo"}
	llm := &fakeCompletion{response: `{"project_id": 1, "confidence": 0.61, "reasoning": "mentions apollo deliverables"}`}
	meetings := &fakeMeetingStore{}
	assigner := NewAssigner(&fakeProjectStore{projects: []*entities.Project{project}}, meetings, llm, nil, 0.6, zap.NewNop())

	meeting := meetingWith("Unrelated", "")
	got, err := assigner.Assign(context.Background(), meeting)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), *got)

	fields := meetings.updates[meeting.ID]
	require.NotNil(t, fields)
	assert.Equal(t, int64(1), fields["project_id"])
	assert.Equal(t, 0.61, fields["assignment_confidence"])
}

func TestAssign_HeuristicWinsWithoutLLM(t *testing.T) {
	llm := &fakeCompletion{}
	meetings := &fakeMeetingStore{}
	assigner := NewAssigner(&fakeProjectStore{projects: []*entities.Project{apolloProject()}}, meetings, llm, nil, 0.6, zap.NewNop())

	got, err := assigner.Assign(context.Background(), meetingWith("Apollo weekly", ""))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), *got)
	assert.Zero(t, llm.calls)
}

func TestAssign_SkipsLinkedMeeting(t *testing.T) {
	linked := int64(9)
	meeting := meetingWith("Apollo weekly", "")
	meeting.ProjectID = &linked

	projectStore := &fakeProjectStore{projects: []*entities.Project{apolloProject()}}
	assigner := NewAssigner(projectStore, &fakeMeetingStore{}, &fakeCompletion{}, nil, 0.6, zap.NewNop())

	got, err := assigner.Assign(context.Background(), meeting)
	require.NoError(t, err)
	assert.Equal(t, linked, *got)
	assert.Zero(t, projectStore.listed)
}

func TestAssign_EmptyCatalog(t *testing.T) {
	assigner := NewAssigner(&fakeProjectStore{}, &fakeMeetingStore{}, &fakeCompletion{}, nil, 0.6, zap.NewNop())

	got, err := assigner.Assign(context.Background(), meetingWith("Apollo weekly", ""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAssign_RejectsUnknownProjectFromLLM(t *testing.T) {
	project := &entities.Project{ID: 1, Name: "Apollo"}
	llm := &fakeCompletion{response: `{"project_id": 42, "confidence": 0.95, "reasoning": "hallucinated"}`}
	assigner := NewAssigner(&fakeProjectStore{projects: []*entities.Project{project}}, &fakeMeetingStore{}, llm, nil, 0.6, zap.NewNop())

	got, err := assigner.Assign(context.Background(), meetingWith("Unrelated", ""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadCatalog_UsesCache(t *testing.T) {
	store := newStubStore()
	projectStore := &fakeProjectStore{projects: []*entities.Project{apolloProject()}}
	assigner := NewAssigner(projectStore, &fakeMeetingStore{}, &fakeCompletion{}, store, 0.6, zap.NewNop())

	_, err := assigner.loadCatalog(context.Background())
	require.NoError(t, err)
	_, err = assigner.loadCatalog(context.Background())
	require.NoError(t, err)

	// Second load is served from the cache
	assert.Equal(t, 1, projectStore.listed)
}

type stubStore struct {
	data map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{data: make(map[string]string)}
}

func (s *stubStore) Get(_ context.Context, key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}
func (s *stubStore) Set(_ context.Context, key string, value string, _ time.Duration) {
	s.data[key] = value
}
func (s *stubStore) Delete(_ context.Context, key string) { delete(s.data, key) }
