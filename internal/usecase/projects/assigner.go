package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
	"github.com/johnquangdev/meeting-intel/internal/infrastructure/cache"
	pkgai "github.com/johnquangdev/meeting-intel/pkg/ai"
)

// Heuristic signal strengths, strongest wins
const (
	scoreNameMatch        = 1.0
	scoreAliasMatch       = 0.9
	scoreKeywordWeight    = 0.7
	scoreStakeholderMatch = 0.5
)

const (
	catalogCacheKey = "projects:catalog"
	catalogCacheTTL = 10 * time.Minute
)

// CompletionClient is the LLM surface the assigner needs
type CompletionClient interface {
	ChatCompletion(ctx context.Context, messages []pkgai.Message) (string, error)
}

// Match is one scored candidate from the heuristic pass
type Match struct {
	ProjectID int64   `json:"project_id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Signal    string  `json:"signal"`
}

// Assigner links meetings to catalog projects
type Assigner struct {
	projectRepo repositories.ProjectRepository
	meetingRepo repositories.MeetingRepository
	llm         CompletionClient
	store       cache.Store
	validate    *validator.Validate
	threshold   float64
	logger      *zap.Logger
}

// NewAssigner creates a new project assigner. A nil store disables
// catalog caching.
func NewAssigner(projectRepo repositories.ProjectRepository, meetingRepo repositories.MeetingRepository, llm CompletionClient, store cache.Store, threshold float64, logger *zap.Logger) *Assigner {
	return &Assigner{
		projectRepo: projectRepo,
		meetingRepo: meetingRepo,
		llm:         llm,
		store:       store,
		validate:    validator.New(),
		threshold:   threshold,
		logger:      logger,
	}
}

// Assign links the meeting to the best matching project when confidence is
// strictly above the threshold. Already linked meetings are left untouched.
// Returns the linked project id, or nil when no assignment was made.
func (a *Assigner) Assign(ctx context.Context, meeting *entities.Meeting) (*int64, error) {
	if meeting.ProjectID != nil {
		return meeting.ProjectID, nil
	}

	catalog, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, nil
	}

	best := a.bestHeuristicMatch(meeting, catalog)
	confidence := 0.0
	var projectID *int64
	signals := map[string]interface{}{}

	if best != nil {
		confidence = best.Score
		signals["method"] = "heuristic"
		signals["signal"] = best.Signal
		signals["matched_name"] = best.Name
		if best.Score > a.threshold {
			projectID = &best.ProjectID
		}
	}

	if projectID == nil {
		llmResult := a.llmAssignment(ctx, meeting, catalog)
		if llmResult != nil && llmResult.Confidence > a.threshold {
			projectID = &llmResult.ProjectID
			confidence = llmResult.Confidence
			signals["method"] = "llm"
			signals["reasoning"] = llmResult.Reasoning
		}
	}

	if projectID == nil {
		return nil, nil
	}

	fields := map[string]interface{}{
		"project_id":            *projectID,
		"assignment_confidence": confidence,
		"assignment_signals":    mustJSON(signals),
	}
	if err := a.meetingRepo.UpdateFields(ctx, meeting.ID, fields); err != nil {
		return nil, err
	}

	meeting.ProjectID = projectID
	meeting.AssignmentConfidence = &confidence

	a.logger.Info("🔗 Assigned meeting to project",
		zap.String("meeting_id", meeting.ID.String()),
		zap.Int64("project_id", *projectID),
		zap.Float64("confidence", confidence),
	)
	return projectID, nil
}

// MatchByKeywords scores one project against the meeting text. The
// strongest signal wins: exact name, alias, keyword overlap, stakeholder.
func MatchByKeywords(meeting *entities.Meeting, project *entities.Project) *Match {
	text := strings.ToLower(strings.Join([]string{
		meeting.Title,
		meeting.Summary,
		strings.Join(meeting.Topics, " "),
	}, " "))
	participants := strings.ToLower(strings.Join(meeting.Participants, " "))

	match := &Match{ProjectID: project.ID, Name: project.Name}

	if name := strings.ToLower(project.Name); name != "" && strings.Contains(text, name) {
		match.Score = scoreNameMatch
		match.Signal = "name"
		return match
	}

	for _, alias := range project.Aliases {
		if alias = strings.ToLower(strings.TrimSpace(alias)); alias != "" && strings.Contains(text, alias) {
			match.Score = scoreAliasMatch
			match.Signal = "alias"
			return match
		}
	}

	if len(project.Keywords) > 0 {
		hits := 0
		for _, keyword := range project.Keywords {
			if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" && strings.Contains(text, keyword) {
				hits++
			}
		}
		if hits > 0 {
			match.Score = float64(hits) / float64(len(project.Keywords)) * scoreKeywordWeight
			match.Signal = "keywords"
			return match
		}
	}

	for _, stakeholder := range project.Stakeholders {
		if stakeholder = strings.ToLower(strings.TrimSpace(stakeholder)); stakeholder != "" && strings.Contains(participants, stakeholder) {
			match.Score = scoreStakeholderMatch
			match.Signal = "stakeholder"
			return match
		}
	}

	return nil
}

func (a *Assigner) bestHeuristicMatch(meeting *entities.Meeting, catalog []*entities.Project) *Match {
	var best *Match
	for _, project := range catalog {
		match := MatchByKeywords(meeting, project)
		if match == nil {
			continue
		}
		if best == nil || match.Score > best.Score {
			best = match
		}
	}
	return best
}

const assignmentPrompt = `You match meetings to projects. Given a meeting and a project catalog, respond with JSON only: {"project_id": <id>, "confidence": <0 to 1>, "reasoning": "<one sentence>"}. Use project_id 0 and confidence 0 when nothing fits.`

// llmAssignmentResult is the expected JSON shape from the model
type llmAssignmentResult struct {
	ProjectID  int64   `json:"project_id" validate:"required,gt=0"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning  string  `json:"reasoning"`
}

func (a *Assigner) llmAssignment(ctx context.Context, meeting *entities.Meeting, catalog []*entities.Project) *llmAssignmentResult {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\nSummary: %s\nTopics: %s\nParticipants: %s\n\nProjects:\n",
		meeting.Title, meeting.Summary,
		strings.Join(meeting.Topics, ", "),
		strings.Join(meeting.Participants, ", "),
	)
	for _, project := range catalog {
		fmt.Fprintf(&b, "- id=%d name=%q description=%q\n", project.ID, project.Name, project.Description)
	}

	content, err := a.llm.ChatCompletion(ctx, []pkgai.Message{
		{Role: "system", Content: assignmentPrompt},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		a.logger.Warn("⚠️ Assignment completion failed",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	var result llmAssignmentResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		a.logger.Warn("⚠️ Unparseable assignment response",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
		return nil
	}
	if err := a.validate.Struct(&result); err != nil {
		return nil
	}

	// The model must name a project that actually exists in the catalog
	for _, project := range catalog {
		if project.ID == result.ProjectID {
			return &result
		}
	}
	return nil
}

// loadCatalog returns the active project catalog, served from cache when
// available
func (a *Assigner) loadCatalog(ctx context.Context) ([]*entities.Project, error) {
	if a.store != nil {
		if cached, ok := a.store.Get(ctx, catalogCacheKey); ok {
			var catalog []*entities.Project
			if err := json.Unmarshal([]byte(cached), &catalog); err == nil {
				return catalog, nil
			}
		}
	}

	catalog, err := a.projectRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if a.store != nil {
		if encoded, err := json.Marshal(catalog); err == nil {
			a.store.Set(ctx, catalogCacheKey, string(encoded), catalogCacheTTL)
		}
	}
	return catalog, nil
}

func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}
	return strings.TrimSpace(content)
}

func mustJSON(v map[string]interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
