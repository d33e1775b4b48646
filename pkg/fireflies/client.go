package fireflies

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-intel/errors"
	"github.com/johnquangdev/meeting-intel/pkg/config"
)

const (
	maxActionItems = 20
	maxTopics      = 10
	fetchLimit     = 50
)

// FlexTime parses the transcript date field, which the API returns either
// as epoch milliseconds or as an ISO-8601 string.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	if millis, err := strconv.ParseFloat(s, 64); err == nil {
		t.Time = time.UnixMilli(int64(millis)).UTC()
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}

	// An unparseable date from one transcript must not fail the whole
	// batch decode. The zero value lets callers substitute a default.
	t.Time = time.Time{}
	return nil
}

// Speaker is a named speaker on the call
type Speaker struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// Sentence is one utterance with its sentiment label, present only on
// the expanded single-transcript query
type Sentence struct {
	Text        string `json:"text"`
	SpeakerName string `json:"speaker_name"`
	Sentiment   string `json:"sentiment"`
}

// Summary is the source-side summary object
type Summary struct {
	Outline     string   `json:"outline"`
	Overview    string   `json:"overview"`
	ActionItems string   `json:"action_items"`
	Keywords    []string `json:"keywords"`
}

// RawTranscript is one transcript as returned by the source API. The
// duration field is in seconds.
type RawTranscript struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Date            FlexTime   `json:"date"`
	DurationSeconds float64    `json:"duration"`
	TranscriptURL   string     `json:"transcript_url"`
	OrganizerEmail  string     `json:"organizer_email"`
	ParticipantList []string   `json:"participants"`
	Speakers        []Speaker  `json:"speakers"`
	Summary         *Summary   `json:"summary"`
	Sentences       []Sentence `json:"sentences"`
}

// DurationMinutes converts the source duration to minutes
func (t *RawTranscript) DurationMinutes() float64 {
	return t.DurationSeconds / 60
}

// SentimentScore averages the per-sentence sentiment labels onto a 0..1
// scale. The second return is false when no labeled sentences are present.
func (t *RawTranscript) SentimentScore() (float64, bool) {
	var sum float64
	var n int
	for _, sentence := range t.Sentences {
		switch strings.ToLower(sentence.Sentiment) {
		case "positive":
			sum += 1.0
		case "neutral":
			sum += 0.5
		case "negative":
			sum += 0.0
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Outline returns the summary text, preferring outline over overview
func (t *RawTranscript) Outline() string {
	if t.Summary == nil {
		return ""
	}
	if t.Summary.Outline != "" {
		return t.Summary.Outline
	}
	return t.Summary.Overview
}

// Participants resolves participant names with a fixed precedence:
// speaker display names, then participant emails, then the organizer email.
func (t *RawTranscript) Participants() []string {
	var names []string
	for _, sp := range t.Speakers {
		if sp.Name != "" {
			names = append(names, sp.Name)
		}
	}
	if len(names) > 0 {
		return names
	}
	for _, p := range t.ParticipantList {
		if p != "" {
			names = append(names, p)
		}
	}
	if len(names) > 0 {
		return names
	}
	if t.OrganizerEmail != "" {
		return []string{t.OrganizerEmail}
	}
	return nil
}

// ActionItems parses the free-text action_items block. Lines wrapped in
// ** markers name an owner; subsequent plain lines are that owner's items,
// emitted as "Owner: item".
func (t *RawTranscript) ActionItems() []string {
	if t.Summary == nil || t.Summary.ActionItems == "" {
		return nil
	}

	var items []string
	owner := ""
	for _, line := range strings.Split(t.Summary.ActionItems, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4 {
			owner = strings.TrimSpace(strings.Trim(line, "*"))
			continue
		}
		if owner != "" {
			items = append(items, fmt.Sprintf("%s: %s", owner, line))
		} else {
			items = append(items, line)
		}
		if len(items) >= maxActionItems {
			break
		}
	}
	return items
}

// Topics returns the summary keywords as topics
func (t *RawTranscript) Topics() []string {
	if t.Summary == nil {
		return nil
	}
	keywords := t.Summary.Keywords
	if len(keywords) > maxTopics {
		keywords = keywords[:maxTopics]
	}
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Client is a GraphQL client for the Fireflies transcription API
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Fireflies client from config
func NewClient(cfg *config.FirefliesConfig, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:     logger,
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

const transcriptFields = `
	id
	title
	date
	duration
	transcript_url
	organizer_email
	participants
	speakers { id name }
	summary { outline overview action_items keywords }
`

// FetchWindow returns every transcript newer than since, backfilled with
// the most recent older transcripts until at least minCount are returned
// (or the source runs out). Results are ordered newest first.
func (c *Client) FetchWindow(ctx context.Context, since time.Time, minCount int) ([]RawTranscript, error) {
	query := fmt.Sprintf(`query Transcripts($limit: Int) {
		transcripts(limit: $limit) {%s}
	}`, transcriptFields)

	var data struct {
		Transcripts []RawTranscript `json:"transcripts"`
	}
	if err := c.doGraphQL(ctx, query, map[string]interface{}{"limit": fetchLimit}, &data); err != nil {
		return nil, err
	}

	transcripts := data.Transcripts
	sort.SliceStable(transcripts, func(i, j int) bool {
		return transcripts[i].Date.After(transcripts[j].Date.Time)
	})

	var out []RawTranscript
	for _, t := range transcripts {
		if t.Date.After(since) || len(out) < minCount {
			out = append(out, t)
			continue
		}
		break
	}

	c.logger.Info("📥 Fetched transcripts from source",
		zap.Int("available", len(transcripts)),
		zap.Int("selected", len(out)),
		zap.Time("since", since),
	)
	return out, nil
}

// FetchByID returns one transcript with the expanded sentence list
func (c *Client) FetchByID(ctx context.Context, id string) (*RawTranscript, error) {
	query := fmt.Sprintf(`query Transcript($id: String!) {
		transcript(id: $id) {%s
			sentences { text speaker_name sentiment }
		}
	}`, transcriptFields)

	var data struct {
		Transcript *RawTranscript `json:"transcript"`
	}
	if err := c.doGraphQL(ctx, query, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Transcript == nil {
		return nil, apperrors.ErrNotFound("transcript")
	}
	return data.Transcript, nil
}

func (c *Client) doGraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	var raw json.RawMessage
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(fmt.Errorf("source rejected credentials with status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("source returned status %d", resp.StatusCode)
		}

		var gql graphqlResponse
		if err := json.Unmarshal(respBody, &gql); err != nil {
			return backoff.Permanent(err)
		}
		if len(gql.Errors) > 0 {
			msgs := make([]string, len(gql.Errors))
			for i, e := range gql.Errors {
				msgs[i] = e.Message
			}
			return backoff.Permanent(apperrors.ErrSourceGraphQL(strings.Join(msgs, "; ")))
		}
		raw = gql.Data
		return nil
	}

	// Retry logic with exponential backoff
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second

	retrier := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(attempt, retrier); err != nil {
		var appErr apperrors.AppError
		if stderrors.As(err, &appErr) {
			return appErr
		}
		return apperrors.ErrSourceUnavailable(err)
	}

	return json.Unmarshal(raw, out)
}
