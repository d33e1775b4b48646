package insights

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ActionItem is a structured action item extracted from analysis output
type ActionItem struct {
	Owner    string `json:"owner"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date,omitempty"`
}

// Risk is a structured risk extracted from analysis output
type Risk struct {
	Text     string `json:"text"`
	Severity string `json:"severity"`
}

// InsightSet is the structured result of one meeting analysis
type InsightSet struct {
	Summary     string       `json:"summary"`
	ActionItems []ActionItem `json:"action_items"`
	Decisions   []string     `json:"decisions"`
	Risks       []Risk       `json:"risks"`
	Topics      []string     `json:"topics"`
	KeyPoints   []string     `json:"key_points"`
	FollowUps   []string     `json:"follow_ups"`
	ProjectRefs []string     `json:"project_refs"`
}

// sectionHeaders in the order the analysis prompt requests them
var sectionHeaders = []string{
	"EXECUTIVE SUMMARY",
	"ACTION ITEMS",
	"KEY DECISIONS",
	"RISKS IDENTIFIED",
	"MAIN TOPICS",
	"KEY POINTS",
	"FOLLOW-UPS",
	"PROJECT REFERENCES",
	"OVERALL SENTIMENT",
}

var (
	sectionPatterns = buildSectionPatterns()

	ownerBracketRe = regexp.MustCompile(`^\[([^\]]+)\]\s*`)
	ownerParenRe   = regexp.MustCompile(`(?i)\(?\s*owner\s*[:\-]\s*([^,)|]+)`)
	priorityRe     = regexp.MustCompile(`(?i)priority\s*[:\-]\s*([a-z]+)`)
	dueRe          = regexp.MustCompile(`(?i)due\s*(?:date)?\s*[:\-]\s*([^,)|]+)`)
	bulletRe       = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	floatRe        = regexp.MustCompile(`\d*\.?\d+`)
)

func buildSectionPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(sectionHeaders))
	// Each section runs until the next known header (optionally numbered) or EOF
	alternation := strings.Join(sectionHeaders, "|")
	for _, header := range sectionHeaders {
		expr := fmt.Sprintf(`(?is)(?:\d+\.\s*)?(?:\*\*)?%s(?:\*\*)?[:\s]+(.*?)(?:(?:\d+\.\s*)?(?:\*\*)?(?:%s)(?:\*\*)?[:\s]|\z)`,
			regexp.QuoteMeta(header), alternation)
		patterns[header] = regexp.MustCompile(expr)
	}
	return patterns
}

// Parser turns free-text analysis output into an InsightSet
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts every known section from the analysis output. Sections
// that are absent stay at their zero values.
func (p *Parser) Parse(content string) *InsightSet {
	set := &InsightSet{}
	if strings.TrimSpace(content) == "" {
		return set
	}

	set.Summary = strings.TrimSpace(p.extractSection(content, "EXECUTIVE SUMMARY"))

	for _, bullet := range p.bullets(p.extractSection(content, "ACTION ITEMS")) {
		set.ActionItems = append(set.ActionItems, p.parseActionBullet(bullet))
	}
	set.Decisions = p.bullets(p.extractSection(content, "KEY DECISIONS"))
	for _, bullet := range p.bullets(p.extractSection(content, "RISKS IDENTIFIED")) {
		set.Risks = append(set.Risks, Risk{Text: bullet, Severity: ExtractSeverity(bullet)})
	}
	set.Topics = p.bullets(p.extractSection(content, "MAIN TOPICS"))
	set.KeyPoints = p.bullets(p.extractSection(content, "KEY POINTS"))
	set.FollowUps = p.bullets(p.extractSection(content, "FOLLOW-UPS"))
	set.ProjectRefs = p.bullets(p.extractSection(content, "PROJECT REFERENCES"))

	return set
}

// Sentiment extracts the overall sentiment score from the analysis
// output, clamped to 0..1. The second return is false when the section
// is missing or carries no number.
func (p *Parser) Sentiment(content string) (float64, bool) {
	body := strings.TrimSpace(p.extractSection(content, "OVERALL SENTIMENT"))
	if body == "" || strings.EqualFold(body, "none") {
		return 0, false
	}
	match := floatRe.FindString(body)
	if match == "" {
		return 0, false
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, true
}

// extractSection returns the raw body of one named section
func (p *Parser) extractSection(content, header string) string {
	re, ok := sectionPatterns[header]
	if !ok {
		return ""
	}
	match := re.FindStringSubmatch(content)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// bullets splits a section body into cleaned bullet lines
func (p *Parser) bullets(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		cleaned = strings.Trim(cleaned, "*")
		if cleaned == "" || strings.EqualFold(cleaned, "none") {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

// parseActionBullet pulls owner, priority and due date annotations out of
// one action bullet. Unannotated bullets keep the whole text as the action.
func (p *Parser) parseActionBullet(bullet string) ActionItem {
	item := ActionItem{Priority: "medium"}

	rest := bullet
	if m := ownerBracketRe.FindStringSubmatch(rest); len(m) == 2 {
		item.Owner = strings.TrimSpace(m[1])
		rest = ownerBracketRe.ReplaceAllString(rest, "")
	} else if m := ownerParenRe.FindStringSubmatch(rest); len(m) == 2 {
		item.Owner = strings.TrimSpace(m[1])
	}

	if m := priorityRe.FindStringSubmatch(bullet); len(m) == 2 {
		item.Priority = strings.ToLower(strings.TrimSpace(m[1]))
	}
	if m := dueRe.FindStringSubmatch(bullet); len(m) == 2 {
		due := strings.TrimSpace(m[1])
		if !strings.EqualFold(due, "date") {
			item.DueDate = due
		}
	}

	// Strip trailing annotation clauses from the action text
	if idx := strings.IndexAny(rest, "(|"); idx > 0 {
		rest = rest[:idx]
	}
	item.Action = strings.TrimSpace(strings.TrimRight(rest, " -,"))
	if item.Action == "" {
		item.Action = strings.TrimSpace(bullet)
	}
	return item
}

// ExtractSeverity maps severity keywords in a risk description to a tier
func ExtractSeverity(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "critical") || strings.Contains(lower, "severe") || strings.Contains(lower, "blocker"):
		return "critical"
	case strings.Contains(lower, "high") || strings.Contains(lower, "major") || strings.Contains(lower, "urgent"):
		return "high"
	case strings.Contains(lower, "medium") || strings.Contains(lower, "moderate"):
		return "medium"
	default:
		return "low"
	}
}

// FormatActionItem renders a structured action item back into one line
func FormatActionItem(item ActionItem) string {
	var b strings.Builder
	if item.Owner != "" {
		fmt.Fprintf(&b, "[%s] ", item.Owner)
	}
	b.WriteString(item.Action)
	if item.Priority != "" {
		fmt.Fprintf(&b, " | Priority: %s", item.Priority)
	}
	if item.DueDate != "" {
		fmt.Fprintf(&b, " | Due: %s", item.DueDate)
	}
	return b.String()
}

// FormatRisk renders a structured risk back into one line
func FormatRisk(risk Risk) string {
	return fmt.Sprintf("%s (Severity: %s)", risk.Text, risk.Severity)
}
