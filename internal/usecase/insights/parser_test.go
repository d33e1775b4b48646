package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAnalysis = `1. EXECUTIVE SUMMARY: The team reviewed the Q3 launch plan and agreed on the rollout schedule.

2. ACTION ITEMS:
- [Jane Doe] Review the proposal | Priority: high | Due: 2025-07-01
- [Bob Lee] Send the invoice | Priority: low
- Prepare the demo environment

3. KEY DECISIONS:
- Launch moves to July 15
- Marketing budget approved

4. RISKS IDENTIFIED:
- Critical dependency on the payments vendor
- Moderate schedule pressure on QA

5. MAIN TOPICS:
- Q3 launch
- Budget

6. KEY POINTS:
- Rollout is phased by region

7. FOLLOW-UPS:
- Confirm vendor SLA before next meeting

8. PROJECT REFERENCES:
- Apollo

9. OVERALL SENTIMENT: 0.7
`

func TestParse_AllSections(t *testing.T) {
	set := NewParser().Parse(sampleAnalysis)

	assert.Equal(t, "The team reviewed the Q3 launch plan and agreed on the rollout schedule.", set.Summary)
	require.Len(t, set.ActionItems, 3)
	assert.Equal(t, []string{"Launch moves to July 15", "Marketing budget approved"}, set.Decisions)
	require.Len(t, set.Risks, 2)
	assert.Equal(t, []string{"Q3 launch", "Budget"}, set.Topics)
	assert.Equal(t, []string{"Rollout is phased by region"}, set.KeyPoints)
	assert.Equal(t, []string{"Confirm vendor SLA before next meeting"}, set.FollowUps)
	assert.Equal(t, []string{"Apollo"}, set.ProjectRefs)
}

func TestParse_ActionBulletAnnotations(t *testing.T) {
	set := NewParser().Parse(sampleAnalysis)

	first := set.ActionItems[0]
	assert.Equal(t, "Jane Doe", first.Owner)
	assert.Equal(t, "Review the proposal", first.Action)
	assert.Equal(t, "high", first.Priority)
	assert.Equal(t, "2025-07-01", first.DueDate)

	second := set.ActionItems[1]
	assert.Equal(t, "Bob Lee", second.Owner)
	assert.Equal(t, "low", second.Priority)
	assert.Empty(t, second.DueDate)

	// Bare bullet keeps the whole text and default priority
	third := set.ActionItems[2]
	assert.Empty(t, third.Owner)
	assert.Equal(t, "Prepare the demo environment", third.Action)
	assert.Equal(t, "medium", third.Priority)
}

func TestParse_RiskSeverity(t *testing.T) {
	set := NewParser().Parse(sampleAnalysis)

	assert.Equal(t, "critical", set.Risks[0].Severity)
	assert.Equal(t, "medium", set.Risks[1].Severity)
}

func TestParse_MissingSections(t *testing.T) {
	set := NewParser().Parse("EXECUTIVE SUMMARY: Short meeting, nothing decided.")

	assert.Equal(t, "Short meeting, nothing decided.", set.Summary)
	assert.Empty(t, set.ActionItems)
	assert.Empty(t, set.Decisions)
	assert.Empty(t, set.Risks)
}

func TestParse_NonePlaceholdersSkipped(t *testing.T) {
	set := NewParser().Parse("ACTION ITEMS:\n- None\n\nKEY DECISIONS:\nNone")

	assert.Empty(t, set.ActionItems)
	assert.Empty(t, set.Decisions)
}

func TestParse_Empty(t *testing.T) {
	set := NewParser().Parse("   ")
	assert.Empty(t, set.Summary)
	assert.Empty(t, set.ActionItems)
}

func TestSentiment_Parsed(t *testing.T) {
	score, ok := NewParser().Sentiment(sampleAnalysis)
	require.True(t, ok)
	assert.Equal(t, 0.7, score)
}

func TestSentiment_Clamped(t *testing.T) {
	score, ok := NewParser().Sentiment("OVERALL SENTIMENT: 7.5")
	require.True(t, ok)
	assert.Equal(t, 1.0, score)
}

func TestSentiment_Missing(t *testing.T) {
	tests := []string{
		"EXECUTIVE SUMMARY: Short meeting.",
		"OVERALL SENTIMENT: None",
		"OVERALL SENTIMENT: positive",
	}
	for _, content := range tests {
		_, ok := NewParser().Sentiment(content)
		assert.False(t, ok, content)
	}
}

func TestExtractSeverity(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Critical vendor outage possible", "critical"},
		{"This is a severe blocker", "critical"},
		{"High chance of slipping", "high"},
		{"Urgent staffing gap", "high"},
		{"Moderate schedule pressure", "medium"},
		{"Some minor concern", "low"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractSeverity(tt.text), tt.text)
	}
}

func TestFormatActionItem(t *testing.T) {
	assert.Equal(t,
		"[Jane] Review the proposal | Priority: high | Due: Friday",
		FormatActionItem(ActionItem{Owner: "Jane", Action: "Review the proposal", Priority: "high", DueDate: "Friday"}),
	)
	assert.Equal(t,
		"Send the invoice | Priority: medium",
		FormatActionItem(ActionItem{Action: "Send the invoice", Priority: "medium"}),
	)
}

func TestFormatRisk(t *testing.T) {
	assert.Equal(t,
		"Vendor outage (Severity: critical)",
		FormatRisk(Risk{Text: "Vendor outage", Severity: "critical"}),
	)
}
