package sync

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
)

// RenderMarkdown renders a meeting into the markdown document uploaded to
// object storage
func RenderMarkdown(meeting *entities.Meeting) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", meeting.Title)
	if !meeting.Date.IsZero() {
		fmt.Fprintf(&b, "**Date:** %s\n", meeting.Date.Format("2006-01-02 15:04 MST"))
	}
	if meeting.DurationMinutes > 0 {
		fmt.Fprintf(&b, "**Duration:** %.0f minutes\n", meeting.DurationMinutes)
	}
	if len(meeting.Participants) > 0 {
		fmt.Fprintf(&b, "**Participants:** %s\n", strings.Join(meeting.Participants, ", "))
	}
	if meeting.TranscriptURL != "" {
		fmt.Fprintf(&b, "**Transcript:** %s\n", meeting.TranscriptURL)
	}

	if meeting.Summary != "" {
		fmt.Fprintf(&b, "\n## Summary\n\n%s\n", meeting.Summary)
	}

	writeSection := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	writeSection("Topics", meeting.Topics)
	writeSection("Action Items", meeting.ActionItems)
	writeSection("Decisions", meeting.Decisions)
	writeSection("Risks", meeting.Risks)

	return b.String()
}
