package tui

import (
	"fmt"
	"strings"
)

// maxPreviewCues caps the cue preview so the screen stays readable.
const maxPreviewCues = 8

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render("SubPilot Session Monitor"))
	b.WriteString("\n\n")

	// Current stage
	b.WriteString(m.getStageText())
	b.WriteString("\n\n")

	// Statistics
	if m.Stats.CueCount > 0 {
		stats := fmt.Sprintf("Cues: %d | Duration: %s | Characters: %d",
			m.Stats.CueCount, m.Stats.TotalDuration, m.Stats.TotalChars)
		b.WriteString(dimStyle.Render(stats))
		b.WriteString("\n")
	}

	if len(m.Failures) > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Degraded translation batches: %d", len(m.Failures))))
		b.WriteString("\n")
		for _, f := range m.Failures {
			b.WriteString(dimStyle.Render(fmt.Sprintf("   cues %d-%d: %s", f.FirstIndex, f.LastIndex, f.Reason)))
			b.WriteString("\n")
		}
	}

	// Target language
	b.WriteString(dimStyle.Render(fmt.Sprintf("Translation target: %s (tab to change)", m.target())))
	b.WriteString("\n\n")

	// Cue preview
	if len(m.Cues) > 0 {
		b.WriteString(dimStyle.Render("Cue preview:"))
		b.WriteString("\n")
		b.WriteString(previewBoxStyle.Render(m.formatCuePreview()))
		b.WriteString("\n\n")
	}

	// Logs
	if len(m.Logs) > 0 {
		b.WriteString(dimStyle.Render("Recent activity:"))
		b.WriteString("\n")
		start := 0
		if len(m.Logs) > 6 {
			start = len(m.Logs) - 6
		}
		for _, entry := range m.Logs[start:] {
			b.WriteString(dimStyle.Render("   " + entry.Message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Help text
	if m.Stage == StageComplete {
		b.WriteString(dimStyle.Render(TextFooterComplete))
	} else {
		b.WriteString(dimStyle.Render(TextFooterDefault))
	}

	return b.String()
}

// formatCuePreview renders the first few cues of the sequence
func (m Model) formatCuePreview() string {
	var b strings.Builder

	count := len(m.Cues)
	if count > maxPreviewCues {
		count = maxPreviewCues
	}

	for _, cue := range m.Cues[:count] {
		b.WriteString(cueTimeStyle.Render(fmt.Sprintf("%d  %s --> %s", cue.Index, cue.Start, cue.End)))
		b.WriteString("\n")
		b.WriteString(cue.Text)
		if cue.TranslatedText != "" {
			b.WriteString("\n" + translatedStyle.Render(cue.TranslatedText))
		}
		b.WriteString("\n\n")
	}

	if len(m.Cues) > maxPreviewCues {
		b.WriteString(dimStyle.Render(fmt.Sprintf("... and %d more", len(m.Cues)-maxPreviewCues)))
	}

	return strings.TrimRight(b.String(), "\n")
}
