package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// pollStatus creates a command to poll session status
func pollStatus(client *SubtitleClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		return StatusUpdateMsg{
			Status: status,
			Err:    err,
		}
	}
}

// fetchCues creates a command to load the cue sequence
func fetchCues(client *SubtitleClient) tea.Cmd {
	return func() tea.Msg {
		cues, err := client.GetCues()
		return CuesUpdateMsg{
			Cues: cues,
			Err:  err,
		}
	}
}

// triggerTranscription creates a command to start the transcription workflow
func triggerTranscription(client *SubtitleClient) tea.Cmd {
	return func() tea.Msg {
		return ActionMsg{Err: client.StartTranscription()}
	}
}

// triggerTranslation creates a command to start translation
func triggerTranslation(client *SubtitleClient, target string) tea.Cmd {
	return func() tea.Msg {
		return ActionMsg{Err: client.StartTranslation(target)}
	}
}

// tickCmd creates a command that ticks every 500ms for polling
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
