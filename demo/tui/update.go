package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Client), tickCmd())
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case CuesUpdateMsg:
		return m.handleCuesUpdate(msg)
	case ActionMsg:
		return m.handleAction(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "t", "T":
		if m.Connected && (m.Stage == StageIdle || m.Stage == StageComplete || m.Stage == StageError) {
			return m, triggerTranscription(m.Client)
		}
	case "r", "R":
		if m.Connected && m.Stage == StageComplete && m.Stats.CueCount > 0 {
			return m, triggerTranslation(m.Client, string(m.target()))
		}
	case "tab":
		m.TargetLanguage = (m.TargetLanguage + 1) % len(m.Languages)
		return m, nil
	}
	return m, nil
}

// handleStatusUpdate syncs local UI state from the server snapshot
func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m, nil
	}

	previous := m.Stage

	m.Connected = true
	m.Stage = msg.Status.Stage
	m.VideoName = msg.Status.VideoName
	m.Logs = msg.Status.Logs
	m.Stats = msg.Status.Stats
	m.Failures = msg.Status.TranslationFailures
	if msg.Status.Error != "" {
		m.Err = errString(msg.Status.Error)
	} else {
		m.Err = nil
	}

	// Refresh the cue preview once a run finishes
	if m.Stage == StageComplete && previous != StageComplete {
		return m, fetchCues(m.Client)
	}
	return m, nil
}

// handleCuesUpdate stores the fetched cue preview
func (m Model) handleCuesUpdate(msg CuesUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, nil
	}
	m.Cues = msg.Cues
	return m, nil
}

// handleAction processes trigger results
func (m Model) handleAction(msg ActionMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Err = msg.Err
		return m, nil
	}
	return m, pollStatus(m.Client)
}

type errString string

func (e errString) Error() string { return string(e) }
