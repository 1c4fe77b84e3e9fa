package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"subpilot/translate"
)

// Stage mirrors the server's pipeline stage machine
type Stage string

const (
	StageIdle         Stage = "idle"
	StageExtracting   Stage = "extracting"
	StageTranscribing Stage = "transcribing"
	StageBuilding     Stage = "building"
	StageTranslating  Stage = "translating"
	StageComplete     Stage = "complete"
	StageError        Stage = "error"
)

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Stats summarizes the cue sequence
type Stats struct {
	CueCount      int           `json:"cue_count"`
	TotalDuration time.Duration `json:"total_duration"`
	TotalChars    int           `json:"total_chars"`
}

// BatchFailure reports one degraded translation batch
type BatchFailure struct {
	FirstIndex int    `json:"first_index"`
	LastIndex  int    `json:"last_index"`
	Reason     string `json:"reason"`
}

// Cue is one subtitle cue as served by the API
type Cue struct {
	Index          int    `json:"index"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Text           string `json:"text"`
	TranslatedText string `json:"translated_text,omitempty"`
}

// StatusResponse is the JSON response from the subtitle server
type StatusResponse struct {
	JobID               string         `json:"job_id,omitempty"`
	VideoName           string         `json:"video_name,omitempty"`
	Stage               Stage          `json:"stage"`
	Error               string         `json:"error,omitempty"`
	Logs                []LogEntry     `json:"logs"`
	Stats               Stats          `json:"stats"`
	TranslationFailures []BatchFailure `json:"translation_failures,omitempty"`
}

// Model represents the TUI client state (thin client)
type Model struct {
	// Subtitle server client
	Client *SubtitleClient

	// Local UI state (synced from the server)
	Stage     Stage
	VideoName string
	Logs      []LogEntry
	Stats     Stats
	Failures  []BatchFailure
	Cues      []Cue
	Err       error

	// Translation target selection
	Languages      []translate.Language
	TargetLanguage int

	// Connection status
	Connected bool
}

// NewModel creates a new TUI model
func NewModel(serverURL string) Model {
	return Model{
		Client:    NewSubtitleClient(serverURL),
		Stage:     StageIdle,
		Logs:      make([]LogEntry, 0),
		Languages: translate.SupportedLanguages(),
		Connected: false,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	// Start polling immediately
	return tea.Batch(
		pollStatus(m.Client),
		tickCmd(),
	)
}

// target returns the currently selected translation target
func (m Model) target() translate.Language {
	return m.Languages[m.TargetLanguage]
}

// getStageText returns the appropriate stage message
func (m Model) getStageText() string {
	if !m.Connected {
		return errorStyle.Render("Not connected to subtitle server")
	}

	switch m.Stage {
	case StageIdle:
		if m.VideoName == "" {
			return dimStyle.Render("Waiting for a video upload (POST /api/videos)")
		}
		return badgeStyle.Render(fmt.Sprintf("Ready: %s", m.VideoName)) + "\n\n" +
			dimStyle.Render("Press 't' to transcribe")
	case StageExtracting:
		return activeStyle.Render("Extracting audio track...")
	case StageTranscribing:
		return activeStyle.Render("Transcribing audio...")
	case StageBuilding:
		return activeStyle.Render("Building subtitle cues...")
	case StageTranslating:
		return activeStyle.Render(fmt.Sprintf("Translating to %s...", m.target()))
	case StageComplete:
		return badgeStyle.Render("COMPLETE")
	case StageError:
		errMsg := "Unknown error"
		if m.Err != nil {
			errMsg = m.Err.Error()
		}
		return errorStyle.Render(fmt.Sprintf("Error: %v", errMsg))
	default:
		return ""
	}
}
