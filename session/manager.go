package session

import (
	"fmt"
	"sync"
	"time"

	"subpilot/subtitle"
	"subpilot/translate"
)

// Stage is the pipeline position of the current job.
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

// LogEntry is one line of the session log ring buffer.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Status is a point-in-time snapshot of the session for the API surface.
type Status struct {
	JobID               string                   `json:"job_id,omitempty"`
	VideoName           string                   `json:"video_name,omitempty"`
	Stage               Stage                    `json:"stage"`
	Error               string                   `json:"error,omitempty"`
	Logs                []LogEntry               `json:"logs"`
	Stats               subtitle.Stats           `json:"stats"`
	TranslationFailures []translate.BatchFailure `json:"translation_failures,omitempty"`
}

// Manager holds the single active session with thread-safe access. One video
// upload replaces the previous session entirely; cues are never persisted.
type Manager struct {
	mu sync.RWMutex

	jobID     string
	videoPath string
	videoName string
	stage     Stage

	cues                []subtitle.Cue
	translationFailures []translate.BatchFailure

	logs    []LogEntry
	maxLogs int
	lastErr error

	abandoned bool
}

// NewManager creates an idle session manager.
func NewManager() *Manager {
	return &Manager{
		stage:   StageIdle,
		maxLogs: 50,
	}
}

// Reset starts a fresh session for a newly uploaded video, discarding the
// previous job's cues, errors, and abandonment flag.
func (m *Manager) Reset(jobID, videoPath, videoName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobID = jobID
	m.videoPath = videoPath
	m.videoName = videoName
	m.stage = StageIdle
	m.cues = nil
	m.translationFailures = nil
	m.logs = nil
	m.lastErr = nil
	m.abandoned = false
}

// JobID returns the current job identifier, empty when nothing was uploaded.
func (m *Manager) JobID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobID
}

// VideoPath returns the uploaded video's path on disk.
func (m *Manager) VideoPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.videoPath
}

// VideoName returns the uploaded video's original filename.
func (m *Manager) VideoName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.videoName
}

// SetStage moves the session to the given pipeline stage.
func (m *Manager) SetStage(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stage = stage
}

// Stage returns the current pipeline stage.
func (m *Manager) Stage() Stage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stage
}

// SetError records err, moves the session to StageError, and logs the
// failure so it shows up in the status feed.
func (m *Manager) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stage = StageError
	m.lastErr = err
	m.appendLog(fmt.Sprintf("Error: %v", err))
}

// Abandon flags the session so the pipeline stops before its next stage.
func (m *Manager) Abandon() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned = true
	m.appendLog("Job abandoned by user")
}

// Abandoned reports whether the user walked away from the current job.
func (m *Manager) Abandoned() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.abandoned
}

// SetCues replaces the session's cue sequence with a copy of cues.
func (m *Manager) SetCues(cues []subtitle.Cue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cues = append([]subtitle.Cue(nil), cues...)
}

// Cues returns a copy of the session's cue sequence.
func (m *Manager) Cues() []subtitle.Cue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]subtitle.Cue(nil), m.cues...)
}

// UpdateCue edits one cue in place for the preview surface and returns the
// edited cue. Nil fields are left untouched.
func (m *Manager) UpdateCue(index int, text, translatedText *string) (subtitle.Cue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 1 || index > len(m.cues) {
		return subtitle.Cue{}, fmt.Errorf("no cue with index %d (have %d cues)", index, len(m.cues))
	}
	cue := &m.cues[index-1]
	if text != nil {
		cue.Text = *text
	}
	if translatedText != nil {
		cue.TranslatedText = *translatedText
	}
	return *cue, nil
}

// SetTranslationFailures records the degraded-batch report of the last
// translation run.
func (m *Manager) SetTranslationFailures(failures []translate.BatchFailure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.translationFailures = append([]translate.BatchFailure(nil), failures...)
}

// AddLog appends one line to the session log ring buffer.
func (m *Manager) AddLog(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLog(message)
}

// appendLog must be called with the lock held.
func (m *Manager) appendLog(message string) {
	m.logs = append(m.logs, LogEntry{Timestamp: time.Now(), Message: message})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

// Snapshot returns a consistent view of the session for status responses.
func (m *Manager) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{
		JobID:               m.jobID,
		VideoName:           m.videoName,
		Stage:               m.stage,
		Logs:                append([]LogEntry{}, m.logs...),
		Stats:               subtitle.Summarize(m.cues),
		TranslationFailures: append([]translate.BatchFailure(nil), m.translationFailures...),
	}
	if m.lastErr != nil {
		st.Error = m.lastErr.Error()
	}
	return st
}
