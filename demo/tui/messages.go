package tui

import "time"

// Messages for the tea program (polling-based)

// StatusUpdateMsg is sent when we receive status from the server
type StatusUpdateMsg struct {
	Status *StatusResponse
	Err    error
}

// CuesUpdateMsg is sent when we receive the cue sequence
type CuesUpdateMsg struct {
	Cues []Cue
	Err  error
}

// TickMsg is sent periodically to trigger polling
type TickMsg struct {
	Time time.Time
}

// ActionMsg is sent after a transcribe/translate trigger completes
type ActionMsg struct {
	Err error
}
