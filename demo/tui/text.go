package tui

// UI Text Constants
const (
	// Footer
	TextFooterDefault  = "Press 't' to transcribe | tab to change target | 'q' or Ctrl+C to quit"
	TextFooterComplete = "Press 'r' to translate | tab to change target | 'q' or Ctrl+C to quit"
)
