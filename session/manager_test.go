package session

import (
	"errors"
	"testing"
	"time"

	"subpilot/subtitle"
	"subpilot/translate"
)

func sampleCues() []subtitle.Cue {
	return []subtitle.Cue{
		{Index: 1, Start: 0, End: 2 * time.Second, Text: "hello"},
		{Index: 2, Start: 2 * time.Second, End: 4 * time.Second, Text: "world"},
	}
}

func TestResetClearsPreviousSession(t *testing.T) {
	m := NewManager()
	m.Reset("job-1", "/tmp/a.mp4", "a.mp4")
	m.SetCues(sampleCues())
	m.SetError(errors.New("boom"))
	m.Abandon()

	m.Reset("job-2", "/tmp/b.mp4", "b.mp4")

	if m.JobID() != "job-2" {
		t.Fatalf("JobID = %q, want job-2", m.JobID())
	}
	if m.Abandoned() {
		t.Fatal("abandonment flag should be cleared on reset")
	}
	if got := len(m.Cues()); got != 0 {
		t.Fatalf("expected no cues after reset, got %d", got)
	}
	st := m.Snapshot()
	if st.Stage != StageIdle {
		t.Fatalf("stage = %q, want %q", st.Stage, StageIdle)
	}
	if st.Error != "" {
		t.Fatalf("error should be cleared on reset, got %q", st.Error)
	}
}

func TestSetErrorMovesToErrorStage(t *testing.T) {
	m := NewManager()
	m.Reset("job-1", "/tmp/a.mp4", "a.mp4")
	m.SetStage(StageTranscribing)
	m.SetError(errors.New("transcription failed"))

	st := m.Snapshot()
	if st.Stage != StageError {
		t.Fatalf("stage = %q, want %q", st.Stage, StageError)
	}
	if st.Error != "transcription failed" {
		t.Fatalf("error = %q", st.Error)
	}
	if len(st.Logs) == 0 {
		t.Fatal("expected the error to be logged")
	}
}

func TestCuesReturnsCopy(t *testing.T) {
	m := NewManager()
	m.SetCues(sampleCues())

	got := m.Cues()
	got[0].Text = "mutated"

	if m.Cues()[0].Text != "hello" {
		t.Fatal("mutating the returned slice must not affect session state")
	}
}

func TestUpdateCue(t *testing.T) {
	m := NewManager()
	m.SetCues(sampleCues())

	text := "hi there"
	cue, err := m.UpdateCue(1, &text, nil)
	if err != nil {
		t.Fatalf("UpdateCue: %v", err)
	}
	if cue.Text != "hi there" {
		t.Fatalf("returned Text = %q, want %q", cue.Text, "hi there")
	}
	cues := m.Cues()
	if cues[0].Text != "hi there" {
		t.Fatalf("Text = %q, want %q", cues[0].Text, "hi there")
	}
	if cues[0].TranslatedText != "" {
		t.Fatalf("TranslatedText should be untouched, got %q", cues[0].TranslatedText)
	}

	translated := "bonjour"
	cue, err = m.UpdateCue(1, nil, &translated)
	if err != nil {
		t.Fatalf("UpdateCue: %v", err)
	}
	if cue.TranslatedText != "bonjour" {
		t.Fatal("returned cue missing translated text edit")
	}
	if m.Cues()[0].TranslatedText != "bonjour" {
		t.Fatal("translated text edit not applied")
	}
	if m.Cues()[0].Text != "hi there" {
		t.Fatal("source text should be untouched by translated-only edit")
	}
}

func TestUpdateCueRejectsBadIndex(t *testing.T) {
	m := NewManager()
	m.SetCues(sampleCues())

	text := "x"
	for _, index := range []int{0, -1, 3} {
		if _, err := m.UpdateCue(index, &text, nil); err == nil {
			t.Fatalf("UpdateCue(%d) should fail", index)
		}
	}
}

func TestLogRingBufferCaps(t *testing.T) {
	m := NewManager()
	m.maxLogs = 5
	for i := 0; i < 20; i++ {
		m.AddLog("entry")
	}
	if got := len(m.Snapshot().Logs); got != 5 {
		t.Fatalf("log buffer length = %d, want 5", got)
	}
}

func TestSnapshotIncludesStatsAndFailures(t *testing.T) {
	m := NewManager()
	m.SetCues(sampleCues())
	m.SetTranslationFailures([]translate.BatchFailure{
		{FirstIndex: 1, LastIndex: 2, Reason: "count mismatch"},
	})

	st := m.Snapshot()
	if st.Stats.CueCount != 2 {
		t.Fatalf("CueCount = %d, want 2", st.Stats.CueCount)
	}
	if len(st.TranslationFailures) != 1 {
		t.Fatalf("TranslationFailures = %d, want 1", len(st.TranslationFailures))
	}
}
