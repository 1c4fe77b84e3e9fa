package asr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subpilot/shared/retry"
)

type fakeBackend struct {
	name     string
	calls    int
	segments []Segment
	errs     []error
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Transcribe(ctx context.Context, audioPath, languageHint string) ([]Segment, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.segments, nil
}

func writeAudio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}
	return path
}

func TestClientReturnsSegments(t *testing.T) {
	backend := &fakeBackend{name: "fake", segments: []Segment{
		{Start: 0, End: time.Second, Text: "hello"},
		{Start: time.Second, End: 2 * time.Second, Text: "world"},
	}}
	client := NewClient(backend, 3, time.Millisecond)

	got, err := client.Transcribe(context.Background(), writeAudio(t, "riff"), "en")
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d segments; want 2", len(got))
	}
}

func TestClientAllowsSilentAudio(t *testing.T) {
	// A silent clip is valid audio that produces zero segments, not an error.
	backend := &fakeBackend{name: "fake"}
	client := NewClient(backend, 3, time.Millisecond)

	got, err := client.Transcribe(context.Background(), writeAudio(t, "riff"), "")
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d segments; want 0", len(got))
	}
}

func TestClientRejectsEmptyAudioFile(t *testing.T) {
	backend := &fakeBackend{name: "fake"}
	client := NewClient(backend, 3, time.Millisecond)

	_, err := client.Transcribe(context.Background(), writeAudio(t, ""), "")
	var te *TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("got %v; want TranscriptionError for empty audio file", err)
	}
	if backend.calls != 0 {
		t.Fatalf("backend called %d times for empty audio; want 0", backend.calls)
	}
}

func TestClientRetriesTransientErrors(t *testing.T) {
	backend := &fakeBackend{
		name:     "fake",
		segments: []Segment{{Start: 0, End: time.Second, Text: "ok"}},
		errs: []error{
			&retry.TransientError{Provider: "fake", StatusCode: 503, Message: "busy"},
			&retry.TransientError{Provider: "fake", StatusCode: 429, Message: "slow down"},
			nil,
		},
	}
	client := NewClient(backend, 3, time.Millisecond)

	got, err := client.Transcribe(context.Background(), writeAudio(t, "riff"), "")
	if err != nil {
		t.Fatalf("Transcribe error after retries: %v", err)
	}
	if backend.calls != 3 {
		t.Fatalf("backend called %d times; want 3", backend.calls)
	}
	if len(got) != 1 {
		t.Fatalf("got %d segments; want 1", len(got))
	}
}

func TestClientEscalatesExhaustedRetries(t *testing.T) {
	backend := &fakeBackend{
		name: "fake",
		errs: []error{
			&retry.TransientError{Provider: "fake", StatusCode: 500, Message: "a"},
			&retry.TransientError{Provider: "fake", StatusCode: 500, Message: "b"},
			&retry.TransientError{Provider: "fake", StatusCode: 500, Message: "c"},
		},
	}
	client := NewClient(backend, 3, time.Millisecond)

	_, err := client.Transcribe(context.Background(), writeAudio(t, "riff"), "")
	var te *TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("got %v; want TranscriptionError after retry exhaustion", err)
	}
	if backend.calls != 3 {
		t.Fatalf("backend called %d times; want 3", backend.calls)
	}
}

func TestClientDoesNotRetryAuthErrors(t *testing.T) {
	backend := &fakeBackend{
		name: "fake",
		errs: []error{&retry.AuthError{Provider: "fake", Message: "bad key"}},
	}
	client := NewClient(backend, 5, time.Millisecond)

	_, err := client.Transcribe(context.Background(), writeAudio(t, "riff"), "")
	var ae *retry.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("got %v; want AuthError passed through untouched", err)
	}
	if backend.calls != 1 {
		t.Fatalf("backend called %d times; want 1", backend.calls)
	}
}

func TestClientRejectsNonMonotonicTimestamps(t *testing.T) {
	backend := &fakeBackend{name: "fake", segments: []Segment{
		{Start: 2 * time.Second, End: 3 * time.Second, Text: "later"},
		{Start: time.Second, End: 2 * time.Second, Text: "earlier"},
	}}
	client := NewClient(backend, 3, time.Millisecond)

	_, err := client.Transcribe(context.Background(), writeAudio(t, "riff"), "")
	var te *TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("got %v; want TranscriptionError for non-monotonic timestamps", err)
	}
}

func TestClientRejectsInvertedSegmentRange(t *testing.T) {
	backend := &fakeBackend{name: "fake", segments: []Segment{
		{Start: 2 * time.Second, End: time.Second, Text: "backwards"},
	}}
	client := NewClient(backend, 3, time.Millisecond)

	_, err := client.Transcribe(context.Background(), writeAudio(t, "riff"), "")
	var te *TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("got %v; want TranscriptionError for inverted range", err)
	}
}
