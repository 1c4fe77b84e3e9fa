package asr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"subpilot/shared/retry"
)

// Transcriber converts an audio file into ordered transcript segments.
// Implementations wrap one external ASR service.
type Transcriber interface {
	// Transcribe recognizes speech in the WAV file at audioPath. languageHint
	// may be empty for automatic language detection.
	Transcribe(ctx context.Context, audioPath string, languageHint string) ([]Segment, error)
	// Name identifies the backend in logs and errors.
	Name() string
}

// TranscriptionError is the fatal outcome of a transcription job: the
// service returned malformed output, or transient failures exhausted the
// retry budget.
type TranscriptionError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *TranscriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcription failed (%s): %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("transcription failed (%s): %s", e.Backend, e.Reason)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Client wraps a Transcriber with the service-call policy: transient errors
// are retried with bounded exponential backoff, authentication errors are
// reported immediately, and the returned segments are checked for
// monotonically non-decreasing timestamps.
type Client struct {
	backend     Transcriber
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient builds a transcription client around the chosen backend.
func NewClient(backend Transcriber, maxAttempts int, baseDelay time.Duration) *Client {
	return &Client{backend: backend, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// Transcribe runs the backend and validates its output. A silent clip
// legitimately yields zero segments; malformed timestamps or an exhausted
// retry budget yield a TranscriptionError.
func (c *Client) Transcribe(ctx context.Context, audioPath string, languageHint string) ([]Segment, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, &TranscriptionError{Backend: c.backend.Name(), Reason: "cannot access audio file", Err: err}
	}
	if info.Size() == 0 {
		return nil, &TranscriptionError{Backend: c.backend.Name(), Reason: "audio file is empty"}
	}

	var segments []Segment
	err = retry.Do(ctx, c.maxAttempts, c.baseDelay, func(ctx context.Context) error {
		var callErr error
		segments, callErr = c.backend.Transcribe(ctx, audioPath, languageHint)
		return callErr
	})
	if err != nil {
		var ae *retry.AuthError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, &TranscriptionError{Backend: c.backend.Name(), Reason: "service call failed", Err: err}
	}

	if err := validateSegments(segments); err != nil {
		return nil, &TranscriptionError{Backend: c.backend.Name(), Reason: "malformed transcript", Err: err}
	}
	return segments, nil
}

// validateSegments checks the one property the client is responsible for:
// timestamps are monotonically non-decreasing across the ordered sequence.
func validateSegments(segments []Segment) error {
	var cursor time.Duration
	for i, seg := range segments {
		if seg.Start < 0 || seg.End < seg.Start {
			return fmt.Errorf("segment %d has invalid range [%v, %v]", i+1, seg.Start, seg.End)
		}
		if seg.Start < cursor {
			return fmt.Errorf("segment %d starts at %v before previous segment's start %v", i+1, seg.Start, cursor)
		}
		cursor = seg.Start
	}
	return nil
}
