package config

import "time"

// Service call policy
const (
	// MaxRetryAttempts bounds retries of transient ASR/translation failures.
	MaxRetryAttempts = 3

	// RetryBaseDelay is the first backoff step; it doubles per attempt.
	RetryBaseDelay = 500 * time.Millisecond

	// TranslateBatchSize is how many cues go into one translation API call.
	TranslateBatchSize = 20
)

// Stage timeouts keep the interactive surface from hanging on a stuck
// external process or network call.
const (
	ExtractTimeout    = 2 * time.Minute
	TranscribeTimeout = 5 * time.Minute
	TranslateTimeout  = 5 * time.Minute
)

// Upload handling
const (
	// MaxUploadBytes caps video uploads (500 MB).
	MaxUploadBytes = 500 << 20

	// TempDirName is the working directory for uploaded videos and
	// intermediate audio, relative to the process working directory.
	TempDirName = "temp"
)
