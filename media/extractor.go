package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// SupportedContainers are the video container extensions the extractor
// accepts, matching the upload filter of the UI.
var SupportedContainers = []string{"mp4", "mov", "avi", "mkv", "wmv", "flv", "webm", "m4v"}

// DecodeError is the fatal outcome of audio extraction: the input is an
// unsupported container or ffmpeg could not decode it. Decode failures are
// deterministic, so they are never retried; the user has to supply a valid
// file.
type DecodeError struct {
	Path   string
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("cannot decode %s: %s", filepath.Base(e.Path), e.Detail)
	}
	return fmt.Sprintf("cannot decode %s", filepath.Base(e.Path))
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Extractor converts video files into mono 16 kHz PCM WAV audio via ffmpeg,
// the format the ASR backends expect.
type Extractor struct {
	supported map[string]struct{}
}

// NewExtractor builds an extractor accepting the default container set.
func NewExtractor() *Extractor {
	supported := make(map[string]struct{}, len(SupportedContainers))
	for _, ext := range SupportedContainers {
		supported[ext] = struct{}{}
	}
	return &Extractor{supported: supported}
}

// IsSupportedContainer reports whether the filename carries an accepted
// video container extension.
func (e *Extractor) IsSupportedContainer(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := e.supported[ext]
	return ok
}

// ExtractAudio decodes the audio track of videoPath into audioPath as mono
// 16 kHz PCM WAV. Any ffmpeg failure maps to a DecodeError carrying the tail
// of ffmpeg's stderr.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if !e.IsSupportedContainer(videoPath) {
		return &DecodeError{
			Path:   videoPath,
			Detail: fmt.Sprintf("unsupported container %q (supported: %s)", filepath.Ext(videoPath), strings.Join(SupportedContainers, ", ")),
		}
	}
	if _, err := os.Stat(videoPath); err != nil {
		return &DecodeError{Path: videoPath, Detail: "cannot access input file", Err: err}
	}

	cmd := ffmpeg.Input(videoPath).
		Output(audioPath, ffmpeg.KwArgs{
			"vn":  "",
			"ac":  "1",
			"ar":  "16000",
			"c:a": "pcm_s16le",
		}).
		OverWriteOutput().
		Compile()

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return &DecodeError{Path: videoPath, Detail: "failed to start ffmpeg", Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return fmt.Errorf("audio extraction interrupted: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return &DecodeError{Path: videoPath, Detail: stderrTail(stderr.String()), Err: err}
		}
	}

	info, err := os.Stat(audioPath)
	if err != nil || info.Size() == 0 {
		return &DecodeError{Path: videoPath, Detail: "ffmpeg completed but produced no audio output", Err: err}
	}
	return nil
}

// ProbeDuration reads the container duration via ffprobe. A probe failure
// means the file is corrupt or not a media file at all.
func (e *Extractor) ProbeDuration(videoPath string) (time.Duration, error) {
	raw, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return 0, &DecodeError{Path: videoPath, Detail: "ffprobe failed", Err: err}
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return 0, &DecodeError{Path: videoPath, Detail: "unreadable probe output", Err: err}
	}

	sec, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, &DecodeError{Path: videoPath, Detail: "container reports no duration"}
	}
	return time.Duration(sec * float64(time.Second)).Round(time.Millisecond), nil
}

// stderrTail keeps the last few lines of ffmpeg output, which is where the
// actual decode error lands.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, "\n")
}
