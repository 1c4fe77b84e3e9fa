package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subpilot/shared/retry"
)

const whisperProviderName = "openai-whisper"

// WhisperProvider transcribes audio through the OpenAI-compatible
// /audio/transcriptions endpoint, requesting verbose_json so the response
// carries per-segment timestamps.
type WhisperProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewWhisperProvider builds a Whisper API backend. baseURL defaults to the
// OpenAI endpoint and model to whisper-1.
func NewWhisperProvider(baseURL, apiKey, model string, timeout time.Duration) *WhisperProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements Transcriber.
func (p *WhisperProvider) Name() string { return whisperProviderName }

// whisperResponse is the verbose_json payload of the Whisper ASR API.
type whisperResponse struct {
	Task     string           `json:"task"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []whisperSegment `json:"segments"`
	Text     string           `json:"text"`
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcribe implements Transcriber.
func (p *WhisperProvider) Transcribe(ctx context.Context, audioPath string, languageHint string) ([]Segment, error) {
	body, contentType, err := p.buildForm(audioPath, languageHint)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("build whisper request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &retry.TransientError{Provider: whisperProviderName, Message: err.Error()}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, &retry.TransientError{Provider: whisperProviderName, Message: err.Error()}
	}
	if err := retry.ClassifyStatus(whisperProviderName, resp.StatusCode, snippet(payload)); err != nil {
		return nil, err
	}

	var decoded whisperResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	segments := make([]Segment, 0, len(decoded.Segments))
	for _, s := range decoded.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start: secondsToDuration(s.Start),
			End:   secondsToDuration(s.End),
			Text:  text,
		})
	}
	return segments, nil
}

// buildForm assembles the multipart request body.
func (p *WhisperProvider) buildForm(audioPath, languageHint string) (*bytes.Buffer, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("model", p.model); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("response_format", "verbose_json"); err != nil {
		return nil, "", err
	}
	if languageHint != "" {
		if err := w.WriteField("language", languageHint); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read audio file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second)).Round(time.Millisecond)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}
