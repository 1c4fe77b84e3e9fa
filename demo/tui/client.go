package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SubtitleClient is a thin HTTP client for the subtitle server API
type SubtitleClient struct {
	baseURL string
	client  *http.Client
}

// NewSubtitleClient creates a new subtitle server client
func NewSubtitleClient(baseURL string) *SubtitleClient {
	return &SubtitleClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetStatus fetches the current session status from the server
func (c *SubtitleClient) GetStatus() (*StatusResponse, error) {
	resp, err := c.client.Get(c.baseURL + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &status, nil
}

// GetCues fetches the current cue sequence
func (c *SubtitleClient) GetCues() ([]Cue, error) {
	resp, err := c.client.Get(c.baseURL + "/api/subtitles")
	if err != nil {
		return nil, fmt.Errorf("failed to get cues: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Cues []Cue `json:"cues"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return payload.Cues, nil
}

// StartTranscription triggers the transcription workflow
func (c *SubtitleClient) StartTranscription() error {
	return c.post("/api/videos/transcribe", []byte("{}"))
}

// StartTranslation triggers translation into the target language
func (c *SubtitleClient) StartTranslation(target string) error {
	body, _ := json.Marshal(map[string]string{"target_language": target})
	return c.post("/api/subtitles/translate", body)
}

func (c *SubtitleClient) post(path string, body []byte) error {
	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(data))
	}

	return nil
}
