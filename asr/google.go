package asr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"

	"subpilot/shared/retry"
)

const googleProviderName = "google-speech"

// GoogleProvider transcribes audio through the Cloud Speech-to-Text v1 API.
// The synchronous Recognize call is used, which covers the short clips this
// service targets; word time offsets are requested so segments carry real
// start timestamps.
type GoogleProvider struct {
	service *speech.Service
}

// NewGoogleProvider builds the Speech-to-Text backend. credentialsFile is a
// service-account JSON path; when empty, apiKey is used instead.
func NewGoogleProvider(ctx context.Context, credentialsFile, apiKey string) (*GoogleProvider, error) {
	var opts []option.ClientOption
	switch {
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	default:
		return nil, &retry.AuthError{Provider: googleProviderName, Message: "no credentials file or API key configured"}
	}

	svc, err := speech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech service: %w", err)
	}
	return &GoogleProvider{service: svc}, nil
}

// Name implements Transcriber.
func (p *GoogleProvider) Name() string { return googleProviderName }

// Transcribe implements Transcriber.
func (p *GoogleProvider) Transcribe(ctx context.Context, audioPath string, languageHint string) ([]Segment, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	req := &speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:              "LINEAR16",
			SampleRateHertz:       16000,
			AudioChannelCount:     1,
			LanguageCode:          languageCode(languageHint),
			EnableWordTimeOffsets: true,
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
	}

	resp, err := p.service.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%s: empty recognize response", googleProviderName)
	}

	var segments []Segment
	var cursor time.Duration
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		text := strings.TrimSpace(alt.Transcript)
		if text == "" {
			continue
		}

		start := cursor
		if len(alt.Words) > 0 {
			if d, err := parseAPIDuration(alt.Words[0].StartTime); err == nil {
				start = d
			}
		}
		end, err := parseAPIDuration(result.ResultEndTime)
		if err != nil || end <= start {
			if len(alt.Words) > 0 {
				if d, werr := parseAPIDuration(alt.Words[len(alt.Words)-1].EndTime); werr == nil {
					end = d
				}
			}
		}
		if end <= start {
			end = start + time.Second
		}

		segments = append(segments, Segment{Start: start, End: end, Text: text})
		cursor = end
	}
	return segments, nil
}

// classifyGoogleError maps googleapi errors onto the shared taxonomy so the
// client's retry policy applies to this backend too.
func classifyGoogleError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if clsErr := retry.ClassifyStatus(googleProviderName, gerr.Code, gerr.Message); clsErr != nil {
			return clsErr
		}
	}
	return &retry.TransientError{Provider: googleProviderName, Message: err.Error()}
}

// parseAPIDuration parses the REST duration encoding, e.g. "3.500s".
func parseAPIDuration(raw string) (time.Duration, error) {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "s")
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q", raw)
	}
	return time.Duration(sec * float64(time.Second)).Round(time.Millisecond), nil
}

// languageCode widens short language hints to the BCP-47 codes the API
// expects. Hints already in BCP-47 form pass through unchanged.
func languageCode(hint string) string {
	h := strings.TrimSpace(hint)
	if h == "" {
		return "en-US"
	}
	if strings.Contains(h, "-") {
		return h
	}
	switch strings.ToLower(h) {
	case "en":
		return "en-US"
	case "zh":
		return "cmn-Hans-CN"
	case "yue":
		return "yue-Hant-HK"
	case "ja":
		return "ja-JP"
	case "ko":
		return "ko-KR"
	case "fr":
		return "fr-FR"
	case "de":
		return "de-DE"
	case "es":
		return "es-ES"
	case "ru":
		return "ru-RU"
	case "pt":
		return "pt-BR"
	case "tr":
		return "tr-TR"
	default:
		return h
	}
}
