package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"subpilot/asr"
	"subpilot/config"
	"subpilot/media"
	"subpilot/pipeline"
	"subpilot/session"
	"subpilot/subtitle"
	"subpilot/translate"

	"github.com/gin-gonic/gin"
)

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(ctx context.Context, audioPath, languageHint string) ([]asr.Segment, error) {
	return nil, nil
}

type stubTranslator struct{}

func (stubTranslator) TranslateCues(ctx context.Context, cues []subtitle.Cue, target translate.Language) ([]subtitle.Cue, []translate.BatchFailure, error) {
	return cues, nil, nil
}

func newTestServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{Port: "8080", TempDir: t.TempDir()}
	mgr := session.NewManager()
	extractor := media.NewExtractor()
	runner := pipeline.NewRunner(mgr, extractor, stubTranscriber{}, stubTranslator{}, subtitle.DefaultPolicy, cfg.TempDir)

	return NewServer(mgr, runner, extractor, nil, cfg), mgr
}

func seedCues(mgr *session.Manager) {
	mgr.Reset("job-1", "/tmp/clip.mp4", "clip.mp4")
	mgr.SetCues([]subtitle.Cue{
		{Index: 1, Start: time.Second, End: 2500 * time.Millisecond, Text: "Hi"},
		{Index: 2, Start: 3 * time.Second, End: 5 * time.Second, Text: "How are you"},
	})
	mgr.SetStage(session.StageComplete)
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestStatusReportsStage(t *testing.T) {
	s, mgr := newTestServer(t)
	seedCues(mgr)

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var st session.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Stage != session.StageComplete {
		t.Fatalf("stage = %q, want %q", st.Stage, session.StageComplete)
	}
	if st.Stats.CueCount != 2 {
		t.Fatalf("CueCount = %d, want 2", st.Stats.CueCount)
	}
}

func TestUploadRejectsUnsupportedContainer(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("video", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("not a video"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/videos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := doRequest(s, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "unsupported container") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestUploadStartsFreshSession(t *testing.T) {
	s, mgr := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("video", "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("fake mp4 payload"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/videos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := doRequest(s, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}
	if mgr.JobID() == "" {
		t.Fatal("expected a session to be started")
	}
	if mgr.VideoName() != "clip.mp4" {
		t.Fatalf("VideoName = %q", mgr.VideoName())
	}
}

func TestTranscribeWithoutUpload(t *testing.T) {
	s, _ := newTestServer(t)
	w := doRequest(s, httptest.NewRequest(http.MethodPost, "/api/videos/transcribe", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestEditCue(t *testing.T) {
	s, mgr := newTestServer(t)
	seedCues(mgr)

	body := strings.NewReader(`{"text":"Hello"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/subtitles/1", body)
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if mgr.Cues()[0].Text != "Hello" {
		t.Fatalf("cue text = %q, want Hello", mgr.Cues()[0].Text)
	}
}

func TestEditCueUnknownIndex(t *testing.T) {
	s, mgr := newTestServer(t)
	seedCues(mgr)

	body := strings.NewReader(`{"text":"x"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/subtitles/99", body)
	req.Header.Set("Content-Type", "application/json")

	if w := doRequest(s, req); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListCuesWithSearch(t *testing.T) {
	s, mgr := newTestServer(t)
	seedCues(mgr)

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/subtitles?q=how", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Cues []cueView `json:"cues"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Cues) != 1 || resp.Cues[0].Text != "How are you" {
		t.Fatalf("cues = %+v", resp.Cues)
	}
}

func TestExportServesSRTDownload(t *testing.T) {
	s, mgr := newTestServer(t)
	seedCues(mgr)

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/subtitles/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "clip.source.srt") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "1\n00:00:01,000 --> 00:00:02,500\nHi\n\n") {
		t.Fatalf("unexpected SRT body:\n%s", w.Body.String())
	}
}

func TestExportRejectsUnknownTrack(t *testing.T) {
	s, mgr := newTestServer(t)
	seedCues(mgr)

	if w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/subtitles/export?track=karaoke", nil)); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTranslateRejectsUnknownLanguage(t *testing.T) {
	s, mgr := newTestServer(t)
	seedCues(mgr)

	body := strings.NewReader(`{"target_language":"Klingon"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/subtitles/translate", body)
	req.Header.Set("Content-Type", "application/json")

	if w := doRequest(s, req); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestImportSRTForTranslationOnlyFlow(t *testing.T) {
	s, mgr := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("srt", "existing.srt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("1\n00:00:01,000 --> 00:00:02,500\nHi\n\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/subtitles/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := doRequest(s, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}
	cues := mgr.Cues()
	if len(cues) != 1 || cues[0].Text != "Hi" {
		t.Fatalf("cues = %+v", cues)
	}
	if mgr.Stage() != session.StageComplete {
		t.Fatalf("stage = %q, want %q", mgr.Stage(), session.StageComplete)
	}
}
