package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"subpilot/session"
	"subpilot/subtitle"
	"subpilot/translate"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// registerSubtitleRoutes registers status, cue, and export endpoints.
func (s *Server) registerSubtitleRoutes(r *gin.Engine) {
	r.GET("/api/status", s.handleStatus)
	r.GET("/api/languages", s.handleLanguages)

	g := r.Group("/api/subtitles")
	g.GET("", s.handleListCues)
	g.PUT("/:index", s.handleEditCue)
	g.POST("/translate", s.handleTranslate)
	g.GET("/export", s.handleExport)
	g.POST("/import", s.handleImport)
}

// cueView is the JSON shape of one cue, with SRT-style timestamps.
type cueView struct {
	Index          int    `json:"index"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Text           string `json:"text"`
	TranslatedText string `json:"translated_text,omitempty"`
}

// editCueRequest carries a partial cue edit. Omitted fields are untouched.
type editCueRequest struct {
	Text           *string `json:"text"`
	TranslatedText *string `json:"translated_text"`
}

// translateRequest names the translation target.
type translateRequest struct {
	TargetLanguage string `json:"target_language"`
}

func viewOf(cue subtitle.Cue) cueView {
	return cueView{
		Index:          cue.Index,
		Start:          subtitle.FormatTimestamp(cue.Start),
		End:            subtitle.FormatTimestamp(cue.End),
		Text:           cue.Text,
		TranslatedText: cue.TranslatedText,
	}
}

// handleStatus reports the session snapshot.
// GET /api/status
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.sessionManager.Snapshot())
}

// handleLanguages lists the translation targets the UI can offer.
// GET /api/languages
func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": translate.SupportedLanguages()})
}

// handleListCues returns the cue sequence, optionally filtered by a
// case-insensitive substring match on the source or translated text.
// GET /api/subtitles?q=...
func (s *Server) handleListCues(c *gin.Context) {
	cues := s.sessionManager.Cues()

	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	views := make([]cueView, 0, len(cues))
	for _, cue := range cues {
		if query != "" &&
			!strings.Contains(strings.ToLower(cue.Text), query) &&
			!strings.Contains(strings.ToLower(cue.TranslatedText), query) {
			continue
		}
		views = append(views, viewOf(cue))
	}

	c.JSON(http.StatusOK, gin.H{
		"cues":  views,
		"stats": subtitle.Summarize(cues),
	})
}

// handleEditCue applies an in-place text edit to one cue.
// PUT /api/subtitles/:index
func (s *Server) handleEditCue(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cue index"})
		return
	}

	var req editCueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}
	if req.Text == nil && req.TranslatedText == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to edit"})
		return
	}

	cue, err := s.sessionManager.UpdateCue(index, req.Text, req.TranslatedText)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, viewOf(cue))
}

// handleTranslate translates the cue sequence into the target language.
// It runs asynchronously and returns 202 Accepted immediately.
// POST /api/subtitles/translate
func (s *Server) handleTranslate(c *gin.Context) {
	if s.busy() {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("a job is already running (stage=%s)", s.sessionManager.Stage())})
		return
	}

	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}

	target, err := translate.ParseLanguage(req.TargetLanguage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(s.sessionManager.Cues()) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no cues to translate"})
		return
	}

	go func() {
		if err := s.runner.RunTranslate(context.Background(), target); err != nil {
			log.Printf("Translation workflow error: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "translation started", "target_language": target})
}

// handleExport renders the cue sequence as an SRT document and serves it as
// a download. With upload=true and a configured sink, the document is also
// published there.
// GET /api/subtitles/export?track=source|translated|bilingual
func (s *Server) handleExport(c *gin.Context) {
	cues := s.sessionManager.Cues()

	track, err := subtitle.ParseTrack(c.DefaultQuery("track", "source"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := subtitle.FormatSRT(cues, track)

	base := strings.TrimSuffix(s.sessionManager.VideoName(), filepath.Ext(s.sessionManager.VideoName()))
	if base == "" {
		base = "subtitles"
	}
	filename := fmt.Sprintf("%s.%s.srt", base, track)

	if c.Query("upload") == "true" {
		if s.uploader == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no export sink configured"})
			return
		}
		location, err := s.uploader.UploadSRT(c.Request.Context(), filename, []byte(doc))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed: " + err.Error()})
			return
		}
		s.sessionManager.AddLog(fmt.Sprintf("Exported %s to %s", filename, location))
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/x-subrip; charset=utf-8", []byte(doc))
}

// handleImport accepts an existing SRT file so the user can translate and
// re-export it without running transcription.
// POST /api/subtitles/import
func (s *Server) handleImport(c *gin.Context) {
	if s.busy() {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("a job is already running (stage=%s)", s.sessionManager.Stage())})
		return
	}

	file, err := c.FormFile("srt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing srt file: " + err.Error()})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload: " + err.Error()})
		return
	}
	defer f.Close()

	cues, err := subtitle.ReadSRT(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid SRT document: " + err.Error()})
		return
	}

	s.sessionManager.Reset(uuid.New().String(), "", file.Filename)
	s.sessionManager.SetCues(cues)
	s.sessionManager.SetStage(session.StageComplete)
	s.sessionManager.AddLog(fmt.Sprintf("Imported %s (%d cues)", file.Filename, len(cues)))

	c.JSON(http.StatusCreated, gin.H{"cue_count": len(cues)})
}
