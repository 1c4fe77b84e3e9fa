package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"subpilot/config"
	"subpilot/pipeline"
	"subpilot/session"
	"subpilot/subtitle"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// registerVideoRoutes registers upload and transcription endpoints.
func (s *Server) registerVideoRoutes(r *gin.Engine) {
	g := r.Group("/api/videos")
	g.POST("", s.handleUpload)
	g.POST("/transcribe", s.handleTranscribe)
	g.POST("/abandon", s.handleAbandon)
}

// transcribeRequest carries optional transcription parameters. The cue
// policy fields override the service defaults for this run only.
type transcribeRequest struct {
	LanguageHint     string `json:"language_hint"`
	MinCueDurationMS int64  `json:"min_cue_duration_ms"`
	MaxCueDurationMS int64  `json:"max_cue_duration_ms"`
	MaxCharsPerLine  int    `json:"max_chars_per_line"`
}

// handleUpload accepts a video file and starts a fresh session for it.
// POST /api/videos
// Expects: multipart form with a "video" file field
func (s *Server) handleUpload(c *gin.Context) {
	if s.busy() {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("a job is already running (stage=%s)", s.sessionManager.Stage())})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxUploadBytes)

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing video file: " + err.Error()})
		return
	}

	if !s.extractor.IsSupportedContainer(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported container %q", filepath.Ext(file.Filename))})
		return
	}

	jobID := uuid.New().String()
	dst := filepath.Join(s.cfg.TempDir, jobID+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload: " + err.Error()})
		return
	}

	s.sessionManager.Reset(jobID, dst, file.Filename)
	s.sessionManager.AddLog(fmt.Sprintf("Uploaded %s (%d bytes)", file.Filename, file.Size))
	log.Printf("Received video upload: %s job=%s", file.Filename, jobID)

	c.JSON(http.StatusCreated, gin.H{"job_id": jobID, "video_name": file.Filename})
}

// handleTranscribe runs the extract/transcribe/build pipeline for the
// uploaded video. It runs asynchronously and returns 202 Accepted immediately.
// POST /api/videos/transcribe
func (s *Server) handleTranscribe(c *gin.Context) {
	if s.sessionManager.JobID() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no video uploaded"})
		return
	}
	if s.busy() {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("a job is already running (stage=%s)", s.sessionManager.Stage())})
		return
	}

	var req transcribeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
			return
		}
	}

	opts := pipeline.RunOptions{
		LanguageHint: req.LanguageHint,
		Policy: subtitle.Policy{
			MinCueDuration:  time.Duration(req.MinCueDurationMS) * time.Millisecond,
			MaxCueDuration:  time.Duration(req.MaxCueDurationMS) * time.Millisecond,
			MaxCharsPerLine: req.MaxCharsPerLine,
		},
	}

	go func() {
		if err := s.runner.Run(context.Background(), opts); err != nil {
			log.Printf("Transcription workflow error: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "transcription started"})
}

// handleAbandon flags the current job so the pipeline stops before its
// next stage.
// POST /api/videos/abandon
func (s *Server) handleAbandon(c *gin.Context) {
	if s.sessionManager.JobID() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no active job"})
		return
	}
	s.sessionManager.Abandon()
	c.JSON(http.StatusOK, gin.H{"status": "abandoned"})
}

// busy reports whether a pipeline run is in flight.
func (s *Server) busy() bool {
	switch s.sessionManager.Stage() {
	case session.StageExtracting, session.StageTranscribing, session.StageBuilding, session.StageTranslating:
		return true
	}
	return false
}
