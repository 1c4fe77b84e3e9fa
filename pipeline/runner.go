package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"subpilot/asr"
	"subpilot/config"
	"subpilot/session"
	"subpilot/subtitle"
	"subpilot/translate"
)

// ErrAbandoned is returned when the user abandons the job between stages.
var ErrAbandoned = errors.New("job abandoned")

// Extractor pulls the audio track out of a video file.
type Extractor interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

// Transcriber turns an audio file into timed speech segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) ([]asr.Segment, error)
}

// Translator translates a cue sequence into a target language.
type Translator interface {
	TranslateCues(ctx context.Context, cues []subtitle.Cue, target translate.Language) ([]subtitle.Cue, []translate.BatchFailure, error)
}

// Runner executes the subtitle workflow for the active session
type Runner struct {
	sessionManager *session.Manager
	extractor      Extractor
	transcriber    Transcriber
	translator     Translator
	policy         subtitle.Policy
	tempDir        string
}

// NewRunner creates a new workflow runner
func NewRunner(sessionManager *session.Manager, extractor Extractor, transcriber Transcriber, translator Translator, policy subtitle.Policy, tempDir string) *Runner {
	return &Runner{
		sessionManager: sessionManager,
		extractor:      extractor,
		transcriber:    transcriber,
		translator:     translator,
		policy:         policy,
		tempDir:        tempDir,
	}
}

// RunOptions carries per-run knobs for the transcription workflow. The zero
// value means "use the runner's defaults".
type RunOptions struct {
	LanguageHint string
	Policy       subtitle.Policy
}

// Run executes the transcription workflow: extract audio, transcribe it, and
// build the cue sequence. Translation runs separately via RunTranslate so the
// user can review cues first.
// This is called by the transcribe trigger (POST /api/videos/transcribe).
func (r *Runner) Run(ctx context.Context, opts RunOptions) error {
	audioPath, err := r.extractAudio(ctx)
	if err != nil {
		return r.fail("extract audio", err)
	}
	defer os.Remove(audioPath)

	segments, err := r.transcribe(ctx, audioPath, opts.LanguageHint)
	if err != nil {
		return r.fail("transcribe", err)
	}

	policy := opts.Policy
	if policy == (subtitle.Policy{}) {
		policy = r.policy
	}
	if err := r.buildCues(segments, policy); err != nil {
		return r.fail("build cues", err)
	}

	r.sessionManager.SetStage(session.StageComplete)
	r.sessionManager.AddLog("Transcription workflow complete")
	return nil
}

// RunTranslate translates the session's cues into the target language.
// Degraded batches are recorded on the session rather than failing the run.
func (r *Runner) RunTranslate(ctx context.Context, target translate.Language) error {
	if err := r.checkAbandoned(); err != nil {
		return r.fail("translate", err)
	}

	cues := r.sessionManager.Cues()
	if len(cues) == 0 {
		err := errors.New("no cues to translate")
		r.sessionManager.SetError(err)
		return err
	}

	r.sessionManager.SetStage(session.StageTranslating)
	r.sessionManager.AddLog(fmt.Sprintf("Translating %d cues to %s...", len(cues), target))

	tctx, cancel := context.WithTimeout(ctx, config.TranslateTimeout)
	defer cancel()

	translated, failures, err := r.translator.TranslateCues(tctx, cues, target)
	if err != nil {
		return r.fail("translate", err)
	}

	r.sessionManager.SetCues(translated)
	r.sessionManager.SetTranslationFailures(failures)

	if len(failures) > 0 {
		for _, f := range failures {
			log.Printf("Translation batch %d-%d degraded: %s", f.FirstIndex, f.LastIndex, f.Reason)
		}
		r.sessionManager.AddLog(fmt.Sprintf("Translation complete with %d degraded batches", len(failures)))
	} else {
		r.sessionManager.AddLog("Translation complete")
	}

	r.sessionManager.SetStage(session.StageComplete)
	return nil
}

// extractAudio decodes the uploaded video into a mono 16kHz WAV file.
func (r *Runner) extractAudio(ctx context.Context) (string, error) {
	if err := r.checkAbandoned(); err != nil {
		return "", err
	}

	r.sessionManager.SetStage(session.StageExtracting)
	r.sessionManager.AddLog("Extracting audio track...")

	videoPath := r.sessionManager.VideoPath()
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(r.tempDir, base+".wav")

	ectx, cancel := context.WithTimeout(ctx, config.ExtractTimeout)
	defer cancel()

	if err := r.extractor.ExtractAudio(ectx, videoPath, audioPath); err != nil {
		return "", err
	}

	r.sessionManager.AddLog("Audio extracted successfully")
	return audioPath, nil
}

// transcribe sends the audio to the configured speech backend.
func (r *Runner) transcribe(ctx context.Context, audioPath, languageHint string) ([]asr.Segment, error) {
	if err := r.checkAbandoned(); err != nil {
		return nil, err
	}

	r.sessionManager.SetStage(session.StageTranscribing)
	r.sessionManager.AddLog("Transcribing audio...")

	tctx, cancel := context.WithTimeout(ctx, config.TranscribeTimeout)
	defer cancel()

	segments, err := r.transcriber.Transcribe(tctx, audioPath, languageHint)
	if err != nil {
		return nil, err
	}

	r.sessionManager.AddLog(fmt.Sprintf("Transcribed %d segments", len(segments)))
	return segments, nil
}

// buildCues turns raw segments into the display cue sequence. A silent clip
// produces zero cues without failing the run.
func (r *Runner) buildCues(segments []asr.Segment, policy subtitle.Policy) error {
	if err := r.checkAbandoned(); err != nil {
		return err
	}

	r.sessionManager.SetStage(session.StageBuilding)
	r.sessionManager.AddLog("Building subtitle cues...")

	cues := subtitle.Build(segments, policy)
	r.sessionManager.SetCues(cues)

	if len(cues) == 0 {
		r.sessionManager.AddLog("No speech detected, cue sequence is empty")
	} else {
		r.sessionManager.AddLog(fmt.Sprintf("Built %d cues", len(cues)))
	}
	return nil
}

// fail records err on the session. Abandonment is not an error: the session
// returns to idle so the surface stays usable for the next upload.
func (r *Runner) fail(stage string, err error) error {
	if errors.Is(err, ErrAbandoned) {
		r.sessionManager.SetStage(session.StageIdle)
		return err
	}
	r.sessionManager.SetError(fmt.Errorf("%s: %w", stage, err))
	return err
}

// checkAbandoned stops the pipeline between stages once the user walks away.
func (r *Runner) checkAbandoned() error {
	if r.sessionManager.Abandoned() {
		log.Printf("Job %s abandoned, stopping pipeline", r.sessionManager.JobID())
		return ErrAbandoned
	}
	return nil
}
