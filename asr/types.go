package asr

import "time"

// Segment is one timed unit of recognized speech as returned by an ASR
// backend, before any cue-duration policy is applied.
type Segment struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// Duration returns the time span covered by the segment.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}
