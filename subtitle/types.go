package subtitle

import "time"

// Cue is one subtitle display unit. Index is 1-based and gap-free across an
// ordered cue sequence; Start is strictly before End.
type Cue struct {
	Index          int
	Start          time.Duration
	End            time.Duration
	Text           string
	TranslatedText string
}

// Duration returns the display time of the cue.
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// Stats summarizes a cue sequence for the preview surface.
type Stats struct {
	CueCount      int           `json:"cue_count"`
	TotalDuration time.Duration `json:"total_duration"`
	TotalChars    int           `json:"total_chars"`
}

// Summarize computes cue count, summed display duration, and character count
// over the source text of the given cues.
func Summarize(cues []Cue) Stats {
	var st Stats
	st.CueCount = len(cues)
	for _, c := range cues {
		st.TotalDuration += c.Duration()
		st.TotalChars += len([]rune(c.Text))
	}
	return st
}
