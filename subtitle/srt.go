package subtitle

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Track selects which text goes into an exported SRT file.
type Track string

const (
	// TrackSource exports the recognized text.
	TrackSource Track = "source"
	// TrackTranslated exports the translated text, falling back to the
	// source text for cues whose translation is missing.
	TrackTranslated Track = "translated"
	// TrackBilingual exports the source text with the translation on the
	// following line when present.
	TrackBilingual Track = "bilingual"
)

// ParseTrack validates a track name supplied by the API surface.
func ParseTrack(raw string) (Track, error) {
	switch Track(strings.ToLower(strings.TrimSpace(raw))) {
	case TrackSource:
		return TrackSource, nil
	case TrackTranslated:
		return TrackTranslated, nil
	case TrackBilingual:
		return TrackBilingual, nil
	}
	return "", fmt.Errorf("unknown track %q", raw)
}

// FormatSRT renders the cue sequence as SRT text. Cues are renumbered
// sequentially from 1 regardless of stored indices, timestamps are
// zero-padded to millisecond precision, and every block ends with a blank
// line. The output is byte-identical across calls for the same input.
func FormatSRT(cues []Cue, track Track) string {
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(c.Start),
			FormatTimestamp(c.End),
			trackText(c, track),
		)
	}
	return b.String()
}

func trackText(c Cue, track Track) string {
	switch track {
	case TrackTranslated:
		if c.TranslatedText != "" {
			return c.TranslatedText
		}
		return c.Text
	case TrackBilingual:
		if c.TranslatedText != "" {
			return c.Text + "\n" + c.TranslatedText
		}
		return c.Text
	default:
		return c.Text
	}
}

// FormatTimestamp renders a duration as an SRT timestamp, HH:MM:SS,mmm.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	s := (ms % 60000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}

// ParseTimestamp parses an SRT timestamp (HH:MM:SS,mmm). A dot millisecond
// separator is tolerated since some tools emit it.
func ParseTimestamp(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	s = strings.Replace(s, ".", ",", 1)
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", raw)
	}
	secParts := strings.Split(parts[2], ",")
	if len(secParts) != 2 {
		return 0, fmt.Errorf("malformed timestamp %q", raw)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q", raw)
	}
	sec, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q", raw)
	}
	ms, err := strconv.Atoi(secParts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q", raw)
	}
	if m > 59 || sec > 59 || ms > 999 || h < 0 || m < 0 || sec < 0 || ms < 0 {
		return 0, fmt.Errorf("timestamp out of range %q", raw)
	}

	total := int64(h)*3600000 + int64(m)*60000 + int64(sec)*1000 + int64(ms)
	return time.Duration(total) * time.Millisecond, nil
}

// ParseSRT parses SRT text into cues. Indices are renumbered from 1 in file
// order; the round trip ParseSRT(FormatSRT(cues, TrackSource)) preserves cue
// count, ordering, text, and timestamps to millisecond precision.
func ParseSRT(text string) ([]Cue, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")

	var cues []Cue
	for _, block := range blocks {
		lines := splitBlock(block)
		if len(lines) == 0 {
			continue
		}
		if len(lines) < 2 {
			return nil, fmt.Errorf("srt block %d: expected index, timing, and text lines", len(cues)+1)
		}

		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			return nil, fmt.Errorf("srt block %d: bad index line %q", len(cues)+1, lines[0])
		}

		start, end, err := parseTimingLine(lines[1])
		if err != nil {
			return nil, fmt.Errorf("srt block %d: %w", len(cues)+1, err)
		}

		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues, nil
}

// ReadSRT parses an SRT document from r.
func ReadSRT(r io.Reader) ([]Cue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	return ParseSRT(string(data))
}

func parseTimingLine(line string) (time.Duration, time.Duration, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad timing line %q", line)
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func splitBlock(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" && len(lines) == 0 {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
