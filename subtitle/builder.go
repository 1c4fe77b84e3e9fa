package subtitle

import (
	"strings"
	"time"
	"unicode"

	"subpilot/asr"
)

// Policy controls how raw transcript segments are shaped into cues.
type Policy struct {
	// MinCueDuration: segments shorter than this are merged with a neighbor,
	// preferring the following segment.
	MinCueDuration time.Duration
	// MaxCueDuration: cues longer than this are split at the nearest clause
	// boundary, or at the midpoint timestamp when no boundary exists.
	MaxCueDuration time.Duration
	// MaxCharsPerLine caps the text length a merge may produce.
	MaxCharsPerLine int
}

// DefaultPolicy mirrors common subtitling conventions.
var DefaultPolicy = Policy{
	MinCueDuration:  time.Second,
	MaxCueDuration:  8 * time.Second,
	MaxCharsPerLine: 42,
}

func (p Policy) withDefaults() Policy {
	if p.MinCueDuration <= 0 {
		p.MinCueDuration = DefaultPolicy.MinCueDuration
	}
	if p.MaxCueDuration <= 0 {
		p.MaxCueDuration = DefaultPolicy.MaxCueDuration
	}
	if p.MaxCharsPerLine <= 0 {
		p.MaxCharsPerLine = DefaultPolicy.MaxCharsPerLine
	}
	return p
}

// Build converts ordered transcript segments into an ordered cue sequence
// with contiguous 1-based indices. The merge/split heuristic is greedy and
// deterministic: identical segments and policy always produce identical cues.
func Build(segments []asr.Segment, policy Policy) []Cue {
	p := policy.withDefaults()

	cues := mergeShort(segments, p)

	var out []Cue
	for _, c := range cues {
		out = append(out, splitLong(c, p)...)
	}

	for i := range out {
		out[i].Index = i + 1
		if out[i].End <= out[i].Start {
			out[i].End = out[i].Start + p.MinCueDuration
		}
	}
	return out
}

// mergeShort folds segments below the minimum duration into a neighbor,
// preferring the following segment, as long as the merged text stays within
// the character budget. A trailing short segment merges into its predecessor.
func mergeShort(segments []asr.Segment, p Policy) []Cue {
	var cues []Cue
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		cur := Cue{Start: seg.Start, End: seg.End, Text: text}

		for cur.Duration() < p.MinCueDuration && i+1 < len(segments) {
			next := strings.TrimSpace(segments[i+1].Text)
			if next != "" && !fitsLine(cur.Text, next, p.MaxCharsPerLine) {
				break
			}
			if next != "" {
				cur.Text = joinText(cur.Text, next)
			}
			cur.End = segments[i+1].End
			i++
		}

		if cur.Duration() < p.MinCueDuration && len(cues) > 0 {
			prev := &cues[len(cues)-1]
			if fitsLine(prev.Text, cur.Text, p.MaxCharsPerLine) {
				prev.Text = joinText(prev.Text, cur.Text)
				prev.End = cur.End
				continue
			}
		}

		cues = append(cues, cur)
	}
	return cues
}

// splitLong recursively splits a cue exceeding the maximum duration. The cut
// lands on the clause boundary nearest the text midpoint when one exists;
// otherwise the text splits at the nearest space to the midpoint and the time
// range at the midpoint timestamp.
func splitLong(c Cue, p Policy) []Cue {
	if c.Duration() <= p.MaxCueDuration {
		return []Cue{c}
	}

	runes := []rune(c.Text)
	if len(runes) < 2 {
		return []Cue{c}
	}

	cut := clauseBoundary(runes)
	proportional := true
	if cut <= 0 || cut >= len(runes) {
		cut = spaceNearMidpoint(runes)
		proportional = false
	}
	if cut <= 0 || cut >= len(runes) {
		cut = len(runes) / 2
		proportional = false
	}

	left := strings.TrimSpace(string(runes[:cut]))
	right := strings.TrimSpace(string(runes[cut:]))
	if left == "" || right == "" {
		return []Cue{c}
	}

	var splitAt time.Duration
	if proportional {
		splitAt = c.Start + time.Duration(int64(c.Duration())*int64(cut)/int64(len(runes)))
	} else {
		splitAt = c.Start + c.Duration()/2
	}
	if splitAt <= c.Start || splitAt >= c.End {
		splitAt = c.Start + c.Duration()/2
	}

	first := Cue{Start: c.Start, End: splitAt, Text: left}
	second := Cue{Start: splitAt, End: c.End, Text: right}
	return append(splitLong(first, p), splitLong(second, p)...)
}

// clauseBoundary returns the rune index just past the sentence or clause
// punctuation nearest the midpoint, or -1 when the text has none.
func clauseBoundary(runes []rune) int {
	mid := len(runes) / 2
	best := -1
	bestDist := len(runes)
	for i, r := range runes {
		if !isClausePunct(r) {
			continue
		}
		// Cut after the punctuation mark.
		cut := i + 1
		if cut >= len(runes) {
			continue
		}
		dist := cut - mid
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best = cut
			bestDist = dist
		}
	}
	return best
}

func isClausePunct(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ',', '。', '！', '？', '；', '，', '、':
		return true
	}
	return false
}

func spaceNearMidpoint(runes []rune) int {
	mid := len(runes) / 2
	best := -1
	bestDist := len(runes)
	for i, r := range runes {
		if !unicode.IsSpace(r) {
			continue
		}
		dist := i - mid
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

func fitsLine(a, b string, maxChars int) bool {
	return len([]rune(a))+1+len([]rune(b)) <= maxChars
}

// joinText joins two cue text fragments with a single space. CJK text carries
// no meaningful inter-segment spacing, so fragments without spaces of their
// own are concatenated directly.
func joinText(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if noSpaceScript(a) && noSpaceScript(b) {
		return a + b
	}
	return a + " " + b
}

func noSpaceScript(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			continue
		}
		if unicode.IsPunct(r) {
			continue
		}
		return false
	}
	return s != ""
}
