package translate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"subpilot/shared/retry"
	"subpilot/subtitle"
)

// Provider translates one batch of cue texts. Implementations wrap one
// external LLM API and must return exactly one translation per input text,
// in input order.
type Provider interface {
	TranslateBatch(ctx context.Context, texts []string, target Language) ([]string, error)
	Name() string
}

// CountMismatchError reports a batch whose translation count differs from
// its input count. The batch is discarded rather than guessed at; dropping
// or reordering cues silently is never acceptable.
type CountMismatchError struct {
	Provider string
	Want     int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("%s: translation count mismatch: sent %d cues, received %d translations", e.Provider, e.Want, e.Got)
}

// BatchFailure records one failed batch for the degraded-outcome report.
// FirstIndex and LastIndex are the cue indices (1-based) covered by the batch.
type BatchFailure struct {
	FirstIndex int    `json:"first_index"`
	LastIndex  int    `json:"last_index"`
	Reason     string `json:"reason"`
}

// Client batches cue texts through a Provider with the shared retry policy.
// A failed batch leaves its cues untranslated and is reported per batch;
// partial translation is an accepted degraded outcome.
type Client struct {
	provider    Provider
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient builds a translation client around the chosen provider.
func NewClient(provider Provider, batchSize, maxAttempts int, baseDelay time.Duration) *Client {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Client{provider: provider, batchSize: batchSize, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// TranslateCues returns a copy of cues with TranslatedText filled in, plus a
// report of any batches that failed. Cue count and ordering are always
// preserved. An AuthError aborts the whole call: retrying other batches with
// the same bad credentials cannot succeed.
func (c *Client) TranslateCues(ctx context.Context, cues []subtitle.Cue, target Language) ([]subtitle.Cue, []BatchFailure, error) {
	out := make([]subtitle.Cue, len(cues))
	copy(out, cues)

	var failures []BatchFailure
	for lo := 0; lo < len(out); lo += c.batchSize {
		hi := lo + c.batchSize
		if hi > len(out) {
			hi = len(out)
		}
		batch := out[lo:hi]

		texts := make([]string, len(batch))
		for i, cue := range batch {
			texts[i] = cue.Text
		}

		var translations []string
		err := retry.Do(ctx, c.maxAttempts, c.baseDelay, func(ctx context.Context) error {
			var callErr error
			translations, callErr = c.provider.TranslateBatch(ctx, texts, target)
			return callErr
		})
		if err == nil && len(translations) != len(texts) {
			err = &CountMismatchError{Provider: c.provider.Name(), Want: len(texts), Got: len(translations)}
		}
		if err != nil {
			var ae *retry.AuthError
			if errors.As(err, &ae) {
				return out, failures, err
			}
			failures = append(failures, BatchFailure{
				FirstIndex: batch[0].Index,
				LastIndex:  batch[len(batch)-1].Index,
				Reason:     err.Error(),
			})
			continue
		}

		for i := range batch {
			batch[i].TranslatedText = strings.TrimSpace(translations[i])
		}
	}

	return out, failures, nil
}

// buildPrompt renders the numbered-line batch protocol both providers use.
// The model is told to echo the numbering so the response can be matched
// back to cues positionally.
func buildPrompt(texts []string, target Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following %d numbered subtitle lines into %s.\n", len(texts), target)
	b.WriteString("Reply with the same numbering, exactly one translation per line, and no other text.\n\n")
	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(text, "\n", " "))
	}
	return b.String()
}

const systemPrompt = "You are a professional subtitle translator. Translations must be natural, concise enough for subtitles, and preserve the tone of the original line."

var numberedLine = regexp.MustCompile(`^\s*(\d+)[.)、]\s*(.*)$`)

// parseNumberedLines extracts want translations from a numbered response.
// Unnumbered lines continue the previous entry; a missing or duplicate
// number means the model broke the protocol and the batch fails the count
// check.
func parseNumberedLines(raw string, want int, provider string) ([]string, error) {
	results := make([]string, want)
	seen := make([]bool, want)
	got := 0
	last := -1

	for _, line := range strings.Split(raw, "\n") {
		m := numberedLine.FindStringSubmatch(line)
		if m == nil {
			if last >= 0 && strings.TrimSpace(line) != "" {
				results[last] += " " + strings.TrimSpace(line)
			}
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > want || seen[n-1] {
			return nil, &CountMismatchError{Provider: provider, Want: want, Got: got}
		}
		results[n-1] = strings.TrimSpace(m[2])
		seen[n-1] = true
		last = n - 1
		got++
	}

	if got != want {
		return nil, &CountMismatchError{Provider: provider, Want: want, Got: got}
	}
	return results, nil
}
