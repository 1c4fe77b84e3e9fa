package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	coherecore "github.com/cohere-ai/cohere-go/v2/core"

	"subpilot/shared/retry"
)

const cohereProviderName = "cohere"

// CohereProvider translates through the Cohere Chat API.
// SDK: github.com/cohere-ai/cohere-go/v2
type CohereProvider struct {
	client *cohereclient.Client
	model  string
}

// NewCohereProvider builds the Cohere backend. model defaults to command-r.
func NewCohereProvider(apiKey, model string, timeout time.Duration) *CohereProvider {
	if model == "" {
		model = "command-r"
	}
	httpClient := &http.Client{Timeout: timeout}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereProvider{client: client, model: model}
}

// Name implements Provider.
func (p *CohereProvider) Name() string { return cohereProviderName }

// TranslateBatch implements Provider.
func (p *CohereProvider) TranslateBatch(ctx context.Context, texts []string, target Language) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.Chat(ctx, &cohere.ChatRequest{
		Message:  buildPrompt(texts, target),
		Model:    strPtr(p.model),
		Preamble: strPtr(systemPrompt),
	})
	if err != nil {
		return nil, classifyCohereError(err)
	}
	if resp == nil || resp.Text == "" {
		return nil, fmt.Errorf("%s: chat returned empty response", cohereProviderName)
	}

	return parseNumberedLines(resp.Text, len(texts), cohereProviderName)
}

// classifyCohereError maps SDK errors onto the shared taxonomy so the
// client's retry policy applies here the same way it does for raw HTTP
// providers.
func classifyCohereError(err error) error {
	var apiErr *coherecore.APIError
	if errors.As(err, &apiErr) {
		if clsErr := retry.ClassifyStatus(cohereProviderName, apiErr.StatusCode, apiErr.Error()); clsErr != nil {
			return clsErr
		}
	}
	return &retry.TransientError{Provider: cohereProviderName, Message: err.Error()}
}

func strPtr(s string) *string { return &s }
