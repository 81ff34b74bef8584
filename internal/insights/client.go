package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client is the language-model capability behind insight extraction. A Complete
// error is a transport failure and is fatal to the pipeline run; malformed
// output is not the client's concern.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// OpenAI calls the chat completions endpoint with backoff on transport and
// server errors.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	payload, _ := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   4000,
	})

	var content string
	var lastErr error

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.apiKey)

		resp, err := o.client.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("model server error: http %d: %s", resp.StatusCode, string(body))
			return lastErr
		}
		if resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("model request rejected: http %d: %s", resp.StatusCode, string(body))
			return backoff.Permanent(lastErr)
		}

		var decoded chatResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			lastErr = fmt.Errorf("decode model response: %w", err)
			return lastErr
		}
		if len(decoded.Choices) == 0 {
			lastErr = fmt.Errorf("model response has no choices")
			return lastErr
		}
		content = decoded.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			err = lastErr
		}
		return "", fmt.Errorf("model completion failed: %w", err)
	}
	return content, nil
}
