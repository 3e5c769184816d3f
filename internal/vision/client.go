package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxResponseBodySize limits response body reads to prevent OOM
const maxResponseBodySize = 1 << 20 // 1MB

const maxAttempts = 3

const baseBackoff = time.Second

const systemPrompt = `You are a menu translator. The user sends a photo of a Japanese menu or product package. Respond with JSON only: {"items":[{"original":...,"reading":...,"translation":...,"notes":...,"price":...}],"sourceText":...}. Translate into the requested language. Include readings in romaji. Do not invent items that are not visible.`

// Client calls an OpenAI-compatible chat-completions endpoint with the
// image attached as a data URL. The API key is a static bearer secret.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(baseURL, apiKey, model string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Analyze(ctx context.Context, imageBase64 string, targetLanguage string) (*Result, error) {
	if targetLanguage == "" {
		targetLanguage = "English"
	}

	body, err := json.Marshal(&chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: []contentPart{{Type: "text", Text: systemPrompt}},
			},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: fmt.Sprintf("Translate this menu into %s.", targetLanguage)},
					{Type: "image_url", ImageURL: &imageURL{
						URL: "data:image/jpeg;base64," + imageBase64,
					}},
				},
			},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build vision request: %v", err)
	}

	respBody, status, err := c.postWithRetry(ctx, c.baseURL+"/v1/chat/completions", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if status != http.StatusOK {
		c.log.Error().Int("status", status).Msg("vision api rejected scan request")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrBadResponse)
	}

	result := &Result{}
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), result); err != nil {
		return nil, fmt.Errorf("%w: model content not valid JSON: %v", ErrBadResponse, err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("%w: no items recognized", ErrBadResponse)
	}
	return result, nil
}

// postWithRetry retries on 429 and 5xx with exponential backoff + jitter.
func (c *Client) postWithRetry(ctx context.Context, url string, body []byte) ([]byte, int, error) {
	var lastErr error
	var lastStatus int

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff * time.Duration(1<<uint(attempt-1))
			jitter := time.Duration(rand.Int63n(int64(backoff) / 5))

			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		resp.Body.Close()
		lastStatus = resp.StatusCode

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("retryable status %d", resp.StatusCode)
			c.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).
				Msg("vision api call will be retried")
			continue
		}
		if readErr != nil {
			return nil, lastStatus, fmt.Errorf("failed to read response: %w", readErr)
		}
		return respBody, lastStatus, nil
	}

	return nil, lastStatus, fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
