package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel    = "gemini-2.5-flash"

	// userFacingFailure is the only error text surfaced to the end user
	// when generation fails after retries.
	userFacingFailure = "Não foi possível gerar os insights. Tente novamente mais tarde."
)

// ErrGenerationFailed wraps any transport or API failure behind the
// stable user-facing message.
var ErrGenerationFailed = errors.New(userFacingFailure)

// Generator abstracts insight generation to keep calling code testable.
type Generator interface {
	GenerateInsights(ctx context.Context, prompt string) (string, error)
}

// HTTPDoer allows tests to fake HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls a Gemini-style generateContent endpoint with the fixed
// system instruction and retries transient failures with exponential
// backoff.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient HTTPDoer
	log        logrus.FieldLogger
	maxRetries uint64
}

// NewClient creates a client with sane defaults.
func NewClient(apiKey, model string, httpClient HTTPDoer, log logrus.FieldLogger) *Client {
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		endpoint:   defaultEndpoint,
		httpClient: httpClient,
		log:        log,
		maxRetries: 3,
	}
}

// GenerateInsights sends the prompt and returns the generated markdown.
// Whatever goes wrong underneath, the caller sees ErrGenerationFailed
// with the cause attached for logs.
func (c *Client) GenerateInsights(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", fmt.Errorf("%w: API key is empty", ErrGenerationFailed)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is empty", ErrGenerationFailed)
	}

	requestID := uuid.NewString()
	log := c.log.WithField("request_id", requestID)

	var text string
	operation := func() error {
		var err error
		text, err = c.generateOnce(ctx, prompt, requestID)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithField("retry_in", wait).Warn("insight generation attempt failed")
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		log.WithError(err).Error("insight generation exhausted retries")
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return text, nil
}

// permanent marks errors not worth retrying (4xx, malformed responses).
func permanent(err error) error {
	return backoff.Permanent(err)
}

func (c *Client) generateOnce(ctx context.Context, prompt, requestID string) (string, error) {
	payload, err := json.Marshal(generateContentRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", permanent(fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.endpoint, c.model)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", permanent(fmt.Errorf("build request: %w", err))
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Goog-Api-Key", c.apiKey)
	request.Header.Set("X-Request-Id", requestID)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("generateContent request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if response.StatusCode >= http.StatusInternalServerError || response.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("generateContent status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}
	if response.StatusCode != http.StatusOK {
		var apiErr apiErrorEnvelope
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", permanent(fmt.Errorf("generateContent status %d: %s", response.StatusCode, apiErr.Error.Message))
		}
		return "", permanent(fmt.Errorf("generateContent status %d: %s", response.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", permanent(fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Candidates) == 0 {
		return "", permanent(errors.New("response has no candidates"))
	}

	var builder strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		builder.WriteString(p.Text)
	}
	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return "", permanent(errors.New("response has empty text"))
	}
	return text, nil
}

type generateContentRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiErrorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}
