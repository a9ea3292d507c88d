package insight

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestGenerateInsightsSendsSystemInstructionAndPrompt(t *testing.T) {
	t.Parallel()

	doer := &fakeHTTPDoer{responses: []fakeResponse{{
		statusCode: http.StatusOK,
		body:       `{"candidates":[{"content":{"parts":[{"text":"### Resumo\nTudo bem."}]}}]}`,
	}}}
	client := NewClient("test-api-key", "", doer, testLogger())

	text, err := client.GenerateInsights(context.Background(), "Análise de Equipe: dados")
	if err != nil {
		t.Fatalf("GenerateInsights error: %v", err)
	}
	if got, want := text, "### Resumo\nTudo bem."; got != want {
		t.Fatalf("text got %q want %q", got, want)
	}

	var payload map[string]any
	if err := json.Unmarshal(doer.requests[0].body, &payload); err != nil {
		t.Fatalf("decode request payload: %v", err)
	}
	system, ok := payload["systemInstruction"].(map[string]any)
	if !ok {
		t.Fatal("systemInstruction missing in request")
	}
	if !strings.Contains(mustString(t, system), "assistente de gerência de vendas") {
		t.Fatalf("system instruction content wrong: %v", system)
	}
	if got := doer.requests[0].header.Get("X-Goog-Api-Key"); got != "test-api-key" {
		t.Fatalf("api key header got %q", got)
	}
	if doer.requests[0].header.Get("X-Request-Id") == "" {
		t.Fatal("request id header missing")
	}
	if !strings.Contains(doer.requests[0].url, "gemini-2.5-flash:generateContent") {
		t.Fatalf("url got %q", doer.requests[0].url)
	}
}

func TestGenerateInsightsConcatenatesParts(t *testing.T) {
	t.Parallel()

	doer := &fakeHTTPDoer{responses: []fakeResponse{{
		statusCode: http.StatusOK,
		body:       `{"candidates":[{"content":{"parts":[{"text":"### Resumo\n"},{"text":"Parte dois."}]}}]}`,
	}}}
	client := NewClient("key", "", doer, testLogger())

	text, err := client.GenerateInsights(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateInsights error: %v", err)
	}
	if got, want := text, "### Resumo\nParte dois."; got != want {
		t.Fatalf("text got %q want %q", got, want)
	}
}

func TestGenerateInsightsRetriesServerErrors(t *testing.T) {
	t.Parallel()

	doer := &fakeHTTPDoer{responses: []fakeResponse{
		{statusCode: http.StatusServiceUnavailable, body: `overloaded`},
		{statusCode: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`},
	}}
	client := NewClient("key", "", doer, testLogger())

	text, err := client.GenerateInsights(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateInsights error: %v", err)
	}
	if got, want := text, "ok"; got != want {
		t.Fatalf("text got %q want %q", got, want)
	}
	if got, want := len(doer.requests), 2; got != want {
		t.Fatalf("request count got %d want %d", got, want)
	}
}

func TestGenerateInsightsDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	doer := &fakeHTTPDoer{responses: []fakeResponse{
		{statusCode: http.StatusBadRequest, body: `{"error":{"message":"invalid key"}}`},
	}}
	client := NewClient("key", "", doer, testLogger())

	_, err := client.GenerateInsights(context.Background(), "prompt")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("error got %v want ErrGenerationFailed", err)
	}
	if got, want := err.Error(), userFacingFailure; !strings.Contains(got, want) {
		t.Fatalf("error %q missing user-facing message %q", got, want)
	}
	if got, want := len(doer.requests), 1; got != want {
		t.Fatalf("request count got %d want %d", got, want)
	}
}

func TestGenerateInsightsRequiresKeyAndPrompt(t *testing.T) {
	t.Parallel()

	client := NewClient("", "", &fakeHTTPDoer{}, testLogger())
	if _, err := client.GenerateInsights(context.Background(), "prompt"); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("empty key got %v want ErrGenerationFailed", err)
	}

	client = NewClient("key", "", &fakeHTTPDoer{}, testLogger())
	if _, err := client.GenerateInsights(context.Background(), "  "); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("empty prompt got %v want ErrGenerationFailed", err)
	}
}

func mustString(t *testing.T, content map[string]any) string {
	t.Helper()
	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	return string(data)
}

type fakeResponse struct {
	statusCode int
	body       string
}

type fakeRequest struct {
	url    string
	header http.Header
	body   []byte
}

type fakeHTTPDoer struct {
	responses []fakeResponse
	requests  []fakeRequest
}

func (f *fakeHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	f.requests = append(f.requests, fakeRequest{
		url:    req.URL.String(),
		header: req.Header.Clone(),
		body:   append([]byte(nil), body...),
	})

	response := f.responses[len(f.requests)-1]
	return &http.Response{
		StatusCode: response.statusCode,
		Body:       io.NopCloser(strings.NewReader(response.body)),
		Header:     make(http.Header),
	}, nil
}
