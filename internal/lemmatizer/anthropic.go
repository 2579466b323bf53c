// Package lemmatizer expands texts into word forms and lemmas using the
// Anthropic Messages API.
package lemmatizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/gardenlog/internal/textnorm"
)

const (
	anthropicAPI = "https://api.anthropic.com/v1/messages"
	defaultModel = "claude-sonnet-4-20250514"
)

// Word classes kept as expansion candidates.
var keptClasses = map[string]bool{"noun": true, "verb": true, "adjective": true}

// Word is one analyzed word of a text
type Word struct {
	Text  string `json:"text"`
	Class string `json:"class"`
	Lemma string `json:"lemma"`
}

// Analysis holds the analyzer output for a text
type Analysis struct {
	Words []Word `json:"words"`
}

// Client expands texts via Anthropic API
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string][]string
}

// Option configures a Client
type Option func(*Client)

// WithModel overrides the model name
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithEndpoint overrides the Messages API URL
func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new Client authenticating with apiKey
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      defaultModel,
		endpoint:   anthropicAPI,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     zap.NewNop(),
		cache:      make(map[string][]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Expand returns the normalized forms and lemmas of the nouns, verbs and
// adjectives of text. It returns nil when the analyzer is unavailable.
func (c *Client) Expand(text string) []string {
	key := textnorm.Normalize(text)
	if key == "" {
		return nil
	}

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return cached
	}

	analysis, err := c.Analyze(text)
	if err != nil {
		c.logger.Warn("lemmatizer unavailable", zap.Error(err))
		return nil
	}

	tokens := candidates(analysis)

	c.mu.Lock()
	c.cache[key] = tokens
	c.mu.Unlock()

	return tokens
}

// Analyze asks the model to classify and lemmatize the words of text
func (c *Client) Analyze(text string) (*Analysis, error) {
	resp, err := c.callAPI(buildPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}

	return parseResponse(resp)
}

func candidates(a *Analysis) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s = textnorm.Normalize(s); s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, w := range a.Words {
		if !keptClasses[strings.ToLower(w.Class)] {
			continue
		}
		add(w.Text)
		add(w.Lemma)
	}
	return out
}

func buildPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("Analyze the words of this garden activity note. Return JSON only.\n\n")
	sb.WriteString("Text:\n")
	sb.WriteString(text)
	sb.WriteString("\n\n")

	sb.WriteString(`Return a JSON object with this structure:
{
  "words": [
    {"text": "sembré", "class": "verb", "lemma": "sembrar"}
  ]
}

Rules:
- The text may be in English or Spanish
- "class" is one of: noun, verb, adjective, other
- "lemma" is the dictionary form (infinitive for verbs, singular for nouns)
- Keep words in the order they appear

Return ONLY the JSON, no other text.`)

	return sb.String()
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) callAPI(prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("api error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return apiResp.Content[0].Text, nil
}

func parseResponse(resp string) (*Analysis, error) {
	// Strip markdown code fences
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var result Analysis
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return nil, fmt.Errorf("parse json: %w (response: %s)", err, resp)
	}

	return &result, nil
}
