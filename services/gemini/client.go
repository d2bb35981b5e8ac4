package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/ingest"
)

const (
	maxErrorBody   = 4 << 10
	defaultTimeout = 60 * time.Second
)

var ErrNoAPIKey = errors.New("gemini: missing API key")

// HTTPError is a non-2xx response from the generateContent endpoint.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gemini: status=%d body=%s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

func (e *HTTPError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Client calls the Gemini generateContent API. A call is attempted once.
type Client struct {
	BaseURL string
	Model   string
	APIKey  string
	HTTP    *http.Client
}

var _ ingest.Extractor = (*Client)(nil)

func NewClient(conf core.GeminiConfig) *Client {
	if conf.Timeout <= 0 {
		conf.Timeout = defaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(conf.BaseURL, "/"),
		Model:   conf.Model,
		APIKey:  conf.APIKey,
		HTTP:    &http.Client{Timeout: conf.Timeout},
	}
}

type (
	part struct {
		Text string `json:"text"`
	}
	content struct {
		Parts []part `json:"parts"`
	}
	generateRequest struct {
		Contents []content `json:"contents"`
	}
)

// Extract sends prompt as a single-turn request and returns the concatenated text of the first candidate.
func (c *Client) Extract(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, url.PathEscape(c.Model), url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// the key travels in the query string, keep it out of the error
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", errors.Wrap(err, "calling gemini")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: b}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading response")
	}
	if !gjson.ValidBytes(raw) {
		return "", errors.New("gemini: invalid JSON response")
	}

	if reason := gjson.GetBytes(raw, "promptFeedback.blockReason"); reason.Exists() {
		return "", errors.Errorf("gemini: prompt blocked (%s)", reason.String())
	}

	var sb strings.Builder
	for _, t := range gjson.GetBytes(raw, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(t.String())
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini: response has no text")
	}
	return sb.String(), nil
}
