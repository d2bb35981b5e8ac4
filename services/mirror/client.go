package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
)

// HTTPError is a non-2xx answer of the grade calculator service.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("mirror: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, e.Body)
}

type (
	remoteAssessment struct {
		Title   string   `json:"title"`
		Type    string   `json:"type"`
		DueDate *string  `json:"dueDate"`
		Weight  *float64 `json:"weight"`
		Grade   *float64 `json:"grade"`
	}

	remoteCourse struct {
		Name        string             `json:"name"`
		Color       string             `json:"color"`
		GoalGrade   *float64           `json:"goalGrade"`
		Assessments []remoteAssessment `json:"assessments"`
	}
)

// Client copies ledger courses into the grade calculator service, which assigns its own ids.
// The mapping from ledger ids to remote ids only lives in memory.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	remote map[int]string
}

var _ course.Mirror = (*Client)(nil)

func NewClient(conf core.MirrorConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.URL, "/"),
		http:    &http.Client{Timeout: conf.Timeout},
		remote:  make(map[int]string),
	}
}

// PushCourse creates the course remotely the first time and replaces it afterwards,
// assessments and grades included.
func (c *Client) PushCourse(ctx context.Context, crs course.Course) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := toRemote(crs)
	if id, ok := c.remote[crs.ID]; ok {
		_, err := c.do(ctx, http.MethodPut, "/courses/"+url.PathEscape(id), payload)
		return err
	}

	body, err := c.do(ctx, http.MethodPost, "/courses", payload)
	if err != nil {
		return err
	}
	id := gjson.GetBytes(body, "id")
	if !id.Exists() || id.String() == "" {
		return errors.New("mirror: created course has no id")
	}
	c.remote[crs.ID] = id.String()
	return nil
}

// RemoveCourse deletes the remote copy of a course. Courses never pushed are ignored.
func (c *Client) RemoveCourse(ctx context.Context, courseID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(ctx, courseID)
}

// Reset removes every course pushed by this client.
func (c *Client) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for courseID := range c.remote {
		if err := c.remove(ctx, courseID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Client) remove(ctx context.Context, courseID int) error {
	id, ok := c.remote[courseID]
	if !ok {
		return nil
	}
	_, err := c.do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil)
	var herr *HTTPError
	if err != nil && !(errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound) {
		return err
	}
	delete(c.remote, courseID)
	return nil
}

func toRemote(crs course.Course) remoteCourse {
	payload := remoteCourse{
		Name:        crs.Name,
		Color:       crs.Color,
		GoalGrade:   crs.GoalGrade,
		Assessments: make([]remoteAssessment, 0, len(crs.Assessments)),
	}
	for _, a := range crs.Assessments {
		payload.Assessments = append(payload.Assessments, remoteAssessment{
			Title:   a.Title,
			Type:    string(a.Type),
			DueDate: a.DueDate,
			Weight:  a.Weight,
			Grade:   a.Grade,
		})
	}
	return payload
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "encoding mirror payload")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "building mirror request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "mirror: %s %s", method, path)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "reading mirror response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Method: method, URL: req.URL.String(), StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return b, nil
}
