package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"tarefas/internal/config"
	"tarefas/internal/model"
)

// Upstream is the surface of the learning-platform API consumed by the
// services. Implemented by EduspClient; stubbed in tests.
type Upstream interface {
	Authenticate(ctx context.Context, id, password string) (*model.UserInfo, error)
	FetchRooms(ctx context.Context, token string) ([]model.Room, error)
	ListTasks(ctx context.Context, token, target string, filter model.TaskFilter) ([]json.RawMessage, error)
	GetTask(ctx context.Context, token, taskID string) (*model.Task, error)
	SubmitAnswers(ctx context.Context, token, taskID string, payload model.SubmissionPayload) (any, error)
}

// UpstreamError is a non-2xx response from the platform. The status and
// body are preserved so handlers can pass rejections through verbatim.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("edusp api error %d: %s", e.Status, e.Body)
}

// EduspClient wraps the EduSP platform API
type EduspClient struct {
	baseURL   string
	origin    string
	userAgent string

	// Submissions get a longer deadline than reads
	readClient   *http.Client
	submitClient *http.Client
}

// NewEduspClient creates a new platform API client
func NewEduspClient(cfg *config.Config) *EduspClient {
	return &EduspClient{
		baseURL:      cfg.BaseURL,
		origin:       cfg.ClientOrigin,
		userAgent:    cfg.UserAgent,
		readClient:   &http.Client{Timeout: cfg.ReadTimeout},
		submitClient: &http.Client{Timeout: cfg.SubmitTimeout},
	}
}

// defaultHeaders builds the fixed browser-like request headers, merged
// with per-call extras (notably the x-api-key session token).
func (c *EduspClient) defaultHeaders(extra map[string]string) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	h.Set("x-api-realm", "edusp")
	h.Set("x-api-platform", "webclient")
	h.Set("User-Agent", c.userAgent)
	h.Set("Origin", c.origin)
	h.Set("Referer", c.origin+"/")
	for k, v := range extra {
		h.Set(k, v)
	}
	return h
}

// doRequest performs one HTTP round trip. No retries: a failed call fails
// its unit of work without affecting siblings.
func (c *EduspClient) doRequest(ctx context.Context, client *http.Client, method, rawURL string, body any, extra map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.defaultHeaders(extra)

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("[EduSP Client] ERROR: %s %s failed: %v", method, req.URL.Path, err)
		return nil, fmt.Errorf("edusp request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		log.Printf("[EduSP Client] ERROR: %s %s returned %d: %s", method, req.URL.Path, resp.StatusCode, truncate(respBody, 200))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// Authenticate trades a student id and secret for a session token via
// POST /registration/edusp.
func (c *EduspClient) Authenticate(ctx context.Context, id, password string) (*model.UserInfo, error) {
	payload := map[string]string{
		"realm":    "edusp",
		"platform": "webclient",
		"id":       id,
		"password": password,
	}

	respBody, err := c.doRequest(ctx, c.readClient, http.MethodPost, c.baseURL+"/registration/edusp", payload, nil)
	if err != nil {
		return nil, err
	}

	var info model.UserInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("failed to parse registration response: %w", err)
	}
	return &info, nil
}

// FetchRooms lists the classrooms the authenticated user belongs to.
// Any non-2xx here is a hard failure.
func (c *EduspClient) FetchRooms(ctx context.Context, token string) ([]model.Room, error) {
	respBody, err := c.doRequest(ctx, c.readClient, http.MethodGet,
		c.baseURL+"/room/user?list_all=true&with_cards=true", nil,
		map[string]string{"x-api-key": token})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Rooms []model.Room `json:"rooms"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rooms response: %w", err)
	}
	return parsed.Rooms, nil
}

// ListTasks queries the todo endpoint for one publication target. The
// pending and expired presets toggle the two expiry flags asymmetrically.
func (c *EduspClient) ListTasks(ctx context.Context, token, target string, filter model.TaskFilter) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("limit", "100")
	params.Set("offset", "0")
	params.Set("is_exam", "false")
	params.Set("with_answer", "true")
	params.Set("is_essay", "false")
	params.Set("with_apply_moment", "true")
	params.Set("publication_target", target)
	if filter == model.FilterExpired {
		params.Set("expired_only", "true")
		params.Set("filter_expired", "false")
	} else {
		params.Set("expired_only", "false")
		params.Set("filter_expired", "true")
	}

	respBody, err := c.doRequest(ctx, c.readClient, http.MethodGet,
		c.baseURL+"/tms/task/todo?"+params.Encode(), nil,
		map[string]string{"x-api-key": token})
	if err != nil {
		return nil, err
	}

	// The API returns either a bare array or {"tasks": [...]}
	parsed := gjson.ParseBytes(respBody)
	list := parsed
	if !parsed.IsArray() {
		list = parsed.Get("tasks")
	}
	if !list.IsArray() {
		return nil, nil
	}

	var tasks []json.RawMessage
	list.ForEach(func(_, item gjson.Result) bool {
		tasks = append(tasks, json.RawMessage(item.Raw))
		return true
	})
	return tasks, nil
}

// GetTask fetches the full task detail by id
func (c *EduspClient) GetTask(ctx context.Context, token, taskID string) (*model.Task, error) {
	respBody, err := c.doRequest(ctx, c.readClient, http.MethodGet,
		c.baseURL+"/tms/task/"+url.PathEscape(taskID), nil,
		map[string]string{"x-api-key": token})
	if err != nil {
		return nil, err
	}

	var task model.Task
	if err := json.Unmarshal(respBody, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task %s: %w", taskID, err)
	}
	return &task, nil
}

// SubmitAnswers posts the synthesized submission payload for a task and
// returns the decoded upstream response.
func (c *EduspClient) SubmitAnswers(ctx context.Context, token, taskID string, payload model.SubmissionPayload) (any, error) {
	respBody, err := c.doRequest(ctx, c.submitClient, http.MethodPost,
		c.baseURL+"/tms/task/"+url.PathEscape(taskID)+"/answer", payload,
		map[string]string{"x-api-key": token})
	if err != nil {
		return nil, err
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return string(respBody), nil
	}
	return result, nil
}
