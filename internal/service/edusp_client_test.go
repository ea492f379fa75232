package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarefas/internal/config"
	"tarefas/internal/model"
)

func testClient(baseURL string) *EduspClient {
	return NewEduspClient(&config.Config{
		BaseURL:       baseURL,
		ClientOrigin:  "https://front.example",
		UserAgent:     "test-agent",
		ReadTimeout:   2 * time.Second,
		SubmitTimeout: 2 * time.Second,
	})
}

func TestAuthenticate(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/registration/edusp", r.URL.Path)
		gotHeaders = r.Header
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{
			"auth_token":  "tok-123",
			"nick":        "student",
			"external_id": "ext-1",
			"name":        "A Student",
		})
	}))
	defer srv.Close()

	info, err := testClient(srv.URL).Authenticate(context.Background(), "12345", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", info.AuthToken)
	assert.Equal(t, "student", info.Nick)

	// Registration payload pins realm and platform
	assert.Equal(t, map[string]string{
		"realm":    "edusp",
		"platform": "webclient",
		"id":       "12345",
		"password": "secret",
	}, gotBody)

	// Fixed browser-like identity on every call
	assert.Equal(t, "edusp", gotHeaders.Get("x-api-realm"))
	assert.Equal(t, "webclient", gotHeaders.Get("x-api-platform"))
	assert.Equal(t, "test-agent", gotHeaders.Get("User-Agent"))
	assert.Equal(t, "https://front.example", gotHeaders.Get("Origin"))
	assert.Equal(t, "https://front.example/", gotHeaders.Get("Referer"))
}

func TestAuthenticate_Rejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Authenticate(context.Background(), "12345", "wrong")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusUnauthorized, ue.Status)
	assert.Contains(t, ue.Body, "invalid credentials")
}

func TestAuthenticate_NetworkFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(srv.URL).Authenticate(context.Background(), "12345", "secret")
	require.Error(t, err)
	var ue *UpstreamError
	assert.False(t, errors.As(err, &ue), "network faults are not upstream rejections")
}

func TestFetchRooms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/room/user", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("list_all"))
		assert.Equal(t, "true", r.URL.Query().Get("with_cards"))
		assert.Equal(t, "tok", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"rooms": [{"id": 1, "name": "Turma A"}, {"id": "r2", "name": "Turma B"}]}`))
	}))
	defer srv.Close()

	rooms, err := testClient(srv.URL).FetchRooms(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	// Numeric and string ids both flow through
	assert.Equal(t, model.FlexID("1"), rooms[0].ID)
	assert.Equal(t, model.FlexID("r2"), rooms[1].ID)
}

func TestListTasks_FilterFlags(t *testing.T) {
	tests := []struct {
		filter            model.TaskFilter
		wantExpiredOnly   string
		wantFilterExpired string
	}{
		{model.FilterPending, "false", "true"},
		{model.FilterExpired, "true", "false"},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "/tms/task/todo", r.URL.Path)
				assert.Equal(t, tt.wantExpiredOnly, q.Get("expired_only"))
				assert.Equal(t, tt.wantFilterExpired, q.Get("filter_expired"))
				assert.Equal(t, "100", q.Get("limit"))
				assert.Equal(t, "room-1", q.Get("publication_target"))
				w.Write([]byte(`[{"id": 1}]`))
			}))
			defer srv.Close()

			tasks, err := testClient(srv.URL).ListTasks(context.Background(), "tok", "room-1", tt.filter)
			require.NoError(t, err)
			assert.Len(t, tasks, 1)
		})
	}
}

func TestListTasks_PayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id": 1}, {"id": 2}]`, 2},
		{"wrapped object", `{"tasks": [{"id": 1}]}`, 1},
		{"unrecognized shape", `{"items": []}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tasks, err := testClient(srv.URL).ListTasks(context.Background(), "tok", "x", model.FilterPending)
			require.NoError(t, err)
			assert.Len(t, tasks, tt.want)
		})
	}
}

func TestGetTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tms/task/42", r.URL.Path)
		w.Write([]byte(`{"id": 42, "questions": [{"id": 1, "type": "multiple_choice", "options": [{"id": 5, "correct": true}]}]}`))
	}))
	defer srv.Close()

	task, err := testClient(srv.URL).GetTask(context.Background(), "tok", "42")
	require.NoError(t, err)
	assert.Equal(t, model.FlexID("42"), task.ID)
	require.Len(t, task.Questions, 1)
	assert.Equal(t, model.QuestionMultipleChoice, task.Questions[0].Type)
}

func TestSubmitAnswers(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tms/task/42/answer", r.URL.Path)
		require.Equal(t, "tok", r.Header.Get("x-api-key"))
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"status": "received"}`))
	}))
	defer srv.Close()

	payload := model.SubmissionPayload{
		Answers: map[string]model.QuestionAnswer{
			"1": {QuestionID: "1", QuestionType: model.QuestionMultipleChoice, Answer: map[string]any{"5": true}},
		},
		Final:  true,
		Status: model.StatusSubmitted,
	}
	result, err := testClient(srv.URL).SubmitAnswers(context.Background(), "tok", "42", payload)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "received"}, result)

	assert.Equal(t, true, gotPayload["final"])
	assert.Equal(t, "submitted", gotPayload["status"])
	answers := gotPayload["answers"].(map[string]any)
	entry := answers["1"].(map[string]any)
	// Numeric ids are re-emitted as numbers
	assert.Equal(t, float64(1), entry["question_id"])
}
