package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/config"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/i18n"
	"github.com/phrazzld/tasktracker/internal/mocks"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp builds an application around mock services; no database is involved.
func newTestApp(t *testing.T, userID uuid.UUID, tasks *mocks.MockTaskService) *application {
	t.Helper()

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	tr, err := i18n.New(defaultLanguage, l)
	require.NoError(t, err)

	jwt := &mocks.MockJWTService{
		ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
			if token != "good-token" {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, TokenType: "access"}, nil
		},
	}

	return &application{
		config:      &config.Config{Server: config.ServerConfig{Port: 8080}},
		logger:      l,
		translator:  tr,
		jwtService:  jwt,
		userService: &mocks.MockUserService{},
		taskService: tasks,
		tagService: &mocks.MockTagService{
			ListFn: func(ctx context.Context, page domain.PageRequest) (*domain.TagPage, error) {
				return &domain.TagPage{Tags: []*domain.Tag{}, Page: page}, nil
			},
		},
	}
}

func TestRouter(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()
	tasks := &mocks.MockTaskService{
		GetFn: func(ctx context.Context, callerID, id uuid.UUID) (*domain.Task, error) {
			return &domain.Task{
				ID:       id,
				Title:    "routed",
				State:    domain.TaskStatePending,
				OwnerID:  callerID,
				Tags:     []domain.Tag{},
				Subtasks: []*domain.Task{},
			}, nil
		},
	}
	router := newTestApp(t, userID, tasks).setupRouter()

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		acceptLanguage string
		expectedStatus int
		bodyContains   string
	}{
		{
			name:           "health",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
			bodyContains:   "OK",
		},
		{
			name:           "tasks require authentication",
			method:         http.MethodGet,
			path:           "/api/tasks/",
			expectedStatus: http.StatusUnauthorized,
			bodyContains:   "Authentication credentials were not provided.",
		},
		{
			name:           "bad token",
			method:         http.MethodGet,
			path:           "/api/tags/",
			token:          "bad-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "task detail",
			method:         http.MethodGet,
			path:           "/api/tasks/" + taskID.String() + "/",
			token:          "good-token",
			expectedStatus: http.StatusOK,
			bodyContains:   `"title":"routed"`,
		},
		{
			name:           "tag list",
			method:         http.MethodGet,
			path:           "/api/tags/",
			token:          "good-token",
			expectedStatus: http.StatusOK,
			bodyContains:   `"results":[]`,
		},
		{
			name:           "malformed task id",
			method:         http.MethodGet,
			path:           "/api/tasks/12/",
			token:          "good-token",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown route is localized",
			method:         http.MethodGet,
			path:           "/api/nothing/",
			acceptLanguage: "es-ES,es;q=0.9",
			expectedStatus: http.StatusNotFound,
			bodyContains:   "No encontrado.",
		},
		{
			name:           "method not allowed",
			method:         http.MethodPut,
			path:           "/api/signup/",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.bodyContains != "" {
				assert.Contains(t, rr.Body.String(), tt.bodyContains)
			}
			assert.NotEmpty(t, rr.Header().Get("X-Trace-ID"))
		})
	}
}

func TestRouter_ErrorBodyCarriesTraceID(t *testing.T) {
	t.Parallel()

	router := newTestApp(t, uuid.New(), &mocks.MockTaskService{}).setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/", strings.NewReader(`{"title": "x"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, rr.Header().Get("X-Trace-ID"), body["trace_id"])
}
