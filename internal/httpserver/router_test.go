package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"projectboard/internal/handler"
	"projectboard/internal/model"
	"projectboard/internal/service"
	"projectboard/internal/service/servicetest"
)

const routerTestSecret = "router-test-secret"

func newTestRouter(cascade bool) (*Router, *servicetest.DB) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	db := servicetest.NewDB()
	pub := &servicetest.CapturePublisher{}

	authService := service.NewAuthService(servicetest.UserStore{DB: db}, nil, pub, routerTestSecret, logger)
	projectService := service.NewProjectService(
		servicetest.ProjectStore{DB: db},
		servicetest.TaskStore{DB: db},
		servicetest.CommentStore{DB: db},
		pub, cascade, logger,
	)
	taskService := service.NewTaskService(servicetest.TaskStore{DB: db}, servicetest.ProjectStore{DB: db}, pub, logger)
	commentService := service.NewCommentService(servicetest.CommentStore{DB: db}, pub, logger)

	router := NewRouter(
		handler.NewAuthHandler(authService, logger),
		handler.NewUserHandler(authService, logger),
		handler.NewProjectHandler(projectService, logger),
		handler.NewTaskHandler(taskService, logger),
		handler.NewCommentHandler(commentService, logger),
		authService,
		routerTestSecret,
		nil,
		logger,
	)
	return router, db
}

func do(t *testing.T, r *Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, r *Router, name, email string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(true)
	w := do(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	r, db := newTestRouter(true)

	registerUser(t, r, "Alice", "alice@example.com")

	// duplicate registration
	w := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Alice Again", "email": "alice@example.com", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, db.Users, 1)

	// wrong password and unknown email look the same
	w = do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	wrongPassword := w.Body.String()

	w = do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@example.com", "password": "s3cret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, wrongPassword, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(true)

	for _, path := range []string{"/api/projects", "/api/users"} {
		w := do(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestProjectCRUDOverHTTP(t *testing.T) {
	r, _ := newTestRouter(true)
	token := registerUser(t, r, "Alice", "alice@example.com")

	w := do(t, r, http.MethodPost, "/api/projects", token, gin.H{"name": "Website", "description": "relaunch"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Project model.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.Project.ID)

	w = do(t, r, http.MethodGet, "/api/projects", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var projects []model.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects))
	assert.Len(t, projects, 1)

	// malformed id
	w = do(t, r, http.MethodGet, "/api/projects/not-a-number", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/projects/%d", created.Project.ID), token, gin.H{"name": "Website v2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Website v2")

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/api/projects/%d", created.Project.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/projects/%d", created.Project.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectOwnershipHiding(t *testing.T) {
	r, _ := newTestRouter(true)
	aliceToken := registerUser(t, r, "Alice", "alice@example.com")
	bobToken := registerUser(t, r, "Bob", "bob@example.com")

	w := do(t, r, http.MethodPost, "/api/projects", aliceToken, gin.H{"name": "Website"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Project model.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// existing but not owned is indistinguishable from missing
	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/projects/%d", created.Project.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskAndCommentFlow(t *testing.T) {
	r, _ := newTestRouter(true)
	token := registerUser(t, r, "Alice", "alice@example.com")

	w := do(t, r, http.MethodPost, "/api/projects", token, gin.H{"name": "Website"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Project model.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	projectID := created.Project.ID

	// task under a missing project
	w = do(t, r, http.MethodPost, "/api/projects/9999/tasks", token, gin.H{"title": "Ship it"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/projects/%d/tasks", projectID), token, gin.H{"title": "Ship it"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var taskResp struct {
		Task model.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &taskResp))
	firstTask := taskResp.Task.ID

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/projects/%d/tasks", projectID), token, gin.H{"title": "Write docs"})
	require.Equal(t, http.StatusCreated, w.Code)

	// invalid status value
	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", firstTask), token, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", firstTask), token, gin.H{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"done"`)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/comments", firstTask), token, gin.H{"text": "looks good"})
	require.Equal(t, http.StatusCreated, w.Code)

	// comment on a missing task
	w = do(t, r, http.MethodPost, "/api/tasks/9999/comments", token, gin.H{"text": "?"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// aggregated detail view
	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/projects/%d", projectID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Owner model.UserRef `json:"owner"`
		Tasks []struct {
			Title    string `json:"title"`
			Comments []struct {
				Text string `json:"text"`
			} `json:"comments"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Alice", detail.Owner.Name)
	require.Len(t, detail.Tasks, 2)
	assert.Equal(t, "Ship it", detail.Tasks[0].Title)
	require.Len(t, detail.Tasks[0].Comments, 1)
	assert.Equal(t, "looks good", detail.Tasks[0].Comments[0].Text)

	// the zero-comment task carries an empty array, not a missing field
	require.NotNil(t, detail.Tasks[1].Comments)
	assert.Len(t, detail.Tasks[1].Comments, 0)
	assert.Contains(t, w.Body.String(), `"comments":[]`)
}

func TestTaskMutationForbiddenForStrangers(t *testing.T) {
	r, _ := newTestRouter(true)
	aliceToken := registerUser(t, r, "Alice", "alice@example.com")
	bobToken := registerUser(t, r, "Bob", "bob@example.com")

	w := do(t, r, http.MethodPost, "/api/projects", aliceToken, gin.H{"name": "Website"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Project model.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/projects/%d/tasks", created.Project.ID), aliceToken, gin.H{"title": "Ship it"})
	require.Equal(t, http.StatusCreated, w.Code)
	var taskResp struct {
		Task model.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &taskResp))

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", taskResp.Task.ID), bobToken, gin.H{"status": "done"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", taskResp.Task.ID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUsersEndpointExcludesPasswords(t *testing.T) {
	r, _ := newTestRouter(true)
	token := registerUser(t, r, "Alice", "alice@example.com")

	w := do(t, r, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
	assert.NotContains(t, w.Body.String(), "password")
}
