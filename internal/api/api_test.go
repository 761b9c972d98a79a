package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/church-content-api/internal/api"
	"github.com/church-content-api/internal/auth"
	"github.com/church-content-api/internal/config"
	"github.com/church-content-api/internal/database"
	"github.com/church-content-api/internal/mocks"
	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/service"
)

type testEnv struct {
	router http.Handler
	auth   *mocks.MockAuthService
	posts  *mocks.MockPostService
	users  *mocks.MockUserService
	images *mocks.MockImageService
}

func newTestEnv() *testEnv {
	authSvc := &mocks.MockAuthService{}
	userSvc := &mocks.MockUserService{}
	postSvc := &mocks.MockPostService{}
	imageSvc := mocks.NewMockImageService()

	services := &service.Services{
		Auth:    authSvc,
		User:    userSvc,
		Post:    postSvc,
		Image:   imageSvc,
		Sweeper: &mocks.MockSweeperService{},
	}

	cfg := &config.Config{
		Storage: config.StorageConfig{MaxUploadSize: 1024 * 1024},
	}
	db := database.New(&config.DatabaseConfig{}, zerolog.Nop()) // never connected

	return &testEnv{
		router: api.NewRouter(services, db, cfg, zerolog.Nop()),
		auth:   authSvc,
		posts:  postSvc,
		users:  userSvc,
		images: imageSvc,
	}
}

// allowUser makes every bearer token authenticate as the given user
func (e *testEnv) allowUser(user *models.User) {
	e.auth.AuthenticateFunc = func(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
		return user, &auth.Claims{Username: user.Username, Name: user.Name, Role: user.Role}, nil
	}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Status   string `json:"status"`
		Database struct {
			Driver    string `json:"driver"`
			Connected bool   `json:"connected"`
		} `json:"database"`
	}
	decode(t, w, &body)

	// the test database is never connected, so health reports degraded
	if body.Status != "degraded" {
		t.Errorf("expected degraded status, got %q", body.Status)
	}
	if body.Database.Connected {
		t.Error("expected connected=false")
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv()
	env.auth.LoginFunc = func(ctx context.Context, username, password string) (string, *models.User, error) {
		if username == "almir" && password == "1515" {
			return "signed-token", &models.User{ID: "id-1", Username: "almir", Role: "admin", Active: true}, nil
		}
		return "", nil, service.ErrInvalidCredentials
	}

	w := env.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Username: "almir", Password: "1515"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.LoginResponse
	decode(t, w, &resp)
	if resp.Token != "signed-token" || resp.User.Username != "almir" {
		t.Errorf("unexpected response %+v", resp)
	}

	w = env.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Username: "almir", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", w.Code)
	}

	w = env.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Username: "almir"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", w.Code)
	}
}

func TestVerifyEndpoint(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodGet, "/auth/verify", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	env.allowUser(&models.User{ID: "id-1", Name: "Almir", Username: "almir", Role: "admin", Active: true})
	w = env.do(http.MethodGet, "/auth/verify", "any-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		User   models.User `json:"user"`
		Claims struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"claims"`
	}
	decode(t, w, &body)
	if body.User.Username != "almir" || body.Claims.Role != "admin" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestPostsReadEndpointsArePublic(t *testing.T) {
	env := newTestEnv()
	env.posts.Posts = []*models.Post{
		{ID: "id-1", Title: "Culto", Category: "Eventos", Active: true},
		{ID: "id-2", Title: "Encontro", Category: "SAF", Active: true},
	}

	w := env.do(http.MethodGet, "/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var posts []*models.Post
	decode(t, w, &posts)
	if len(posts) != 2 {
		t.Errorf("expected 2 posts, got %d", len(posts))
	}

	w = env.do(http.MethodGet, "/posts?category=SAF", "", nil)
	decode(t, w, &posts)
	if len(posts) != 1 || posts[0].Category != "SAF" {
		t.Errorf("unexpected filtered posts %v", posts)
	}

	w = env.do(http.MethodGet, "/posts/count", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var counts map[string]int
	decode(t, w, &counts)
	if len(counts) != len(models.Categories) {
		t.Errorf("expected %d categories, got %d", len(models.Categories), len(counts))
	}
}

func TestPostWritesRequireEditorRole(t *testing.T) {
	env := newTestEnv()
	req := models.PostRequest{Title: "t", Text: "t", Category: "Eventos", Date: "2024-01-01"}

	// no token
	w := env.do(http.MethodPost, "/posts", "", req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	// viewer may read but not write
	env.allowUser(&models.User{ID: "id-3", Name: "Leitor", Username: "leitor", Role: "viewer", Active: true})
	w = env.do(http.MethodPost, "/posts", "viewer-token", req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for viewer, got %d", w.Code)
	}
	w = env.do(http.MethodDelete, "/posts/id-1", "viewer-token", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for viewer delete, got %d", w.Code)
	}

	// editor writes succeed and the author comes from the session
	env.allowUser(&models.User{ID: "id-2", Name: "Secretaria", Username: "secretaria", Role: "editor", Active: true})
	w = env.do(http.MethodPost, "/posts", "editor-token", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var post models.Post
	decode(t, w, &post)
	if post.Author != "Secretaria" {
		t.Errorf("expected author from session, got %q", post.Author)
	}
}

func TestPostGetInvalidID(t *testing.T) {
	env := newTestEnv()

	// the default mock rejects unknown ids as malformed
	w := env.do(http.MethodGet, "/posts/not-a-uuid", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestUsersEndpointsAreAdminOnly(t *testing.T) {
	env := newTestEnv()
	env.users.Users = []*models.User{{ID: "id-1", Username: "almir", Role: "admin", Active: true}}

	w := env.do(http.MethodGet, "/users", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	env.allowUser(&models.User{ID: "id-2", Name: "Secretaria", Username: "secretaria", Role: "editor", Active: true})
	w = env.do(http.MethodGet, "/users", "editor-token", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for editor, got %d", w.Code)
	}

	env.allowUser(&models.User{ID: "id-1", Name: "Almir", Username: "almir", Role: "admin", Active: true})
	w = env.do(http.MethodGet, "/users", "admin-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
	// password hashes are never serialized
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("response leaks password material: %s", w.Body.String())
	}

	w = env.do(http.MethodPost, "/users", "admin-token", models.CreateUserRequest{
		Name: "Novo", Username: "novo", Password: "1234", Role: "viewer",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUploadServeDelete(t *testing.T) {
	env := newTestEnv()
	env.allowUser(&models.User{ID: "id-2", Name: "Secretaria", Username: "secretaria", Role: "editor", Active: true})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "foto.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte("fake jpeg bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer editor-token")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	decode(t, w, &resp)
	if !strings.HasPrefix(resp.ImageURL, "/images/") {
		t.Fatalf("expected an /images/ URL, got %q", resp.ImageURL)
	}

	// the returned URL serves the image publicly, marked cacheable
	got := env.do(http.MethodGet, resp.ImageURL, "", nil)
	if got.Code != http.StatusOK {
		t.Fatalf("expected 200 serving the image, got %d", got.Code)
	}
	if got.Body.String() != "fake jpeg bytes" {
		t.Errorf("unexpected image body %q", got.Body.String())
	}
	if cc := got.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("expected an immutable cache policy, got %q", cc)
	}

	ref := strings.TrimPrefix(resp.ImageURL, "/images/")
	del := env.do(http.MethodDelete, "/upload/"+ref, "editor-token", nil)
	if del.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting the image, got %d", del.Code)
	}
	gone := env.do(http.MethodGet, resp.ImageURL, "", nil)
	if gone.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", gone.Code)
	}
}

func TestUploadMultiple(t *testing.T) {
	env := newTestEnv()
	env.allowUser(&models.User{ID: "id-2", Name: "Secretaria", Username: "secretaria", Role: "editor", Active: true})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"um.jpg", "dois.png"} {
		part, err := mw.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		part.Write([]byte("bytes of " + name))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-multiple", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer editor-token")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ImageURLs []string `json:"imageUrls"`
	}
	decode(t, w, &resp)
	// references come back in input order
	if len(resp.ImageURLs) != 2 {
		t.Fatalf("expected 2 urls, got %v", resp.ImageURLs)
	}
	if !strings.HasSuffix(resp.ImageURLs[0], "um.jpg") || !strings.HasSuffix(resp.ImageURLs[1], "dois.png") {
		t.Errorf("expected input order preserved, got %v", resp.ImageURLs)
	}

	// an empty form is rejected outright
	var empty bytes.Buffer
	emptyWriter := multipart.NewWriter(&empty)
	emptyWriter.Close()
	req = httptest.NewRequest(http.MethodPost, "/upload-multiple", &empty)
	req.Header.Set("Content-Type", emptyWriter.FormDataContentType())
	req.Header.Set("Authorization", "Bearer editor-token")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty form, got %d", w.Code)
	}
}

func TestUploadRequiresAuth(t *testing.T) {
	env := newTestEnv()

	w := env.do(http.MethodPost, "/upload", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodOptions, "/posts", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("expected Authorization in allowed headers, got %q", got)
	}
}
