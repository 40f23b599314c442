package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eudaimonia/confs"
	"eudaimonia/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *confs.Config {
	return &confs.Config{
		SecretKey:       "test-secret",
		Port:            "0",
		Storage:         confs.StorageMemory,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
	}
}

type testClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func setupTestServer(t *testing.T) *testClient {
	t.Helper()
	srv := NewServer(testConfig(), repositories.NewMemoryRepositories(), zap.NewNop())
	return &testClient{t: t, router: srv.Router()}
}

func (tc *testClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	tc.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(tc.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signUp registers username and returns a client logged in as them.
func (tc *testClient) signUp(username string) *testClient {
	tc.t.Helper()
	w := tc.do(http.MethodPost, "/api/auth/register", gin.H{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "correct-horse",
		"password_confirm": "correct-horse",
	})
	require.Equal(tc.t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(tc.t, w.Body.String(), "password")

	w = tc.do(http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": "correct-horse"})
	require.Equal(tc.t, http.StatusOK, w.Code, w.Body.String())
	pair := decode(tc.t, w)
	return &testClient{t: tc.t, router: tc.router, token: pair["access"].(string)}
}

func TestHealthAndMetrics(t *testing.T) {
	tc := setupTestServer(t)

	w := tc.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())

	w = tc.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "eudaimonia_http_requests_total")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	tc := setupTestServer(t)
	alice := tc.signUp("alice")
	alice.do(http.MethodPost, "/api/worlds", gin.H{"name": "Secret garden"})

	for _, path := range []string{"/api/auth/me", "/api/worlds", "/api/memberships", "/api/posts", "/api/smart-profiles"} {
		w := tc.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		body := decode(t, w)
		assert.Contains(t, body, "error")
		assert.NotContains(t, body, "results")
	}
}

func TestAuthFlow(t *testing.T) {
	tc := setupTestServer(t)

	w := tc.do(http.MethodPost, "/api/auth/register", gin.H{
		"username": "bob", "email": "bob@example.com", "password": "longenough", "password_confirm": "different",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Passwords don't match", decode(t, w)["error"])

	w = tc.do(http.MethodPost, "/api/auth/login", gin.H{"username": "nobody", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tc.signUp("alice")
	w = tc.do(http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	refresh := decode(t, w)["refresh"].(string)

	w = tc.do(http.MethodPost, "/api/auth/refresh", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	tc.token = decode(t, w)["access"].(string)

	w = tc.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode(t, w)["username"])

	w = tc.do(http.MethodPost, "/api/auth/recovery/initiate", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestWorldPostsAndMemberships(t *testing.T) {
	tc := setupTestServer(t)
	alice := tc.signUp("alice")
	bob := tc.signUp("bob")

	w := alice.do(http.MethodPost, "/api/worlds", gin.H{"name": "Makers", "theme": "technology_and_startups"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	makers := decode(t, w)["id"].(string)
	w = alice.do(http.MethodPost, "/api/worlds", gin.H{"name": "Painters", "theme": "art_and_culture"})
	require.Equal(t, http.StatusCreated, w.Code)
	painters := decode(t, w)["id"].(string)

	w = bob.do(http.MethodGet, "/api/memberships", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["count"])

	w = bob.do(http.MethodPost, "/api/worlds/"+makers+"/join", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = bob.do(http.MethodPost, "/api/worlds/"+makers+"/join", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Already a member of this world", decode(t, w)["error"])

	w = bob.do(http.MethodPost, "/api/posts", gin.H{"content": "hello makers", "world_id": makers})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = alice.do(http.MethodPost, "/api/posts", gin.H{"content": "hello painters", "world_id": painters})
	require.Equal(t, http.StatusCreated, w.Code)
	w = alice.do(http.MethodPost, "/api/posts", gin.H{"content": "  ", "world_id": painters})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = bob.do(http.MethodGet, "/api/worlds/"+makers+"/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	for _, p := range body["results"].([]interface{}) {
		assert.Equal(t, makers, p.(map[string]interface{})["world_id"])
	}

	w = bob.do(http.MethodGet, "/api/worlds?theme=art_and_culture", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = bob.do(http.MethodGet, "/api/worlds/"+makers, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["member_count"])

	w = bob.do(http.MethodDelete, "/api/worlds/"+makers, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = bob.do(http.MethodGet, "/api/worlds/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVotingAndPagination(t *testing.T) {
	tc := setupTestServer(t)
	alice := tc.signUp("alice")

	w := alice.do(http.MethodPost, "/api/worlds", gin.H{"name": "Council"})
	require.Equal(t, http.StatusCreated, w.Code)
	world := decode(t, w)["id"].(string)

	for i := 0; i < 3; i++ {
		w = alice.do(http.MethodPost, "/api/proposals", gin.H{"title": "Motion", "world_id": world})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	proposal := decode(t, w)["id"].(string)

	w = alice.do(http.MethodPost, "/api/votes", gin.H{"proposal_id": proposal, "choice": "agree"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = alice.do(http.MethodPost, "/api/votes", gin.H{"proposal_id": proposal, "choice": "agree"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Already voted on this proposal", decode(t, w)["error"])

	w = alice.do(http.MethodGet, "/api/proposals/"+proposal, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["vote_count"])

	w = alice.do(http.MethodGet, "/api/proposals?world_id="+world+"&page=2&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["count"])
	assert.Len(t, body["results"], 1)

	w = alice.do(http.MethodGet, "/api/proposals?page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFriendshipEndpoints(t *testing.T) {
	tc := setupTestServer(t)
	alice := tc.signUp("alice")
	bob := tc.signUp("bob")

	w := alice.do(http.MethodPost, "/api/friendships", gin.H{"user2_username": "ghost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User not found", decode(t, w)["error"])

	w = alice.do(http.MethodPost, "/api/friendships", gin.H{"user2_username": "bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = alice.do(http.MethodPost, "/api/friendships/"+id+"/accept", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = bob.do(http.MethodGet, "/api/friendships/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = bob.do(http.MethodPost, "/api/friendships/"+id+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", decode(t, w)["status"])
}
