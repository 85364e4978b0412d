package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MiniCatalog/internal/auth"
)

const jwtSecret = "0123456789abcdef0123456789abcdef"

func newAuthTS(t *testing.T) (*httptest.Server, *auth.TokenMaker) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	store := auth.NewStore()
	require.NoError(t, store.AddHash("admin", hash, auth.RoleOperator))
	require.NoError(t, store.AddHash("viewer", hash, "viewer"))

	jwt := auth.NewTokenMaker(jwtSecret)
	s := &auth.Server{Log: zap.NewNop(), Store: store, JWT: jwt}

	r := chi.NewRouter()
	r.Mount("/auth", s.Routes())
	r.With(auth.RequireOperator(jwt)).Get("/guarded", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, jwt
}

func do(t *testing.T, method, url string, body any, token string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func login(t *testing.T, baseURL, name string) string {
	t.Helper()

	resp, raw := do(t, http.MethodPost, baseURL+"/auth/login", map[string]any{
		"name":     name,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var lr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(raw, &lr))
	require.NotEmpty(t, lr.AccessToken)
	assert.Equal(t, int64(900), lr.ExpiresIn)
	return lr.AccessToken
}

func TestAuth_LoginAndGuard(t *testing.T) {
	ts, _ := newAuthTS(t)

	tok := login(t, ts.URL, "admin")

	resp, raw := do(t, http.MethodGet, ts.URL+"/auth/whoami", nil, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"operator":"admin","role":"operator"}`, string(raw))

	resp, _ = do(t, http.MethodGet, ts.URL+"/guarded", nil, tok)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestAuth_GuardRejects(t *testing.T) {
	ts, _ := newAuthTS(t)

	resp, _ := do(t, http.MethodGet, ts.URL+"/guarded", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, ts.URL+"/guarded", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	viewer := login(t, ts.URL, "viewer")
	resp, _ = do(t, http.MethodGet, ts.URL+"/guarded", nil, viewer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuth_LoginFailures(t *testing.T) {
	ts, _ := newAuthTS(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/auth/login", map[string]any{"name": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/auth/login", map[string]any{"name": "admin", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_LoginIsRateLimited(t *testing.T) {
	ts, _ := newAuthTS(t)

	var last int
	for range 6 {
		resp, _ := do(t, http.MethodPost, ts.URL+"/auth/login", map[string]any{"name": "admin", "password": "nope"}, "")
		last = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
