package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/luminedge/academy-cms/internal/admins"
	"github.com/luminedge/academy-cms/internal/config"
	"github.com/luminedge/academy-cms/internal/sessions"
)

type fakeAdminRepo struct {
	mu    sync.Mutex
	byUID map[string]*admins.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{byUID: map[string]*admins.Admin{}}
}

func (f *fakeAdminRepo) Upsert(_ context.Context, a *admins.Admin) (*admins.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUID[a.UID] = a
	return a, nil
}

func (f *fakeAdminRepo) GetByUID(_ context.Context, uid string) (*admins.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUID[uid], nil
}

func (f *fakeAdminRepo) List(_ context.Context) ([]*admins.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*admins.Admin, 0, len(f.byUID))
	for _, a := range f.byUID {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAdminRepo) Delete(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byUID, uid)
	return nil
}

type fakeSessionRepo struct {
	mu   sync.Mutex
	byRT map[string]*sessions.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byRT: map[string]*sessions.Session{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *sessions.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byRT[s.RefreshToken] = s
	return nil
}

func (f *fakeSessionRepo) GetByRefresh(_ context.Context, rt string) (*sessions.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byRT[rt], nil
}

func (f *fakeSessionRepo) DeleteByRefresh(_ context.Context, rt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byRT, rt)
	return nil
}

// unsignedJWT builds a header.payload.sig token with no real signature; the
// insecure verifier only reads the payload.
func unsignedJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	b, err := json.Marshal(claims)
	require.NoError(t, err)
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payload := base64.RawURLEncoding.EncodeToString(b)
	return header + "." + payload + ".sig"
}

func newAuthRouter(t *testing.T) (*gin.Engine, *fakeAdminRepo) {
	t.Helper()
	t.Setenv("ALLOW_INSECURE_TOKEN", "true")
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 24 * time.Hour

	adminRepo := newFakeAdminRepo()
	h := NewAuthHandler(cfg, admins.NewService(adminRepo), sessions.NewService(newFakeSessionRepo()))

	g := gin.New()
	h.Register(&g.RouterGroup)
	return g, adminRepo
}

func postJSON(g *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	return w
}

func TestLoginRefreshLogout(t *testing.T) {
	g, repo := newAuthRouter(t)
	_, err := repo.Upsert(context.Background(), &admins.Admin{
		UID: "u-jane", Email: "jane@example.com", Role: admins.RoleAdmin,
	})
	require.NoError(t, err)

	tok := unsignedJWT(t, map[string]any{"sub": "u-jane", "email": "jane@example.com"})
	w := postJSON(g, "/auth/login", `{"idToken":"`+tok+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var lr struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lr))
	require.NotEmpty(t, lr.AccessToken)
	require.NotEmpty(t, lr.RefreshToken)

	w = postJSON(g, "/auth/refresh", `{"refresh_token":"`+lr.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "access_token")

	w = postJSON(g, "/auth/logout", `{"refresh_token":"`+lr.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// the refresh token is gone after logout
	w = postJSON(g, "/auth/refresh", `{"refresh_token":"`+lr.RefreshToken+`"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsNonAdmins(t *testing.T) {
	g, _ := newAuthRouter(t)

	tok := unsignedJWT(t, map[string]any{"sub": "u-stranger", "email": "stranger@example.com"})
	w := postJSON(g, "/auth/login", `{"idToken":"`+tok+`"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginRejectsMalformedToken(t *testing.T) {
	g, _ := newAuthRouter(t)

	w := postJSON(g, "/auth/login", `{"idToken":"not-a-jwt"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(g, "/auth/login", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
