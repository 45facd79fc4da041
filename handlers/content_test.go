package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminedge/academy-cms/internal/audit"
	"github.com/luminedge/academy-cms/internal/content"
	"github.com/luminedge/academy-cms/internal/content/store"
)

func newContentRouter(t *testing.T) (*gin.Engine, *content.Saver) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	acc := content.NewAccessor(st, content.NewMemoryCache(time.Minute))
	sv := content.NewSaver(st, acc)
	h := NewContentHandler(acc, sv, audit.NewLog(nil))

	g := gin.New()
	// stand-in for the auth middleware's claim extraction
	g.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"email": "editor@example.com", "sub": "u-editor"})
		c.Next()
	})
	api := g.Group("/api/v1")
	h.Register(api)
	return g, sv
}

func putSection(t *testing.T, g *gin.Engine, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cms/sections/"+name, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	return w
}

func TestSectionRoundTrip(t *testing.T) {
	g, _ := newContentRouter(t)

	// absent section: empty payload, null baseline
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cms/sections/hero", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Payload  map[string]any `json:"payload"`
		Baseline *time.Time     `json:"baseline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Payload)
	assert.Nil(t, got.Baseline)

	// first save needs no baseline
	w = putSection(t, g, "hero", `{"payload":{"headline":"Welcome"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var saved struct {
		Baseline time.Time `json:"baseline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.False(t, saved.Baseline.IsZero())

	// reload: payload is back with a baseline and the editor stamped
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cms/sections/hero", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Welcome", got.Payload["headline"])
	require.NotNil(t, got.Baseline)
	meta := content.ExtractMetadata(got.Payload)
	require.NotNil(t, meta)
	assert.Equal(t, "editor@example.com", meta.UpdatedBy)
}

func TestSaveConflictReturns409(t *testing.T) {
	g, sv := newContentRouter(t)

	w := putSection(t, g, "hero", `{"payload":{"headline":"v1"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var saved struct {
		Baseline time.Time `json:"baseline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))

	// someone else writes behind this client's back
	_, err := sv.Save(httptest.NewRequest(http.MethodGet, "/", nil).Context(), content.SaveRequest{
		Section:  "hero",
		Payload:  map[string]any{"headline": "their version"},
		Identity: content.Identity{Email: "rival@example.com"},
	})
	require.NoError(t, err)

	body := fmt.Sprintf(`{"payload":{"headline":"v2"},"baseline":%q}`, saved.Baseline.Format(time.RFC3339Nano))
	w = putSection(t, g, "hero", body)
	require.Equal(t, http.StatusConflict, w.Code)
	var conflict map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conflict))
	assert.Equal(t, "rival@example.com", conflict["lastEditor"])
	assert.NotEmpty(t, conflict["lastEditedAt"])
	assert.Contains(t, conflict["message"], "rival@example.com")

	// force wins
	body = fmt.Sprintf(`{"payload":{"headline":"v2"},"baseline":%q,"force":true}`, saved.Baseline.Format(time.RFC3339Nano))
	w = putSection(t, g, "hero", body)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSaveValidationReturns422(t *testing.T) {
	g, _ := newContentRouter(t)

	// hero requires a headline
	w := putSection(t, g, "hero", `{"payload":{"subheadline":"only"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "headline")
}

func TestSaveRejectsReservedMetadataKey(t *testing.T) {
	g, _ := newContentRouter(t)

	w := putSection(t, g, "hero", `{"payload":{"headline":"x","metadata":{"updatedBy":"spoof"}}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteItemEndpoint(t *testing.T) {
	g, _ := newContentRouter(t)

	w := putSection(t, g, "testimonials", `{"payload":{"itm_1":{"quote":"good","author":"A"},"itm_2":{"quote":"great","author":"B"}}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/cms/sections/testimonials/items/itm_1", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cms/sections/testimonials", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotContains(t, got.Payload, "itm_1")
	assert.Contains(t, got.Payload, "itm_2")
}

func TestDeleteItemRejectsMetadataKey(t *testing.T) {
	g, _ := newContentRouter(t)

	w := putSection(t, g, "testimonials", `{"payload":{"itm_1":{"quote":"good","author":"A"}}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/cms/sections/testimonials/items/metadata", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// the audit record survives, so stale saves stay detectable
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cms/sections/testimonials", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Payload  map[string]any `json:"payload"`
		Baseline *time.Time     `json:"baseline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotNil(t, got.Baseline)
	assert.Contains(t, got.Payload, content.MetadataKey)
}

func TestSectionAuditEndpointEmpty(t *testing.T) {
	g, _ := newContentRouter(t)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cms/sections/hero/audit", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Entries []any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotNil(t, got.Entries)
	assert.Empty(t, got.Entries)
}
