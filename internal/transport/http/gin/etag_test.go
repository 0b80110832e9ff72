package httpgin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteJSONWithCache_SetsETagAndBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	writeJSONWithCache(c, http.StatusOK, map[string]string{"a": "b"}, "public, max-age=15", true)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag header to be set")
	}
	if etag[:2] != "W/" {
		t.Errorf("weak=true should produce a weak ETag, got %q", etag)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=15" {
		t.Errorf("Cache-Control = %q, want public, max-age=15", cc)
	}
}

func TestWriteJSONWithCache_NotModifiedOnMatchingETag(t *testing.T) {
	// First request to learn the ETag for this payload.
	w1 := httptest.NewRecorder()
	c1, _ := gin.CreateTestContext(w1)
	c1.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	writeJSONWithCache(c1, http.StatusOK, map[string]string{"a": "b"}, "", true)
	etag := w1.Header().Get("ETag")

	// Second request presents If-None-Match with that ETag.
	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set("If-None-Match", etag)
	c2.Request = req2

	writeJSONWithCache(c2, http.StatusOK, map[string]string{"a": "b"}, "", true)

	if w2.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304 for matching If-None-Match", w2.Code)
	}
}
