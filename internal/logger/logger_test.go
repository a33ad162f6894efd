package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	require.NoError(t, Setup("debug", "plain"))
	require.NoError(t, Setup("info", "color"))
	assert.Error(t, Setup("loud", "plain"))
}

func TestAccessLogRotates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, err := NewAccessLog(dir, "access")
	require.NoError(t, err)
	defer l.Close()

	day := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	l.Printf("first %d", 1)
	day = day.Add(2 * time.Minute)
	l.Printf("second %d", 2)

	first, err := os.ReadFile(l.Path("2024-05-01"))
	require.NoError(t, err)
	assert.Contains(t, string(first), "first 1")
	assert.NotContains(t, string(first), "second 2")

	second, err := os.ReadFile(l.Path("2024-05-02"))
	require.NoError(t, err)
	assert.Contains(t, string(second), "second 2")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, err := NewAccessLog(dir, "access")
	require.NoError(t, err)
	defer l.Close()

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x&page=2", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	content, err := os.ReadFile(l.Path(time.Now().Format("2006-01-02")))
	require.NoError(t, err)
	assert.Contains(t, string(content), "GET /search?q=x&page=2 418")
}
