package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureServer(t *testing.T, form *url.Values) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		parsed, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		*form = parsed
	}))
}

func TestPublishDigestSendsForm(t *testing.T) {
	t.Parallel()

	var form url.Values
	server := captureServer(t, &form)
	defer server.Close()

	n := NewNotifier("token", "42")
	n.apiBase = server.URL

	digest := "Site analysis batch: 1 analyzed, 1 ok, 0 failed, 0 skipped"
	require.NoError(t, n.PublishDigest(context.Background(), digest))

	assert.Equal(t, "42", form.Get("chat_id"))
	assert.Equal(t, digest, form.Get("text"))
	assert.Equal(t, "Markdown", form.Get("parse_mode"))
	assert.Equal(t, "true", form.Get("disable_web_page_preview"))
}

func TestPublishDigestTruncatesLongBatches(t *testing.T) {
	t.Parallel()

	var form url.Values
	server := captureServer(t, &form)
	defer server.Close()

	n := NewNotifier("token", "42")
	n.apiBase = server.URL

	long := strings.Repeat("- https://example.com/site\nType: MCQ_PLATFORM (85%)\n\n", 200)
	require.NoError(t, n.PublishDigest(context.Background(), long))

	sent := form.Get("text")
	assert.LessOrEqual(t, len(sent), maxMessageLen)
	assert.True(t, strings.HasSuffix(sent, truncationMark))
}

func TestPublishDigestServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewNotifier("token", "42")
	n.apiBase = server.URL

	assert.Error(t, n.PublishDigest(context.Background(), "digest"))
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	assert.Error(t, NewNotifier("", "").PublishDigest(context.Background(), "digest"))
}

func TestTruncateDigestCutsAtLineBoundary(t *testing.T) {
	t.Parallel()

	line := strings.Repeat("x", 99) + "\n"
	long := strings.Repeat(line, 50)

	got := truncateDigest(long)

	assert.LessOrEqual(t, len(got), maxMessageLen)
	assert.True(t, strings.HasSuffix(got, truncationMark))
	// Every kept line is whole.
	for _, kept := range strings.Split(strings.TrimSuffix(got, truncationMark), "\n") {
		assert.LessOrEqual(t, len(kept), 99)
	}

	short := "all good"
	assert.Equal(t, short, truncateDigest(short))
}