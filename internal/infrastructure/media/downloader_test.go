package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloader_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case "/untyped":
			_, _ = w.Write([]byte("<html><body>hi</body></html>"))
		case "/huge":
			_, _ = w.Write(make([]byte, 2048))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	d := NewDownloader(5*time.Second, 100, 10, 1024)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		got, err := d.Download(ctx, server.URL+"/ok.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), got.Body)
		assert.Equal(t, "image/jpeg", got.ContentType)
	})

	t.Run("content type sniffed when missing", func(t *testing.T) {
		got, err := d.Download(ctx, server.URL+"/untyped")
		require.NoError(t, err)
		assert.Contains(t, got.ContentType, "text/html")
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		_, err := d.Download(ctx, server.URL+"/huge")
		assert.ErrorContains(t, err, "exceeds")
	})

	t.Run("non-2xx rejected", func(t *testing.T) {
		_, err := d.Download(ctx, server.URL+"/missing")
		assert.ErrorContains(t, err, "unexpected status 404")
	})
}
