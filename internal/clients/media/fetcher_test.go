package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidence-service/internal/domain/analysis"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFetch_UsesContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("frames"))
	}))
	defer srv.Close()

	m, err := NewFetcher(srv.Client(), 1024).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", m.MIMEType)
	assert.Equal(t, []byte("frames"), m.Data)
}

func TestFetch_SniffsGenericContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	m, err := NewFetcher(srv.Client(), 1024).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", m.MIMEType)
}

func TestFetch_Failures(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer notFound.Close()

	tooLarge := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer tooLarge.Close()

	for name, url := range map[string]string{
		"not found": notFound.URL,
		"too large": tooLarge.URL,
		"bad url":   "://nope",
	} {
		_, err := NewFetcher(http.DefaultClient, 32).Fetch(context.Background(), url)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, analysis.ErrMediaUnavailable), name)
	}
}

func TestDetectMIMEType_Default(t *testing.T) {
	assert.Equal(t, defaultMIMEType, detectMIMEType("", []byte{0x00, 0x01, 0x02}))
}
