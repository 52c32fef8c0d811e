package sightengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidence-service/internal/domain/analysis"
)

func newServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.0/check.json", r.URL.Path)
		assert.Equal(t, "genai", r.URL.Query().Get("models"))
		assert.Equal(t, "user", r.URL.Query().Get("api_user"))
		assert.Equal(t, "https://cdn.example/evidence.jpg", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAIGeneratedProbability_Success(t *testing.T) {
	srv := newServer(t, `{"status":"success","type":{"ai_generated":0.12}}`)
	c := NewClient(srv.URL, "user", "secret", srv.Client())

	p, err := c.AIGeneratedProbability(context.Background(), "https://cdn.example/evidence.jpg")
	require.NoError(t, err)
	assert.InDelta(t, 0.12, p, 1e-9)
}

func TestAIGeneratedProbability_SuccessWithoutScore(t *testing.T) {
	srv := newServer(t, `{"status":"success","type":{}}`)
	c := NewClient(srv.URL, "user", "secret", srv.Client())

	p, err := c.AIGeneratedProbability(context.Background(), "https://cdn.example/evidence.jpg")
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestAIGeneratedProbability_ReportedFailure(t *testing.T) {
	srv := newServer(t, `{"status":"failure","error":{"type":"usage_limit","code":32,"message":"daily limit reached"}}`)
	c := NewClient(srv.URL, "user", "secret", srv.Client())

	_, err := c.AIGeneratedProbability(context.Background(), "https://cdn.example/evidence.jpg")
	require.Error(t, err)
	assert.Equal(t, analysis.FailureReported, analysis.KindOf(err))
	assert.Contains(t, err.Error(), "daily limit reached")
}

func TestAIGeneratedProbability_Malformed(t *testing.T) {
	srv := newServer(t, `<html>bad gateway</html>`)
	c := NewClient(srv.URL, "user", "secret", srv.Client())

	_, err := c.AIGeneratedProbability(context.Background(), "https://cdn.example/evidence.jpg")
	require.Error(t, err)
	assert.Equal(t, analysis.FailureMalformed, analysis.KindOf(err))
}

func TestAIGeneratedProbability_Disabled(t *testing.T) {
	c := NewClient("http://unused", "user", "", nil)

	_, err := c.AIGeneratedProbability(context.Background(), "https://cdn.example/evidence.jpg")
	assert.Equal(t, analysis.FailureDisabled, analysis.KindOf(err))
}
