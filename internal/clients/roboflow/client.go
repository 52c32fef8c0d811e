// Package roboflow reads licence plates through a Roboflow serverless workflow.
package roboflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"evidence-service/internal/domain/analysis"
)

const dependency = "roboflow"

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      zerolog.Logger
}

func NewClient(baseURL, workspace, workflow, apiKey string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint: fmt.Sprintf("%s/%s/workflows/%s", strings.TrimRight(baseURL, "/"), workspace, workflow),
		apiKey:   apiKey,
		http:     httpClient,
		log:      log.With().Str("component", dependency).Logger(),
	}
}

type imageInput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type workflowRequest struct {
	APIKey string `json:"api_key"`
	Inputs struct {
		Image imageInput `json:"image"`
	} `json:"inputs"`
}

// ReadPlate runs the text-recognition workflow against mediaURL and returns the
// normalized plate it found, or an empty string.
func (c *Client) ReadPlate(ctx context.Context, mediaURL string) (string, error) {
	if c.apiKey == "" {
		return "", analysis.Disabled(dependency)
	}

	payload := workflowRequest{APIKey: c.apiKey}
	payload.Inputs.Image = imageInput{Type: "url", Value: mediaURL}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", analysis.Transport(dependency, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", analysis.Transport(dependency, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", analysis.Transport(dependency, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", analysis.Transport(dependency, err)
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		RawJSON("response", compactJSON(raw)).
		Msg("workflow response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", analysis.Reported(dependency, errors.New(errorMessage(raw, resp.Status)))
	}

	return ExtractPlate(raw), nil
}

func errorMessage(raw []byte, status string) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return status
}

// compactJSON returns raw if it is valid JSON, otherwise a quoted string of it,
// so the debug log line stays well-formed.
func compactJSON(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.Bytes()
	}
	quoted, _ := json.Marshal(string(raw))
	return quoted
}
