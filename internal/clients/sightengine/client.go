// Package sightengine calls the Sightengine image-forensics API to estimate
// whether evidence media is AI-generated.
package sightengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"evidence-service/internal/domain/analysis"
)

const dependency = "sightengine"

type Client struct {
	baseURL   string
	apiUser   string
	apiSecret string
	http      *http.Client
}

func NewClient(baseURL, apiUser, apiSecret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiUser:   apiUser,
		apiSecret: apiSecret,
		http:      httpClient,
	}
}

type checkResponse struct {
	Status string `json:"status"`
	Type   *struct {
		AIGenerated *float64 `json:"ai_generated"`
	} `json:"type"`
	Error *struct {
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AIGeneratedProbability returns the probability in [0,1] that the media at mediaURL
// is AI-generated. A successful check without a score returns 0.
func (c *Client) AIGeneratedProbability(ctx context.Context, mediaURL string) (float64, error) {
	if c.apiUser == "" || c.apiSecret == "" {
		return 0, analysis.Disabled(dependency)
	}

	q := url.Values{}
	q.Set("url", mediaURL)
	q.Set("models", "genai")
	q.Set("api_user", c.apiUser)
	q.Set("api_secret", c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/1.0/check.json?"+q.Encode(), nil)
	if err != nil {
		return 0, analysis.Transport(dependency, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, analysis.Transport(dependency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, analysis.Transport(dependency, err)
	}

	var payload checkResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, analysis.Malformed(dependency, fmt.Errorf("decode response (http %d): %w", resp.StatusCode, err))
	}

	switch payload.Status {
	case "success":
		if payload.Type == nil || payload.Type.AIGenerated == nil {
			return 0, nil
		}
		return *payload.Type.AIGenerated, nil
	case "failure":
		msg := "unknown error"
		if payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return 0, analysis.Reported(dependency, errors.New(msg))
	default:
		return 0, analysis.Malformed(dependency, fmt.Errorf("unexpected status %q (http %d)", payload.Status, resp.StatusCode))
	}
}
