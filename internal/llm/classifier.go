package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ClassifierConfig holds connection details for the question-quality
// classifier service.
type ClassifierConfig struct {
	URL     string
	Timeout time.Duration
}

// ClassifierClient calls the external binary classifier. The classifier
// may run as a remote service or a local sidecar; the core only sees
// this HTTP contract.
type ClassifierClient struct {
	httpClient  *http.Client
	classifyURL string
}

func NewClassifierClient(cfg ClassifierConfig, httpClient *http.Client) *ClassifierClient {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &ClassifierClient{
		httpClient:  httpClient,
		classifyURL: strings.TrimSuffix(cfg.URL, "/") + "/classify",
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Score int `json:"score"`
}

// Classify returns the classifier's 0/1 acceptability score for the
// given question text. Any malformed response is an error; callers
// treat errors as a 0 score.
func (c *ClassifierClient) Classify(ctx context.Context, text string) (int, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.classifyURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var payload classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode classifier payload: %w", err)
	}
	if payload.Score != 0 && payload.Score != 1 {
		return 0, fmt.Errorf("classifier score %d out of range", payload.Score)
	}
	return payload.Score, nil
}
