package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vocab-test-service/internal/domain"
)

// Client submits finalized attempts to the remote grading collaborator and
// returns its authoritative grading report. Implements app.Grader.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// ClientOption customizes the grading client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gradeRequest struct {
	TestID  string                 `json:"testId"`
	Score   float64                `json:"score"`
	Answers []domain.IndexedAnswer `json:"answers"`
}

// Grade POSTs the attempt's test ID, locally computed score, and positional
// answers; the response carries the server's per-question verdicts and
// score.
func (c *Client) Grade(ctx context.Context, testID string, score float64, answers []domain.IndexedAnswer) (domain.GradingReport, error) {
	body, err := json.Marshal(gradeRequest{TestID: testID, Score: score, Answers: answers})
	if err != nil {
		return domain.GradingReport{}, fmt.Errorf("marshal grade request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/grade", bytes.NewReader(body))
	if err != nil {
		return domain.GradingReport{}, fmt.Errorf("build grade request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return domain.GradingReport{}, fmt.Errorf("grade request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.GradingReport{}, fmt.Errorf("grade request: unexpected status %d", resp.StatusCode)
	}

	var report domain.GradingReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return domain.GradingReport{}, fmt.Errorf("decode grading report: %w", err)
	}
	return report, nil
}
