package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsChecker/internal/config"
	"NewsChecker/internal/domain"
	"NewsChecker/internal/ports"
)

// Client talks to an external inference service that hosts the classifier.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Classifier = (*Client)(nil)

type predictRequest struct {
	Dim     int       `json:"dim"`
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

type predictResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Label         *int      `json:"label"`
}

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.MLConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimSuffix(cfg.InferenceURL, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// PredictProba asks the service for the {fake, real} distribution.
func (c *Client) PredictProba(ctx context.Context, v domain.FeatureVector) (domain.ClassProbabilities, error) {
	resp, err := c.predict(ctx, v)
	if err != nil {
		return domain.ClassProbabilities{}, err
	}
	if len(resp.Probabilities) != 2 {
		return domain.ClassProbabilities{}, fmt.Errorf("expected 2 probabilities, got %d", len(resp.Probabilities))
	}
	return domain.ClassProbabilities{
		Fake: resp.Probabilities[domain.FakeClass],
		Real: resp.Probabilities[domain.RealClass],
	}, nil
}

// Predict asks the service for the discrete label.
func (c *Client) Predict(ctx context.Context, v domain.FeatureVector) (int, error) {
	resp, err := c.predict(ctx, v)
	if err != nil {
		return 0, err
	}
	if resp.Label == nil {
		return 0, errors.New("inference response has no label")
	}
	return *resp.Label, nil
}

func (c *Client) predict(ctx context.Context, v domain.FeatureVector) (predictResponse, error) {
	if c == nil || c.http == nil || c.endpoint == "" {
		return predictResponse{}, errors.New("inference client misconfigured")
	}

	var resp predictResponse
	payload := predictRequest{Dim: v.Dim, Indices: v.Indices, Values: v.Values}
	if err := c.post(ctx, "/predict", payload, &resp); err != nil {
		return predictResponse{}, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
