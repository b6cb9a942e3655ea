package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Vovarama1992/voxstudio/internal/textutil"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewGoogleTokenSource reads a service-account key and returns a cached,
// auto-refreshing token source.
func NewGoogleTokenSource(ctx context.Context, credentialsFile string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", credentialsFile, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return oauth2.ReuseTokenSource(nil, creds.TokenSource), nil
}

// APIError is a non-2xx answer from Vertex AI.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vertex api %d: %s", e.Status, e.Message)
}

// VertexClient talks to the regional aiplatform endpoint of one project.
type VertexClient struct {
	baseURL  string
	project  string
	location string
	tokens   oauth2.TokenSource
	client   *http.Client
	attempts int
}

func NewVertexClient(project, location string, tokens oauth2.TokenSource) *VertexClient {
	return &VertexClient{
		baseURL:  fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", location),
		project:  project,
		location: location,
		tokens:   tokens,
		client:   &http.Client{Timeout: 2 * time.Minute},
		attempts: 3,
	}
}

// WithBaseURL points the client at another host, e.g. a test server.
func (v *VertexClient) WithBaseURL(u string) *VertexClient {
	v.baseURL = strings.TrimRight(u, "/")
	return v
}

// ModelURL builds .../projects/{p}/locations/{l}/publishers/google/models/{model}:{method}.
func (v *VertexClient) ModelURL(model, method string) string {
	return fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s:%s",
		v.baseURL, v.project, v.location, model, method)
}

// OperationURL resolves a long-running operation name.
func (v *VertexClient) OperationURL(name string) string {
	return v.baseURL + "/" + strings.TrimLeft(name, "/")
}

func (v *VertexClient) postJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return v.do(ctx, http.MethodPost, url, body, out)
}

func (v *VertexClient) getJSON(ctx context.Context, url string, out any) error {
	return v.do(ctx, http.MethodGet, url, nil, out)
}

// do retries transport failures and 5xx answers; 4xx and decode errors
// come back immediately.
func (v *VertexClient) do(ctx context.Context, method, url string, body []byte, out any) error {
	var lastErr error

	for attempt := 1; attempt <= v.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * 500 * time.Millisecond):
			}
		}

		raw, status, err := v.send(ctx, method, url, body)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			log.Printf("[VERTEX][RETRY] %s attempt=%d err=%v", method, attempt, err)
			continue
		}

		if status >= 300 {
			apiErr := &APIError{Status: status, Message: errorMessage(raw)}
			if status >= 500 {
				lastErr = apiErr
				log.Printf("[VERTEX][RETRY] %s attempt=%d status=%d", method, attempt, status)
				continue
			}
			return apiErr
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode vertex response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("vertex request failed after %d attempts: %w", v.attempts, lastErr)
}

func (v *VertexClient) send(ctx context.Context, method, url string, body []byte) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, 0, err
	}

	tok, err := v.tokens.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("google token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return raw, resp.StatusCode, nil
}

func errorMessage(raw []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return textutil.Trim(strings.TrimSpace(string(raw)), 200)
}
