package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps a single feed response
const maxBodyBytes = 16 << 20

// doGet sends an unauthenticated GET and returns the body of a 2xx response
func doGet(ctx context.Context, client *http.Client, feedName, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(feedName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(feedName, fmt.Errorf("read response: %w", err))
	}

	if err := checkHTTPStatus(feedName, resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}
