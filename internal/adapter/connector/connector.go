// Package connector holds the outbound adapters implementing the
// platform and integrator contracts against real ad APIs. Each
// connector converts its platform's native monetary unit to currency
// floats at the boundary and maps HTTP 429/401 to the typed rate-limit
// and authentication errors.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"skupilot/internal/core/port"
)

// Credentials is the free-form credential map persisted per client
// integration and handed to connector constructors.
type Credentials map[string]string

// hasToken reports whether at least one recognized credential field is
// present. This is a shallow syntactic check, not a live probe.
func (c Credentials) hasToken() bool {
	return c["api_key"] != "" || c["access_token"] != "" || c["oauth_token"] != ""
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

// doJSON performs an HTTP request with a JSON body (nil for none) and
// returns the status code and response body.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, nil
}

// statusErr maps a non-2xx status to the error taxonomy. ok statuses
// return nil.
func statusErr(platform string, status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &port.RateLimitError{Platform: platform}
	case status == http.StatusUnauthorized:
		return &port.AuthenticationError{Platform: platform}
	case status < 200 || status >= 300:
		return &port.IntegrationError{Platform: platform, Msg: string(body)}
	}
	return nil
}
