// HTTP Client Tool.
//
// Information Hiding:
// - HTTP client implementation details hidden
// - Request/response handling abstracted

package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPTool makes HTTP requests.
type HTTPTool struct {
	client         *http.Client
	timeoutSecs    uint64
	allowedDomains []string
}

// NewHTTPTool creates a new HTTP tool with the given timeout.
func NewHTTPTool(timeoutSecs uint64) *HTTPTool {
	return &HTTPTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		timeoutSecs: timeoutSecs,
	}
}

// WithAllowedDomains sets the allowed domains for requests.
func (t *HTTPTool) WithAllowedDomains(domains []string) *HTTPTool {
	t.allowedDomains = domains
	return t
}

// Metadata returns the tool metadata.
func (t *HTTPTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "http_request",
		Description: "Make HTTP GET or POST requests to fetch data from URLs",
		Parameters: []ToolParameter{
			{Name: "url", ParamType: "string", Description: "The URL to request", Required: true},
			{Name: "method", ParamType: "string", Description: "HTTP method (GET or POST)", Required: false},
			{Name: "body", ParamType: "string", Description: "Request body for POST requests", Required: false},
		},
	}
}

// Call makes the HTTP request.
func (t *HTTPTool) Call(ctx context.Context, args map[string]any) (any, error) {
	rawURL, err := requiredStringArg(args, "url")
	if err != nil {
		return nil, err
	}

	if !t.isDomainAllowed(rawURL) {
		return nil, fmt.Errorf("access to domain in '%s' is not allowed", rawURL)
	}

	method, err := stringArg(args, "method")
	if err != nil {
		return nil, err
	}
	method = strings.ToUpper(method)
	if method == "" {
		method = "GET"
	}
	if method != "GET" && method != "POST" {
		return nil, fmt.Errorf("only GET and POST methods are supported")
	}

	body, err := stringArg(args, "body")
	if err != nil {
		return nil, err
	}

	var req *http.Request
	if method == "POST" {
		req, err = http.NewRequestWithContext(ctx, method, rawURL, strings.NewReader(body))
	} else {
		req, err = http.NewRequestWithContext(ctx, method, rawURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("request timed out after %d seconds", t.timeoutSecs)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return fmt.Sprintf("Status: %s\n\n%s", resp.Status, string(respBody)), nil
	}

	return nil, fmt.Errorf("HTTP error: %s\n\n%s", resp.Status, string(respBody))
}

// isDomainAllowed checks if the URL's domain is in the allowlist.
// Uses proper URL parsing to prevent bypass attacks.
func (t *HTTPTool) isDomainAllowed(urlStr string) bool {
	if len(t.allowedDomains) == 0 {
		return true
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	host := u.Hostname()
	for _, domain := range t.allowedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
