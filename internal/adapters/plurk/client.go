package plurk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Dephilia/rpoaurk/internal/adapters/oauth1"
	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/Dephilia/rpoaurk/internal/ports"
)

const DefaultBaseURL = "https://www.plurk.com"

const maxResponseBytes = 32 << 20

var errEmptyAPIPath = errors.New("api path is empty")

type RoutingError struct {
	Path string
	Err  error
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("resolve api path %q: %v", e.Path, e.Err)
}

func (e *RoutingError) Unwrap() []error {
	return []error{domain.ErrRouting, e.Err}
}

// APIError is a non-2xx answer from the API. Message carries error_text
// when the body has one.
type APIError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plurk api %s: status %d: %s", e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return domain.ErrProtocol
}

type Client struct {
	BaseURL     string
	Credentials domain.Credentials
	Signer      oauth1.Signer
	HTTPClient  *http.Client
}

var _ ports.APIClient = (*Client)(nil)

func NewClient(baseURL string, creds domain.Credentials, httpClient *http.Client) *Client {
	return &Client{
		BaseURL:     baseURL,
		Credentials: creds,
		Signer:      oauth1.NewSigner(),
		HTTPClient:  httpClient,
	}
}

// Request posts a signed call to apiPath. Body parameters are form encoded,
// files are sent as multipart parts. Supplying both is rejected.
func (c *Client) Request(ctx context.Context, apiPath string, params map[string]string, files map[string]string) (json.RawMessage, error) {
	endpoint, err := c.resolve(apiPath)
	if err != nil {
		return nil, err
	}

	_, bodyParams := oauth1.PartitionParams(params)
	if len(bodyParams) > 0 && len(files) > 0 {
		return nil, fmt.Errorf("%w: %s: body parameters and files cannot be sent together", domain.ErrConfig, apiPath)
	}

	body, err := newRequestBody(bodyParams, files)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", apiPath, err)
	}
	defer body.close()

	header, err := c.Signer.Authorization(http.MethodPost, endpoint, c.Credentials, params, "")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body.reader)
	if err != nil {
		return nil, fmt.Errorf("%w: create request %s: %w", domain.ErrTransport, apiPath, err)
	}
	req.Header.Set("Authorization", header)
	if body.contentType != "" {
		req.Header.Set("Content-Type", body.contentType)
	}

	slog.Debug("plurk api request",
		slog.String("path", apiPath),
		slog.String("encoding", body.kind),
	)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: post %s: %w", domain.ErrTransport, apiPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", domain.ErrTransport, apiPath, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{Path: apiPath, StatusCode: resp.StatusCode, Message: errorText(data)}
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", domain.ErrDecode, apiPath, err)
	}

	return raw, nil
}

func (c *Client) resolve(apiPath string) (string, error) {
	if strings.TrimSpace(apiPath) == "" {
		return "", &RoutingError{Path: apiPath, Err: errEmptyAPIPath}
	}

	base, err := url.Parse(c.baseURL())
	if err != nil {
		return "", &RoutingError{Path: apiPath, Err: fmt.Errorf("parse base url: %w", err)}
	}
	if base.Scheme == "" || base.Host == "" {
		return "", &RoutingError{Path: apiPath, Err: errors.New("base url must be absolute")}
	}

	ref, err := url.Parse(apiPath)
	if err != nil {
		return "", &RoutingError{Path: apiPath, Err: err}
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != base.Scheme || resolved.Host != base.Host {
		return "", &RoutingError{Path: apiPath, Err: fmt.Errorf("path leaves api origin %s", base.Host)}
	}

	return resolved.String(), nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func errorText(data []byte) string {
	var payload struct {
		ErrorText string `json:"error_text"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.ErrorText != "" {
		return payload.ErrorText
	}

	text := string(bytes.TrimSpace(data))
	if text == "" {
		return "empty response"
	}
	const limit = 200
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
