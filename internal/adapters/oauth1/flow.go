package oauth1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/Dephilia/rpoaurk/internal/ports"
)

const maxTokenResponseBytes = 1 << 20

const (
	StepRequestToken = "request_token"
	StepAuthorize    = "authorize"
	StepVerifier     = "verifier"
	StepAccessToken  = "access_token"
)

var (
	errMissingRequestToken = errors.New("request token is missing")
	errEmptyVerifier       = errors.New("verifier is empty")
	errNoVerifierSource    = errors.New("no verifier source configured")
	errMissingTokenFields  = errors.New("response is missing oauth_token or oauth_token_secret")
)

type AuthError struct {
	Step       string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("oauth %s: status %d: %v", e.Step, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("oauth %s: %v", e.Step, e.Err)
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrAuth}
	}
	return []error{domain.ErrAuth, e.Err}
}

type Endpoints struct {
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
}

func PlurkEndpoints(baseURL string) Endpoints {
	base := strings.TrimRight(baseURL, "/")
	return Endpoints{
		RequestTokenURL: base + "/OAuth/request_token",
		AuthorizeURL:    base + "/OAuth/authorize",
		AccessTokenURL:  base + "/OAuth/access_token",
	}
}

// Flow runs the three-legged handshake. Every step takes credentials by
// value and returns the next credentials.
type Flow struct {
	Endpoints      Endpoints
	Signer         Signer
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.Authorizer = Flow{}

// CallbackSource is a VerifierSource that receives the verifier through the
// oauth_callback redirect.
type CallbackSource interface {
	ports.VerifierSource
	CallbackURL() string
}

func (f Flow) RequestToken(ctx context.Context, creds domain.Credentials) (domain.Credentials, error) {
	return f.requestToken(ctx, creds, "")
}

func (f Flow) requestToken(ctx context.Context, creds domain.Credentials, callbackURL string) (domain.Credentials, error) {
	if !creds.HasConsumer() {
		return creds, &AuthError{Step: StepRequestToken, Err: domain.ErrConsumerMissing}
	}

	var params map[string]string
	if callbackURL != "" {
		params = map[string]string{"oauth_callback": callbackURL}
	}

	consumer := creds.ConsumerOnly()
	values, err := f.exchange(ctx, StepRequestToken, f.Endpoints.RequestTokenURL, consumer, params, "")
	if err != nil {
		return creds, err
	}

	token, secret, err := tokenPair(StepRequestToken, values)
	if err != nil {
		return creds, err
	}

	slog.Debug("obtained oauth request token", slog.String("consumer_key", creds.ConsumerKey))
	return consumer.WithRequestToken(token, secret), nil
}

func (f Flow) AuthorizationURL(creds domain.Credentials) (string, error) {
	if creds.Token == "" {
		return "", &AuthError{Step: StepAuthorize, Err: errMissingRequestToken}
	}

	parsed, err := url.Parse(f.Endpoints.AuthorizeURL)
	if err != nil {
		return "", &AuthError{Step: StepAuthorize, Err: fmt.Errorf("parse authorize url: %w", err)}
	}

	query := parsed.Query()
	query.Set("oauth_token", creds.Token)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func (f Flow) AccessToken(ctx context.Context, creds domain.Credentials, verifier string) (domain.Credentials, error) {
	if creds.Stage() != domain.StageRequestTokenObtained {
		return creds, &AuthError{Step: StepAccessToken, Err: errMissingRequestToken}
	}

	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return creds, &AuthError{Step: StepAccessToken, Err: errEmptyVerifier}
	}

	values, err := f.exchange(ctx, StepAccessToken, f.Endpoints.AccessTokenURL, creds, nil, verifier)
	if err != nil {
		return creds, err
	}

	token, secret, err := tokenPair(StepAccessToken, values)
	if err != nil {
		return creds, err
	}

	slog.Debug("obtained oauth access token", slog.String("consumer_key", creds.ConsumerKey))
	return creds.WithAccessToken(token, secret), nil
}

func (f Flow) Authorize(ctx context.Context, creds domain.Credentials, verifiers ports.VerifierSource) (domain.Credentials, error) {
	if verifiers == nil {
		return creds, &AuthError{Step: StepVerifier, Err: errNoVerifierSource}
	}

	var callbackURL string
	if source, ok := verifiers.(CallbackSource); ok {
		callbackURL = source.CallbackURL()
	}

	requested, err := f.requestToken(ctx, creds, callbackURL)
	if err != nil {
		return creds, err
	}

	authURL, err := f.AuthorizationURL(requested)
	if err != nil {
		return creds, err
	}

	verifier, err := verifiers.Verifier(ctx, authURL)
	if err != nil {
		return creds, &AuthError{Step: StepVerifier, Err: err}
	}

	authorized, err := f.AccessToken(ctx, requested, verifier)
	if err != nil {
		return creds, err
	}

	return authorized, nil
}

// EnsureAuthorized is the identity for authorized credentials and performs
// no requests in that case.
func (f Flow) EnsureAuthorized(ctx context.Context, creds domain.Credentials, verifiers ports.VerifierSource) (domain.Credentials, error) {
	if creds.Authorized {
		return creds, nil
	}
	return f.Authorize(ctx, creds, verifiers)
}

func (f Flow) exchange(ctx context.Context, step, endpoint string, creds domain.Credentials, params map[string]string, verifier string) (url.Values, error) {
	header, err := f.Signer.Authorization(http.MethodPost, endpoint, creds, params, verifier)
	if err != nil {
		return nil, &AuthError{Step: step, Err: err}
	}

	requestCtx, cancel := f.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, &AuthError{Step: step, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", header)

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return nil, &AuthError{Step: step, Err: fmt.Errorf("%w: %w", domain.ErrTransport, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseBytes))
	if err != nil {
		return nil, &AuthError{Step: step, Err: fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &AuthError{Step: step, StatusCode: resp.StatusCode, Err: errors.New(summarizeBody(body))}
	}

	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, &AuthError{Step: step, Err: fmt.Errorf("%w: %w", domain.ErrDecode, err)}
	}

	return values, nil
}

func tokenPair(step string, values url.Values) (string, string, error) {
	token := values.Get("oauth_token")
	secret := values.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return "", "", &AuthError{Step: step, Err: errMissingTokenFields}
	}
	return token, secret, nil
}

func summarizeBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	const limit = 200
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

func (f Flow) httpClient() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return http.DefaultClient
}

func (f Flow) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := f.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}
