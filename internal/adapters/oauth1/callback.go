package oauth1

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	callbackPath           = "/oauth/callback"
	DefaultCallbackTimeout = 5 * time.Minute
)

var (
	ErrCallbackTokenMismatch = errors.New("oauth callback token does not match the request token")
	ErrCallbackTimeout       = errors.New("timed out waiting for oauth callback")
)

// CallbackServer listens on a local port for the oauth_callback redirect
// and hands the verifier it carries to the flow. It serves one login.
type CallbackServer struct {
	listener net.Listener
	server   *http.Server
	timeout  time.Duration
	notify   func(authorizationURL string) error

	resultCh   chan callbackResult
	resultOnce sync.Once
	closeOnce  sync.Once
}

var _ CallbackSource = (*CallbackServer)(nil)

type callbackResult struct {
	token    string
	verifier string
	err      error
}

// StartCallbackServer listens on listenAddr. notify is called with the
// authorization URL the user has to open.
func StartCallbackServer(listenAddr string, timeout time.Duration, notify func(authorizationURL string) error) (*CallbackServer, error) {
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen callback server: %w", err)
	}

	cb := &CallbackServer{
		listener: listener,
		timeout:  timeout,
		notify:   notify,
		resultCh: make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, cb.handleCallback)

	cb.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if serveErr := cb.server.Serve(cb.listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			cb.trySendResult(callbackResult{err: serveErr})
		}
	}()

	return cb, nil
}

func (c *CallbackServer) CallbackURL() string {
	if tcpAddr, ok := c.listener.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf("http://127.0.0.1:%d%s", tcpAddr.Port, callbackPath)
	}
	return "http://127.0.0.1" + callbackPath
}

// Verifier waits for the redirect that belongs to the request token in
// authorizationURL. The server is closed afterwards.
func (c *CallbackServer) Verifier(ctx context.Context, authorizationURL string) (string, error) {
	defer func() { _ = c.Close() }()

	expectedToken, err := requestTokenOf(authorizationURL)
	if err != nil {
		return "", err
	}

	if c.notify != nil {
		if err := c.notify(authorizationURL); err != nil {
			return "", err
		}
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case result := <-c.resultCh:
		if result.err != nil {
			return "", result.err
		}
		if result.token != expectedToken {
			return "", ErrCallbackTokenMismatch
		}
		return result.verifier, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", ErrCallbackTimeout
	}
}

func (c *CallbackServer) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		closeErr = c.server.Close()
	})
	return closeErr
}

func (c *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	verifier := query.Get("oauth_verifier")

	if verifier == "" {
		c.trySendResult(callbackResult{err: errors.New("callback is missing oauth_verifier")})
		http.Error(w, "missing oauth_verifier", http.StatusBadRequest)
		return
	}

	c.trySendResult(callbackResult{token: query.Get("oauth_token"), verifier: verifier})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Authorization complete. You can close this window."))
}

func (c *CallbackServer) trySendResult(result callbackResult) {
	c.resultOnce.Do(func() {
		c.resultCh <- result
	})
}

func requestTokenOf(authorizationURL string) (string, error) {
	parsed, err := url.Parse(authorizationURL)
	if err != nil {
		return "", fmt.Errorf("parse authorization url: %w", err)
	}

	token := parsed.Query().Get("oauth_token")
	if token == "" {
		return "", errMissingRequestToken
	}

	return token, nil
}
