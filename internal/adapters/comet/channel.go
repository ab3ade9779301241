package comet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/Dephilia/rpoaurk/internal/ports"
)

const (
	PollTimeout          = 60 * time.Second
	maxPollResponseBytes = 8 << 20
)

// Channel polls one comet channel. Polls are serialized so the offset only
// moves forward.
type Channel struct {
	HTTPClient *http.Client
	Timeout    time.Duration

	mu   sync.Mutex
	desc domain.CometDescriptor
}

var _ ports.CometPoller = (*Channel)(nil)

func NewChannel(bootstrapURL string, httpClient *http.Client) (*Channel, error) {
	desc, err := ParseDescriptor(bootstrapURL)
	if err != nil {
		return nil, err
	}

	return &Channel{HTTPClient: httpClient, Timeout: PollTimeout, desc: desc}, nil
}

// ParseDescriptor reads channel and offset from the bootstrap URL and
// resolves the poll endpoint "comet" against it.
func ParseDescriptor(bootstrapURL string) (domain.CometDescriptor, error) {
	parsed, err := url.Parse(bootstrapURL)
	if err != nil {
		return domain.CometDescriptor{}, fmt.Errorf("%w: parse comet url: %w", domain.ErrConfig, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return domain.CometDescriptor{}, fmt.Errorf("%w: comet url %q is not absolute", domain.ErrConfig, bootstrapURL)
	}

	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return domain.CometDescriptor{}, fmt.Errorf("%w: parse comet query: %w", domain.ErrConfig, err)
	}

	channel := query.Get("channel")
	if channel == "" {
		return domain.CometDescriptor{}, fmt.Errorf("%w: comet url has no channel", domain.ErrConfig)
	}
	if !query.Has("offset") {
		return domain.CometDescriptor{}, fmt.Errorf("%w: comet url has no offset", domain.ErrConfig)
	}
	offset, err := strconv.ParseInt(query.Get("offset"), 10, 64)
	if err != nil {
		return domain.CometDescriptor{}, fmt.Errorf("%w: comet offset: %w", domain.ErrConfig, err)
	}

	base := parsed.ResolveReference(&url.URL{Path: "comet"})
	base.RawQuery = ""
	base.Fragment = ""

	return domain.CometDescriptor{BaseURL: base.String(), Channel: channel, Offset: offset}, nil
}

func (c *Channel) Descriptor() domain.CometDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc
}

// Poll issues one long-poll request. The offset advances only when the
// payload was decoded. An idle hold returns nil data and no error.
func (c *Channel) Poll(ctx context.Context) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pollURL := c.desc.PollURL()
	pollCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(pollCtx, http.MethodGet, pollURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create comet request: %w", domain.ErrTransport, err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: comet poll: %w", domain.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPollResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read comet response: %w", domain.ErrTransport, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: comet poll status %d", domain.ErrProtocol, resp.StatusCode)
	}

	update, err := Unwrap(body)
	if err != nil {
		return nil, err
	}
	if update.Idle() {
		slog.Debug("comet poll idle", slog.String("channel", c.desc.Channel), slog.Int64("offset", c.desc.Offset))
		return nil, nil
	}

	next, err := c.desc.Advance(update.NewOffset)
	if err != nil {
		return nil, err
	}

	slog.Debug("comet offset advanced",
		slog.String("channel", c.desc.Channel),
		slog.Int64("from", c.desc.Offset),
		slog.Int64("to", next.Offset),
	)
	c.desc = next

	return update.Data, nil
}

func (c *Channel) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return PollTimeout
}

func (c *Channel) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
