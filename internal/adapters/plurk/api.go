package plurk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dephilia/rpoaurk/internal/domain"
)

const (
	PathMe            = "/APP/Users/me"
	PathOwnProfile    = "/APP/Profile/getOwnProfile"
	PathPlurkAdd      = "/APP/Timeline/plurkAdd"
	PathUploadPicture = "/APP/Timeline/uploadPicture"
	PathUserChannel   = "/APP/Realtime/getUserChannel"

	DefaultQualifier = "says"
)

func (c *Client) Me(ctx context.Context) (json.RawMessage, error) {
	return c.Request(ctx, PathMe, nil, nil)
}

func (c *Client) OwnProfile(ctx context.Context) (json.RawMessage, error) {
	return c.Request(ctx, PathOwnProfile, nil, nil)
}

func (c *Client) AddPlurk(ctx context.Context, content, qualifier string) (json.RawMessage, error) {
	if qualifier == "" {
		qualifier = DefaultQualifier
	}
	return c.Request(ctx, PathPlurkAdd, map[string]string{
		"content":   content,
		"qualifier": qualifier,
	}, nil)
}

func (c *Client) UploadPicture(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, PathUploadPicture, nil, map[string]string{"image": path})
}

// UserChannel returns the comet bootstrap URL of the authorized user.
func (c *Client) UserChannel(ctx context.Context) (string, error) {
	raw, err := c.Request(ctx, PathUserChannel, nil, nil)
	if err != nil {
		return "", err
	}
	return CometServer(raw)
}

func CometServer(raw json.RawMessage) (string, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: channel response: %w", domain.ErrDecode, err)
	}

	field, ok := payload["comet_server"]
	if !ok {
		return "", fmt.Errorf("%w: channel response has no comet_server", domain.ErrDecode)
	}

	var server string
	if err := json.Unmarshal(field, &server); err != nil {
		return "", fmt.Errorf("%w: comet_server is not a string: %w", domain.ErrDecode, err)
	}
	if server == "" {
		return "", fmt.Errorf("%w: comet_server is empty", domain.ErrDecode)
	}

	return server, nil
}
