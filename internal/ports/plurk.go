package ports

import (
	"context"
	"encoding/json"

	"github.com/Dephilia/rpoaurk/internal/domain"
)

type Authorizer interface {
	EnsureAuthorized(ctx context.Context, creds domain.Credentials, verifiers VerifierSource) (domain.Credentials, error)
}

type APIClient interface {
	Request(ctx context.Context, apiPath string, params map[string]string, files map[string]string) (json.RawMessage, error)
	UserChannel(ctx context.Context) (string, error)
}

// CometPoller is one comet channel. A nil payload with a nil error means
// the server hold expired without new data.
type CometPoller interface {
	Poll(ctx context.Context) (json.RawMessage, error)
	Descriptor() domain.CometDescriptor
}
