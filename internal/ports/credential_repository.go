package ports

import (
	"context"

	"github.com/Dephilia/rpoaurk/internal/domain"
)

// CredentialRepository persists the single credential set of this client.
// Load returns domain.ErrCredentialsNotFound when nothing was saved yet.
type CredentialRepository interface {
	Load(ctx context.Context) (domain.CredentialRecord, error)
	Save(ctx context.Context, record domain.CredentialRecord) error
	Path() string
}
