package ports

import "context"

// VerifierSource obtains the OAuth verifier after the user visited the
// authorization URL.
type VerifierSource interface {
	Verifier(ctx context.Context, authorizationURL string) (string, error)
}

type VerifierFunc func(ctx context.Context, authorizationURL string) (string, error)

func (f VerifierFunc) Verifier(ctx context.Context, authorizationURL string) (string, error) {
	return f(ctx, authorizationURL)
}
