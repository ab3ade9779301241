package domain

import "time"

type AuthStage int

const (
	StageUnauthorized AuthStage = iota
	StageRequestTokenObtained
	StageAuthorized
)

func (s AuthStage) String() string {
	switch s {
	case StageRequestTokenObtained:
		return "request_token"
	case StageAuthorized:
		return "authorized"
	default:
		return "unauthorized"
	}
}

// Credentials is replaced as a whole on every authorization step.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
	Authorized     bool
}

// NewCredentials builds credentials from a persisted quadruple. A complete
// token pair is taken as the result of an earlier access-token exchange.
func NewCredentials(consumerKey, consumerSecret, token, tokenSecret string) Credentials {
	return Credentials{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		Token:          token,
		TokenSecret:    tokenSecret,
		Authorized:     token != "" && tokenSecret != "",
	}
}

func (c Credentials) Stage() AuthStage {
	switch {
	case c.Authorized:
		return StageAuthorized
	case c.Token != "":
		return StageRequestTokenObtained
	default:
		return StageUnauthorized
	}
}

func (c Credentials) HasConsumer() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != ""
}

func (c Credentials) ConsumerOnly() Credentials {
	return Credentials{ConsumerKey: c.ConsumerKey, ConsumerSecret: c.ConsumerSecret}
}

func (c Credentials) WithRequestToken(token, tokenSecret string) Credentials {
	next := c.ConsumerOnly()
	next.Token = token
	next.TokenSecret = tokenSecret
	return next
}

func (c Credentials) WithAccessToken(token, tokenSecret string) Credentials {
	next := c.WithRequestToken(token, tokenSecret)
	next.Authorized = true
	return next
}

// CredentialRecord is the persisted form of Credentials. Secrets are either
// inline or referenced by a secret store key.
type CredentialRecord struct {
	ConsumerKey       string
	ConsumerSecret    string
	ConsumerSecretRef string
	Token             string
	TokenSecret       string
	TokenSecretRef    string
	AuthorizedAt      time.Time
}

func (r CredentialRecord) SecretRefs() []string {
	refs := make([]string, 0, 2)
	for _, ref := range []string{r.ConsumerSecretRef, r.TokenSecretRef} {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

func ConsumerSecretRef(consumerKey string) string {
	return "rpoaurk/" + consumerKey + "/consumer_secret"
}

func TokenSecretRef(consumerKey string) string {
	return "rpoaurk/" + consumerKey + "/token_secret"
}
