package oauth1

import (
	"cmp"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	SignatureMethod = "HMAC-SHA1"
	oauthPrefix     = "oauth_"
	signatureKey    = "oauth_signature"
	verifierKey     = "oauth_verifier"
)

// Keys the signer always computes itself. Callers cannot override them.
var signerOwnedKeys = map[string]struct{}{
	"oauth_consumer_key":     {},
	"oauth_nonce":            {},
	"oauth_signature_method": {},
	"oauth_timestamp":        {},
	"oauth_token":            {},
	signatureKey:             {},
}

type SigningError struct {
	URL string
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign request for %q: %v", e.URL, e.Err)
}

func (e *SigningError) Unwrap() []error {
	return []error{domain.ErrSigning, e.Err}
}

type Signer struct {
	Clock clockwork.Clock
	Nonce func() string
}

func NewSigner() Signer {
	return Signer{Clock: clockwork.NewRealClock(), Nonce: NewNonce}
}

func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SignedRequest is the signing input of one HTTP request. URL is the
// normalized base URL without query.
type SignedRequest struct {
	Method      string
	URL         string
	QueryParams url.Values
	OAuthParams map[string]string
	BodyParams  map[string]string
}

// Prepare partitions params, adds the protocol parameters and signs the
// result. A non-empty verifier replaces any caller supplied oauth_verifier.
func (s Signer) Prepare(method, rawURL string, creds domain.Credentials, params map[string]string, verifier string) (SignedRequest, error) {
	baseURL, query, err := normalizeURL(rawURL)
	if err != nil {
		return SignedRequest{}, &SigningError{URL: rawURL, Err: err}
	}

	oauthParams, bodyParams := PartitionParams(params)
	if verifier != "" {
		oauthParams[verifierKey] = verifier
	}
	oauthParams["oauth_consumer_key"] = creds.ConsumerKey
	oauthParams["oauth_nonce"] = s.nonce()
	oauthParams["oauth_signature_method"] = SignatureMethod
	oauthParams["oauth_timestamp"] = strconv.FormatInt(s.clock().Now().Unix(), 10)
	if creds.Token != "" {
		oauthParams["oauth_token"] = creds.Token
	}

	req := SignedRequest{
		Method:      strings.ToUpper(method),
		URL:         baseURL,
		QueryParams: query,
		OAuthParams: oauthParams,
		BodyParams:  bodyParams,
	}
	req.OAuthParams[signatureKey] = req.signature(creds)

	slog.Debug("signed oauth request",
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.Int("body_params", len(bodyParams)),
	)

	return req, nil
}

func (s Signer) Authorization(method, rawURL string, creds domain.Credentials, params map[string]string, verifier string) (string, error) {
	req, err := s.Prepare(method, rawURL, creds, params, verifier)
	if err != nil {
		return "", err
	}
	return req.Header(), nil
}

// PartitionParams moves oauth_ prefixed parameters out of the body set.
// Signer owned keys are dropped.
func PartitionParams(params map[string]string) (oauthParams map[string]string, bodyParams map[string]string) {
	oauthParams = make(map[string]string, len(signerOwnedKeys)+1)
	bodyParams = make(map[string]string, len(params))

	for key, value := range params {
		if !strings.HasPrefix(key, oauthPrefix) {
			bodyParams[key] = value
			continue
		}
		if _, owned := signerOwnedKeys[key]; owned {
			slog.Debug("ignoring caller supplied oauth parameter", slog.String("key", key))
			continue
		}
		oauthParams[key] = value
	}

	return oauthParams, bodyParams
}

func (r SignedRequest) BaseString() string {
	type pair struct{ key, value string }

	pairs := make([]pair, 0, len(r.OAuthParams)+len(r.BodyParams)+len(r.QueryParams))
	for key, value := range r.OAuthParams {
		if key == signatureKey {
			continue
		}
		pairs = append(pairs, pair{PercentEncode(key), PercentEncode(value)})
	}
	for key, value := range r.BodyParams {
		pairs = append(pairs, pair{PercentEncode(key), PercentEncode(value)})
	}
	for key, values := range r.QueryParams {
		for _, value := range values {
			pairs = append(pairs, pair{PercentEncode(key), PercentEncode(value)})
		}
	}

	slices.SortFunc(pairs, func(a, b pair) int {
		return cmp.Or(cmp.Compare(a.key, b.key), cmp.Compare(a.value, b.value))
	})

	encoded := make([]string, 0, len(pairs))
	for _, p := range pairs {
		encoded = append(encoded, p.key+"="+p.value)
	}

	return r.Method + "&" + PercentEncode(r.URL) + "&" + PercentEncode(strings.Join(encoded, "&"))
}

func (r SignedRequest) Signature() string {
	return r.OAuthParams[signatureKey]
}

// Header renders the Authorization header value with oauth_signature last.
func (r SignedRequest) Header() string {
	keys := make([]string, 0, len(r.OAuthParams))
	for key := range r.OAuthParams {
		if key != signatureKey {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	if _, ok := r.OAuthParams[signatureKey]; ok {
		keys = append(keys, signatureKey)
	}

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, PercentEncode(key), PercentEncode(r.OAuthParams[key])))
	}

	return "OAuth " + strings.Join(parts, ", ")
}

func (r SignedRequest) signature(creds domain.Credentials) string {
	key := PercentEncode(creds.ConsumerSecret) + "&" + PercentEncode(creds.TokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	_, _ = mac.Write([]byte(r.BaseString()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s Signer) clock() clockwork.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return clockwork.NewRealClock()
}

func (s Signer) nonce() string {
	if s.Nonce != nil {
		return s.Nonce()
	}
	return NewNonce()
}

func normalizeURL(rawURL string) (string, url.Values, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", nil, errors.New("url must be absolute")
	}

	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return "", nil, fmt.Errorf("parse query: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Hostname())
	port := parsed.Port()
	switch {
	case port != "" && !isDefaultPort(scheme, port):
		host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		host = "[" + host + "]"
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	return scheme + "://" + host + path, query, nil
}

func isDefaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}

const upperHex = "0123456789ABCDEF"

// PercentEncode encodes everything except the RFC 3986 unreserved set.
func PercentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	default:
		return false
	}
}
