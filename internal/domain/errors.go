package domain

import "errors"

var (
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("decode failure")
	ErrProtocol  = errors.New("protocol violation")
	ErrSigning   = errors.New("signing failure")
	ErrConfig    = errors.New("invalid configuration")
	ErrAuth      = errors.New("authorization failed")
	ErrRouting   = errors.New("api routing failed")

	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrConsumerMissing     = errors.New("consumer key and secret are not configured")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrSecretNotFound      = errors.New("secret not found")
)
