package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/Dephilia/rpoaurk/internal/ports"
	"github.com/jonboulle/clockwork"
)

type ClientFactory func(creds domain.Credentials) ports.APIClient

type ChannelFactory func(bootstrapURL string) (ports.CometPoller, error)

type EventHandler func(event domain.CometEvent) error

type Option func(*Service)

// WithConsumerOverride replaces the persisted consumer pair when both values
// are set. A persisted token issued to another consumer is ignored.
func WithConsumerOverride(consumerKey, consumerSecret string) Option {
	return func(s *Service) {
		s.overrideKey = strings.TrimSpace(consumerKey)
		s.overrideSecret = strings.TrimSpace(consumerSecret)
	}
}

type Service struct {
	repo       ports.CredentialRepository
	store      ports.SecretStore
	authorizer ports.Authorizer
	clients    ClientFactory
	channels   ChannelFactory
	clock      ports.Clock

	overrideKey    string
	overrideSecret string
}

func NewService(
	repo ports.CredentialRepository,
	store ports.SecretStore,
	authorizer ports.Authorizer,
	clients ClientFactory,
	channels ChannelFactory,
	clock ports.Clock,
	opts ...Option,
) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	service := &Service{
		repo:       repo,
		store:      store,
		authorizer: authorizer,
		clients:    clients,
		channels:   channels,
		clock:      clock,
	}
	for _, opt := range opts {
		opt(service)
	}

	return service
}

// LoadCredentials resolves the persisted credentials and their secret refs.
func (s *Service) LoadCredentials(ctx context.Context) (domain.Credentials, error) {
	record, err := s.loadRecord(ctx)
	if err != nil {
		return domain.Credentials{}, err
	}

	record = s.applyOverride(record)
	if record.ConsumerKey == "" {
		return domain.Credentials{}, domain.ErrConsumerMissing
	}

	consumerSecret, err := s.resolveSecret(ctx, record.ConsumerSecret, record.ConsumerSecretRef)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("resolve consumer secret: %w", err)
	}
	if consumerSecret == "" {
		return domain.Credentials{}, domain.ErrConsumerMissing
	}

	tokenSecret, err := s.resolveSecret(ctx, record.TokenSecret, record.TokenSecretRef)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("resolve token secret: %w", err)
	}

	return domain.NewCredentials(record.ConsumerKey, consumerSecret, record.Token, tokenSecret), nil
}

// SaveCredentials moves the secrets of creds into the secret store and
// writes the keys file. Secrets overwritten by this call are restored when
// the file cannot be written.
func (s *Service) SaveCredentials(ctx context.Context, creds domain.Credentials, authorizedAt time.Time) error {
	if !creds.HasConsumer() {
		return domain.ErrConsumerMissing
	}

	previous, err := s.loadRecord(ctx)
	if err != nil {
		return err
	}

	record := domain.CredentialRecord{
		ConsumerKey:       creds.ConsumerKey,
		ConsumerSecretRef: domain.ConsumerSecretRef(creds.ConsumerKey),
	}
	secrets := map[string]string{record.ConsumerSecretRef: creds.ConsumerSecret}
	if creds.Authorized {
		record.Token = creds.Token
		record.TokenSecretRef = domain.TokenSecretRef(creds.ConsumerKey)
		record.AuthorizedAt = authorizedAt.UTC()
		secrets[record.TokenSecretRef] = creds.TokenSecret
	}

	written := make([]secretSnapshot, 0, len(secrets))
	for _, ref := range record.SecretRefs() {
		snapshot, err := s.snapshotSecret(ctx, ref)
		if err != nil {
			return errors.Join(fmt.Errorf("read secret %q: %w", ref, err), s.restoreSecrets(ctx, written))
		}
		if err := s.store.Put(ctx, ref, secrets[ref]); err != nil {
			return errors.Join(fmt.Errorf("store secret %q: %w", ref, err), s.restoreSecrets(ctx, written))
		}
		written = append(written, snapshot)
	}

	if err := s.repo.Save(ctx, record); err != nil {
		if rollbackErr := s.restoreSecrets(ctx, written); rollbackErr != nil {
			return fmt.Errorf("save credentials and rollback stored secrets: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save credentials: %w", err)
	}

	s.deleteStaleSecrets(ctx, previous.SecretRefs(), record.SecretRefs())
	return nil
}

func (s *Service) SetConsumer(ctx context.Context, cmd SetConsumerCommand) error {
	consumerKey := strings.TrimSpace(cmd.ConsumerKey)
	consumerSecret := strings.TrimSpace(cmd.ConsumerSecret)
	if consumerKey == "" || consumerSecret == "" {
		return fmt.Errorf("%w: consumer key and secret are required", domain.ErrConfig)
	}

	return s.SaveCredentials(ctx, domain.NewCredentials(consumerKey, consumerSecret, "", ""), time.Time{})
}

// Login runs the authorization flow when needed and persists the access
// token it yields.
func (s *Service) Login(ctx context.Context, verifiers ports.VerifierSource) (domain.Credentials, error) {
	creds, err := s.LoadCredentials(ctx)
	if err != nil {
		return domain.Credentials{}, err
	}

	authorized, err := s.authorizer.EnsureAuthorized(ctx, creds, verifiers)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("authorize: %w", err)
	}
	if authorized == creds {
		return authorized, nil
	}

	if err := s.SaveCredentials(ctx, authorized, s.clock.Now()); err != nil {
		return domain.Credentials{}, err
	}

	slog.Info("authorization completed", slog.String("stage", authorized.Stage().String()))
	return authorized, nil
}

// Logout drops the access token and keeps the consumer.
func (s *Service) Logout(ctx context.Context) error {
	record, err := s.loadRecord(ctx)
	if err != nil {
		return err
	}
	if record.Token == "" && record.TokenSecret == "" && record.TokenSecretRef == "" {
		return nil
	}

	previous := record
	record.Token = ""
	record.TokenSecret = ""
	record.TokenSecretRef = ""
	record.AuthorizedAt = time.Time{}

	if err := s.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	if previous.TokenSecretRef == "" {
		return nil
	}
	if err := s.store.Delete(ctx, previous.TokenSecretRef); err != nil {
		if restoreErr := s.repo.Save(ctx, previous); restoreErr != nil {
			return fmt.Errorf("delete token secret and restore credentials: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete token secret: %w", err)
	}

	return nil
}

func (s *Service) Status(ctx context.Context) (Status, error) {
	record, err := s.loadRecord(ctx)
	if err != nil {
		return Status{}, err
	}

	record = s.applyOverride(record)
	status := Status{
		ConsumerKey:  record.ConsumerKey,
		Stage:        domain.StageUnauthorized,
		AuthorizedAt: record.AuthorizedAt,
		KeysPath:     s.repo.Path(),
		FromEnv:      s.hasOverride(),
	}
	if record.Token != "" && (record.TokenSecret != "" || record.TokenSecretRef != "") {
		status.Stage = domain.StageAuthorized
	}

	return status, nil
}

// Authorized returns credentials that carry an access token.
func (s *Service) Authorized(ctx context.Context) (domain.Credentials, error) {
	creds, err := s.LoadCredentials(ctx)
	if err != nil {
		return domain.Credentials{}, err
	}
	if !creds.Authorized {
		return domain.Credentials{}, fmt.Errorf("%w: run auth login first", domain.ErrNotAuthorized)
	}

	return creds, nil
}

func (s *Service) Call(ctx context.Context, cmd CallCommand) (json.RawMessage, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	return client.Request(ctx, cmd.Path, cmd.Params, cmd.Files)
}

// Watch follows the user's comet channel and hands every non-empty payload
// to handler. It returns nil when ctx ends or MaxEvents were delivered.
func (s *Service) Watch(ctx context.Context, cmd WatchCommand, handler EventHandler) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}

	bootstrapURL, err := client.UserChannel(ctx)
	if err != nil {
		return fmt.Errorf("get user channel: %w", err)
	}

	channel, err := s.channels(bootstrapURL)
	if err != nil {
		return fmt.Errorf("open comet channel: %w", err)
	}

	delivered := 0
	for ctx.Err() == nil {
		data, err := channel.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("poll comet channel: %w", err)
		}
		if data == nil {
			continue
		}

		event := domain.CometEvent{Offset: channel.Descriptor().Offset, Data: data}
		if err := handler(event); err != nil {
			return fmt.Errorf("handle comet event: %w", err)
		}

		delivered++
		if cmd.MaxEvents > 0 && delivered >= cmd.MaxEvents {
			return nil
		}
	}

	return nil
}

func (s *Service) client(ctx context.Context) (ports.APIClient, error) {
	creds, err := s.Authorized(ctx)
	if err != nil {
		return nil, err
	}

	return s.clients(creds), nil
}

func (s *Service) loadRecord(ctx context.Context) (domain.CredentialRecord, error) {
	record, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsNotFound) {
			return domain.CredentialRecord{}, nil
		}
		return domain.CredentialRecord{}, fmt.Errorf("load credentials: %w", err)
	}

	return record, nil
}

func (s *Service) hasOverride() bool {
	return s.overrideKey != "" && s.overrideSecret != ""
}

func (s *Service) applyOverride(record domain.CredentialRecord) domain.CredentialRecord {
	if !s.hasOverride() {
		return record
	}

	if record.ConsumerKey != s.overrideKey {
		record = domain.CredentialRecord{}
	}
	record.ConsumerKey = s.overrideKey
	record.ConsumerSecret = s.overrideSecret
	record.ConsumerSecretRef = ""

	return record
}

func (s *Service) resolveSecret(ctx context.Context, inline, ref string) (string, error) {
	if ref == "" {
		return inline, nil
	}

	value, err := s.store.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("get secret %q: %w", ref, err)
	}

	return value, nil
}

type secretSnapshot struct {
	ref     string
	value   string
	existed bool
}

func (s *Service) snapshotSecret(ctx context.Context, ref string) (secretSnapshot, error) {
	value, err := s.store.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return secretSnapshot{ref: ref}, nil
		}
		return secretSnapshot{}, err
	}

	return secretSnapshot{ref: ref, value: value, existed: true}, nil
}

func (s *Service) restoreSecrets(ctx context.Context, snapshots []secretSnapshot) error {
	var restoreErr error
	for i := len(snapshots) - 1; i >= 0; i-- {
		snapshot := snapshots[i]
		var err error
		if snapshot.existed {
			err = s.store.Put(ctx, snapshot.ref, snapshot.value)
		} else {
			err = s.store.Delete(ctx, snapshot.ref)
		}
		if err != nil {
			restoreErr = errors.Join(restoreErr, fmt.Errorf("restore secret %q: %w", snapshot.ref, err))
		}
	}

	return restoreErr
}

func (s *Service) deleteStaleSecrets(ctx context.Context, previous, current []string) {
	keep := make(map[string]struct{}, len(current))
	for _, ref := range current {
		keep[ref] = struct{}{}
	}

	for _, ref := range uniqueSecretRefs(previous...) {
		if _, ok := keep[ref]; ok {
			continue
		}
		if err := s.store.Delete(ctx, ref); err != nil {
			slog.Warn("delete stale secret", slog.String("ref", ref), slog.Any("error", err))
		}
	}
}

func uniqueSecretRefs(secretRefs ...string) []string {
	result := make([]string, 0, len(secretRefs))
	seen := make(map[string]struct{}, len(secretRefs))

	for _, secretRef := range secretRefs {
		if secretRef == "" {
			continue
		}
		if _, ok := seen[secretRef]; ok {
			continue
		}

		seen[secretRef] = struct{}{}
		result = append(result, secretRef)
	}

	return result
}
