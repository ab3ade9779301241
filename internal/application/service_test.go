package application

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tomlrepo "github.com/Dephilia/rpoaurk/internal/adapters/repo/toml"
	filestore "github.com/Dephilia/rpoaurk/internal/adapters/secrets/file"
	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/Dephilia/rpoaurk/internal/ports"
	"github.com/Dephilia/rpoaurk/internal/ports/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	consumerRef = domain.ConsumerSecretRef("ck")
	tokenRef    = domain.TokenSecretRef("ck")
)

func authorizedRecord() domain.CredentialRecord {
	return domain.CredentialRecord{
		ConsumerKey:       "ck",
		ConsumerSecretRef: consumerRef,
		Token:             "at",
		TokenSecretRef:    tokenRef,
		AuthorizedAt:      time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestServiceLoadCredentialsResolvesSecretRefs(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, nil, nil, nil, nil)

	repo.EXPECT().Load(mockAnyContext()).Return(authorizedRecord(), nil).Once()
	store.EXPECT().Get(mockAnyContext(), consumerRef).Return("cs", nil).Once()
	store.EXPECT().Get(mockAnyContext(), tokenRef).Return("ats", nil).Once()

	creds, err := service.LoadCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NewCredentials("ck", "cs", "at", "ats"), creds)
	assert.True(t, creds.Authorized)
}

func TestServiceLoadCredentialsUsesInlineSecrets(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, nil, nil, nil, nil)

	repo.EXPECT().Load(mockAnyContext()).Return(domain.CredentialRecord{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
	}, nil).Once()

	creds, err := service.LoadCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StageUnauthorized, creds.Stage())
	assert.Equal(t, "cs", creds.ConsumerSecret)
}

func TestServiceLoadCredentialsWithoutConsumer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record domain.CredentialRecord
		err    error
	}{
		{name: "missing file", err: domain.ErrCredentialsNotFound},
		{name: "empty key", record: domain.CredentialRecord{ConsumerSecret: "cs"}},
		{name: "empty secret", record: domain.CredentialRecord{ConsumerKey: "ck"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := mocks.NewMockCredentialRepository(t)
			service := NewService(repo, mocks.NewMockSecretStore(t), nil, nil, nil, nil)
			repo.EXPECT().Load(mockAnyContext()).Return(tt.record, tt.err).Once()

			_, err := service.LoadCredentials(context.Background())
			require.ErrorIs(t, err, domain.ErrConsumerMissing)
		})
	}
}

func TestServiceLoadCredentialsPropagatesSecretStoreError(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, nil, nil, nil, nil)

	repo.EXPECT().Load(mockAnyContext()).Return(authorizedRecord(), nil).Once()
	store.EXPECT().Get(mockAnyContext(), consumerRef).Return("cs", nil).Once()
	store.EXPECT().Get(mockAnyContext(), tokenRef).Return("", domain.ErrSecretNotFound).Once()

	_, err := service.LoadCredentials(context.Background())
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "resolve token secret")
}

func TestServiceConsumerOverrideReplacesPersistedConsumer(t *testing.T) {
	t.Parallel()

	t.Run("same consumer keeps token", func(t *testing.T) {
		t.Parallel()

		repo := mocks.NewMockCredentialRepository(t)
		store := mocks.NewMockSecretStore(t)
		service := NewService(repo, store, nil, nil, nil, nil, WithConsumerOverride("ck", "env-secret"))

		repo.EXPECT().Load(mockAnyContext()).Return(authorizedRecord(), nil).Once()
		store.EXPECT().Get(mockAnyContext(), tokenRef).Return("ats", nil).Once()

		creds, err := service.LoadCredentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.NewCredentials("ck", "env-secret", "at", "ats"), creds)
	})

	t.Run("other consumer drops token", func(t *testing.T) {
		t.Parallel()

		repo := mocks.NewMockCredentialRepository(t)
		store := mocks.NewMockSecretStore(t)
		service := NewService(repo, store, nil, nil, nil, nil, WithConsumerOverride(" other ", "env-secret"))

		repo.EXPECT().Load(mockAnyContext()).Return(authorizedRecord(), nil).Once()

		creds, err := service.LoadCredentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.NewCredentials("other", "env-secret", "", ""), creds)
	})
}

func TestServiceSetConsumerStoresSecretAndResetsToken(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, nil, nil, nil, nil)

	repo.EXPECT().Load(mockAnyContext()).Return(authorizedRecord(), nil).Once()
	store.EXPECT().Get(mockAnyContext(), consumerRef).Return("old-cs", nil).Once()
	store.EXPECT().Put(mockAnyContext(), consumerRef, "new-cs").Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), domain.CredentialRecord{
		ConsumerKey:       "ck",
		ConsumerSecretRef: consumerRef,
	}).Return(nil).Once()
	store.EXPECT().Delete(mockAnyContext(), tokenRef).Return(nil).Once()

	err := service.SetConsumer(context.Background(), SetConsumerCommand{ConsumerKey: " ck ", ConsumerSecret: "new-cs\n"})
	require.NoError(t, err)
}

func TestServiceSetConsumerRejectsEmptyValues(t *testing.T) {
	t.Parallel()

	service := NewService(mocks.NewMockCredentialRepository(t), mocks.NewMockSecretStore(t), nil, nil, nil, nil)

	err := service.SetConsumer(context.Background(), SetConsumerCommand{ConsumerKey: "ck", ConsumerSecret: "  "})
	require.ErrorIs(t, err, domain.ErrConfig)
}

func TestServiceSaveCredentialsRestoresSecretsWhenSaveFails(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, nil, nil, nil, nil)

	saveErr := errors.New("disk full")
	creds := domain.NewCredentials("ck", "cs", "at", "ats")
	authorizedAt := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)

	repo.EXPECT().Load(mockAnyContext()).Return(domain.CredentialRecord{}, domain.ErrCredentialsNotFound).Once()
	store.EXPECT().Get(mockAnyContext(), consumerRef).Return("old-cs", nil).Once()
	store.EXPECT().Put(mockAnyContext(), consumerRef, "cs").Return(nil).Once()
	store.EXPECT().Get(mockAnyContext(), tokenRef).Return("", domain.ErrSecretNotFound).Once()
	store.EXPECT().Put(mockAnyContext(), tokenRef, "ats").Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), authorizedRecord()).Return(saveErr).Once()
	store.EXPECT().Delete(mockAnyContext(), tokenRef).Return(nil).Once()
	store.EXPECT().Put(mockAnyContext(), consumerRef, "old-cs").Return(nil).Once()

	err := service.SaveCredentials(context.Background(), creds, authorizedAt)
	require.ErrorIs(t, err, saveErr)
	assert.ErrorContains(t, err, "save credentials")
}

func TestServiceSaveCredentialsJoinsRollbackErrors(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, nil, nil, nil, nil)

	saveErr := errors.New("disk full")
	rollbackErr := errors.New("pass locked")

	repo.EXPECT().Load(mockAnyContext()).Return(domain.CredentialRecord{}, nil).Once()
	store.EXPECT().Get(mockAnyContext(), consumerRef).Return("", domain.ErrSecretNotFound).Once()
	store.EXPECT().Put(mockAnyContext(), consumerRef, "cs").Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(saveErr).Once()
	store.EXPECT().Delete(mockAnyContext(), consumerRef).Return(rollbackErr).Once()

	err := service.SaveCredentials(context.Background(), domain.NewCredentials("ck", "cs", "", ""), time.Time{})
	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, rollbackErr)
}

func TestServiceLoginPersistsAccessToken(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	authorizer := mocks.NewMockAuthorizer(t)
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	service := NewService(repo, store, authorizer, nil, nil, clockwork.NewFakeClockAt(now))

	consumerOnly := domain.CredentialRecord{ConsumerKey: "ck", ConsumerSecretRef: consumerRef}
	verifiers := ports.VerifierFunc(func(context.Context, string) (string, error) { return "123456", nil })

	repo.EXPECT().Load(mockAnyContext()).Return(consumerOnly, nil).Twice()
	store.EXPECT().Get(mockAnyContext(), consumerRef).Return("cs", nil).Twice()
	authorizer.EXPECT().
		EnsureAuthorized(mockAnyContext(), domain.NewCredentials("ck", "cs", "", ""), mock.Anything).
		Return(domain.NewCredentials("ck", "cs", "at", "ats"), nil).
		Once()
	store.EXPECT().Put(mockAnyContext(), consumerRef, "cs").Return(nil).Once()
	store.EXPECT().Get(mockAnyContext(), tokenRef).Return("", domain.ErrSecretNotFound).Once()
	store.EXPECT().Put(mockAnyContext(), tokenRef, "ats").Return(nil).Once()
	repo.EXPECT().Save(mockAnyContext(), authorizedRecord()).Return(nil).Once()

	creds, err := service.Login(context.Background(), verifiers)
	require.NoError(t, err)
	assert.True(t, creds.Authorized)
	assert.Equal(t, "at", creds.Token)
}

func TestServiceLoginSkipsSaveWhenAlreadyAuthorized(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	authorizer := mocks.NewMockAuthorizer(t)
	service := NewService(repo, store, authorizer, nil, nil, mocks.NewMockClock(t))

	creds := domain.NewCredentials("ck", "cs", "at", "ats")
	repo.EXPECT().Load(mockAnyContext()).Return(authorizedRecord(), nil).Once()
	store.EXPECT().Get(mockAnyContext(), consumerRef).Return("cs", nil).Once()
	store.EXPECT().Get(mockAnyContext(), tokenRef).Return("ats", nil).Once()
	authorizer.EXPECT().EnsureAuthorized(mockAnyContext(), creds, mock.Anything).Return(creds, nil).Once()

	got, err := service.Login(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestServiceLoginWrapsAuthorizerError(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	authorizer := mocks.NewMockAuthorizer(t)
	service := NewService(repo, store, authorizer, nil, nil, nil)

	repo.EXPECT().Load(mockAnyContext()).Return(domain.CredentialRecord{ConsumerKey: "ck", ConsumerSecret: "cs"}, nil).Once()
	authorizer.EXPECT().EnsureAuthorized(mockAnyContext(), mock.Anything, mock.Anything).
		Return(domain.Credentials{}, domain.ErrAuth).Once()

	_, err := service.Login(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrAuth)
}

func TestServiceLogoutDropsTokenAndSecret(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, nil, nil, nil, nil)

	repo.EXPECT().Load(mockAnyContext()).Return(authorizedRecord(), nil).Once()
	repo.EXPECT().Save(mockAnyContext(), domain.CredentialRecord{
		ConsumerKey:       "ck",
		ConsumerSecretRef: consumerRef,
	}).Return(nil).Once()
	store.EXPECT().Delete(mockAnyContext(), tokenRef).Return(nil).Once()

	require.NoError(t, service.Logout(context.Background()))
}

func TestServiceLogoutRestoresRecordWhenSecretDeleteFails(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, nil, nil, nil, nil)

	deleteErr := errors.New("pass locked")
	repo.EXPECT().Load(mockAnyContext()).Return(authorizedRecord(), nil).Once()
	repo.EXPECT().Save(mockAnyContext(), mock.MatchedBy(func(record domain.CredentialRecord) bool {
		return record.Token == ""
	})).Return(nil).Once()
	store.EXPECT().Delete(mockAnyContext(), tokenRef).Return(deleteErr).Once()
	repo.EXPECT().Save(mockAnyContext(), authorizedRecord()).Return(nil).Once()

	err := service.Logout(context.Background())
	require.ErrorIs(t, err, deleteErr)
}

func TestServiceLogoutWithoutTokenIsNoop(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	service := NewService(repo, mocks.NewMockSecretStore(t), nil, nil, nil, nil)

	repo.EXPECT().Load(mockAnyContext()).Return(domain.CredentialRecord{}, domain.ErrCredentialsNotFound).Once()

	require.NoError(t, service.Logout(context.Background()))
}

func TestServiceStatus(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	service := NewService(repo, mocks.NewMockSecretStore(t), nil, nil, nil, nil)

	record := authorizedRecord()
	repo.EXPECT().Load(mockAnyContext()).Return(record, nil).Once()
	repo.EXPECT().Path().Return("/tmp/keys.toml").Once()

	status, err := service.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Status{
		ConsumerKey:  "ck",
		Stage:        domain.StageAuthorized,
		AuthorizedAt: record.AuthorizedAt,
		KeysPath:     "/tmp/keys.toml",
	}, status)
}

func TestServiceCallRequiresAuthorization(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	clients := func(domain.Credentials) ports.APIClient {
		t.Fatal("client must not be built without an access token")
		return nil
	}
	service := NewService(repo, mocks.NewMockSecretStore(t), nil, clients, nil, nil)

	repo.EXPECT().Load(mockAnyContext()).Return(domain.CredentialRecord{ConsumerKey: "ck", ConsumerSecret: "cs"}, nil).Once()

	_, err := service.Call(context.Background(), CallCommand{Path: "/APP/Users/me"})
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestServiceCallForwardsRequest(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockCredentialRepository(t)
	client := mocks.NewMockAPIClient(t)
	var built domain.Credentials
	clients := func(creds domain.Credentials) ports.APIClient {
		built = creds
		return client
	}
	service := NewService(repo, mocks.NewMockSecretStore(t), nil, clients, nil, nil)

	params := map[string]string{"content": "hi"}
	repo.EXPECT().Load(mockAnyContext()).Return(domain.CredentialRecord{
		ConsumerKey: "ck", ConsumerSecret: "cs", Token: "at", TokenSecret: "ats",
	}, nil).Once()
	client.EXPECT().Request(mockAnyContext(), "/APP/Timeline/plurkAdd", params, map[string]string(nil)).
		Return(json.RawMessage(`{"plurk_id":1}`), nil).Once()

	data, err := service.Call(context.Background(), CallCommand{Path: "/APP/Timeline/plurkAdd", Params: params})
	require.NoError(t, err)
	assert.JSONEq(t, `{"plurk_id":1}`, string(data))
	assert.Equal(t, domain.NewCredentials("ck", "cs", "at", "ats"), built)
}

func newWatchService(t *testing.T, client ports.APIClient, poller ports.CometPoller) *Service {
	t.Helper()

	repo := mocks.NewMockCredentialRepository(t)
	repo.EXPECT().Load(mockAnyContext()).Return(domain.CredentialRecord{
		ConsumerKey: "ck", ConsumerSecret: "cs", Token: "at", TokenSecret: "ats",
	}, nil).Once()

	clients := func(domain.Credentials) ports.APIClient { return client }
	channels := func(bootstrapURL string) (ports.CometPoller, error) {
		assert.Equal(t, "https://comet03.plurk.com/comet/1235515351741/?channel=generic-4-f733d8522327edf87b4d1651e6395a6cca0807a0&offset=0", bootstrapURL)
		return poller, nil
	}

	return NewService(repo, mocks.NewMockSecretStore(t), nil, clients, channels, nil)
}

func TestServiceWatchDeliversEventsUntilMax(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockAPIClient(t)
	poller := mocks.NewMockCometPoller(t)
	service := newWatchService(t, client, poller)

	client.EXPECT().UserChannel(mockAnyContext()).
		Return("https://comet03.plurk.com/comet/1235515351741/?channel=generic-4-f733d8522327edf87b4d1651e6395a6cca0807a0&offset=0", nil).Once()
	poller.EXPECT().Poll(mockAnyContext()).Return(json.RawMessage(`[{"type":"new_plurk"}]`), nil).Once()
	poller.EXPECT().Poll(mockAnyContext()).Return(nil, nil).Once()
	poller.EXPECT().Poll(mockAnyContext()).Return(json.RawMessage(`[{"type":"new_response"}]`), nil).Once()
	poller.EXPECT().Descriptor().Return(domain.CometDescriptor{Offset: 10}).Once()
	poller.EXPECT().Descriptor().Return(domain.CometDescriptor{Offset: 12}).Once()

	var events []domain.CometEvent
	err := service.Watch(context.Background(), WatchCommand{MaxEvents: 2}, func(event domain.CometEvent) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(10), events[0].Offset)
	assert.JSONEq(t, `[{"type":"new_plurk"}]`, string(events[0].Data))
	assert.Equal(t, int64(12), events[1].Offset)
}

func TestServiceWatchStopsOnHandlerError(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockAPIClient(t)
	poller := mocks.NewMockCometPoller(t)
	service := newWatchService(t, client, poller)

	handlerErr := errors.New("stdout closed")
	client.EXPECT().UserChannel(mockAnyContext()).
		Return("https://comet03.plurk.com/comet/1235515351741/?channel=generic-4-f733d8522327edf87b4d1651e6395a6cca0807a0&offset=0", nil).Once()
	poller.EXPECT().Poll(mockAnyContext()).Return(json.RawMessage(`[1]`), nil).Once()
	poller.EXPECT().Descriptor().Return(domain.CometDescriptor{Offset: 1}).Once()

	err := service.Watch(context.Background(), WatchCommand{}, func(domain.CometEvent) error { return handlerErr })
	require.ErrorIs(t, err, handlerErr)
}

func TestServiceWatchSurfacesPollError(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockAPIClient(t)
	poller := mocks.NewMockCometPoller(t)
	service := newWatchService(t, client, poller)

	client.EXPECT().UserChannel(mockAnyContext()).
		Return("https://comet03.plurk.com/comet/1235515351741/?channel=generic-4-f733d8522327edf87b4d1651e6395a6cca0807a0&offset=0", nil).Once()
	poller.EXPECT().Poll(mockAnyContext()).Return(nil, domain.ErrProtocol).Once()

	err := service.Watch(context.Background(), WatchCommand{}, func(domain.CometEvent) error { return nil })
	require.ErrorIs(t, err, domain.ErrProtocol)
	assert.ErrorContains(t, err, "poll comet channel")
}

func TestServiceWatchReturnsNilWhenContextEnds(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockAPIClient(t)
	poller := mocks.NewMockCometPoller(t)
	service := newWatchService(t, client, poller)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.EXPECT().UserChannel(mockAnyContext()).
		Return("https://comet03.plurk.com/comet/1235515351741/?channel=generic-4-f733d8522327edf87b4d1651e6395a6cca0807a0&offset=0", nil).Once()
	poller.EXPECT().Poll(mockAnyContext()).RunAndReturn(func(context.Context) (json.RawMessage, error) {
		cancel()
		return nil, context.Canceled
	}).Once()

	err := service.Watch(ctx, WatchCommand{}, func(domain.CometEvent) error { return nil })
	require.NoError(t, err)
}

func TestServiceCredentialsPersistAcrossServiceInstances(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := viper.New()
	cfg.Set("credentials.path", filepath.Join(dir, "keys.toml"))

	repo, err := tomlrepo.NewRepository(cfg)
	require.NoError(t, err)
	store := filestore.NewStore(filepath.Join(dir, "secrets"))

	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	serviceA := NewService(repo, store, nil, nil, nil, clockwork.NewFakeClockAt(now))
	require.NoError(t, serviceA.SetConsumer(context.Background(), SetConsumerCommand{ConsumerKey: "ck", ConsumerSecret: "cs"}))
	require.NoError(t, serviceA.SaveCredentials(context.Background(), domain.NewCredentials("ck", "cs", "at", "ats"), now))

	serviceB := NewService(repo, store, nil, nil, nil, nil)
	creds, err := serviceB.LoadCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NewCredentials("ck", "cs", "at", "ats"), creds)

	require.NoError(t, serviceB.Logout(context.Background()))
	_, err = store.Get(context.Background(), tokenRef)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	status, err := serviceB.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StageUnauthorized, status.Stage)
	assert.Equal(t, "ck", status.ConsumerKey)
}

func mockAnyContext() interface{} {
	return mock.Anything
}
