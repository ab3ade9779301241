package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dephilia/rpoaurk/internal/adapters/comet"
	"github.com/Dephilia/rpoaurk/internal/adapters/oauth1"
	"github.com/Dephilia/rpoaurk/internal/adapters/plurk"
	profileadapter "github.com/Dephilia/rpoaurk/internal/adapters/render/profile"
	tomlrepo "github.com/Dephilia/rpoaurk/internal/adapters/repo/toml"
	chainstore "github.com/Dephilia/rpoaurk/internal/adapters/secrets/chain"
	filestore "github.com/Dephilia/rpoaurk/internal/adapters/secrets/file"
	passstore "github.com/Dephilia/rpoaurk/internal/adapters/secrets/pass"
	"github.com/Dephilia/rpoaurk/internal/application"
	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/Dephilia/rpoaurk/internal/ports"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/viper"
)

type app struct {
	service        *application.Service
	newClient      func(domain.Credentials) *plurk.Client
	userRenderer   func(json.RawMessage) (string, error)
	eventRenderer  func(domain.CometEvent) (string, error)
	statusRenderer func(application.Status) (string, error)
}

func wireApp() (*app, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	repo, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire credential repository: %w", err)
	}

	secretStore, err := wireSecretStore()
	if err != nil {
		return nil, err
	}

	baseURL := envOrDefault("RPOAURK_BASE_URL", plurk.DefaultBaseURL)
	httpClient := &http.Client{}

	flow := oauth1.Flow{
		Endpoints:  oauth1.PlurkEndpoints(baseURL),
		Signer:     oauth1.NewSigner(),
		HTTPClient: httpClient,
	}
	newClient := func(creds domain.Credentials) *plurk.Client {
		return plurk.NewClient(baseURL, creds, httpClient)
	}
	clients := func(creds domain.Credentials) ports.APIClient {
		return newClient(creds)
	}
	channels := func(bootstrapURL string) (ports.CometPoller, error) {
		return comet.NewChannel(bootstrapURL, httpClient)
	}

	service := application.NewService(
		repo,
		secretStore,
		flow,
		clients,
		channels,
		clockwork.NewRealClock(),
		application.WithConsumerOverride(os.Getenv("PLURK_CONSUMER_KEY"), os.Getenv("PLURK_CONSUMER_SECRET")),
	)

	return &app{
		service:        service,
		newClient:      newClient,
		userRenderer:   profileadapter.RenderUser,
		eventRenderer:  profileadapter.RenderEvent,
		statusRenderer: profileadapter.RenderStatus,
	}, nil
}

func wireSecretStore() (ports.SecretStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	secretsDir := envOrDefault("RPOAURK_SECRETS_DIR", filepath.Join(homeDir, ".rpoaurk", "secrets"))

	switch backend := strings.ToLower(envOrDefault("RPOAURK_SECRET_BACKEND", "chain")); backend {
	case "chain":
		store, err := chainstore.NewPassFirstWithFileFallback(secretsDir)
		if err != nil {
			return nil, fmt.Errorf("wire secret store chain: %w", err)
		}
		return store, nil
	case "file":
		return filestore.NewStore(secretsDir), nil
	case "pass":
		return passstore.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported secret backend %q", domain.ErrConfig, backend)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
