package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, keysPath string) *Repository {
	t.Helper()

	config := viper.New()
	config.Set("credentials.path", keysPath)

	repo, err := NewRepository(config)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "keys.toml"))

	record := domain.CredentialRecord{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		Token:          "tk",
		TokenSecretRef: domain.TokenSecretRef("ck"),
		AuthorizedAt:   time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}

	require.NoError(t, repo.Save(context.Background(), record))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestRepositoryReadsLegacyKeysFile(t *testing.T) {
	t.Parallel()

	keysPath := filepath.Join(t.TempDir(), "keys.toml")
	require.NoError(t, os.WriteFile(keysPath, []byte(strings.Join([]string{
		"[client]",
		`key = "ck"`,
		`secret = "cs"`,
		"",
		"[token]",
		`key = ""`,
		`secret = ""`,
		"",
	}, "\n")), 0o600))

	got, err := newTestRepository(t, keysPath).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.CredentialRecord{ConsumerKey: "ck", ConsumerSecret: "cs"}, got)
}

func TestRepositoryInlineSecretsAreOmittedWhenReferenced(t *testing.T) {
	t.Parallel()

	keysPath := filepath.Join(t.TempDir(), "keys.toml")
	repo := newTestRepository(t, keysPath)

	require.NoError(t, repo.Save(context.Background(), domain.CredentialRecord{
		ConsumerKey:       "ck",
		ConsumerSecret:    "must-not-leak",
		ConsumerSecretRef: domain.ConsumerSecretRef("ck"),
		Token:             "tk",
		TokenSecret:       "must-not-leak-either",
		TokenSecretRef:    domain.TokenSecretRef("ck"),
	}))

	data, err := os.ReadFile(keysPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "must-not-leak")
	assert.Contains(t, string(data), "rpoaurk/ck/token_secret")
	assert.Contains(t, string(data), "rpoaurk/ck/consumer_secret")
	assert.Contains(t, string(data), "version = 1")
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("RPOAURK_KEYS_PATH", "")

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.CredentialRecord{ConsumerKey: "ck", ConsumerSecret: "cs"}))

	keysPath := filepath.Join(homeDir, ".rpoaurk", "keys.toml")
	assert.Equal(t, keysPath, repo.Path())
	info, err := os.Stat(keysPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryHonorsPathFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	keysPath := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv("RPOAURK_KEYS_PATH", keysPath)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)
	assert.Equal(t, keysPath, repo.Path())
}

func TestRepositoryHonorsPathFromConfigFile(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("RPOAURK_KEYS_PATH", "")

	keysPath := filepath.Join(t.TempDir(), "from-config.toml")
	configDir := filepath.Join(homeDir, ".rpoaurk")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("[credentials]\npath = '"+keysPath+"'\n"), 0o600))

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)
	assert.Equal(t, keysPath, repo.Path())
}

func TestRepositoryMissingFileReturnsNotFound(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "keys.toml"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrCredentialsNotFound)
}

func TestRepositoryMalformedTOMLReturnsConfigError(t *testing.T) {
	t.Parallel()

	keysPath := filepath.Join(t.TempDir(), "keys.toml")
	require.NoError(t, os.WriteFile(keysPath, []byte("[client"), 0o600))

	_, err := newTestRepository(t, keysPath).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrConfig)
	assert.ErrorContains(t, err, "decode keys file")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	keysPath := filepath.Join(t.TempDir(), "keys.toml")
	require.NoError(t, os.WriteFile(keysPath, []byte("version = 999\n"), 0o600))

	_, err := newTestRepository(t, keysPath).Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported keys schema version")
}

func TestRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "keys.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.CredentialRecord{ConsumerKey: "ck"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepositoryConcurrentSavesAcrossInstancesStayReadable(t *testing.T) {
	t.Parallel()

	keysPath := filepath.Join(t.TempDir(), "keys.toml")
	repoA := newTestRepository(t, keysPath)
	repoB := newTestRepository(t, keysPath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*4)
	var wg sync.WaitGroup
	wg.Add(2)

	for _, repo := range []*Repository{repoA, repoB} {
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < perRepoWrites; i++ {
				errCh <- repo.Save(context.Background(), domain.CredentialRecord{ConsumerKey: "ck", ConsumerSecret: "cs"})
				_, err := repo.Load(context.Background())
				errCh <- err
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}
}
