package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/Dephilia/rpoaurk/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	keysPathKey     = "credentials.path"
	keysPathEnv     = "RPOAURK_KEYS_PATH"
	keysFileMode    = 0o600
	keysDirMode     = 0o700
	keysConfigDir   = ".rpoaurk"
	keysConfigFile  = "keys.toml"
	tempFilePattern = ".keys-*.toml.tmp"
)

type Repository struct {
	keysPath string
	mu       *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CredentialRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, keysConfigDir))
	cfg.SetDefault(keysPathKey, filepath.Join(homeDir, keysConfigDir, keysConfigFile))
	if err := cfg.BindEnv(keysPathKey, keysPathEnv); err != nil {
		return nil, fmt.Errorf("bind %s: %w", keysPathEnv, err)
	}

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	keysPath := cfg.GetString(keysPathKey)
	if keysPath == "" {
		return nil, errors.New("keys path is empty")
	}
	keysPath, err = normalizeKeysPath(keysPath)
	if err != nil {
		return nil, err
	}

	return &Repository{keysPath: keysPath, mu: lockForPath(keysPath)}, nil
}

func (r *Repository) Path() string {
	return r.keysPath
}

func (r *Repository) Load(ctx context.Context) (domain.CredentialRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.CredentialRecord{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, found, err := r.readSchema()
	if err != nil {
		return domain.CredentialRecord{}, err
	}
	if !found {
		return domain.CredentialRecord{}, fmt.Errorf("%w: %s", domain.ErrCredentialsNotFound, r.keysPath)
	}

	return fromSchema(file), nil
}

func (r *Repository) Save(ctx context.Context, record domain.CredentialRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writeSchema(toSchema(record)); err != nil {
		return err
	}

	return nil
}

func (r *Repository) readSchema() (fileSchema, bool, error) {
	data, err := os.ReadFile(r.keysPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, false, nil
		}
		return fileSchema{}, false, fmt.Errorf("read keys file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, false, fmt.Errorf("%w: decode keys file: %w", domain.ErrConfig, err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, false, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	file.applyDefaults()

	return file, true, nil
}

func normalizeKeysPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve keys path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.keysPath), keysDirMode); err != nil {
		return fmt.Errorf("create keys directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode keys file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.keysPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp keys file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp keys file: %w", err)
	}

	if err := tempFile.Chmod(keysFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp keys file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp keys file: %w", err)
	}

	if err := os.Rename(tempName, r.keysPath); err != nil {
		return fmt.Errorf("replace keys file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.keysPath, keysFileMode); err != nil {
		return fmt.Errorf("chmod keys file: %w", err)
	}

	return nil
}

func toSchema(record domain.CredentialRecord) fileSchema {
	client := clientSchema{Key: record.ConsumerKey, SecretRef: record.ConsumerSecretRef}
	if record.ConsumerSecretRef == "" {
		client.Secret = record.ConsumerSecret
	}

	token := tokenSchema{
		Key:          record.Token,
		SecretRef:    record.TokenSecretRef,
		AuthorizedAt: formatTime(record.AuthorizedAt),
	}
	if record.TokenSecretRef == "" {
		token.Secret = record.TokenSecret
	}

	return fileSchema{Version: currentSchemaVersion, Client: client, Token: token}
}

func fromSchema(file fileSchema) domain.CredentialRecord {
	return domain.CredentialRecord{
		ConsumerKey:       file.Client.Key,
		ConsumerSecret:    file.Client.Secret,
		ConsumerSecretRef: file.Client.SecretRef,
		Token:             file.Token.Key,
		TokenSecret:       file.Token.Secret,
		TokenSecretRef:    file.Token.SecretRef,
		AuthorizedAt:      parseTime(file.Token.AuthorizedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
