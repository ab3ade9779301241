package toml

import "fmt"

const currentSchemaVersion = 1

// fileSchema is keys.toml. Files written before versioning only carry the
// [client] and [token] tables and decode as version 1.
type fileSchema struct {
	Version int          `toml:"version"`
	Client  clientSchema `toml:"client"`
	Token   tokenSchema  `toml:"token"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported keys schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type clientSchema struct {
	Key       string `toml:"key"`
	Secret    string `toml:"secret,omitempty"`
	SecretRef string `toml:"secret_ref,omitempty"`
}

type tokenSchema struct {
	Key          string `toml:"key"`
	Secret       string `toml:"secret,omitempty"`
	SecretRef    string `toml:"secret_ref,omitempty"`
	AuthorizedAt string `toml:"authorized_at,omitempty"`
}
