package config

import (
	"strings"
	"time"
)

// DefaultServerName is used when no server name is configured.
const DefaultServerName = "/o=Dittostore/ou=Servers/cn=local"

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by store implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyBehaviorDefaults(&cfg.Behavior)
	applyLogonDefaults(&cfg.Logon)

	// A bare configuration serves one in-memory mailbox database
	if len(cfg.Stores) == 0 {
		cfg.Stores = map[string]StoreConfig{
			"default": {Type: "memory"},
		}
	}
	if len(cfg.Databases) == 0 {
		cfg.Databases = []DatabaseConfig{
			{Name: "mailbox01", Kind: "mailbox", Store: "default"},
		}
	}

	applyStoreDefaults(cfg.Stores)
	applyDatabaseDefaults(cfg.Databases)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Name == "" {
		cfg.Name = DefaultServerName
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.SessionIdleTimeout == 0 {
		cfg.SessionIdleTimeout = 30 * time.Minute
	}
	if cfg.CollectorInterval == 0 {
		cfg.CollectorInterval = time.Minute
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
}

func applyBehaviorDefaults(cfg *BehaviorConfig) {
	if cfg.Variant == "" {
		cfg.Variant = "modern"
	}
	cfg.Variant = strings.ToLower(cfg.Variant)

	if cfg.PerUserChunkSize == 0 {
		cfg.PerUserChunkSize = 4096
	}
	if cfg.PerUserDefaultChunk == 0 {
		cfg.PerUserDefaultChunk = 4096
	}
}

func applyLogonDefaults(cfg *LogonConfig) {
	// RatePerSecond defaults to 0 (no throttling)
	if cfg.Burst == 0 {
		cfg.Burst = 10
	}
	if cfg.MaxTrackedUsers == 0 {
		cfg.MaxTrackedUsers = 10_000
	}
}

// applyStoreDefaults initializes type sections so generated files show them.
func applyStoreDefaults(stores map[string]StoreConfig) {
	for name, s := range stores {
		if s.Type == "badger" {
			if s.Badger == nil {
				s.Badger = make(map[string]any)
			}
			if _, ok := s.Badger["db_path"]; !ok {
				s.Badger["db_path"] = "/tmp/dittostore-" + name
			}
		}
		if s.Type == "memory" && s.Memory == nil {
			s.Memory = make(map[string]any)
		}
		stores[name] = s
	}
}

func applyDatabaseDefaults(databases []DatabaseConfig) {
	for i := range databases {
		databases[i].Kind = strings.ToLower(databases[i].Kind)
		if databases[i].Kind == "" {
			databases[i].Kind = "mailbox"
		}
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Stores: map[string]StoreConfig{
			"default": {Type: "memory"},
		},
		Databases: []DatabaseConfig{
			{Name: "mailbox01", Kind: "mailbox", Store: "default"},
			{Name: "public01", Kind: "public_folders", Store: "default"},
		},
		Mailboxes: []MailboxConfig{
			{
				LegacyDN:    "/o=Dittostore/ou=First Administrative Group/cn=Recipients/cn=admin",
				DisplayName: "Administrator",
				Database:    "mailbox01",
			},
		},
		PublicFolders: []PublicFolderConfig{
			{Database: "public01", Name: "Public Folders Root", Role: "root", GlobalCounter: 1, Replicas: []string{DefaultServerName}},
			{Database: "public01", Name: "IPM_SUBTREE", Role: "ipm_subtree", GlobalCounter: 2, Replicas: []string{DefaultServerName}},
			{Database: "public01", Name: "NON_IPM_SUBTREE", Role: "non_ipm_subtree", GlobalCounter: 3, Replicas: []string{DefaultServerName}},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
