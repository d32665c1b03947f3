package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete dittostore configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DITTOSTORE_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration type. A named
// store entry selects the implementation with Type and only the section
// matching that type is decoded.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server contains server-wide settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Behavior selects the product variant for edge cases where they differ
	Behavior BehaviorConfig `mapstructure:"behavior" yaml:"behavior"`

	// Logon configures logon throttling
	Logon LogonConfig `mapstructure:"logon" yaml:"logon"`

	// Stores maps store names to metadata store configurations
	Stores map[string]StoreConfig `mapstructure:"stores" yaml:"stores" validate:"required,min=1,dive"`

	// Databases lists the mailbox and public folder databases
	Databases []DatabaseConfig `mapstructure:"databases" yaml:"databases" validate:"required,min=1,dive"`

	// Mailboxes lists the mailboxes provisioned at startup
	Mailboxes []MailboxConfig `mapstructure:"mailboxes" yaml:"mailboxes" validate:"dive"`

	// PublicFolders lists the public folder replica records provisioned at startup
	PublicFolders []PublicFolderConfig `mapstructure:"public_folders" yaml:"public_folders" validate:"dive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// ServerConfig contains server-wide settings.
type ServerConfig struct {
	// Name is the DN of this server. Databases without an explicit server
	// are hosted here, and public folder replicas on this server are local.
	Name string `mapstructure:"name" yaml:"name" validate:"required"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`

	// SessionIdleTimeout closes logons inactive for longer than this
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" yaml:"session_idle_timeout" validate:"required,gt=0"`

	// CollectorInterval is how often idle sessions are collected
	CollectorInterval time.Duration `mapstructure:"collector_interval" yaml:"collector_interval" validate:"required,gt=0"`

	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// BehaviorConfig selects a variant preset and optionally overrides single
// edge cases. Empty overrides keep the preset's choice.
type BehaviorConfig struct {
	// Variant is the preset: modern or legacy
	Variant string `mapstructure:"variant" yaml:"variant" validate:"required,oneof=modern legacy"`

	// PerUserChunkSize caps one per-user read or write
	PerUserChunkSize uint16 `mapstructure:"per_user_chunk_size" yaml:"per_user_chunk_size"`

	// PerUserDefaultChunk is used for reads asking for 0 bytes
	PerUserDefaultChunk uint16 `mapstructure:"per_user_default_chunk" yaml:"per_user_default_chunk"`

	// ZeroObjectID: "null" returns the zero long-term id, "not-found" fails
	ZeroObjectID string `mapstructure:"zero_object_id" yaml:"zero_object_id,omitempty" validate:"omitempty,oneof=null not-found"`

	// ZeroReplGUID: "reject" fails with invalid-parameter, "accept" maps it
	ZeroReplGUID string `mapstructure:"zero_repl_guid" yaml:"zero_repl_guid,omitempty" validate:"omitempty,oneof=reject accept"`

	// NegativeOffset: "generic" or "rpc-format"
	NegativeOffset string `mapstructure:"negative_offset" yaml:"negative_offset,omitempty" validate:"omitempty,oneof=generic rpc-format"`

	// MissingPerMDBMapping: "invalid-parameter" or "wrong-server"
	MissingPerMDBMapping string `mapstructure:"missing_per_mdb_mapping" yaml:"missing_per_mdb_mapping,omitempty" validate:"omitempty,oneof=invalid-parameter wrong-server"`

	// StoreState: "zero" or "not-implemented"
	StoreState string `mapstructure:"store_state" yaml:"store_state,omitempty" validate:"omitempty,oneof=zero not-implemented"`
}

// LogonConfig configures the per-user logon throttle.
type LogonConfig struct {
	// RatePerSecond is the sustained logon rate per user; 0 disables throttling
	RatePerSecond uint `mapstructure:"rate_per_second" yaml:"rate_per_second"`

	// Burst is the number of logons a user may issue at once
	Burst uint `mapstructure:"burst" yaml:"burst"`

	// MaxTrackedUsers bounds the throttle's memory
	MaxTrackedUsers int `mapstructure:"max_tracked_users" yaml:"max_tracked_users" validate:"gte=0"`
}

// StoreConfig specifies one metadata store.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type StoreConfig struct {
	// Type specifies which metadata store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory,omitempty"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger,omitempty"`
}

// DatabaseConfig defines a mailbox or public folder database.
type DatabaseConfig struct {
	Name string `mapstructure:"name" yaml:"name" validate:"required"`

	// Kind is mailbox or public_folders
	Kind string `mapstructure:"kind" yaml:"kind" validate:"required,oneof=mailbox public_folders"`

	// Store names the entry of Stores holding the database
	Store string `mapstructure:"store" yaml:"store" validate:"required"`

	// Server hosting the database; empty means this server
	Server string `mapstructure:"server" yaml:"server,omitempty"`

	// GUID and ReplGUID are derived from Name when empty
	GUID     string `mapstructure:"guid" yaml:"guid,omitempty" validate:"omitempty,uuid"`
	ReplGUID string `mapstructure:"repl_guid" yaml:"repl_guid,omitempty" validate:"omitempty,uuid"`
}

// MailboxConfig defines a mailbox.
type MailboxConfig struct {
	LegacyDN    string   `mapstructure:"legacy_dn" yaml:"legacy_dn" validate:"required"`
	DisplayName string   `mapstructure:"display_name" yaml:"display_name,omitempty"`
	Database    string   `mapstructure:"database" yaml:"database" validate:"required"`
	Delegates   []string `mapstructure:"delegates" yaml:"delegates,omitempty"`

	// GUID is derived from LegacyDN when empty
	GUID string `mapstructure:"guid" yaml:"guid,omitempty" validate:"omitempty,uuid"`
}

// PublicFolderConfig defines the replica record of a public folder.
type PublicFolderConfig struct {
	Database string `mapstructure:"database" yaml:"database" validate:"required"`
	Name     string `mapstructure:"name" yaml:"name" validate:"required"`

	// Role is generic, root, ipm_subtree or non_ipm_subtree
	Role string `mapstructure:"role" yaml:"role,omitempty" validate:"omitempty,oneof=generic root ipm_subtree non_ipm_subtree"`

	// GlobalCounter is the folder's counter in the database's own replica
	GlobalCounter uint64 `mapstructure:"global_counter" yaml:"global_counter" validate:"required,gt=0,lte=281474976710655"`

	// Replicas lists the DNs of servers holding a replica
	Replicas []string `mapstructure:"replicas" yaml:"replicas"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DITTOSTORE_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use DITTOSTORE_ prefix and underscores
	// Example: DITTOSTORE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("DITTOSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Scalar keys must be known to viper for AutomaticEnv to apply them
	// when the config file does not mention them.
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"server.name", "server.shutdown_timeout", "server.session_idle_timeout",
		"server.collector_interval", "server.metrics.enabled", "server.metrics.port",
		"behavior.variant", "logon.rate_per_second", "logon.burst",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/dittostore/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittostore")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittostore")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
