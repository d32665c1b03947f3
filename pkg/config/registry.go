package config

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/pkg/registry"
	"github.com/marmos91/dittostore/pkg/store"
)

// InitializeRegistry creates a fully configured Registry from the provided configuration.
//
// This function orchestrates the complete initialization process:
//  1. Creates and registers all metadata stores from cfg.Stores
//  2. Provisions all databases from cfg.Databases
//  3. Provisions all mailboxes from cfg.Mailboxes
//  4. Stores all public folder replica records from cfg.PublicFolders
//
// Provisioning is idempotent, so a persistent store can be reopened with the
// same configuration. On failure every store opened so far is closed.
func InitializeRegistry(ctx context.Context, cfg *Config) (reg *registry.Registry, err error) {
	logger.Debug("Initializing registry from configuration")

	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}

	reg = registry.NewRegistry(cfg.Server.Name)
	defer func() {
		if err != nil {
			_ = reg.Close()
		}
	}()

	if err := registerStores(ctx, reg, cfg); err != nil {
		return nil, fmt.Errorf("failed to register metadata stores: %w", err)
	}
	if err := addDatabases(ctx, reg, cfg); err != nil {
		return nil, fmt.Errorf("failed to add databases: %w", err)
	}
	if err := addMailboxes(ctx, reg, cfg); err != nil {
		return nil, fmt.Errorf("failed to add mailboxes: %w", err)
	}
	if err := addPublicFolders(ctx, reg, cfg); err != nil {
		return nil, fmt.Errorf("failed to add public folders: %w", err)
	}

	logger.Debug("Registry initialized: %d store(s), %d database(s), %d mailbox(es), %d public folder(s)",
		len(cfg.Stores), len(cfg.Databases), len(cfg.Mailboxes), len(cfg.PublicFolders))
	return reg, nil
}

// registerStores creates and registers all configured metadata stores in
// name order.
func registerStores(ctx context.Context, reg *registry.Registry, cfg *Config) error {
	names := make([]string, 0, len(cfg.Stores))
	for name := range cfg.Stores {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		storeCfg := cfg.Stores[name]
		logger.Debug("Creating metadata store %q (type: %s)", name, storeCfg.Type)

		s, err := CreateMetadataStore(ctx, storeCfg)
		if err != nil {
			return fmt.Errorf("failed to create metadata store %q: %w", name, err)
		}

		if err := reg.RegisterStore(name, s); err != nil {
			_ = s.Close()
			return fmt.Errorf("failed to register metadata store %q: %w", name, err)
		}
	}

	return nil
}

func addDatabases(ctx context.Context, reg *registry.Registry, cfg *Config) error {
	for _, dbCfg := range cfg.Databases {
		kind, ok := store.ParseDatabaseKind(dbCfg.Kind)
		if !ok {
			return fmt.Errorf("database %q: unknown kind %q", dbCfg.Name, dbCfg.Kind)
		}
		guid, err := parseOptionalUUID(dbCfg.GUID)
		if err != nil {
			return fmt.Errorf("database %q: invalid guid: %w", dbCfg.Name, err)
		}
		replGUID, err := parseOptionalUUID(dbCfg.ReplGUID)
		if err != nil {
			return fmt.Errorf("database %q: invalid repl_guid: %w", dbCfg.Name, err)
		}

		db, err := reg.AddDatabase(ctx, &registry.DatabaseConfig{
			Name:     dbCfg.Name,
			Kind:     kind,
			Store:    dbCfg.Store,
			Server:   dbCfg.Server,
			GUID:     guid,
			ReplGUID: replGUID,
		})
		if err != nil {
			return err
		}
		logger.Info("Database %q: kind=%s guid=%s server=%s", db.Name, db.Kind, db.GUID, db.Server)
	}
	return nil
}

func addMailboxes(ctx context.Context, reg *registry.Registry, cfg *Config) error {
	for _, mbxCfg := range cfg.Mailboxes {
		guid, err := parseOptionalUUID(mbxCfg.GUID)
		if err != nil {
			return fmt.Errorf("mailbox %q: invalid guid: %w", mbxCfg.LegacyDN, err)
		}

		mbx, err := reg.AddMailbox(ctx, &registry.MailboxConfig{
			LegacyDN:    mbxCfg.LegacyDN,
			DisplayName: mbxCfg.DisplayName,
			Database:    mbxCfg.Database,
			Delegates:   mbxCfg.Delegates,
			GUID:        guid,
		})
		if err != nil {
			return err
		}
		logger.Debug("Mailbox %q provisioned (guid=%s)", mbx.LegacyDN, mbx.GUID)
	}
	return nil
}

func addPublicFolders(ctx context.Context, reg *registry.Registry, cfg *Config) error {
	for _, pfCfg := range cfg.PublicFolders {
		role, ok := store.ParseFolderRole(pfCfg.Role)
		if !ok {
			return fmt.Errorf("public folder %q: unknown role %q", pfCfg.Name, pfCfg.Role)
		}

		folder, err := reg.AddPublicFolder(ctx, &registry.PublicFolderConfig{
			Database:      pfCfg.Database,
			DisplayName:   pfCfg.Name,
			Role:          role,
			GlobalCounter: pfCfg.GlobalCounter,
			Replicas:      pfCfg.Replicas,
		})
		if err != nil {
			return err
		}
		logger.Debug("Public folder %q stored (%s)", folder.DisplayName, folder.LongTermID)
	}
	return nil
}

func parseOptionalUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}
