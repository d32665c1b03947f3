package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/dittostore/pkg/store"
	"github.com/marmos91/dittostore/pkg/store/badger"
	"github.com/marmos91/dittostore/pkg/store/memory"
)

// CreateMetadataStore creates a metadata store based on configuration.
//
// This factory function uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the corresponding
// map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/store/memory (ephemeral, fast)
//   - "badger": Uses pkg/store/badger (persistent, embedded)
func CreateMetadataStore(ctx context.Context, cfg StoreConfig) (store.MetadataStore, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryMetadataStore(cfg.Memory)
	case "badger":
		return createBadgerMetadataStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown metadata store type: %q", cfg.Type)
	}
}

// createMemoryMetadataStore creates an in-memory metadata store.
func createMemoryMetadataStore(options map[string]any) (store.MetadataStore, error) {
	var memoryCfg memory.MemoryMetadataStoreConfig
	if err := decodeOptions(options, &memoryCfg); err != nil {
		return nil, fmt.Errorf("invalid memory config: %w", err)
	}

	return memory.NewMemoryMetadataStore(memoryCfg), nil
}

// createBadgerMetadataStore creates a BadgerDB metadata store.
func createBadgerMetadataStore(ctx context.Context, options map[string]any) (store.MetadataStore, error) {
	var badgerCfg badger.BadgerMetadataStoreConfig
	if err := decodeOptions(options, &badgerCfg); err != nil {
		return nil, fmt.Errorf("invalid badger config: %w", err)
	}

	if badgerCfg.DBPath == "" && !badgerCfg.InMemory {
		return nil, fmt.Errorf("badger store: db_path is required")
	}

	s, err := badger.NewBadgerMetadataStore(ctx, badgerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return s, nil
}

// decodeOptions decodes a store option map, converting the string values
// environment variables produce into the target field types.
func decodeOptions(options map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}
