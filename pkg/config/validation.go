package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs validation that cannot be expressed in tags:
// cross references between stores, databases, mailboxes and public folders.
func validateCustomRules(cfg *Config) error {
	if cfg.Behavior.PerUserDefaultChunk > cfg.Behavior.PerUserChunkSize {
		return fmt.Errorf("behavior: per_user_default_chunk (%d) exceeds per_user_chunk_size (%d)",
			cfg.Behavior.PerUserDefaultChunk, cfg.Behavior.PerUserChunkSize)
	}

	kinds := make(map[string]string)
	for i, db := range cfg.Databases {
		if _, exists := kinds[db.Name]; exists {
			return fmt.Errorf("databases[%d]: duplicate database name %q", i, db.Name)
		}
		if _, ok := cfg.Stores[db.Store]; !ok {
			return fmt.Errorf("databases[%d]: store %q is not defined", i, db.Store)
		}
		kinds[db.Name] = db.Kind
	}

	dns := make(map[string]bool)
	for i, mbx := range cfg.Mailboxes {
		kind, ok := kinds[mbx.Database]
		if !ok {
			return fmt.Errorf("mailboxes[%d]: database %q is not defined", i, mbx.Database)
		}
		if kind != "mailbox" {
			return fmt.Errorf("mailboxes[%d]: database %q is not a mailbox database", i, mbx.Database)
		}
		if dns[mbx.LegacyDN] {
			return fmt.Errorf("mailboxes[%d]: duplicate legacy DN %q", i, mbx.LegacyDN)
		}
		dns[mbx.LegacyDN] = true
	}

	for i, pf := range cfg.PublicFolders {
		kind, ok := kinds[pf.Database]
		if !ok {
			return fmt.Errorf("public_folders[%d]: database %q is not defined", i, pf.Database)
		}
		if kind != "public_folders" {
			return fmt.Errorf("public_folders[%d]: database %q is not a public folder database", i, pf.Database)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
