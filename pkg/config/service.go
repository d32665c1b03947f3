package config

import (
	"fmt"

	"github.com/marmos91/dittostore/internal/ratelimiter"
	"github.com/marmos91/dittostore/pkg/service"
)

// BuildBehavior turns the behavior section into a service.Behavior: the
// variant preset first, then the per-case overrides.
func BuildBehavior(cfg *BehaviorConfig) (service.Behavior, error) {
	b, err := service.BehaviorFor(cfg.Variant)
	if err != nil {
		return service.Behavior{}, err
	}

	if cfg.PerUserChunkSize != 0 {
		b.MaxChunkSize = cfg.PerUserChunkSize
	}
	if cfg.PerUserDefaultChunk != 0 {
		b.DefaultChunkSize = cfg.PerUserDefaultChunk
	}

	switch cfg.ZeroObjectID {
	case "null":
		b.ZeroObjectIDNotFound = false
	case "not-found":
		b.ZeroObjectIDNotFound = true
	}
	switch cfg.ZeroReplGUID {
	case "reject":
		b.AcceptZeroReplGUID = false
	case "accept":
		b.AcceptZeroReplGUID = true
	}
	switch cfg.NegativeOffset {
	case "generic":
		b.NegativeOffsetRPCFormat = false
	case "rpc-format":
		b.NegativeOffsetRPCFormat = true
	}
	switch cfg.MissingPerMDBMapping {
	case "invalid-parameter":
		b.MissingMappingWrongServer = false
	case "wrong-server":
		b.MissingMappingWrongServer = true
	}
	switch cfg.StoreState {
	case "zero":
		b.StoreStateNotImplemented = false
	case "not-implemented":
		b.StoreStateNotImplemented = true
	}

	return b, nil
}

// CreateThrottle creates the logon throttle. It returns nil when throttling
// is disabled.
func CreateThrottle(cfg *LogonConfig) (*ratelimiter.KeyedLimiter, error) {
	if cfg.RatePerSecond == 0 {
		return nil, nil
	}
	limiter, err := ratelimiter.New(cfg.RatePerSecond, cfg.Burst, cfg.MaxTrackedUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create logon throttle: %w", err)
	}
	return limiter, nil
}
