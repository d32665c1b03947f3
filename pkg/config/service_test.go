package config

import (
	"testing"
)

func TestBuildBehavior_Presets(t *testing.T) {
	modern, err := BuildBehavior(&BehaviorConfig{Variant: "modern"})
	if err != nil {
		t.Fatalf("BuildBehavior failed: %v", err)
	}
	if modern.ZeroObjectIDNotFound || !modern.StoreStateNotImplemented {
		t.Errorf("Unexpected modern behavior: %+v", modern)
	}

	legacy, err := BuildBehavior(&BehaviorConfig{Variant: "legacy"})
	if err != nil {
		t.Fatalf("BuildBehavior failed: %v", err)
	}
	if !legacy.ZeroObjectIDNotFound || !legacy.AcceptZeroReplGUID || legacy.StoreStateNotImplemented {
		t.Errorf("Unexpected legacy behavior: %+v", legacy)
	}
}

func TestBuildBehavior_Overrides(t *testing.T) {
	b, err := BuildBehavior(&BehaviorConfig{
		Variant:              "modern",
		PerUserChunkSize:     2048,
		PerUserDefaultChunk:  512,
		ZeroObjectID:         "not-found",
		NegativeOffset:       "rpc-format",
		MissingPerMDBMapping: "wrong-server",
		StoreState:           "zero",
	})
	if err != nil {
		t.Fatalf("BuildBehavior failed: %v", err)
	}

	if !b.ZeroObjectIDNotFound || !b.NegativeOffsetRPCFormat || !b.MissingMappingWrongServer {
		t.Errorf("Overrides not applied: %+v", b)
	}
	if b.AcceptZeroReplGUID {
		t.Error("Unset override must keep the preset value")
	}
	if b.StoreStateNotImplemented {
		t.Error("Expected store_state override to win over the preset")
	}
	if b.MaxChunkSize != 2048 || b.DefaultChunkSize != 512 {
		t.Errorf("Unexpected chunk sizes: max=%d default=%d", b.MaxChunkSize, b.DefaultChunkSize)
	}
}

func TestBuildBehavior_UnknownVariant(t *testing.T) {
	if _, err := BuildBehavior(&BehaviorConfig{Variant: "ancient"}); err == nil {
		t.Fatal("Expected error for unknown variant")
	}
}

func TestCreateThrottle(t *testing.T) {
	limiter, err := CreateThrottle(&LogonConfig{})
	if err != nil {
		t.Fatalf("CreateThrottle failed: %v", err)
	}
	if limiter != nil {
		t.Error("Expected nil limiter when rate is 0")
	}

	limiter, err = CreateThrottle(&LogonConfig{RatePerSecond: 1, Burst: 1, MaxTrackedUsers: 10})
	if err != nil {
		t.Fatalf("CreateThrottle failed: %v", err)
	}
	if !limiter.Allow("/o=x/cn=alice") {
		t.Error("First logon should be allowed")
	}
	if limiter.Allow("/o=x/cn=alice") {
		t.Error("Second immediate logon should be throttled")
	}
}
