package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/internal/protocol/rop"
	"github.com/marmos91/dittostore/pkg/config"
	"github.com/marmos91/dittostore/pkg/logon"
)

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}

func TestServe_LogonAndShutdown(t *testing.T) {
	cfg := config.GetDefaultConfig()
	srv, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Healthcheck(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	admin := cfg.Mailboxes[0].LegacyDN
	resp, err := srv.Handler().Dispatch(&rop.Context{Context: ctx, UserDN: admin}, rop.RopLogon, &rop.LogonRequest{
		LogonFlags: logon.FlagPrivate,
		OpenFlags:  logon.OpenUsePerMDBReplIDMapping,
	})
	require.NoError(t, err)
	require.Equal(t, rop.EcNone, resp.GetReturnValue())
	assert.Equal(t, 1, srv.Sessions().Count())

	sessionID := resp.(*rop.LogonResponse).SessionID
	resp, err = srv.Handler().Dispatch(&rop.Context{Context: ctx, SessionID: sessionID}, rop.RopGetStoreState, &rop.GetStoreStateRequest{})
	require.NoError(t, err)
	assert.Equal(t, rop.EcNotImplemented, resp.GetReturnValue())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	assert.Equal(t, 0, srv.Sessions().Count())
	assert.Error(t, srv.Healthcheck(context.Background()))
	assert.Error(t, srv.Serve(context.Background()))
	assert.NoError(t, srv.Close())
}

func TestClose_WithoutServe(t *testing.T) {
	srv, err := New(context.Background(), config.GetDefaultConfig())
	require.NoError(t, err)

	require.NoError(t, srv.Close())
	assert.Error(t, srv.Registry().Healthcheck(context.Background()))
}
