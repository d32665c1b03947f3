package rop

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/logon"
	"github.com/marmos91/dittostore/pkg/registry"
	"github.com/marmos91/dittostore/pkg/service"
	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
	"github.com/marmos91/dittostore/pkg/store/memory"
)

const (
	localServer  = "/o=Test/ou=Servers/cn=local"
	remoteServer = "/o=Test/ou=Servers/cn=remote"
	aliceDN      = "/o=Test/ou=Users/cn=alice"
	daveDN       = "/o=Test/ou=Users/cn=dave"
)

const privateOpen = logon.OpenUsePerMDBReplIDMapping | logon.OpenHomeLogon

func newTestHandler(t *testing.T, behavior service.Behavior) *Handler {
	t.Helper()
	ctx := context.Background()

	reg := registry.NewRegistry(localServer)
	require.NoError(t, reg.RegisterStore("default", memory.NewMemoryMetadataStoreWithDefaults()))
	t.Cleanup(func() { _ = reg.Close() })

	for _, db := range []registry.DatabaseConfig{
		{Name: "mdb01", Kind: store.DatabaseMailbox, Store: "default"},
		{Name: "mdb02", Kind: store.DatabaseMailbox, Store: "default", Server: remoteServer},
		{Name: "pf01", Kind: store.DatabasePublicFolders, Store: "default"},
	} {
		_, err := reg.AddDatabase(ctx, &db)
		require.NoError(t, err)
	}
	_, err := reg.AddMailbox(ctx, &registry.MailboxConfig{LegacyDN: aliceDN, Database: "mdb01"})
	require.NoError(t, err)
	_, err = reg.AddMailbox(ctx, &registry.MailboxConfig{LegacyDN: daveDN, Database: "mdb02"})
	require.NoError(t, err)
	_, err = reg.AddPublicFolder(ctx, &registry.PublicFolderConfig{
		Database:      "pf01",
		DisplayName:   "Remote only",
		GlobalCounter: 500,
		Replicas:      []string{remoteServer},
	})
	require.NoError(t, err)
	_, err = reg.AddPublicFolder(ctx, &registry.PublicFolderConfig{
		Database:      "pf01",
		DisplayName:   "Everywhere",
		GlobalCounter: 501,
		Replicas:      []string{remoteServer, localServer},
	})
	require.NoError(t, err)

	sessions := session.NewManager(nil)
	svc := service.New(service.Config{Behavior: behavior, LocalServer: localServer})
	resolver := logon.NewResolver(logon.Config{Registry: reg, Sessions: sessions, Service: svc})
	return NewHandler(svc, resolver, sessions)
}

func logonPrivate(t *testing.T, h *Handler) *Context {
	t.Helper()
	ctx := &Context{Context: context.Background(), UserDN: aliceDN}

	resp := h.Logon(ctx, &LogonRequest{LogonFlags: logon.FlagPrivate, OpenFlags: privateOpen})
	require.Equal(t, EcNone, resp.ReturnValue)
	ctx.SessionID = resp.SessionID
	return ctx
}

func logonPublic(t *testing.T, h *Handler) *Context {
	t.Helper()
	ctx := &Context{Context: context.Background(), UserDN: aliceDN}

	resp := h.Logon(ctx, &LogonRequest{OpenFlags: logon.OpenPublic})
	require.Equal(t, EcNone, resp.ReturnValue)
	ctx.SessionID = resp.SessionID
	return ctx
}

func TestLogon_WrongServerCarriesServerName(t *testing.T) {
	h := newTestHandler(t, service.ModernBehavior())
	ctx := &Context{Context: context.Background(), UserDN: daveDN}

	resp := h.Logon(ctx, &LogonRequest{LogonFlags: logon.FlagPrivate, OpenFlags: privateOpen})
	assert.Equal(t, EcWrongServer, resp.ReturnValue)
	assert.Equal(t, remoteServer, resp.ServerName)
	assert.Equal(t, uuid.Nil, resp.SessionID)
}

func TestLogon_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		behavior service.Behavior
		user     string
		req      LogonRequest
		expected ReturnValue
	}{
		{"unknown user", service.ModernBehavior(), "/o=Test/cn=ghost", LogonRequest{LogonFlags: logon.FlagPrivate, OpenFlags: privateOpen}, EcUnknownUser},
		{"missing mapping modern", service.ModernBehavior(), aliceDN, LogonRequest{LogonFlags: logon.FlagPrivate}, EcInvalidParam},
		{"missing mapping legacy", service.LegacyBehavior(), aliceDN, LogonRequest{LogonFlags: logon.FlagPrivate}, EcWrongServer},
		{"no permission", service.ModernBehavior(), daveDN, LogonRequest{LogonFlags: logon.FlagPrivate, OpenFlags: privateOpen, Essdn: aliceDN}, EcLoginPerm},
		{"success", service.ModernBehavior(), aliceDN, LogonRequest{LogonFlags: logon.FlagPrivate, OpenFlags: privateOpen}, EcNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.behavior)
			resp := h.Logon(&Context{Context: context.Background(), UserDN: tt.user}, &tt.req)
			assert.Equal(t, tt.expected, resp.ReturnValue, resp.ReturnValue.String())
		})
	}
}

func TestIdentifierROPs(t *testing.T) {
	h := newTestHandler(t, service.ModernBehavior())
	ctx := logonPrivate(t, h)

	ltid := store.LongTermID{ReplGUID: uuid.New(), GlobalCounter: 77}
	idResp := h.IDFromLongTermID(ctx, &IDFromLongTermIDRequest{LongTermID: ltid})
	require.Equal(t, EcNone, idResp.ReturnValue)
	assert.Equal(t, uint64(77), idResp.ObjectID.GlobalCounter())

	ltidResp := h.LongTermIDFromID(ctx, &LongTermIDFromIDRequest{ObjectID: idResp.ObjectID})
	require.Equal(t, EcNone, ltidResp.ReturnValue)
	assert.Equal(t, ltid, ltidResp.LongTermID)

	unknown := h.LongTermIDFromID(ctx, &LongTermIDFromIDRequest{ObjectID: store.NewID(0x7FFF, 1)})
	assert.Equal(t, EcNotFound, unknown.ReturnValue)
}

func TestReceiveFolderROPs(t *testing.T) {
	h := newTestHandler(t, service.ModernBehavior())
	ctx := logonPrivate(t, h)

	folder := store.NewID(store.LocalReplID, 200)
	set := h.SetReceiveFolder(ctx, &SetReceiveFolderRequest{FolderID: folder, MessageClass: "IPM.Note"})
	require.Equal(t, EcNone, set.ReturnValue)

	get := h.GetReceiveFolder(ctx, &GetReceiveFolderRequest{MessageClass: "IPM.Note.Custom"})
	require.Equal(t, EcNone, get.ReturnValue)
	assert.Equal(t, folder, get.FolderID)
	assert.Equal(t, "IPM.Note", get.ExplicitMessageClass)

	protected := h.SetReceiveFolder(ctx, &SetReceiveFolderRequest{FolderID: folder, MessageClass: "ipm"})
	assert.Equal(t, EcAccessDenied, protected.ReturnValue)

	table := h.GetReceiveFolderTable(ctx, &GetReceiveFolderTableRequest{})
	require.Equal(t, EcNone, table.ReturnValue)
	assert.Len(t, table.Rows, 5)

	pub := logonPublic(t, h)
	assert.Equal(t, EcNotSupported, h.GetReceiveFolder(pub, &GetReceiveFolderRequest{}).ReturnValue)
}

func TestPerUserROPs(t *testing.T) {
	h := newTestHandler(t, service.LegacyBehavior())
	ctx := logonPrivate(t, h)
	folder := store.LongTermID{ReplGUID: uuid.New(), GlobalCounter: 9}

	first := []byte("hello ")
	second := []byte("world")
	replica := uuid.New()

	resp := h.WritePerUserInformation(ctx, &WritePerUserInformationRequest{FolderID: folder, DataSize: uint16(len(first)), Data: first, ReplGUID: &replica})
	require.Equal(t, EcNone, resp.ReturnValue)
	resp = h.WritePerUserInformation(ctx, &WritePerUserInformationRequest{
		FolderID:    folder,
		HasFinished: true,
		DataOffset:  uint32(len(first)),
		DataSize:    uint16(len(second)),
		Data:        second,
	})
	require.Equal(t, EcNone, resp.ReturnValue)

	read := h.ReadPerUserInformation(ctx, &ReadPerUserInformationRequest{FolderID: folder})
	require.Equal(t, EcNone, read.ReturnValue)
	assert.Equal(t, []byte("hello world"), read.Data)
	assert.Equal(t, uint16(11), read.DataSize)
	assert.True(t, read.HasFinished)

	negative := h.ReadPerUserInformation(ctx, &ReadPerUserInformationRequest{FolderID: folder, DataOffset: 0xFFFFFFFF})
	assert.Equal(t, EcRPCFormat, negative.ReturnValue)

	overflow := h.ReadPerUserInformation(ctx, &ReadPerUserInformationRequest{FolderID: folder, DataOffset: 12})
	assert.Equal(t, EcError, overflow.ReturnValue)

	mismatch := h.WritePerUserInformation(ctx, &WritePerUserInformationRequest{FolderID: folder, DataSize: 3, Data: []byte("ab")})
	assert.Equal(t, EcInvalidParam, mismatch.ReturnValue)

	ids := h.GetPerUserLongTermIDs(ctx, &GetPerUserLongTermIDsRequest{DatabaseGUID: replica})
	require.Equal(t, EcNone, ids.ReturnValue)
	assert.Equal(t, []store.LongTermID{folder}, ids.LongTermIDs)

	guid := h.GetPerUserGUID(ctx, &GetPerUserGUIDRequest{LongTermID: folder})
	require.Equal(t, EcNone, guid.ReturnValue)
	assert.Equal(t, replica, guid.DatabaseGUID)

	missing := h.GetPerUserGUID(ctx, &GetPerUserGUIDRequest{LongTermID: store.LongTermID{ReplGUID: uuid.New(), GlobalCounter: 1}})
	assert.Equal(t, EcNotFound, missing.ReturnValue)
}

func TestReplicaROPs(t *testing.T) {
	h := newTestHandler(t, service.ModernBehavior())
	ctx := logonPublic(t, h)

	remoteOnly := store.NewID(store.LocalReplID, 500)
	everywhere := store.NewID(store.LocalReplID, 501)

	ghosted := h.PublicFolderIsGhosted(ctx, &PublicFolderIsGhostedRequest{FolderID: remoteOnly})
	require.Equal(t, EcNone, ghosted.ReturnValue)
	assert.True(t, ghosted.IsGhosted)
	assert.Equal(t, []string{remoteServer}, ghosted.Servers)

	local := h.PublicFolderIsGhosted(ctx, &PublicFolderIsGhostedRequest{FolderID: everywhere})
	require.Equal(t, EcNone, local.ReturnValue)
	assert.False(t, local.IsGhosted)

	owners := h.GetOwningServers(ctx, &GetOwningServersRequest{FolderID: everywhere})
	require.Equal(t, EcNone, owners.ReturnValue)
	assert.Equal(t, uint16(2), owners.OwningServersCount)
	assert.Equal(t, uint16(1), owners.CheapServersCount)
	assert.Equal(t, []string{localServer, remoteServer}, owners.OwningServers)

	missing := h.GetOwningServers(ctx, &GetOwningServersRequest{FolderID: store.NewID(store.LocalReplID, 999)})
	assert.Equal(t, EcNotFound, missing.ReturnValue)
}

func TestGetStoreStateROP(t *testing.T) {
	modern := newTestHandler(t, service.ModernBehavior())
	assert.Equal(t, EcNotImplemented, modern.GetStoreState(logonPrivate(t, modern), &GetStoreStateRequest{}).ReturnValue)
	assert.Equal(t, EcNotSupported, modern.GetStoreState(logonPublic(t, modern), &GetStoreStateRequest{}).ReturnValue)

	legacy := newTestHandler(t, service.LegacyBehavior())
	resp := legacy.GetStoreState(logonPrivate(t, legacy), &GetStoreStateRequest{})
	assert.Equal(t, EcNone, resp.ReturnValue)
	assert.Equal(t, uint32(0), resp.StoreState)
}

func TestUnknownSession(t *testing.T) {
	h := newTestHandler(t, service.ModernBehavior())
	ctx := &Context{Context: context.Background(), SessionID: uuid.New()}

	assert.Equal(t, EcNullObject, h.GetReceiveFolder(ctx, &GetReceiveFolderRequest{}).ReturnValue)
	assert.Equal(t, EcNullObject, h.GetStoreState(ctx, &GetStoreStateRequest{}).ReturnValue)
	assert.Equal(t, EcNotFound, h.Release(ctx))
}

func TestRelease(t *testing.T) {
	h := newTestHandler(t, service.ModernBehavior())
	ctx := logonPrivate(t, h)

	assert.Equal(t, EcNone, h.Release(ctx))
	assert.Equal(t, EcNullObject, h.GetReceiveFolderTable(ctx, &GetReceiveFolderTableRequest{}).ReturnValue)
}

func TestDispatch(t *testing.T) {
	h := newTestHandler(t, service.ModernBehavior())
	ctx := &Context{Context: context.Background(), UserDN: aliceDN}

	resp, err := h.Dispatch(ctx, RopLogon, &LogonRequest{LogonFlags: logon.FlagPrivate, OpenFlags: privateOpen})
	require.NoError(t, err)
	require.Equal(t, EcNone, resp.GetReturnValue())
	ctx.SessionID = resp.(*LogonResponse).SessionID

	resp, err = h.Dispatch(ctx, RopGetReceiveFolder, &GetReceiveFolderRequest{MessageClass: "IPM.Note"})
	require.NoError(t, err)
	assert.Equal(t, EcNone, resp.GetReturnValue())

	resp, err = h.Dispatch(ctx, RopGetReceiveFolder, &SetReceiveFolderRequest{})
	require.NoError(t, err)
	assert.Equal(t, EcRPCFormat, resp.GetReturnValue())

	_, err = h.Dispatch(ctx, RopID(0x01), nil)
	assert.Error(t, err)

	assert.Equal(t, "RopGetStoreState", RopName(RopGetStoreState))
	assert.Equal(t, "0x01", RopName(RopID(0x01)))
}

func TestMapErrorToReturnValue(t *testing.T) {
	tests := []struct {
		err      error
		expected ReturnValue
	}{
		{nil, EcNone},
		{store.NewNotFoundError("x"), EcNotFound},
		{store.NewNotSupportedError("x"), EcNotSupported},
		{store.NewInvalidParameterError("x"), EcInvalidParam},
		{store.NewAccessDeniedError("x"), EcAccessDenied},
		{store.NewGenericError("x"), EcError},
		{store.NewError(store.ErrRPCFormat, "x"), EcRPCFormat},
		{store.NewError(store.ErrNotImplemented, "x"), EcNotImplemented},
		{store.NewError(store.ErrUnknownUser, "x"), EcUnknownUser},
		{store.NewError(store.ErrLoginPermission, "x"), EcLoginPerm},
		{store.NewWrongServerError("s"), EcWrongServer},
		{store.NewError(store.ErrServerPaused, "x"), EcServerPaused},
		{errors.New("disk on fire"), EcError},
		{context.Canceled, EcError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapErrorToReturnValue(tt.err, "Test"), "%v", tt.err)
	}
}
