// Package logon resolves logon requests to store sessions.
//
// The resolver decides which database a logon binds to and produces the
// logon outcomes that are not store metadata operations themselves:
// unknown users, mailboxes homed elsewhere, missing permissions and
// throttled callers.
package logon

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/internal/ratelimiter"
	"github.com/marmos91/dittostore/pkg/metrics"
	"github.com/marmos91/dittostore/pkg/registry"
	"github.com/marmos91/dittostore/pkg/service"
	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
)

// FolderCount is the number of folder ids returned by a logon.
const FolderCount = 13

// Request is a logon request.
type Request struct {
	// UserDN is the legacy DN of the authenticated caller
	UserDN string

	Flags     Flags
	OpenFlags OpenFlags

	// MailboxDN is the mailbox to open; empty opens the caller's own
	MailboxDN string
}

// Private reports whether the request targets a mailbox.
func (r *Request) Private() bool {
	return r.Flags&FlagPrivate != 0
}

// Result is the outcome of a successful logon.
type Result struct {
	Session   *session.Session
	FolderIDs [FolderCount]store.ID

	// ResponseFlags is only meaningful for private logons
	ResponseFlags ResponseFlags

	// ReplID and ReplGUID identify the logon's own replica
	ReplID   store.ReplID
	ReplGUID store.ReplGUID

	// MailboxGUID is set for private logons, PerUserGUID for public ones
	MailboxGUID uuid.UUID
	PerUserGUID uuid.UUID

	LogonTime  time.Time
	StoreState uint32
}

// Config configures a Resolver.
type Config struct {
	Registry *registry.Registry
	Sessions *session.Manager
	Service  *service.Service

	// Throttle limits logon attempts per user. Nil disables throttling.
	Throttle *ratelimiter.KeyedLimiter

	Metrics metrics.StoreMetrics
}

// Resolver turns logon requests into sessions.
//
// Thread safety:
// Resolver is safe for concurrent use.
type Resolver struct {
	registry *registry.Registry
	sessions *session.Manager
	service  *service.Service
	throttle *ratelimiter.KeyedLimiter
	metrics  metrics.StoreMetrics
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) *Resolver {
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNoopStoreMetrics()
	}
	return &Resolver{
		registry: cfg.Registry,
		sessions: cfg.Sessions,
		service:  cfg.Service,
		throttle: cfg.Throttle,
		metrics:  m,
	}
}

// Logon validates req and opens a session.
func (r *Resolver) Logon(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			code, _ := store.CodeOf(err)
			outcome = code.String()
			logger.Debug("Logon of %s failed: %v", req.UserDN, err)
		}
		r.metrics.RecordLogon(outcome)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.UserDN == "" {
		return nil, store.NewError(store.ErrUnknownUser, "user DN is required")
	}
	if !r.throttle.Allow(req.UserDN) {
		return nil, store.NewError(store.ErrServerPaused, "too many logon attempts")
	}

	// the caller must exist in the directory for both kinds of logon
	user, _, err := r.registry.FindMailbox(ctx, req.UserDN)
	if store.IsNotFound(err) {
		return nil, store.NewError(store.ErrUnknownUser, "unknown user")
	}
	if err != nil {
		return nil, err
	}

	if req.Private() {
		return r.logonPrivate(ctx, req, user)
	}
	return r.logonPublic(ctx, req, user)
}

func (r *Resolver) logonPrivate(ctx context.Context, req Request, user *store.Mailbox) (*Result, error) {
	if !req.OpenFlags.Has(OpenUsePerMDBReplIDMapping) {
		if r.service.Behavior().MissingMappingWrongServer {
			return nil, store.NewWrongServerError(r.registry.LocalServer())
		}
		return nil, store.NewInvalidParameterError("private logon requires per-MDB REPLID mapping")
	}

	var (
		mbx = user
		db  *registry.Database
	)
	if req.MailboxDN != "" && !strings.EqualFold(req.MailboxDN, user.LegacyDN) {
		target, home, err := r.registry.FindMailbox(ctx, req.MailboxDN)
		if store.IsNotFound(err) {
			return nil, store.NewError(store.ErrUnknownUser, "unknown mailbox")
		}
		if err != nil {
			return nil, err
		}
		mbx, db = target, home
	} else {
		home, err := r.registry.FindDatabase(mbx.DatabaseGUID)
		if err != nil {
			return nil, err
		}
		db = home
	}

	if err := r.checkHome(req, db); err != nil {
		return nil, err
	}

	access, err := registry.ResolveAccess(req.UserDN, mbx, req.OpenFlags.Has(OpenUseAdminPrivilege))
	if err != nil {
		return nil, err
	}

	sess := r.sessions.Open(&session.Session{
		Kind:     session.KindPrivateMailbox,
		Database: db.Database,
		Store:    db.Store,
		Mailbox:  mbx,
		UserDN:   req.UserDN,
		Owner:    access.Owner,
		SendAs:   access.SendAs,
	})

	result := &Result{
		Session:       sess,
		FolderIDs:     mbx.SpecialFolders,
		ResponseFlags: ResponseReserved,
		ReplID:        store.LocalReplID,
		ReplGUID:      db.ReplGUID,
		MailboxGUID:   mbx.GUID,
		LogonTime:     sess.LogonTime,
	}
	if access.Owner {
		result.ResponseFlags |= ResponseOwnerRight
	}
	if access.SendAs {
		result.ResponseFlags |= ResponseSendAsRight
	}

	// store state is informational on logon; a variant without it reports 0
	if state, err := r.service.GetStoreState(ctx, sess); err == nil {
		result.StoreState = state
	}

	logger.Info("Private logon: user=%s mailbox=%s database=%s session=%s", req.UserDN, mbx.LegacyDN, db.Name, sess.ID)
	return result, nil
}

func (r *Resolver) logonPublic(ctx context.Context, req Request, user *store.Mailbox) (*Result, error) {
	db, err := r.registry.PublicFolderDatabase()
	if err != nil {
		return nil, err
	}
	if err := r.checkHome(req, db); err != nil {
		return nil, err
	}

	folders, err := db.Store.ListPublicFolders(ctx, db.GUID)
	if err != nil {
		return nil, err
	}

	sess := r.sessions.Open(&session.Session{
		Kind:     session.KindPublicFolders,
		Database: db.Database,
		Store:    db.Store,
		UserDN:   req.UserDN,
	})

	logger.Info("Public folder logon: user=%s database=%s session=%s", req.UserDN, db.Name, sess.ID)
	return &Result{
		Session:   sess,
		FolderIDs: publicFolderIDs(db.Database, folders),
		ReplID:    store.LocalReplID,
		ReplGUID:  db.ReplGUID,
		LogonTime: sess.LogonTime,
	}, nil
}

// checkHome fails with wrong-server when db lives on another server.
func (r *Resolver) checkHome(req Request, db *registry.Database) error {
	if req.OpenFlags.Has(OpenIgnoreHomeMDB) {
		return nil
	}
	if !strings.EqualFold(db.Server, r.registry.LocalServer()) {
		return store.NewWrongServerError(db.Server)
	}
	return nil
}

// publicFolderIDs fills the public logon folder slots. The first three slots
// hold the root and the two subtree roots; the next seven are well known
// system folders and the last three are unused.
func publicFolderIDs(db *store.Database, folders []*store.PublicFolder) [FolderCount]store.ID {
	var ids [FolderCount]store.ID
	for i := 0; i < 10; i++ {
		ids[i] = store.NewID(store.LocalReplID, uint64(i+1))
	}

	for _, f := range folders {
		if f.LongTermID.ReplGUID != db.ReplGUID {
			continue
		}
		id := store.NewID(store.LocalReplID, f.LongTermID.GlobalCounter)
		switch f.Role {
		case store.RoleRoot:
			ids[0] = id
		case store.RoleIPMSubtree:
			ids[1] = id
		case store.RoleNonIPMSubtree:
			ids[2] = id
		}
	}
	return ids
}

// Logoff closes a session.
func (r *Resolver) Logoff(id uuid.UUID) error {
	return r.sessions.Close(id)
}
