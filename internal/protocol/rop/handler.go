package rop

import (
	"context"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/logon"
	"github.com/marmos91/dittostore/pkg/service"
	"github.com/marmos91/dittostore/pkg/session"
)

// Context carries the caller information of one ROP.
type Context struct {
	Context context.Context

	// UserDN is the authenticated caller, used by Logon
	UserDN string

	// SessionID is the logon handle the ROP runs on; unused by Logon
	SessionID uuid.UUID

	// ClientAddr is the remote address, for logging only
	ClientAddr string
}

// Handler executes ROPs against the store metadata service.
//
// Thread safety:
// Handler is safe for concurrent use. Per-logon state lives in the session.
type Handler struct {
	service  *service.Service
	resolver *logon.Resolver
	sessions *session.Manager
}

// NewHandler creates a Handler.
func NewHandler(svc *service.Service, resolver *logon.Resolver, sessions *session.Manager) *Handler {
	return &Handler{
		service:  svc,
		resolver: resolver,
		sessions: sessions,
	}
}

// session resolves the logon handle of ctx. An unknown handle is reported
// as ecNullObject.
func (h *Handler) session(ctx *Context) (*session.Session, ReturnValue) {
	sess, err := h.sessions.Get(ctx.SessionID)
	if err != nil {
		return nil, EcNullObject
	}
	return sess, EcNone
}
