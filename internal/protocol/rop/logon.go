package rop

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/pkg/logon"
	"github.com/marmos91/dittostore/pkg/store"
)

// LogonRequest opens a private mailbox or the public folders.
type LogonRequest struct {
	LogonFlags logon.Flags
	OpenFlags  logon.OpenFlags

	// StoreState is sent by clients but ignored
	StoreState uint32

	// Essdn is the DN of the mailbox to open; empty opens the caller's own
	Essdn string
}

// LogonResponse is the result of a logon.
//
// On ecWrongServer only ServerName is set.
type LogonResponse struct {
	ResponseBase

	// SessionID is the logon handle for subsequent ROPs
	SessionID uuid.UUID

	LogonFlags    logon.Flags
	FolderIDs     [logon.FolderCount]store.ID
	ResponseFlags logon.ResponseFlags
	MailboxGUID   uuid.UUID
	PerUserGUID   uuid.UUID
	ReplID        store.ReplID
	ReplGUID      store.ReplGUID
	LogonTime     time.Time
	GwartTime     time.Time
	StoreState    uint32

	ServerName string
}

// Logon resolves a logon request and opens a session.
func (h *Handler) Logon(ctx *Context, req *LogonRequest) *LogonResponse {
	result, err := h.resolver.Logon(ctx.Context, logon.Request{
		UserDN:    ctx.UserDN,
		Flags:     req.LogonFlags,
		OpenFlags: req.OpenFlags,
		MailboxDN: req.Essdn,
	})
	if err != nil {
		resp := &LogonResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "Logon")}}
		if resp.ReturnValue == EcWrongServer {
			var se *store.StoreError
			if errors.As(err, &se) {
				resp.ServerName = se.Server
			}
			resp.LogonFlags = req.LogonFlags
		}
		return resp
	}

	logger.Debug("Logon: user=%s session=%s client=%s", ctx.UserDN, result.Session.ID, ctx.ClientAddr)
	return &LogonResponse{
		SessionID:     result.Session.ID,
		LogonFlags:    req.LogonFlags,
		FolderIDs:     result.FolderIDs,
		ResponseFlags: result.ResponseFlags,
		MailboxGUID:   result.MailboxGUID,
		PerUserGUID:   result.PerUserGUID,
		ReplID:        result.ReplID,
		ReplGUID:      result.ReplGUID,
		LogonTime:     result.LogonTime,
		StoreState:    result.StoreState,
	}
}

// Release closes the logon named by ctx.SessionID.
func (h *Handler) Release(ctx *Context) ReturnValue {
	return MapErrorToReturnValue(h.resolver.Logoff(ctx.SessionID), "Release")
}
