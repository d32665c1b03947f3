package rop

import (
	"fmt"
	"time"

	"github.com/marmos91/dittostore/internal/logger"
)

// ropHandler runs one ROP. req has the request type registered for the ROP.
type ropHandler func(h *Handler, ctx *Context, req any) Response

// ropInfo contains metadata about a ROP for dispatch.
type ropInfo struct {
	// Name is the ROP name for logging (e.g., "RopGetReceiveFolder")
	Name    string
	Handler ropHandler
}

// ropDispatchTable maps ROP ids to their handlers.
var ropDispatchTable map[RopID]*ropInfo

func init() {
	ropDispatchTable = map[RopID]*ropInfo{
		RopLogon: {
			Name:    "RopLogon",
			Handler: typed(func(h *Handler, ctx *Context, req *LogonRequest) Response { return h.Logon(ctx, req) }),
		},
		RopLongTermIDFromID: {
			Name:    "RopLongTermIdFromId",
			Handler: typed(func(h *Handler, ctx *Context, req *LongTermIDFromIDRequest) Response { return h.LongTermIDFromID(ctx, req) }),
		},
		RopIDFromLongTermID: {
			Name:    "RopIdFromLongTermId",
			Handler: typed(func(h *Handler, ctx *Context, req *IDFromLongTermIDRequest) Response { return h.IDFromLongTermID(ctx, req) }),
		},
		RopGetReceiveFolder: {
			Name:    "RopGetReceiveFolder",
			Handler: typed(func(h *Handler, ctx *Context, req *GetReceiveFolderRequest) Response { return h.GetReceiveFolder(ctx, req) }),
		},
		RopSetReceiveFolder: {
			Name:    "RopSetReceiveFolder",
			Handler: typed(func(h *Handler, ctx *Context, req *SetReceiveFolderRequest) Response { return h.SetReceiveFolder(ctx, req) }),
		},
		RopGetReceiveFolderTable: {
			Name:    "RopGetReceiveFolderTable",
			Handler: typed(func(h *Handler, ctx *Context, req *GetReceiveFolderTableRequest) Response { return h.GetReceiveFolderTable(ctx, req) }),
		},
		RopReadPerUserInformation: {
			Name:    "RopReadPerUserInformation",
			Handler: typed(func(h *Handler, ctx *Context, req *ReadPerUserInformationRequest) Response { return h.ReadPerUserInformation(ctx, req) }),
		},
		RopWritePerUserInformation: {
			Name:    "RopWritePerUserInformation",
			Handler: typed(func(h *Handler, ctx *Context, req *WritePerUserInformationRequest) Response { return h.WritePerUserInformation(ctx, req) }),
		},
		RopGetPerUserLongTermIDs: {
			Name:    "RopGetPerUserLongTermIds",
			Handler: typed(func(h *Handler, ctx *Context, req *GetPerUserLongTermIDsRequest) Response { return h.GetPerUserLongTermIDs(ctx, req) }),
		},
		RopGetPerUserGUID: {
			Name:    "RopGetPerUserGuid",
			Handler: typed(func(h *Handler, ctx *Context, req *GetPerUserGUIDRequest) Response { return h.GetPerUserGUID(ctx, req) }),
		},
		RopPublicFolderIsGhosted: {
			Name:    "RopPublicFolderIsGhosted",
			Handler: typed(func(h *Handler, ctx *Context, req *PublicFolderIsGhostedRequest) Response { return h.PublicFolderIsGhosted(ctx, req) }),
		},
		RopGetOwningServers: {
			Name:    "RopGetOwningServers",
			Handler: typed(func(h *Handler, ctx *Context, req *GetOwningServersRequest) Response { return h.GetOwningServers(ctx, req) }),
		},
		RopGetStoreState: {
			Name:    "RopGetStoreState",
			Handler: typed(func(h *Handler, ctx *Context, req *GetStoreStateRequest) Response { return h.GetStoreState(ctx, req) }),
		},
	}
}

// typed adapts a handler method to the dispatch signature. A request of the
// wrong type is answered with ecRpcFormat.
func typed[Req any](fn func(h *Handler, ctx *Context, req *Req) Response) ropHandler {
	return func(h *Handler, ctx *Context, req any) Response {
		r, ok := req.(*Req)
		if !ok || r == nil {
			return &ResponseBase{ReturnValue: EcRPCFormat}
		}
		return fn(h, ctx, r)
	}
}

// Dispatch runs the ROP identified by id. It fails only for ROPs this
// package does not implement; every other failure is in the response.
func (h *Handler) Dispatch(ctx *Context, id RopID, req any) (Response, error) {
	info, ok := ropDispatchTable[id]
	if !ok {
		return nil, fmt.Errorf("unsupported ROP 0x%02X", uint8(id))
	}

	start := time.Now()
	resp := info.Handler(h, ctx, req)
	logger.Debug("%s: session=%s client=%s status=%s duration=%s",
		info.Name, ctx.SessionID, ctx.ClientAddr, resp.GetReturnValue(), time.Since(start))
	return resp, nil
}

// RopName returns the name of a ROP, or its hex id when unknown.
func RopName(id RopID) string {
	if info, ok := ropDispatchTable[id]; ok {
		return info.Name
	}
	return fmt.Sprintf("0x%02X", uint8(id))
}
