package rop

import (
	"github.com/marmos91/dittostore/pkg/store"
)

// LongTermIDFromIDRequest asks for the long-term form of a short id.
type LongTermIDFromIDRequest struct {
	ObjectID store.ID
}

type LongTermIDFromIDResponse struct {
	ResponseBase
	LongTermID store.LongTermID
}

// LongTermIDFromID expands an object id using the logon's IdentifierMap.
func (h *Handler) LongTermIDFromID(ctx *Context, req *LongTermIDFromIDRequest) *LongTermIDFromIDResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &LongTermIDFromIDResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	ltid, err := h.service.LongTermIDFromID(ctx.Context, sess, req.ObjectID)
	if err != nil {
		return &LongTermIDFromIDResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "LongTermIdFromId")}}
	}
	return &LongTermIDFromIDResponse{LongTermID: ltid}
}

// IDFromLongTermIDRequest asks for the short form of a long-term id.
type IDFromLongTermIDRequest struct {
	LongTermID store.LongTermID
}

type IDFromLongTermIDResponse struct {
	ResponseBase
	ObjectID store.ID
}

// IDFromLongTermID compresses a long-term id, registering unknown
// REPLGUIDs in the logon's IdentifierMap.
func (h *Handler) IDFromLongTermID(ctx *Context, req *IDFromLongTermIDRequest) *IDFromLongTermIDResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &IDFromLongTermIDResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	id, err := h.service.IDFromLongTermID(ctx.Context, sess, req.LongTermID)
	if err != nil {
		return &IDFromLongTermIDResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "IdFromLongTermId")}}
	}
	return &IDFromLongTermIDResponse{ObjectID: id}
}
