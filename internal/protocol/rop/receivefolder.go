package rop

import (
	"github.com/marmos91/dittostore/pkg/store"
)

type GetReceiveFolderRequest struct {
	MessageClass string
}

type GetReceiveFolderResponse struct {
	ResponseBase
	FolderID             store.ID
	ExplicitMessageClass string
}

func (h *Handler) GetReceiveFolder(ctx *Context, req *GetReceiveFolderRequest) *GetReceiveFolderResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &GetReceiveFolderResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	result, err := h.service.GetReceiveFolder(ctx.Context, sess, req.MessageClass)
	if err != nil {
		return &GetReceiveFolderResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "GetReceiveFolder")}}
	}
	return &GetReceiveFolderResponse{
		FolderID:             result.FolderID,
		ExplicitMessageClass: result.ExplicitMessageClass,
	}
}

// SetReceiveFolderRequest routes MessageClass to FolderID. FolderID 0
// removes the route.
type SetReceiveFolderRequest struct {
	FolderID     store.ID
	MessageClass string
}

type SetReceiveFolderResponse struct {
	ResponseBase
}

func (h *Handler) SetReceiveFolder(ctx *Context, req *SetReceiveFolderRequest) *SetReceiveFolderResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &SetReceiveFolderResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	err := h.service.SetReceiveFolder(ctx.Context, sess, req.FolderID, req.MessageClass)
	return &SetReceiveFolderResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "SetReceiveFolder")}}
}

type GetReceiveFolderTableRequest struct{}

type GetReceiveFolderTableResponse struct {
	ResponseBase
	Rows []store.ReceiveFolderRow
}

func (h *Handler) GetReceiveFolderTable(ctx *Context, _ *GetReceiveFolderTableRequest) *GetReceiveFolderTableResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &GetReceiveFolderTableResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	rows, err := h.service.GetReceiveFolderTable(ctx.Context, sess)
	if err != nil {
		return &GetReceiveFolderTableResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "GetReceiveFolderTable")}}
	}
	return &GetReceiveFolderTableResponse{Rows: rows}
}
