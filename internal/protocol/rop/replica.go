package rop

import (
	"github.com/marmos91/dittostore/pkg/store"
)

type PublicFolderIsGhostedRequest struct {
	FolderID store.ID
}

type PublicFolderIsGhostedResponse struct {
	ResponseBase
	IsGhosted bool

	// Servers is only set when IsGhosted
	Servers []string
}

func (h *Handler) PublicFolderIsGhosted(ctx *Context, req *PublicFolderIsGhostedRequest) *PublicFolderIsGhostedResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &PublicFolderIsGhostedResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	status, err := h.service.PublicFolderIsGhosted(ctx.Context, sess, req.FolderID)
	if err != nil {
		return &PublicFolderIsGhostedResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "PublicFolderIsGhosted")}}
	}
	return &PublicFolderIsGhostedResponse{IsGhosted: status.IsGhosted, Servers: status.Servers}
}

type GetOwningServersRequest struct {
	FolderID store.ID
}

type GetOwningServersResponse struct {
	ResponseBase
	OwningServersCount uint16
	CheapServersCount  uint16
	OwningServers      []string
}

func (h *Handler) GetOwningServers(ctx *Context, req *GetOwningServersRequest) *GetOwningServersResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &GetOwningServersResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	owners, err := h.service.GetOwningServers(ctx.Context, sess, req.FolderID)
	if err != nil {
		return &GetOwningServersResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "GetOwningServers")}}
	}
	return &GetOwningServersResponse{
		OwningServersCount: uint16(len(owners.Servers)),
		CheapServersCount:  owners.CheapServersCount,
		OwningServers:      owners.Servers,
	}
}
