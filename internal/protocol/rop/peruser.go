package rop

import (
	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/service"
	"github.com/marmos91/dittostore/pkg/store"
)

// ReadPerUserInformationRequest reads a chunk of a folder's per-user BLOB.
type ReadPerUserInformationRequest struct {
	FolderID store.LongTermID

	// Reserved must be zero and is ignored
	Reserved uint8

	// DataOffset is a signed 32-bit value on the wire and is kept as its
	// raw bits here
	DataOffset  uint32
	MaxDataSize uint16
}

type ReadPerUserInformationResponse struct {
	ResponseBase
	HasFinished bool
	DataSize    uint16
	Data        []byte
}

func (h *Handler) ReadPerUserInformation(ctx *Context, req *ReadPerUserInformationRequest) *ReadPerUserInformationResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &ReadPerUserInformationResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	chunk, err := h.service.ReadPerUserInformation(ctx.Context, sess, req.FolderID, req.DataOffset, req.MaxDataSize)
	if err != nil {
		return &ReadPerUserInformationResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "ReadPerUserInformation")}}
	}
	return &ReadPerUserInformationResponse{
		HasFinished: chunk.HasFinished,
		DataSize:    uint16(len(chunk.Data)),
		Data:        chunk.Data,
	}
}

// WritePerUserInformationRequest sends one chunk of a folder's per-user BLOB.
type WritePerUserInformationRequest struct {
	FolderID    store.LongTermID
	HasFinished bool
	DataOffset  uint32

	// DataSize must equal len(Data)
	DataSize uint16
	Data     []byte

	// ReplGUID is only sent on the first chunk of a private logon write
	ReplGUID *uuid.UUID
}

type WritePerUserInformationResponse struct {
	ResponseBase
}

func (h *Handler) WritePerUserInformation(ctx *Context, req *WritePerUserInformationRequest) *WritePerUserInformationResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &WritePerUserInformationResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}
	if int(req.DataSize) != len(req.Data) {
		return &WritePerUserInformationResponse{ResponseBase: ResponseBase{ReturnValue: EcInvalidParam}}
	}

	err := h.service.WritePerUserInformation(ctx.Context, sess, service.WritePerUserRequest{
		Folder:      req.FolderID,
		HasFinished: req.HasFinished,
		DataOffset:  req.DataOffset,
		Data:        req.Data,
		ReplGUID:    req.ReplGUID,
	})
	return &WritePerUserInformationResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "WritePerUserInformation")}}
}

type GetPerUserLongTermIDsRequest struct {
	DatabaseGUID uuid.UUID
}

type GetPerUserLongTermIDsResponse struct {
	ResponseBase
	LongTermIDs []store.LongTermID
}

func (h *Handler) GetPerUserLongTermIDs(ctx *Context, req *GetPerUserLongTermIDsRequest) *GetPerUserLongTermIDsResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &GetPerUserLongTermIDsResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	ids, err := h.service.GetPerUserLongTermIDs(ctx.Context, sess, req.DatabaseGUID)
	if err != nil {
		return &GetPerUserLongTermIDsResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "GetPerUserLongTermIds")}}
	}
	return &GetPerUserLongTermIDsResponse{LongTermIDs: ids}
}

type GetPerUserGUIDRequest struct {
	LongTermID store.LongTermID
}

type GetPerUserGUIDResponse struct {
	ResponseBase
	DatabaseGUID uuid.UUID
}

func (h *Handler) GetPerUserGUID(ctx *Context, req *GetPerUserGUIDRequest) *GetPerUserGUIDResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &GetPerUserGUIDResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	guid, err := h.service.GetPerUserGUID(ctx.Context, sess, req.LongTermID)
	if err != nil {
		return &GetPerUserGUIDResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "GetPerUserGuid")}}
	}
	return &GetPerUserGUIDResponse{DatabaseGUID: guid}
}
