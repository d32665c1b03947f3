package rop

type GetStoreStateRequest struct{}

type GetStoreStateResponse struct {
	ResponseBase
	StoreState uint32
}

func (h *Handler) GetStoreState(ctx *Context, _ *GetStoreStateRequest) *GetStoreStateResponse {
	sess, rv := h.session(ctx)
	if rv != EcNone {
		return &GetStoreStateResponse{ResponseBase: ResponseBase{ReturnValue: rv}}
	}

	state, err := h.service.GetStoreState(ctx.Context, sess)
	if err != nil {
		return &GetStoreStateResponse{ResponseBase: ResponseBase{ReturnValue: MapErrorToReturnValue(err, "GetStoreState")}}
	}
	return &GetStoreStateResponse{StoreState: state}
}
