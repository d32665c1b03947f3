package rop

// ResponseBase is embedded in every ROP response.
type ResponseBase struct {
	ReturnValue ReturnValue
}

// GetReturnValue returns the status of the response.
func (r *ResponseBase) GetReturnValue() ReturnValue {
	return r.ReturnValue
}

// Response is implemented by every ROP response.
type Response interface {
	GetReturnValue() ReturnValue
}
