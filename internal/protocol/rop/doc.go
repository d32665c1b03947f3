// Package rop implements the remote operations (ROPs) of the store
// metadata service on top of pkg/service and pkg/logon.
//
// Requests and responses are typed Go structs. Buffer framing and byte
// encoding belong to the transport and are not handled here. Every
// response carries a ReturnValue; failures from the service are
// translated to protocol status codes by MapErrorToReturnValue.
//
// A ROP other than Logon names its logon through Context.SessionID, the
// handle returned by a successful Logon.
package rop
