package logon

// Flags are the logon flags of a logon request.
type Flags uint8

const (
	FlagPrivate    Flags = 0x01
	FlagUndercover Flags = 0x02
	FlagGhosted    Flags = 0x04
)

// OpenFlags are the open flags of a logon request.
type OpenFlags uint32

const (
	OpenUseAdminPrivilege      OpenFlags = 0x00000001
	OpenPublic                 OpenFlags = 0x00000002
	OpenHomeLogon              OpenFlags = 0x00000004
	OpenTakeOwnership          OpenFlags = 0x00000008
	OpenAlternateServer        OpenFlags = 0x00000100
	OpenIgnoreHomeMDB          OpenFlags = 0x00000200
	OpenNoMail                 OpenFlags = 0x00000400
	OpenUsePerMDBReplIDMapping OpenFlags = 0x01000000
	OpenSupportProgress        OpenFlags = 0x20000000
)

// Has reports whether all bits of flag are set.
func (f OpenFlags) Has(flag OpenFlags) bool {
	return f&flag == flag
}

// ResponseFlags are returned on a successful private logon.
type ResponseFlags uint8

const (
	ResponseReserved    ResponseFlags = 0x01
	ResponseOwnerRight  ResponseFlags = 0x02
	ResponseSendAsRight ResponseFlags = 0x04
	ResponseOOF         ResponseFlags = 0x10
)
