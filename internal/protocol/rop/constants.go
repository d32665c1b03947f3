package rop

import "fmt"

// ReturnValue is the status code of a ROP response.
type ReturnValue uint32

// Return values used by the store metadata ROPs.
const (
	EcNone           ReturnValue = 0x00000000
	EcUnknownUser    ReturnValue = 0x000003EB
	EcLoginPerm      ReturnValue = 0x000003F2
	EcWrongServer    ReturnValue = 0x00000478
	EcServerPaused   ReturnValue = 0x0000047F
	EcRPCFormat      ReturnValue = 0x000004B6
	EcNullObject     ReturnValue = 0x000004B9
	EcNotSupported   ReturnValue = 0x80040102
	EcNotFound       ReturnValue = 0x8004010F
	EcNotImplemented ReturnValue = 0x80040FFF
	EcError          ReturnValue = 0x80004005
	EcAccessDenied   ReturnValue = 0x80070005
	EcInvalidParam   ReturnValue = 0x80070057
)

var returnValueNames = map[ReturnValue]string{
	EcNone:           "ecNone",
	EcUnknownUser:    "ecUnknownUser",
	EcLoginPerm:      "ecLoginPerm",
	EcWrongServer:    "ecWrongServer",
	EcServerPaused:   "ecServerPaused",
	EcRPCFormat:      "ecRpcFormat",
	EcNullObject:     "ecNullObject",
	EcNotSupported:   "ecNotSupported",
	EcNotFound:       "ecNotFound",
	EcNotImplemented: "ecNotImplemented",
	EcError:          "ecError",
	EcAccessDenied:   "ecAccessDenied",
	EcInvalidParam:   "ecInvalidParam",
}

func (v ReturnValue) String() string {
	if name, ok := returnValueNames[v]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(v))
}

// RopID identifies a remote operation.
type RopID uint8

const (
	RopSetReceiveFolder        RopID = 0x26
	RopGetReceiveFolder        RopID = 0x27
	RopGetOwningServers        RopID = 0x42
	RopLongTermIDFromID        RopID = 0x43
	RopIDFromLongTermID        RopID = 0x44
	RopPublicFolderIsGhosted   RopID = 0x45
	RopGetPerUserLongTermIDs   RopID = 0x60
	RopGetPerUserGUID          RopID = 0x61
	RopReadPerUserInformation  RopID = 0x63
	RopWritePerUserInformation RopID = 0x64
	RopGetReceiveFolderTable   RopID = 0x68
	RopGetStoreState           RopID = 0x7B
	RopLogon                   RopID = 0xFE
)
