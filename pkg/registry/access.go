package registry

import (
	"strings"

	"github.com/marmos91/dittostore/pkg/store"
)

// Access describes the effective rights of a user on a mailbox.
type Access struct {
	// Owner is set when the user owns the mailbox
	Owner bool

	// SendAs is set for the owner and for delegates
	SendAs bool

	// Admin is set when access was granted through admin privilege only
	Admin bool
}

// ResolveAccess computes the rights userDN gets when opening mbx.
//
// The owner and listed delegates are always allowed. Anyone else needs
// useAdmin, and gets no send-as right. Access is denied with
// ErrLoginPermission.
func ResolveAccess(userDN string, mbx *store.Mailbox, useAdmin bool) (Access, error) {
	if strings.EqualFold(userDN, mbx.LegacyDN) {
		return Access{Owner: true, SendAs: true}, nil
	}
	if mbx.IsDelegate(userDN) {
		return Access{SendAs: true}, nil
	}
	if useAdmin {
		return Access{Admin: true}, nil
	}
	return Access{}, store.NewError(store.ErrLoginPermission, "no permission to open mailbox")
}
