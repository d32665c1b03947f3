package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DatabaseKind distinguishes mailbox databases from public folder databases.
type DatabaseKind int

const (
	DatabaseMailbox DatabaseKind = iota
	DatabasePublicFolders
)

func (k DatabaseKind) String() string {
	if k == DatabasePublicFolders {
		return "public_folders"
	}
	return "mailbox"
}

// ParseDatabaseKind converts a configuration value into a DatabaseKind.
func ParseDatabaseKind(s string) (DatabaseKind, bool) {
	switch strings.ToLower(s) {
	case "mailbox", "private":
		return DatabaseMailbox, true
	case "public_folders", "public":
		return DatabasePublicFolders, true
	}
	return DatabaseMailbox, false
}

// Database is the unit that owns an IdentifierMap.
type Database struct {
	GUID     uuid.UUID    `json:"guid"`
	ReplGUID ReplGUID     `json:"repl_guid"`
	Name     string       `json:"name"`
	Kind     DatabaseKind `json:"kind"`

	// Server is the name of the server hosting the database
	Server string `json:"server"`
}

// SpecialFolder indexes the folder id array returned on private logon.
type SpecialFolder int

const (
	FolderRoot SpecialFolder = iota
	FolderDeferredAction
	FolderSpoolerQueue
	FolderIPMSubtree
	FolderInbox
	FolderOutbox
	FolderSentItems
	FolderDeletedItems
	FolderCommonViews
	FolderSchedule
	FolderFinder
	FolderViews
	FolderShortcuts

	// SpecialFolderCount is the number of folder ids in a logon response
	SpecialFolderCount
)

// Mailbox is a private mailbox as known to the directory.
type Mailbox struct {
	GUID         uuid.UUID `json:"guid"`
	LegacyDN     string    `json:"legacy_dn"`
	DisplayName  string    `json:"display_name"`
	DatabaseGUID uuid.UUID `json:"database_guid"`

	// ReplGUID identifies the mailbox's own replica
	ReplGUID ReplGUID `json:"repl_guid"`

	SpecialFolders [SpecialFolderCount]ID `json:"special_folders"`

	// Delegates lists legacy DNs allowed to open the mailbox
	Delegates []string `json:"delegates,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsDelegate reports whether userDN may open the mailbox on the owner's behalf.
func (m *Mailbox) IsDelegate(userDN string) bool {
	for _, d := range m.Delegates {
		if strings.EqualFold(d, userDN) {
			return true
		}
	}
	return false
}

// ReplicaMapping is one REPLID to REPLGUID entry of an IdentifierMap.
type ReplicaMapping struct {
	ReplID   ReplID   `json:"repl_id"`
	ReplGUID ReplGUID `json:"repl_guid"`
}

// ReceiveFolderRow routes messages of a class to a folder.
type ReceiveFolderRow struct {
	MessageClass string    `json:"message_class"`
	FolderID     ID        `json:"folder_id"`
	LastModified time.Time `json:"last_modified"`
}

// OwnerKind tells whose per-user information a row holds.
type OwnerKind int

const (
	OwnerMailbox OwnerKind = iota
	OwnerPublicFolders
)

// PerUserKey addresses one per-user information row.
//
// Scope is the mailbox GUID for private rows and the public folder database
// GUID for public rows. User is only set for public rows.
type PerUserKey struct {
	Owner  OwnerKind  `json:"owner"`
	Scope  uuid.UUID  `json:"scope"`
	Folder LongTermID `json:"folder"`
	User   string     `json:"user,omitempty"`
}

// Normalized returns the key with the user DN folded so lookups are case
// insensitive.
func (k PerUserKey) Normalized() PerUserKey {
	k.User = strings.ToLower(k.User)
	return k
}

// PerUserInfo is the stored value of a per-user row. Data is opaque.
type PerUserInfo struct {
	Data         []byte    `json:"data"`
	ReplGUID     ReplGUID  `json:"repl_guid"`
	LastModified time.Time `json:"last_modified"`
}

// PerUserEntry pairs a key with its stored value.
type PerUserEntry struct {
	Key  PerUserKey
	Info PerUserInfo
}

// FolderRole classifies public folders for ghosting decisions.
type FolderRole int

const (
	RoleGeneric FolderRole = iota
	RoleRoot
	RoleIPMSubtree
	RoleNonIPMSubtree
)

// ParseFolderRole converts a configuration value into a FolderRole.
func ParseFolderRole(s string) (FolderRole, bool) {
	switch strings.ToLower(s) {
	case "", "generic", "folder":
		return RoleGeneric, true
	case "root":
		return RoleRoot, true
	case "ipm_subtree":
		return RoleIPMSubtree, true
	case "non_ipm_subtree":
		return RoleNonIPMSubtree, true
	}
	return RoleGeneric, false
}

// IsSubtreeRoot reports whether the role is one of the hierarchy roots that
// every public folder server holds.
func (r FolderRole) IsSubtreeRoot() bool {
	return r == RoleRoot || r == RoleIPMSubtree || r == RoleNonIPMSubtree
}

// PublicFolder is the replica record of a public folder.
type PublicFolder struct {
	LongTermID  LongTermID `json:"long_term_id"`
	DisplayName string     `json:"display_name"`
	Role        FolderRole `json:"role"`

	// Replicas lists the server DNs holding active replicas
	Replicas []string `json:"replicas"`
}

// HasReplicaOn reports whether server holds an active replica of the folder.
func (f *PublicFolder) HasReplicaOn(server string) bool {
	for _, r := range f.Replicas {
		if strings.EqualFold(r, server) {
			return true
		}
	}
	return false
}
