package registry

import (
	"strings"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

// Namespaces for GUIDs derived from configuration names. Deriving them keeps
// provisioning idempotent across restarts with persistent stores.
var (
	databaseNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("dittostore:database"))
	replicaNamespace  = uuid.NewSHA1(uuid.NameSpaceURL, []byte("dittostore:replica"))
	mailboxNamespace  = uuid.NewSHA1(uuid.NameSpaceURL, []byte("dittostore:mailbox"))
)

// Database is a configured database bound to the store that holds it.
//
// Multiple databases can share one store instance.
type Database struct {
	*store.Database

	// StoreName is the name of the registered store
	StoreName string
	Store     store.MetadataStore
}

// DatabaseConfig contains everything needed to provision a database.
type DatabaseConfig struct {
	Name  string
	Kind  store.DatabaseKind
	Store string

	// Server hosting the database; empty means the local server
	Server string

	// GUID and ReplGUID default to values derived from Name
	GUID     uuid.UUID
	ReplGUID uuid.UUID
}

// MailboxConfig contains everything needed to provision a mailbox.
type MailboxConfig struct {
	LegacyDN    string
	DisplayName string

	// Database is the name of the mailbox database
	Database  string
	Delegates []string

	// GUID defaults to a value derived from LegacyDN
	GUID uuid.UUID
}

// PublicFolderConfig describes a public folder replica record.
type PublicFolderConfig struct {
	// Database is the name of the public folder database
	Database    string
	DisplayName string
	Role        store.FolderRole

	// GlobalCounter of the folder's long term id in the database's replica
	GlobalCounter uint64

	Replicas []string
}

// DatabaseGUID returns the GUID derived for a database name.
func DatabaseGUID(name string) uuid.UUID {
	return uuid.NewSHA1(databaseNamespace, []byte(name))
}

// DatabaseReplGUID returns the REPLGUID derived for a database name.
func DatabaseReplGUID(name string) uuid.UUID {
	return uuid.NewSHA1(replicaNamespace, []byte(name))
}

// MailboxGUID returns the GUID derived for a legacy DN.
func MailboxGUID(legacyDN string) uuid.UUID {
	return uuid.NewSHA1(mailboxNamespace, []byte(strings.ToLower(legacyDN)))
}
