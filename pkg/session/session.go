// Package session holds per-logon state shared by all store metadata
// operations issued on one logon.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

// Kind tells whether a session is logged on to a private mailbox or to the
// public folders.
type Kind int

const (
	KindPrivateMailbox Kind = iota
	KindPublicFolders
)

func (k Kind) String() string {
	if k == KindPublicFolders {
		return "public"
	}
	return "private"
}

// WriteProgress is the in-flight chunked per-user write of a session.
type WriteProgress struct {
	Key          store.PerUserKey
	BytesWritten uint32
	Buffer       []byte

	// ReplGUID is the last REPLGUID supplied by a chunk, nil if none was
	ReplGUID *store.ReplGUID
}

// Session is the context of one logon.
//
// The database is pinned at logon: every IdentifierMap translation on the
// session uses Database and Store for its whole lifetime.
//
// Exported fields are set before the session is opened and never change
// afterwards. Activity time and write progress are guarded by mu.
type Session struct {
	ID       uuid.UUID
	Kind     Kind
	Database *store.Database
	Store    store.MetadataStore

	// Mailbox is nil for public folder sessions
	Mailbox *store.Mailbox

	// UserDN is the legacy DN of the logged on user
	UserDN string

	Owner     bool
	SendAs    bool
	LogonTime time.Time

	mu         sync.Mutex
	lastActive time.Time
	progress   *WriteProgress
	closed     bool
}

// IsPrivate reports whether the session is logged on to a mailbox.
func (s *Session) IsPrivate() bool {
	return s.Kind == KindPrivateMailbox
}

// PerUserKey builds the per-user row key for folder as seen by this session.
func (s *Session) PerUserKey(folder store.LongTermID) store.PerUserKey {
	if s.IsPrivate() {
		return store.PerUserKey{Owner: store.OwnerMailbox, Scope: s.Mailbox.GUID, Folder: folder}
	}
	return store.PerUserKey{
		Owner:  store.OwnerPublicFolders,
		Scope:  s.Database.GUID,
		Folder: folder,
		User:   s.UserDN,
	}
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

// LastActive returns the time of the last recorded activity.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// UpdateWriteProgress runs fn with the current write progress (nil when no
// write is in flight) and stores whatever fn returns, even when fn fails.
//
// fn runs under the session lock, so chunks of one session are applied one
// at a time. Returning nil clears the progress.
func (s *Session) UpdateWriteProgress(fn func(current *WriteProgress) (*WriteProgress, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.NewGenericError("session is closed")
	}

	next, err := fn(s.progress)
	s.progress = next
	return err
}

// HasWriteInProgress reports whether a chunked write is pending.
func (s *Session) HasWriteInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress != nil
}

// close discards pending state. Called by the Manager.
func (s *Session) close() {
	s.mu.Lock()
	s.progress = nil
	s.closed = true
	s.mu.Unlock()
}
