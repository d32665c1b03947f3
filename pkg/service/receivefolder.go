package service

import (
	"context"
	"time"

	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
)

// ReceiveFolder is the result of a receive folder lookup.
type ReceiveFolder struct {
	FolderID store.ID

	// ExplicitMessageClass is the matched row's class as stored
	ExplicitMessageClass string
}

// GetReceiveFolder returns the folder receiving messages of class.
//
// The row with the longest class that is equal to class or a whole-segment
// prefix of it wins, compared case insensitively. The empty-class row is the
// fallback.
func (s *Service) GetReceiveFolder(ctx context.Context, sess *session.Session, class string) (result *ReceiveFolder, err error) {
	defer s.observe("GetReceiveFolder", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := requirePrivate(sess, "GetReceiveFolder"); err != nil {
		return nil, err
	}
	if err := ValidateMessageClass(class); err != nil {
		return nil, err
	}

	rows, err := sess.Store.ListReceiveFolders(ctx, sess.Mailbox.GUID)
	if err != nil {
		return nil, err
	}

	folded := store.FoldClass(class)
	best := -1
	bestLen := -1
	for i, row := range rows {
		rowClass := store.FoldClass(row.MessageClass)
		if classMatches(rowClass, folded) && len(rowClass) > bestLen {
			best, bestLen = i, len(rowClass)
		}
	}
	if best < 0 {
		return nil, store.NewNotFoundError("mailbox has no default receive folder")
	}

	return &ReceiveFolder{
		FolderID:             rows[best].FolderID,
		ExplicitMessageClass: rows[best].MessageClass,
	}, nil
}

// SetReceiveFolder routes class to folderID, or removes the row for class
// when folderID is zero.
//
// The IPM and REPORT.IPM rows cannot be changed, and the default row cannot
// be removed.
func (s *Service) SetReceiveFolder(ctx context.Context, sess *session.Session, folderID store.ID, class string) (err error) {
	defer s.observe("SetReceiveFolder", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return err
	}
	if err := requirePrivate(sess, "SetReceiveFolder"); err != nil {
		return err
	}
	if err := ValidateMessageClass(class); err != nil {
		return err
	}

	if isProtectedClass(store.FoldClass(class)) {
		return store.NewAccessDeniedError("receive folder for " + class + " cannot be changed")
	}

	mailbox := sess.Mailbox.GUID
	if folderID.IsZero() {
		if class == "" {
			return store.NewGenericError("default receive folder cannot be removed")
		}
		return sess.Store.DeleteReceiveFolder(ctx, mailbox, class)
	}

	return sess.Store.PutReceiveFolder(ctx, mailbox, store.ReceiveFolderRow{
		MessageClass: class,
		FolderID:     folderID,
		LastModified: s.now().UTC(),
	})
}

// GetReceiveFolderTable returns every receive folder row of the mailbox.
func (s *Service) GetReceiveFolderTable(ctx context.Context, sess *session.Session) (rows []store.ReceiveFolderRow, err error) {
	defer s.observe("GetReceiveFolderTable", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := requirePrivate(sess, "GetReceiveFolderTable"); err != nil {
		return nil, err
	}
	return sess.Store.ListReceiveFolders(ctx, sess.Mailbox.GUID)
}
