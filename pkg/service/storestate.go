package service

import (
	"context"
	"time"

	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
)

// GetStoreState returns the state flags of the mailbox. No state bits are
// tracked, so the value is always zero where the operation is implemented.
func (s *Service) GetStoreState(ctx context.Context, sess *session.Session) (state uint32, err error) {
	defer s.observe("GetStoreState", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return 0, err
	}
	if err := requirePrivate(sess, "GetStoreState"); err != nil {
		return 0, err
	}
	if s.behavior.StoreStateNotImplemented {
		return 0, store.NewError(store.ErrNotImplemented, "GetStoreState is not implemented")
	}
	return 0, nil
}
