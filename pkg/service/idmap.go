package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
)

// IDFromLongTermID compresses a LongTermID into a short ID, allocating a
// REPLID in the session's database when the REPLGUID is new.
//
// The global counter passes through unchanged and may be zero.
func (s *Service) IDFromLongTermID(ctx context.Context, sess *session.Session, ltid store.LongTermID) (id store.ID, err error) {
	defer s.observe("IdFromLongTermId", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return 0, err
	}

	if ltid.ReplGUID == uuid.Nil {
		if !s.behavior.AcceptZeroReplGUID {
			return 0, store.NewInvalidParameterError("long term id has a zero REPLGUID")
		}
		return store.NewID(0, ltid.GlobalCounter), nil
	}

	replID, err := sess.Store.ReplIDFromGUID(ctx, sess.Database.GUID, ltid.ReplGUID)
	if err != nil {
		return 0, err
	}
	return store.NewID(replID, ltid.GlobalCounter), nil
}

// LongTermIDFromID expands a short ID using the session's IdentifierMap.
func (s *Service) LongTermIDFromID(ctx context.Context, sess *session.Session, id store.ID) (ltid store.LongTermID, err error) {
	defer s.observe("LongTermIdFromId", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return store.LongTermID{}, err
	}
	return s.expand(ctx, sess, id)
}

func (s *Service) expand(ctx context.Context, sess *session.Session, id store.ID) (store.LongTermID, error) {
	if id.IsZero() {
		if s.behavior.ZeroObjectIDNotFound {
			return store.LongTermID{}, store.NewNotFoundError("object id is zero")
		}
		return store.LongTermID{}, nil
	}

	guid, err := sess.Store.ReplGUIDFromID(ctx, sess.Database.GUID, id.ReplID())
	if err != nil {
		return store.LongTermID{}, err
	}
	return store.LongTermID{ReplGUID: guid, GlobalCounter: id.GlobalCounter()}, nil
}
