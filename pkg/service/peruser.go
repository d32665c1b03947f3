package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
)

// PerUserChunk is one slice of a per-user BLOB.
type PerUserChunk struct {
	Data []byte

	// HasFinished is true when Data reaches the end of the BLOB
	HasFinished bool
}

// WritePerUserRequest is one chunk of a per-user write.
type WritePerUserRequest struct {
	Folder      store.LongTermID
	HasFinished bool
	DataOffset  uint32
	Data        []byte

	// ReplGUID is stored with the row on commit when supplied
	ReplGUID *uuid.UUID
}

// ReadPerUserInformation returns up to maxDataSize bytes of the folder's
// per-user BLOB starting at dataOffset.
//
// A folder without a row reads as an empty, finished BLOB. maxDataSize 0
// selects the default chunk size and larger requests are capped.
func (s *Service) ReadPerUserInformation(ctx context.Context, sess *session.Session, folder store.LongTermID, dataOffset uint32, maxDataSize uint16) (chunk *PerUserChunk, err error) {
	defer s.observe("ReadPerUserInformation", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return nil, err
	}

	info, err := sess.Store.GetPerUserInfo(ctx, sess.PerUserKey(folder))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return &PerUserChunk{Data: []byte{}, HasFinished: true}, nil
	}

	if int32(dataOffset) < 0 {
		if s.behavior.NegativeOffsetRPCFormat {
			return nil, store.NewError(store.ErrRPCFormat, "data offset is negative")
		}
		return nil, store.NewGenericError("data offset is negative")
	}

	size := maxDataSize
	if size == 0 {
		size = s.behavior.DefaultChunkSize
	}
	if size > s.behavior.MaxChunkSize {
		size = s.behavior.MaxChunkSize
	}

	total := uint32(len(info.Data))
	if dataOffset > total {
		return nil, store.NewGenericError("data offset is beyond the end of the data")
	}

	end := dataOffset + uint32(size)
	if end > total {
		end = total
	}

	data := make([]byte, end-dataOffset)
	copy(data, info.Data[dataOffset:end])
	s.metrics.RecordPerUserBytes("read", len(data))

	return &PerUserChunk{Data: data, HasFinished: end == total}, nil
}

// WritePerUserInformation appends one chunk to the session's pending write
// and commits the BLOB when req.HasFinished is set.
//
// A chunk at offset 0 always starts over. Any other offset must continue the
// pending write for the same folder exactly where it stopped; an offset
// mismatch discards the pending write. The committed row is only replaced,
// atomically, by the final chunk.
func (s *Service) WritePerUserInformation(ctx context.Context, sess *session.Session, req WritePerUserRequest) (err error) {
	defer s.observe("WritePerUserInformation", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return err
	}
	if len(req.Data) > int(s.behavior.MaxChunkSize) {
		return store.NewInvalidParameterError("chunk exceeds the maximum data size")
	}

	key := sess.PerUserKey(req.Folder).Normalized()

	return sess.UpdateWriteProgress(func(current *session.WriteProgress) (*session.WriteProgress, error) {
		var progress *session.WriteProgress
		switch {
		case req.DataOffset == 0:
			progress = &session.WriteProgress{Key: key}
		case current == nil || current.Key != key:
			// another folder's pending write is left alone
			return current, store.NewGenericError("no pending write for this folder")
		case req.DataOffset != current.BytesWritten:
			return nil, store.NewGenericError("data offset does not continue the pending write")
		default:
			progress = current
		}

		progress.Buffer = append(progress.Buffer, req.Data...)
		progress.BytesWritten += uint32(len(req.Data))
		if req.ReplGUID != nil {
			guid := *req.ReplGUID
			progress.ReplGUID = &guid
		}
		s.metrics.RecordPerUserBytes("write", len(req.Data))

		if !req.HasFinished {
			return progress, nil
		}
		return nil, s.commitPerUser(ctx, sess, progress)
	})
}

func (s *Service) commitPerUser(ctx context.Context, sess *session.Session, progress *session.WriteProgress) error {
	info := &store.PerUserInfo{
		Data:         progress.Buffer,
		LastModified: s.now().UTC(),
	}
	if info.Data == nil {
		info.Data = []byte{}
	}

	if progress.ReplGUID != nil {
		info.ReplGUID = *progress.ReplGUID
	} else {
		existing, err := sess.Store.GetPerUserInfo(ctx, progress.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			info.ReplGUID = existing.ReplGUID
		}
	}

	return sess.Store.PutPerUserInfo(ctx, progress.Key, info)
}

// GetPerUserLongTermIDs lists the folders of the mailbox whose per-user
// information was written for the replica databaseGUID.
func (s *Service) GetPerUserLongTermIDs(ctx context.Context, sess *session.Session, databaseGUID uuid.UUID) (ids []store.LongTermID, err error) {
	defer s.observe("GetPerUserLongTermIds", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := requirePrivate(sess, "GetPerUserLongTermIds"); err != nil {
		return nil, err
	}

	entries, err := sess.Store.ListPerUserInfo(ctx, store.OwnerMailbox, sess.Mailbox.GUID)
	if err != nil {
		return nil, err
	}

	ids = []store.LongTermID{}
	for _, e := range entries {
		if e.Info.ReplGUID == databaseGUID {
			ids = append(ids, e.Key.Folder)
		}
	}
	return ids, nil
}

// GetPerUserGUID returns the replica GUID stored with a folder's per-user
// information.
func (s *Service) GetPerUserGUID(ctx context.Context, sess *session.Session, folder store.LongTermID) (guid uuid.UUID, err error) {
	defer s.observe("GetPerUserGuid", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return uuid.Nil, err
	}
	if err := requirePrivate(sess, "GetPerUserGuid"); err != nil {
		return uuid.Nil, err
	}

	info, err := sess.Store.GetPerUserInfo(ctx, sess.PerUserKey(folder))
	if err != nil {
		return uuid.Nil, err
	}
	if info == nil {
		return uuid.Nil, store.NewNotFoundError("no per-user information for folder")
	}
	return info.ReplGUID, nil
}
