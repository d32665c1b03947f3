package service

import (
	"context"
	"strings"
	"time"

	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
)

// GhostedStatus is the result of PublicFolderIsGhosted.
type GhostedStatus struct {
	IsGhosted bool

	// Servers lists the replica servers, only when IsGhosted
	Servers []string
}

// OwningServers is the result of GetOwningServers.
type OwningServers struct {
	// Servers lists replica servers, the local one first when it has a replica
	Servers []string

	// CheapServersCount is the number of leading Servers that are cheap to reach
	CheapServersCount uint16
}

// PublicFolderIsGhosted reports whether the serving node lacks a replica of
// a public folder.
//
// Private sessions have no ghosted folders. The hierarchy roots are present
// on every public folder server and are never ghosted.
func (s *Service) PublicFolderIsGhosted(ctx context.Context, sess *session.Session, folderID store.ID) (status *GhostedStatus, err error) {
	defer s.observe("PublicFolderIsGhosted", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return nil, err
	}
	if sess.IsPrivate() {
		return &GhostedStatus{}, nil
	}

	folder, err := s.lookupPublicFolder(ctx, sess, folderID)
	if err != nil {
		return nil, err
	}
	if folder.Role.IsSubtreeRoot() || folder.HasReplicaOn(s.localServer) {
		return &GhostedStatus{}, nil
	}

	return &GhostedStatus{
		IsGhosted: true,
		Servers:   append([]string{}, folder.Replicas...),
	}, nil
}

// GetOwningServers lists the servers holding replicas of a public folder.
//
// Only public folder sessions can resolve public folder ids, so private
// sessions get not-supported.
func (s *Service) GetOwningServers(ctx context.Context, sess *session.Session, folderID store.ID) (owners *OwningServers, err error) {
	defer s.observe("GetOwningServers", time.Now(), &err)
	if err := requireSession(ctx, sess); err != nil {
		return nil, err
	}
	if sess.IsPrivate() {
		return nil, store.NewNotSupportedError("GetOwningServers requires a public folder logon")
	}

	folder, err := s.lookupPublicFolder(ctx, sess, folderID)
	if err != nil {
		return nil, err
	}

	owners = &OwningServers{Servers: make([]string, 0, len(folder.Replicas))}
	for _, server := range folder.Replicas {
		if strings.EqualFold(server, s.localServer) {
			owners.Servers = append([]string{server}, owners.Servers...)
			owners.CheapServersCount = 1
			continue
		}
		owners.Servers = append(owners.Servers, server)
	}
	return owners, nil
}

func (s *Service) lookupPublicFolder(ctx context.Context, sess *session.Session, folderID store.ID) (*store.PublicFolder, error) {
	if folderID.IsZero() {
		return nil, store.NewNotFoundError("folder id is zero")
	}
	ltid, err := s.expand(ctx, sess, folderID)
	if err != nil {
		return nil, err
	}
	return sess.Store.GetPublicFolder(ctx, sess.Database.GUID, ltid)
}
