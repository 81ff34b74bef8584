package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"meeting-minutes-go/internal/types"
)

// sourceRef pins a source file ID to the meeting that owns it. Creating it with
// a does-not-exist precondition is what makes Create atomic per source file.
type sourceRef struct {
	MeetingID string `firestore:"meeting_id"`
}

// Firestore persists meetings in one collection plus a sibling uniqueness
// collection keyed by source file ID.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestore connects to the given project. The sources collection name is
// derived from the meetings collection.
func NewFirestore(ctx context.Context, projectID, collection string) (*Firestore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &Firestore{client: client, collection: collection}, nil
}

func (s *Firestore) meetings() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *Firestore) sources() *firestore.CollectionRef {
	return s.client.Collection(s.collection + "_sources")
}

func (s *Firestore) Create(ctx context.Context, m *types.Meeting) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		srcDoc := s.sources().Doc(m.SourceFileID)
		if _, err := tx.Get(srcDoc); err == nil {
			return ErrAlreadyExists
		} else if status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(srcDoc, sourceRef{MeetingID: m.ID}); err != nil {
			return err
		}
		return tx.Create(s.meetings().Doc(m.ID), m)
	})
	if err == ErrAlreadyExists {
		return ErrAlreadyExists
	}
	if status.Code(err) == codes.AlreadyExists {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	return nil
}

func (s *Firestore) Get(ctx context.Context, id string) (*types.Meeting, error) {
	snap, err := s.meetings().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}

	var m types.Meeting
	if err := snap.DataTo(&m); err != nil {
		return nil, fmt.Errorf("decode meeting: %w", err)
	}
	return &m, nil
}

func (s *Firestore) GetBySourceFileID(ctx context.Context, sourceFileID string) (*types.Meeting, error) {
	snap, err := s.sources().Doc(sourceFileID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source ref: %w", err)
	}

	var ref sourceRef
	if err := snap.DataTo(&ref); err != nil {
		return nil, fmt.Errorf("decode source ref: %w", err)
	}
	return s.Get(ctx, ref.MeetingID)
}

func (s *Firestore) Update(ctx context.Context, m *types.Meeting) error {
	m.UpdatedAt = time.Now().UTC()

	// Get-then-set inside the transaction keeps an update racing a delete from
	// resurrecting the document without its source ref.
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc := s.meetings().Doc(m.ID)
		if _, err := tx.Get(doc); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		return tx.Set(doc, m)
	})
	if err == ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	return nil
}

func (s *Firestore) List(ctx context.Context) ([]*types.Meeting, error) {
	snaps, err := s.meetings().OrderBy("created_at", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}

	out := make([]*types.Meeting, 0, len(snaps))
	for _, snap := range snaps {
		var m types.Meeting
		if err := snap.DataTo(&m); err != nil {
			return nil, fmt.Errorf("decode meeting %s: %w", snap.Ref.ID, err)
		}
		out = append(out, &m)
	}
	return out, nil
}

func (s *Firestore) Delete(ctx context.Context, id string) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Delete(s.sources().Doc(m.SourceFileID)); err != nil {
			return err
		}
		return tx.Delete(s.meetings().Doc(id))
	})
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Firestore) Close() error {
	return s.client.Close()
}
