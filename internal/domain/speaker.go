package domain

import (
	"context"
	"time"
)

// Speaker is referenced by sessions through its websafe key.
type Speaker struct {
	ID           string
	Name         string
	Bio          string
	Organization string
	CreatedAt    time.Time
}

// Key returns the speaker key.
func (s *Speaker) Key() *Key {
	return NewKey(KindSpeaker, s.ID, nil)
}

// WebsafeKey returns the encoded speaker key.
func (s *Speaker) WebsafeKey() string {
	return s.Key().Encode()
}

// SpeakerRepository defines the interface for speaker storage
type SpeakerRepository interface {
	Create(ctx context.Context, s *Speaker) error
	GetByID(ctx context.Context, id string) (*Speaker, error)
	// ListByIDs returns the speakers that exist among ids.
	ListByIDs(ctx context.Context, ids []string) ([]*Speaker, error)
	// List returns all speakers ordered by name.
	List(ctx context.Context) ([]*Speaker, error)
}

// CreateSpeakerInput is the data supplied to create a speaker.
type CreateSpeakerInput struct {
	Name         string
	Bio          string
	Organization string
}

// SpeakerService defines speaker management
type SpeakerService interface {
	Create(ctx context.Context, actor Identity, in CreateSpeakerInput) (*Speaker, error)
	List(ctx context.Context) ([]*Speaker, error)
}
