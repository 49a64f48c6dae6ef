package domain

import (
	"context"
	"time"
)

// Session belongs to exactly one conference. Its id is only unique within that conference.
// StartTime is in seconds since midnight.
type Session struct {
	ID            string
	ConferenceID  string
	ConferenceKey *Key
	Name          string
	Highlights    string
	Duration      int
	TypeOfSession TypeOfSession
	Date          *time.Time
	StartTime     *int
	SpeakerKeys   []string
	CreatedAt     time.Time
}

// Key returns the session key, a child of its conference key.
func (s *Session) Key() *Key {
	return NewKey(KindSession, s.ID, s.ConferenceKey)
}

// WebsafeKey returns the encoded session key.
func (s *Session) WebsafeKey() string {
	return s.Key().Encode()
}

// WebsafeConferenceKey returns the encoded key of the owning conference.
func (s *Session) WebsafeConferenceKey() string {
	return s.ConferenceKey.Encode()
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	// ListByConference returns sessions in start time order.
	ListByConference(ctx context.Context, conferenceID string) ([]*Session, error)
	ListByConferenceAndType(ctx context.Context, conferenceID string, t TypeOfSession) ([]*Session, error)
	ListBySpeaker(ctx context.Context, websafeSpeakerKey string) ([]*Session, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Session, error)
	Query(ctx context.Context, plan QueryPlan) ([]*Session, error)
}

// CreateSessionInput is the data supplied to create a session. StartTime is "HH:MM".
type CreateSessionInput struct {
	Name          string
	Highlights    string
	Duration      int
	TypeOfSession string
	Date          *time.Time
	StartTime     string
	SpeakerKeys   []string
}

// SessionService defines session management and session listings.
type SessionService interface {
	Create(ctx context.Context, actor Identity, websafeConferenceKey string, in CreateSessionInput) (*Session, error)
	ListByConference(ctx context.Context, websafeConferenceKey string) ([]*Session, error)
	ListByType(ctx context.Context, websafeConferenceKey, typeOfSession string) ([]*Session, error)
	ListBySpeaker(ctx context.Context, websafeSpeakerKey string) ([]*Session, error)
	// Popular returns at most three sessions of the conference ranked by wishlist count.
	Popular(ctx context.Context, websafeConferenceKey string) ([]*Session, error)
	// BeforeTimeNotOfType returns sessions starting before beforeTime ("HH:MM") whose type is not excluded.
	BeforeTimeNotOfType(ctx context.Context, websafeConferenceKey, beforeTime, excluded string) ([]*Session, error)
}

// WishlistService defines the caller's session wishlist.
type WishlistService interface {
	// Add returns false when the session is already in the wishlist.
	Add(ctx context.Context, actor Identity, websafeSessionKey string) (bool, error)
	List(ctx context.Context, actor Identity) ([]*Session, error)
	ListForConference(ctx context.Context, actor Identity, websafeConferenceKey string) ([]*Session, error)
}

// FeaturedSpeakerService derives and serves the featured speaker of a conference.
type FeaturedSpeakerService interface {
	Derive(ctx context.Context, websafeConferenceKey string) (string, error)
	Get(ctx context.Context, websafeConferenceKey string) (string, error)
}
