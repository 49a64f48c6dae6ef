package domain

import (
	"context"
	"slices"
	"strings"
)

// Profile is the per-user record, keyed by user id and created on first access.
// ConferenceKeysToAttend and SessionWishlistKeys hold websafe keys without duplicates.
type Profile struct {
	UserID                 string
	DisplayName            string
	MainEmail              string
	TeeShirtSize           TeeShirtSize
	ConferenceKeysToAttend []string
	SessionWishlistKeys    []string
}

// NewProfile returns the profile created for identity on first access.
// Without a display name the local part of the email is used.
func NewProfile(identity Identity) *Profile {
	displayName := identity.DisplayName
	if displayName == "" {
		displayName, _, _ = strings.Cut(identity.Email, "@")
	}
	return &Profile{
		UserID:                 identity.UserID,
		DisplayName:            displayName,
		MainEmail:              identity.Email,
		TeeShirtSize:           TeeShirtSizeNotSpecified,
		ConferenceKeysToAttend: []string{},
		SessionWishlistKeys:    []string{},
	}
}

// Key returns the profile key.
func (p *Profile) Key() *Key {
	return ProfileKey(p.UserID)
}

// IsAttending reports whether the conference is in the attendance list.
func (p *Profile) IsAttending(websafeConferenceKey string) bool {
	return slices.Contains(p.ConferenceKeysToAttend, websafeConferenceKey)
}

// Attend adds the conference to the attendance list. It returns false if it was already there.
func (p *Profile) Attend(websafeConferenceKey string) bool {
	if p.IsAttending(websafeConferenceKey) {
		return false
	}
	p.ConferenceKeysToAttend = append(p.ConferenceKeysToAttend, websafeConferenceKey)
	return true
}

// Unattend removes the conference from the attendance list. It returns false if it was not there.
func (p *Profile) Unattend(websafeConferenceKey string) bool {
	i := slices.Index(p.ConferenceKeysToAttend, websafeConferenceKey)
	if i < 0 {
		return false
	}
	p.ConferenceKeysToAttend = slices.Delete(p.ConferenceKeysToAttend, i, i+1)
	return true
}

// AddToWishlist adds the session to the wishlist. It returns false if it was already there.
func (p *Profile) AddToWishlist(websafeSessionKey string) bool {
	if slices.Contains(p.SessionWishlistKeys, websafeSessionKey) {
		return false
	}
	p.SessionWishlistKeys = append(p.SessionWishlistKeys, websafeSessionKey)
	return true
}

// ProfileRepository defines the interface for profile storage
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	// GetForUpdate locks the row for the rest of the surrounding transaction.
	GetForUpdate(ctx context.Context, userID string) (*Profile, error)
	// Insert creates the profile unless one already exists for the user.
	Insert(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	FindByDisplayName(ctx context.Context, displayName string) (*Profile, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]*Profile, error)
	// CountWishlisting counts the profiles whose wishlist contains the session.
	CountWishlisting(ctx context.Context, websafeSessionKey string) (int, error)
}

// ProfileUpdate holds the user-modifiable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName  *string
	TeeShirtSize *TeeShirtSize
}

// ProfileService defines profile access for the authenticated caller.
type ProfileService interface {
	Get(ctx context.Context, actor Identity) (*Profile, error)
	Save(ctx context.Context, actor Identity, u ProfileUpdate) (*Profile, error)
}
