package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conferencecentral/internal/domain"
)

type profileService struct {
	profiles       domain.ProfileRepository
	tx             domain.Transactor
	contextTimeout time.Duration
}

// NewProfileService returns a ProfileService backed by the given repository.
func NewProfileService(profiles domain.ProfileRepository, tx domain.Transactor, timeout time.Duration) domain.ProfileService {
	return &profileService{profiles: profiles, tx: tx, contextTimeout: timeout}
}

func (s *profileService) Get(ctx context.Context, actor domain.Identity) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return getOrCreateProfile(ctx, s.profiles, actor)
}

func (s *profileService) Save(ctx context.Context, actor domain.Identity, u domain.ProfileUpdate) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var saved *domain.Profile
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := lockOrCreateProfile(ctx, s.profiles, actor)
		if err != nil {
			return err
		}
		// empty values leave the field unchanged
		if u.DisplayName != nil {
			if name := strings.TrimSpace(*u.DisplayName); name != "" {
				p.DisplayName = name
			}
		}
		if u.TeeShirtSize != nil && *u.TeeShirtSize != "" {
			p.TeeShirtSize = *u.TeeShirtSize
		}
		if err := s.profiles.Update(ctx, p); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func requireActor(actor domain.Identity) error {
	if actor.UserID == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

// getOrCreateProfile returns the caller's profile, creating it on first access.
func getOrCreateProfile(ctx context.Context, profiles domain.ProfileRepository, actor domain.Identity) (*domain.Profile, error) {
	p, err := profiles.Get(ctx, actor.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := profiles.Insert(ctx, domain.NewProfile(actor)); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	// a concurrent first access may have inserted it first
	p, err = profiles.Get(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// lockOrCreateProfile is getOrCreateProfile inside a transaction, holding the row lock.
func lockOrCreateProfile(ctx context.Context, profiles domain.ProfileRepository, actor domain.Identity) (*domain.Profile, error) {
	p, err := profiles.GetForUpdate(ctx, actor.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lock profile: %w", err)
	}
	if err := profiles.Insert(ctx, domain.NewProfile(actor)); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	p, err = profiles.GetForUpdate(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock profile: %w", err)
	}
	return p, nil
}

// displayNames maps organizer user ids to profile display names. Missing profiles map to "".
func displayNames(ctx context.Context, profiles domain.ProfileRepository, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	found, err := profiles.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list organizer profiles: %w", err)
	}
	for _, p := range found {
		names[p.UserID] = p.DisplayName
	}
	return names, nil
}
