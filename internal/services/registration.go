package services

import (
	"context"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"
)

type registrationService struct {
	conferences    domain.ConferenceRepository
	profiles       domain.ProfileRepository
	tx             domain.Transactor
	contextTimeout time.Duration
}

// NewRegistrationService returns the registration ledger. Both the profile and the
// conference row are written in one transaction, locked profile first.
func NewRegistrationService(conferences domain.ConferenceRepository, profiles domain.ProfileRepository, tx domain.Transactor, timeout time.Duration) domain.RegistrationService {
	return &registrationService{
		conferences:    conferences,
		profiles:       profiles,
		tx:             tx,
		contextTimeout: timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, actor domain.Identity, websafeConferenceKey string) (err error) {
	defer func() { metrics.RecordRegistration("register", err) }()

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return err
	}
	key, err := domain.DecodeKeyOfKind(websafeConferenceKey, domain.KindConference)
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := lockOrCreateProfile(ctx, s.profiles, actor)
		if err != nil {
			return err
		}
		c, err := lockConference(ctx, s.conferences, key)
		if err != nil {
			return err
		}
		wsck := c.WebsafeKey()
		if p.IsAttending(wsck) {
			return domain.ErrAlreadyRegistered
		}
		if c.SeatsAvailable <= 0 {
			return domain.ErrSoldOut
		}
		p.Attend(wsck)
		c.SeatsAvailable--
		return s.save(ctx, p, c)
	})
}

func (s *registrationService) Unregister(ctx context.Context, actor domain.Identity, websafeConferenceKey string) (removed bool, err error) {
	defer func() { metrics.RecordRegistration("unregister", err) }()

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return false, err
	}
	key, err := domain.DecodeKeyOfKind(websafeConferenceKey, domain.KindConference)
	if err != nil {
		return false, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		removed = false
		p, err := lockOrCreateProfile(ctx, s.profiles, actor)
		if err != nil {
			return err
		}
		c, err := lockConference(ctx, s.conferences, key)
		if err != nil {
			return err
		}
		if !p.Unattend(c.WebsafeKey()) {
			return nil
		}
		c.SeatsAvailable++
		if c.SeatsAvailable > c.MaxAttendees {
			c.SeatsAvailable = c.MaxAttendees
		}
		if err := s.save(ctx, p, c); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *registrationService) save(ctx context.Context, p *domain.Profile, c *domain.Conference) error {
	if err := s.profiles.Update(ctx, p); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.conferences.Update(ctx, c); err != nil {
		return fmt.Errorf("update conference: %w", err)
	}
	return nil
}
