package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
)

type wishlistService struct {
	conferences    domain.ConferenceRepository
	sessions       domain.SessionRepository
	profiles       domain.ProfileRepository
	tx             domain.Transactor
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewWishlistService(conferences domain.ConferenceRepository,
	sessions domain.SessionRepository,
	profiles domain.ProfileRepository,
	tx domain.Transactor,
	logger *slog.Logger,
	timeout time.Duration,
) domain.WishlistService {
	return &wishlistService{
		conferences:    conferences,
		sessions:       sessions,
		profiles:       profiles,
		tx:             tx,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *wishlistService) Add(ctx context.Context, actor domain.Identity, websafeSessionKey string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return false, err
	}
	key, err := domain.DecodeKeyOfKind(websafeSessionKey, domain.KindSession)
	if err != nil {
		return false, err
	}
	sess, err := s.sessions.GetByID(ctx, key.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("no session found with key %s: %w", key, domain.ErrNotFound)
		}
		return false, fmt.Errorf("get session: %w", err)
	}
	if !sess.Key().Equal(key) {
		return false, fmt.Errorf("no session found with key %s: %w", key, domain.ErrNotFound)
	}

	var added bool
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		added = false
		p, err := lockOrCreateProfile(ctx, s.profiles, actor)
		if err != nil {
			return err
		}
		if !p.AddToWishlist(sess.WebsafeKey()) {
			return nil
		}
		if err := s.profiles.Update(ctx, p); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *wishlistService) List(ctx context.Context, actor domain.Identity) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.wishlist(ctx, actor)
}

func (s *wishlistService) ListForConference(ctx context.Context, actor domain.Identity, websafeConferenceKey string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	conf, err := getConference(ctx, s.conferences, websafeConferenceKey)
	if err != nil {
		return nil, err
	}
	all, err := s.wishlist(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Session, 0, len(all))
	for _, sess := range all {
		if sess.ConferenceID == conf.ID {
			out = append(out, sess)
		}
	}
	return out, nil
}

// wishlist loads the caller's wishlisted sessions in the order they were added.
// Sessions that no longer exist are skipped.
func (s *wishlistService) wishlist(ctx context.Context, actor domain.Identity) ([]*domain.Session, error) {
	p, err := getOrCreateProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(p.SessionWishlistKeys))
	for _, wssk := range p.SessionWishlistKeys {
		key, err := domain.DecodeKeyOfKind(wssk, domain.KindSession)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping malformed wishlist key", "user_id", p.UserID, "key", wssk)
			continue
		}
		ids = append(ids, key.ID)
	}
	if len(ids) == 0 {
		return []*domain.Session{}, nil
	}
	found, err := s.sessions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list wishlist sessions: %w", err)
	}
	byID := make(map[string]*domain.Session, len(found))
	for _, sess := range found {
		byID[sess.ID] = sess
	}
	out := make([]*domain.Session, 0, len(found))
	for _, id := range ids {
		if sess, ok := byID[id]; ok {
			out = append(out, sess)
		}
	}
	return out, nil
}
