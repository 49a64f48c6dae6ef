package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/metrics"
)

const (
	featuredSpeakerKeyPrefix = "FEATURED_SPEAKER_"
	featuredSpeakerTemplate  = "Featured speaker: %s\nSessions: %s"
)

// FeaturedSpeakerCacheKey returns the cache key holding the featured speaker of a conference.
func FeaturedSpeakerCacheKey(websafeConferenceKey string) string {
	return featuredSpeakerKeyPrefix + websafeConferenceKey
}

type featuredSpeakerService struct {
	conferences    domain.ConferenceRepository
	sessions       domain.SessionRepository
	speakers       domain.SpeakerRepository
	cache          domain.Cache
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewFeaturedSpeakerService(conferences domain.ConferenceRepository,
	sessions domain.SessionRepository,
	speakers domain.SpeakerRepository,
	cache domain.Cache,
	logger *slog.Logger,
	timeout time.Duration,
) domain.FeaturedSpeakerService {
	return &featuredSpeakerService{
		conferences:    conferences,
		sessions:       sessions,
		speakers:       speakers,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// Derive recomputes the featured speaker of the conference: the speaker of the most sessions,
// provided that is more than one. Ties go to the smallest speaker key. When there is no such
// speaker it returns "" and leaves any earlier cached value in place.
func (s *featuredSpeakerService) Derive(ctx context.Context, websafeConferenceKey string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := getConference(ctx, s.conferences, websafeConferenceKey)
	if err != nil {
		return "", err
	}
	sessions, err := s.sessions.ListByConference(ctx, conf.ID)
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}

	speakerKey, names := mostFrequentSpeaker(sessions)
	if len(names) <= 1 {
		return "", nil
	}

	key, err := domain.DecodeKeyOfKind(speakerKey, domain.KindSpeaker)
	if err != nil {
		return "", err
	}
	sp, err := s.speakers.GetByID(ctx, key.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("featured speaker %s: %w", speakerKey, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get speaker: %w", err)
	}

	message := fmt.Sprintf(featuredSpeakerTemplate, sp.Name, strings.Join(names, ", "))
	wsck := conf.WebsafeKey()
	if err := s.cache.Set(ctx, FeaturedSpeakerCacheKey(wsck), message); err != nil {
		return "", fmt.Errorf("cache featured speaker: %w", err)
	}
	metrics.FeaturedSpeakerUpdates.Inc()
	s.logger.InfoContext(ctx, "featured speaker updated", "conference_id", conf.ID, "speaker_id", sp.ID, "sessions", len(names))
	return message, nil
}

// mostFrequentSpeaker groups session names by speaker key, in session order, and returns
// the speaker with the most sessions. Equal counts are broken by the smaller key.
func mostFrequentSpeaker(sessions []*domain.Session) (string, []string) {
	bySpeaker := make(map[string][]string)
	for _, sess := range sessions {
		for _, k := range sess.SpeakerKeys {
			bySpeaker[k] = append(bySpeaker[k], sess.Name)
		}
	}
	var best string
	var bestNames []string
	for k, names := range bySpeaker {
		if len(names) > len(bestNames) || (len(names) == len(bestNames) && k < best) {
			best, bestNames = k, names
		}
	}
	return best, bestNames
}

func (s *featuredSpeakerService) Get(ctx context.Context, websafeConferenceKey string) (string, error) {
	key, err := domain.DecodeKeyOfKind(websafeConferenceKey, domain.KindConference)
	if err != nil {
		return "", err
	}
	message, ok, err := s.cache.Get(ctx, FeaturedSpeakerCacheKey(key.Encode()))
	if err != nil {
		// the cache is best-effort
		s.logger.WarnContext(ctx, "featured speaker cache read failed", "error", err)
		return "", nil
	}
	if !ok {
		return "", nil
	}
	return message, nil
}
