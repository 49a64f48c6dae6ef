package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
)

// popularLimit is the number of sessions returned by Popular.
const popularLimit = 3

type sessionService struct {
	conferences    domain.ConferenceRepository
	sessions       domain.SessionRepository
	speakers       domain.SpeakerRepository
	profiles       domain.ProfileRepository
	tasks          domain.TaskQueue
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewSessionService(conferences domain.ConferenceRepository,
	sessions domain.SessionRepository,
	speakers domain.SpeakerRepository,
	profiles domain.ProfileRepository,
	tasks domain.TaskQueue,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SessionService {
	return &sessionService{
		conferences:    conferences,
		sessions:       sessions,
		speakers:       speakers,
		profiles:       profiles,
		tasks:          tasks,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *sessionService) Create(ctx context.Context, actor domain.Identity, websafeConferenceKey string, in domain.CreateSessionInput) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: session 'name' field required", domain.ErrInvalidInput)
	}
	if websafeConferenceKey == "" {
		return nil, fmt.Errorf("%w: websafeConferenceKey field required", domain.ErrInvalidInput)
	}
	conf, err := getConference(ctx, s.conferences, websafeConferenceKey)
	if err != nil {
		return nil, err
	}
	if conf.OrganizerUserID != actor.UserID {
		return nil, fmt.Errorf("%w: only the conference owner can add sessions", domain.ErrForbidden)
	}

	typeOfSession, err := domain.ParseTypeOfSession(in.TypeOfSession)
	if err != nil {
		return nil, err
	}
	if in.Duration < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", domain.ErrInvalidInput)
	}
	if in.Date != nil && !conf.Contains(*in.Date) {
		return nil, fmt.Errorf("%w: date does not fall within conference dates", domain.ErrInvalidInput)
	}
	var startTime *int
	if in.StartTime != "" {
		seconds, err := domain.SecondsFromTimeString(in.StartTime)
		if err != nil {
			return nil, err
		}
		startTime = &seconds
	}
	speakerKeys, err := s.resolveSpeakers(ctx, in.SpeakerKeys)
	if err != nil {
		return nil, err
	}

	sess := &domain.Session{
		ConferenceID:  conf.ID,
		ConferenceKey: conf.Key(),
		Name:          name,
		Highlights:    in.Highlights,
		Duration:      in.Duration,
		TypeOfSession: typeOfSession,
		Date:          in.Date,
		StartTime:     startTime,
		SpeakerKeys:   speakerKeys,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if len(sess.SpeakerKeys) > 0 {
		err := s.tasks.Enqueue(ctx, domain.TaskSetFeaturedSpeaker, map[string]string{
			domain.TaskParamWebsafeConference: conf.WebsafeKey(),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to enqueue featured speaker task", "conference_id", conf.ID, "error", err)
		}
	}
	return sess, nil
}

// resolveSpeakers checks that every speaker exists and returns their canonical keys in
// input order without duplicates.
func (s *sessionService) resolveSpeakers(ctx context.Context, websafeKeys []string) ([]string, error) {
	ids := make([]string, 0, len(websafeKeys))
	for _, wssk := range websafeKeys {
		key, err := domain.DecodeKeyOfKind(wssk, domain.KindSpeaker)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(ids, key.ID) {
			ids = append(ids, key.ID)
		}
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	found, err := s.speakers.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	byID := make(map[string]*domain.Speaker, len(found))
	for _, sp := range found {
		byID[sp.ID] = sp
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		sp, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("speaker %s: %w", domain.NewKey(domain.KindSpeaker, id, nil), domain.ErrNotFound)
		}
		keys = append(keys, sp.WebsafeKey())
	}
	return keys, nil
}

func (s *sessionService) ListByConference(ctx context.Context, websafeConferenceKey string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := getConference(ctx, s.conferences, websafeConferenceKey)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByConference(ctx, conf.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return nonNil(sessions), nil
}

func (s *sessionService) ListByType(ctx context.Context, websafeConferenceKey, typeOfSession string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := domain.ParseTypeOfSession(typeOfSession)
	if err != nil {
		return nil, err
	}
	conf, err := getConference(ctx, s.conferences, websafeConferenceKey)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByConferenceAndType(ctx, conf.ID, t)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return nonNil(sessions), nil
}

func (s *sessionService) ListBySpeaker(ctx context.Context, websafeSpeakerKey string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	key, err := domain.DecodeKeyOfKind(websafeSpeakerKey, domain.KindSpeaker)
	if err != nil {
		return nil, err
	}
	sp, err := s.speakers.GetByID(ctx, key.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no speaker found with key %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	sessions, err := s.sessions.ListBySpeaker(ctx, sp.WebsafeKey())
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return nonNil(sessions), nil
}

func (s *sessionService) Popular(ctx context.Context, websafeConferenceKey string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := getConference(ctx, s.conferences, websafeConferenceKey)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByConference(ctx, conf.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	counts := make([]int, len(sessions))
	for i, sess := range sessions {
		n, err := s.profiles.CountWishlisting(ctx, sess.WebsafeKey())
		if err != nil {
			return nil, fmt.Errorf("count wishlists: %w", err)
		}
		counts[i] = n
	}
	return RankByPopularity(sessions, counts, popularLimit), nil
}

// RankByPopularity drops sessions with a zero count and returns at most limit of the rest,
// most wishlisted first. Sessions with equal counts keep their relative order.
func RankByPopularity(sessions []*domain.Session, counts []int, limit int) []*domain.Session {
	type ranked struct {
		session *domain.Session
		count   int
	}
	candidates := make([]ranked, 0, len(sessions))
	for i, sess := range sessions {
		if i < len(counts) && counts[i] > 0 {
			candidates = append(candidates, ranked{session: sess, count: counts[i]})
		}
	}
	slices.SortStableFunc(candidates, func(a, b ranked) int {
		return b.count - a.count
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]*domain.Session, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.session)
	}
	return out
}

func (s *sessionService) BeforeTimeNotOfType(ctx context.Context, websafeConferenceKey, beforeTime, excluded string) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	seconds, err := domain.SecondsFromTimeString(beforeTime)
	if err != nil {
		return nil, err
	}
	excludedType, err := domain.ParseTypeOfSession(excluded)
	if err != nil {
		return nil, err
	}
	conf, err := getConference(ctx, s.conferences, websafeConferenceKey)
	if err != nil {
		return nil, err
	}
	plan := query.ExpandExclusion(conf.WebsafeKey(), seconds, excludedType, domain.TypesOfSession())
	sessions, err := s.sessions.Query(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return nonNil(sessions), nil
}

func nonNil(sessions []*domain.Session) []*domain.Session {
	if sessions == nil {
		return []*domain.Session{}
	}
	return sessions
}
