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
	"conferencecentral/internal/metrics"
	"conferencecentral/internal/query"
)

type conferenceService struct {
	conferences    domain.ConferenceRepository
	profiles       domain.ProfileRepository
	tx             domain.Transactor
	tasks          domain.TaskQueue
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewConferenceService(conferences domain.ConferenceRepository,
	profiles domain.ProfileRepository,
	tx domain.Transactor,
	tasks domain.TaskQueue,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ConferenceService {
	return &conferenceService{
		conferences:    conferences,
		profiles:       profiles,
		tx:             tx,
		tasks:          tasks,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *conferenceService) Create(ctx context.Context, actor domain.Identity, in domain.CreateConferenceInput) (*domain.ConferenceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: conference 'name' field required", domain.ErrInvalidInput)
	}
	if in.MaxAttendees < 0 {
		return nil, fmt.Errorf("%w: maxAttendees must not be negative", domain.ErrInvalidInput)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", domain.ErrInvalidInput)
	}

	// the organizer's profile is the parent of the conference
	organizer, err := getOrCreateProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Conference{
		OrganizerUserID: actor.UserID,
		Name:            name,
		Description:     in.Description,
		City:            in.City,
		Topics:          slices.Clone(in.Topics),
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Month:           domain.MonthOf(in.StartDate),
		MaxAttendees:    in.MaxAttendees,
		SeatsAvailable:  in.MaxAttendees,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if c.City == "" {
		c.City = domain.DefaultConferenceCity
	}
	if len(c.Topics) == 0 {
		c.Topics = domain.DefaultConferenceTopics()
	}
	if err := s.conferences.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create conference: %w", err)
	}

	if organizer.MainEmail != "" {
		err := s.tasks.Enqueue(ctx, domain.TaskSendConfirmationEmail, map[string]string{
			domain.TaskParamEmail:          organizer.MainEmail,
			domain.TaskParamConferenceName: c.Name,
			domain.TaskParamOrganizerName:  organizer.DisplayName,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to enqueue confirmation email", "conference_id", c.ID, "error", err)
		}
	}

	return &domain.ConferenceView{Conference: c, OrganizerDisplayName: organizer.DisplayName}, nil
}

func (s *conferenceService) Update(ctx context.Context, actor domain.Identity, websafeKey string, u domain.ConferenceUpdate) (*domain.ConferenceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	key, err := domain.DecodeKeyOfKind(websafeKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return nil, fmt.Errorf("%w: conference 'name' must not be empty", domain.ErrInvalidInput)
	}
	if u.MaxAttendees != nil && *u.MaxAttendees < 0 {
		return nil, fmt.Errorf("%w: maxAttendees must not be negative", domain.ErrInvalidInput)
	}

	var updated *domain.Conference
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := lockConference(ctx, s.conferences, key)
		if err != nil {
			return err
		}
		if c.OrganizerUserID != actor.UserID {
			return fmt.Errorf("%w: only the owner can update the conference", domain.ErrForbidden)
		}
		c.Apply(u)
		if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
			return fmt.Errorf("%w: endDate is before startDate", domain.ErrInvalidInput)
		}
		c.UpdatedAt = time.Now().UTC()
		if err := s.conferences.Update(ctx, c); err != nil {
			return fmt.Errorf("update conference: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	views, err := s.withOrganizers(ctx, []*domain.Conference{updated})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *conferenceService) Get(ctx context.Context, websafeKey string) (*domain.ConferenceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := getConference(ctx, s.conferences, websafeKey)
	if err != nil {
		return nil, err
	}
	views, err := s.withOrganizers(ctx, []*domain.Conference{c})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *conferenceService) ListCreated(ctx context.Context, actor domain.Identity) ([]*domain.ConferenceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	organizer, err := getOrCreateProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}
	confs, err := s.conferences.ListByOrganizer(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	return viewsWithName(confs, organizer.DisplayName), nil
}

func (s *conferenceService) ListByOrganizer(ctx context.Context, displayName string) ([]*domain.ConferenceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	organizer, err := s.profiles.FindByDisplayName(ctx, displayName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("organizer not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find organizer: %w", err)
	}
	confs, err := s.conferences.ListByOrganizer(ctx, organizer.UserID)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	return viewsWithName(confs, organizer.DisplayName), nil
}

func (s *conferenceService) Query(ctx context.Context, filters []domain.QueryFilter) ([]*domain.ConferenceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	plan, err := query.CompileConferenceFilters(filters)
	if err != nil {
		metrics.RecordFilterRejection(err)
		return nil, err
	}
	confs, err := s.conferences.Query(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	return s.withOrganizers(ctx, confs)
}

func (s *conferenceService) ListAttending(ctx context.Context, actor domain.Identity) ([]*domain.ConferenceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := getOrCreateProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(p.ConferenceKeysToAttend))
	for _, wsck := range p.ConferenceKeysToAttend {
		key, err := domain.DecodeKeyOfKind(wsck, domain.KindConference)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping malformed attendance key", "user_id", p.UserID, "key", wsck)
			continue
		}
		ids = append(ids, key.ID)
	}
	if len(ids) == 0 {
		return []*domain.ConferenceView{}, nil
	}
	confs, err := s.conferences.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list attended conferences: %w", err)
	}
	// keep the order in which the caller registered
	byID := make(map[string]*domain.Conference, len(confs))
	for _, c := range confs {
		byID[c.ID] = c
	}
	ordered := make([]*domain.Conference, 0, len(confs))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return s.withOrganizers(ctx, ordered)
}

func (s *conferenceService) withOrganizers(ctx context.Context, confs []*domain.Conference) ([]*domain.ConferenceView, error) {
	userIDs := make([]string, 0, len(confs))
	for _, c := range confs {
		if !slices.Contains(userIDs, c.OrganizerUserID) {
			userIDs = append(userIDs, c.OrganizerUserID)
		}
	}
	names, err := displayNames(ctx, s.profiles, userIDs)
	if err != nil {
		return nil, err
	}
	views := make([]*domain.ConferenceView, 0, len(confs))
	for _, c := range confs {
		views = append(views, &domain.ConferenceView{Conference: c, OrganizerDisplayName: names[c.OrganizerUserID]})
	}
	return views, nil
}

func viewsWithName(confs []*domain.Conference, displayName string) []*domain.ConferenceView {
	views := make([]*domain.ConferenceView, 0, len(confs))
	for _, c := range confs {
		views = append(views, &domain.ConferenceView{Conference: c, OrganizerDisplayName: displayName})
	}
	return views
}

// getConference decodes a websafe conference key and loads the conference it names.
func getConference(ctx context.Context, conferences domain.ConferenceRepository, websafeKey string) (*domain.Conference, error) {
	key, err := domain.DecodeKeyOfKind(websafeKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	c, err := conferences.GetByID(ctx, key.ID)
	return checkConference(c, err, key)
}

func lockConference(ctx context.Context, conferences domain.ConferenceRepository, key *domain.Key) (*domain.Conference, error) {
	c, err := conferences.GetForUpdate(ctx, key.ID)
	return checkConference(c, err, key)
}

// checkConference treats a key whose ancestry does not match the stored conference as unknown.
func checkConference(c *domain.Conference, err error, key *domain.Key) (*domain.Conference, error) {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no conference found with key %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if !c.Key().Equal(key) {
		return nil, fmt.Errorf("no conference found with key %s: %w", key, domain.ErrNotFound)
	}
	return c, nil
}
