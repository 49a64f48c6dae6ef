package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conferencecentral/internal/domain"
)

const (
	announcementsCacheKey = "RECENT_ANNOUNCEMENTS"
	announcementTemplate  = "Last chance to attend! The following conferences are nearly sold out: %s"

	// nearlySoldOutSeats is the largest seat count still announced as nearly sold out.
	nearlySoldOutSeats = 5
)

type announcementService struct {
	conferences    domain.ConferenceRepository
	cache          domain.Cache
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewAnnouncementService(conferences domain.ConferenceRepository, cache domain.Cache, logger *slog.Logger, timeout time.Duration) domain.AnnouncementService {
	return &announcementService{conferences: conferences, cache: cache, logger: logger, contextTimeout: timeout}
}

// nearlySoldOutPlan selects conferences with 0 < seatsAvailable <= 5.
func nearlySoldOutPlan() domain.QueryPlan {
	return domain.QueryPlan{
		Kind: domain.KindConference,
		Where: []domain.Conjunction{{
			{Property: domain.PropSeatsAvailable, Operator: domain.OpLTEQ, Value: nearlySoldOutSeats},
			{Property: domain.PropSeatsAvailable, Operator: domain.OpGT, Value: 0},
		}},
		Order: []string{domain.PropSeatsAvailable, domain.PropName},
	}
}

// Refresh rebuilds the announcement. With no nearly sold out conference the cached
// announcement is removed and "" is returned.
func (s *announcementService) Refresh(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	confs, err := s.conferences.Query(ctx, nearlySoldOutPlan())
	if err != nil {
		return "", fmt.Errorf("query nearly sold out conferences: %w", err)
	}
	if len(confs) == 0 {
		if err := s.cache.Delete(ctx, announcementsCacheKey); err != nil {
			return "", fmt.Errorf("delete announcement: %w", err)
		}
		return "", nil
	}
	names := make([]string, 0, len(confs))
	for _, c := range confs {
		names = append(names, c.Name)
	}
	announcement := fmt.Sprintf(announcementTemplate, strings.Join(names, ", "))
	if err := s.cache.Set(ctx, announcementsCacheKey, announcement); err != nil {
		return "", fmt.Errorf("cache announcement: %w", err)
	}
	return announcement, nil
}

func (s *announcementService) Get(ctx context.Context) (string, error) {
	announcement, ok, err := s.cache.Get(ctx, announcementsCacheKey)
	if err != nil {
		s.logger.WarnContext(ctx, "announcement cache read failed", "error", err)
		return "", nil
	}
	if !ok {
		return "", nil
	}
	return announcement, nil
}

// RunAnnouncements refreshes the announcement every interval until ctx is done.
func RunAnnouncements(ctx context.Context, svc domain.AnnouncementService, interval time.Duration, logger *slog.Logger) {
	refresh := func() {
		if _, err := svc.Refresh(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorContext(ctx, "failed to refresh announcement", "error", err)
		}
	}
	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
