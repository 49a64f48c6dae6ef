package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"conferencecentral/internal/domain"
)

type speakerService struct {
	speakers       domain.SpeakerRepository
	contextTimeout time.Duration
}

func NewSpeakerService(speakers domain.SpeakerRepository, timeout time.Duration) domain.SpeakerService {
	return &speakerService{speakers: speakers, contextTimeout: timeout}
}

func (s *speakerService) Create(ctx context.Context, actor domain.Identity, in domain.CreateSpeakerInput) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: speaker 'name' field required", domain.ErrInvalidInput)
	}
	sp := &domain.Speaker{
		Name:         name,
		Bio:          in.Bio,
		Organization: in.Organization,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.speakers.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("create speaker: %w", err)
	}
	return sp, nil
}

func (s *speakerService) List(ctx context.Context) ([]*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	speakers, err := s.speakers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	if speakers == nil {
		speakers = []*domain.Speaker{}
	}
	return speakers, nil
}
