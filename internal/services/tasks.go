package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"conferencecentral/internal/domain"
)

// RegisterTasks binds the deferred tasks to their handlers.
func RegisterTasks(reg domain.TaskRegistry, featured domain.FeaturedSpeakerService, email domain.EmailService, logger *slog.Logger) {
	reg.Handle(domain.TaskSetFeaturedSpeaker, func(ctx context.Context, params map[string]string) error {
		wsck := params[domain.TaskParamWebsafeConference]
		_, err := featured.Derive(ctx, wsck)
		if permanent(err) {
			logger.WarnContext(ctx, "skipping featured speaker task", "websafe_conference_key", wsck, "error", err)
			return nil
		}
		return err
	})

	reg.Handle(domain.TaskSendConfirmationEmail, func(ctx context.Context, params map[string]string) error {
		to := params[domain.TaskParamEmail]
		if to == "" {
			logger.WarnContext(ctx, "skipping confirmation email without recipient")
			return nil
		}
		err := email.SendConferenceCreated(ctx, &domain.ConferenceCreatedEmailData{
			Email:          to,
			OrganizerName:  params[domain.TaskParamOrganizerName],
			ConferenceName: params[domain.TaskParamConferenceName],
		})
		if err != nil {
			return fmt.Errorf("send confirmation email: %w", err)
		}
		return nil
	})
}

// permanent reports errors that a retry cannot fix.
func permanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound)
}
