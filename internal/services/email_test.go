package services

import (
	"context"
	"errors"
	"testing"

	"conferencecentral/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_SendConferenceCreated(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer, discardLogger())

	data := &domain.ConferenceCreatedEmailData{Email: "ada@example.com", OrganizerName: "Ada", ConferenceName: "GopherCon"}
	require.NoError(t, svc.SendConferenceCreated(context.Background(), data))

	assert.Equal(t, "conference_created", renderer.name)
	assert.Equal(t, data, renderer.data)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, sentMail{to: "ada@example.com", subject: "subject", html: "<p>html</p>", text: "text"}, mailer.sent[0])
}

func TestEmailService_Errors(t *testing.T) {
	svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, discardLogger())
	assert.Error(t, svc.SendConferenceCreated(context.Background(), nil))

	svc = NewEmailService(&fakeMailer{}, &fakeRenderer{err: errors.New("bad template")}, discardLogger())
	assert.ErrorContains(t, svc.SendConferenceCreated(context.Background(), &domain.ConferenceCreatedEmailData{Email: "a@example.com"}), "bad template")

	svc = NewEmailService(&fakeMailer{err: errors.New("throttled")}, &fakeRenderer{}, discardLogger())
	assert.ErrorContains(t, svc.SendConferenceCreated(context.Background(), &domain.ConferenceCreatedEmailData{Email: "a@example.com"}), "throttled")
}
