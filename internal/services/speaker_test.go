package services

import (
	"context"
	"testing"
	"time"

	"conferencecentral/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakerService(t *testing.T) {
	repo := newFakeSpeakerRepo()
	svc := NewSpeakerService(repo, time.Second)

	_, err := svc.Create(context.Background(), ada, domain.CreateSpeakerInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(context.Background(), domain.Identity{}, domain.CreateSpeakerInput{Name: "Rob"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	for _, name := range []string{"Rob", "Ken"} {
		sp, err := svc.Create(context.Background(), ada, domain.CreateSpeakerInput{Name: name, Organization: "Bell Labs"})
		require.NoError(t, err)
		assert.NotEmpty(t, sp.ID)
		assert.NotEmpty(t, sp.WebsafeKey())
	}

	speakers, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, speakers, 2)
	assert.Equal(t, "Ken", speakers[0].Name)
	assert.Equal(t, "Rob", speakers[1].Name)
}

func TestSpeakerService_ListEmpty(t *testing.T) {
	speakers, err := NewSpeakerService(newFakeSpeakerRepo(), time.Second).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, speakers)
	assert.Empty(t, speakers)
}
