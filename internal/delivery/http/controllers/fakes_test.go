package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var testActor = domain.Identity{UserID: "user-123", Email: "ada@example.com", DisplayName: "Ada"}

func newRequest(method, target, body string, authenticated bool) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req = req.WithContext(middleware.SetIdentity(req.Context(), testActor))
	}
	return req
}

// decodeEnvelope decodes the response envelope and, when out is non-nil, its data into out.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, out any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if out != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return envelope
}

func sampleConference() *domain.ConferenceView {
	start := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	return &domain.ConferenceView{
		Conference: &domain.Conference{
			ID:              "c1",
			OrganizerUserID: "user-123",
			Name:            "GopherCon",
			City:            "Berlin",
			Topics:          []string{"Go"},
			StartDate:       &start,
			Month:           6,
			MaxAttendees:    100,
			SeatsAvailable:  99,
		},
		OrganizerDisplayName: "Ada",
	}
}

func sampleSession() *domain.Session {
	conf := sampleConference().Conference
	start := 9*3600 + 30*60
	return &domain.Session{
		ID:            "s1",
		ConferenceID:  conf.ID,
		ConferenceKey: conf.Key(),
		Name:          "Keynote",
		Duration:      60,
		TypeOfSession: domain.TypeOfSessionKeynote,
		StartTime:     &start,
		SpeakerKeys:   []string{domain.NewKey(domain.KindSpeaker, "sp1", nil).Encode()},
	}
}

type fakeProfileService struct {
	profile    *domain.Profile
	err        error
	lastActor  domain.Identity
	lastUpdate domain.ProfileUpdate
}

func (f *fakeProfileService) Get(_ context.Context, actor domain.Identity) (*domain.Profile, error) {
	f.lastActor = actor
	return f.profile, f.err
}

func (f *fakeProfileService) Save(_ context.Context, actor domain.Identity, u domain.ProfileUpdate) (*domain.Profile, error) {
	f.lastActor = actor
	f.lastUpdate = u
	return f.profile, f.err
}

type fakeConferenceService struct {
	view        *domain.ConferenceView
	views       []*domain.ConferenceView
	err         error
	lastInput   domain.CreateConferenceInput
	lastUpdate  domain.ConferenceUpdate
	lastKey     string
	lastName    string
	lastFilters []domain.QueryFilter
}

func (f *fakeConferenceService) Create(_ context.Context, _ domain.Identity, in domain.CreateConferenceInput) (*domain.ConferenceView, error) {
	f.lastInput = in
	return f.view, f.err
}

func (f *fakeConferenceService) Update(_ context.Context, _ domain.Identity, key string, u domain.ConferenceUpdate) (*domain.ConferenceView, error) {
	f.lastKey = key
	f.lastUpdate = u
	return f.view, f.err
}

func (f *fakeConferenceService) Get(_ context.Context, key string) (*domain.ConferenceView, error) {
	f.lastKey = key
	return f.view, f.err
}

func (f *fakeConferenceService) ListCreated(_ context.Context, _ domain.Identity) ([]*domain.ConferenceView, error) {
	return f.views, f.err
}

func (f *fakeConferenceService) ListByOrganizer(_ context.Context, name string) ([]*domain.ConferenceView, error) {
	f.lastName = name
	return f.views, f.err
}

func (f *fakeConferenceService) Query(_ context.Context, filters []domain.QueryFilter) ([]*domain.ConferenceView, error) {
	f.lastFilters = filters
	return f.views, f.err
}

func (f *fakeConferenceService) ListAttending(_ context.Context, _ domain.Identity) ([]*domain.ConferenceView, error) {
	return f.views, f.err
}

type fakeRegistrationService struct {
	removed bool
	err     error
	lastKey string
}

func (f *fakeRegistrationService) Register(_ context.Context, _ domain.Identity, key string) error {
	f.lastKey = key
	return f.err
}

func (f *fakeRegistrationService) Unregister(_ context.Context, _ domain.Identity, key string) (bool, error) {
	f.lastKey = key
	return f.removed, f.err
}

type fakeAnnouncementService struct {
	message string
	err     error
}

func (f *fakeAnnouncementService) Refresh(_ context.Context) (string, error) { return f.message, f.err }

func (f *fakeAnnouncementService) Get(_ context.Context) (string, error) { return f.message, f.err }

type fakeSessionService struct {
	session      *domain.Session
	sessions     []*domain.Session
	err          error
	lastKey      string
	lastType     string
	lastBefore   string
	lastExcluded string
	lastInput    domain.CreateSessionInput
}

func (f *fakeSessionService) Create(_ context.Context, _ domain.Identity, key string, in domain.CreateSessionInput) (*domain.Session, error) {
	f.lastKey = key
	f.lastInput = in
	return f.session, f.err
}

func (f *fakeSessionService) ListByConference(_ context.Context, key string) ([]*domain.Session, error) {
	f.lastKey = key
	return f.sessions, f.err
}

func (f *fakeSessionService) ListByType(_ context.Context, key, typeOfSession string) ([]*domain.Session, error) {
	f.lastKey = key
	f.lastType = typeOfSession
	return f.sessions, f.err
}

func (f *fakeSessionService) ListBySpeaker(_ context.Context, key string) ([]*domain.Session, error) {
	f.lastKey = key
	return f.sessions, f.err
}

func (f *fakeSessionService) Popular(_ context.Context, key string) ([]*domain.Session, error) {
	f.lastKey = key
	return f.sessions, f.err
}

func (f *fakeSessionService) BeforeTimeNotOfType(_ context.Context, key, before, excluded string) ([]*domain.Session, error) {
	f.lastKey = key
	f.lastBefore = before
	f.lastExcluded = excluded
	return f.sessions, f.err
}

type fakeFeaturedService struct {
	message string
	err     error
	lastKey string
}

func (f *fakeFeaturedService) Derive(_ context.Context, key string) (string, error) {
	f.lastKey = key
	return f.message, f.err
}

func (f *fakeFeaturedService) Get(_ context.Context, key string) (string, error) {
	f.lastKey = key
	return f.message, f.err
}

type fakeSpeakerService struct {
	speaker   *domain.Speaker
	speakers  []*domain.Speaker
	err       error
	lastInput domain.CreateSpeakerInput
}

func (f *fakeSpeakerService) Create(_ context.Context, _ domain.Identity, in domain.CreateSpeakerInput) (*domain.Speaker, error) {
	f.lastInput = in
	return f.speaker, f.err
}

func (f *fakeSpeakerService) List(_ context.Context) ([]*domain.Speaker, error) {
	return f.speakers, f.err
}

type fakeWishlistService struct {
	added    bool
	sessions []*domain.Session
	err      error
	lastKey  string
}

func (f *fakeWishlistService) Add(_ context.Context, _ domain.Identity, key string) (bool, error) {
	f.lastKey = key
	return f.added, f.err
}

func (f *fakeWishlistService) List(_ context.Context, _ domain.Identity) ([]*domain.Session, error) {
	return f.sessions, f.err
}

func (f *fakeWishlistService) ListForConference(_ context.Context, _ domain.Identity, key string) ([]*domain.Session, error) {
	f.lastKey = key
	return f.sessions, f.err
}
