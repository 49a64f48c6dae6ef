package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"conferencecentral/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileController_GetProfile(t *testing.T) {
	profile := domain.NewProfile(testActor)
	profile.ConferenceKeysToAttend = nil

	t.Run("success", func(t *testing.T) {
		fake := &fakeProfileService{profile: profile}
		ctrl := NewProfileController(testLogger, fake)
		rr := httptest.NewRecorder()

		ctrl.GetProfile(rr, newRequest(http.MethodGet, "/profile", "", true))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp ProfileResponse
		decodeEnvelope(t, rr, &resp)
		assert.Equal(t, "Ada", resp.DisplayName)
		assert.Equal(t, "ada@example.com", resp.MainEmail)
		assert.Equal(t, "NOT_SPECIFIED", resp.TeeShirtSize)
		assert.NotNil(t, resp.ConferenceKeysToAttend)
		assert.Equal(t, testActor, fake.lastActor)
	})

	t.Run("no user in context", func(t *testing.T) {
		ctrl := NewProfileController(testLogger, &fakeProfileService{profile: profile})
		rr := httptest.NewRecorder()
		ctrl.GetProfile(rr, newRequest(http.MethodGet, "/profile", "", false))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("service error", func(t *testing.T) {
		ctrl := NewProfileController(testLogger, &fakeProfileService{err: errors.New("db error")})
		rr := httptest.NewRecorder()
		ctrl.GetProfile(rr, newRequest(http.MethodGet, "/profile", "", true))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestProfileController_SaveProfile(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, u domain.ProfileUpdate)
	}{
		{
			name:       "both fields",
			body:       `{"displayName":"Ada L","teeShirtSize":"M_W"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, u domain.ProfileUpdate) {
				require.NotNil(t, u.DisplayName)
				assert.Equal(t, "Ada L", *u.DisplayName)
				require.NotNil(t, u.TeeShirtSize)
				assert.Equal(t, domain.TeeShirtSizeMW, *u.TeeShirtSize)
			},
		},
		{
			name:       "empty size is ignored",
			body:       `{"teeShirtSize":""}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, u domain.ProfileUpdate) {
				assert.Nil(t, u.DisplayName)
				assert.Nil(t, u.TeeShirtSize)
			},
		},
		{name: "unknown size", body: `{"teeShirtSize":"HUGE"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"mainEmail":"x@example.com"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProfileService{profile: domain.NewProfile(testActor)}
			ctrl := NewProfileController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.SaveProfile(rr, newRequest(http.MethodPost, "/profile", tt.body, true))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.check != nil {
				tt.check(t, fake.lastUpdate)
			}
		})
	}
}
