package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// dateLayout is the wire format of conference and session dates.
const dateLayout = "2006-01-02"

// ProfileResponse is the wire form of a profile.
type ProfileResponse struct {
	DisplayName            string   `json:"displayName"`
	MainEmail              string   `json:"mainEmail"`
	TeeShirtSize           string   `json:"teeShirtSize"`
	ConferenceKeysToAttend []string `json:"conferenceKeysToAttend"`
	SessionWishlistKeys    []string `json:"sessionWishlistKeys"`
}

// ConferenceResponse is the wire form of a conference.
type ConferenceResponse struct {
	WebsafeKey           string   `json:"websafeKey"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	OrganizerUserID      string   `json:"organizerUserId"`
	OrganizerDisplayName string   `json:"organizerDisplayName"`
	City                 string   `json:"city"`
	Topics               []string `json:"topics"`
	StartDate            *string  `json:"startDate"`
	EndDate              *string  `json:"endDate"`
	Month                int      `json:"month"`
	MaxAttendees         int      `json:"maxAttendees"`
	SeatsAvailable       int      `json:"seatsAvailable"`
}

// SessionResponse is the wire form of a session. StartTime is "HH:MM".
type SessionResponse struct {
	WebsafeKey           string   `json:"websafeKey"`
	WebsafeConferenceKey string   `json:"websafeConferenceKey"`
	Name                 string   `json:"name"`
	Highlights           string   `json:"highlights"`
	Duration             int      `json:"duration"`
	TypeOfSession        string   `json:"typeOfSession"`
	Date                 *string  `json:"date"`
	StartTime            *string  `json:"startTime"`
	SpeakerKeys          []string `json:"speakerKeys"`
}

// SpeakerResponse is the wire form of a speaker.
type SpeakerResponse struct {
	WebsafeKey   string `json:"websafeKey"`
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	Organization string `json:"organization"`
}

// ResultResponse carries the outcome of registration and wishlist calls.
type ResultResponse struct {
	Result bool `json:"result"`
}

// MessageResponse carries cached text. Message is empty when nothing is cached.
type MessageResponse struct {
	Message string `json:"message"`
}

func toProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		DisplayName:            p.DisplayName,
		MainEmail:              p.MainEmail,
		TeeShirtSize:           string(p.TeeShirtSize),
		ConferenceKeysToAttend: nonNilStrings(p.ConferenceKeysToAttend),
		SessionWishlistKeys:    nonNilStrings(p.SessionWishlistKeys),
	}
}

func toConferenceResponse(v *domain.ConferenceView) ConferenceResponse {
	c := v.Conference
	return ConferenceResponse{
		WebsafeKey:           c.WebsafeKey(),
		Name:                 c.Name,
		Description:          c.Description,
		OrganizerUserID:      c.OrganizerUserID,
		OrganizerDisplayName: v.OrganizerDisplayName,
		City:                 c.City,
		Topics:               nonNilStrings(c.Topics),
		StartDate:            formatDate(c.StartDate),
		EndDate:              formatDate(c.EndDate),
		Month:                c.Month,
		MaxAttendees:         c.MaxAttendees,
		SeatsAvailable:       c.SeatsAvailable,
	}
}

func toConferenceResponses(views []*domain.ConferenceView) []ConferenceResponse {
	out := make([]ConferenceResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toConferenceResponse(v))
	}
	return out
}

func toSessionResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		WebsafeKey:           s.WebsafeKey(),
		WebsafeConferenceKey: s.WebsafeConferenceKey(),
		Name:                 s.Name,
		Highlights:           s.Highlights,
		Duration:             s.Duration,
		TypeOfSession:        string(s.TypeOfSession),
		Date:                 formatDate(s.Date),
		SpeakerKeys:          nonNilStrings(s.SpeakerKeys),
	}
	if s.StartTime != nil {
		start := domain.TimeStringFromSeconds(*s.StartTime)
		resp.StartTime = &start
	}
	return resp
}

func toSessionResponses(sessions []*domain.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out
}

func toSpeakerResponse(s *domain.Speaker) SpeakerResponse {
	return SpeakerResponse{
		WebsafeKey:   s.WebsafeKey(),
		Name:         s.Name,
		Bio:          s.Bio,
		Organization: s.Organization,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseDate parses an optional date field. Nil or empty yields nil.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be formatted %s", domain.ErrInvalidInput, field, dateLayout)
	}
	return &t, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func trimmedEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// actorFrom returns the caller's identity, writing a 401 when there is none.
func actorFrom(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return actor, ok
}
