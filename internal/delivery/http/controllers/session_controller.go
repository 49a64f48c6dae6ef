package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// CreateSessionRequest is the request body for POST /conference/{websafeConferenceKey}/sessions.
// date is YYYY-MM-DD, startTime is HH:MM and speakerKeys are websafe speaker keys.
type CreateSessionRequest struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Highlights    string   `json:"highlights" validate:"max=4000"`
	Duration      int      `json:"duration" validate:"min=0"`
	TypeOfSession string   `json:"typeOfSession"`
	Date          *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime     string   `json:"startTime"`
	SpeakerKeys   []string `json:"speakerKeys" validate:"max=20,dive,required"`
}

// Validate implements helpers.Validator.
func (s CreateSessionRequest) Validate() []string {
	if s.Name != "" && trimmedEmpty(s.Name) {
		return []string{"name is required"}
	}
	return nil
}

func (s CreateSessionRequest) toInput() (domain.CreateSessionInput, error) {
	date, err := parseDate("date", s.Date)
	if err != nil {
		return domain.CreateSessionInput{}, err
	}
	return domain.CreateSessionInput{
		Name:          s.Name,
		Highlights:    s.Highlights,
		Duration:      s.Duration,
		TypeOfSession: s.TypeOfSession,
		Date:          date,
		StartTime:     s.StartTime,
		SpeakerKeys:   s.SpeakerKeys,
	}, nil
}

// HardQueryRequest is the request body for POST /conference/{websafeConferenceKey}/sessions/hard.
type HardQueryRequest struct {
	BeforeTime   string `json:"beforeTime" validate:"required"`
	ExcludedType string `json:"excludedType" validate:"required"`
}

// SessionSuccessResponse is the success envelope for POST .../sessions (201).
type SessionSuccessResponse struct {
	Data  SessionResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SessionListSuccessResponse is the success envelope for session listings.
type SessionListSuccessResponse struct {
	Data  []SessionResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type SessionController struct {
	Logger   *slog.Logger
	Sessions domain.SessionService
	Featured domain.FeaturedSpeakerService
}

func NewSessionController(logger *slog.Logger, sessions domain.SessionService, featured domain.FeaturedSpeakerService) *SessionController {
	return &SessionController{Logger: logger, Sessions: sessions, Featured: featured}
}

// CreateSession godoc
// @Summary Create a session
// @Description Adds a session to a conference. Only the organizer may add sessions. The date must fall within the conference dates. Adding speakers refreshes the featured speaker.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Param body body CreateSessionRequest true "Session data"
// @Success 201 {object} controllers.SessionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (conference or speaker)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey}/sessions [post]
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	in, err := req.toInput()
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	sess, err := c.Sessions.Create(r.Context(), actor, r.PathValue("websafeConferenceKey"), in)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toSessionResponse(sess))
}

// ListSessions godoc
// @Summary List sessions of a conference
// @Description Sessions are ordered by start time.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey}/sessions [get]
func (c *SessionController) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := c.Sessions.ListByConference(r.Context(), r.PathValue("websafeConferenceKey"))
	c.writeSessions(w, r, sessions, err)
}

// ListSessionsByType godoc
// @Summary List sessions of a conference by type
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Param typeOfSession path string true "Session type" Enums(NOT_SPECIFIED, WORKSHOP, LECTURE, KEYNOTE, FORUM, DEMO, PANEL)
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey}/sessions/type/{typeOfSession} [get]
func (c *SessionController) ListSessionsByType(w http.ResponseWriter, r *http.Request) {
	sessions, err := c.Sessions.ListByType(r.Context(), r.PathValue("websafeConferenceKey"), r.PathValue("typeOfSession"))
	c.writeSessions(w, r, sessions, err)
}

// ListPopularSessions godoc
// @Summary List the most wishlisted sessions of a conference
// @Description Returns at most three sessions that appear in at least one wishlist, most wishlisted first.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey}/sessions/popular [get]
func (c *SessionController) ListPopularSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := c.Sessions.Popular(r.Context(), r.PathValue("websafeConferenceKey"))
	c.writeSessions(w, r, sessions, err)
}

// QuerySessions godoc
// @Summary List sessions before a time and not of a type
// @Description Returns sessions of the conference starting before beforeTime (HH:MM) whose type is not excludedType.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Param body body HardQueryRequest true "Query"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey}/sessions/hard [post]
func (c *SessionController) QuerySessions(w http.ResponseWriter, r *http.Request) {
	var req HardQueryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sessions, err := c.Sessions.BeforeTimeNotOfType(r.Context(), r.PathValue("websafeConferenceKey"), req.BeforeTime, req.ExcludedType)
	c.writeSessions(w, r, sessions, err)
}

// ListSessionsBySpeaker godoc
// @Summary List sessions of a speaker
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param websafeSpeakerKey path string true "Speaker key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speaker/{websafeSpeakerKey}/sessions [get]
func (c *SessionController) ListSessionsBySpeaker(w http.ResponseWriter, r *http.Request) {
	sessions, err := c.Sessions.ListBySpeaker(r.Context(), r.PathValue("websafeSpeakerKey"))
	c.writeSessions(w, r, sessions, err)
}

// GetFeaturedSpeaker godoc
// @Summary Get the featured speaker of a conference
// @Description message is empty when no speaker has more than one session.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Success 200 {object} controllers.MessageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /conference/{websafeConferenceKey}/featuredspeaker [get]
func (c *SessionController) GetFeaturedSpeaker(w http.ResponseWriter, r *http.Request) {
	msg, err := c.Featured.Get(r.Context(), r.PathValue("websafeConferenceKey"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: msg})
}

func (c *SessionController) writeSessions(w http.ResponseWriter, r *http.Request, sessions []*domain.Session, err error) {
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toSessionResponses(sessions))
}
