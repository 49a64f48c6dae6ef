package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// CreateConferenceRequest is the request body for POST /conference. Dates are YYYY-MM-DD.
type CreateConferenceRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=4000"`
	City         string   `json:"city" validate:"max=200"`
	Topics       []string `json:"topics" validate:"max=50,dive,max=100"`
	StartDate    *string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	MaxAttendees int      `json:"maxAttendees" validate:"min=0"`
}

// Validate implements helpers.Validator.
func (c CreateConferenceRequest) Validate() []string {
	if c.Name != "" && trimmedEmpty(c.Name) {
		return []string{"name is required"}
	}
	return nil
}

func (c CreateConferenceRequest) toInput() (domain.CreateConferenceInput, error) {
	in := domain.CreateConferenceInput{
		Name:         c.Name,
		Description:  c.Description,
		City:         c.City,
		Topics:       c.Topics,
		MaxAttendees: c.MaxAttendees,
	}
	var err error
	if in.StartDate, err = parseDate("startDate", c.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = parseDate("endDate", c.EndDate); err != nil {
		return in, err
	}
	return in, nil
}

// UpdateConferenceRequest is the request body for PUT /conference/{websafeConferenceKey}.
// Omitted fields are unchanged.
type UpdateConferenceRequest struct {
	Name         *string  `json:"name" validate:"omitempty,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=4000"`
	City         *string  `json:"city" validate:"omitempty,max=200"`
	Topics       []string `json:"topics" validate:"max=50,dive,max=100"`
	StartDate    *string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	MaxAttendees *int     `json:"maxAttendees" validate:"omitempty,min=0"`
}

// Validate implements helpers.Validator.
func (u UpdateConferenceRequest) Validate() []string {
	if u.Name != nil && trimmedEmpty(*u.Name) {
		return []string{"name must not be empty"}
	}
	return nil
}

func (u UpdateConferenceRequest) toUpdate() (domain.ConferenceUpdate, error) {
	out := domain.ConferenceUpdate{
		Name:         u.Name,
		Description:  u.Description,
		City:         u.City,
		Topics:       u.Topics,
		MaxAttendees: u.MaxAttendees,
	}
	var err error
	if out.StartDate, err = parseDate("startDate", u.StartDate); err != nil {
		return out, err
	}
	if out.EndDate, err = parseDate("endDate", u.EndDate); err != nil {
		return out, err
	}
	return out, nil
}

// QueryFilterRequest is one (field, operator, value) filter, e.g. {"field":"MONTH","operator":"GT","value":"6"}.
type QueryFilterRequest struct {
	Field    string `json:"field" validate:"required"`
	Operator string `json:"operator" validate:"required"`
	Value    string `json:"value"`
}

// QueryConferencesRequest is the request body for POST /conferences/query. No filters match every conference.
type QueryConferencesRequest struct {
	Filters []QueryFilterRequest `json:"filters" validate:"max=20,dive"`
}

func (q QueryConferencesRequest) toFilters() []domain.QueryFilter {
	out := make([]domain.QueryFilter, 0, len(q.Filters))
	for _, f := range q.Filters {
		out = append(out, domain.QueryFilter{Field: f.Field, Operator: f.Operator, Value: f.Value})
	}
	return out
}

// ConferenceSuccessResponse is the success envelope for single-conference endpoints.
type ConferenceSuccessResponse struct {
	Data  ConferenceResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ConferenceListSuccessResponse is the success envelope for conference listings.
type ConferenceListSuccessResponse struct {
	Data  []ConferenceResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ResultSuccessResponse is the success envelope for boolean outcomes.
type ResultSuccessResponse struct {
	Data  ResultResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MessageSuccessResponse is the success envelope for cached messages.
type MessageSuccessResponse struct {
	Data  MessageResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ConferenceController struct {
	Logger        *slog.Logger
	Conferences   domain.ConferenceService
	Registrations domain.RegistrationService
	Announcements domain.AnnouncementService
}

func NewConferenceController(logger *slog.Logger,
	conferences domain.ConferenceService,
	registrations domain.RegistrationService,
	announcements domain.AnnouncementService,
) *ConferenceController {
	return &ConferenceController{
		Logger:        logger,
		Conferences:   conferences,
		Registrations: registrations,
		Announcements: announcements,
	}
}

// CreateConference godoc
// @Summary Create a conference
// @Description Creates a conference owned by the caller. City and topics default when omitted; seatsAvailable starts at maxAttendees. A confirmation email is sent to the organizer.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateConferenceRequest true "Conference data"
// @Success 201 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference [post]
func (c *ConferenceController) CreateConference(w http.ResponseWriter, r *http.Request) {
	var req CreateConferenceRequest
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
	view, err := c.Conferences.Create(r.Context(), actor, in)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toConferenceResponse(view))
}

// UpdateConference godoc
// @Summary Update a conference
// @Description Updates the supplied fields. Only the organizer may update. A capacity change moves seatsAvailable by the same amount.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Param body body UpdateConferenceRequest true "Fields to update"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey} [put]
func (c *ConferenceController) UpdateConference(w http.ResponseWriter, r *http.Request) {
	var req UpdateConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	update, err := req.toUpdate()
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	view, err := c.Conferences.Update(r.Context(), actor, r.PathValue("websafeConferenceKey"), update)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toConferenceResponse(view))
}

// GetConference godoc
// @Summary Get a conference
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (malformed key)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey} [get]
func (c *ConferenceController) GetConference(w http.ResponseWriter, r *http.Request) {
	view, err := c.Conferences.Get(r.Context(), r.PathValue("websafeConferenceKey"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toConferenceResponse(view))
}

// ListCreated godoc
// @Summary List conferences I created
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/created [get]
func (c *ConferenceController) ListCreated(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	views, err := c.Conferences.ListCreated(r.Context(), actor)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toConferenceResponses(views))
}

// ListByOrganizer godoc
// @Summary List conferences by organizer
// @Description Returns the conferences of the organizer with the given display name.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param organizer path string true "Organizer display name"
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no such organizer)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/organizer/{organizer} [get]
func (c *ConferenceController) ListByOrganizer(w http.ResponseWriter, r *http.Request) {
	organizer := r.PathValue("organizer")
	if trimmedEmpty(organizer) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing organizer")
		return
	}
	views, err := c.Conferences.ListByOrganizer(r.Context(), organizer)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toConferenceResponses(views))
}

// QueryConferences godoc
// @Summary Query conferences
// @Description Filters on CITY, TOPIC, MONTH and MAX_ATTENDEES with EQ, NE, GT, GTEQ, LT, LTEQ. At most one field may use a non-equality operator. Results are ordered by that field, then by name.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body QueryConferencesRequest true "Filters"
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid filter)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/query [post]
func (c *ConferenceController) QueryConferences(w http.ResponseWriter, r *http.Request) {
	var req QueryConferencesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	views, err := c.Conferences.Query(r.Context(), req.toFilters())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toConferenceResponses(views))
}

// ListAttending godoc
// @Summary List conferences I registered for
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/attending [get]
func (c *ConferenceController) ListAttending(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	views, err := c.Conferences.ListAttending(r.Context(), actor)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toConferenceResponses(views))
}

// Register godoc
// @Summary Register for a conference
// @Description Takes one seat. Fails with conflict when already registered or sold out.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Success 200 {object} controllers.ResultSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered, sold out)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey}/registration [post]
func (c *ConferenceController) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if err := c.Registrations.Register(r.Context(), actor, r.PathValue("websafeConferenceKey")); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ResultResponse{Result: true})
}

// Unregister godoc
// @Summary Unregister from a conference
// @Description Frees the caller's seat. result is false when the caller was not registered.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Success 200 {object} controllers.ResultSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conference/{websafeConferenceKey}/registration [delete]
func (c *ConferenceController) Unregister(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	removed, err := c.Registrations.Unregister(r.Context(), actor, r.PathValue("websafeConferenceKey"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ResultResponse{Result: removed})
}

// GetAnnouncement godoc
// @Summary Get the nearly-sold-out announcement
// @Description message is empty when no conference is nearly sold out.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MessageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /conference/announcement [get]
func (c *ConferenceController) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	msg, err := c.Announcements.Get(r.Context())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: msg})
}
