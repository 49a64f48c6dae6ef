package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// SaveProfileRequest is the request body for POST /profile. Omitted fields are unchanged.
type SaveProfileRequest struct {
	DisplayName  *string `json:"displayName" validate:"omitempty,max=100"`
	TeeShirtSize *string `json:"teeShirtSize"`
}

func (s SaveProfileRequest) toUpdate() (domain.ProfileUpdate, error) {
	u := domain.ProfileUpdate{DisplayName: s.DisplayName}
	if s.TeeShirtSize != nil && *s.TeeShirtSize != "" {
		size, err := domain.ParseTeeShirtSize(*s.TeeShirtSize)
		if err != nil {
			return u, err
		}
		u.TeeShirtSize = &size
	}
	return u, nil
}

// ProfileSuccessResponse is the success envelope for profile endpoints.
type ProfileSuccessResponse struct {
	Data  ProfileResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{Logger: logger, Service: svc}
}

// GetProfile godoc
// @Summary Get my profile
// @Description Returns the caller's profile, creating it on first access.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [get]
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	profile, err := c.Service.Get(r.Context(), actor)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toProfileResponse(profile))
}

// SaveProfile godoc
// @Summary Update my profile
// @Description Updates displayName and teeShirtSize. Omitted or blank fields are unchanged.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SaveProfileRequest true "Fields to update"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [post]
func (c *ProfileController) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req SaveProfileRequest
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
	profile, err := c.Service.Save(r.Context(), actor, update)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toProfileResponse(profile))
}
