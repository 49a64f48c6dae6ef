package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// CreateSpeakerRequest is the request body for POST /speaker.
type CreateSpeakerRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Bio          string `json:"bio" validate:"max=2000"`
	Organization string `json:"organization" validate:"max=200"`
}

// Validate implements helpers.Validator.
func (s CreateSpeakerRequest) Validate() []string {
	if s.Name != "" && trimmedEmpty(s.Name) {
		return []string{"name is required"}
	}
	return nil
}

// SpeakerSuccessResponse is the success envelope for POST /speaker (201).
type SpeakerSuccessResponse struct {
	Data  SpeakerResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SpeakerListSuccessResponse is the success envelope for GET /speakers (200).
type SpeakerListSuccessResponse struct {
	Data  []SpeakerResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type SpeakerController struct {
	Logger  *slog.Logger
	Service domain.SpeakerService
}

func NewSpeakerController(logger *slog.Logger, svc domain.SpeakerService) *SpeakerController {
	return &SpeakerController{Logger: logger, Service: svc}
}

// CreateSpeaker godoc
// @Summary Create a speaker
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSpeakerRequest true "Speaker data"
// @Success 201 {object} controllers.SpeakerSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speaker [post]
func (c *SpeakerController) CreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req CreateSpeakerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	speaker, err := c.Service.Create(r.Context(), actor, domain.CreateSpeakerInput{
		Name:         req.Name,
		Bio:          req.Bio,
		Organization: req.Organization,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toSpeakerResponse(speaker))
}

// ListSpeakers godoc
// @Summary List speakers
// @Description Returns all speakers ordered by name.
// @Tags speakers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.SpeakerListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers [get]
func (c *SpeakerController) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	speakers, err := c.Service.List(r.Context())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	out := make([]SpeakerResponse, 0, len(speakers))
	for _, s := range speakers {
		out = append(out, toSpeakerResponse(s))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}
