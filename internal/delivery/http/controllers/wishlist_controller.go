package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

type WishlistController struct {
	Logger  *slog.Logger
	Service domain.WishlistService
}

func NewWishlistController(logger *slog.Logger, svc domain.WishlistService) *WishlistController {
	return &WishlistController{Logger: logger, Service: svc}
}

// AddToWishlist godoc
// @Summary Add a session to my wishlist
// @Description result is false when the session was already in the wishlist.
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param websafeSessionKey path string true "Session key"
// @Success 200 {object} controllers.ResultSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wishlist/{websafeSessionKey} [post]
func (c *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	added, err := c.Service.Add(r.Context(), actor, r.PathValue("websafeSessionKey"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ResultResponse{Result: added})
}

// ListWishlist godoc
// @Summary List my wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wishlist [get]
func (c *WishlistController) ListWishlist(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	sessions, err := c.Service.List(r.Context(), actor)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toSessionResponses(sessions))
}

// ListWishlistForConference godoc
// @Summary List my wishlist for a conference
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param websafeConferenceKey path string true "Conference key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wishlist/{websafeConferenceKey}/sessions [get]
func (c *WishlistController) ListWishlistForConference(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	sessions, err := c.Service.ListForConference(r.Context(), actor, r.PathValue("websafeConferenceKey"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toSessionResponses(sessions))
}
