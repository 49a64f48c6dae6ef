package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Profile    *controllers.ProfileController
	Conference *controllers.ConferenceController
	Session    *controllers.SessionController
	Speaker    *controllers.SpeakerController
	Wishlist   *controllers.WishlistController
}

// NewRouter initializes the HTTP router with all application routes.
// Every API route requires a bearer token; /metrics and /swagger/ do not.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Profile
	mux.HandleFunc("GET /profile", auth(c.Profile.GetProfile))
	mux.HandleFunc("POST /profile", auth(c.Profile.SaveProfile))

	// Conferences
	mux.HandleFunc("POST /conference", auth(c.Conference.CreateConference))
	mux.HandleFunc("GET /conference/announcement", auth(c.Conference.GetAnnouncement))
	mux.HandleFunc("GET /conference/{websafeConferenceKey}", auth(c.Conference.GetConference))
	mux.HandleFunc("PUT /conference/{websafeConferenceKey}", auth(c.Conference.UpdateConference))
	mux.HandleFunc("POST /conference/{websafeConferenceKey}/registration", auth(c.Conference.Register))
	mux.HandleFunc("DELETE /conference/{websafeConferenceKey}/registration", auth(c.Conference.Unregister))
	mux.HandleFunc("GET /conferences/created", auth(c.Conference.ListCreated))
	mux.HandleFunc("GET /conferences/attending", auth(c.Conference.ListAttending))
	mux.HandleFunc("GET /conferences/organizer/{organizer}", auth(c.Conference.ListByOrganizer))
	mux.HandleFunc("POST /conferences/query", auth(c.Conference.QueryConferences))

	// Sessions
	mux.HandleFunc("POST /conference/{websafeConferenceKey}/sessions", auth(c.Session.CreateSession))
	mux.HandleFunc("GET /conference/{websafeConferenceKey}/sessions", auth(c.Session.ListSessions))
	mux.HandleFunc("GET /conference/{websafeConferenceKey}/sessions/type/{typeOfSession}", auth(c.Session.ListSessionsByType))
	mux.HandleFunc("GET /conference/{websafeConferenceKey}/sessions/popular", auth(c.Session.ListPopularSessions))
	mux.HandleFunc("POST /conference/{websafeConferenceKey}/sessions/hard", auth(c.Session.QuerySessions))
	mux.HandleFunc("GET /conference/{websafeConferenceKey}/featuredspeaker", auth(c.Session.GetFeaturedSpeaker))
	mux.HandleFunc("GET /speaker/{websafeSpeakerKey}/sessions", auth(c.Session.ListSessionsBySpeaker))

	// Speakers
	mux.HandleFunc("POST /speaker", auth(c.Speaker.CreateSpeaker))
	mux.HandleFunc("GET /speakers", auth(c.Speaker.ListSpeakers))

	// Wishlist
	mux.HandleFunc("GET /wishlist", auth(c.Wishlist.ListWishlist))
	mux.HandleFunc("POST /wishlist/{websafeSessionKey}", auth(c.Wishlist.AddToWishlist))
	mux.HandleFunc("GET /wishlist/{websafeConferenceKey}/sessions", auth(c.Wishlist.ListWishlistForConference))

	// Ops
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
