package domain

import (
	"context"
	"time"
)

// Defaults applied to a new conference when the field is not supplied.
const DefaultConferenceCity = "Default City"

// DefaultConferenceTopics returns the topics of a conference created without any.
func DefaultConferenceTopics() []string {
	return []string{"Default", "Topic"}
}

// Conference is owned by the profile of its organizer.
// Once capacity is set, 0 <= SeatsAvailable <= MaxAttendees. Month is derived from
// StartDate (1-12, 0 when unset) so it can be range-queried.
type Conference struct {
	ID              string
	OrganizerUserID string
	Name            string
	Description     string
	City            string
	Topics          []string
	StartDate       *time.Time
	EndDate         *time.Time
	Month           int
	MaxAttendees    int
	SeatsAvailable  int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Key returns the conference key, a child of the organizer's profile key.
func (c *Conference) Key() *Key {
	return NewKey(KindConference, c.ID, ProfileKey(c.OrganizerUserID))
}

// WebsafeKey returns the encoded conference key.
func (c *Conference) WebsafeKey() string {
	return c.Key().Encode()
}

// MonthOf returns the month number of date, or 0 when date is nil.
func MonthOf(date *time.Time) int {
	if date == nil {
		return 0
	}
	return int(date.Month())
}

// Contains reports whether date falls within the conference date range. Open ends are unbounded.
func (c *Conference) Contains(date time.Time) bool {
	if c.StartDate != nil && date.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && date.After(*c.EndDate) {
		return false
	}
	return true
}

// ConferenceUpdate holds the fields supplied to an update. Nil fields are left unchanged.
type ConferenceUpdate struct {
	Name         *string
	Description  *string
	City         *string
	Topics       []string
	StartDate    *time.Time
	EndDate      *time.Time
	MaxAttendees *int
}

// Apply copies the supplied fields onto c. A new start date re-derives Month. A capacity
// change moves SeatsAvailable by the same amount, clamped to [0, MaxAttendees].
func (c *Conference) Apply(u ConferenceUpdate) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.City != nil {
		c.City = *u.City
	}
	if len(u.Topics) > 0 {
		c.Topics = append([]string(nil), u.Topics...)
	}
	if u.StartDate != nil {
		c.StartDate = u.StartDate
		c.Month = MonthOf(u.StartDate)
	}
	if u.EndDate != nil {
		c.EndDate = u.EndDate
	}
	if u.MaxAttendees != nil {
		c.SeatsAvailable += *u.MaxAttendees - c.MaxAttendees
		c.MaxAttendees = *u.MaxAttendees
		if c.SeatsAvailable > c.MaxAttendees {
			c.SeatsAvailable = c.MaxAttendees
		}
		if c.SeatsAvailable < 0 {
			c.SeatsAvailable = 0
		}
	}
}

// ConferenceView is a conference together with its organizer's display name.
type ConferenceView struct {
	Conference           *Conference
	OrganizerDisplayName string
}

// ConferenceRepository defines the interface for conference storage
type ConferenceRepository interface {
	Create(ctx context.Context, c *Conference) error
	GetByID(ctx context.Context, id string) (*Conference, error)
	// GetForUpdate locks the row for the rest of the surrounding transaction.
	GetForUpdate(ctx context.Context, id string) (*Conference, error)
	Update(ctx context.Context, c *Conference) error
	ListByOrganizer(ctx context.Context, organizerUserID string) ([]*Conference, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Conference, error)
	Query(ctx context.Context, plan QueryPlan) ([]*Conference, error)
}

// CreateConferenceInput is the data supplied to create a conference.
type CreateConferenceInput struct {
	Name         string
	Description  string
	City         string
	Topics       []string
	StartDate    *time.Time
	EndDate      *time.Time
	MaxAttendees int
}

// ConferenceService defines conference management
type ConferenceService interface {
	Create(ctx context.Context, actor Identity, in CreateConferenceInput) (*ConferenceView, error)
	Update(ctx context.Context, actor Identity, websafeKey string, u ConferenceUpdate) (*ConferenceView, error)
	Get(ctx context.Context, websafeKey string) (*ConferenceView, error)
	ListCreated(ctx context.Context, actor Identity) ([]*ConferenceView, error)
	ListByOrganizer(ctx context.Context, displayName string) ([]*ConferenceView, error)
	Query(ctx context.Context, filters []QueryFilter) ([]*ConferenceView, error)
	ListAttending(ctx context.Context, actor Identity) ([]*ConferenceView, error)
}

// RegistrationService keeps profile attendance and conference seats consistent.
type RegistrationService interface {
	Register(ctx context.Context, actor Identity, websafeConferenceKey string) error
	// Unregister returns false, with no error, when the caller was not registered.
	Unregister(ctx context.Context, actor Identity, websafeConferenceKey string) (bool, error)
}

// AnnouncementService maintains the nearly-sold-out announcement.
type AnnouncementService interface {
	Refresh(ctx context.Context) (string, error)
	Get(ctx context.Context) (string, error)
}
