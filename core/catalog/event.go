package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/pathways/core"
)

type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Organizer   string `json:"organizer,omitempty"`
	Capacity    int    `json:"capacity"`
}

func (e Event) RecordID() int64 { return e.ID }

func (e Event) WithID(id int64) Event {
	e.ID = id
	return e
}

func (e Event) Matches(q Query) bool {
	return core.SameCategory(q.Category, e.Category) &&
		core.Matches(q.Search, e.Title, e.Description, e.Location, e.Organizer)
}

func (e Event) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "title":
		return e.Title, true
	case "date":
		return e.Date, true
	case "capacity":
		return int64(e.Capacity), true
	}
	return nil, false
}

type EventForm struct {
	Title       string `json:"title" validate:"notblank"`
	Category    string `json:"category"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Location    string `json:"location" validate:"notblank"`
	Description string `json:"description"`
	Organizer   string `json:"organizer"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
}

func (f *EventForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	f.Category = core.CleanString(f.Category)
	f.Date = core.CleanString(f.Date)
	f.Location = core.CleanString(f.Location)
	f.Description = core.CleanString(f.Description)
	f.Organizer = core.CleanString(f.Organizer)
	return validate.Struct(f)
}

func (f *EventForm) Record(orig Event) Event {
	orig.Title = f.Title
	orig.Category = f.Category
	orig.Date = f.Date
	orig.Location = f.Location
	orig.Description = f.Description
	orig.Organizer = f.Organizer
	orig.Capacity = f.Capacity
	return orig
}

// EventRegistration records that a user signed up for an event.
type EventRegistration struct {
	ID           int64  `json:"id"`
	EventID      int64  `json:"event_id"`
	Title        string `json:"title,omitempty"`
	Owner        string `json:"owner"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	RegisteredAt string `json:"registered_at,omitempty"`
}

func (r EventRegistration) RecordID() int64 { return r.ID }

func (r EventRegistration) WithID(id int64) EventRegistration {
	r.ID = id
	return r
}

func (r EventRegistration) Matches(q Query) bool {
	return q.ownedBy(r.Owner) && core.Matches(q.Search, r.Title, r.Name)
}

func (r EventRegistration) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id", "registered_at":
		return r.ID, true
	case "title":
		return r.Title, true
	}
	return nil, false
}

type EventRegistrationForm struct {
	EventID int64  `json:"event_id" validate:"required"`
	Title   string `json:"title"`
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"required,email"`
	Owner   string `json:"-"`
}

func (f *EventRegistrationForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email, true /* lower */)
	return validate.Struct(f)
}

func (f *EventRegistrationForm) Record(orig EventRegistration) EventRegistration {
	orig.EventID = f.EventID
	orig.Title = f.Title
	orig.Name = f.Name
	orig.Email = f.Email
	if orig.Owner == "" {
		orig.Owner = f.Owner
		orig.RegisteredAt = core.DisplayTime(core.NowFunc())
	}
	return orig
}

func (f *EventRegistrationForm) SetOwner(owner string) { f.Owner = owner }
