// Package notification implements the notification feed shown in the dashboards' header and page.
package notification

import (
	"context"
	"net/mail"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
)

// PreviewLimit is the number of notifications shown in the header preview.
const PreviewLimit = 5

// Notification ids are opaque strings; the seeds use small numbers and published ones a clock id.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"` // display string, not parsed
	Read      bool   `json:"read"`
}

// NewNotification is the content of a notification published by an admin.
type NewNotification struct {
	Title string `json:"title" validate:"notblank"`
	Body  string `json:"body" validate:"notblank"`
	Email bool   `json:"email"` // also send it to the configured recipients
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Body = core.CleanString(nn.Body)
	return validate.Struct(nn)
}

// Collection is the persisted side of a Feed, eg. a *namespace.Namespace.
type Collection interface {
	Get(ctx context.Context, defaultValue []Notification) ([]Notification, error)
	Save(ctx context.Context, coll []Notification) error
}

// Feed reads and mutates the notifications collection.
// Every operation re-reads the persisted collection and every mutation saves it before returning.
type Feed struct {
	coll       Collection
	seed       []Notification
	mailer     core.EmailService
	recipients []mail.Address

	mu sync.Mutex // serializes read-modify-write cycles
}

func NewFeed(coll Collection, seed []Notification) *Feed {
	return &Feed{coll: coll, seed: seed}
}

// WithMailer makes Publish email the notifications it is asked to, to recipients.
func (f *Feed) WithMailer(mailer core.EmailService, recipients ...mail.Address) *Feed {
	f.mailer = mailer
	f.recipients = recipients
	return f
}

func (f *Feed) load(ctx context.Context) ([]Notification, error) {
	items, err := f.coll.Get(ctx, f.seed)
	if err != nil {
		return nil, errors.Wrap(err, "loading notifications")
	}
	return items, nil
}

func (f *Feed) save(ctx context.Context, items []Notification) error {
	if err := f.coll.Save(ctx, items); err != nil {
		return errors.Wrap(err, "saving notifications")
	}
	return nil
}

// List returns every notification in stored order.
func (f *Feed) List(ctx context.Context) ([]Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(ctx)
}

// ListPreview returns the first limit notifications in stored order (PreviewLimit when limit <= 0).
func (f *Feed) ListPreview(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = PreviewLimit
	}
	items, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// UnreadCount returns the number of notifications not read yet.
func (f *Feed) UnreadCount(ctx context.Context) (int, error) {
	items, err := f.List(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n, nil
}

// MarkAsRead flags the notification with the given id as read.
// An unknown id is a no-op (found=false) and nothing is written.
func (f *Feed) MarkAsRead(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load(ctx)
	if err != nil {
		return false, err
	}
	found := false
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
			found = true
		}
	}
	if !found {
		return false, nil
	}
	return true, f.save(ctx, items)
}

// MarkAllAsRead flags every notification as read.
func (f *Feed) MarkAllAsRead(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Read = true
	}
	return f.save(ctx, items)
}

// Delete removes the notification with the given id.
// An unknown id is a no-op (found=false) and nothing is written.
func (f *Feed) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]Notification, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	return true, f.save(ctx, kept)
}

// Publish adds an unread notification at the top of the feed.
func (f *Feed) Publish(ctx context.Context, nn NewNotification) (Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load(ctx)
	if err != nil {
		return Notification{}, err
	}
	n := Notification{
		ID:        strconv.FormatInt(core.NextID(), 10),
		Title:     nn.Title,
		Body:      nn.Body,
		Timestamp: core.DisplayTime(core.NowFunc()),
	}
	next := make([]Notification, 0, len(items)+1)
	next = append(next, n)
	next = append(next, items...)
	if err = f.save(ctx, next); err != nil {
		return Notification{}, err
	}

	if nn.Email && f.mailer != nil && len(f.recipients) > 0 {
		f.mailer.SendMessages(&core.EmailMessage{
			Bcc:          f.recipients,
			Subject:      n.Title,
			TemplateName: "notification",
			TemplateData: n,
		})
	}
	return n, nil
}
