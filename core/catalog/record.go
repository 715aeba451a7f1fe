// Package catalog defines the records managed from the dashboards and the forms used to edit them.
package catalog

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/pathways/core"
)

// Record is implemented by every collection entry that is managed with a dashboard.Controller.
type Record[T any] interface {
	RecordID() int64
	// WithID returns a copy of the record with its id set.
	WithID(id int64) T
	// Matches reports whether the record belongs to a filtered view.
	Matches(q Query) bool
	// SortKey returns the value used to order records by field (a string, int64, float64 or bool).
	SortKey(field string) (interface{}, bool)
}

// Form is the content of an add/edit modal for a T.
type Form[T any] interface {
	Validate(validate *validator.Validate) error
	// Record builds the submitted record on top of orig (the zero value when adding).
	Record(orig T) T
}

// Query filters a collection view.
type Query struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	Owner    string `query:"-"`
}

func (q *Query) Clean() {
	q.Search = core.CleanString(q.Search)
	q.Category = core.CleanString(q.Category)
	q.Owner = core.CleanString(q.Owner, true /* lower */)
}

func (q Query) ownedBy(owner string) bool {
	return q.Owner == "" || q.Owner == strings.ToLower(owner)
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = core.CleanString(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Unique is implemented by records that must not clash with the others of their collection.
type Unique[T any] interface {
	Conflicts(others []T) error
}

// Owned is implemented by forms of per-user lists; the owner comes from the session, never from the payload.
type Owned interface {
	SetOwner(owner string)
}
