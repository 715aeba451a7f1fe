// Package namespace binds typed collections to their fixed storage keys.
package namespace

import (
	"context"

	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/core/notification"
)

// Storage keys
const (
	KeyCareers          = "app_careers"
	KeyForums           = "app_forums"
	KeyMentors          = "app_mentors"
	KeyEvents           = "app_events"
	KeyCounselors       = "app_counselors"
	KeyAdminUsers       = "app_admin_users"
	KeyAdminRoles       = "app_admin_roles"
	KeySavedCareers     = "app_saved_careers"
	KeyNotifications    = "app_notifications"
	KeyRegisteredEvents = "app_registered_events"
	KeyInterestQuiz     = "app_interest_quiz"
	KeyStrengthQuiz     = "app_strength_quiz"
)

var AllKeys = []string{
	KeyCareers, KeyForums, KeyMentors, KeyEvents, KeyCounselors, KeyAdminUsers, KeyAdminRoles,
	KeySavedCareers, KeyNotifications, KeyRegisteredEvents, KeyInterestQuiz, KeyStrengthQuiz,
}

// Namespace is one collection of T persisted under a fixed key.
type Namespace[T any] struct {
	key     string
	adapter *kv.Adapter
}

func New[T any](adapter *kv.Adapter, key string) *Namespace[T] {
	return &Namespace[T]{key: key, adapter: adapter}
}

func (ns *Namespace[T]) Key() string { return ns.key }

func (ns *Namespace[T]) Adapter() *kv.Adapter { return ns.adapter }

// Get returns the persisted collection, seeding it with defaultValue on first access.
// The result is never nil.
func (ns *Namespace[T]) Get(ctx context.Context, defaultValue []T) ([]T, error) {
	if defaultValue == nil {
		defaultValue = []T{}
	}
	var coll []T
	if err := ns.adapter.Get(ctx, ns.key, defaultValue, &coll); err != nil {
		return nil, err
	}
	if coll == nil { // stored "null"
		coll = []T{}
	}
	return coll, nil
}

// Save replaces the persisted collection.
func (ns *Namespace[T]) Save(ctx context.Context, coll []T) error {
	if coll == nil {
		coll = []T{}
	}
	return ns.adapter.Save(ctx, ns.key, coll)
}

// Registry holds every namespace of the application.
type Registry struct {
	Adapter          *kv.Adapter
	Careers          *Namespace[catalog.Career]
	Forums           *Namespace[catalog.Forum]
	Mentors          *Namespace[catalog.Mentor]
	Events           *Namespace[catalog.Event]
	Counselors       *Namespace[catalog.Counselor]
	AdminUsers       *Namespace[catalog.AdminUser]
	AdminRoles       *Namespace[catalog.AdminRole]
	SavedCareers     *Namespace[catalog.SavedCareer]
	Notifications    *Namespace[notification.Notification]
	RegisteredEvents *Namespace[catalog.EventRegistration]
	InterestQuiz     *Namespace[catalog.QuizAnswer]
	StrengthQuiz     *Namespace[catalog.QuizAnswer]
}

func NewRegistry(adapter *kv.Adapter) *Registry {
	return &Registry{
		Adapter:          adapter,
		Careers:          New[catalog.Career](adapter, KeyCareers),
		Forums:           New[catalog.Forum](adapter, KeyForums),
		Mentors:          New[catalog.Mentor](adapter, KeyMentors),
		Events:           New[catalog.Event](adapter, KeyEvents),
		Counselors:       New[catalog.Counselor](adapter, KeyCounselors),
		AdminUsers:       New[catalog.AdminUser](adapter, KeyAdminUsers),
		AdminRoles:       New[catalog.AdminRole](adapter, KeyAdminRoles),
		SavedCareers:     New[catalog.SavedCareer](adapter, KeySavedCareers),
		Notifications:    New[notification.Notification](adapter, KeyNotifications),
		RegisteredEvents: New[catalog.EventRegistration](adapter, KeyRegisteredEvents),
		InterestQuiz:     New[catalog.QuizAnswer](adapter, KeyInterestQuiz),
		StrengthQuiz:     New[catalog.QuizAnswer](adapter, KeyStrengthQuiz),
	}
}
