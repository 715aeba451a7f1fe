package dashboard

import (
	"context"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/core/namespace"
)

// Boards holds one controller per dashboard collection.
type Boards struct {
	Careers          *Controller[catalog.Career]
	Forums           *Controller[catalog.Forum]
	Mentors          *Controller[catalog.Mentor]
	Events           *Controller[catalog.Event]
	Counselors       *Controller[catalog.Counselor]
	AdminUsers       *Controller[catalog.AdminUser]
	AdminRoles       *Controller[catalog.AdminRole]
	SavedCareers     *Controller[catalog.SavedCareer]
	RegisteredEvents *Controller[catalog.EventRegistration]
	InterestQuiz     *Controller[catalog.QuizAnswer]
	StrengthQuiz     *Controller[catalog.QuizAnswer]
}

func NewBoards(reg *namespace.Registry, seeds *namespace.Seeds, logger core.Logger) *Boards {
	if seeds == nil {
		seeds = new(namespace.Seeds)
	}
	return &Boards{
		Careers:          New[catalog.Career](reg.Careers, seeds.Careers, logger),
		Forums:           New[catalog.Forum](reg.Forums, seeds.Forums, logger),
		Mentors:          New[catalog.Mentor](reg.Mentors, seeds.Mentors, logger),
		Events:           New[catalog.Event](reg.Events, seeds.Events, logger),
		Counselors:       New[catalog.Counselor](reg.Counselors, seeds.Counselors, logger),
		AdminUsers:       New[catalog.AdminUser](reg.AdminUsers, seeds.AdminUsers, logger),
		AdminRoles:       New[catalog.AdminRole](reg.AdminRoles, seeds.AdminRoles, logger),
		SavedCareers:     New[catalog.SavedCareer](reg.SavedCareers, seeds.SavedCareers, logger),
		RegisteredEvents: New[catalog.EventRegistration](reg.RegisteredEvents, seeds.RegisteredEvents, logger),
		InterestQuiz:     New[catalog.QuizAnswer](reg.InterestQuiz, seeds.InterestQuiz, logger),
		StrengthQuiz:     New[catalog.QuizAnswer](reg.StrengthQuiz, seeds.StrengthQuiz, logger),
	}
}

type watcher interface {
	Key() string
	Mount(ctx context.Context) error
	Watch(ctx context.Context, hub *kv.Hub)
}

func (b *Boards) all() []watcher {
	return []watcher{
		b.Careers, b.Forums, b.Mentors, b.Events, b.Counselors, b.AdminUsers, b.AdminRoles,
		b.SavedCareers, b.RegisteredEvents, b.InterestQuiz, b.StrengthQuiz,
	}
}

// Mount loads every collection, seeding the absent ones.
func (b *Boards) Mount(ctx context.Context) error {
	for _, w := range b.all() {
		if err := w.Mount(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Watch resyncs every controller from hub until ctx is done.
// Every controller is subscribed when Watch returns.
func (b *Boards) Watch(ctx context.Context, hub *kv.Hub) {
	for _, w := range b.all() {
		w.Watch(ctx, hub)
	}
}
