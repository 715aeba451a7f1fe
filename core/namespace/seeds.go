package namespace

import (
	"context"
	"encoding/json"
	"io/fs"
	"path"

	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/notification"
	appfs "github.com/trezcool/pathways/fs"
)

const seedsDir = "seeds"

// Seeds holds the default collections written the first time each namespace is read.
type Seeds struct {
	Careers          []catalog.Career
	Forums           []catalog.Forum
	Mentors          []catalog.Mentor
	Events           []catalog.Event
	Counselors       []catalog.Counselor
	AdminUsers       []catalog.AdminUser
	AdminRoles       []catalog.AdminRole
	SavedCareers     []catalog.SavedCareer
	Notifications    []notification.Notification
	RegisteredEvents []catalog.EventRegistration
	InterestQuiz     []catalog.QuizAnswer
	StrengthQuiz     []catalog.QuizAnswer
}

// SeedDocument returns the raw seed of key from fsys ("seeds/<key>.json").
func SeedDocument(fsys fs.FS, key string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, path.Join(seedsDir, key+".json"))
	return data, errors.Wrapf(err, "reading %s seed", key)
}

func loadSeed[T any](fsys fs.FS, key string, out *[]T) error {
	data, err := SeedDocument(fsys, key)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decoding %s seed", key)
	}
	if *out == nil {
		*out = []T{}
	}
	return nil
}

// LoadSeeds reads every seed from fsys.
func LoadSeeds(fsys fs.FS) (*Seeds, error) {
	s := new(Seeds)
	loaders := []func() error{
		func() error { return loadSeed(fsys, KeyCareers, &s.Careers) },
		func() error { return loadSeed(fsys, KeyForums, &s.Forums) },
		func() error { return loadSeed(fsys, KeyMentors, &s.Mentors) },
		func() error { return loadSeed(fsys, KeyEvents, &s.Events) },
		func() error { return loadSeed(fsys, KeyCounselors, &s.Counselors) },
		func() error { return loadSeed(fsys, KeyAdminUsers, &s.AdminUsers) },
		func() error { return loadSeed(fsys, KeyAdminRoles, &s.AdminRoles) },
		func() error { return loadSeed(fsys, KeySavedCareers, &s.SavedCareers) },
		func() error { return loadSeed(fsys, KeyNotifications, &s.Notifications) },
		func() error { return loadSeed(fsys, KeyRegisteredEvents, &s.RegisteredEvents) },
		func() error { return loadSeed(fsys, KeyInterestQuiz, &s.InterestQuiz) },
		func() error { return loadSeed(fsys, KeyStrengthQuiz, &s.StrengthQuiz) },
	}
	for _, load := range loaders {
		if err := load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DefaultSeeds reads the seeds embedded in the binary.
func DefaultSeeds() (*Seeds, error) {
	return LoadSeeds(appfs.FS)
}

// ApplySeeds writes the seed of every namespace whose key is absent (every namespace when force is set)
// and returns the keys written.
func (r *Registry) ApplySeeds(ctx context.Context, fsys fs.FS, force bool) ([]string, error) {
	written := make([]string, 0, len(AllKeys))
	for _, key := range AllKeys {
		if !force {
			_, found, err := r.Adapter.Raw(ctx, key)
			if err != nil {
				return written, err
			}
			if found {
				continue
			}
		}
		data, err := SeedDocument(fsys, key)
		if err != nil {
			return written, err
		}
		if err = r.Adapter.SetRaw(ctx, key, data); err != nil {
			return written, errors.Wrapf(err, "seeding %s", key)
		}
		written = append(written, key)
	}
	return written, nil
}
