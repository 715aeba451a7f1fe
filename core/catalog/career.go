package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/pathways/core"
)

type Career struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Education   string   `json:"education,omitempty"`
	SalaryRange string   `json:"salary_range,omitempty"`
	Outlook     string   `json:"outlook,omitempty"`
}

func (c Career) RecordID() int64 { return c.ID }

func (c Career) WithID(id int64) Career {
	c.ID = id
	return c
}

func (c Career) Matches(q Query) bool {
	return core.SameCategory(q.Category, c.Category) && core.Matches(q.Search, c.Name, c.Description, c.Category)
}

func (c Career) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "category":
		return c.Category, true
	}
	return nil, false
}

type CareerForm struct {
	Name        string   `json:"name" validate:"notblank"`
	Category    string   `json:"category" validate:"notblank"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Education   string   `json:"education"`
	SalaryRange string   `json:"salary_range"`
	Outlook     string   `json:"outlook"`
}

func (f *CareerForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Category = core.CleanString(f.Category)
	f.Description = core.CleanString(f.Description)
	f.Skills = cleanList(f.Skills)
	return validate.Struct(f)
}

func (f *CareerForm) Record(orig Career) Career {
	orig.Name = f.Name
	orig.Category = f.Category
	orig.Description = f.Description
	orig.Skills = f.Skills
	orig.Education = f.Education
	orig.SalaryRange = f.SalaryRange
	orig.Outlook = f.Outlook
	return orig
}

// SavedCareer is a career bookmarked by a student or parent.
type SavedCareer struct {
	ID       int64  `json:"id"`
	CareerID int64  `json:"career_id"`
	Name     string `json:"name,omitempty"`
	Owner    string `json:"owner"`
	SavedAt  string `json:"saved_at,omitempty"`
}

func (s SavedCareer) RecordID() int64 { return s.ID }

func (s SavedCareer) WithID(id int64) SavedCareer {
	s.ID = id
	return s
}

func (s SavedCareer) Matches(q Query) bool {
	return q.ownedBy(s.Owner) && core.Matches(q.Search, s.Name)
}

func (s SavedCareer) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id", "saved_at":
		return s.ID, true
	case "name":
		return s.Name, true
	}
	return nil, false
}

type SavedCareerForm struct {
	CareerID int64  `json:"career_id" validate:"required"`
	Name     string `json:"name"`
	Owner    string `json:"-"`
}

func (f *SavedCareerForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	return validate.Struct(f)
}

func (f *SavedCareerForm) Record(orig SavedCareer) SavedCareer {
	orig.CareerID = f.CareerID
	orig.Name = f.Name
	if orig.Owner == "" {
		orig.Owner = f.Owner
		orig.SavedAt = core.DisplayTime(core.NowFunc())
	}
	return orig
}

// SetOwner marks the form as submitted by owner.
func (f *SavedCareerForm) SetOwner(owner string) { f.Owner = owner }
