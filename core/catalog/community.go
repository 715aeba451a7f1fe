package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/pathways/core"
)

type Forum struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category,omitempty"`
	Author    string `json:"author,omitempty"`
	Body      string `json:"body,omitempty"`
	Replies   int    `json:"replies"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (f Forum) RecordID() int64 { return f.ID }

func (f Forum) WithID(id int64) Forum {
	f.ID = id
	return f
}

func (f Forum) Matches(q Query) bool {
	return core.SameCategory(q.Category, f.Category) && core.Matches(q.Search, f.Title, f.Body, f.Author)
}

func (f Forum) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id", "created_at":
		return f.ID, true
	case "title":
		return f.Title, true
	case "replies":
		return int64(f.Replies), true
	}
	return nil, false
}

type ForumForm struct {
	Title    string `json:"title" validate:"notblank"`
	Category string `json:"category"`
	Author   string `json:"author"`
	Body     string `json:"body" validate:"notblank"`
}

func (f *ForumForm) Validate(validate *validator.Validate) error {
	f.Title = core.CleanString(f.Title)
	f.Category = core.CleanString(f.Category)
	f.Author = core.CleanString(f.Author)
	f.Body = core.CleanString(f.Body)
	return validate.Struct(f)
}

func (f *ForumForm) Record(orig Forum) Forum {
	orig.Title = f.Title
	orig.Category = f.Category
	orig.Author = f.Author
	orig.Body = f.Body
	if orig.CreatedAt == "" {
		orig.CreatedAt = core.DisplayTime(core.NowFunc())
	}
	return orig
}

type Mentor struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Expertise string  `json:"expertise,omitempty"`
	Company   string  `json:"company,omitempty"`
	Email     string  `json:"email,omitempty"`
	Bio       string  `json:"bio,omitempty"`
	Rating    float64 `json:"rating"`
	Available bool    `json:"available"`
}

func (m Mentor) RecordID() int64 { return m.ID }

func (m Mentor) WithID(id int64) Mentor {
	m.ID = id
	return m
}

// Matches filters mentors by expertise when a category is requested.
func (m Mentor) Matches(q Query) bool {
	return core.SameCategory(q.Category, m.Expertise) && core.Matches(q.Search, m.Name, m.Expertise, m.Company)
}

func (m Mentor) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id":
		return m.ID, true
	case "name":
		return m.Name, true
	case "rating":
		return m.Rating, true
	case "available":
		return m.Available, true
	}
	return nil, false
}

type MentorForm struct {
	Name      string  `json:"name" validate:"notblank"`
	Expertise string  `json:"expertise" validate:"notblank"`
	Company   string  `json:"company"`
	Email     string  `json:"email" validate:"omitempty,email"`
	Bio       string  `json:"bio"`
	Rating    float64 `json:"rating" validate:"gte=0,lte=5"`
	Available bool    `json:"available"`
}

func (f *MentorForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Expertise = core.CleanString(f.Expertise)
	f.Company = core.CleanString(f.Company)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Bio = core.CleanString(f.Bio)
	return validate.Struct(f)
}

func (f *MentorForm) Record(orig Mentor) Mentor {
	orig.Name = f.Name
	orig.Expertise = f.Expertise
	orig.Company = f.Company
	orig.Email = f.Email
	orig.Bio = f.Bio
	orig.Rating = f.Rating
	orig.Available = f.Available
	return orig
}

// Counselor statuses
const (
	CounselorActive   = "active"
	CounselorInactive = "inactive"
	CounselorPending  = "pending"
)

type Counselor struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	School         string `json:"school,omitempty"`
	Status         string `json:"status,omitempty"`
}

func (c Counselor) RecordID() int64 { return c.ID }

func (c Counselor) WithID(id int64) Counselor {
	c.ID = id
	return c
}

// Matches filters counselors by status when a category is requested.
func (c Counselor) Matches(q Query) bool {
	return core.SameCategory(q.Category, c.Status) &&
		core.Matches(q.Search, c.Name, c.Email, c.Specialization, c.School)
}

func (c Counselor) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "school":
		return c.School, true
	case "status":
		return c.Status, true
	}
	return nil, false
}

type CounselorForm struct {
	Name           string `json:"name" validate:"notblank"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
	School         string `json:"school"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

func (f *CounselorForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Phone = core.CleanString(f.Phone)
	f.Specialization = core.CleanString(f.Specialization)
	f.School = core.CleanString(f.School)
	f.Status = core.CleanString(f.Status, true /* lower */)
	return validate.Struct(f)
}

func (f *CounselorForm) Record(orig Counselor) Counselor {
	orig.Name = f.Name
	orig.Email = f.Email
	orig.Phone = f.Phone
	orig.Specialization = f.Specialization
	orig.School = f.School
	orig.Status = f.Status
	if orig.Status == "" {
		orig.Status = CounselorActive
	}
	return orig
}
