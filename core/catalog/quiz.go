package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/pathways/core"
)

// QuizAnswer is one answer given to the interest or the strength quiz.
type QuizAnswer struct {
	ID       int64  `json:"id"`
	Owner    string `json:"owner"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
	Score    int    `json:"score"`
	TakenAt  string `json:"taken_at,omitempty"`
}

func (a QuizAnswer) RecordID() int64 { return a.ID }

func (a QuizAnswer) WithID(id int64) QuizAnswer {
	a.ID = id
	return a
}

func (a QuizAnswer) Matches(q Query) bool {
	return q.ownedBy(a.Owner) && core.SameCategory(q.Category, a.Category) &&
		core.Matches(q.Search, a.Question, a.Answer)
}

func (a QuizAnswer) SortKey(field string) (interface{}, bool) {
	switch field {
	case "id", "taken_at":
		return a.ID, true
	case "category":
		return a.Category, true
	case "score":
		return int64(a.Score), true
	}
	return nil, false
}

type QuizAnswerForm struct {
	Question string `json:"question" validate:"notblank"`
	Answer   string `json:"answer" validate:"notblank"`
	Category string `json:"category"`
	Score    int    `json:"score" validate:"gte=0,lte=10"`
	Owner    string `json:"-"`
}

func (f *QuizAnswerForm) Validate(validate *validator.Validate) error {
	f.Question = core.CleanString(f.Question)
	f.Answer = core.CleanString(f.Answer)
	f.Category = core.CleanString(f.Category)
	return validate.Struct(f)
}

func (f *QuizAnswerForm) Record(orig QuizAnswer) QuizAnswer {
	orig.Question = f.Question
	orig.Answer = f.Answer
	orig.Category = f.Category
	orig.Score = f.Score
	if orig.Owner == "" {
		orig.Owner = f.Owner
		orig.TakenAt = core.DisplayTime(core.NowFunc())
	}
	return orig
}

func (f *QuizAnswerForm) SetOwner(owner string) { f.Owner = owner }
