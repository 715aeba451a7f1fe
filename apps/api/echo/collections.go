package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/dashboard"
)

// formPtr is satisfied by *F when F is the form of T.
type formPtr[T any, F any] interface {
	*F
	catalog.Form[T]
}

type collectionOptions struct {
	readRoles   []string // empty: any session
	createRoles []string
	writeRoles  []string // update & delete
	owned       bool     // records belong to the session that created them
}

type collectionApi[T catalog.Record[T], F any, PF formPtr[T, F]] struct {
	ctrl     *dashboard.Controller[T]
	validate *validator.Validate
	opts     collectionOptions
	present  func(T) T
}

func registerCollection[T catalog.Record[T], F any, PF formPtr[T, F]](
	g *echo.Group,
	path string,
	ctrl *dashboard.Controller[T],
	validate *validator.Validate,
	opts collectionOptions,
	present ...func(T) T,
) {
	api := &collectionApi[T, F, PF]{ctrl: ctrl, validate: validate, opts: opts}
	if len(present) > 0 {
		api.present = present[0]
	}

	cg := g.Group(path, roleMiddleware(opts.readRoles...))
	cg.GET("", api.query)
	cg.POST("", api.create, roleMiddleware(opts.createRoles...))
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, roleMiddleware(opts.writeRoles...))
	cg.DELETE("/:id", api.destroy, roleMiddleware(opts.writeRoles...))
}

func (api *collectionApi[T, F, PF]) show(rec T) T {
	if api.present != nil {
		return api.present(rec)
	}
	return rec
}

// scope returns the query every view of the session is restricted to.
func (api *collectionApi[T, F, PF]) scope(ctx echo.Context) (catalog.Query, error) {
	var q catalog.Query
	if !api.opts.owned {
		return q, nil
	}
	sess, err := getContextSession(ctx)
	if err != nil {
		return q, err
	}
	q.Owner = sess.Owner()
	return q, nil
}

// visible returns the record with the given id if the session can see it.
func (api *collectionApi[T, F, PF]) visible(ctx echo.Context, id int64) (T, bool, error) {
	var zero T
	q, err := api.scope(ctx)
	if err != nil {
		return zero, false, err
	}
	rec, found, err := api.ctrl.Get(ctx.Request().Context(), id)
	if err != nil || !found {
		return zero, false, err
	}
	q.Clean()
	if api.opts.owned && !rec.Matches(q) {
		return zero, false, nil
	}
	return rec, true, nil
}

func (api *collectionApi[T, F, PF]) bindForm(ctx echo.Context) (PF, error) {
	form := PF(new(F))
	if err := ctx.Bind(form); err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "invalid payload"))
	}
	if api.opts.owned {
		sess, err := getContextSession(ctx)
		if err != nil {
			return nil, err
		}
		if owned, ok := interface{}(form).(catalog.Owned); ok {
			owned.SetOwner(sess.Owner())
		}
	}
	if err := form.Validate(api.validate); err != nil {
		return nil, err
	}
	return form, nil
}

// Handlers

func (api *collectionApi[T, F, PF]) query(ctx echo.Context) error {
	q, err := api.scope(ctx)
	if err != nil {
		return err
	}
	q.Search = ctx.QueryParam("search")
	q.Category = ctx.QueryParam("category")
	ordering := new(Ordering)
	ordering.Bind(ctx)

	recs, err := api.ctrl.Filter(ctx.Request().Context(), q, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "filtering "+api.ctrl.Key())
	}
	for i := range recs {
		recs[i] = api.show(recs[i])
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *collectionApi[T, F, PF]) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	rec, found, err := api.visible(ctx, id)
	if err != nil {
		return errors.Wrap(err, "finding record")
	}
	if !found {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, api.show(rec))
}

func (api *collectionApi[T, F, PF]) create(ctx echo.Context) error {
	form, err := api.bindForm(ctx)
	if err != nil {
		return err
	}
	var zero T
	rec, err := api.ctrl.Create(ctx.Request().Context(), form.Record(zero))
	if err != nil {
		return errors.Wrap(err, "creating record")
	}
	return ctx.JSON(http.StatusCreated, api.show(rec))
}

// update answers 204 when the record vanished: editing a deleted record is a no-op.
func (api *collectionApi[T, F, PF]) update(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	if _, found, err := api.visible(ctx, id); err != nil || !found {
		if err != nil {
			return errors.Wrap(err, "finding record")
		}
		return ctx.NoContent(http.StatusNoContent)
	}

	form, err := api.bindForm(ctx)
	if err != nil {
		return err
	}
	rec, found, err := api.ctrl.Update(ctx.Request().Context(), id, form.Record)
	if err != nil {
		return errors.Wrap(err, "updating record")
	}
	if !found {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, api.show(rec))
}

// destroy requires "?confirm=true"; deleting a missing record is a no-op.
func (api *collectionApi[T, F, PF]) destroy(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	confirmed := bindConfirm(ctx)
	if confirmed {
		if _, found, err := api.visible(ctx, id); err != nil || !found {
			if err != nil {
				return errors.Wrap(err, "finding record")
			}
			return ctx.NoContent(http.StatusNoContent)
		}
	}
	if _, err = api.ctrl.Delete(ctx.Request().Context(), id, confirmed); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func registerCatalogAPI(g *echo.Group, deps ServerDeps) {
	b := deps.Boards
	v := deps.Validate

	staff := []string{core.RoleAdmin, core.RoleCounselor}
	admin := []string{core.RoleAdmin}

	registerCollection[catalog.Career, catalog.CareerForm](g, "/careers", b.Careers, v,
		collectionOptions{createRoles: staff, writeRoles: staff})
	registerCollection[catalog.Mentor, catalog.MentorForm](g, "/mentors", b.Mentors, v,
		collectionOptions{createRoles: staff, writeRoles: staff})
	registerCollection[catalog.Counselor, catalog.CounselorForm](g, "/counselors", b.Counselors, v,
		collectionOptions{createRoles: []string{core.RoleAdmin, core.RoleSchool}, writeRoles: []string{core.RoleAdmin, core.RoleSchool}})
	registerCollection[catalog.Event, catalog.EventForm](g, "/events", b.Events, v,
		collectionOptions{createRoles: []string{core.RoleAdmin, core.RoleSchool}, writeRoles: []string{core.RoleAdmin, core.RoleSchool}})
	registerCollection[catalog.Forum, catalog.ForumForm](g, "/forums", b.Forums, v,
		collectionOptions{writeRoles: staff})

	registerCollection[catalog.AdminUser, catalog.AdminUserForm](g, "/admin/users", b.AdminUsers, v,
		collectionOptions{readRoles: admin, createRoles: admin, writeRoles: admin}, catalog.AdminUser.Redacted)
	registerCollection[catalog.AdminRole, catalog.AdminRoleForm](g, "/admin/roles", b.AdminRoles, v,
		collectionOptions{readRoles: admin, createRoles: admin, writeRoles: admin})

	// per-user lists
	registerCollection[catalog.SavedCareer, catalog.SavedCareerForm](g, "/saved-careers", b.SavedCareers, v,
		collectionOptions{owned: true})
	registerCollection[catalog.EventRegistration, catalog.EventRegistrationForm](g, "/registrations", b.RegisteredEvents, v,
		collectionOptions{owned: true})
	registerCollection[catalog.QuizAnswer, catalog.QuizAnswerForm](g, "/quizzes/interest", b.InterestQuiz, v,
		collectionOptions{owned: true})
	registerCollection[catalog.QuizAnswer, catalog.QuizAnswerForm](g, "/quizzes/strength", b.StrengthQuiz, v,
		collectionOptions{owned: true})
}
