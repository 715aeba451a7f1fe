package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/notification"
)

type notificationApi struct {
	deps ServerDeps
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

func registerNotificationAPI(g *echo.Group, deps ServerDeps) {
	api := notificationApi{deps: deps}

	g.GET("", api.query)
	g.GET("/unread-count", api.unreadCount)
	g.POST("/read-all", api.markAllAsRead)
	g.POST("/:id/read", api.markAsRead)
	g.DELETE("/:id", api.destroy)
	g.POST("", api.publish, roleMiddleware(core.RoleAdmin))
}

// query returns the whole feed, or its first N notifications with "?preview=N" (N defaults to 5).
func (api *notificationApi) query(ctx echo.Context) error {
	feed := api.deps.Feed
	reqCtx := ctx.Request().Context()

	var items []notification.Notification
	var err error
	if preview, ok := ctx.QueryParams()["preview"]; ok {
		limit := 0
		if len(preview) > 0 {
			limit, _ = strconv.Atoi(preview[0])
		}
		items, err = feed.ListPreview(reqCtx, limit)
	} else {
		items, err = feed.List(reqCtx)
	}
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	n, err := api.deps.Feed.UnreadCount(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting unread notifications")
	}
	return ctx.JSON(http.StatusOK, UnreadCountResponse{Unread: n})
}

// markAsRead ignores unknown ids.
func (api *notificationApi) markAsRead(ctx echo.Context) error {
	if _, err := api.deps.Feed.MarkAsRead(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "marking notification as read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) markAllAsRead(ctx echo.Context) error {
	if err := api.deps.Feed.MarkAllAsRead(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "marking all notifications as read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// destroy ignores unknown ids.
func (api *notificationApi) destroy(ctx echo.Context) error {
	if _, err := api.deps.Feed.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) publish(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errors.Wrap(err, "invalid payload"))
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	n, err := api.deps.Feed.Publish(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "publishing notification")
	}
	return ctx.JSON(http.StatusCreated, n)
}
