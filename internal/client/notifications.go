package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/pribylovaa/go-recipe-client/internal/models"
	"github.com/pribylovaa/go-recipe-client/internal/pkg/log"
)

const (
	pathNotifications = "/api/notifications"
)

// Notifications — список уведомлений текущего зрителя.
//
// Исторически у бэкенда два эндпоинта: основной /api/notifications и
// запасной /api/interactions/users/{id}/notifications. На любую ошибку
// основного делается ровно одна попытка запасного; если упали оба,
// наружу уходит ошибка основного.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	const op = "client/notifications/Notifications"

	viewer := c.Viewer()
	if viewer == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	var out []models.Notification
	res, err := c.r(ctx).SetResult(&out).Get(pathNotifications)
	primaryErr := c.check(ctx, res, err, op)
	if primaryErr == nil {
		return out, nil
	}

	log.From(ctx).Warn("notifications_primary_failed",
		slog.String("op", op),
		slog.String("err", primaryErr.Error()),
	)

	var fallback []models.Notification
	res, err = c.r(ctx).
		SetResult(&fallback).
		Get("/api/interactions/users/" + url.PathEscape(viewer) + "/notifications")
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, primaryErr
	}

	return fallback, nil
}

// MarkNotificationRead — пометить уведомление прочитанным.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	const op = "client/notifications/MarkNotificationRead"

	if id == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := c.r(ctx).Put(pathNotifications + "/" + url.PathEscape(id) + "/read")
	return c.check(ctx, res, err, op)
}

// MarkAllNotificationsRead — пометить все уведомления прочитанными.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	const op = "client/notifications/MarkAllNotificationsRead"

	res, err := c.r(ctx).Put(pathNotifications + "/read-all")
	return c.check(ctx, res, err, op)
}
