package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pribylovaa/go-recipe-client/internal/models"
)

const pathUsers = "/api/users"

// Follow — подписка на пользователя.
func (c *Client) Follow(ctx context.Context, userID string) error {
	const op = "client/follows/Follow"

	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := c.r(ctx).Post(pathUsers + "/" + url.PathEscape(userID) + "/follow")
	return c.check(ctx, res, err, op)
}

// Unfollow — отписка от пользователя.
func (c *Client) Unfollow(ctx context.Context, userID string) error {
	const op = "client/follows/Unfollow"

	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := c.r(ctx).Delete(pathUsers + "/" + url.PathEscape(userID) + "/follow")
	return c.check(ctx, res, err, op)
}

// FollowStatus — подписан ли текущий зритель на пользователя.
func (c *Client) FollowStatus(ctx context.Context, userID string) (*models.FollowStatus, error) {
	const op = "client/follows/FollowStatus"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.FollowStatus
	res, err := c.r(ctx).
		SetResult(&out).
		Get(pathUsers + "/" + url.PathEscape(userID) + "/follow-status")
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return &out, nil
}
