package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pribylovaa/go-recipe-client/internal/models"
)

// LikeStatus — лайкнул ли текущий зритель пост.
func (c *Client) LikeStatus(ctx context.Context, postID string) (*models.LikeStatus, error) {
	const op = "client/likes/LikeStatus"

	if postID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.LikeStatus
	res, err := c.r(ctx).
		SetResult(&out).
		Get(pathPosts + "/" + url.PathEscape(postID) + "/likes/check")
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return &out, nil
}

// ToggleLike — переключение лайка. Один вызов на одно действие
// пользователя; дедупликацией конкурентных нажатий занимается
// reconciler, не клиент.
func (c *Client) ToggleLike(ctx context.Context, postID string) (*models.ToggleResult, error) {
	const op = "client/likes/ToggleLike"

	if postID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.ToggleResult
	res, err := c.r(ctx).
		SetResult(&out).
		Post(pathInteractionsPosts + "/" + url.PathEscape(postID) + "/likes")
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return &out, nil
}
