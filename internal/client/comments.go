package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-recipe-client/internal/models"
)

// Эндпоинты комментариев. Создание ответа использует тот же POST
// с полем parentCommentId; отдельного reply-эндпоинта у бэкенда нет.
// Обновление исторически живёт под /api/posts, остальное —
// под /api/interactions.
const (
	pathInteractionsPosts = "/api/interactions/posts"
)

// Comments — плоский список комментариев поста в порядке сервера.
// Дерево из него собирает reconciler; клиент порядок не меняет.
func (c *Client) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "client/comments/Comments"

	if postID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out []models.Comment
	res, err := c.r(ctx).
		SetResult(&out).
		Get(pathInteractionsPosts + "/" + url.PathEscape(postID) + "/comments")
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return out, nil
}

// CreateComment — корневой комментарий или ответ (через ParentCommentID).
func (c *Client) CreateComment(ctx context.Context, postID string, in models.CreateCommentInput) (*models.Comment, error) {
	const op = "client/comments/CreateComment"

	if postID == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.Comment
	res, err := c.r(ctx).
		SetBody(in).
		SetResult(&out).
		Post(pathInteractionsPosts + "/" + url.PathEscape(postID) + "/comments")
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return &out, nil
}

// UpdateComment — правка текста комментария.
func (c *Client) UpdateComment(ctx context.Context, postID, commentID, content string) (*models.Comment, error) {
	const op = "client/comments/UpdateComment"

	if postID == "" || commentID == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.Comment
	res, err := c.r(ctx).
		SetBody(map[string]string{"content": content}).
		SetResult(&out).
		Put(pathPosts + "/" + url.PathEscape(postID) + "/comments/" + url.PathEscape(commentID))
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return &out, nil
}

// DeleteComment — удаление комментария (или ответа).
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	const op = "client/comments/DeleteComment"

	if postID == "" || commentID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := c.r(ctx).
		Delete(pathInteractionsPosts + "/" + url.PathEscape(postID) + "/comments/" + url.PathEscape(commentID))
	return c.check(ctx, res, err, op)
}
