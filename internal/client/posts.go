package client

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pribylovaa/go-recipe-client/internal/models"
)

// Пути постов. Пагинация — query-параметры page/category там,
// где бэкенд их поддерживает.
const (
	pathPosts          = "/api/posts"
	pathPostsFollowing = "/api/posts/following"
	pathPostsTrending  = "/api/posts/trending"
	pathPostsMy        = "/api/posts/my"
)

// Posts — общая лента.
func (c *Client) Posts(ctx context.Context, page int, category string) ([]models.Post, error) {
	const op = "client/posts/Posts"
	return c.listPosts(ctx, op, pathPosts, page, category)
}

// FollowingPosts — лента подписок текущего зрителя.
func (c *Client) FollowingPosts(ctx context.Context, page int) ([]models.Post, error) {
	const op = "client/posts/FollowingPosts"
	return c.listPosts(ctx, op, pathPostsFollowing, page, "")
}

// TrendingPosts — популярные посты.
func (c *Client) TrendingPosts(ctx context.Context, page int) ([]models.Post, error) {
	const op = "client/posts/TrendingPosts"
	return c.listPosts(ctx, op, pathPostsTrending, page, "")
}

// UserPosts — посты конкретного пользователя.
func (c *Client) UserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	const op = "client/posts/UserPosts"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out []models.Post
	res, err := c.r(ctx).
		SetResult(&out).
		Get(pathPosts + "/user/" + url.PathEscape(userID))
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return out, nil
}

// MyPosts — посты текущего зрителя.
func (c *Client) MyPosts(ctx context.Context) ([]models.Post, error) {
	const op = "client/posts/MyPosts"

	var out []models.Post
	res, err := c.r(ctx).SetResult(&out).Get(pathPostsMy)
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return out, nil
}

// PostByID — один пост.
func (c *Client) PostByID(ctx context.Context, id string) (*models.Post, error) {
	const op = "client/posts/PostByID"

	if id == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.Post
	res, err := c.r(ctx).
		SetResult(&out).
		Get(pathPosts + "/" + url.PathEscape(id))
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return &out, nil
}

// CreatePost — создание поста из формы композитора.
// При наличии медиа запрос уходит как multipart form data.
func (c *Client) CreatePost(ctx context.Context, in models.CreatePostInput) (*models.Post, error) {
	const op = "client/posts/CreatePost"

	var out models.Post
	req := c.r(ctx).
		SetFormDataFromValues(postForm(in)).
		SetResult(&out)

	for _, m := range in.Media {
		req.SetFileReader("media", m.Name, bytes.NewReader(m.Data))
	}

	res, err := req.Post(pathPosts)
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return &out, nil
}

// UpdatePost — обновление поста автором. Семантика формы совпадает
// с CreatePost; без новых медиа бэкенд сохраняет прежние вложения.
func (c *Client) UpdatePost(ctx context.Context, id string, in models.CreatePostInput) (*models.Post, error) {
	const op = "client/posts/UpdatePost"

	if id == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.Post
	req := c.r(ctx).
		SetFormDataFromValues(postForm(in)).
		SetResult(&out)

	for _, m := range in.Media {
		req.SetFileReader("media", m.Name, bytes.NewReader(m.Data))
	}

	res, err := req.Put(pathPosts + "/" + url.PathEscape(id))
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return &out, nil
}

// DeletePost — удаление поста автором.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	const op = "client/posts/DeletePost"

	if id == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := c.r(ctx).Delete(pathPosts + "/" + url.PathEscape(id))
	return c.check(ctx, res, err, op)
}

func (c *Client) listPosts(ctx context.Context, op, path string, page int, category string) ([]models.Post, error) {
	req := c.r(ctx)

	if page > 0 {
		req.SetQueryParam("page", strconv.Itoa(page))
	}
	if category != "" {
		req.SetQueryParam("category", category)
	}

	var out []models.Post
	res, err := req.SetResult(&out).Get(path)
	if cerr := c.check(ctx, res, err, op); cerr != nil {
		return nil, cerr
	}

	return out, nil
}

// postForm — поля формы создания/обновления поста.
// Ingredients/Amounts/Instructions уходят повторяющимися ключами.
func postForm(in models.CreatePostInput) url.Values {
	form := url.Values{}
	form.Set("title", in.Title)
	form.Set("description", in.Description)

	if in.Content != "" {
		form.Set("content", in.Content)
	}
	if in.MediaType != "" {
		form.Set("mediaType", string(in.MediaType))
	}
	for _, v := range in.Ingredients {
		form.Add("ingredients", v)
	}
	for _, v := range in.Amounts {
		form.Add("amounts", v)
	}
	for _, v := range in.Instructions {
		form.Add("instructions", v)
	}
	if in.CookingTime > 0 {
		form.Set("cookingTime", strconv.Itoa(in.CookingTime))
	}
	if in.Servings > 0 {
		form.Set("servings", strconv.Itoa(in.Servings))
	}

	return form
}
