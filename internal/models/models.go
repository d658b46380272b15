// Package models содержит доменные сущности клиентского слоя.
//
// Это wire-модели REST-бэкенда рецептов: JSON-теги совпадают с тем,
// что отдаёт сервер (camelCase). Клиент не хранит ничего своего сверх
// этих структур — всё состояние пересобирается из последнего удачного
// ответа сервера.
package models

import (
	"strings"
	"time"
)

// MediaType — тип медиавложения поста.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Post — пост с рецептом.
// Важно:
//   - ID/UserID — строковые идентификаторы бэкенда;
//   - MediaURLs/MediaType — ноль или больше вложений одного типа;
//   - Ingredients/Amounts — параллельные списки (amounts опционален);
//   - Likes/Comments — счётчики, авторитетные значения приходят с сервера.
type Post struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	UserPicture  string    `json:"userPicture,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Content      string    `json:"content,omitempty"`
	MediaURLs    []string  `json:"mediaUrls,omitempty"`
	MediaType    MediaType `json:"mediaType,omitempty"`
	Ingredients  []string  `json:"ingredients,omitempty"`
	Amounts      []string  `json:"amounts,omitempty"`
	Instructions []string  `json:"instructions,omitempty"`
	CookingTime  int       `json:"cookingTime,omitempty"`
	Servings     int       `json:"servings,omitempty"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment — комментарий к посту.
// ParentCommentID == "" — корневой комментарий; иначе — ответ.
// Сервер хранит плоский список, дерево собирается на клиенте
// (см. internal/reconciler).
type Comment struct {
	ID              string    `json:"id"`
	PostID          string    `json:"postId"`
	ParentCommentID string    `json:"parentCommentId,omitempty"`
	UserID          string    `json:"userId"`
	UserName        string    `json:"userName"`
	UserPicture     string    `json:"userPicture,omitempty"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsReply сообщает, является ли комментарий ответом.
func (c Comment) IsReply() bool {
	return c.ParentCommentID != ""
}

// NotificationType — тип уведомления.
type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationComment NotificationType = "COMMENT"
	NotificationReply   NotificationType = "REPLY"
)

// Notification — уведомление о взаимодействии.
type Notification struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	SenderID         string           `json:"senderId"`
	SenderName       string           `json:"senderName"`
	Message          string           `json:"message,omitempty"`
	Type             NotificationType `json:"type"`
	RelatedPostID    string           `json:"relatedPostId,omitempty"`
	RelatedCommentID string           `json:"relatedCommentId,omitempty"`
	Read             bool             `json:"read"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// Valid проверяет минимальную пригодность уведомления к показу:
// id, type и senderName обязательны и непусты. Невалидные записи
// отбрасываются целиком — не показываются и не считаются.
func (n Notification) Valid() bool {
	return strings.TrimSpace(n.ID) != "" &&
		strings.TrimSpace(string(n.Type)) != "" &&
		strings.TrimSpace(n.SenderName) != ""
}

// LikeStatus — состояние лайка пары (пост, зритель).
type LikeStatus struct {
	Liked bool `json:"liked"`
}

// FollowStatus — состояние подписки пары (зритель, пользователь).
type FollowStatus struct {
	Following bool `json:"following"`
}

// ToggleResult — ответ бэкенда на переключение лайка/подписки.
// Likes присутствует, если сервер вернул авторитетный счётчик.
type ToggleResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Liked   bool   `json:"liked"`
	Likes   *int   `json:"likes,omitempty"`
}

// CreateCommentInput — создание корневого комментария или ответа.
// Если ParentCommentID непуст — создаётся ответ (тот же эндпоинт).
type CreateCommentInput struct {
	Content         string `json:"content"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
}

// CreatePostInput — данные формы создания/обновления поста.
// Media отправляется как multipart form data.
type CreatePostInput struct {
	Title        string
	Description  string
	Content      string
	Ingredients  []string
	Amounts      []string
	Instructions []string
	CookingTime  int
	Servings     int
	MediaType    MediaType
	Media        []MediaFile
}

// MediaFile — одно медиавложение формы.
type MediaFile struct {
	Name        string
	ContentType string
	Data        []byte
}
