// Package reconciler владеет in-memory представлением взаимодействий
// одного поста: комментарии/ответы, состояние лайка. Пользовательские
// действия применяются оптимистично (состояние меняется сразу), затем
// уходит ровно один запрос к REST-бэкенду; при успехе локальные
// значения перезаписываются авторитетными серверными, при ошибке
// состояние откатывается точно к моменту до оптимистичного изменения.
//
// Транзакционный паттерн apply/confirm/rollback дополнен in-flight
// guard'ом на каждую пару (сущность, действие): второй клик по лайку,
// пока первый в полёте, коалесцируется и никогда не порождает два
// конкурентных запроса, чьи ответы могли бы прийти в обратном порядке
// и рассинхронизировать счётчик.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-recipe-client/internal/client"
	"github.com/pribylovaa/go-recipe-client/internal/models"
	"github.com/pribylovaa/go-recipe-client/internal/pkg/log"
)

var (
	// ErrInvalidArgument — локальная валидация не прошла, запрос не отправлялся.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated — действие требует залогиненного зрителя.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied — зритель не автор комментария и не автор поста.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound — пост/комментарий отсутствует в снимке состояния.
	ErrNotFound = errors.New("not found")
	// ErrNotLoaded — операции над постом до успешного Load.
	ErrNotLoaded = errors.New("post not loaded")
	// ErrActionInFlight — такое же действие над той же сущностью уже в полёте.
	ErrActionInFlight = errors.New("action already in flight")
	// ErrInternal — ошибка бэкенда/транспорта, локальное состояние откатано.
	ErrInternal = errors.New("internal")
)

// API — подмножество HTTP-клиента, нужное реконсайлеру.
// Интерфейс здесь, а не в пакете client, чтобы тесты могли подставлять
// mockgen-двойник (mocks.MockAPI).
type API interface {
	PostByID(ctx context.Context, id string) (*models.Post, error)
	Comments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID string, in models.CreateCommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
	LikeStatus(ctx context.Context, postID string) (*models.LikeStatus, error)
	ToggleLike(ctx context.Context, postID string) (*models.ToggleResult, error)
}

// Reconciler — состояние взаимодействий пары (зритель, пост).
// Каждая вьюха держит собственный экземпляр с независимым снимком;
// один и тот же пост в двух вьюхах может расходиться — это принятое
// поведение клиента, не дефект.
type Reconciler struct {
	api      API
	viewerID string
	postID   string

	mu       sync.Mutex
	post     *models.Post
	comments []models.Comment // плоский список — источник истины для дерева
	thread   Thread           // производное, пересобирается целиком

	liked     bool
	likeCount int
	// guard переключателя лайка: likeInFlight — запрос в полёте,
	// likeQueued — второй клик, ожидающий коалесцированной отправки.
	likeInFlight bool
	likeQueued   bool

	// busy — in-flight guard операций над комментариями,
	// ключ "<действие>:<id сущности>".
	busy map[string]bool
}

// New создаёт реконсайлер для поста postID от лица зрителя viewerID
// ("" — аноним: чтение доступно, мутации отклоняются локально).
func New(api API, viewerID, postID string) *Reconciler {
	return &Reconciler{
		api:      api,
		viewerID: viewerID,
		postID:   postID,
		busy:     make(map[string]bool),
	}
}

// Load загружает пост, состояние лайка и комментарии, строит дерево.
// Состояние лайка всегда пересобирается из последнего удачного чтения,
// чтобы не накапливать дрейф клиент/сервер.
func (r *Reconciler) Load(ctx context.Context) error {
	const op = "reconciler/Load"

	lg := log.From(ctx).With("op", op, "post_id", r.postID)

	post, err := r.api.PostByID(ctx, r.postID)
	if err != nil {
		lg.Warn("post_load_failed", "err", err.Error())
		return fmt.Errorf("%s: %w", op, mapClientErr(err))
	}

	comments, err := r.api.Comments(ctx, r.postID)
	if err != nil {
		lg.Warn("comments_load_failed", "err", err.Error())
		return fmt.Errorf("%s: %w", op, mapClientErr(err))
	}

	liked := false
	if r.viewerID != "" {
		st, err := r.api.LikeStatus(ctx, r.postID)
		if err != nil {
			lg.Warn("like_status_failed", "err", err.Error())
			return fmt.Errorf("%s: %w", op, mapClientErr(err))
		}
		liked = st.Liked
	}

	r.mu.Lock()
	r.post = post
	r.comments = comments
	r.thread = BuildThread(comments)
	r.liked = liked
	r.likeCount = post.Likes
	r.mu.Unlock()

	return nil
}

// RefreshComments перечитывает плоский список и пересобирает дерево.
func (r *Reconciler) RefreshComments(ctx context.Context) error {
	const op = "reconciler/RefreshComments"

	comments, err := r.api.Comments(ctx, r.postID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapClientErr(err))
	}

	r.mu.Lock()
	r.comments = comments
	r.thread = BuildThread(comments)
	r.mu.Unlock()

	return nil
}

// ToggleLike — оптимистичное переключение лайка.
//
// Сценарии:
//   - запрос не в полёте: флип liked, счётчик ±1, один запрос к API;
//     при успехе авторитетный серверный счётчик перекрывает оптимистичный,
//     при ошибке состояние откатывается ровно к значению до флипа;
//   - запрос уже в полёте: второй клик применяется к локальному состоянию
//     и коалесцируется — после завершения первого запроса уходит не более
//     одного дополнительного. Лайк+анлайк до первого ответа оставляют
//     отображаемый счётчик равным исходному.
func (r *Reconciler) ToggleLike(ctx context.Context) error {
	const op = "reconciler/ToggleLike"

	if r.viewerID == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	r.mu.Lock()
	if r.post == nil {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNotLoaded)
	}

	if r.likeInFlight {
		// Коалесценция: локальный флип сейчас, запрос — после текущего.
		r.flipLikeLocked()
		r.likeQueued = !r.likeQueued
		r.mu.Unlock()
		return nil
	}

	priorLiked, priorCount := r.liked, r.likeCount
	r.flipLikeLocked()
	r.likeInFlight = true
	r.mu.Unlock()

	lg := log.From(ctx).With("op", op, "post_id", r.postID)

	firstAttempt := true
	for {
		res, err := r.api.ToggleLike(ctx, r.postID)

		r.mu.Lock()
		if err != nil {
			if firstAttempt {
				// Точный откат к состоянию до оптимистичного флипа
				// (возможный коалесцированный клик тоже не подтверждён).
				r.liked, r.likeCount = priorLiked, priorCount
			} else if !r.likeQueued {
				// Откат коалесцированного клика, чей запрос упал.
				// Если ещё один клик в очереди, пара флипов уже
				// взаимно сократилась — состояние равно подтверждённому.
				r.flipLikeLocked()
			}

			r.likeInFlight = false
			r.likeQueued = false
			r.mu.Unlock()

			lg.Warn("toggle_like_failed", "err", err.Error())
			return fmt.Errorf("%s: %w", op, mapClientErr(err))
		}

		if r.likeQueued {
			// Отображаемое состояние уже учитывает следующий клик;
			// авторитетный счётчик этого ответа устарел, не применяем.
			r.likeQueued = false
			r.mu.Unlock()

			firstAttempt = false
			continue
		}

		if res.Likes != nil {
			r.likeCount = *res.Likes
		}
		r.likeInFlight = false
		r.mu.Unlock()

		return nil
	}
}

// flipLikeLocked — оптимистичное применение одного клика. Вызывается под mu.
func (r *Reconciler) flipLikeLocked() {
	if r.liked {
		r.liked = false
		r.likeCount--
	} else {
		r.liked = true
		r.likeCount++
	}
}

// AddComment — добавление корневого комментария.
func (r *Reconciler) AddComment(ctx context.Context, content string) (*models.Comment, error) {
	const op = "reconciler/AddComment"
	return r.addComment(ctx, op, "", content)
}

// AddReply — добавление ответа. Родитель обязан присутствовать в снимке;
// reply на отсутствующий родитель отклоняется локально.
func (r *Reconciler) AddReply(ctx context.Context, parentID, content string) (*models.Comment, error) {
	const op = "reconciler/AddReply"

	if parentID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	return r.addComment(ctx, op, parentID, content)
}

func (r *Reconciler) addComment(ctx context.Context, op, parentID, content string) (*models.Comment, error) {
	if r.viewerID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	guard := "comment-add:" + r.postID

	r.mu.Lock()
	if r.post == nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrNotLoaded)
	}
	if parentID != "" && r.findLocked(parentID) < 0 {
		r.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if r.busy[guard] {
		r.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrActionInFlight)
	}
	r.busy[guard] = true

	// Оптимистичная запись под плейсхолдерным id; сервер присвоит свой.
	now := time.Now().UTC()
	placeholder := models.Comment{
		ID:              "pending-" + uuid.NewString(),
		PostID:          r.postID,
		ParentCommentID: parentID,
		UserID:          r.viewerID,
		Content:         content,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.comments = append(r.comments, placeholder)
	r.rebuildLocked()
	r.mu.Unlock()

	created, err := r.api.CreateComment(ctx, r.postID, models.CreateCommentInput{
		Content:         content,
		ParentCommentID: parentID,
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.busy, guard)

	idx := r.findLocked(placeholder.ID)

	if err != nil {
		// Откат: убрать плейсхолдер.
		if idx >= 0 {
			r.comments = append(r.comments[:idx], r.comments[idx+1:]...)
		}
		r.rebuildLocked()

		log.From(ctx).Warn("comment_create_failed", "op", op, "err", err.Error())
		return nil, fmt.Errorf("%s: %w", op, mapClientErr(err))
	}

	// Реконсиляция: авторитетная запись сервера вместо плейсхолдера.
	if idx >= 0 {
		r.comments[idx] = *created
	} else {
		r.comments = append(r.comments, *created)
	}
	r.rebuildLocked()

	out := *created
	return &out, nil
}

// EditComment — правка текста. Разрешена автору комментария или автору
// поста; чужая правка отклоняется локально, до сетевого вызова, с
// ошибкой, отличной от «не найдено».
func (r *Reconciler) EditComment(ctx context.Context, commentID, content string) error {
	const op = "reconciler/EditComment"

	if r.viewerID == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	content = strings.TrimSpace(content)
	if commentID == "" || content == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	guard := "comment-edit:" + commentID

	r.mu.Lock()
	if r.post == nil {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNotLoaded)
	}

	idx := r.findLocked(commentID)
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if !r.canModifyLocked(r.comments[idx]) {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}
	if r.busy[guard] {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrActionInFlight)
	}
	r.busy[guard] = true

	prior := r.comments[idx]
	r.comments[idx].Content = content
	r.comments[idx].UpdatedAt = time.Now().UTC()
	r.rebuildLocked()
	r.mu.Unlock()

	updated, err := r.api.UpdateComment(ctx, r.postID, commentID, content)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.busy, guard)

	idx = r.findLocked(commentID)

	if err != nil {
		// Точный откат записи.
		if idx >= 0 {
			r.comments[idx] = prior
		}
		r.rebuildLocked()

		log.From(ctx).Warn("comment_edit_failed", "op", op, "err", err.Error())
		return fmt.Errorf("%s: %w", op, mapClientErr(err))
	}

	if idx >= 0 && updated != nil {
		r.comments[idx] = *updated
	}
	r.rebuildLocked()

	return nil
}

// DeleteComment — удаление комментария или ответа. Авторизация та же,
// что у правки. Удаление ответа пересчитывает replyCount родителя через
// полную пересборку дерева.
func (r *Reconciler) DeleteComment(ctx context.Context, commentID string) error {
	const op = "reconciler/DeleteComment"

	if r.viewerID == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if commentID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	guard := "comment-delete:" + commentID

	r.mu.Lock()
	if r.post == nil {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNotLoaded)
	}

	idx := r.findLocked(commentID)
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if !r.canModifyLocked(r.comments[idx]) {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}
	if r.busy[guard] {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrActionInFlight)
	}
	r.busy[guard] = true

	// Снимок всего списка: откат должен восстановить и порядок.
	prior := make([]models.Comment, len(r.comments))
	copy(prior, r.comments)

	r.comments = append(r.comments[:idx], r.comments[idx+1:]...)
	r.rebuildLocked()
	r.mu.Unlock()

	err := r.api.DeleteComment(ctx, r.postID, commentID)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.busy, guard)

	if err != nil {
		r.comments = prior
		r.rebuildLocked()

		log.From(ctx).Warn("comment_delete_failed", "op", op, "err", err.Error())
		return fmt.Errorf("%s: %w", op, mapClientErr(err))
	}

	return nil
}

// Post — копия снимка поста (nil до Load).
func (r *Reconciler) Post() *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.post == nil {
		return nil
	}

	out := *r.post
	out.Likes = r.likeCount
	return &out
}

// Liked — лайкнут ли пост зрителем (с учётом оптимистичных изменений).
func (r *Reconciler) Liked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liked
}

// LikeCount — отображаемый счётчик лайков.
func (r *Reconciler) LikeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likeCount
}

// Thread — копия текущего дерева комментариев.
func (r *Reconciler) Thread() Thread {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Thread{Roots: make([]ThreadComment, len(r.thread.Roots))}
	copy(out.Roots, r.thread.Roots)
	return out
}

// Comments — копия плоского списка.
func (r *Reconciler) Comments() []models.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Comment, len(r.comments))
	copy(out, r.comments)
	return out
}

// rebuildLocked — полная пересборка производного дерева. Под mu.
func (r *Reconciler) rebuildLocked() {
	r.thread = BuildThread(r.comments)
}

// findLocked — индекс комментария в плоском списке, -1 если нет. Под mu.
func (r *Reconciler) findLocked(id string) int {
	for i := range r.comments {
		if r.comments[i].ID == id {
			return i
		}
	}
	return -1
}

// canModifyLocked — автор комментария или автор поста. Под mu.
func (r *Reconciler) canModifyLocked(c models.Comment) bool {
	return r.viewerID == c.UserID || (r.post != nil && r.viewerID == r.post.UserID)
}

// mapClientErr — трансляция ошибок клиентского слоя в сентинелы пакета.
func mapClientErr(err error) error {
	switch {
	case errors.Is(err, client.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, client.ErrUnauthenticated):
		return ErrUnauthenticated
	case errors.Is(err, client.ErrPermissionDenied):
		return ErrPermissionDenied
	case errors.Is(err, client.ErrInvalidArgument):
		return ErrInvalidArgument
	default:
		return ErrInternal
	}
}
