package reconciler

// Тесты реконсайлера поста (internal/reconciler/reconciler.go).
//
//  Проверяем:
//  - валидацию входов и локальную авторизацию (Unauthenticated / InvalidArgument /
//    PermissionDenied / NotFound / NotLoaded — различимые ошибки до сетевого вызова);
//  - оптимистичный паттерн apply/confirm/rollback для лайка и комментариев:
//    при успехе авторитетные серверные данные перекрывают оптимистичные,
//    при ошибке состояние откатывается ровно к значению до изменения;
//  - in-flight guard: второе такое же действие отклоняется (комментарии)
//    либо коалесцируется (лайк), два конкурентных запроса невозможны;
//  - маппинг ошибок client -> reconciler.
//
// Подготовка окружения:
//   # 1) Сгенерировать моки интерфейса API:
//   mockgen -source=./internal/reconciler/reconciler.go -destination=./mocks/reconciler.go -package=mocks
//
//   # 2) Запустить тесты:
//   go test ./internal/reconciler -v -race -count=1
//
// Примечание: моки сгенерированы в пакете /mocks (MockAPI).

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-recipe-client/internal/client"
	"github.com/pribylovaa/go-recipe-client/internal/models"
	"github.com/pribylovaa/go-recipe-client/mocks"
)

const (
	testPostID   = "post-1"
	testViewerID = "viewer-1"
)

// newReconcilerWithMocks — поднимает реконсайлер с моком HTTP-клиента.
func newReconcilerWithMocks(t *testing.T, viewerID string) (*Reconciler, *mocks.MockAPI, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	r := New(api, viewerID, testPostID)
	return r, api, ctrl
}

// mustPost — быстрый хелпер для сборки поста.
func mustPost(authorID string, likes int) *models.Post {
	now := time.Now().UTC()
	return &models.Post{
		ID:        testPostID,
		UserID:    authorID,
		UserName:  gofakeit.Username(),
		Title:     gofakeit.Sentence(3),
		Likes:     likes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// mustLoad — стандартная загрузка снимка с заданными комментариями.
func mustLoad(t *testing.T, r *Reconciler, api *mocks.MockAPI, post *models.Post, comments []models.Comment, liked bool) {
	t.Helper()

	api.EXPECT().PostByID(gomock.Any(), testPostID).Return(post, nil)
	api.EXPECT().Comments(gomock.Any(), testPostID).Return(comments, nil)
	if r.viewerID != "" {
		api.EXPECT().LikeStatus(gomock.Any(), testPostID).Return(&models.LikeStatus{Liked: liked}, nil)
	}

	require.NoError(t, r.Load(context.Background()))
}

func intPtr(v int) *int { return &v }

// Load: аноним не запрашивает состояние лайка; зритель — запрашивает.
func TestReconciler_Load(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, "")
	defer ctrl.Finish()

	post := mustPost("author-1", 7)
	flat := []models.Comment{flatComment("c1", ""), flatComment("r1", "c1")}

	// LikeStatus не ожидается — аноним.
	api.EXPECT().PostByID(gomock.Any(), testPostID).Return(post, nil)
	api.EXPECT().Comments(gomock.Any(), testPostID).Return(flat, nil)

	require.NoError(t, r.Load(context.Background()))
	require.False(t, r.Liked())
	require.Equal(t, 7, r.LikeCount())
	require.Len(t, r.Thread().Roots, 1)
	require.Len(t, r.Comments(), 2)
}

func TestReconciler_Load_Viewer(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 3), nil, true)

	require.True(t, r.Liked())
	require.Equal(t, 3, r.LikeCount())
}

// Load: ошибки клиента транслируются в сентинелы пакета.
func TestReconciler_Load_ErrorMapping(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, "")
	defer ctrl.Finish()

	api.EXPECT().PostByID(gomock.Any(), testPostID).Return(nil, client.ErrNotFound)
	require.ErrorIs(t, r.Load(context.Background()), ErrNotFound)

	api.EXPECT().PostByID(gomock.Any(), testPostID).Return(nil, client.ErrUnavailable)
	require.ErrorIs(t, r.Load(context.Background()), ErrInternal)
}

// Post: nil до Load; после — копия с отображаемым счётчиком лайков.
func TestReconciler_PostSnapshot(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	require.Nil(t, r.Post())

	mustLoad(t, r, api, mustPost("author-1", 5), nil, false)

	snap := r.Post()
	require.NotNil(t, snap)
	require.Equal(t, 5, snap.Likes)

	// Мутация копии не трогает внутреннее состояние.
	snap.Likes = 100
	require.Equal(t, 5, r.Post().Likes)
}

// ToggleLike: валидация до сетевого вызова.
func TestReconciler_ToggleLike_Validation(t *testing.T) {
	// Аноним.
	r, _, ctrl := newReconcilerWithMocks(t, "")
	defer ctrl.Finish()
	require.ErrorIs(t, r.ToggleLike(context.Background()), ErrUnauthenticated)

	// До Load.
	r2, _, ctrl2 := newReconcilerWithMocks(t, testViewerID)
	defer ctrl2.Finish()
	require.ErrorIs(t, r2.ToggleLike(context.Background()), ErrNotLoaded)
}

// ToggleLike happy-path: авторитетный серверный счётчик перекрывает
// оптимистичный ±1.
func TestReconciler_ToggleLike_AuthoritativeCount(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 10), nil, false)

	// Сервер насчитал 12 (кто-то лайкнул параллельно).
	api.EXPECT().ToggleLike(gomock.Any(), testPostID).
		Return(&models.ToggleResult{Success: true, Liked: true, Likes: intPtr(12)}, nil)

	require.NoError(t, r.ToggleLike(context.Background()))
	require.True(t, r.Liked())
	require.Equal(t, 12, r.LikeCount())
	require.Equal(t, 12, r.Post().Likes)
}

// ToggleLike: сервер без счётчика — остаётся оптимистичный ±1.
func TestReconciler_ToggleLike_NoServerCount(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 10), nil, true)

	api.EXPECT().ToggleLike(gomock.Any(), testPostID).
		Return(&models.ToggleResult{Success: true, Liked: false}, nil)

	require.NoError(t, r.ToggleLike(context.Background()))
	require.False(t, r.Liked())
	require.Equal(t, 9, r.LikeCount())
}

// ToggleLike: ошибка бэкенда — точный откат к состоянию до флипа.
func TestReconciler_ToggleLike_Rollback(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 10), nil, false)

	api.EXPECT().ToggleLike(gomock.Any(), testPostID).Return(nil, client.ErrUnavailable)

	require.ErrorIs(t, r.ToggleLike(context.Background()), ErrInternal)
	require.False(t, r.Liked())
	require.Equal(t, 10, r.LikeCount())
}

// Лайк + анлайк до первого ответа: второй клик коалесцируется, пара
// флипов взаимно сокращается, отображаемый счётчик равен исходному;
// запросов уходит ровно два (исходный и коалесцированный undo).
func TestReconciler_ToggleLike_Coalesced(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 10), nil, false)

	entered := make(chan struct{})
	release := make(chan struct{})

	api.EXPECT().ToggleLike(gomock.Any(), testPostID).
		DoAndReturn(func(context.Context, string) (*models.ToggleResult, error) {
			close(entered)
			<-release
			return &models.ToggleResult{Success: true, Liked: true, Likes: intPtr(11)}, nil
		})
	api.EXPECT().ToggleLike(gomock.Any(), testPostID).
		Return(&models.ToggleResult{Success: true, Liked: false, Likes: intPtr(10)}, nil)

	done := make(chan error, 1)
	go func() { done <- r.ToggleLike(context.Background()) }()

	<-entered
	// Второй клик, пока первый запрос в полёте: применяется локально,
	// второй конкурентный запрос не порождается.
	require.NoError(t, r.ToggleLike(context.Background()))
	require.False(t, r.Liked())
	require.Equal(t, 10, r.LikeCount())

	close(release)
	require.NoError(t, <-done)

	// Устаревший авторитетный счётчик первого ответа (11) не применён.
	require.False(t, r.Liked())
	require.Equal(t, 10, r.LikeCount())
}

// Ошибка коалесцированного запроса без новых кликов в очереди:
// откат только неподтверждённого клика.
func TestReconciler_ToggleLike_CoalescedRollback(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 10), nil, false)

	entered := make(chan struct{})
	release := make(chan struct{})

	api.EXPECT().ToggleLike(gomock.Any(), testPostID).
		DoAndReturn(func(context.Context, string) (*models.ToggleResult, error) {
			close(entered)
			<-release
			return &models.ToggleResult{Success: true, Liked: true, Likes: intPtr(11)}, nil
		})
	api.EXPECT().ToggleLike(gomock.Any(), testPostID).Return(nil, client.ErrUnavailable)

	done := make(chan error, 1)
	go func() { done <- r.ToggleLike(context.Background()) }()

	<-entered
	require.NoError(t, r.ToggleLike(context.Background()))
	close(release)

	require.ErrorIs(t, <-done, ErrInternal)

	// Первый клик подтверждён сервером, второй (упавший) откатан.
	require.True(t, r.Liked())
	require.Equal(t, 11, r.LikeCount())
}

// AddComment: валидация, различимые ошибки.
func TestReconciler_AddComment_Validation(t *testing.T) {
	// Аноним.
	r, _, ctrl := newReconcilerWithMocks(t, "")
	defer ctrl.Finish()
	_, err := r.AddComment(context.Background(), "hi")
	require.ErrorIs(t, err, ErrUnauthenticated)

	r2, api2, ctrl2 := newReconcilerWithMocks(t, testViewerID)
	defer ctrl2.Finish()

	// До Load.
	_, err = r2.AddComment(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNotLoaded)

	mustLoad(t, r2, api2, mustPost("author-1", 0), nil, false)

	// content -> TrimSpace -> пусто.
	_, err = r2.AddComment(context.Background(), "   ")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// AddComment happy-path: плейсхолдер заменяется авторитетной записью сервера.
func TestReconciler_AddComment_OK(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 0), nil, false)

	created := flatComment("srv-1", "")
	created.UserID = testViewerID
	created.Content = "nice recipe"

	api.EXPECT().CreateComment(gomock.Any(), testPostID, models.CreateCommentInput{Content: "nice recipe"}).
		Return(&created, nil)

	out, err := r.AddComment(context.Background(), "  nice recipe  ")
	require.NoError(t, err)
	require.Equal(t, "srv-1", out.ID)

	got := r.Comments()
	require.Len(t, got, 1)
	require.Equal(t, "srv-1", got[0].ID)
	require.Len(t, r.Thread().Roots, 1)
}

// AddComment: ошибка бэкенда — плейсхолдер убирается, дерево как до действия.
func TestReconciler_AddComment_Rollback(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	flat := []models.Comment{flatComment("c1", "")}
	mustLoad(t, r, api, mustPost("author-1", 0), flat, false)

	api.EXPECT().CreateComment(gomock.Any(), testPostID, gomock.Any()).
		Return(nil, client.ErrUnavailable)

	_, err := r.AddComment(context.Background(), "oops")
	require.ErrorIs(t, err, ErrInternal)

	got := r.Comments()
	require.Len(t, got, 1)
	require.Equal(t, "c1", got[0].ID)
}

// AddComment: пока запрос в полёте, плейсхолдер виден, а повторное
// добавление отклоняется guard'ом.
func TestReconciler_AddComment_InFlightGuard(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 0), nil, false)

	entered := make(chan struct{})
	release := make(chan struct{})

	created := flatComment("srv-1", "")
	api.EXPECT().CreateComment(gomock.Any(), testPostID, gomock.Any()).
		DoAndReturn(func(context.Context, string, models.CreateCommentInput) (*models.Comment, error) {
			close(entered)
			<-release
			return &created, nil
		})

	done := make(chan error, 1)
	go func() {
		_, err := r.AddComment(context.Background(), "first")
		done <- err
	}()

	<-entered
	// Оптимистичная запись уже в снимке.
	require.Len(t, r.Comments(), 1)

	_, err := r.AddComment(context.Background(), "second")
	require.ErrorIs(t, err, ErrActionInFlight)

	close(release)
	require.NoError(t, <-done)
}

// AddReply: пустой родитель и родитель вне снимка — различимые ошибки.
func TestReconciler_AddReply_Validation(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 0), []models.Comment{flatComment("c1", "")}, false)

	_, err := r.AddReply(context.Background(), "", "hi")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = r.AddReply(context.Background(), "missing", "hi")
	require.ErrorIs(t, err, ErrNotFound)
}

// AddReply happy-path: ответ появляется под корнем, replyCount растёт.
func TestReconciler_AddReply_OK(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 0), []models.Comment{flatComment("c1", "")}, false)

	created := flatComment("srv-r1", "c1")
	api.EXPECT().CreateComment(gomock.Any(), testPostID,
		models.CreateCommentInput{Content: "reply", ParentCommentID: "c1"}).
		Return(&created, nil)

	_, err := r.AddReply(context.Background(), "c1", "reply")
	require.NoError(t, err)

	th := r.Thread()
	require.Len(t, th.Roots, 1)
	require.Equal(t, 1, th.Roots[0].ReplyCount)
	require.Equal(t, []string{"srv-r1"}, th.Roots[0].ReplyIDs)
}

// EditComment: авторизация — автор комментария или автор поста; чужая
// правка отклоняется локально с ошибкой, отличной от «не найдено».
func TestReconciler_EditComment_Authz(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	foreign := flatComment("c1", "")
	foreign.UserID = "someone-else"
	mustLoad(t, r, api, mustPost("author-1", 0), []models.Comment{foreign}, false)

	// Зритель не автор комментария и не автор поста: сетевой вызов не уходит.
	err := r.EditComment(context.Background(), "c1", "hack")
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.NotErrorIs(t, err, ErrNotFound)

	// Несуществующий комментарий — другая ошибка.
	require.ErrorIs(t, r.EditComment(context.Background(), "missing", "x"), ErrNotFound)
}

// EditComment: автор поста модерирует чужой комментарий.
func TestReconciler_EditComment_PostAuthorModerates(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	foreign := flatComment("c1", "")
	foreign.UserID = "someone-else"
	// Зритель — автор поста.
	mustLoad(t, r, api, mustPost(testViewerID, 0), []models.Comment{foreign}, false)

	updated := foreign
	updated.Content = "moderated"
	api.EXPECT().UpdateComment(gomock.Any(), testPostID, "c1", "moderated").Return(&updated, nil)

	require.NoError(t, r.EditComment(context.Background(), "c1", "moderated"))
	require.Equal(t, "moderated", r.Comments()[0].Content)
}

// EditComment: ошибка бэкенда — запись восстанавливается в точности.
func TestReconciler_EditComment_Rollback(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mine := flatComment("c1", "")
	mine.UserID = testViewerID
	mustLoad(t, r, api, mustPost("author-1", 0), []models.Comment{mine}, false)

	api.EXPECT().UpdateComment(gomock.Any(), testPostID, "c1", "edited").
		Return(nil, client.ErrUnavailable)

	require.ErrorIs(t, r.EditComment(context.Background(), "c1", "edited"), ErrInternal)
	require.Equal(t, mine, r.Comments()[0])
}

// DeleteComment: удаление ответа пересчитывает replyCount родителя.
func TestReconciler_DeleteComment_ReplyRecount(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	root := flatComment("c1", "")
	reply := flatComment("r1", "c1")
	reply.UserID = testViewerID
	mustLoad(t, r, api, mustPost("author-1", 0), []models.Comment{root, reply}, false)
	require.Equal(t, 1, r.Thread().Roots[0].ReplyCount)

	api.EXPECT().DeleteComment(gomock.Any(), testPostID, "r1").Return(nil)

	require.NoError(t, r.DeleteComment(context.Background(), "r1"))

	th := r.Thread()
	require.Len(t, th.Roots, 1)
	require.Zero(t, th.Roots[0].ReplyCount)
}

// DeleteComment: ошибка бэкенда — список восстанавливается вместе с порядком.
func TestReconciler_DeleteComment_Rollback(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	c1 := flatComment("c1", "")
	c2 := flatComment("c2", "")
	c2.UserID = testViewerID
	c3 := flatComment("c3", "")
	mustLoad(t, r, api, mustPost("author-1", 0), []models.Comment{c1, c2, c3}, false)

	api.EXPECT().DeleteComment(gomock.Any(), testPostID, "c2").Return(client.ErrUnavailable)

	require.ErrorIs(t, r.DeleteComment(context.Background(), "c2"), ErrInternal)
	require.Equal(t, []models.Comment{c1, c2, c3}, r.Comments())
}

// RefreshComments: плоский список и дерево пересобираются из ответа сервера.
func TestReconciler_RefreshComments(t *testing.T) {
	r, api, ctrl := newReconcilerWithMocks(t, testViewerID)
	defer ctrl.Finish()

	mustLoad(t, r, api, mustPost("author-1", 0), []models.Comment{flatComment("c1", "")}, false)

	fresh := []models.Comment{flatComment("c1", ""), flatComment("c2", ""), flatComment("r1", "c2")}
	api.EXPECT().Comments(gomock.Any(), testPostID).Return(fresh, nil)

	require.NoError(t, r.RefreshComments(context.Background()))
	require.Len(t, r.Comments(), 3)
	require.Len(t, r.Thread().Roots, 2)
	require.Equal(t, 1, r.Thread().Roots[1].ReplyCount)
}
