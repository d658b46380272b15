package reconciler

import (
	"context"
	"fmt"
	"sync"

	"github.com/pribylovaa/go-recipe-client/internal/pkg/log"

	"github.com/pribylovaa/go-recipe-client/internal/models"
)

// FollowAPI — подмножество HTTP-клиента для графа подписок.
type FollowAPI interface {
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
	FollowStatus(ctx context.Context, userID string) (*models.FollowStatus, error)
}

// followState — состояние пары (зритель, пользователь).
type followState struct {
	following bool
	inFlight  bool
	queued    bool
}

// FollowTracker — оптимистичное состояние подписок зрителя.
// Паттерн тот же, что у лайков: apply/confirm/rollback плюс
// коалесценция второго клика, пока первый запрос в полёте.
type FollowTracker struct {
	api      FollowAPI
	viewerID string

	mu     sync.Mutex
	states map[string]*followState
}

// NewFollowTracker создаёт трекер подписок зрителя viewerID.
func NewFollowTracker(api FollowAPI, viewerID string) *FollowTracker {
	return &FollowTracker{
		api:      api,
		viewerID: viewerID,
		states:   make(map[string]*followState),
	}
}

// Load — чтение серверного состояния подписки на userID.
// Перезаписывает локальное: авторитетен последний удачный ответ.
func (t *FollowTracker) Load(ctx context.Context, userID string) error {
	const op = "reconciler/follow/Load"

	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	st, err := t.api.FollowStatus(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapClientErr(err))
	}

	t.mu.Lock()
	t.stateLocked(userID).following = st.Following
	t.mu.Unlock()

	return nil
}

// Following — текущее (возможно оптимистичное) состояние подписки.
func (t *FollowTracker) Following(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked(userID).following
}

// Toggle — оптимистичное переключение подписки на userID.
// Второй клик во время полёта первого коалесцируется; два конкурентных
// запроса на одну пару (зритель, пользователь) невозможны.
func (t *FollowTracker) Toggle(ctx context.Context, userID string) error {
	const op = "reconciler/follow/Toggle"

	if t.viewerID == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}
	if userID == t.viewerID {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	t.mu.Lock()
	st := t.stateLocked(userID)

	if st.inFlight {
		st.following = !st.following
		st.queued = !st.queued
		t.mu.Unlock()
		return nil
	}

	prior := st.following
	st.following = !st.following
	st.inFlight = true
	target := st.following
	t.mu.Unlock()

	lg := log.From(ctx).With("op", op, "user_id", userID)

	firstAttempt := true
	for {
		var err error
		if target {
			err = t.api.Follow(ctx, userID)
		} else {
			err = t.api.Unfollow(ctx, userID)
		}

		t.mu.Lock()
		if err != nil {
			if firstAttempt {
				st.following = prior
			} else if !st.queued {
				st.following = !target
			}

			st.inFlight = false
			st.queued = false
			t.mu.Unlock()

			lg.Warn("follow_toggle_failed", "err", err.Error())
			return fmt.Errorf("%s: %w", op, mapClientErr(err))
		}

		if st.queued {
			st.queued = false
			target = !target
			t.mu.Unlock()

			firstAttempt = false
			continue
		}

		st.inFlight = false
		t.mu.Unlock()

		return nil
	}
}

// stateLocked — состояние пары, создаётся лениво. Под mu.
func (t *FollowTracker) stateLocked(userID string) *followState {
	st, ok := t.states[userID]
	if !ok {
		st = &followState{}
		t.states[userID] = st
	}
	return st
}
