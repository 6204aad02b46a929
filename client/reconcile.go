package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marcosgperez/social-media/service/feed"
)

const (
	// DefaultGrace is how long a failed toggle holds its optimistic state
	// before reverting. The delay trades a short window of possibly-wrong
	// state for perceived responsiveness; it is configurable, not
	// load-bearing.
	DefaultGrace = time.Second

	// DefaultTimeout bounds each reconciliation round-trip so a request
	// that never resolves cannot leave a post optimistic forever.
	DefaultTimeout = 10 * time.Second
)

var ErrUnknownPost = errors.New("post not in store")

// LikeAPI is the slice of the server surface the reconciler needs: the
// authoritative toggle and the authoritative re-fetch.
type LikeAPI interface {
	ToggleLike(ctx context.Context, postID string) (bool, error)
	Post(ctx context.Context, postID string) (feed.Post, error)
}

// LikeReconciler drives the optimistic-update protocol for likes. Each
// toggle flips local state immediately, asks the server to decide the real
// outcome, and then overwrites local state with the authoritative post.
// Attempts carry per-post sequence numbers so a response that arrives after
// a newer toggle was issued is dropped instead of clobbering it.
type LikeReconciler struct {
	store   *Store
	api     LikeAPI
	grace   time.Duration
	timeout time.Duration

	mu  sync.Mutex
	seq map[string]uint64
}

func NewLikeReconciler(store *Store, api LikeAPI) *LikeReconciler {
	return &LikeReconciler{
		store:   store,
		api:     api,
		grace:   DefaultGrace,
		timeout: DefaultTimeout,
		seq:     make(map[string]uint64),
	}
}

// SetGrace overrides the revert delay used after a failed toggle.
func (r *LikeReconciler) SetGrace(grace time.Duration) {
	r.grace = grace
}

// SetTimeout overrides the per-round-trip deadline.
func (r *LikeReconciler) SetTimeout(timeout time.Duration) {
	r.timeout = timeout
}

// Toggle runs one like/unlike attempt to completion: optimistic flip,
// server round-trip, convergence or scheduled revert. Callers that want
// fire-and-forget semantics run it in a goroutine; the store stays usable
// throughout.
//
// The server toggles based on persisted state rather than accepting the
// client's guess, so under racing double-toggles the two can briefly
// disagree; the authoritative re-fetch is the convergence point.
func (r *LikeReconciler) Toggle(ctx context.Context, postID string) error {
	settled, ok := r.store.Post(postID)
	if !ok {
		return ErrUnknownPost
	}
	settledLiked := settled.IsLiked

	optimisticLiked := !settledLiked
	r.store.ToggleLike(postID, optimisticLiked)
	r.store.LikePost(postID, optimisticLiked)
	attempt := r.bumpSeq(postID)

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	serverLiked, err := r.api.ToggleLike(reqCtx, postID)
	if err != nil {
		r.scheduleRevert(postID, attempt, settledLiked, settled)
		return err
	}

	authoritative, err := r.api.Post(reqCtx, postID)
	if err != nil {
		r.scheduleRevert(postID, attempt, settledLiked, settled)
		return err
	}

	// Last authoritative write wins, but only for the newest attempt:
	// a stale response must not overwrite a later toggle's state.
	if !r.isLatest(postID, attempt) {
		return nil
	}
	r.store.ToggleLike(postID, serverLiked)
	r.store.UpdatePost(authoritative)
	return nil
}

// scheduleRevert restores the pre-toggle settled values after the grace
// window, unless a newer attempt has superseded this one by then.
func (r *LikeReconciler) scheduleRevert(postID string, attempt uint64, settledLiked bool, settled feed.Post) {
	time.AfterFunc(r.grace, func() {
		if !r.isLatest(postID, attempt) {
			return
		}
		r.store.ToggleLike(postID, settledLiked)
		r.store.UpdatePost(settled)
	})
}

func (r *LikeReconciler) bumpSeq(postID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[postID]++
	return r.seq[postID]
}

func (r *LikeReconciler) isLatest(postID string, attempt uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq[postID] == attempt
}
