package client

import (
	"sync"

	"github.com/marcosgperez/social-media/service/feed"
)

// Store holds the client-side feed state: the ordered post list (newest
// first), the set of post ids the viewer has liked, and the in-flight
// flags. It is mutated only through its action methods, each of which is
// safe for concurrent use. The liked-id set is kept separate from the
// posts so a toggle never has to touch every post.
type Store struct {
	mu        sync.Mutex
	posts     []feed.Post
	liked     map[string]bool
	loading   bool
	uploading bool
	err       string
}

func NewStore() *Store {
	return &Store{
		liked: make(map[string]bool),
	}
}

// SetPosts replaces the whole list and clears loading and error state.
// Used for initial hydration.
func (s *Store) SetPosts(posts []feed.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]feed.Post(nil), posts...)
	s.loading = false
	s.err = ""
}

// AddPost prepends: a new post is always the newest entry.
func (s *Store) AddPost(post feed.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]feed.Post{post}, s.posts...)
}

// UpdatePost replaces the post with a matching id in place, preserving its
// list position. Unknown ids are ignored.
func (s *Store) UpdatePost(post feed.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == post.ID {
			s.posts[i] = post
			return
		}
	}
}

// LikePost adjusts a post's like count by one in the given direction.
// A decrement never takes the count below zero.
func (s *Store) LikePost(postID string, liked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID != postID {
			continue
		}
		if liked {
			s.posts[i].Likes++
		} else if s.posts[i].Likes > 0 {
			s.posts[i].Likes--
		}
		return
	}
}

// ToggleLike adds or removes a post id from the liked set. Adding a present
// id and removing an absent one are both no-ops.
func (s *Store) ToggleLike(postID string, liked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if liked {
		s.liked[postID] = true
	} else {
		delete(s.liked, postID)
	}
}

func (s *Store) SetLikedPosts(postIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liked = make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		s.liked[id] = true
	}
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *Store) SetUploading(uploading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = uploading
}

// SetError records a failure and clears the loading flag. The uploading
// flag is driven by its own request lifecycle and is left alone.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = message
	s.loading = false
}

func (s *Store) ClearPosts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = nil
	s.liked = make(map[string]bool)
	s.loading = false
	s.err = ""
}

// Posts returns a copy of the list with each post's IsLiked derived from
// the liked set at call time.
func (s *Store) Posts() []feed.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]feed.Post, len(s.posts))
	for i, p := range s.posts {
		p.IsLiked = s.liked[p.ID]
		posts[i] = p
	}
	return posts
}

// Post returns the post with the given id, IsLiked derived the same way.
func (s *Store) Post(postID string) (feed.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == postID {
			p.IsLiked = s.liked[postID]
			return p, true
		}
	}
	return feed.Post{}, false
}

func (s *Store) IsLiked(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liked[postID]
}

func (s *Store) LikedPostIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.liked))
	for id := range s.liked {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
