package gateway

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/marcosgperez/social-media/cmd/models"
)

var (
	// ErrNotFound reports a missing user or post.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a unique-constraint violation on creation.
	ErrDuplicate = errors.New("duplicate record")
)

// PostDetail is the backend-agnostic row shape behind the feed: one post
// joined with its author and aggregate counts. Both backends produce it.
type PostDetail struct {
	PostID       string
	Content      string
	MediaURL     *string
	CreatedAt    time.Time
	Username     string
	UserImage    *string
	LikesCount   int
	RepliesCount int
}

// Gateway is the set of logical persistence operations the handlers use.
// The concrete backend (ORM-style or direct SQL) is picked once at process
// start and never re-checked per request. Backend-specific error shapes
// never cross this boundary; callers see ErrNotFound, ErrDuplicate, or a
// wrapped generic failure.
type Gateway interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	Timeline(ctx context.Context, limit, offset int) ([]PostDetail, error)
	CreatePost(ctx context.Context, userID, content string, mediaURL *string) (*PostDetail, error)
	PostByID(ctx context.Context, postID string) (*PostDetail, error)

	Like(ctx context.Context, userID, postID string) error
	Unlike(ctx context.Context, userID, postID string) error
	HasLiked(ctx context.Context, userID, postID string) (bool, error)
	LikedPostIDs(ctx context.Context, userID string) ([]string, error)

	Close() error
}

// countValue coerces a database count to a strict non-negative int.
// Missing values default to 0.
func countValue(n sql.NullInt64) int {
	if !n.Valid || n.Int64 < 0 {
		return 0
	}
	return int(n.Int64)
}
