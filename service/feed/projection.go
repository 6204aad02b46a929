package feed

import (
	"time"

	"github.com/marcosgperez/social-media/service/gateway"
)

type Author struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Post is the client-facing shape of one feed entry. Image is omitted from
// the JSON entirely when the post has no media, so the view layer can treat
// its absence as "no image". IsLiked is derived per viewer at render time
// and never persisted on the post.
type Post struct {
	ID        string `json:"id"`
	Author    Author `json:"author"`
	Content   string `json:"content"`
	Likes     int    `json:"likes"`
	Comments  int    `json:"comments"`
	CreatedAt string `json:"createdAt"`
	Image     string `json:"image,omitempty"`
	IsLiked   bool   `json:"isLiked,omitempty"`
}

// Project maps one raw detail row to the wire Post. The mapping is total
// and fills defaults: missing avatar becomes an empty string, negative or
// missing counts become 0.
func Project(detail gateway.PostDetail) Post {
	post := Post{
		ID:      detail.PostID,
		Content: detail.Content,
		Author: Author{
			Username: detail.Username,
		},
		Likes:     clampCount(detail.LikesCount),
		Comments:  clampCount(detail.RepliesCount),
		CreatedAt: detail.CreatedAt.UTC().Format(time.RFC3339),
	}
	if detail.UserImage != nil {
		post.Author.Avatar = *detail.UserImage
	}
	if detail.MediaURL != nil && *detail.MediaURL != "" {
		post.Image = *detail.MediaURL
	}
	return post
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
