package feed

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/marcosgperez/social-media/service/gateway"
)

func TestProjectOmitsImageWhenMediaMissing(t *testing.T) {
	detail := gateway.PostDetail{
		PostID:    "42",
		Content:   "no picture here",
		Username:  "alice",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	post := Project(detail)
	encoded, err := json.Marshal(post)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(encoded), `"image"`) {
		t.Errorf("expected no image key in %s", encoded)
	}
}

func TestProjectIncludesImageWhenMediaPresent(t *testing.T) {
	media := "/images/cat.png"
	detail := gateway.PostDetail{PostID: "42", Username: "alice", MediaURL: &media}

	post := Project(detail)
	if post.Image != media {
		t.Errorf("expected image %q, got %q", media, post.Image)
	}
}

func TestProjectDefaultsAvatarToEmptyString(t *testing.T) {
	detail := gateway.PostDetail{PostID: "42", Username: "alice"}

	post := Project(detail)
	if post.Author.Avatar != "" {
		t.Errorf("expected empty avatar, got %q", post.Author.Avatar)
	}

	avatar := "/images/alice.png"
	detail.UserImage = &avatar
	post = Project(detail)
	if post.Author.Avatar != avatar {
		t.Errorf("expected avatar %q, got %q", avatar, post.Author.Avatar)
	}
}

func TestProjectClampsNegativeCounts(t *testing.T) {
	detail := gateway.PostDetail{PostID: "42", Username: "alice", LikesCount: -3, RepliesCount: -1}

	post := Project(detail)
	if post.Likes != 0 || post.Comments != 0 {
		t.Errorf("expected counts clamped to 0, got likes=%d comments=%d", post.Likes, post.Comments)
	}
}

func TestProjectFormatsCreatedAtRFC3339(t *testing.T) {
	detail := gateway.PostDetail{
		PostID:    "42",
		Username:  "alice",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	post := Project(detail)
	if post.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected createdAt %q", post.CreatedAt)
	}
}

func TestProjectDeterministic(t *testing.T) {
	media := "/images/x.png"
	detail := gateway.PostDetail{
		PostID: "1", Content: "c", Username: "u", MediaURL: &media,
		LikesCount: 2, RepliesCount: 1, CreatedAt: time.Unix(100, 0),
	}

	if Project(detail) != Project(detail) {
		t.Error("projection must be deterministic for the same input row")
	}
}
