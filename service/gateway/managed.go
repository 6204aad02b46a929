package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marcosgperez/social-media/cmd/models"
	"gorm.io/gorm"
)

// ManagedClient runs every operation through the ORM, letting it generate
// the SQL and map rows. Counts come from preloaded associations.
type ManagedClient struct {
	db *gorm.DB
}

func NewManagedClient(db *gorm.DB) *ManagedClient {
	return &ManagedClient{db: db}
}

func (c *ManagedClient) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.userBy(ctx, "email = ?", email)
}

func (c *ManagedClient) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.userBy(ctx, "username = ?", username)
}

func (c *ManagedClient) UserByID(ctx context.Context, id string) (*models.User, error) {
	return c.userBy(ctx, "id = ?", id)
}

func (c *ManagedClient) userBy(ctx context.Context, cond string, arg string) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).Where(cond, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

func (c *ManagedClient) CreateUser(ctx context.Context, user *models.User) error {
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (c *ManagedClient) Timeline(ctx context.Context, limit, offset int) ([]PostDetail, error) {
	var posts []models.Post
	err := c.db.WithContext(ctx).
		Preload("User").Preload("Likes").Preload("Replies").
		Where("parent_post_id IS NULL").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("querying timeline: %w", err)
	}

	details := make([]PostDetail, 0, len(posts))
	for i := range posts {
		details = append(details, detailFromModel(&posts[i]))
	}
	return details, nil
}

func (c *ManagedClient) CreatePost(ctx context.Context, userID, content string, mediaURL *string) (*PostDetail, error) {
	post := models.Post{
		UserID:   userID,
		Content:  content,
		MediaURL: mediaURL,
	}
	if err := c.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return c.PostByID(ctx, post.ID)
}

func (c *ManagedClient) PostByID(ctx context.Context, postID string) (*PostDetail, error) {
	var post models.Post
	err := c.db.WithContext(ctx).
		Preload("User").Preload("Likes").Preload("Replies").
		Where("id = ?", postID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying post: %w", err)
	}
	detail := detailFromModel(&post)
	return &detail, nil
}

// Like inserts the (user, post) relationship. Liking an already-liked post
// is a no-op, not an error.
func (c *ManagedClient) Like(ctx context.Context, userID, postID string) error {
	var existing models.Like
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking like: %w", err)
	}

	like := models.Like{UserID: userID, PostID: postID}
	if err := c.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("creating like: %w", err)
	}
	return nil
}

// Unlike deletes the relationship. Deleting a non-existent like is a no-op.
func (c *ManagedClient) Unlike(ctx context.Context, userID, postID string) error {
	result := c.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return fmt.Errorf("deleting like: %w", result.Error)
	}
	return nil
}

func (c *ManagedClient) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking like: %w", err)
	}
	return count > 0, nil
}

func (c *ManagedClient) LikedPostIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := c.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("querying liked posts: %w", err)
	}
	return ids, nil
}

func (c *ManagedClient) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func detailFromModel(post *models.Post) PostDetail {
	detail := PostDetail{
		PostID:       post.ID,
		Content:      post.Content,
		MediaURL:     post.MediaURL,
		CreatedAt:    post.CreatedAt,
		LikesCount:   len(post.Likes),
		RepliesCount: len(post.Replies),
	}
	if post.User != nil {
		detail.Username = post.User.Username
		detail.UserImage = post.User.ImageURL
	}
	return detail
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}
