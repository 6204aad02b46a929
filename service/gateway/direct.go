package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcosgperez/social-media/cmd/models"
)

const pgUniqueViolation = "23505"

const postDetailColumns = `
	p.id, p.content, p.media_url, p.created_at, u.username, u.image_url,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes_count,
	(SELECT COUNT(*) FROM posts r WHERE r.parent_post_id = p.id) AS replies_count`

// DirectSQLClient issues raw parameterized statements against a pgx pool.
// Connections are acquired per statement and released immediately.
type DirectSQLClient struct {
	pool *pgxpool.Pool
}

func NewDirectSQLClient(pool *pgxpool.Pool) *DirectSQLClient {
	return &DirectSQLClient{pool: pool}
}

func (c *DirectSQLClient) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.userBy(ctx, "email", email)
}

func (c *DirectSQLClient) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.userBy(ctx, "username", username)
}

func (c *DirectSQLClient) UserByID(ctx context.Context, id string) (*models.User, error) {
	return c.userBy(ctx, "id", id)
}

func (c *DirectSQLClient) userBy(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, username, email, password_hash, image_url, provider, provider_id, bio, created_at
		FROM users WHERE %s = $1 LIMIT 1`, column)

	var user models.User
	err := c.pool.QueryRow(ctx, query, value).Scan(
		&user.ID, &user.Name, &user.Username, &user.Email, &user.PasswordHash,
		&user.ImageURL, &user.Provider, &user.ProviderID, &user.Bio, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

func (c *DirectSQLClient) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, username, email, password_hash, image_url, provider, provider_id, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := c.pool.QueryRow(ctx, query,
		user.Name, user.Username, user.Email, user.PasswordHash,
		user.ImageURL, user.Provider, user.ProviderID, user.Bio,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (c *DirectSQLClient) Timeline(ctx context.Context, limit, offset int) ([]PostDetail, error) {
	query := `
		SELECT` + postDetailColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.parent_post_id IS NULL
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := c.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying timeline: %w", err)
	}
	defer rows.Close()

	var details []PostDetail
	for rows.Next() {
		detail, err := scanPostDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning timeline row: %w", err)
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading timeline rows: %w", err)
	}
	return details, nil
}

func (c *DirectSQLClient) CreatePost(ctx context.Context, userID, content string, mediaURL *string) (*PostDetail, error) {
	var postID string
	err := c.pool.QueryRow(ctx, `
		INSERT INTO posts (user_id, content, media_url)
		VALUES ($1, $2, $3)
		RETURNING id`, userID, content, mediaURL).Scan(&postID)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return c.PostByID(ctx, postID)
}

func (c *DirectSQLClient) PostByID(ctx context.Context, postID string) (*PostDetail, error) {
	query := `
		SELECT` + postDetailColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
		LIMIT 1`

	row := c.pool.QueryRow(ctx, query, postID)
	detail, err := scanPostDetail(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying post: %w", err)
	}
	return &detail, nil
}

func (c *DirectSQLClient) Like(ctx context.Context, userID, postID string) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO likes (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING`, userID, postID)
	if err != nil {
		return fmt.Errorf("creating like: %w", err)
	}
	return nil
}

func (c *DirectSQLClient) Unlike(ctx context.Context, userID, postID string) error {
	_, err := c.pool.Exec(ctx, `
		DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return fmt.Errorf("deleting like: %w", err)
	}
	return nil
}

func (c *DirectSQLClient) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	var id string
	err := c.pool.QueryRow(ctx, `
		SELECT id FROM likes WHERE user_id = $1 AND post_id = $2 LIMIT 1`,
		userID, postID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking like: %w", err)
	}
	return true, nil
}

func (c *DirectSQLClient) LikedPostIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT post_id FROM likes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying liked posts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning liked post id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading liked post rows: %w", err)
	}
	return ids, nil
}

func (c *DirectSQLClient) Close() error {
	c.pool.Close()
	return nil
}

func scanPostDetail(row pgx.Row) (PostDetail, error) {
	var detail PostDetail
	var likes, replies sql.NullInt64
	err := row.Scan(
		&detail.PostID, &detail.Content, &detail.MediaURL, &detail.CreatedAt,
		&detail.Username, &detail.UserImage, &likes, &replies,
	)
	if err != nil {
		return PostDetail{}, err
	}
	detail.LikesCount = countValue(likes)
	detail.RepliesCount = countValue(replies)
	return detail, nil
}
