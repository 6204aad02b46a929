package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/marcosgperez/social-media/service/feed"
)

// API is the HTTP surface the client state layer talks to. Client
// implements it against a real server; tests substitute fakes.
type API interface {
	FetchFeed(ctx context.Context) ([]feed.Post, error)
	CreatePost(ctx context.Context, content, imageURL string) (feed.Post, error)
	ToggleLike(ctx context.Context, postID string) (bool, error)
	Post(ctx context.Context, postID string) (feed.Post, error)
	FetchLikes(ctx context.Context) ([]string, error)
	UploadImage(ctx context.Context, filename string, image io.Reader) (string, error)
}

// Client calls the feed service with a bearer token attached to every
// request. Any non-2xx response surfaces as a single generic error; the
// server never shares backend detail with the caller.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) FetchFeed(ctx context.Context) ([]feed.Post, error) {
	var posts []feed.Post
	if err := c.doJSON(ctx, http.MethodGet, "/feed", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, content, imageURL string) (feed.Post, error) {
	body := map[string]string{"content": content}
	if imageURL != "" {
		body["imageUrl"] = imageURL
	}
	var post feed.Post
	if err := c.doJSON(ctx, http.MethodPost, "/posts", body, &post); err != nil {
		return feed.Post{}, err
	}
	return post, nil
}

// ToggleLike asks the server to flip the viewer's like on a post and
// returns the state the server decided on.
func (c *Client) ToggleLike(ctx context.Context, postID string) (bool, error) {
	var result struct {
		Success bool `json:"success"`
		Liked   bool `json:"liked"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/posts/"+postID+"/like", nil, &result); err != nil {
		return false, err
	}
	return result.Liked, nil
}

func (c *Client) Post(ctx context.Context, postID string) (feed.Post, error) {
	var post feed.Post
	if err := c.doJSON(ctx, http.MethodGet, "/posts/"+postID, nil, &post); err != nil {
		return feed.Post{}, err
	}
	return post, nil
}

func (c *Client) FetchLikes(ctx context.Context) ([]string, error) {
	var result struct {
		LikedPostIDs []string `json:"likedPostIds"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/likes", nil, &result); err != nil {
		return nil, err
	}
	return result.LikedPostIDs, nil
}

func (c *Client) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/image", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var result struct {
		Success bool   `json:"success"`
		URL     string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.URL, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request to %s failed with status %d", path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
