package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/marcosgperez/social-media/cmd/models"
	"github.com/marcosgperez/social-media/cmd/utils"
	"github.com/marcosgperez/social-media/service/gateway"
	"github.com/marcosgperez/social-media/service/ws"
)

// memGateway is an in-memory Gateway for handler tests.
type memGateway struct {
	users   map[string]*models.User
	details map[string]gateway.PostDetail
	order   []string
	likes   map[string]map[string]bool
	nextID  int
}

func newMemGateway() *memGateway {
	return &memGateway{
		users:   make(map[string]*models.User),
		details: make(map[string]gateway.PostDetail),
		likes:   make(map[string]map[string]bool),
	}
}

func (g *memGateway) addPost(detail gateway.PostDetail) {
	g.details[detail.PostID] = detail
	g.order = append([]string{detail.PostID}, g.order...)
}

func (g *memGateway) likeCount(postID string) int {
	count := 0
	for _, posts := range g.likes {
		if posts[postID] {
			count++
		}
	}
	return count
}

func (g *memGateway) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range g.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (g *memGateway) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range g.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gateway.ErrNotFound
}

func (g *memGateway) UserByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := g.users[id]; ok {
		return u, nil
	}
	return nil, gateway.ErrNotFound
}

func (g *memGateway) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = "user-new"
	g.users[user.ID] = user
	return nil
}

func (g *memGateway) Timeline(ctx context.Context, limit, offset int) ([]gateway.PostDetail, error) {
	var details []gateway.PostDetail
	for _, id := range g.order {
		detail := g.details[id]
		detail.LikesCount = g.likeCount(id)
		details = append(details, detail)
	}
	return details, nil
}

func (g *memGateway) CreatePost(ctx context.Context, userID, content string, mediaURL *string) (*gateway.PostDetail, error) {
	g.nextID++
	detail := gateway.PostDetail{
		PostID:    "post-new",
		Content:   content,
		MediaURL:  mediaURL,
		Username:  "alice",
		CreatedAt: time.Now(),
	}
	g.addPost(detail)
	return &detail, nil
}

func (g *memGateway) PostByID(ctx context.Context, postID string) (*gateway.PostDetail, error) {
	detail, ok := g.details[postID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	detail.LikesCount = g.likeCount(postID)
	return &detail, nil
}

func (g *memGateway) Like(ctx context.Context, userID, postID string) error {
	if g.likes[userID] == nil {
		g.likes[userID] = make(map[string]bool)
	}
	g.likes[userID][postID] = true
	return nil
}

func (g *memGateway) Unlike(ctx context.Context, userID, postID string) error {
	delete(g.likes[userID], postID)
	return nil
}

func (g *memGateway) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	return g.likes[userID][postID], nil
}

func (g *memGateway) LikedPostIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	for id := range g.likes[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *memGateway) Close() error { return nil }

func newTestServer(t *testing.T, gw gateway.Gateway) (*httptest.Server, string) {
	t.Helper()
	t.Setenv("SECRET_KEY", "test-secret")

	router := mux.NewRouter()
	NewHandler(gw, ws.NewHub()).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	token, err := utils.GenerateToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return srv, token
}

func doRequest(t *testing.T, method, url, token string, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGetFeedRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, newMemGateway())

	resp := doRequest(t, http.MethodGet, srv.URL+"/feed", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, srv.URL+"/feed", "garbage", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestGetFeedReturnsProjectedPosts(t *testing.T) {
	gw := newMemGateway()
	gw.addPost(gateway.PostDetail{PostID: "1", Content: "hello", Username: "alice", CreatedAt: time.Now()})
	srv, token := newTestServer(t, gw)

	resp := doRequest(t, http.MethodGet, srv.URL+"/feed", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var posts []Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		t.Fatalf("decoding feed: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "1" || posts[0].Author.Username != "alice" {
		t.Errorf("unexpected feed %+v", posts)
	}
}

func TestCreatePostValidatesContent(t *testing.T) {
	srv, token := newTestServer(t, newMemGateway())

	resp := doRequest(t, http.MethodPost, srv.URL+"/posts", token, `{"content":"   "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for blank content, got %d", resp.StatusCode)
	}
}

func TestCreatePostReturnsCreated(t *testing.T) {
	gw := newMemGateway()
	srv, token := newTestServer(t, gw)

	resp := doRequest(t, http.MethodPost, srv.URL+"/posts", token, `{"content":"first post","imageUrl":"/images/x.png"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var post Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		t.Fatalf("decoding post: %v", err)
	}
	if post.Content != "first post" || post.Image != "/images/x.png" {
		t.Errorf("unexpected created post %+v", post)
	}
}

func TestToggleLikeFlipsPersistedState(t *testing.T) {
	gw := newMemGateway()
	gw.addPost(gateway.PostDetail{PostID: "42", Content: "p", Username: "alice", CreatedAt: time.Now()})
	srv, token := newTestServer(t, gw)

	type likeResponse struct {
		Success bool `json:"success"`
		Liked   bool `json:"liked"`
	}

	resp := doRequest(t, http.MethodPost, srv.URL+"/posts/42/like", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var first likeResponse
	json.NewDecoder(resp.Body).Decode(&first)
	if !first.Success || !first.Liked {
		t.Errorf("expected first toggle to like, got %+v", first)
	}

	// The server decides from persisted state: a second toggle unlikes.
	resp = doRequest(t, http.MethodPost, srv.URL+"/posts/42/like", token, "")
	var second likeResponse
	json.NewDecoder(resp.Body).Decode(&second)
	if second.Liked {
		t.Errorf("expected second toggle to unlike, got %+v", second)
	}
}

func TestToggleLikeUnknownPost(t *testing.T) {
	srv, token := newTestServer(t, newMemGateway())

	resp := doRequest(t, http.MethodPost, srv.URL+"/posts/nope/like", token, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown post, got %d", resp.StatusCode)
	}
}

func TestGetPostReturnsAuthoritativeCount(t *testing.T) {
	gw := newMemGateway()
	gw.addPost(gateway.PostDetail{PostID: "42", Content: "p", Username: "alice", CreatedAt: time.Now()})
	gw.Like(context.Background(), "user-9", "42")
	srv, token := newTestServer(t, gw)

	resp := doRequest(t, http.MethodGet, srv.URL+"/posts/42", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var post Post
	json.NewDecoder(resp.Body).Decode(&post)
	if post.Likes != 1 {
		t.Errorf("expected recomputed count 1, got %d", post.Likes)
	}
}

func TestGetUserLikes(t *testing.T) {
	gw := newMemGateway()
	gw.addPost(gateway.PostDetail{PostID: "42", Content: "p", Username: "alice", CreatedAt: time.Now()})
	gw.Like(context.Background(), "user-1", "42")
	srv, token := newTestServer(t, gw)

	resp := doRequest(t, http.MethodGet, srv.URL+"/user/likes", token, "")
	var result struct {
		LikedPostIDs []string `json:"likedPostIds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding likes: %v", err)
	}
	if len(result.LikedPostIDs) != 1 || result.LikedPostIDs[0] != "42" {
		t.Errorf("unexpected liked ids %v", result.LikedPostIDs)
	}
}
