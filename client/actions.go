package client

import (
	"context"
	"io"
)

// Feed ties the store, the HTTP client and the like reconciler together
// into the actions a view layer dispatches. Each action owns one request
// lifecycle: its flag goes up when the request starts and comes down when
// it settles, success or failure, independently of the other flag.
type Feed struct {
	store *Store
	api   API
	likes *LikeReconciler
}

func NewFeed(store *Store, api API) *Feed {
	return &Feed{
		store: store,
		api:   api,
		likes: NewLikeReconciler(store, api),
	}
}

func (f *Feed) Store() *Store {
	return f.store
}

func (f *Feed) Likes() *LikeReconciler {
	return f.likes
}

// Refresh hydrates the store from the server feed.
func (f *Feed) Refresh(ctx context.Context) error {
	f.store.SetLoading(true)
	posts, err := f.api.FetchFeed(ctx)
	if err != nil {
		f.store.SetError(err.Error())
		return err
	}
	f.store.SetPosts(posts)
	return nil
}

// LoadLikes pulls the viewer's liked post ids.
func (f *Feed) LoadLikes(ctx context.Context) error {
	ids, err := f.api.FetchLikes(ctx)
	if err != nil {
		f.store.SetError(err.Error())
		return err
	}
	f.store.SetLikedPosts(ids)
	return nil
}

// CreatePost submits a text-only post and prepends the created post.
func (f *Feed) CreatePost(ctx context.Context, content string) error {
	f.store.SetLoading(true)
	post, err := f.api.CreatePost(ctx, content, "")
	if err != nil {
		f.store.SetError(err.Error())
		return err
	}
	f.store.AddPost(post)
	f.store.SetLoading(false)
	return nil
}

// CreatePostWithImage uploads the image first, then creates the post with
// the returned URL. An upload failure clears the uploading flag without
// touching the post list.
func (f *Feed) CreatePostWithImage(ctx context.Context, content, filename string, image io.Reader) error {
	f.store.SetUploading(true)
	imageURL, err := f.api.UploadImage(ctx, filename, image)
	if err != nil {
		f.store.SetUploading(false)
		f.store.SetError(err.Error())
		return err
	}
	f.store.SetUploading(false)

	f.store.SetLoading(true)
	post, err := f.api.CreatePost(ctx, content, imageURL)
	if err != nil {
		f.store.SetError(err.Error())
		return err
	}
	f.store.AddPost(post)
	f.store.SetLoading(false)
	return nil
}

// ToggleLike runs the optimistic like protocol for one post.
func (f *Feed) ToggleLike(ctx context.Context, postID string) error {
	return f.likes.Toggle(ctx, postID)
}
