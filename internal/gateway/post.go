package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"glimpse/internal/blob"
	"glimpse/internal/models"
	"glimpse/internal/validation"

	"github.com/google/uuid"
)

// CreatePostInput is the payload for CreatePost. Tags is the raw
// comma-separated form input.
type CreatePostInput struct {
	Caption  string
	Tags     string
	Location string
	Image    ImageUpload
	UserID   uint
}

// CreatePost uploads the post image and inserts the post row. Upload failure
// returns its failure unchanged with no row created; row-insert failure
// deletes the uploaded object (best-effort) before failing.
func (g *Gateway) CreatePost(ctx context.Context, in CreatePostInput) models.Result[models.Post] {
	if in.UserID == 0 {
		return models.Fail[models.Post]("please log in to create posts")
	}
	if err := validation.Caption(in.Caption); err != nil {
		return failValidation[models.Post](err)
	}
	if err := validation.Location(in.Location); err != nil {
		return failValidation[models.Post](err)
	}
	if err := validation.Image(in.Image.ContentType, len(in.Image.Data)); err != nil {
		return failValidation[models.Post](err)
	}
	tags, err := validation.SplitTags(in.Tags)
	if err != nil {
		return failValidation[models.Post](err)
	}

	objectPath := fmt.Sprintf("%d/%s-%s", in.UserID, uuid.NewString(), path.Base(in.Image.Name))
	stored, err := g.blobs.Upload(ctx, objectPath, in.Image.Data, blob.UploadOptions{
		ContentType: in.Image.ContentType,
	})
	if err != nil {
		return failOp[models.Post](g, "create_post", "could not upload image", err)
	}

	post := models.Post{
		Caption:   in.Caption,
		Tags:      tags,
		Location:  in.Location,
		ImageURL:  g.blobs.PublicURL(stored),
		ImagePath: stored,
		UserID:    in.UserID,
	}
	if err := g.store.CreatePost(ctx, &post); err != nil {
		// Compensate the completed upload so no orphaned object remains.
		if rmErr := g.blobs.Remove(ctx, stored); rmErr != nil {
			g.log.Warn("could not delete uploaded image after failed post insert",
				slog.String("path", stored),
				slog.String("error", rmErr.Error()),
			)
		}
		return failOp[models.Post](g, "create_post", "could not create post", err)
	}

	g.coord.PostMutated(post.ID)
	return models.OKMsg(&post, "post created")
}

// FeedPage fetches one feed page starting at the offset cursor. NextCursor is
// set exactly when the page came back full.
func (g *Gateway) FeedPage(ctx context.Context, cursor int) models.Result[models.FeedPage] {
	if cursor < 0 {
		return models.Fail[models.FeedPage]("invalid cursor")
	}

	posts, err := g.store.FeedPage(ctx, cursor, g.pageSize)
	if err != nil {
		return failOp[models.FeedPage](g, "feed_page", "could not load feed", err)
	}

	page := models.FeedPage{Posts: posts}
	if len(posts) == g.pageSize {
		next := cursor + g.pageSize
		page.NextCursor = &next
	}
	return models.OK(&page)
}

// LikePost inserts a like row. Liking an already liked post is success with
// no row in Data.
func (g *Gateway) LikePost(ctx context.Context, postID, userID uint) models.Result[models.Like] {
	like, err := g.store.InsertLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.OKMsg[models.Like](nil, "already liked")
		}
		return failOp[models.Like](g, "like_post", "could not like post", err)
	}
	g.coord.PostMutated(postID)
	return models.OKMsg(like, "post liked")
}

// UnlikePost deletes the like row. Unliking a post that was never liked is
// success.
func (g *Gateway) UnlikePost(ctx context.Context, postID, userID uint) models.Result[models.Like] {
	rows, err := g.store.DeleteLike(ctx, postID, userID)
	if err != nil {
		return failOp[models.Like](g, "unlike_post", "could not unlike post", err)
	}
	g.coord.PostMutated(postID)
	if rows == 0 {
		return models.OKMsg[models.Like](nil, "was not liked")
	}
	return models.OKMsg[models.Like](nil, "post unliked")
}

// SavePost inserts a save row, symmetric to LikePost.
func (g *Gateway) SavePost(ctx context.Context, postID, userID uint) models.Result[models.Save] {
	save, err := g.store.InsertSave(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.OKMsg[models.Save](nil, "already saved")
		}
		return failOp[models.Save](g, "save_post", "could not save post", err)
	}
	g.coord.PostMutated(postID)
	return models.OKMsg(save, "post saved")
}

// UnsavePost deletes the save row, symmetric to UnlikePost.
func (g *Gateway) UnsavePost(ctx context.Context, postID, userID uint) models.Result[models.Save] {
	rows, err := g.store.DeleteSave(ctx, postID, userID)
	if err != nil {
		return failOp[models.Save](g, "unsave_post", "could not unsave post", err)
	}
	g.coord.PostMutated(postID)
	if rows == 0 {
		return models.OKMsg[models.Save](nil, "was not saved")
	}
	return models.OKMsg[models.Save](nil, "post unsaved")
}
