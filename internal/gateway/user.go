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

// UpdateProfileInput is the payload for UpdateProfile. Avatar is optional.
type UpdateProfileInput struct {
	UserID   uint
	Username string
	FullName string
	Bio      string
	Avatar   *ImageUpload
}

// UsernameCheck is the payload of FindUsername.
type UsernameCheck struct {
	Exists bool `json:"exists"`
}

// GetUser reads a user with its derived post count.
func (g *Gateway) GetUser(ctx context.Context, id uint) models.Result[models.User] {
	user, err := g.store.GetUser(ctx, id)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return models.Fail[models.User]("user not found")
		}
		return failOp[models.User](g, "get_user", "could not load user", err)
	}
	return models.OK(user)
}

// UpdateProfile updates username, full name, bio and optionally the avatar.
// The avatar upload runs first; its failure short-circuits without mutating
// the row.
func (g *Gateway) UpdateProfile(ctx context.Context, in UpdateProfileInput) models.Result[models.User] {
	username, err := validation.Username(in.Username)
	if err != nil {
		return failValidation[models.User](err)
	}
	if err := validation.FullName(in.FullName); err != nil {
		return failValidation[models.User](err)
	}
	if err := validation.Bio(in.Bio); err != nil {
		return failValidation[models.User](err)
	}

	var avatarURL string
	if in.Avatar != nil {
		if err := validation.Image(in.Avatar.ContentType, len(in.Avatar.Data)); err != nil {
			return failValidation[models.User](err)
		}
		objectPath := fmt.Sprintf("%d/avatar/%s-%s", in.UserID, uuid.NewString(), path.Base(in.Avatar.Name))
		stored, err := g.blobs.Upload(ctx, objectPath, in.Avatar.Data, blob.UploadOptions{
			ContentType: in.Avatar.ContentType,
			Upsert:      true,
		})
		if err != nil {
			return failOp[models.User](g, "update_profile", "could not upload profile image", err)
		}
		avatarURL = g.blobs.PublicURL(stored)
	}

	user, err := g.store.GetUser(ctx, in.UserID)
	if err != nil {
		return failOp[models.User](g, "update_profile", "could not load user", err)
	}

	user.Username = username
	user.FullName = in.FullName
	user.Bio = in.Bio
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}

	if err := g.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.Fail[models.User]("username already taken")
		}
		return failOp[models.User](g, "update_profile", "could not update profile", err)
	}

	g.coord.UserMutated(in.UserID)

	// Best-effort metadata refresh; a signed-out identity is not an error here.
	if err := g.identity.UpdateUser(ctx, map[string]any{
		"full_name":  user.FullName,
		"avatar_url": user.AvatarURL,
	}); err != nil {
		g.log.Warn("could not refresh account metadata", slog.String("error", err.Error()))
	}

	return models.OKMsg(user, "profile updated")
}

// FindUsername reports whether a username is taken. Advisory only: the
// store's uniqueness constraint is authoritative.
func (g *Gateway) FindUsername(ctx context.Context, candidate string) models.Result[UsernameCheck] {
	username, err := validation.Username(candidate)
	if err != nil {
		return failValidation[UsernameCheck](err)
	}

	exists, err := g.store.UsernameExists(ctx, username)
	if err != nil {
		return failOp[UsernameCheck](g, "find_username", "could not check username", err)
	}
	return models.OK(&UsernameCheck{Exists: exists})
}
