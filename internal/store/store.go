// Package store provides the relational-store adapter consumed by the gateway.
package store

import (
	"context"
	"errors"
	"fmt"

	"glimpse/internal/cache"
	"glimpse/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store defines the relational operations the gateway depends on: filtered
// insert/select/update/delete on users, posts, likes and saved, with
// unique-constraint violations surfaced as models.ErrDuplicate.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByAccountID(ctx context.Context, accountID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UsernameExists(ctx context.Context, username string) (bool, error)

	CreatePost(ctx context.Context, post *models.Post) error
	FeedPage(ctx context.Context, offset, limit int) ([]models.Post, error)

	InsertLike(ctx context.Context, postID, userID uint) (*models.Like, error)
	DeleteLike(ctx context.Context, postID, userID uint) (int64, error)
	InsertSave(ctx context.Context, postID, userID uint) (*models.Save, error)
	DeleteSave(ctx context.Context, postID, userID uint) (int64, error)
}

// gormStore implements Store
type gormStore struct {
	db *gorm.DB
}

// New creates a new store backed by the given gorm DB.
func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// translateError maps driver-level unique violations onto models.ErrDuplicate
// so callers can branch with errors.Is regardless of the underlying database.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, models.ErrDuplicate)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%v: %w", err, models.ErrDuplicate)
	}
	return err
}

func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translateError(s.db.WithContext(ctx).Create(user).Error)
}

func (s *gormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return s.db.WithContext(ctx).First(&user, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", id)
		}
		return nil, err
	}

	// Derived count; never cached with the row so it cannot go stale with it.
	if err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("user_id = ?", id).
		Count(&user.PostCount).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) GetUserByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", accountID)
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) UpdateUser(ctx context.Context, user *models.User) error {
	if err := translateError(s.db.WithContext(ctx).Save(user).Error); err != nil {
		return err
	}
	cache.InvalidateUser(ctx, user.ID)
	// The feed embeds user summaries.
	cache.BumpFeedEpoch(ctx)
	return nil
}

func (s *gormStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) CreatePost(ctx context.Context, post *models.Post) error {
	if err := translateError(s.db.WithContext(ctx).Create(post).Error); err != nil {
		return err
	}
	cache.BumpFeedEpoch(ctx)
	return nil
}

func (s *gormStore) FeedPage(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	key := cache.FeedPageKey(cache.FeedEpoch(ctx), offset, limit)
	err := cache.Aside(ctx, key, &posts, cache.FeedTTL, func() error {
		return s.db.WithContext(ctx).
			Preload("User").
			Preload("Likes").
			Preload("Saved").
			Order("created_at DESC, id DESC").
			Offset(offset).
			Limit(limit).
			Find(&posts).Error
	})
	return posts, err
}

func (s *gormStore) InsertLike(ctx context.Context, postID, userID uint) (*models.Like, error) {
	like := &models.Like{PostID: postID, UserID: userID}
	if err := translateError(s.db.WithContext(ctx).Create(like).Error); err != nil {
		return nil, err
	}
	cache.BumpFeedEpoch(ctx)
	return like, nil
}

func (s *gormStore) DeleteLike(ctx context.Context, postID, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if res.Error == nil && res.RowsAffected > 0 {
		cache.BumpFeedEpoch(ctx)
	}
	return res.RowsAffected, res.Error
}

func (s *gormStore) InsertSave(ctx context.Context, postID, userID uint) (*models.Save, error) {
	save := &models.Save{PostID: postID, UserID: userID}
	if err := translateError(s.db.WithContext(ctx).Create(save).Error); err != nil {
		return nil, err
	}
	cache.BumpFeedEpoch(ctx)
	return save, nil
}

func (s *gormStore) DeleteSave(ctx context.Context, postID, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Save{})
	if res.Error == nil && res.RowsAffected > 0 {
		cache.BumpFeedEpoch(ctx)
	}
	return res.RowsAffected, res.Error
}
