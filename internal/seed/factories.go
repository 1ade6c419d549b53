// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"glimpse/internal/identity"
	"glimpse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "Glimpse123!"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists an identity account plus its user row.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(gofakeit.Username())
	if len(username) > 20 {
		username = username[:20]
	}
	account := &identity.Account{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(gofakeit.Email()),
		PasswordHash: string(hash),
	}
	if err := f.db.Create(account).Error; err != nil {
		return nil, err
	}

	user := &models.User{
		AccountID: account.ID,
		Username:  username,
		FullName:  gofakeit.Name(),
		Email:     account.Email,
		Bio:       gofakeit.Sentence(8),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", account.ID),
	}
	for _, fn := range overrides {
		fn(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post for the given user with a realistic created_at
// spread so feed ordering is meaningful.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Caption:  gofakeit.Sentence(10),
		Tags:     []string{gofakeit.Hobby(), gofakeit.Word()},
		ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		Location: gofakeit.City(),
		UserID:   user.ID,
	}
	daysBack := f.rand.Intn(90)
	minsBack := f.rand.Intn(24 * 60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, fn := range overrides {
		fn(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Run seeds userCount users with postsPerUser posts each, plus random like
// and save rows between them.
func (f *Factory) Run(userCount, postsPerUser int) error {
	users := make([]*models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < postsPerUser; i++ {
			post, err := f.CreatePost(user)
			if err != nil {
				return fmt.Errorf("seed post: %w", err)
			}
			posts = append(posts, post)
		}
	}

	for _, post := range posts {
		for _, user := range users {
			if f.rand.Intn(3) == 0 {
				like := &models.Like{PostID: post.ID, UserID: user.ID}
				if err := f.db.Create(like).Error; err != nil {
					return fmt.Errorf("seed like: %w", err)
				}
			}
			if f.rand.Intn(5) == 0 {
				save := &models.Save{PostID: post.ID, UserID: user.ID}
				if err := f.db.Create(save).Error; err != nil {
					return fmt.Errorf("seed save: %w", err)
				}
			}
		}
	}
	return nil
}
