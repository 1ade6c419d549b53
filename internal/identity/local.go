package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"glimpse/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

// Account is an identity-provider account row, distinct from the store's
// users table. Registration creates both; a failure in between leaves an
// orphaned account by design.
type Account struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Metadata     map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Account) TableName() string {
	return "accounts"
}

// LocalProvider implements Provider over a local accounts table with bcrypt
// password hashes and HS256 access tokens.
type LocalProvider struct {
	db     *gorm.DB
	secret []byte

	mu      sync.RWMutex
	session *Session
	subs    map[int]AuthChangeFn
	nextSub int
}

// NewLocalProvider creates a LocalProvider signing tokens with secret.
func NewLocalProvider(db *gorm.DB, secret string) *LocalProvider {
	return &LocalProvider{
		db:     db,
		secret: []byte(secret),
		subs:   make(map[int]AuthChangeFn),
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
	}
	if err := p.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, ErrEmailRegistered
		}
		return nil, err
	}
	return account, nil
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) error {
	var account Account
	err := p.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}

	token, err := p.issueToken(&account)
	if err != nil {
		return err
	}

	session := &Session{
		AccessToken: token,
		AccountID:   account.ID,
		Email:       account.Email,
		Metadata:    cloneMetadata(account.Metadata),
	}

	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	p.notify(EventSignedIn, session)
	return nil
}

func (p *LocalProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()

	p.notify(EventSignedOut, nil)
	return nil
}

// Session returns the current session, nil when signed out.
func (p *LocalProvider) Session() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

func (p *LocalProvider) OnAuthStateChange(fn AuthChangeFn) Subscription {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()
	return &subscription{provider: p, id: id}
}

// UpdateUser merges metadata into the current account and session.
func (p *LocalProvider) UpdateUser(ctx context.Context, metadata map[string]any) error {
	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return models.NewUnauthorizedError("no active session")
	}
	accountID := p.session.AccountID
	p.mu.Unlock()

	var account Account
	if err := p.db.WithContext(ctx).First(&account, "id = ?", accountID).Error; err != nil {
		return err
	}
	if account.Metadata == nil {
		account.Metadata = make(map[string]any, len(metadata))
	}
	for k, v := range metadata {
		account.Metadata[k] = v
	}
	if err := p.db.WithContext(ctx).Save(&account).Error; err != nil {
		return err
	}

	p.mu.Lock()
	var updated *Session
	if p.session != nil && p.session.AccountID == accountID {
		merged := cloneMetadata(p.session.Metadata)
		if merged == nil {
			merged = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			merged[k] = v
		}
		next := *p.session
		next.Metadata = merged
		p.session = &next
		updated = p.session
	}
	p.mu.Unlock()

	if updated != nil {
		p.notify(EventUserUpdated, updated)
	}
	return nil
}

func (p *LocalProvider) issueToken(account *Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// VerifyToken parses an access token and returns its account id.
func (p *LocalProvider) VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	return sub, nil
}

func (p *LocalProvider) notify(event string, session *Session) {
	p.mu.RLock()
	fns := make([]AuthChangeFn, 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.RUnlock()

	for _, fn := range fns {
		fn(event, session)
	}
}

type subscription struct {
	provider *LocalProvider
	id       int
}

func (s *subscription) Unsubscribe() {
	s.provider.mu.Lock()
	delete(s.provider.subs, s.id)
	s.provider.mu.Unlock()
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// isUniqueViolation covers drivers that do not go through gorm's error
// translation (e.g. raw pgconn errors).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
