package gateway

import (
	"context"
	"errors"
	"log/slog"

	"glimpse/internal/identity"
	"glimpse/internal/models"
	"glimpse/internal/validation"
)

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Username string
	FullName string
	Email    string
	Password string
}

// LoginInput is the payload for Login.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates an identity-provider account and the matching user row.
// The two steps form one logical transaction: if the row insert fails the
// operation reports failure even though the account now exists. The orphaned
// account is logged, not rolled back.
func (g *Gateway) Register(ctx context.Context, in RegisterInput) models.Result[models.User] {
	email, err := validation.Email(in.Email)
	if err != nil {
		return failValidation[models.User](err)
	}
	username, err := validation.Username(in.Username)
	if err != nil {
		return failValidation[models.User](err)
	}
	if err := validation.FullName(in.FullName); err != nil {
		return failValidation[models.User](err)
	}
	if err := validation.Password(in.Password); err != nil {
		return failValidation[models.User](err)
	}

	account, err := g.identity.SignUp(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailRegistered) {
			return models.Fail[models.User]("email already registered")
		}
		return failOp[models.User](g, "register", "could not create account", err)
	}

	user := models.User{
		AccountID: account.ID,
		Username:  username,
		FullName:  in.FullName,
		Email:     email,
	}
	if err := g.store.CreateUser(ctx, &user); err != nil {
		// The identity account outlives the failed row insert on purpose:
		// a retried registration signs in and repairs the row instead.
		g.log.Warn("user row insert failed after account creation; account orphaned",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, models.ErrDuplicate) {
			return models.Fail[models.User]("username or email already taken")
		}
		return failOp[models.User](g, "register", "could not create user", err)
	}

	// Best-effort: the session metadata mirrors the user row for quick access.
	if err := g.identity.UpdateUser(ctx, map[string]any{
		"user_id":    user.ID,
		"full_name":  user.FullName,
		"avatar_url": user.AvatarURL,
	}); err != nil {
		g.log.Warn("could not attach user metadata to account", slog.String("error", err.Error()))
	}

	return models.OKMsg(&user, "registered successfully")
}

// Login signs the user in with email and password.
func (g *Gateway) Login(ctx context.Context, in LoginInput) models.Result[identity.Session] {
	email, err := validation.Email(in.Email)
	if err != nil {
		return failValidation[identity.Session](err)
	}
	if in.Password == "" {
		return models.Fail[identity.Session]("invalid email or password")
	}

	if err := g.identity.SignInWithPassword(ctx, email, in.Password); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return models.Fail[identity.Session]("invalid email or password")
		}
		return failOp[identity.Session](g, "login", "could not sign in", err)
	}
	return models.OKMsg(g.identity.Session(), "logged in")
}

// Logout clears the current session.
func (g *Gateway) Logout(ctx context.Context) models.Result[struct{}] {
	if err := g.identity.SignOut(ctx); err != nil {
		return failOp[struct{}](g, "logout", "could not sign out", err)
	}
	return models.OKMsg[struct{}](nil, "logged out")
}
