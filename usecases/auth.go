package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"eudaimonia/auth"
	"eudaimonia/entities"
	"eudaimonia/repositories"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type AuthUseCase struct {
	Users  repositories.UserRepository
	Tokens *auth.TokenManager
	cost   int
}

func NewAuthUseCase(users repositories.UserRepository, tokens *auth.TokenManager) *AuthUseCase {
	return &AuthUseCase{Users: users, Tokens: tokens, cost: bcrypt.DefaultCost}
}

// Register creates an account after checking the password rules and
// username/email uniqueness.
func (uc *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return nil, newError(ErrValidation, "username is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, newError(ErrValidation, "Enter a valid email address.")
	}
	if len(in.Password) < minPasswordLength {
		return nil, newError(ErrValidation, "password must be at least %d characters", minPasswordLength)
	}
	if in.Password != in.PasswordConfirm {
		return nil, newError(ErrValidation, "Passwords don't match")
	}

	if _, err := uc.Users.GetByUsername(ctx, in.Username); err == nil {
		return nil, newError(ErrConflict, "A user with that username already exists.")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if _, err := uc.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, newError(ErrConflict, "A user with that email already exists.")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entities.User{Username: in.Username, Email: in.Email, PasswordHash: string(hash)}
	if err := uc.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "A user with that username already exists.")
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a fresh token pair.
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*auth.Pair, error) {
	invalid := newError(ErrUnauthorized, "No active account found with the given credentials")

	user, err := uc.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}
	return uc.Tokens.IssuePair(user.ID)
}

// Refresh exchanges a refresh token for a new access token.
func (uc *AuthUseCase) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := uc.Tokens.Parse(refresh, auth.TypeRefresh)
	if err != nil {
		return "", newError(ErrUnauthorized, "Token is invalid or expired")
	}
	if _, err := uc.Users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", newError(ErrUnauthorized, "User not found")
		}
		return "", err
	}
	return uc.Tokens.IssueAccess(claims.UserID)
}

// Me returns the authenticated account.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*entities.User, error) {
	user, err := uc.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "User not found")
		}
		return nil, err
	}
	return user, nil
}
