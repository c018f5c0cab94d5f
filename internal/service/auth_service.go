package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ecommerce-auth/internal/model"
	"ecommerce-auth/internal/security"
	"ecommerce-auth/internal/token"
	"ecommerce-auth/pkg/apierror"
)

type UserStore interface {
	Create(ctx context.Context, in model.NewUser) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
}

type SessionStore interface {
	Store(ctx context.Context, userID string, refreshToken string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

type TokenIssuer interface {
	Issue(userID string) (token.Pair, error)
	IssueAccess(userID string) (string, time.Time, error)
	VerifyRefresh(tokenString string) (*token.Claims, error)
	RefreshTTL() time.Duration
}

type AuthResult struct {
	User   model.PublicUser
	Tokens token.Pair
}

// AuthService owns the session lifecycle: a session is a token pair whose
// refresh half is mirrored in the session store so it can be revoked.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	tokens   TokenIssuer
	hasher   security.Hasher
}

func NewAuthService(users UserStore, sessions SessionStore, tokens TokenIssuer, hasher security.Hasher) *AuthService {
	return &AuthService{users: users, sessions: sessions, tokens: tokens, hasher: hasher}
}

// Signup creates the user and logs them in. If the session cannot be stored
// the user record is kept; a later login recovers.
func (s *AuthService) Signup(ctx context.Context, name string, email string, password string) (AuthResult, error) {
	user, err := s.users.Create(ctx, model.NewUser{Name: name, Email: email, Password: password})
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return AuthResult{}, apierror.Wrap(apierror.KindDuplicateUser, "user already exists", http.StatusBadRequest, err)
		}
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			return AuthResult{}, err
		}
		return AuthResult{}, apierror.Server(err)
	}

	slog.Info("user created", "user_id", user.ID.Hex(), "role", user.Role)
	return s.startSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return AuthResult{}, invalidCredentials()
	}
	if err != nil {
		return AuthResult{}, apierror.Server(err)
	}

	if !s.hasher.Compare(user.Password, password) {
		return AuthResult{}, invalidCredentials()
	}

	return s.startSession(ctx, user)
}

// Logout revokes the session named by refreshToken. An empty token is a
// successful no-op. Any verification failure is reported as a server error,
// with the token error kept in the chain.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return apierror.Server(fmt.Errorf("verify refresh token: %w", err))
	}

	if err := s.sessions.Delete(ctx, claims.UserID()); err != nil {
		return apierror.Server(err)
	}

	slog.Info("session revoked", "user_id", claims.UserID())
	return nil
}

// Refresh trades a live refresh token for a new access token. The token
// must match the one currently stored for its user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", time.Time{}, apierror.Wrap(apierror.KindUnauthorized, "no refresh token provided", http.StatusUnauthorized, model.ErrUnauthorized)
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", time.Time{}, apierror.Wrap(apierror.KindUnauthorized, "invalid refresh token", http.StatusUnauthorized, err)
	}

	stored, err := s.sessions.Get(ctx, claims.UserID())
	if errors.Is(err, model.ErrSessionNotFound) || (err == nil && stored != refreshToken) {
		return "", time.Time{}, apierror.Wrap(apierror.KindUnauthorized, "invalid refresh token", http.StatusUnauthorized, model.ErrSessionNotFound)
	}
	if err != nil {
		return "", time.Time{}, apierror.Server(err)
	}

	access, expiresAt, err := s.tokens.IssueAccess(claims.UserID())
	if err != nil {
		return "", time.Time{}, apierror.Server(fmt.Errorf("issue access token: %w", err))
	}

	return access, expiresAt, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.Wrap(apierror.KindNotFound, "user not found", http.StatusNotFound, err)
	}
	if err != nil {
		return model.PublicUser{}, apierror.Server(err)
	}
	return user.Public(), nil
}

// startSession issues a token pair and makes its refresh token the user's
// only live session, replacing any previous one.
func (s *AuthService) startSession(ctx context.Context, user model.User) (AuthResult, error) {
	userID := user.ID.Hex()

	pair, err := s.tokens.Issue(userID)
	if err != nil {
		return AuthResult{}, apierror.Server(fmt.Errorf("issue tokens: %w", err))
	}

	if err := s.sessions.Store(ctx, userID, pair.RefreshToken, s.tokens.RefreshTTL()); err != nil {
		return AuthResult{}, apierror.Server(err)
	}

	slog.Info("session started", "user_id", userID)
	return AuthResult{User: user.Public(), Tokens: pair}, nil
}

func invalidCredentials() error {
	return apierror.Wrap(apierror.KindInvalidCredentials, "invalid email or password", http.StatusBadRequest, model.ErrInvalidCredentials)
}
