package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"ecommerce-auth/internal/model"
	"ecommerce-auth/internal/repository"
	"ecommerce-auth/internal/security"
	"ecommerce-auth/internal/token"
	"ecommerce-auth/pkg/apierror"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
	refreshTTL        = 7 * 24 * time.Hour
)

type authFixture struct {
	service  *AuthService
	users    *repository.MockUserRepository
	sessions *repository.MockSessionRepository
	issuer   *token.Issuer
	hasher   *security.BcryptHasher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    refreshTTL,
	})
	require.NoError(t, err)

	f := &authFixture{
		users:    &repository.MockUserRepository{},
		sessions: &repository.MockSessionRepository{},
		issuer:   issuer,
		hasher:   security.NewBcryptHasher(bcrypt.MinCost),
	}
	f.service = NewAuthService(f.users, f.sessions, f.issuer, f.hasher)

	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
	})
	return f
}

func (f *authFixture) storedUser(t *testing.T, email string, password string) model.User {
	t.Helper()

	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)

	return model.User{
		ID:       bson.NewObjectID(),
		Name:     "John",
		Email:    email,
		Password: digest,
		Role:     model.RoleCustomer,
	}
}

func requireKind(t *testing.T, err error, kind apierror.Kind) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, kind, apiErr.Kind)
}

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("creates user and stores session", func(t *testing.T) {
		f := newAuthFixture(t)
		ctx := context.Background()
		user := f.storedUser(t, "john@x.com", "123456")

		f.users.On("Create", ctx, model.NewUser{Name: "John", Email: "john@x.com", Password: "123456"}).Return(user, nil).Once()
		f.sessions.On("Store", ctx, user.ID.Hex(), mock.AnythingOfType("string"), refreshTTL).Return(nil).Once()

		result, err := f.service.Signup(ctx, "John", "john@x.com", "123456")
		require.NoError(t, err)

		require.Equal(t, user.ID.Hex(), result.User.ID)
		require.Equal(t, "john@x.com", result.User.Email)
		require.Equal(t, model.RoleCustomer, result.User.Role)

		stored := f.sessions.Calls[0].Arguments.String(2)
		require.Equal(t, result.Tokens.RefreshToken, stored)

		access, err := f.issuer.VerifyAccess(result.Tokens.AccessToken)
		require.NoError(t, err)
		refresh, err := f.issuer.VerifyRefresh(result.Tokens.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID.Hex(), access.UserID())
		require.Equal(t, access.UserID(), refresh.UserID())
		require.True(t, access.ExpiresAt.Before(refresh.ExpiresAt.Time))
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("Create", mock.Anything, mock.Anything).
			Return(model.User{}, errors.Join(errors.New("E11000"), model.ErrUserAlreadyExists)).Once()

		_, err := f.service.Signup(context.Background(), "John", "john@x.com", "123456")
		requireKind(t, err, apierror.KindDuplicateUser)
		require.ErrorIs(t, err, model.ErrUserAlreadyExists)
		require.Equal(t, "user already exists", err.(*apierror.APIError).Message)
		f.sessions.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("validation error passes through", func(t *testing.T) {
		f := newAuthFixture(t)
		invalid := apierror.New(apierror.KindValidation, "Name is required", "name", 400)
		f.users.On("Create", mock.Anything, mock.Anything).Return(model.User{}, invalid).Once()

		_, err := f.service.Signup(context.Background(), "", "john@x.com", "123456")
		require.Same(t, invalid, err)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newAuthFixture(t)
		cause := errors.New("server selection timeout")
		f.users.On("Create", mock.Anything, mock.Anything).Return(model.User{}, cause).Once()

		_, err := f.service.Signup(context.Background(), "John", "john@x.com", "123456")
		requireKind(t, err, apierror.KindServer)
		require.ErrorIs(t, err, cause)
	})

	t.Run("cache failure", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.storedUser(t, "john@x.com", "123456")
		cause := errors.New("redis down")
		f.users.On("Create", mock.Anything, mock.Anything).Return(user, nil).Once()
		f.sessions.On("Store", mock.Anything, user.ID.Hex(), mock.Anything, refreshTTL).Return(cause).Once()

		_, err := f.service.Signup(context.Background(), "John", "john@x.com", "123456")
		requireKind(t, err, apierror.KindServer)
		require.ErrorIs(t, err, cause)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.storedUser(t, "john@x.com", "123456")
		f.users.On("FindByEmail", mock.Anything, "john@x.com").Return(user, nil).Once()
		f.sessions.On("Store", mock.Anything, user.ID.Hex(), mock.Anything, refreshTTL).Return(nil).Once()

		result, err := f.service.Login(context.Background(), "john@x.com", "123456")
		require.NoError(t, err)
		require.Equal(t, user.ID.Hex(), result.User.ID)
		require.NotEmpty(t, result.Tokens.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.storedUser(t, "john@x.com", "123456")
		f.users.On("FindByEmail", mock.Anything, "john@x.com").Return(user, nil).Once()

		_, err := f.service.Login(context.Background(), "john@x.com", "1234567")
		requireKind(t, err, apierror.KindInvalidCredentials)
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", mock.Anything, "ghost@x.com").Return(model.User{}, model.ErrUserNotFound).Once()

		_, err := f.service.Login(context.Background(), "ghost@x.com", "123456")
		requireKind(t, err, apierror.KindInvalidCredentials)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", mock.Anything, "john@x.com").Return(model.User{}, errors.New("timeout")).Once()

		_, err := f.service.Login(context.Background(), "john@x.com", "123456")
		requireKind(t, err, apierror.KindServer)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("without token is a no-op", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.service.Logout(context.Background(), "  "))
		f.sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("revokes the session", func(t *testing.T) {
		f := newAuthFixture(t)
		pair, err := f.issuer.Issue("user-1")
		require.NoError(t, err)
		f.sessions.On("Delete", mock.Anything, "user-1").Return(nil).Once()

		require.NoError(t, f.service.Logout(context.Background(), pair.RefreshToken))
	})

	t.Run("foreign secret", func(t *testing.T) {
		f := newAuthFixture(t)
		foreign, err := token.NewIssuer(token.Config{
			AccessSecret:  "a",
			RefreshSecret: "b",
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		})
		require.NoError(t, err)
		pair, err := foreign.Issue("user-1")
		require.NoError(t, err)

		err = f.service.Logout(context.Background(), pair.RefreshToken)
		requireKind(t, err, apierror.KindServer)
		require.ErrorIs(t, err, token.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture(t)
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
			Type: token.TypeRefresh,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}).SignedString([]byte(testRefreshSecret))
		require.NoError(t, err)

		err = f.service.Logout(context.Background(), expired)
		requireKind(t, err, apierror.KindServer)
		require.ErrorIs(t, err, token.ErrExpiredToken)
	})

	t.Run("cache failure", func(t *testing.T) {
		f := newAuthFixture(t)
		pair, err := f.issuer.Issue("user-1")
		require.NoError(t, err)
		f.sessions.On("Delete", mock.Anything, "user-1").Return(errors.New("redis down")).Once()

		err = f.service.Logout(context.Background(), pair.RefreshToken)
		requireKind(t, err, apierror.KindServer)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("current session", func(t *testing.T) {
		f := newAuthFixture(t)
		pair, err := f.issuer.Issue("user-1")
		require.NoError(t, err)
		f.sessions.On("Get", mock.Anything, "user-1").Return(pair.RefreshToken, nil).Once()

		access, expiresAt, err := f.service.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		require.True(t, expiresAt.After(time.Now()))

		claims, err := f.issuer.VerifyAccess(access)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.UserID())
	})

	t.Run("superseded session", func(t *testing.T) {
		f := newAuthFixture(t)
		old, err := f.issuer.Issue("user-1")
		require.NoError(t, err)
		current, err := f.issuer.Issue("user-1")
		require.NoError(t, err)
		f.sessions.On("Get", mock.Anything, "user-1").Return(current.RefreshToken, nil).Once()

		_, _, err = f.service.Refresh(context.Background(), old.RefreshToken)
		requireKind(t, err, apierror.KindUnauthorized)
	})

	t.Run("revoked session", func(t *testing.T) {
		f := newAuthFixture(t)
		pair, err := f.issuer.Issue("user-1")
		require.NoError(t, err)
		f.sessions.On("Get", mock.Anything, "user-1").Return("", model.ErrSessionNotFound).Once()

		_, _, err = f.service.Refresh(context.Background(), pair.RefreshToken)
		requireKind(t, err, apierror.KindUnauthorized)
		require.ErrorIs(t, err, model.ErrSessionNotFound)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Refresh(context.Background(), "")
		requireKind(t, err, apierror.KindUnauthorized)
	})

	t.Run("access token presented", func(t *testing.T) {
		f := newAuthFixture(t)
		pair, err := f.issuer.Issue("user-1")
		require.NoError(t, err)

		_, _, err = f.service.Refresh(context.Background(), pair.AccessToken)
		requireKind(t, err, apierror.KindUnauthorized)
	})

	t.Run("cache failure", func(t *testing.T) {
		f := newAuthFixture(t)
		pair, err := f.issuer.Issue("user-1")
		require.NoError(t, err)
		f.sessions.On("Get", mock.Anything, "user-1").Return("", errors.New("redis down")).Once()

		_, _, err = f.service.Refresh(context.Background(), pair.RefreshToken)
		requireKind(t, err, apierror.KindServer)
	})
}

func TestProfile(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.storedUser(t, "john@x.com", "123456")
		f.users.On("FindByID", mock.Anything, user.ID.Hex()).Return(user, nil).Once()

		profile, err := f.service.Profile(context.Background(), user.ID.Hex())
		require.NoError(t, err)
		require.Equal(t, user.Public(), profile)
	})

	t.Run("missing", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByID", mock.Anything, "gone").Return(model.User{}, model.ErrUserNotFound).Once()

		_, err := f.service.Profile(context.Background(), "gone")
		requireKind(t, err, apierror.KindNotFound)
	})
}
