package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ecommerce-auth/internal/model"
	"ecommerce-auth/internal/security"
	"ecommerce-auth/pkg/apierror"
)

func newPrepareRepo() *UserRepository {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &UserRepository{
		hasher: security.NewBcryptHasher(bcrypt.MinCost),
		now:    func() time.Time { return fixed },
	}
}

func TestPrepareNormalizesAndHashes(t *testing.T) {
	t.Parallel()

	repo := newPrepareRepo()
	user, err := repo.prepare(model.NewUser{Name: "  John ", Email: " John@X.com ", Password: "123456"})
	require.NoError(t, err)

	require.False(t, user.ID.IsZero())
	require.Equal(t, "John", user.Name)
	require.Equal(t, "john@x.com", user.Email)
	require.Equal(t, model.RoleCustomer, user.Role)
	require.NotEqual(t, "123456", user.Password)
	require.True(t, repo.hasher.Compare(user.Password, "123456"))
	require.Empty(t, user.CartItems)
	require.Equal(t, user.CreatedAt, user.UpdatedAt)
	require.Equal(t, 2026, user.CreatedAt.Year())
}

func TestPrepareValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		in    model.NewUser
		field string
	}{
		{name: "missing name", in: model.NewUser{Name: " ", Email: "a@b.c", Password: "123456"}, field: "name"},
		{name: "missing email", in: model.NewUser{Name: "A", Password: "123456"}, field: "email"},
		{name: "missing password", in: model.NewUser{Name: "A", Email: "a@b.c"}, field: "password"},
		{name: "short password", in: model.NewUser{Name: "A", Email: "a@b.c", Password: "12345"}, field: "password"},
		{name: "unknown role", in: model.NewUser{Name: "A", Email: "a@b.c", Password: "123456", Role: "viewer"}, field: "role"},
	}

	repo := newPrepareRepo()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.prepare(tc.in)
			require.ErrorIs(t, err, model.ErrInvalidInput)

			var apiErr *apierror.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, apierror.KindValidation, apiErr.Kind)
			require.Equal(t, tc.field, apiErr.Details)
		})
	}
}

func TestPrepareAcceptsAdminRole(t *testing.T) {
	t.Parallel()

	user, err := newPrepareRepo().prepare(model.NewUser{Name: "A", Email: "a@b.c", Password: "123456", Role: model.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, user.Role)
}
