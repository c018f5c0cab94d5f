package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"ecommerce-auth/internal/database"
	"ecommerce-auth/internal/model"
	"ecommerce-auth/internal/security"
	"ecommerce-auth/pkg/apierror"
)

const minPasswordLength = 6

type UserRepository struct {
	collection *mongo.Collection
	hasher     security.Hasher
	now        func() time.Time
}

func NewUserRepository(db *mongo.Database, hasher security.Hasher) *UserRepository {
	return &UserRepository{
		collection: db.Collection(database.UsersCollection),
		hasher:     hasher,
		now:        time.Now,
	}
}

// Create validates and normalizes the input, hashes the password and
// inserts the document. A duplicate email surfaces as
// model.ErrUserAlreadyExists via the unique index.
func (r *UserRepository) Create(ctx context.Context, in model.NewUser) (model.User, error) {
	user, err := r.prepare(in)
	if err != nil {
		return model.User{}, err
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, fmt.Errorf("create user %s: %w", user.Email, model.ErrUserAlreadyExists)
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: model.NormalizeEmail(email)}})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, model.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (model.User, error) {
	var u model.User
	err := r.collection.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// prepare is the hash-before-persist boundary: nothing leaves it with a
// plaintext password.
func (r *UserRepository) prepare(in model.NewUser) (model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := model.NormalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}

	switch {
	case name == "":
		return model.User{}, validationError("Name is required", "name")
	case email == "":
		return model.User{}, validationError("Email is required", "email")
	case in.Password == "":
		return model.User{}, validationError("Password is required", "password")
	case len(in.Password) < minPasswordLength:
		return model.User{}, validationError("Password must be at least 6 characters long", "password")
	case !role.Valid():
		return model.User{}, validationError("Role must be customer or admin", "role")
	}

	digest, err := r.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := r.now().UTC()
	return model.User{
		ID:        bson.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  digest,
		Role:      role,
		CartItems: []model.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func validationError(message string, field string) error {
	return &apierror.APIError{
		Kind:       apierror.KindValidation,
		Message:    message,
		Details:    field,
		HTTPStatus: http.StatusBadRequest,
		Err:        model.ErrInvalidInput,
	}
}
