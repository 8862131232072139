package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/KoltaG/thesis-pm-api/logging"
	"github.com/KoltaG/thesis-pm-api/models"
)

// dummyHash keeps the bcrypt comparison running even when the email lookup
// misses, so login timing does not leak whether the account exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserService struct {
	UserCollection *mongo.Collection
	Breaker        *gobreaker.CircuitBreaker
}

func NewUserService(userCollection *mongo.Collection, breaker *gobreaker.CircuitBreaker) *UserService {
	return &UserService{
		UserCollection: userCollection,
		Breaker:        breaker,
	}
}

// Register stores a new user with the password bcrypt-hashed. Returns
// ErrEmailTaken when the email is already registered; the unique index covers
// the race between the pre-check and the insert.
func (s *UserService) Register(ctx context.Context, user models.User) (*models.User, error) {
	var existing models.User
	_, err := execute(s.Breaker, func() (interface{}, error) {
		return nil, s.UserCollection.FindOne(ctx, bson.M{"email": user.Email}).Decode(&existing)
	})
	if err == nil {
		return nil, ErrEmailTaken
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Password = string(hashed)
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = execute(s.Breaker, func() (interface{}, error) {
		return s.UserCollection.InsertOne(ctx, user)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: Registered user %s with role %s.", user.Email, user.Role)
	return &user, nil
}

// Authenticate verifies the email/password pair. Unknown email and wrong
// password both surface as ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	_, err := execute(s.Breaker, func() (interface{}, error) {
		return nil, s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	})

	hash := dummyHash
	if err == nil {
		hash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetAllUsers returns every registered user.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	res, err := execute(s.Breaker, func() (interface{}, error) {
		cursor, err := s.UserCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			return nil, err
		}
		return users, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return res.([]models.User), nil
}

// GetUserByID fetches a single user. A malformed id behaves like a missing one.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var user models.User
	_, err = execute(s.Breaker, func() (interface{}, error) {
		return nil, s.UserCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// DeleteUser removes a user document.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}

	res, err := execute(s.Breaker, func() (interface{}, error) {
		return s.UserCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.(*mongo.DeleteResult).DeletedCount == 0 {
		return ErrUserNotFound
	}

	logging.Logger.Infof("Event ID: USER_DELETED, Description: Deleted user %s.", id)
	return nil
}
