package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"golang.org/x/crypto/bcrypt"

	"github.com/KoltaG/thesis-pm-api/models"
)

const usersNS = "pm_test.users"

func newUserService(mt *mtest.T) *UserService {
	return NewUserService(mt.Client.Database("pm_test").Collection("users"), nil)
}

func userDoc(id primitive.ObjectID, email, password string, role models.Role) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "John Doe"},
		{Key: "email", Value: email},
		{Key: "password", Value: password},
		{Key: "role", Value: string(role)},
		{Key: "createdAt", Value: time.Now().UTC()},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}
}

func TestUserService_Register(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("hashes the password before storing", func(mt *mtest.T) {
		svc := newUserService(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		user, err := svc.Register(context.Background(), models.User{
			Name:     "John Doe",
			Email:    "john@example.com",
			Password: "password123",
			Role:     models.RoleDeveloper,
		})
		require.NoError(t, err)
		assert.False(t, user.ID.IsZero())
		assert.NotEqual(t, "password123", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))

		// The insert command must carry the hash, never the plaintext.
		findEvt := mt.GetStartedEvent()
		require.Equal(t, "find", findEvt.CommandName)
		insertEvt := mt.GetStartedEvent()
		require.Equal(t, "insert", insertEvt.CommandName)
		docs, err := insertEvt.Command.Lookup("documents").Array().Values()
		require.NoError(t, err)
		stored := docs[0].Document().Lookup("password").StringValue()
		assert.NotEqual(t, "password123", stored)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("password123")))
	})

	mt.Run("rejects duplicate email", func(mt *mtest.T) {
		svc := newUserService(mt)
		existing := userDoc(primitive.NewObjectID(), "john@example.com", "irrelevant", models.RoleDeveloper)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, existing))

		_, err := svc.Register(context.Background(), models.User{
			Name:     "John Doe",
			Email:    "john@example.com",
			Password: "password123",
			Role:     models.RoleDeveloper,
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	mt.Run("maps a duplicate key race to the same conflict", func(mt *mtest.T) {
		svc := newUserService(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "duplicate key error",
			}),
		)

		_, err := svc.Register(context.Background(), models.User{
			Name:     "John Doe",
			Email:    "john@example.com",
			Password: "password123",
			Role:     models.RoleDeveloper,
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	mt.Run("valid credentials", func(mt *mtest.T) {
		svc := newUserService(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			userDoc(id, "john@example.com", string(hashed), models.RoleProjectManager)))

		user, err := svc.Authenticate(context.Background(), "john@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, models.RoleProjectManager, user.Role)
	})

	mt.Run("wrong password", func(mt *mtest.T) {
		svc := newUserService(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "john@example.com", string(hashed), models.RoleProjectManager)))

		_, err := svc.Authenticate(context.Background(), "john@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	mt.Run("unknown email yields the same error", func(mt *mtest.T) {
		svc := newUserService(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_GetUserByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		svc := newUserService(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			userDoc(id, "john@example.com", "hash", models.RoleDeveloper)))

		user, err := svc.GetUserByID(context.Background(), id.Hex())
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})

	mt.Run("missing", func(mt *mtest.T) {
		svc := newUserService(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := svc.GetUserByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	mt.Run("malformed id behaves like missing", func(mt *mtest.T) {
		svc := newUserService(mt)

		_, err := svc.GetUserByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deletes an existing user", func(mt *mtest.T) {
		svc := newUserService(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := svc.DeleteUser(context.Background(), primitive.NewObjectID().Hex())
		assert.NoError(t, err)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		svc := newUserService(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := svc.DeleteUser(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
