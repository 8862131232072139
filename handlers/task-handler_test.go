package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/KoltaG/thesis-pm-api/models"
	"github.com/KoltaG/thesis-pm-api/services"
)

const projectsNS = "pm_test.projects"

func newTaskHandler(mt *mtest.T) *TaskHandler {
	database := mt.Client.Database("pm_test")
	svc := services.NewTaskService(database.Collection("tasks"), database.Collection("projects"), nil)
	return NewTaskHandler(svc)
}

func projectDoc(id primitive.ObjectID, name string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "assignedUserIds", Value: bson.A{}},
	}
}

func TestTaskHandler_CreateTask(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	projectID := primitive.NewObjectID()

	mt.Run("201 with status defaulted", func(mt *mtest.T) {
		h := newTaskHandler(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, projectsNS, mtest.FirstBatch, projectDoc(projectID, "Apollo")),
			mtest.CreateSuccessResponse(),
		)

		req := postJSON(t, "/projects/"+projectID.Hex()+"/tasks", CreateTaskRequest{Name: "Wire telemetry"})
		req = mux.SetURLVars(req, map[string]string{"projectId": projectID.Hex()})
		rec := httptest.NewRecorder()
		h.CreateTask(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), string(models.StatusToDo))
	})

	mt.Run("404 when the project does not exist", func(mt *mtest.T) {
		h := newTaskHandler(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, projectsNS, mtest.FirstBatch))

		req := postJSON(t, "/projects/"+projectID.Hex()+"/tasks", CreateTaskRequest{Name: "Wire telemetry"})
		req = mux.SetURLVars(req, map[string]string{"projectId": projectID.Hex()})
		rec := httptest.NewRecorder()
		h.CreateTask(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Project not found")
	})

	mt.Run("400 on an oversized description", func(mt *mtest.T) {
		h := newTaskHandler(mt)

		req := postJSON(t, "/projects/"+projectID.Hex()+"/tasks", CreateTaskRequest{
			Name:        "Wire telemetry",
			Description: strings.Repeat("x", models.MaxDescriptionLength+1),
		})
		req = mux.SetURLVars(req, map[string]string{"projectId": projectID.Hex()})
		rec := httptest.NewRecorder()
		h.CreateTask(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandler_UpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	taskID := primitive.NewObjectID()

	mt.Run("400 on a status outside the enumeration", func(mt *mtest.T) {
		h := newTaskHandler(mt)

		req := postJSON(t, "/tasks/"+taskID.Hex(), UpdateTaskStatusRequest{Status: models.TaskStatus("Archived")})
		req = mux.SetURLVars(req, map[string]string{"taskId": taskID.Hex()})
		rec := httptest.NewRecorder()
		h.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	mt.Run("404 on a missing task", func(mt *mtest.T) {
		h := newTaskHandler(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		req := postJSON(t, "/tasks/"+taskID.Hex(), UpdateTaskStatusRequest{Status: models.StatusDone})
		req = mux.SetURLVars(req, map[string]string{"taskId": taskID.Hex()})
		rec := httptest.NewRecorder()
		h.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProjectHandler_AssignUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	projectID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	newProjectHandler := func(mt *mtest.T) *ProjectHandler {
		database := mt.Client.Database("pm_test")
		svc := services.NewProjectService(
			database.Collection("projects"),
			database.Collection("tasks"),
			database.Collection("users"),
			nil,
		)
		return NewProjectHandler(svc)
	}

	mt.Run("400 when the user is already assigned", func(mt *mtest.T) {
		h := newProjectHandler(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
				userDoc(userID, "dev@example.com", "hash", models.RoleDeveloper)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}),
		)

		req := postJSON(t, "/projects/"+projectID.Hex()+"/assign-user", AssignUserRequest{UserID: userID.Hex()})
		req = mux.SetURLVars(req, map[string]string{"projectId": projectID.Hex()})
		rec := httptest.NewRecorder()
		h.AssignUser(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "already assigned")
	})

	mt.Run("404 when the user does not exist", func(mt *mtest.T) {
		h := newProjectHandler(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		req := postJSON(t, "/projects/"+projectID.Hex()+"/assign-user", AssignUserRequest{UserID: userID.Hex()})
		req = mux.SetURLVars(req, map[string]string{"projectId": projectID.Hex()})
		rec := httptest.NewRecorder()
		h.AssignUser(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "User not found")
	})
}
