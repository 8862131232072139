package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/KoltaG/thesis-pm-api/logging"
	"github.com/KoltaG/thesis-pm-api/models"
)

type TaskService struct {
	TasksCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
	Breaker            *gobreaker.CircuitBreaker
}

func NewTaskService(tasks, projects *mongo.Collection, breaker *gobreaker.CircuitBreaker) *TaskService {
	return &TaskService{
		TasksCollection:    tasks,
		ProjectsCollection: projects,
		Breaker:            breaker,
	}
}

// CreateTask persists a task under an existing project with status defaulted
// to "To Do". The task document is the only write; the project's task list is
// derived from projectId, so there is no parent index to keep in sync.
func (s *TaskService) CreateTask(ctx context.Context, projectID, name, description string, assignedUserID *string) (*models.Task, error) {
	projectObjectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}

	_, err = execute(s.Breaker, func() (interface{}, error) {
		return nil, s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectObjectID}).Err()
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		ProjectID:   projectObjectID,
		Status:      models.StatusToDo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if assignedUserID != nil && *assignedUserID != "" {
		userObjectID, err := primitive.ObjectIDFromHex(*assignedUserID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		task.AssignedUserID = &userObjectID
	}

	_, err = execute(s.Breaker, func() (interface{}, error) {
		return s.TasksCollection.InsertOne(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Created task %s in project %s.", task.ID.Hex(), projectID)
	return task, nil
}

// GetTasksByProject returns all tasks referencing the project id.
func (s *TaskService) GetTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	projectObjectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}

	res, err := execute(s.Breaker, func() (interface{}, error) {
		cursor, err := s.TasksCollection.Find(ctx, bson.M{"projectId": projectObjectID})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		tasks := []models.Task{}
		if err := cursor.All(ctx, &tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return res.([]models.Task), nil
}

// ChangeStatus sets a task's workflow status. Any status can move to any
// other; the workflow order is not enforced.
func (s *TaskService) ChangeStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.Task, error) {
	return s.updateTask(ctx, taskID, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}})
}

// AssignUser points the task's assignedUserId at the given user.
func (s *TaskService) AssignUser(ctx context.Context, taskID, userID string) (*models.Task, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.updateTask(ctx, taskID, bson.M{"$set": bson.M{
		"assignedUserId": userObjectID,
		"updatedAt":      time.Now().UTC(),
	}})
}

// UnassignUser clears the task's assignee.
func (s *TaskService) UnassignUser(ctx context.Context, taskID string) (*models.Task, error) {
	return s.updateTask(ctx, taskID, bson.M{
		"$unset": bson.M{"assignedUserId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
}

// DeleteTask removes the task document.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return ErrTaskNotFound
	}

	res, err := execute(s.Breaker, func() (interface{}, error) {
		return s.TasksCollection.DeleteOne(ctx, bson.M{"_id": taskObjectID})
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.(*mongo.DeleteResult).DeletedCount == 0 {
		return ErrTaskNotFound
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Deleted task %s.", taskID)
	return nil
}

// updateTask applies a single-field mutation after confirming the task exists
// and returns the updated document.
func (s *TaskService) updateTask(ctx context.Context, taskID string, update bson.M) (*models.Task, error) {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	res, err := execute(s.Breaker, func() (interface{}, error) {
		return s.TasksCollection.UpdateOne(ctx, bson.M{"_id": taskObjectID}, update)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if res.(*mongo.UpdateResult).MatchedCount == 0 {
		return nil, ErrTaskNotFound
	}

	var task models.Task
	_, err = execute(s.Breaker, func() (interface{}, error) {
		return nil, s.TasksCollection.FindOne(ctx, bson.M{"_id": taskObjectID}).Decode(&task)
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to fetch updated task: %w", err)
	}
	return &task, nil
}
