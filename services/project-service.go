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

type ProjectService struct {
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	UsersCollection    *mongo.Collection
	Breaker            *gobreaker.CircuitBreaker
}

func NewProjectService(projects, tasks, users *mongo.Collection, breaker *gobreaker.CircuitBreaker) *ProjectService {
	return &ProjectService{
		ProjectsCollection: projects,
		TasksCollection:    tasks,
		UsersCollection:    users,
		Breaker:            breaker,
	}
}

// CreateProject inserts a new project with an empty assigned-user set.
func (s *ProjectService) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	now := time.Now().UTC()
	project := &models.Project{
		ID:              primitive.NewObjectID(),
		Name:            name,
		AssignedUserIDs: []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := execute(s.Breaker, func() (interface{}, error) {
		return s.ProjectsCollection.InsertOne(ctx, project)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Created project %s (%s).", project.Name, project.ID.Hex())
	return project, nil
}

// DeleteProject removes a project and all tasks that reference it.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProjectNotFound
	}

	res, err := execute(s.Breaker, func() (interface{}, error) {
		return s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if res.(*mongo.DeleteResult).DeletedCount == 0 {
		return ErrProjectNotFound
	}

	// Tasks reference the project by projectId, so the cascade is a single
	// filtered delete.
	_, err = execute(s.Breaker, func() (interface{}, error) {
		return s.TasksCollection.DeleteMany(ctx, bson.M{"projectId": objectID})
	})
	if err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Deleted project %s and its tasks.", id)
	return nil
}

// GetProjectsForUser returns the projects visible to the identity: managers
// see every project, developers only the ones whose assigned set contains
// them. Each project is enriched with its tasks and each task's assignee.
func (s *ProjectService) GetProjectsForUser(ctx context.Context, claims *Claims) ([]models.ProjectWithTasks, error) {
	filter := bson.M{}
	if claims.Role == models.RoleDeveloper {
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		filter = bson.M{"assignedUserIds": userID}
	}

	res, err := execute(s.Breaker, func() (interface{}, error) {
		cursor, err := s.ProjectsCollection.Find(ctx, filter)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var projects []models.Project
		if err := cursor.All(ctx, &projects); err != nil {
			return nil, err
		}
		return projects, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	projects := res.([]models.Project)

	enriched := make([]models.ProjectWithTasks, 0, len(projects))
	for _, project := range projects {
		tasks, err := s.tasksWithAssignees(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, models.ProjectWithTasks{Project: project, Tasks: tasks})
	}
	return enriched, nil
}

// tasksWithAssignees resolves a project's tasks and joins each assigned user
// in a single follow-up lookup.
func (s *ProjectService) tasksWithAssignees(ctx context.Context, projectID primitive.ObjectID) ([]models.TaskWithAssignee, error) {
	res, err := execute(s.Breaker, func() (interface{}, error) {
		cursor, err := s.TasksCollection.Find(ctx, bson.M{"projectId": projectID})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var tasks []models.Task
		if err := cursor.All(ctx, &tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project tasks: %w", err)
	}
	tasks := res.([]models.Task)

	var assigneeIDs []primitive.ObjectID
	for _, task := range tasks {
		if task.AssignedUserID != nil {
			assigneeIDs = append(assigneeIDs, *task.AssignedUserID)
		}
	}

	usersByID := map[primitive.ObjectID]models.User{}
	if len(assigneeIDs) > 0 {
		res, err := execute(s.Breaker, func() (interface{}, error) {
			cursor, err := s.UsersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": assigneeIDs}})
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
			return nil, fmt.Errorf("failed to fetch task assignees: %w", err)
		}
		for _, user := range res.([]models.User) {
			usersByID[user.ID] = user
		}
	}

	enriched := make([]models.TaskWithAssignee, 0, len(tasks))
	for _, task := range tasks {
		t := models.TaskWithAssignee{Task: task}
		if task.AssignedUserID != nil {
			if user, ok := usersByID[*task.AssignedUserID]; ok {
				u := user
				t.AssignedUser = &u
			}
		}
		enriched = append(enriched, t)
	}
	return enriched, nil
}

// AssignUser adds a user to the project's assigned set. The $addToSet update
// is atomic, so a concurrent duplicate assign cannot slip past the check; a
// no-op update means the user was already a member.
func (s *ProjectService) AssignUser(ctx context.Context, projectID, userID string) (*models.Project, error) {
	projectObjectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	_, err = execute(s.Breaker, func() (interface{}, error) {
		return nil, s.UsersCollection.FindOne(ctx, bson.M{"_id": userObjectID}).Err()
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	// Plain $addToSet so that ModifiedCount == 0 can only mean the member was
	// already present. The update is atomic; there is no check-then-act window.
	res, err := execute(s.Breaker, func() (interface{}, error) {
		return s.ProjectsCollection.UpdateOne(ctx,
			bson.M{"_id": projectObjectID},
			bson.M{"$addToSet": bson.M{"assignedUserIds": userObjectID}})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign user: %w", err)
	}
	result := res.(*mongo.UpdateResult)
	if result.MatchedCount == 0 {
		return nil, ErrProjectNotFound
	}
	if result.ModifiedCount == 0 {
		return nil, ErrAlreadyAssigned
	}

	logging.Logger.Infof("Event ID: PROJECT_USER_ASSIGNED, Description: Assigned user %s to project %s.", userID, projectID)
	return s.getProject(ctx, projectObjectID)
}

// UnassignUser removes a user from the project's assigned set. Removing an
// absent member is a no-op, not an error.
func (s *ProjectService) UnassignUser(ctx context.Context, projectID, userID string) (*models.Project, error) {
	projectObjectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	res, err := execute(s.Breaker, func() (interface{}, error) {
		return s.ProjectsCollection.UpdateOne(ctx,
			bson.M{"_id": projectObjectID},
			bson.M{"$pull": bson.M{"assignedUserIds": userObjectID}})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unassign user: %w", err)
	}
	if res.(*mongo.UpdateResult).MatchedCount == 0 {
		return nil, ErrProjectNotFound
	}

	logging.Logger.Infof("Event ID: PROJECT_USER_UNASSIGNED, Description: Unassigned user %s from project %s.", userID, projectID)
	return s.getProject(ctx, projectObjectID)
}

func (s *ProjectService) getProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	_, err := execute(s.Breaker, func() (interface{}, error) {
		return nil, s.ProjectsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	return &project, nil
}
