package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/KoltaG/thesis-pm-api/logging"
	"github.com/KoltaG/thesis-pm-api/models"
)

var seedStatuses = []models.TaskStatus{
	models.StatusToDo,
	models.StatusInProgress,
	models.StatusDone,
}

var seedProjectNames = []string{
	"Apollo Migration",
	"Billing Revamp",
	"Customer Portal",
	"Data Warehouse",
	"Edge Rollout",
	"Fleet Tracker",
	"Gateway Hardening",
}

func randomDateSince(start time.Time) time.Time {
	delta := time.Since(start)
	return start.Add(time.Duration(rand.Int63n(int64(delta))))
}

// Seed wipes the three collections and loads demo data: two managers, six
// developers (shared password "password123"), seven projects with every user
// assigned, and 5-15 tasks per project.
func Seed(ctx context.Context, database *mongo.Database) error {
	users := database.Collection(UsersCollection)
	projects := database.Collection(ProjectsCollection)
	tasks := database.Collection(TasksCollection)

	for _, coll := range []*mongo.Collection{users, projects, tasks} {
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear %s: %w", coll.Name(), err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	var seedUsers []interface{}
	var userIDs []primitive.ObjectID
	for i := 1; i <= 2; i++ {
		u := models.User{
			ID:        primitive.NewObjectID(),
			Name:      fmt.Sprintf("John PM%d", i),
			Email:     fmt.Sprintf("john_pm%d@example.com", i),
			Password:  string(hashed),
			Role:      models.RoleProjectManager,
			CreatedAt: randomDateSince(start),
			UpdatedAt: randomDateSince(start),
		}
		seedUsers = append(seedUsers, u)
		userIDs = append(userIDs, u.ID)
	}
	for i := 1; i <= 6; i++ {
		u := models.User{
			ID:        primitive.NewObjectID(),
			Name:      fmt.Sprintf("John Dev%d", i),
			Email:     fmt.Sprintf("john_dev%d@example.com", i),
			Password:  string(hashed),
			Role:      models.RoleDeveloper,
			CreatedAt: randomDateSince(start),
			UpdatedAt: randomDateSince(start),
		}
		seedUsers = append(seedUsers, u)
		userIDs = append(userIDs, u.ID)
	}
	if _, err := users.InsertMany(ctx, seedUsers); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	var seedProjects []interface{}
	var projectIDs []primitive.ObjectID
	for _, name := range seedProjectNames {
		p := models.Project{
			ID:              primitive.NewObjectID(),
			Name:            fmt.Sprintf("Project %s", name),
			AssignedUserIDs: userIDs,
			CreatedAt:       randomDateSince(start),
			UpdatedAt:       randomDateSince(start),
		}
		seedProjects = append(seedProjects, p)
		projectIDs = append(projectIDs, p.ID)
	}
	if _, err := projects.InsertMany(ctx, seedProjects); err != nil {
		return fmt.Errorf("failed to seed projects: %w", err)
	}

	var seedTasks []interface{}
	for _, projectID := range projectIDs {
		count := 5 + rand.Intn(11)
		for i := 1; i <= count; i++ {
			t := models.Task{
				ID:        primitive.NewObjectID(),
				Name:      fmt.Sprintf("Task %d", i),
				ProjectID: projectID,
				Status:    seedStatuses[rand.Intn(len(seedStatuses))],
				CreatedAt: randomDateSince(start),
				UpdatedAt: randomDateSince(start),
			}
			if rand.Intn(2) == 0 {
				assignee := userIDs[rand.Intn(len(userIDs))]
				t.AssignedUserID = &assignee
			}
			seedTasks = append(seedTasks, t)
		}
	}
	if _, err := tasks.InsertMany(ctx, seedTasks); err != nil {
		return fmt.Errorf("failed to seed tasks: %w", err)
	}

	logging.Logger.Infof("Event ID: DB_SEEDED, Description: Seeded %d users, %d projects, %d tasks.", len(seedUsers), len(seedProjects), len(seedTasks))
	return nil
}
