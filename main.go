package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/KoltaG/thesis-pm-api/config"
	"github.com/KoltaG/thesis-pm-api/db"
	"github.com/KoltaG/thesis-pm-api/handlers"
	"github.com/KoltaG/thesis-pm-api/logging"
	"github.com/KoltaG/thesis-pm-api/routes"
	"github.com/KoltaG/thesis-pm-api/services"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	seed := flag.Bool("seed", false, "wipe the database and load demo data, then exit")
	flag.Parse()

	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting PM API...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Info("Event ID: ENV_FILE_MISSING, Description: .env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}

	ctx := context.Background()
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	database := client.Database(cfg.MongoDBName)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: Failed to create indexes: %v", err)
	}

	if *seed {
		if err := db.Seed(ctx, database); err != nil {
			logging.Logger.Fatalf("Event ID: DB_SEED_FAILED, Description: Seeding failed: %v", err)
		}
		logging.Logger.Info("Event ID: DB_SEED_DONE, Description: Seeding finished, exiting.")
		return
	}

	users := database.Collection(db.UsersCollection)
	projects := database.Collection(db.ProjectsCollection)
	tasks := database.Collection(db.TasksCollection)

	breaker := db.NewStoreBreaker("mongo-store")

	jwtService := services.NewJWTService(cfg.JWTSecret)
	userService := services.NewUserService(users, breaker)
	projectService := services.NewProjectService(projects, tasks, users, breaker)
	taskService := services.NewTaskService(tasks, projects, breaker)

	userHandler := handlers.NewUserHandler(userService)
	loginHandler := handlers.NewLoginHandler(userService, jwtService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	router := routes.NewRouter(jwtService, userHandler, loginHandler, projectHandler, taskHandler)

	serverAddress := fmt.Sprintf(":%s", cfg.ServerPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, enableCORS(router)); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
