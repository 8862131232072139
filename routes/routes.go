package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KoltaG/thesis-pm-api/handlers"
	"github.com/KoltaG/thesis-pm-api/middleware"
	"github.com/KoltaG/thesis-pm-api/models"
	"github.com/KoltaG/thesis-pm-api/services"
)

// Role capability sets shared between the route table and the role gate. The
// gate and the registrations read the same declarations, so a route cannot
// drift from its policy.
var (
	managersOnly = []models.Role{models.RoleProjectManager}
	allRoles     = []models.Role{models.RoleProjectManager, models.RoleDeveloper}
)

// NewRouter binds every route to its auth gate, role gate and handler.
func NewRouter(
	jwtService *services.JWTService,
	userHandler *handlers.UserHandler,
	loginHandler *handlers.LoginHandler,
	projectHandler *handlers.ProjectHandler,
	taskHandler *handlers.TaskHandler,
) *mux.Router {
	r := mux.NewRouter()

	auth := middleware.Authenticate(jwtService)
	protected := func(h http.HandlerFunc, roles []models.Role) http.Handler {
		return auth(middleware.RequireRoles(roles...)(h))
	}

	r.HandleFunc("/healthz", handlers.Health).Methods(http.MethodGet)

	// Users
	r.HandleFunc("/users/register", userHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/users/login", loginHandler.Login).Methods(http.MethodPost)
	r.Handle("/users", protected(userHandler.GetUsers, allRoles)).Methods(http.MethodGet)
	r.Handle("/users/{id}", protected(userHandler.GetUserByID, managersOnly)).Methods(http.MethodGet)
	r.Handle("/users/{id}", protected(userHandler.DeleteUser, managersOnly)).Methods(http.MethodDelete)

	// Projects
	r.Handle("/projects", protected(projectHandler.GetProjects, allRoles)).Methods(http.MethodGet)
	r.Handle("/projects", protected(projectHandler.CreateProject, managersOnly)).Methods(http.MethodPost)
	r.Handle("/projects/delete/{id}", protected(projectHandler.DeleteProject, managersOnly)).Methods(http.MethodDelete)
	r.Handle("/projects/{projectId}/assign-user", protected(projectHandler.AssignUser, managersOnly)).Methods(http.MethodPost)
	r.Handle("/projects/{projectId}/unassign-user", protected(projectHandler.UnassignUser, managersOnly)).Methods(http.MethodPost)

	// Tasks
	r.Handle("/projects/{projectId}/tasks", protected(taskHandler.CreateTask, allRoles)).Methods(http.MethodPost)
	r.Handle("/projects/{projectId}/tasks", protected(taskHandler.GetTasksByProject, allRoles)).Methods(http.MethodGet)
	r.Handle("/tasks/{taskId}", protected(taskHandler.UpdateStatus, allRoles)).Methods(http.MethodPatch)
	r.Handle("/tasks/{taskId}/assign-user", protected(taskHandler.AssignUser, managersOnly)).Methods(http.MethodPost)
	r.Handle("/tasks/{taskId}/unassign-user", protected(taskHandler.UnassignUser, managersOnly)).Methods(http.MethodPost)
	r.Handle("/tasks/{taskId}", protected(taskHandler.DeleteTask, managersOnly)).Methods(http.MethodDelete)

	return r
}
