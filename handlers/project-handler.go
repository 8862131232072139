package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KoltaG/thesis-pm-api/logging"
	"github.com/KoltaG/thesis-pm-api/middleware"
	"github.com/KoltaG/thesis-pm-api/services"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type AssignUserRequest struct {
	UserID string `json:"userId"`
}

// GetProjects lists the projects visible to the caller: managers see all,
// developers only the projects they are assigned to.
func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		jsonError(w, "Unauthorized: No user information found", http.StatusUnauthorized)
		return
	}

	projects, err := h.Service.GetProjectsForUser(r.Context(), claims)
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_LIST_FAILED, Description: Failed to fetch projects for user %s: %v", claims.UserID, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// CreateProject adds a new project with an empty assigned-user set.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		jsonError(w, "Project name is required", http.StatusBadRequest)
		return
	}

	project, err := h.Service.CreateProject(r.Context(), req.Name)
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_CREATE_FAILED, Description: Failed to create project: %v", err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// DeleteProject removes a project and its tasks.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteProject(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			jsonError(w, "Project not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: PROJECT_DELETE_FAILED, Description: Failed to delete project %s: %v", id, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted"})
}

// AssignUser adds a user to the project's assigned set. Assigning an already
// assigned user is a 400.
func (h *ProjectHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	var req AssignUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	project, err := h.Service.AssignUser(r.Context(), projectID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProjectNotFound):
			jsonError(w, "Project not found", http.StatusNotFound)
		case errors.Is(err, services.ErrUserNotFound):
			jsonError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, services.ErrAlreadyAssigned):
			jsonError(w, "User is already assigned to this project", http.StatusBadRequest)
		default:
			logging.Logger.Errorf("Event ID: PROJECT_ASSIGN_FAILED, Description: Failed to assign user %s to project %s: %v", req.UserID, projectID, err)
			jsonError(w, "Server Error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// UnassignUser removes a user from the project's assigned set. Removing a
// user who is not assigned succeeds and changes nothing.
func (h *ProjectHandler) UnassignUser(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	var req AssignUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	project, err := h.Service.UnassignUser(r.Context(), projectID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProjectNotFound):
			jsonError(w, "Project not found", http.StatusNotFound)
		case errors.Is(err, services.ErrUserNotFound):
			jsonError(w, "User not found", http.StatusNotFound)
		default:
			logging.Logger.Errorf("Event ID: PROJECT_UNASSIGN_FAILED, Description: Failed to unassign user %s from project %s: %v", req.UserID, projectID, err)
			jsonError(w, "Server Error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, project)
}
