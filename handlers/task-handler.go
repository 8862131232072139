package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KoltaG/thesis-pm-api/logging"
	"github.com/KoltaG/thesis-pm-api/models"
	"github.com/KoltaG/thesis-pm-api/services"
)

type TaskHandler struct {
	Service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{Service: service}
}

type CreateTaskRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	AssignedUserID *string `json:"assignedUserId"`
}

type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// CreateTask adds a task under an existing project.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		jsonError(w, "Task name is required", http.StatusBadRequest)
		return
	}
	if len(req.Description) > models.MaxDescriptionLength {
		jsonError(w, "Description is too long", http.StatusBadRequest)
		return
	}

	task, err := h.Service.CreateTask(r.Context(), projectID, req.Name, req.Description, req.AssignedUserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProjectNotFound):
			jsonError(w, "Project not found", http.StatusNotFound)
		case errors.Is(err, services.ErrUserNotFound):
			jsonError(w, "User not found", http.StatusNotFound)
		default:
			logging.Logger.Errorf("Event ID: TASK_CREATE_FAILED, Description: Failed to create task in project %s: %v", projectID, err)
			jsonError(w, "Server Error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// GetTasksByProject lists the tasks referencing the project.
func (h *TaskHandler) GetTasksByProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	tasks, err := h.Service.GetTasksByProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			jsonError(w, "Project not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: TASK_LIST_FAILED, Description: Failed to fetch tasks for project %s: %v", projectID, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// UpdateStatus moves a task to the given workflow status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	var req UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if !req.Status.IsValid() {
		jsonError(w, "Invalid task status", http.StatusBadRequest)
		return
	}

	task, err := h.Service.ChangeStatus(r.Context(), taskID, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			jsonError(w, "Task not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: TASK_STATUS_FAILED, Description: Failed to update status of task %s: %v", taskID, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// AssignUser sets the task's assignee.
func (h *TaskHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	var req AssignUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	task, err := h.Service.AssignUser(r.Context(), taskID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			jsonError(w, "Task not found", http.StatusNotFound)
		case errors.Is(err, services.ErrUserNotFound):
			jsonError(w, "User not found", http.StatusNotFound)
		default:
			logging.Logger.Errorf("Event ID: TASK_ASSIGN_FAILED, Description: Failed to assign user to task %s: %v", taskID, err)
			jsonError(w, "Server Error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UnassignUser clears the task's assignee.
func (h *TaskHandler) UnassignUser(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	task, err := h.Service.UnassignUser(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			jsonError(w, "Task not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: TASK_UNASSIGN_FAILED, Description: Failed to unassign user from task %s: %v", taskID, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	if err := h.Service.DeleteTask(r.Context(), taskID); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			jsonError(w, "Task not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: TASK_DELETE_FAILED, Description: Failed to delete task %s: %v", taskID, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}
