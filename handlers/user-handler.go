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

type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Register creates a new user. The response never carries the password field.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		jsonError(w, "Name, email and password are required", http.StatusBadRequest)
		return
	}
	if !req.Role.IsValid() {
		jsonError(w, "Invalid role", http.StatusBadRequest)
		return
	}

	user, err := h.Service.Register(r.Context(), models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			jsonError(w, "User already exists", http.StatusBadRequest)
			return
		}
		logging.Logger.Errorf("Event ID: USER_REGISTER_FAILED, Description: Failed to register user: %v", err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetUsers lists every registered user.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		logging.Logger.Errorf("Event ID: USER_LIST_FAILED, Description: Failed to fetch users: %v", err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUserByID returns a single user by id.
func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.Service.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			jsonError(w, "User not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: USER_FETCH_FAILED, Description: Failed to fetch user %s: %v", id, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			jsonError(w, "User not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: USER_DELETE_FAILED, Description: Failed to delete user %s: %v", id, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
