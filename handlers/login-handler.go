package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KoltaG/thesis-pm-api/logging"
	"github.com/KoltaG/thesis-pm-api/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type LoginHandler struct {
	UserService *services.UserService
	JWTService  *services.JWTService
}

func NewLoginHandler(userService *services.UserService, jwtService *services.JWTService) *LoginHandler {
	return &LoginHandler{UserService: userService, JWTService: jwtService}
}

// Login authenticates the email/password pair and issues a token scoped to
// the user's id and role. Unknown email and wrong password produce the same
// response.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Failed login attempt for %s", req.Email)
			jsonError(w, "Invalid credentials", http.StatusBadRequest)
			return
		}
		logging.Logger.Errorf("Event ID: LOGIN_ERROR, Description: Login failed for %s: %v", req.Email, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}

	token, err := h.JWTService.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		logging.Logger.Errorf("Event ID: TOKEN_ISSUE_FAILED, Description: Failed to issue token for %s: %v", req.Email, err)
		jsonError(w, "Server Error", http.StatusInternalServerError)
		return
	}

	logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s logged in.", req.Email)
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}
