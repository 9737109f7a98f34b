package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ukydev/repair-desk/internal/apierror"
	"github.com/ukydev/repair-desk/internal/auth"
	"github.com/ukydev/repair-desk/internal/db"
	"github.com/ukydev/repair-desk/internal/models"
)

// UserHandler handles user administration requests
type UserHandler struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *auth.Service, userCollection db.UserCollection) *UserHandler {
	return &UserHandler{
		authService: authService,
		users:       userCollection,
	}
}

// List handles GET /users with an optional role filter, e.g.
// GET /users?role=technician for the assignment picker.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	if role != "" && !models.IsValidRole(role) {
		apierror.Write(w, apierror.BadRequest("Invalid role"))
		return
	}

	users, err := h.users.FindUsers(r.Context(), role)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Create handles POST /users. Unlike self-registration this is reserved
// for admins and managers provisioning accounts.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("Invalid JSON"))
		return
	}

	if err := h.authService.ValidateName(req.Name); err != nil {
		apierror.Write(w, apierror.BadRequest(err.Error()))
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		apierror.Write(w, apierror.BadRequest(err.Error()))
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		apierror.Write(w, apierror.BadRequest(err.Error()))
		return
	}
	if !models.IsValidRole(req.Role) {
		apierror.Write(w, apierror.BadRequest("Invalid role"))
		return
	}

	if _, err := h.users.FindUserByEmail(r.Context(), req.Email); err == nil {
		apierror.Write(w, apierror.New(http.StatusConflict, "Email already exists"))
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	created, err := h.users.InsertUser(r.Context(), models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: hash,
		Role:     req.Role,
		Skills:   req.Skills,
	})
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
