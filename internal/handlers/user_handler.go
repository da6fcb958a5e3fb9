package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"absensi/internal/services"
)

type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Position string `json:"position"`
	Role     string `json:"role" binding:"omitempty,oneof=employee admin"`
}

type updateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Position string `json:"position"`
	Role     string `json:"role" binding:"omitempty,oneof=employee admin"`
}

type passwordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// @Summary      List users (admin)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.User
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, "users", "list", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Create user (admin)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User"
// @Success      201   {object}  models.User
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.service.Create(c.Request.Context(), services.CreateUserInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Position: req.Position, Role: req.Role,
	})
	if err != nil {
		respondError(c, "users", "create", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Get user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.User
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	user, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "users", "get", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Update user (admin)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields"
// @Success      200   {object}  models.User
// @Router       /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.service.Update(c.Request.Context(), id, services.UpdateUserInput(req))
	if err != nil {
		respondError(c, "users", "update", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Delete user (admin)
// @Tags         Users
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  map[string]string
// @Router       /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	callerID, _ := getUserAndRole(c)
	if id == callerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "users", "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// @Summary      Reset user password (admin)
// @Tags         Users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int              true  "User ID"
// @Param        body  body  passwordRequest  true  "New password"
// @Success      200   {object}  map[string]string
// @Router       /api/users/{id}/reset-password [put]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), id, req.NewPassword); err != nil {
		respondError(c, "users", "reset-password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}

// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	user, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "users", "me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Update own profile
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateUserRequest  true  "Fields (role is ignored)"
// @Success      200   {object}  map[string]interface{}
// @Router       /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)
	user, err := h.service.UpdateProfile(c.Request.Context(), userID, services.UpdateUserInput{
		Name: req.Name, Email: req.Email, Position: req.Position,
	})
	if err != nil {
		respondError(c, "users", "profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

// @Summary      Change own password
// @Tags         Users
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  changePasswordRequest  true  "Passwords"
// @Success      200   {object}  map[string]string
// @Router       /api/users/profile/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)
	if err := h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, "users", "change-password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
