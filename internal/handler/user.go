package handler

import (
	"log"
	"net/http"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserDto
// @Failure 401 {object} model.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, model.NewUserDto(user))
}

// UpdateMe godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpdateUserRequest true "Profile fields"
// @Success 200 {object} model.UserDto
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	updated, err := h.svc.UpdateProfile(c.Request.Context(), user, req)
	if err != nil {
		writeServiceError(c, err, "name")
		return
	}
	c.JSON(http.StatusOK, model.NewUserDto(updated))
}

// DeleteMe godoc
// @Summary Delete the current user's account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	log.Printf("[users] deleting account %s", user.Email)

	if err := h.svc.DeleteUser(c.Request.Context(), user); err != nil {
		writeServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "account deleted"})
}

// List godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UserDto
// @Failure 401 {object} model.ErrorResponse
// @Router /users/ [get]
func (h *UserHandler) List(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, users)
}

// UploadAvatar godoc
// @Summary Upload an avatar image
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} model.AvatarResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /user/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "avatar file is required", Field: "avatar"})
		return
	}

	url, err := h.svc.UploadAvatar(c.Request.Context(), user, file)
	if err != nil {
		writeServiceError(c, err, "avatar")
		return
	}
	c.JSON(http.StatusOK, model.AvatarResponse{AvatarURL: url})
}
