package handler

import (
	"net/http"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	svc *service.MemberService
}

func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// Invite godoc
// @Summary Add a user to a project
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body model.InviteMemberRequest true "Invitee email and role"
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /projects/{id}/members [post]
func (h *MemberHandler) Invite(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req model.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	if _, err := h.svc.Invite(c.Request.Context(), user, id, req); err != nil {
		writeServiceError(c, err, "email")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "member added"})
}

// List godoc
// @Summary List project members
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {array} model.MemberDto
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /projects/{id}/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := projectID(c)
	if !ok {
		return
	}

	members, err := h.svc.List(c.Request.Context(), user, id)
	if err != nil {
		writeServiceError(c, err, "id")
		return
	}
	c.JSON(http.StatusOK, members)
}

// UpdateRole godoc
// @Summary Change a member's role
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body model.UpdateMemberRequest true "Member email and new role"
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /projects/{id}/members [put]
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req model.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	if err := h.svc.UpdateRole(c.Request.Context(), user, id, req); err != nil {
		writeServiceError(c, err, "email")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "member updated"})
}

// Remove godoc
// @Summary Remove a member from a project
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body model.DeleteMemberRequest true "Member email"
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /projects/{id}/members [delete]
func (h *MemberHandler) Remove(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req model.DeleteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	if err := h.svc.Remove(c.Request.Context(), user, id, req); err != nil {
		writeServiceError(c, err, "email")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "member removed"})
}
