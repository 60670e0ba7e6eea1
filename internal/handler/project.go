package handler

import (
	"net/http"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateProjectRequest true "Project fields"
// @Success 200 {object} model.ProjectDto
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req model.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	project, err := h.svc.Create(c.Request.Context(), user, req)
	if err != nil {
		writeServiceError(c, err, "name")
		return
	}
	c.JSON(http.StatusOK, model.NewProjectDto(project))
}

// List godoc
// @Summary List projects the user owns or belongs to
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param name query string false "Filter by name substring"
// @Param archived query bool false "Filter by archived state"
// @Param sortBy query string false "Sort key: name, eventDate, createdAt"
// @Param desc query bool false "Sort descending"
// @Success 200 {array} model.ProjectDto
// @Failure 401 {object} model.ErrorResponse
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	filter := model.ProjectFilter{
		Name:   c.Query("name"),
		SortBy: c.Query("sortBy"),
		Desc:   c.Query("desc") == "true",
	}
	if archived := c.Query("archived"); archived != "" {
		value := archived == "true"
		filter.Archived = &value
	}

	projects, err := h.svc.List(c.Request.Context(), user, filter)
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	dtos := make([]model.ProjectDto, 0, len(projects))
	for i := range projects {
		dtos = append(dtos, model.NewProjectDto(&projects[i]))
	}
	c.JSON(http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} model.ProjectDto
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := projectID(c)
	if !ok {
		return
	}

	project, err := h.svc.Get(c.Request.Context(), user, id)
	if err != nil {
		writeServiceError(c, err, "id")
		return
	}
	c.JSON(http.StatusOK, model.NewProjectDto(project))
}

// Update godoc
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body model.UpdateProjectRequest true "Fields to update"
// @Success 200 {object} model.ProjectDto
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req model.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	project, err := h.svc.Update(c.Request.Context(), user, id, req)
	if err != nil {
		writeServiceError(c, err, "id")
		return
	}
	c.JSON(http.StatusOK, model.NewProjectDto(project))
}

// Delete godoc
// @Summary Delete a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := projectID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), user, id); err != nil {
		writeServiceError(c, err, "id")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "project deleted"})
}

func projectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid project id", Field: "id"})
		return uuid.Nil, false
	}
	return id, true
}
