package service

import (
	"context"
	"strings"

	"github.com/eventbuddy/backend/internal/db"
	"github.com/eventbuddy/backend/internal/model"
	"github.com/google/uuid"
)

// ProjectStore is the persistence collaborator for project CRUD.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *model.Project) (*model.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListProjects(ctx context.Context, userID int64, filter model.ProjectFilter) ([]model.Project, error)
	UpdateProject(ctx context.Context, p *model.Project) (*model.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	GetMember(ctx context.Context, projectID uuid.UUID, userID int64) (*model.ProjectMember, error)
}

type ProjectService struct {
	store ProjectStore
}

func NewProjectService(store ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

func (s *ProjectService) Create(ctx context.Context, owner *model.User, req model.CreateProjectRequest) (*model.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	return s.store.CreateProject(ctx, &model.Project{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		Name:        name,
		Description: req.Description,
		EventDate:   req.EventDate,
	})
}

func (s *ProjectService) List(ctx context.Context, user *model.User, filter model.ProjectFilter) ([]model.Project, error) {
	return s.store.ListProjects(ctx, user.ID, filter)
}

// Get returns the project if the user owns it or is a member.
func (s *ProjectService) Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.authorize(ctx, user, project, false); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, user *model.User, id uuid.UUID, req model.UpdateProjectRequest) (*model.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.authorize(ctx, user, project, true); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		project.Name = name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.EventDate != nil {
		project.EventDate = req.EventDate
	}
	if req.Archived != nil {
		project.Archived = *req.Archived
	}
	return s.store.UpdateProject(ctx, project)
}

func (s *ProjectService) Delete(ctx context.Context, user *model.User, id uuid.UUID) error {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	if project.OwnerID != user.ID {
		return ErrForbidden
	}
	return s.store.DeleteProject(ctx, id)
}

// authorize checks ownership, or membership when ownerOnly is false.
func (s *ProjectService) authorize(ctx context.Context, user *model.User, project *model.Project, ownerOnly bool) error {
	if project.OwnerID == user.ID {
		return nil
	}
	if ownerOnly {
		return ErrForbidden
	}
	if _, err := s.store.GetMember(ctx, project.ID, user.ID); err != nil {
		if db.IsNoRows(err) {
			return ErrForbidden
		}
		return err
	}
	return nil
}
