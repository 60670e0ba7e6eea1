package service

import (
	"context"
	"log"

	"github.com/eventbuddy/backend/internal/db"
	"github.com/eventbuddy/backend/internal/model"
	"github.com/google/uuid"
)

const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleMember = "member"
)

// MemberStore is the persistence collaborator for project membership.
type MemberStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)
	AddMember(ctx context.Context, m *model.ProjectMember) (*model.ProjectMember, error)
	GetMember(ctx context.Context, projectID uuid.UUID, userID int64) (*model.ProjectMember, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]model.MemberDto, error)
	UpdateMemberRole(ctx context.Context, projectID uuid.UUID, userID int64, role string) error
	RemoveMember(ctx context.Context, projectID uuid.UUID, userID int64) error
}

type MemberService struct {
	store  MemberStore
	mailer Mailer
}

func NewMemberService(store MemberStore, mailer Mailer) *MemberService {
	return &MemberService{store: store, mailer: mailer}
}

// Invite adds the user with the given email to the project. The invitation
// mail is best-effort; a failed send does not undo the membership.
func (s *MemberService) Invite(ctx context.Context, actor *model.User, projectID uuid.UUID, req model.InviteMemberRequest) (*model.ProjectMember, error) {
	project, err := s.ownedProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	invitee, err := s.store.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if invitee.ID == project.OwnerID {
		return nil, ErrDuplicateIdentity
	}
	if _, err := s.store.GetMember(ctx, projectID, invitee.ID); err == nil {
		return nil, ErrDuplicateIdentity
	} else if !db.IsNoRows(err) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = RoleMember
	}
	member, err := s.store.AddMember(ctx, &model.ProjectMember{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      role,
	})
	if err != nil {
		return nil, err
	}

	body := "<p>" + actor.Name + " added you to the project \"" + project.Name + "\" on EventBuddy.</p>"
	if err := s.mailer.Send(invitee.Email, "You were added to "+project.Name, body); err != nil {
		log.Printf("[members] invite mail to %s failed: %v", invitee.Email, err)
	}
	return member, nil
}

func (s *MemberService) List(ctx context.Context, actor *model.User, projectID uuid.UUID) ([]model.MemberDto, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if project.OwnerID != actor.ID {
		if _, err := s.store.GetMember(ctx, projectID, actor.ID); err != nil {
			if db.IsNoRows(err) {
				return nil, ErrForbidden
			}
			return nil, err
		}
	}
	return s.store.ListMembers(ctx, projectID)
}

func (s *MemberService) UpdateRole(ctx context.Context, actor *model.User, projectID uuid.UUID, req model.UpdateMemberRequest) error {
	if _, err := s.ownedProject(ctx, actor, projectID); err != nil {
		return err
	}
	user, err := s.store.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.store.UpdateMemberRole(ctx, projectID, user.ID, req.Role); err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *MemberService) Remove(ctx context.Context, actor *model.User, projectID uuid.UUID, req model.DeleteMemberRequest) error {
	if _, err := s.ownedProject(ctx, actor, projectID); err != nil {
		return err
	}
	user, err := s.store.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.store.RemoveMember(ctx, projectID, user.ID); err != nil {
		if db.IsNoRows(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *MemberService) ownedProject(ctx context.Context, actor *model.User, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if project.OwnerID != actor.ID {
		return nil, ErrForbidden
	}
	return project, nil
}
