package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID
	OwnerID     int64
	Name        string
	Description string
	EventDate   *time.Time
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectMember struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	UserID    int64
	Role      string
	InvitedAt time.Time
}

type ProjectDto struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     int64      `json:"ownerId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	EventDate   *time.Time `json:"eventDate,omitempty"`
	Archived    bool       `json:"archived"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func NewProjectDto(p *Project) ProjectDto {
	return ProjectDto{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		EventDate:   p.EventDate,
		Archived:    p.Archived,
		CreatedAt:   p.CreatedAt,
	}
}

// MemberDto joins the membership row with the member's user profile.
type MemberDto struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	InvitedAt time.Time `json:"invitedAt"`
}

type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	EventDate   *time.Time `json:"eventDate"`
}

type UpdateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	EventDate   *time.Time `json:"eventDate"`
	Archived    *bool      `json:"archived"`
}

// ProjectFilter narrows and orders the project listing.
type ProjectFilter struct {
	Name     string
	Archived *bool
	SortBy   string
	Desc     bool
}

type InviteMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UpdateMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type DeleteMemberRequest struct {
	Email string `json:"email"`
}
