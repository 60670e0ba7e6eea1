package db

import (
	"context"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (db *Postgres) AddMember(ctx context.Context, m *model.ProjectMember) (*model.ProjectMember, error) {
	query := `
		INSERT INTO project_members (id, project_id, user_id, role, invited_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, project_id, user_id, role, invited_at
	`
	var out model.ProjectMember
	err := db.Pool.QueryRow(ctx, query, m.ID, m.ProjectID, m.UserID, m.Role).Scan(
		&out.ID, &out.ProjectID, &out.UserID, &out.Role, &out.InvitedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (db *Postgres) GetMember(ctx context.Context, projectID uuid.UUID, userID int64) (*model.ProjectMember, error) {
	query := `
		SELECT id, project_id, user_id, role, invited_at
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`
	var m model.ProjectMember
	err := db.Pool.QueryRow(ctx, query, projectID, userID).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.InvitedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMembers joins each membership with the member's profile fields.
func (db *Postgres) ListMembers(ctx context.Context, projectID uuid.UUID) ([]model.MemberDto, error) {
	query := `
		SELECT m.id, m.user_id, u.email, u.name, m.role, m.invited_at
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY m.invited_at
	`
	rows, err := db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.MemberDto
	for rows.Next() {
		var m model.MemberDto
		if err := rows.Scan(&m.ID, &m.UserID, &m.Email, &m.Name, &m.Role, &m.InvitedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	if list == nil {
		list = []model.MemberDto{}
	}
	return list, rows.Err()
}

func (db *Postgres) UpdateMemberRole(ctx context.Context, projectID uuid.UUID, userID int64, role string) error {
	query := `UPDATE project_members SET role = $3 WHERE project_id = $1 AND user_id = $2`
	tag, err := db.Pool.Exec(ctx, query, projectID, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (db *Postgres) RemoveMember(ctx context.Context, projectID uuid.UUID, userID int64) error {
	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`
	tag, err := db.Pool.Exec(ctx, query, projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
