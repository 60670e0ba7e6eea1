package db

import (
	"context"
	"fmt"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/google/uuid"
)

const projectColumns = `id, owner_id, name, description, event_date, archived, created_at, updated_at`

func (db *Postgres) CreateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	query := `
		INSERT INTO projects (id, owner_id, name, description, event_date, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		RETURNING ` + projectColumns
	var out model.Project
	err := db.Pool.QueryRow(ctx, query, p.ID, p.OwnerID, p.Name, p.Description, p.EventDate).Scan(
		&out.ID, &out.OwnerID, &out.Name, &out.Description, &out.EventDate,
		&out.Archived, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (db *Postgres) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	var p model.Project
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.EventDate,
		&p.Archived, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns projects the user owns or is a member of, optionally
// filtered by name substring and archived state.
func (db *Postgres) ListProjects(ctx context.Context, userID int64, filter model.ProjectFilter) ([]model.Project, error) {
	query := `
		SELECT DISTINCT p.id, p.owner_id, p.name, p.description, p.event_date, p.archived, p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN project_members m ON m.project_id = p.id
		WHERE (p.owner_id = $1 OR m.user_id = $1)
	`
	args := []any{userID}

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		query += fmt.Sprintf(" AND p.name ILIKE $%d", len(args))
	}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		query += fmt.Sprintf(" AND p.archived = $%d", len(args))
	}

	query += " ORDER BY " + projectSortColumn(filter.SortBy)
	if filter.Desc {
		query += " DESC"
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.EventDate,
			&p.Archived, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if list == nil {
		list = []model.Project{}
	}
	return list, rows.Err()
}

func (db *Postgres) UpdateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	query := `
		UPDATE projects
		SET name = $2, description = $3, event_date = $4, archived = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns
	var out model.Project
	err := db.Pool.QueryRow(ctx, query, p.ID, p.Name, p.Description, p.EventDate, p.Archived).Scan(
		&out.ID, &out.OwnerID, &out.Name, &out.Description, &out.EventDate,
		&out.Archived, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (db *Postgres) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

// projectSortColumn maps a caller-supplied sort key to a known column.
// Anything unrecognized falls back to creation time.
func projectSortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "p.name"
	case "eventDate":
		return "p.event_date"
	default:
		return "p.created_at"
	}
}
