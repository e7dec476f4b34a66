package store

import (
	"context"
)

const createProjectSQL = `
INSERT INTO projects (name, brand_name, competitor_names, created_by)
VALUES ($1, $2, $3, $4)
RETURNING id, name, brand_name, competitor_names, status, created_by, created_at, updated_at;
`

type CreateProjectParams struct {
	Name            string
	BrandName       string
	CompetitorNames []string
	CreatedBy       int64
}

func (q *Queries) CreateProject(ctx context.Context, params CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, createProjectSQL,
		params.Name,
		params.BrandName,
		params.CompetitorNames,
		params.CreatedBy,
	)
	var p Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.BrandName,
		&p.CompetitorNames,
		&p.Status,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const getProjectSQL = `
SELECT id, name, brand_name, competitor_names, status, created_by, created_at, updated_at
FROM projects
WHERE id = $1;
`

func (q *Queries) GetProject(ctx context.Context, id int64) (Project, error) {
	row := q.db.QueryRow(ctx, getProjectSQL, id)
	var p Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.BrandName,
		&p.CompetitorNames,
		&p.Status,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const listProjectsForUserSQL = `
SELECT p.id, p.name, p.brand_name, p.competitor_names, p.status, p.created_by, p.created_at, p.updated_at
FROM projects p
JOIN project_members m ON m.project_id = p.id
WHERE m.user_id = $1
ORDER BY p.created_at DESC;
`

func (q *Queries) ListProjectsForUser(ctx context.Context, userID int64) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsForUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.BrandName,
			&p.CompetitorNames,
			&p.Status,
			&p.CreatedBy,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const updateProjectSQL = `
UPDATE projects
SET name             = $2,
    brand_name       = $3,
    competitor_names = $4,
    updated_at       = now()
WHERE id = $1
RETURNING id, name, brand_name, competitor_names, status, created_by, created_at, updated_at;
`

type UpdateProjectParams struct {
	ID              int64
	Name            string
	BrandName       string
	CompetitorNames []string
}

func (q *Queries) UpdateProject(ctx context.Context, params UpdateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, updateProjectSQL,
		params.ID,
		params.Name,
		params.BrandName,
		params.CompetitorNames,
	)
	var p Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.BrandName,
		&p.CompetitorNames,
		&p.Status,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const setProjectStatusSQL = `
UPDATE projects
SET status = $2, updated_at = now()
WHERE id = $1;
`

func (q *Queries) SetProjectStatus(ctx context.Context, id int64, status string) error {
	_, err := q.db.Exec(ctx, setProjectStatusSQL, id, status)
	return err
}

// DeleteProject removes the project row. Members, sources, records, runs,
// reports and topics go with it through the cascading foreign keys.
const deleteProjectSQL = `
DELETE FROM projects
WHERE id = $1;
`

func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteProjectSQL, id)
	return err
}

const addProjectMemberSQL = `
INSERT INTO project_members (project_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role
RETURNING project_id, user_id, role, created_at;
`

type AddProjectMemberParams struct {
	ProjectID int64
	UserID    int64
	Role      string
}

func (q *Queries) AddProjectMember(ctx context.Context, params AddProjectMemberParams) (ProjectMember, error) {
	row := q.db.QueryRow(ctx, addProjectMemberSQL, params.ProjectID, params.UserID, params.Role)
	var m ProjectMember
	err := row.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}

const removeProjectMemberSQL = `
DELETE FROM project_members
WHERE project_id = $1 AND user_id = $2;
`

func (q *Queries) RemoveProjectMember(ctx context.Context, projectID int64, userID int64) error {
	_, err := q.db.Exec(ctx, removeProjectMemberSQL, projectID, userID)
	return err
}

const listProjectMembersSQL = `
SELECT project_id, user_id, role, created_at
FROM project_members
WHERE project_id = $1
ORDER BY created_at;
`

func (q *Queries) ListProjectMembers(ctx context.Context, projectID int64) ([]ProjectMember, error) {
	rows, err := q.db.Query(ctx, listProjectMembersSQL, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []ProjectMember
	for rows.Next() {
		var m ProjectMember
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

const isProjectMemberSQL = `
SELECT count(*)
FROM project_members
WHERE project_id = $1 AND user_id = $2;
`

func (q *Queries) IsProjectMember(ctx context.Context, projectID int64, userID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, isProjectMemberSQL, projectID, userID).Scan(&count)
	return count, err
}
