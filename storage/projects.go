package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pairpilot/model"
)

// ProjectStore persists indexed projects. Rows are keyed on root_path.
type ProjectStore struct {
	db *DB
}

func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

const projectColumns = `id, name, root_path, last_indexed, COALESCE(structure_json, '')`

func scanProject(row interface{ Scan(...any) error }) (model.Project, error) {
	var (
		p       model.Project
		indexed string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.RootPath, &indexed, &p.StructureSnapshot); err != nil {
		return model.Project{}, err
	}
	p.LastIndexed = parseTime(indexed)
	return p, nil
}

// List returns every project ordered by name.
func (s *ProjectStore) List(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectStore) Get(ctx context.Context, id int64) (*model.Project, error) {
	row := s.db.conn.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return s.one(row, fmt.Sprintf("id %d", id))
}

func (s *ProjectStore) GetByRoot(ctx context.Context, rootPath string) (*model.Project, error) {
	row := s.db.conn.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE root_path = ?`, rootPath)
	return s.one(row, rootPath)
}

func (s *ProjectStore) one(row *sql.Row, key string) (*model.Project, error) {
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", key, err)
	}
	return &p, nil
}

// Upsert inserts or refreshes the project rooted at rootPath and returns the
// stored row.
func (s *ProjectStore) Upsert(ctx context.Context, name, rootPath, snapshot string, indexedAt time.Time) (*model.Project, error) {
	_, err := s.db.conn.ExecContext(ctx, `
	INSERT INTO projects (name, root_path, last_indexed, structure_json)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(root_path) DO UPDATE SET
		name = excluded.name,
		last_indexed = excluded.last_indexed,
		structure_json = excluded.structure_json
	`, name, rootPath, formatTime(indexedAt), snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert project %s: %w", rootPath, err)
	}
	return s.GetByRoot(ctx, rootPath)
}

// Delete removes a project. Insights keep their text with a NULL source.
func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
	}
	return nil
}
