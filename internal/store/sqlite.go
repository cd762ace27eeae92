package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps projects and weight configurations in a local SQLite
// file, for single-user installs without Postgres.
type SQLiteStore struct {
	Path string
	db   *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{Path: absPath, db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	inputs_json TEXT NOT NULL DEFAULT '{}',
	canvas_json TEXT NOT NULL DEFAULT '{}',
	version TEXT NOT NULL DEFAULT '1.0',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS weight_configurations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	mappings_json TEXT NOT NULL DEFAULT '{}',
	is_active INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(updated_at);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create sqlite schema: %w", err)
	}
	return nil
}

// sqliteTime is fixed width so that text ordering matches time ordering.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTime)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p *Project) error {
	prepareProject(p, time.Now().UTC())
	return s.insertProject(ctx, p, false)
}

func (s *SQLiteStore) ImportProject(ctx context.Context, p *Project) error {
	prepareImport(p, time.Now().UTC())
	return s.insertProject(ctx, p, true)
}

func (s *SQLiteStore) insertProject(ctx context.Context, p *Project, upsert bool) error {
	inputsJSON, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	query := `INSERT INTO projects (id, name, description, inputs_json, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += `
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name, description = excluded.description, inputs_json = excluded.inputs_json,
	version = excluded.version, updated_at = excluded.updated_at`
	}
	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, string(inputsJSON), p.Version, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

const sqliteProjectColumns = `id, name, description, inputs_json, version, created_at, updated_at`

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteProjectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanSQLiteProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteProjectColumns+` FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p, err := scanSQLiteProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, p *Project) error {
	if p.Inputs == nil {
		p.Inputs = cobit.UserInputs{}
	}
	inputsJSON, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, inputs_json = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, string(inputsJSON), formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	var version, created string
	if err := s.db.QueryRowContext(ctx, `SELECT version, created_at FROM projects WHERE id = ?`, p.ID).Scan(&version, &created); err != nil {
		return fmt.Errorf("reload project: %w", err)
	}
	p.Version = version
	if p.CreatedAt, err = parseTime(created); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) GetCanvas(ctx context.Context, projectID string) (cobit.CanvasInputs, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT canvas_json FROM projects WHERE id = ?`, projectID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get canvas: %w", err)
	}
	c := cobit.CanvasInputs{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode canvas: %w", err)
		}
	}
	return c, nil
}

func (s *SQLiteStore) SaveCanvas(ctx context.Context, projectID string, c cobit.CanvasInputs) error {
	if c == nil {
		c = cobit.CanvasInputs{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET canvas_json = ? WHERE id = ?`, string(raw), projectID)
	if err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) CreateWeightConfiguration(ctx context.Context, c *WeightConfiguration) error {
	prepareWeightConfiguration(c, time.Now().UTC())
	c.IsActive = false
	return s.insertWeightConfiguration(ctx, c, false)
}

func (s *SQLiteStore) ImportWeightConfiguration(ctx context.Context, c *WeightConfiguration) error {
	prepareWeightImport(c, time.Now().UTC())
	c.IsActive = false
	return s.insertWeightConfiguration(ctx, c, true)
}

func (s *SQLiteStore) insertWeightConfiguration(ctx context.Context, c *WeightConfiguration, upsert bool) error {
	mappingsJSON, err := json.Marshal(c.Mappings)
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}
	query := `INSERT INTO weight_configurations (id, name, description, mappings_json, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, 0, ?, ?)`
	if upsert {
		query += `
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name, description = excluded.description,
	mappings_json = excluded.mappings_json, updated_at = excluded.updated_at`
	}
	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Description, string(mappingsJSON), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert weight configuration: %w", err)
	}
	return nil
}

const sqliteWeightColumns = `id, name, description, mappings_json, is_active, created_at, updated_at`

func (s *SQLiteStore) GetWeightConfiguration(ctx context.Context, id string) (*WeightConfiguration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteWeightColumns+` FROM weight_configurations WHERE id = ?`, id)
	c, err := scanSQLiteWeightConfiguration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *SQLiteStore) GetActiveWeightConfiguration(ctx context.Context) (*WeightConfiguration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteWeightColumns+` FROM weight_configurations WHERE is_active = 1 LIMIT 1`)
	c, err := scanSQLiteWeightConfiguration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *SQLiteStore) ListWeightConfigurations(ctx context.Context) ([]*WeightConfiguration, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteWeightColumns+` FROM weight_configurations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list weight configurations: %w", err)
	}
	defer rows.Close()

	var out []*WeightConfiguration
	for rows.Next() {
		c, err := scanSQLiteWeightConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateWeightConfiguration(ctx context.Context, c *WeightConfiguration) error {
	mappingsJSON, err := json.Marshal(c.Mappings)
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}
	c.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE weight_configurations SET name = ?, description = ?, mappings_json = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Description, string(mappingsJSON), formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update weight configuration: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	var active int
	var created string
	if err := s.db.QueryRowContext(ctx, `SELECT is_active, created_at FROM weight_configurations WHERE id = ?`, c.ID).Scan(&active, &created); err != nil {
		return fmt.Errorf("reload weight configuration: %w", err)
	}
	c.IsActive = active != 0
	if c.CreatedAt, err = parseTime(created); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteWeightConfiguration(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM weight_configurations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete weight configuration: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) ActivateWeightConfiguration(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE weight_configurations SET is_active = 0 WHERE is_active = 1 AND id <> ?`, id); err != nil {
		return fmt.Errorf("deactivate weight configurations: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE weight_configurations SET is_active = 1, updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("activate weight configuration: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) DeactivateWeightConfigurations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE weight_configurations SET is_active = 0 WHERE is_active = 1`); err != nil {
		return fmt.Errorf("deactivate weight configurations: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProject(row rowScanner) (*Project, error) {
	p := &Project{}
	var inputsJSON, created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &inputsJSON, &p.Version, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at of project %s: %w", p.ID, err)
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at of project %s: %w", p.ID, err)
	}
	p.Inputs = cobit.UserInputs{}
	if inputsJSON != "" {
		if err := json.Unmarshal([]byte(inputsJSON), &p.Inputs); err != nil {
			return nil, fmt.Errorf("decode inputs of project %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func scanSQLiteWeightConfiguration(row rowScanner) (*WeightConfiguration, error) {
	c := &WeightConfiguration{}
	var mappingsJSON, created, updated string
	var active int
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &mappingsJSON, &active, &created, &updated); err != nil {
		return nil, err
	}
	c.IsActive = active != 0
	var err error
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse created_at of configuration %s: %w", c.ID, err)
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at of configuration %s: %w", c.ID, err)
	}
	if mappingsJSON != "" {
		if err := json.Unmarshal([]byte(mappingsJSON), &c.Mappings); err != nil {
			return nil, fmt.Errorf("decode mappings of configuration %s: %w", c.ID, err)
		}
	}
	return c, nil
}
