package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS govdesign_projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		inputs      JSONB NOT NULL DEFAULT '{}',
		canvas      JSONB NOT NULL DEFAULT '{}',
		version     TEXT NOT NULL DEFAULT '1.0',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS govdesign_weight_configurations (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		mappings    JSONB NOT NULL DEFAULT '{}',
		is_active   BOOLEAN NOT NULL DEFAULT false,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS govdesign_weight_configurations_active
		ON govdesign_weight_configurations (is_active) WHERE is_active`,
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

const projectColumns = `id, name, description, inputs, version, created_at, updated_at`

func (s *PostgresStore) CreateProject(ctx context.Context, p *Project) error {
	prepareProject(p, time.Now().UTC())
	inputsJSON, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO govdesign_projects (id, name, description, inputs, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Description, inputsJSON, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) ImportProject(ctx context.Context, p *Project) error {
	prepareImport(p, time.Now().UTC())
	inputsJSON, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO govdesign_projects (id, name, description, inputs, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, inputs = EXCLUDED.inputs,
			version = EXCLUDED.version, updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Description, inputsJSON, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM govdesign_projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+projectColumns+` FROM govdesign_projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateProject(ctx context.Context, p *Project) error {
	if p.Inputs == nil {
		p.Inputs = cobit.UserInputs{}
	}
	inputsJSON, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("encode inputs: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	err = s.pool.QueryRow(ctx, `
		UPDATE govdesign_projects SET name = $2, description = $3, inputs = $4, updated_at = $5
		WHERE id = $1
		RETURNING version, created_at`,
		p.ID, p.Name, p.Description, inputsJSON, p.UpdatedAt,
	).Scan(&p.Version, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM govdesign_projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetCanvas(ctx context.Context, projectID string) (cobit.CanvasInputs, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT canvas FROM govdesign_projects WHERE id = $1`, projectID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c := cobit.CanvasInputs{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode canvas: %w", err)
		}
	}
	return c, nil
}

func (s *PostgresStore) SaveCanvas(ctx context.Context, projectID string, c cobit.CanvasInputs) error {
	if c == nil {
		c = cobit.CanvasInputs{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE govdesign_projects SET canvas = $2 WHERE id = $1`, projectID, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const weightColumns = `id, name, description, mappings, is_active, created_at, updated_at`

func (s *PostgresStore) CreateWeightConfiguration(ctx context.Context, c *WeightConfiguration) error {
	prepareWeightConfiguration(c, time.Now().UTC())
	mappingsJSON, err := json.Marshal(c.Mappings)
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}
	// Activation goes through ActivateWeightConfiguration.
	c.IsActive = false
	_, err = s.pool.Exec(ctx, `
		INSERT INTO govdesign_weight_configurations (id, name, description, mappings, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, $5, $6)`,
		c.ID, c.Name, c.Description, mappingsJSON, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) ImportWeightConfiguration(ctx context.Context, c *WeightConfiguration) error {
	prepareWeightImport(c, time.Now().UTC())
	mappingsJSON, err := json.Marshal(c.Mappings)
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}
	c.IsActive = false
	_, err = s.pool.Exec(ctx, `
		INSERT INTO govdesign_weight_configurations (id, name, description, mappings, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			mappings = EXCLUDED.mappings, updated_at = EXCLUDED.updated_at`,
		c.ID, c.Name, c.Description, mappingsJSON, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetWeightConfiguration(ctx context.Context, id string) (*WeightConfiguration, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+weightColumns+` FROM govdesign_weight_configurations WHERE id = $1`, id)
	c, err := scanWeightConfiguration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *PostgresStore) GetActiveWeightConfiguration(ctx context.Context) (*WeightConfiguration, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+weightColumns+` FROM govdesign_weight_configurations WHERE is_active`)
	c, err := scanWeightConfiguration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *PostgresStore) ListWeightConfigurations(ctx context.Context) ([]*WeightConfiguration, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+weightColumns+` FROM govdesign_weight_configurations ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*WeightConfiguration
	for rows.Next() {
		c, err := scanWeightConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateWeightConfiguration(ctx context.Context, c *WeightConfiguration) error {
	mappingsJSON, err := json.Marshal(c.Mappings)
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}
	c.UpdatedAt = time.Now().UTC()
	err = s.pool.QueryRow(ctx, `
		UPDATE govdesign_weight_configurations SET name = $2, description = $3, mappings = $4, updated_at = $5
		WHERE id = $1
		RETURNING is_active, created_at`,
		c.ID, c.Name, c.Description, mappingsJSON, c.UpdatedAt,
	).Scan(&c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) DeleteWeightConfiguration(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM govdesign_weight_configurations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ActivateWeightConfiguration(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `UPDATE govdesign_weight_configurations SET is_active = false WHERE is_active AND id <> $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE govdesign_weight_configurations SET is_active = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) DeactivateWeightConfigurations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `UPDATE govdesign_weight_configurations SET is_active = false WHERE is_active`)
	return err
}

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	var inputsJSON []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &inputsJSON, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Inputs = cobit.UserInputs{}
	if len(inputsJSON) > 0 {
		if err := json.Unmarshal(inputsJSON, &p.Inputs); err != nil {
			return nil, fmt.Errorf("decode inputs of project %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func scanWeightConfiguration(row pgx.Row) (*WeightConfiguration, error) {
	c := &WeightConfiguration{}
	var mappingsJSON []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &mappingsJSON, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(mappingsJSON) > 0 {
		if err := json.Unmarshal(mappingsJSON, &c.Mappings); err != nil {
			return nil, fmt.Errorf("decode mappings of configuration %s: %w", c.ID, err)
		}
	}
	return c, nil
}
