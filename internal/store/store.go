package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

// ProjectVersion is the record format version written with every project.
const ProjectVersion = "1.0"

var ErrNotFound = errors.New("not found")

// Project is a named, saved set of design factor inputs.
type Project struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Inputs      cobit.UserInputs `json:"inputs"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Version     string           `json:"version"`
}

// WeightConfiguration is an administrator-edited set of weight matrices.
// At most one configuration is active at a time.
type WeightConfiguration struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Mappings    weights.Mappings `json:"mappings"`
	IsActive    bool             `json:"isActive"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type Store interface {
	// Projects. Gets return nil, nil when the row does not exist; mutations
	// of a missing row return ErrNotFound.
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id string) error
	ImportProject(ctx context.Context, p *Project) error

	// Canvas annotations are kept beside the project, never inside its inputs.
	GetCanvas(ctx context.Context, projectID string) (cobit.CanvasInputs, error)
	SaveCanvas(ctx context.Context, projectID string, c cobit.CanvasInputs) error

	// Weight configurations
	CreateWeightConfiguration(ctx context.Context, c *WeightConfiguration) error
	GetWeightConfiguration(ctx context.Context, id string) (*WeightConfiguration, error)
	ListWeightConfigurations(ctx context.Context) ([]*WeightConfiguration, error)
	UpdateWeightConfiguration(ctx context.Context, c *WeightConfiguration) error
	DeleteWeightConfiguration(ctx context.Context, id string) error
	ImportWeightConfiguration(ctx context.Context, c *WeightConfiguration) error
	ActivateWeightConfiguration(ctx context.Context, id string) error
	DeactivateWeightConfigurations(ctx context.Context) error
	GetActiveWeightConfiguration(ctx context.Context) (*WeightConfiguration, error)

	Close() error
}

// prepareProject fills the fields a store assigns on create.
func prepareProject(p *Project, now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Inputs == nil {
		p.Inputs = cobit.UserInputs{}
	}
	if p.Version == "" {
		p.Version = ProjectVersion
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}

// prepareImport keeps imported timestamps and fills only what is missing.
func prepareImport(p *Project, now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Inputs == nil {
		p.Inputs = cobit.UserInputs{}
	}
	if p.Version == "" {
		p.Version = ProjectVersion
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
}

func prepareWeightConfiguration(c *WeightConfiguration, now time.Time) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Mappings == nil {
		c.Mappings = weights.Mappings{}
	}
	c.CreatedAt = now
	c.UpdatedAt = now
}

func prepareWeightImport(c *WeightConfiguration, now time.Time) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Mappings == nil {
		c.Mappings = weights.Mappings{}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
}

// WeightSource adapts a Store to the weight store's configuration source.
func WeightSource(s Store) weights.ConfigSource {
	return weightSource{s: s}
}

type weightSource struct {
	s Store
}

func (w weightSource) ActiveConfiguration(ctx context.Context) (*weights.ActiveConfig, error) {
	c, err := w.s.GetActiveWeightConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	return &weights.ActiveConfig{ID: c.ID, Name: c.Name, Mappings: c.Mappings}, nil
}
