package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

const (
	ExportVersion = "1.0"
	ExportTool    = "govdesign"
)

// ExportedProject is a project together with its canvas annotations.
type ExportedProject struct {
	Project
	Canvas cobit.CanvasInputs `json:"canvas,omitempty"`
}

// ExportBundle is the portable dump of saved work. A full export fills
// Projects (and Weights); a single project export fills Project.
type ExportBundle struct {
	Projects   []*ExportedProject     `json:"projects,omitempty"`
	Project    *ExportedProject       `json:"project,omitempty"`
	Weights    []*WeightConfiguration `json:"weights,omitempty"`
	ExportDate time.Time              `json:"exportDate"`
	Version    string                 `json:"version"`
	Tool       string                 `json:"tool"`
}

// ImportResult counts the records written by Import.
type ImportResult struct {
	Projects int `json:"projects"`
	Weights  int `json:"weights"`

	// ActiveReplaced is set when an imported record overwrote the
	// configuration that is currently active, so its snapshot is stale.
	ActiveReplaced *WeightConfiguration `json:"-"`
}

// Export dumps every project and weight configuration.
func Export(ctx context.Context, s Store, now time.Time) (*ExportBundle, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	b := &ExportBundle{
		Projects:   make([]*ExportedProject, 0, len(projects)),
		ExportDate: now.UTC(),
		Version:    ExportVersion,
		Tool:       ExportTool,
	}
	for _, p := range projects {
		ep, err := exportProject(ctx, s, p)
		if err != nil {
			return nil, err
		}
		b.Projects = append(b.Projects, ep)
	}

	configs, err := s.ListWeightConfigurations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list weight configurations: %w", err)
	}
	b.Weights = configs
	return b, nil
}

// ExportProject dumps a single project. It returns ErrNotFound when the
// project does not exist.
func ExportProject(ctx context.Context, s Store, id string, now time.Time) (*ExportBundle, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	ep, err := exportProject(ctx, s, p)
	if err != nil {
		return nil, err
	}
	return &ExportBundle{
		Project:    ep,
		ExportDate: now.UTC(),
		Version:    ExportVersion,
		Tool:       ExportTool,
	}, nil
}

func exportProject(ctx context.Context, s Store, p *Project) (*ExportedProject, error) {
	canvas, err := s.GetCanvas(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("get canvas of project %s: %w", p.ID, err)
	}
	ep := &ExportedProject{Project: *p}
	if len(canvas) > 0 {
		ep.Canvas = canvas
	}
	return ep, nil
}

// Import upserts every record of b by id. Imported weight configurations are
// never activated; activation stays an explicit administrative step.
func Import(ctx context.Context, s Store, b *ExportBundle) (ImportResult, error) {
	var res ImportResult
	if b == nil {
		return res, fmt.Errorf("empty import bundle")
	}

	projects := append([]*ExportedProject(nil), b.Projects...)
	if b.Project != nil {
		projects = append(projects, b.Project)
	}
	for i, ep := range projects {
		if ep == nil || ep.Name == "" {
			return res, fmt.Errorf("project %d: name required", i)
		}
		if err := ep.Canvas.Validate(); err != nil {
			return res, fmt.Errorf("import project %q: %w", ep.Name, err)
		}
		p := ep.Project
		if err := s.ImportProject(ctx, &p); err != nil {
			return res, fmt.Errorf("import project %q: %w", p.Name, err)
		}
		if len(ep.Canvas) > 0 {
			if err := s.SaveCanvas(ctx, p.ID, ep.Canvas); err != nil {
				return res, fmt.Errorf("import canvas of %q: %w", p.Name, err)
			}
		}
		res.Projects++
	}

	if len(b.Weights) == 0 {
		return res, nil
	}
	active, err := s.GetActiveWeightConfiguration(ctx)
	if err != nil {
		return res, fmt.Errorf("get active weight configuration: %w", err)
	}
	for i, c := range b.Weights {
		if c == nil || c.Name == "" {
			return res, fmt.Errorf("weight configuration %d: name required", i)
		}
		wc := *c
		if err := s.ImportWeightConfiguration(ctx, &wc); err != nil {
			return res, fmt.Errorf("import weight configuration %q: %w", wc.Name, err)
		}
		if active != nil && wc.ID == active.ID {
			wc.IsActive = true
			res.ActiveReplaced = &wc
		}
		res.Weights++
	}
	return res, nil
}
