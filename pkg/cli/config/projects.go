package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Projects holds the path of the required projects file
type Projects struct {
	File string
}

// Flags returns CLI flags for Projects configuration
func (p *Projects) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "projects",
			Usage:       "YAML file listing required projects, labels and pairs (built-in set if empty)",
			Sources:     cli.EnvVars("WEEKLYDIGEST_PROJECTS"),
			Destination: &p.File,
		},
	}
}

// Configure loads the projects file or falls back to the built-in set
func (p *Projects) Configure(ctx context.Context) (*model.ProjectsConfig, error) {
	if p.File == "" {
		ctxlog.From(ctx).Debug("No projects file given, using built-in project set")
		return model.DefaultProjects(), nil
	}
	return LoadProjectsFromFile(p.File)
}

// LogValue returns structured log value
func (p Projects) LogValue() slog.Value {
	return slog.GroupValue(slog.String("file", p.File))
}

// LoadProjectsFromFile loads projects from YAML file
func LoadProjectsFromFile(path string) (*model.ProjectsConfig, error) {
	if path == "" {
		return nil, goerr.New("projects file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "projects file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read projects file",
			goerr.V("path", path))
	}

	var cfg model.ProjectsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML projects file",
			goerr.V("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid projects file",
			goerr.V("path", path))
	}

	return &cfg, nil
}
