package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Storage selects where submissions and reports are persisted.
// Firestore wins over the data directory, memory is the fallback.
type Storage struct {
	FirestoreProjectID  string
	FirestoreDatabaseID string
	DataDir             string
}

// Flags returns CLI flags for Storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore project ID",
			Category:    "Storage",
			Sources:     cli.EnvVars("WEEKLYDIGEST_FIRESTORE_PROJECT_ID"),
			Destination: &s.FirestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Category:    "Storage",
			Value:       "(default)",
			Sources:     cli.EnvVars("WEEKLYDIGEST_FIRESTORE_DATABASE_ID"),
			Destination: &s.FirestoreDatabaseID,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory holding data/<week>/<project>.json and summaries/<week>.md",
			Category:    "Storage",
			Sources:     cli.EnvVars("WEEKLYDIGEST_DATA_DIR"),
			Destination: &s.DataDir,
		},
	}
}

// Configure creates the repository
func (s *Storage) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch {
	case s.FirestoreProjectID != "":
		repo, err := repository.NewFirestore(ctx, s.FirestoreProjectID, s.FirestoreDatabaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure firestore repository",
				goerr.V("project_id", s.FirestoreProjectID),
				goerr.V("database_id", s.FirestoreDatabaseID))
		}
		return repo, nil

	case s.DataDir != "":
		repo, err := repository.NewFileSystem(ctx, s.DataDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure file system repository")
		}
		return repo, nil

	default:
		ctxlog.From(ctx).Warn("No storage configured, submissions are kept in memory only")
		return repository.NewMemory(), nil
	}
}

// LogValue returns structured log value
func (s Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("firestore_project_id", s.FirestoreProjectID),
		slog.String("firestore_database_id", s.FirestoreDatabaseID),
		slog.String("data_dir", s.DataDir),
	)
}
