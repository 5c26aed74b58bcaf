package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/interfaces"
	"github.com/secmon-lab/weeklydigest/pkg/domain/model"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

const (
	dataDir      = "data"
	summariesDir = "summaries"
)

// FileSystem implements Repository interface on a directory tree:
//
//	data/<week>/<project_key>.json
//	summaries/<week>.md
//	summaries/<week>.json
//
// The tree is meant to be committed to a version-controlled store.
type FileSystem struct {
	root string
}

// NewFileSystem creates a file system repository rooted at dir
func NewFileSystem(ctx context.Context, dir string) (interfaces.Repository, error) {
	if dir == "" {
		return nil, goerr.New("data directory is empty")
	}
	if err := os.MkdirAll(filepath.Join(dir, dataDir), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
	}

	ctxlog.From(ctx).Info("File system repository initialized", "root", dir)
	return &FileSystem{root: dir}, nil
}

func (f *FileSystem) submissionPath(week types.WeekEnding, key types.ProjectKey) string {
	return filepath.Join(f.root, filepath.FromSlash(model.SubmissionPath(week, key)))
}

// PutSubmission writes data/<week>/<key>.json, replacing any earlier file
func (f *FileSystem) PutSubmission(ctx context.Context, submission *model.Submission) error {
	week, err := validateSubmission(submission)
	if err != nil {
		return err
	}

	path := f.submissionPath(week, submission.ProjectKey)
	if err := writeJSON(path, submission); err != nil {
		return goerr.Wrap(err, "failed to save submission", goerr.V("path", path))
	}
	return nil
}

// GetSubmission reads data/<week>/<key>.json
func (f *FileSystem) GetSubmission(ctx context.Context, week types.WeekEnding, key types.ProjectKey) (*model.Submission, error) {
	if err := week.Validate(); err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	path := f.submissionPath(week, key)
	var sub model.Submission
	if err := readJSON(path, &sub); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(model.ErrSubmissionNotFound, "submission file not found", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read submission", goerr.V("path", path))
	}
	sub.ProjectKey = key
	return &sub, nil
}

// ListSubmissions reads every data/<week>/*.json ordered by file name.
// The project key is taken from the file name.
func (f *FileSystem) ListSubmissions(ctx context.Context, week types.WeekEnding) ([]*model.Submission, error) {
	if err := week.Validate(); err != nil {
		return nil, err
	}

	dir := filepath.Join(f.root, dataDir, week.String())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*model.Submission{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read week directory", goerr.V("dir", dir))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	subs := make([]*model.Submission, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		var sub model.Submission
		if err := readJSON(path, &sub); err != nil {
			return nil, goerr.Wrap(err, "invalid JSON in submission file", goerr.V("path", path))
		}
		// The file name decides presence, like the week directory decides the week
		key := types.ProjectKey(strings.TrimSuffix(name, ".json"))
		if sub.ProjectKey != "" && sub.ProjectKey != key {
			ctxlog.From(ctx).Warn("project_key in submission file differs from file name, using file name",
				"path", path, "project_key", sub.ProjectKey, "file_key", key)
		}
		sub.ProjectKey = key
		subs = append(subs, &sub)
	}
	return subs, nil
}

// PutReport writes summaries/<week>.md and summaries/<week>.json
func (f *FileSystem) PutReport(ctx context.Context, report *model.Report) error {
	week, err := validateReport(report)
	if err != nil {
		return err
	}

	base := filepath.Join(f.root, summariesDir, week.String())
	if err := writeFile(base+".md", []byte(report.Markdown())); err != nil {
		return goerr.Wrap(err, "failed to write summary markdown", goerr.V("week", week))
	}
	if err := writeJSON(base+".json", report); err != nil {
		return goerr.Wrap(err, "failed to write summary json", goerr.V("week", week))
	}
	return nil
}

// GetReport reads summaries/<week>.json
func (f *FileSystem) GetReport(ctx context.Context, week types.WeekEnding) (*model.Report, error) {
	if err := week.Validate(); err != nil {
		return nil, err
	}

	path := filepath.Join(f.root, summariesDir, week.String()+".json")
	var report model.Report
	if err := readJSON(path, &report); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(model.ErrReportNotFound, "summary file not found", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read summary", goerr.V("path", path))
	}
	return &report, nil
}

// Close is a no-op for file system repository
func (f *FileSystem) Close() error {
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

// writeFile replaces path atomically so readers never see a partial document
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
