// Package loader turns a project directory into a fully materialized
// project: every declared table read from its source, in declaration order.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"dbloada/internal/fsys"
	"dbloada/internal/project"
	"dbloada/internal/table"
)

type DirectoryNotFoundError struct {
	Path string
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("directory not found: %s", e.Path)
}

type ProjectFileNotFoundError struct {
	Path string
}

func (e *ProjectFileNotFoundError) Error() string {
	return fmt.Sprintf("project file not found: %s", e.Path)
}

// TableReader is satisfied by reader.Dispatch.
type TableReader interface {
	Read(ctx context.Context, spec project.TableSpec, projectDir string) (*table.Table, error)
}

type Loader struct {
	fs     fsys.FileSystem
	store  project.Store
	reader TableReader
	logger *slog.Logger

	// Progress, when set, is called after each table is materialized.
	Progress func(*table.Table)
}

func New(fs fsys.FileSystem, store project.Store, reader TableReader, logger *slog.Logger) *Loader {
	return &Loader{fs: fs, store: store, reader: reader, logger: logger}
}

// Load reads dir/dbloada.yaml and materializes every table. The first
// failure aborts the load and no partial project is returned.
func (l *Loader) Load(ctx context.Context, dir string) (*project.LoadedProject, error) {
	l.logger.Debug("loading project directory", "dir", dir)

	p, err := l.Project(dir)
	if err != nil {
		return nil, err
	}
	return l.Materialize(ctx, dir, p)
}

// Materialize reads every table of p, whose sources are relative to dir.
// The first failure aborts and no partial project is returned.
func (l *Loader) Materialize(ctx context.Context, dir string, p *project.Project) (*project.LoadedProject, error) {
	tables := make([]*table.Table, 0, len(p.Tables))
	for _, spec := range p.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := l.reader.Read(ctx, spec, dir)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		if l.Progress != nil {
			l.Progress(t)
		}
	}

	l.logger.Info("loaded project", "project", p.Name, "dir", dir, "tables", len(tables))
	return &project.LoadedProject{Project: p, Tables: tables}, nil
}

// Project reads dir/dbloada.yaml without materializing any table.
func (l *Loader) Project(dir string) (*project.Project, error) {
	if !l.fs.IsDir(dir) {
		return nil, &DirectoryNotFoundError{Path: dir}
	}
	path := filepath.Join(dir, project.FileName)
	if !l.fs.Exists(path) {
		return nil, &ProjectFileNotFoundError{Path: path}
	}
	return l.store.Load(path)
}
