// Package scaffold creates new project directories.
package scaffold

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"dbloada/internal/fsys"
	"dbloada/internal/project"
)

// DefaultSeed makes `init` produce the same sample data on every run.
const DefaultSeed int64 = 20240917

type DirectoryNotFoundError struct {
	Path string
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("directory does not exist: %s", e.Path)
}

type DirectoryNotEmptyError struct {
	Path string
}

func (e *DirectoryNotEmptyError) Error() string {
	return fmt.Sprintf("directory is not empty: %s (use --force to override)", e.Path)
}

type InvalidDirectoryNameError struct {
	Path string
}

func (e *InvalidDirectoryNameError) Error() string {
	return fmt.Sprintf("failed to derive project name from path: %s", e.Path)
}

type Scaffolder struct {
	fs     fsys.FileSystem
	store  project.Store
	logger *slog.Logger
	seed   int64
}

func New(fs fsys.FileSystem, store project.Store, logger *slog.Logger) *Scaffolder {
	return &Scaffolder{fs: fs, store: store, logger: logger, seed: DefaultSeed}
}

// WithSeed changes the seed used for the sample data.
func (s *Scaffolder) WithSeed(seed int64) *Scaffolder {
	s.seed = seed
	return s
}

// Init writes dbloada.yaml and the sample data files into dir. An empty
// name is derived from the directory's base name.
func (s *Scaffolder) Init(dir, name string, force bool) error {
	s.logger.Debug("initializing project", "dir", dir, "name", name, "force", force)

	if !s.fs.IsDir(dir) {
		return &DirectoryNotFoundError{Path: dir}
	}
	if !force {
		empty, err := s.fs.IsEmptyDir(dir)
		if err != nil {
			return err
		}
		if !empty {
			return &DirectoryNotEmptyError{Path: dir}
		}
	}

	name, err := resolveName(dir, name)
	if err != nil {
		return err
	}

	sample, err := GenerateSample(s.seed)
	if err != nil {
		return err
	}
	for rel, content := range sample.Files {
		if err := s.fs.Save(string(content), filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return err
		}
	}

	p := &project.Project{Name: name, APIVersion: project.APIVersion, Tables: sample.Tables}
	if err := s.store.Save(p, filepath.Join(dir, project.FileName)); err != nil {
		return err
	}

	s.logger.Info("initialized project", "project", name, "dir", dir, "tables", len(p.Tables))
	return nil
}

func resolveName(dir, name string) (string, error) {
	if name != "" {
		if err := ValidateResourceName(name); err != nil {
			return "", err
		}
		return name, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &InvalidDirectoryNameError{Path: dir}
	}
	base := filepath.Base(abs)
	if base == string(filepath.Separator) || base == "." {
		return "", &InvalidDirectoryNameError{Path: dir}
	}

	sanitized := SanitizeResourceName(base)
	if err := ValidateResourceName(sanitized); err != nil {
		return "", err
	}
	return sanitized, nil
}
