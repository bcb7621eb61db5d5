package project

import (
	"log/slog"

	"dbloada/internal/fsys"
)

// Store loads and saves project documents.
type Store interface {
	Load(path string) (*Project, error)
	Save(p *Project, path string) error
}

type YAMLStore struct {
	fs     fsys.FileSystem
	logger *slog.Logger
}

func NewYAMLStore(fs fsys.FileSystem, logger *slog.Logger) *YAMLStore {
	return &YAMLStore{fs: fs, logger: logger}
}

func (s *YAMLStore) Load(path string) (*Project, error) {
	s.logger.Debug("loading project", "path", path)
	content, err := s.fs.ReadText(path)
	if err != nil {
		return nil, err
	}
	p, err := Deserialize(content)
	if err != nil {
		return nil, err
	}
	s.logger.Info("loaded project", "project", p.Name, "path", path, "tables", len(p.Tables))
	return p, nil
}

func (s *YAMLStore) Save(p *Project, path string) error {
	s.logger.Debug("saving project", "project", p.Name, "path", path)
	content, err := Serialize(p)
	if err != nil {
		return err
	}
	if err := s.fs.Save(content, path); err != nil {
		return err
	}
	s.logger.Info("saved project", "project", p.Name, "path", path)
	return nil
}

var _ Store = (*YAMLStore)(nil)
