package reader

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"dbloada/internal/fsys"
	"dbloada/internal/project"
	"dbloada/internal/table"
	"dbloada/internal/textenc"
)

// FileReader reads .csv files relative to the project directory.
type FileReader struct {
	fs     fsys.FileSystem
	parser Parser
	logger *slog.Logger
}

func NewFileReader(fs fsys.FileSystem, parser Parser, logger *slog.Logger) *FileReader {
	return &FileReader{fs: fs, parser: parser, logger: logger}
}

func (r *FileReader) Name() string { return "csv" }

func (r *FileReader) CanRead(spec project.TableSpec) bool {
	src, ok := spec.Source.(project.FileSource)
	return ok && strings.HasSuffix(strings.ToLower(src.Filename), ".csv")
}

func (r *FileReader) Read(_ context.Context, spec project.TableSpec, projectDir string) (*table.Table, error) {
	src, ok := spec.Source.(project.FileSource)
	if !ok {
		return nil, readErrorf(spec.Name, nil, "csv reader does not support %T sources", spec.Source)
	}

	path := filepath.Join(projectDir, src.Filename)
	r.logger.Debug("reading csv file", "table", spec.Name, "path", path,
		"hasHeader", spec.HasHeader, "encoding", src.CharacterEncoding)

	raw, err := r.fs.ReadBytes(path)
	if err != nil {
		return nil, readErrorf(spec.Name, err, "%v", err)
	}
	text, err := textenc.Decode(raw, src.CharacterEncoding)
	if err != nil {
		return nil, readErrorf(spec.Name, err, "%v", err)
	}
	return r.parser.Parse(text, spec)
}
