package reader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dbloada/internal/project"
	"dbloada/internal/table"
	"dbloada/internal/textenc"

	"github.com/google/uuid"
)

// TempPathToken is replaced in command arguments by the generated temp file
// path. It is plain text, not an environment variable.
const TempPathToken = "$TEMP_CSV_PATH"

// CmdReader runs a command to produce CSV content, either captured from
// stdout or written by the command to a temp file.
type CmdReader struct {
	parser  Parser
	logger  *slog.Logger
	tempDir string
	stdout  io.Writer
	stderr  io.Writer
}

func NewCmdReader(parser Parser, logger *slog.Logger) *CmdReader {
	return &CmdReader{
		parser:  parser,
		logger:  logger,
		tempDir: os.TempDir(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// WithTempDir sets the directory temp files are created in.
func (r *CmdReader) WithTempDir(dir string) *CmdReader {
	r.tempDir = dir
	return r
}

func (r *CmdReader) Name() string { return "cmd_csv" }

func (r *CmdReader) CanRead(spec project.TableSpec) bool {
	_, ok := spec.Source.(project.CmdSource)
	return ok
}

func (r *CmdReader) Read(ctx context.Context, spec project.TableSpec, projectDir string) (*table.Table, error) {
	src, ok := spec.Source.(project.CmdSource)
	if !ok {
		return nil, readErrorf(spec.Name, nil, "cmd reader does not support %T sources", spec.Source)
	}

	var (
		raw []byte
		err error
	)
	if src.Stdout {
		raw, err = r.runCaptured(ctx, spec.Name, src, projectDir)
	} else {
		raw, err = r.runToTempFile(ctx, spec.Name, src, projectDir)
	}
	if err != nil {
		return nil, err
	}

	text, err := textenc.Decode(raw, src.CharacterEncoding)
	if err != nil {
		return nil, readErrorf(spec.Name, err, "%v", err)
	}
	return r.parser.Parse(text, spec)
}

func (r *CmdReader) runCaptured(ctx context.Context, tableName string, src project.CmdSource, dir string) ([]byte, error) {
	r.logger.Info("running command", "mode", "stdout", "table", tableName,
		"command", src.Command, "args", src.Args)

	cmd := exec.CommandContext(ctx, src.Command, src.Args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, readErrorf(tableName, err, "command '%s' exited with status %d: %s",
				src.Command, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, readErrorf(tableName, err, "failed to execute command '%s': %v", src.Command, err)
	}
	return stdout.Bytes(), nil
}

func (r *CmdReader) runToTempFile(ctx context.Context, tableName string, src project.CmdSource, dir string) ([]byte, error) {
	tempPath := filepath.Join(r.tempDir, "dbloada-"+uuid.NewString()+".csv")
	args := SubstituteTempPath(src.Args, tempPath)
	defer r.removeTemp(tempPath)

	r.logger.Info("running command", "mode", "temp file", "table", tableName,
		"command", src.Command, "args", args, "tempPath", tempPath)

	cmd := exec.CommandContext(ctx, src.Command, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, readErrorf(tableName, err, "command '%s' exited with status %d",
				src.Command, exitErr.ExitCode())
		}
		return nil, readErrorf(tableName, err, "failed to execute command '%s': %v", src.Command, err)
	}

	raw, err := os.ReadFile(tempPath)
	if err != nil {
		return nil, readErrorf(tableName, err, "failed to read temp file '%s': %v", tempPath, err)
	}
	return raw, nil
}

// removeTemp deletes the temp file. Failure is logged and never returned so
// it cannot mask the outcome of the command itself.
func (r *CmdReader) removeTemp(path string) {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return
	}
	r.logger.Warn("failed to remove temp file", "path", path, "error", err)
}

// SubstituteTempPath replaces every TempPathToken in every argument.
func SubstituteTempPath(args []string, path string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, TempPathToken, path)
	}
	return out
}
