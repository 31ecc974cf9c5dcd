// Package stage copies workflow input files into run directories. Inputs
// are either static files shipped with the template payload or files
// bound as argument values.
package stage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scailfin/benchmark-multiproc-backend/internal/template"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// Entry is one file (or directory) to stage: an absolute or payload-
// relative source and a run-directory-relative target.
type Entry struct {
	Source string
	Target string
}

// Plan resolves the template's input file list against the bound
// arguments. Placeholder entries resolve to argument files; entries that
// fall back to a parameter default or are literal paths resolve relative
// to the template payload directory srcDir.
func Plan(t *model.Template, args template.Arguments, srcDir string) ([]Entry, error) {
	entries := make([]Entry, 0, len(t.InputFiles))
	for _, ref := range t.InputFiles {
		id, isPlaceholder := template.PlaceholderID(ref)
		if !isPlaceholder {
			entries = append(entries, Entry{
				Source: filepath.Join(srcDir, ref),
				Target: ref,
			})
			continue
		}

		p := t.Parameter(id)
		if p == nil {
			return nil, &model.InvalidTemplateError{
				Reason: fmt.Sprintf("input file references undeclared parameter '%s'", id),
			}
		}
		if arg, ok := args[id]; ok && arg.File != nil {
			entries = append(entries, Entry{
				Source: arg.File.Source,
				Target: arg.File.Target,
			})
			continue
		}
		if def, ok := p.Default.(string); ok {
			entries = append(entries, Entry{
				Source: filepath.Join(srcDir, def),
				Target: def,
			})
			continue
		}
		return nil, &model.MissingArgumentError{ParameterID: id}
	}
	return entries, nil
}

// FileStager stages files using local filesystem operations.
type FileStager struct {
	logger *slog.Logger
}

// NewFileStager creates a FileStager with the given logger.
func NewFileStager(logger *slog.Logger) *FileStager {
	return &FileStager{logger: logger.With("component", "stager")}
}

// Stage copies every entry into runDir, creating parent directories as
// needed. A missing source file fails the whole staging step.
func (s *FileStager) Stage(entries []Entry, runDir string) error {
	for _, entry := range entries {
		dest := filepath.Join(runDir, entry.Target)
		info, err := os.Stat(entry.Source)
		if err != nil {
			return fmt.Errorf("stage %s: %w", entry.Target, err)
		}
		if info.IsDir() {
			err = CopyAll(entry.Source, dest)
		} else {
			err = CopyFile(entry.Source, dest)
		}
		if err != nil {
			return fmt.Errorf("stage %s: %w", entry.Target, err)
		}
		s.logger.Debug("staged input", "source", entry.Source, "target", entry.Target)
	}
	return nil
}

// CopyFile copies src to dst, creating parent directories as needed.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyAll recursively copies the directory tree rooted at src to dst.
func CopyAll(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := CopyFile(path, target); err != nil {
			return err
		}
		// Preserve the executable bit for scripts in the payload.
		return os.Chmod(target, info.Mode().Perm())
	})
}
