// Package repo manages the template repository: parsed template metadata
// in the store and static payload files on disk.
package repo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scailfin/benchmark-multiproc-backend/internal/stage"
	"github.com/scailfin/benchmark-multiproc-backend/internal/store"
	"github.com/scailfin/benchmark-multiproc-backend/internal/template"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// Default file names probed when no explicit spec file is given.
var defaultSpecNames = []string{
	"template.yaml",
	"template.yml",
	"workflow.yaml",
	"workflow.yml",
}

// Repository adds, retrieves, and deletes workflow templates. Each
// template owns a payload directory with the static files its workflow
// references.
type Repository struct {
	baseDir   string
	store     store.Store
	parser    *template.Parser
	validator *template.Validator
	logger    *slog.Logger
}

// New creates a Repository rooted at baseDir. The directory is created if
// it does not exist.
func New(baseDir string, st store.Store, logger *slog.Logger) (*Repository, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create repository dir: %w", err)
	}
	return &Repository{
		baseDir:   baseDir,
		store:     st,
		parser:    template.NewParser(logger),
		validator: template.NewValidator(logger),
		logger:    logger.With("component", "template-repo"),
	}, nil
}

// Add parses and validates specFile, copies the payload from srcDir into
// the repository, and persists the template. When specFile is empty, the
// default names (template.yaml etc.) are probed inside srcDir.
func (r *Repository) Add(ctx context.Context, name, srcDir, specFile string) (*model.Template, error) {
	if specFile == "" {
		found, err := findSpecFile(srcDir)
		if err != nil {
			return nil, err
		}
		specFile = found
	}

	t, err := r.parser.ParseFile(specFile)
	if err != nil {
		return nil, err
	}
	if apiErr := r.validator.Validate(t); apiErr != nil {
		return nil, apiErr
	}

	t.ID = newID()
	t.Name = name
	if t.Name == "" {
		t.Name = filepath.Base(srcDir)
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	payloadDir := r.PayloadDir(t.ID)
	if err := stage.CopyAll(srcDir, payloadDir); err != nil {
		return nil, fmt.Errorf("copy payload: %w", err)
	}

	if err := r.store.CreateTemplate(ctx, t); err != nil {
		os.RemoveAll(payloadDir)
		return nil, fmt.Errorf("persist template: %w", err)
	}

	r.logger.Info("template added", "id", t.ID, "name", t.Name, "steps", len(t.Steps))
	return t, nil
}

// Get returns the template with the given id, or a NOT_FOUND APIError.
func (r *Repository) Get(ctx context.Context, id string) (*model.Template, error) {
	t, err := r.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, model.NewNotFoundError("template", id)
	}
	return t, nil
}

// List returns all templates.
func (r *Repository) List(ctx context.Context) ([]*model.Template, error) {
	return r.store.ListTemplates(ctx)
}

// Delete removes the template metadata and its payload directory.
func (r *Repository) Delete(ctx context.Context, id string) error {
	t, err := r.store.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return model.NewNotFoundError("template", id)
	}
	if err := r.store.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	return os.RemoveAll(r.PayloadDir(id))
}

// PayloadDir returns the static file directory for a template.
func (r *Repository) PayloadDir(id string) string {
	return filepath.Join(r.baseDir, id)
}

func findSpecFile(srcDir string) (string, error) {
	for _, name := range defaultSpecNames {
		candidate := filepath.Join(srcDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no template specification found in %s (tried %s)",
		srcDir, strings.Join(defaultSpecNames, ", "))
}

// newID returns a unique identifier in the format used for templates and
// runs: a uuid4 hex string without dashes.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
