package store

import (
	"context"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// Store defines the persistence layer for templates and runs.
type Store interface {
	// Template CRUD
	CreateTemplate(ctx context.Context, t *model.Template) error
	GetTemplate(ctx context.Context, id string) (*model.Template, error)
	ListTemplates(ctx context.Context) ([]*model.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// Run operations
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRunsByTemplate(ctx context.Context, templateID string) ([]*model.Run, error)
	UpdateRun(ctx context.Context, run *model.Run) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
