package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		// SQLite does not create missing directories on open.
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// specDoc is the JSON shape of the workflow specification column.
type specDoc struct {
	InputFiles      []string       `json:"inputFiles"`
	InputParameters map[string]any `json:"inputParameters"`
	WorkflowType    string         `json:"workflowType,omitempty"`
	Steps           []model.Step   `json:"steps"`
	OutputFiles     []string       `json:"outputFiles"`
}

// --- Template CRUD ---

func (s *SQLiteStore) CreateTemplate(ctx context.Context, t *model.Template) error {
	s.logger.Debug("sql", "op", "insert", "table", "templates", "id", t.ID)

	specJSON, err := json.Marshal(specDoc{
		InputFiles:      t.InputFiles,
		InputParameters: t.InputParameters,
		WorkflowType:    t.WorkflowType,
		Steps:           t.Steps,
		OutputFiles:     t.OutputFiles,
	})
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}
	paramsJSON, err := json.Marshal(t.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, description, version, spec, parameters, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.Version, string(specJSON), string(paramsJSON),
		t.CreatedAt.Format(time.RFC3339Nano), t.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	s.logger.Debug("sql", "op", "select", "table", "templates", "id", id)

	var t model.Template
	var specJSON, paramsJSON string
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, version, spec, parameters, created_at, updated_at
		 FROM templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Description, &t.Version, &specJSON, &paramsJSON, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var spec specDoc
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	t.InputFiles = spec.InputFiles
	t.InputParameters = spec.InputParameters
	t.WorkflowType = spec.WorkflowType
	t.Steps = spec.Steps
	t.OutputFiles = spec.OutputFiles

	if err := json.Unmarshal([]byte(paramsJSON), &t.Parameters); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}

	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &t, nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]*model.Template, error) {
	s.logger.Debug("sql", "op", "select", "table", "templates")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM templates ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	templates := make([]*model.Template, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		if t != nil {
			templates = append(templates, t)
		}
	}
	return templates, nil
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "templates", "id", id)
	_, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	return err
}

// --- Run operations ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	argsJSON, msgsJSON, resJSON, err := marshalRunFields(run)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, template_id, state, arguments, messages, resources, created_at, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.TemplateID, run.State.String(), argsJSON, msgsJSON, resJSON,
		run.CreatedAt.Format(time.RFC3339Nano),
		nullableTime(run.StartedAt), nullableTime(run.FinishedAt),
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	var run model.Run
	var state, argsJSON, msgsJSON, resJSON, createdAt string
	var startedAt, finishedAt sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, template_id, state, arguments, messages, resources, created_at, started_at, finished_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.TemplateID, &state, &argsJSON, &msgsJSON, &resJSON,
		&createdAt, &startedAt, &finishedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.State = model.RunState(state)
	if err := unmarshalRunFields(&run, argsJSON, msgsJSON, resJSON); err != nil {
		return nil, err
	}

	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	run.StartedAt = parseNullableTime(startedAt)
	run.FinishedAt = parseNullableTime(finishedAt)
	return &run, nil
}

func (s *SQLiteStore) ListRunsByTemplate(ctx context.Context, templateID string) ([]*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "template_id", templateID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE template_id = ? ORDER BY created_at`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	runs := make([]*model.Run, 0, len(ids))
	for _, id := range ids {
		run, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		if run != nil {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "update", "table", "runs", "id", run.ID, "state", run.State)

	argsJSON, msgsJSON, resJSON, err := marshalRunFields(run)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET state = ?, arguments = ?, messages = ?, resources = ?, started_at = ?, finished_at = ?
		 WHERE id = ?`,
		run.State.String(), argsJSON, msgsJSON, resJSON,
		nullableTime(run.StartedAt), nullableTime(run.FinishedAt), run.ID,
	)
	return err
}

// --- helpers ---

func marshalRunFields(run *model.Run) (args, msgs, res string, err error) {
	argsJSON, err := json.Marshal(orEmptyMap(run.Arguments))
	if err != nil {
		return "", "", "", fmt.Errorf("marshal arguments: %w", err)
	}
	msgsJSON, err := json.Marshal(orEmptyList(run.Messages))
	if err != nil {
		return "", "", "", fmt.Errorf("marshal messages: %w", err)
	}
	resJSON, err := json.Marshal(orEmptyResources(run.Resources))
	if err != nil {
		return "", "", "", fmt.Errorf("marshal resources: %w", err)
	}
	return string(argsJSON), string(msgsJSON), string(resJSON), nil
}

func unmarshalRunFields(run *model.Run, argsJSON, msgsJSON, resJSON string) error {
	if err := json.Unmarshal([]byte(argsJSON), &run.Arguments); err != nil {
		return fmt.Errorf("unmarshal arguments: %w", err)
	}
	if err := json.Unmarshal([]byte(msgsJSON), &run.Messages); err != nil {
		return fmt.Errorf("unmarshal messages: %w", err)
	}
	if err := json.Unmarshal([]byte(resJSON), &run.Resources); err != nil {
		return fmt.Errorf("unmarshal resources: %w", err)
	}
	return nil
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptyList(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}

func orEmptyResources(r map[string]model.FileResource) map[string]model.FileResource {
	if r == nil {
		return map[string]model.FileResource{}
	}
	return r
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
