package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scailfin/benchmark-multiproc-backend/internal/logging"
	"github.com/scailfin/benchmark-multiproc-backend/internal/store"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

const helloworldSpec = `
workflow:
    version: '0.3.0'
    inputs:
        files:
            - code/helloworld.sh
            - $[[names]]
        parameters:
            helloworld: code/helloworld.sh
            inputfile: $[[names]]
            outputfile: results/greetings.txt
    workflow:
        type: serial
        specification:
            steps:
                - environment: 'sh:posix'
                  commands:
                      - 'sh "${helloworld}" "${inputfile}" "${outputfile}"'
    outputs:
        files:
            - results/greetings.txt
parameters:
    - id: names
      datatype: file
      as: data/names.txt
`

func testRepo(t *testing.T) *Repository {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	r, err := New(t.TempDir(), st, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func templateSource(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "template.yaml"), []byte(helloworldSpec), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(src, "code"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "code", "helloworld.sh"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return src
}

func TestAddGetDelete(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	src := templateSource(t)

	added, err := r.Add(ctx, "helloworld", src, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(added.ID) != 32 {
		t.Errorf("expected 32-char id, got %q", added.ID)
	}
	if added.Name != "helloworld" {
		t.Errorf("name: got %q", added.Name)
	}

	// The payload is copied next to the metadata.
	script := filepath.Join(r.PayloadDir(added.ID), "code", "helloworld.sh")
	if _, err := os.Stat(script); err != nil {
		t.Errorf("payload script: %v", err)
	}

	got, err := r.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Version != "0.3.0" || len(got.Parameters) != 1 {
		t.Errorf("round trip: got %+v", got)
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 template, got %d", len(list))
	}

	if err := r.Delete(ctx, added.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(r.PayloadDir(added.ID)); !os.IsNotExist(err) {
		t.Errorf("expected payload dir removed, got %v", err)
	}
	if _, err := r.Get(ctx, added.ID); err == nil {
		t.Error("expected not found after delete")
	}
}

func TestAdd_DefaultNameFromDir(t *testing.T) {
	r := testRepo(t)
	src := templateSource(t)

	added, err := r.Add(context.Background(), "", src, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.Name != filepath.Base(src) {
		t.Errorf("name: got %q, want %q", added.Name, filepath.Base(src))
	}
}

func TestAdd_InvalidTemplate(t *testing.T) {
	r := testRepo(t)
	src := t.TempDir()
	spec := "workflow:\n    inputs:\n        files: []\n"
	if err := os.WriteFile(filepath.Join(src, "template.yaml"), []byte(spec), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := r.Add(context.Background(), "bad", src, "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrValidation {
		t.Errorf("code: got %s", apiErr.Code)
	}
}

func TestAdd_NoSpecFile(t *testing.T) {
	r := testRepo(t)
	if _, err := r.Add(context.Background(), "empty", t.TempDir(), ""); err == nil {
		t.Fatal("expected error for missing spec file")
	}
}

func TestGet_NotFound(t *testing.T) {
	r := testRepo(t)
	_, err := r.Get(context.Background(), "nosuch")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrNotFound {
		t.Errorf("code: got %s", apiErr.Code)
	}
}

func TestDelete_NotFound(t *testing.T) {
	r := testRepo(t)
	if err := r.Delete(context.Background(), "nosuch"); err == nil {
		t.Fatal("expected error")
	}
}
