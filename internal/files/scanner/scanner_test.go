package scanner

import (
	"errors"
	"testing"

	"github.com/vvka-141/pgplan/internal/checksum"
	"github.com/vvka-141/pgplan/internal/files/filesystem"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

func newTestScanner(files map[string]string) *Scanner {
	m := filesystem.NewMemoryProvider("/corpus")
	for path, content := range files {
		m.AddFile(path, content)
	}
	return NewScannerWithFS(checksum.New(), m)
}

func TestScanCorpus(t *testing.T) {
	s := newTestScanner(map[string]string{
		"tables/sales.customer.sql":            "CREATE TABLE sales.customer (id int)",
		"tables/sales.product.sql":             "CREATE TABLE sales.product (id int)",
		"views/sales.customer_summary.sql":     "CREATE VIEW sales.customer_summary AS SELECT * FROM @@sales.customer@@",
		"views/reporting/sales.rollup.sql":     "CREATE VIEW sales.rollup AS SELECT * FROM @@sales.customer_summary@@",
		"views/README.md":                      "not sql, skipped",
		"migrations/0001_create_customer.sql":  "SELECT 1",
	})

	corpus, err := s.ScanCorpus("/corpus")
	if err != nil {
		t.Fatalf("ScanCorpus() error = %v", err)
	}

	if len(corpus.Tables) != 2 {
		t.Errorf("Tables = %d files, want 2", len(corpus.Tables))
	}
	if len(corpus.Objects) != 2 {
		t.Errorf("Objects = %d files, want 2", len(corpus.Objects))
	}

	// Lexical path order, corpus-relative with forward slashes.
	if got := corpus.Tables[0].Path; got != "tables/sales.customer.sql" {
		t.Errorf("Tables[0].Path = %q", got)
	}
	if got := corpus.Objects[1].Path; got != "views/sales.customer_summary.sql" {
		t.Errorf("Objects[1].Path = %q", got)
	}
}

func TestScanCorpus_MissingDirectoriesAreEmpty(t *testing.T) {
	m := filesystem.NewMemoryProvider("/corpus")
	m.AddFile("tables/t.sql", "CREATE TABLE t (id int)")
	s := NewScannerWithFS(checksum.New(), m)

	corpus, err := s.ScanCorpus("/corpus")
	if err != nil {
		t.Fatalf("ScanCorpus() error = %v", err)
	}
	if len(corpus.Tables) != 1 || len(corpus.Objects) != 0 {
		t.Errorf("corpus = %d tables, %d objects; want 1, 0", len(corpus.Tables), len(corpus.Objects))
	}
}

func TestScanMigrations(t *testing.T) {
	s := newTestScanner(map[string]string{
		"migrations/0001_create_customer.sql":      "CREATE TABLE customer (id int)",
		"migrations/0001_create_customer.down.sql": "DROP TABLE customer",
		"migrations/0002_add_email.sql":            "ALTER TABLE customer ADD email text",
	})

	steps, err := s.ScanMigrations("/corpus")
	if err != nil {
		t.Fatalf("ScanMigrations() error = %v", err)
	}

	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}

	first := steps[0]
	if first.Sequence != 1 || first.Name != "create_customer" {
		t.Errorf("steps[0] = seq %d name %q", first.Sequence, first.Name)
	}
	if !first.HasReverse() {
		t.Error("steps[0] should have a reverse script")
	}
	if first.Reverse != "DROP TABLE customer" {
		t.Errorf("steps[0].Reverse = %q", first.Reverse)
	}
	if first.Checksum == "" {
		t.Error("steps[0].Checksum is empty")
	}

	second := steps[1]
	if second.Sequence != 2 || second.HasReverse() {
		t.Errorf("steps[1] = seq %d, HasReverse %v", second.Sequence, second.HasReverse())
	}
}

func TestScanMigrations_DeterministicIdentity(t *testing.T) {
	files := map[string]string{
		"migrations/0001_create_customer.sql": "CREATE TABLE customer (id int)",
	}

	steps1, err := newTestScanner(files).ScanMigrations("/corpus")
	if err != nil {
		t.Fatalf("ScanMigrations() error = %v", err)
	}
	steps2, err := newTestScanner(files).ScanMigrations("/corpus")
	if err != nil {
		t.Fatalf("ScanMigrations() error = %v", err)
	}

	if steps1[0].ID != steps2[0].ID {
		t.Errorf("step IDs differ across scans: %s vs %s", steps1[0].ID, steps2[0].ID)
	}
	if steps1[0].ID != StepID("migrations/0001_create_customer.sql") {
		t.Error("step ID does not match StepID of the forward path")
	}
}

func TestStepID_CaseInsensitive(t *testing.T) {
	a := StepID("./Migrations/0001_Create.sql")
	b := StepID("migrations/0001_create.sql")
	if a != b {
		t.Errorf("StepID should normalize case and ./ prefix: %s vs %s", a, b)
	}
}

func TestScanMigrations_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "bad name",
			files: map[string]string{
				"migrations/setup.sql": "SELECT 1",
			},
		},
		{
			name: "duplicate sequence",
			files: map[string]string{
				"migrations/0001_first.sql":  "SELECT 1",
				"migrations/0001_second.sql": "SELECT 2",
			},
		},
		{
			name: "orphan reverse",
			files: map[string]string{
				"migrations/0001_first.sql":       "SELECT 1",
				"migrations/0002_ghost.down.sql":  "SELECT 2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestScanner(tt.files).ScanMigrations("/corpus")
			if !errors.Is(err, pgplan.ErrMalformedDefinition) {
				t.Fatalf("expected ErrMalformedDefinition, got %v", err)
			}
			var stepErr *StepNameError
			if !errors.As(err, &stepErr) {
				t.Fatalf("expected *StepNameError, got %T", err)
			}
		})
	}
}

func TestScanMigrations_NoMigrationsDir(t *testing.T) {
	s := newTestScanner(map[string]string{
		"tables/t.sql": "CREATE TABLE t (id int)",
	})

	steps, err := s.ScanMigrations("/corpus")
	if err != nil {
		t.Fatalf("ScanMigrations() error = %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("got %d steps, want 0", len(steps))
	}
}
