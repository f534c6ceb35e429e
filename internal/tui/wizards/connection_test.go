package wizards

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

type stubTester struct {
	info  string
	err   error
	calls int
}

func (s *stubTester) TestConnection(_ context.Context, _ pgplan.ConnectionConfig, _ string) (string, error) {
	s.calls++
	return s.info, s.err
}

func keyEnter() tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} }
func keyDown() tea.Msg  { return tea.KeyMsg{Type: tea.KeyDown} }
func keyEsc() tea.Msg   { return tea.KeyMsg{Type: tea.KeyEsc} }
func keyCtrlC() tea.Msg { return tea.KeyMsg{Type: tea.KeyCtrlC} }

func typeText(t *testing.T, m tea.Model, text string) tea.Model {
	t.Helper()
	for _, r := range text {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// update advances the model one message and executes the returned
// command one level deep, so a form submit delivers its batched test
// result without following blink or tick commands forever.
func update(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd == nil {
		return m
	}
	out := cmd()
	if out == nil {
		return m
	}
	if batch, ok := out.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if msg := c(); msg != nil {
				m, _ = m.Update(msg)
			}
		}
		return m
	}
	if _, quit := out.(tea.QuitMsg); quit {
		return m
	}
	m, _ = m.Update(out)
	return m
}

func TestConnectionWizard_LocalPasswordFlow(t *testing.T) {
	tester := &stubTester{info: "PostgreSQL 16.2"}
	var m tea.Model = NewConnectionWizard(WithTester(tester))

	// Select the local target.
	m = update(t, m, keyEnter())

	// Host and port keep their defaults; advance to the database field.
	m = update(t, m, keyEnter())
	m = update(t, m, keyEnter())
	m = typeText(t, m, "sales")

	// Username default, empty password, submit on the last field.
	m = update(t, m, keyEnter())
	m = update(t, m, keyEnter())
	m = update(t, m, keyEnter())

	if tester.calls != 1 {
		t.Fatalf("tester called %d times, want 1", tester.calls)
	}

	// Accept the successful test.
	m = update(t, m, keyEnter())

	result := m.(ConnectionWizard).Result()
	if result.Cancelled {
		t.Fatal("wizard reported cancelled")
	}
	if !result.Tested || result.TestInfo != "PostgreSQL 16.2" {
		t.Errorf("test outcome not recorded: %+v", result)
	}
	cfg := result.Config
	if cfg.Host != "localhost" || cfg.Port != 5432 || cfg.Database != "sales" || cfg.Username != "postgres" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.AuthMethod != pgplan.AuthMethodStandard {
		t.Errorf("AuthMethod = %v, want standard", cfg.AuthMethod)
	}
}

func TestConnectionWizard_RequiresDatabase(t *testing.T) {
	var m tea.Model = NewConnectionWizard(WithTester(&stubTester{}))

	m = update(t, m, keyEnter()) // local target
	// Submit straight through without a database name.
	for i := 0; i < 5; i++ {
		m = update(t, m, keyEnter())
	}

	w := m.(ConnectionWizard)
	if w.step != stepInputs {
		t.Fatalf("wizard advanced past the form, step = %d", w.step)
	}
	if !strings.Contains(w.View(), "database is required") {
		t.Errorf("view does not show validation error:\n%s", w.View())
	}
}

func TestConnectionWizard_ConnectionStringTarget(t *testing.T) {
	tester := &stubTester{info: "PostgreSQL 16.2"}
	var m tea.Model = NewConnectionWizard(WithTester(tester))

	// Navigate to the last target (connection string).
	for i := 0; i < len(targets)-1; i++ {
		m = update(t, m, keyDown())
	}
	m = update(t, m, keyEnter())

	m = typeText(t, m, "postgresql://deploy@db.internal/sales")
	m = update(t, m, keyEnter()) // submit
	m = update(t, m, keyEnter()) // accept test

	result := m.(ConnectionWizard).Result()
	if result.ConnString != "postgresql://deploy@db.internal/sales" {
		t.Errorf("ConnString = %q", result.ConnString)
	}
}

func TestConnectionWizard_AWSIAMTarget(t *testing.T) {
	tester := &stubTester{info: "Configuration ready"}
	var m tea.Model = NewConnectionWizard(WithTester(tester))

	m = update(t, m, keyDown())
	m = update(t, m, keyDown()) // AWS RDS
	m = update(t, m, keyEnter())

	m = typeText(t, m, "db.xxx.rds.amazonaws.com")
	m = update(t, m, keyEnter()) // port default
	m = update(t, m, keyEnter()) // to database
	m = typeText(t, m, "sales")
	m = update(t, m, keyEnter()) // to username
	m = update(t, m, keyEnter()) // to region
	m = typeText(t, m, "eu-central-1")
	m = update(t, m, keyEnter()) // submit
	m = update(t, m, keyEnter()) // accept

	cfg := m.(ConnectionWizard).Result().Config
	if cfg.AuthMethod != pgplan.AuthMethodAWSIAM {
		t.Errorf("AuthMethod = %v, want AWS IAM", cfg.AuthMethod)
	}
	if cfg.Host != "db.xxx.rds.amazonaws.com" || cfg.AWSRegion != "eu-central-1" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestConnectionWizard_FailedTestAllowsRetry(t *testing.T) {
	tester := &stubTester{err: errors.New("connection refused")}
	var m tea.Model = NewConnectionWizard(WithTester(tester))

	m = update(t, m, keyEnter()) // local
	m = update(t, m, keyEnter())
	m = update(t, m, keyEnter())
	m = typeText(t, m, "sales")
	m = update(t, m, keyEnter())
	m = update(t, m, keyEnter())
	m = update(t, m, keyEnter()) // submit, test fails

	if tester.calls != 1 {
		t.Fatalf("tester called %d times, want 1", tester.calls)
	}
	if !strings.Contains(m.(ConnectionWizard).View(), "connection refused") {
		t.Error("view does not show the test failure")
	}

	// Enter retries after a failure.
	tester.err = nil
	tester.info = "PostgreSQL 16.2"
	m = update(t, m, keyEnter())
	if tester.calls != 2 {
		t.Fatalf("tester called %d times after retry, want 2", tester.calls)
	}
}

func TestConnectionWizard_CancelWithCtrlC(t *testing.T) {
	var m tea.Model = NewConnectionWizard(WithTester(&stubTester{}))
	m = update(t, m, keyCtrlC())

	if !m.(ConnectionWizard).Result().Cancelled {
		t.Error("ctrl+c should mark the result cancelled")
	}
}

func TestConnectionWizard_EscReturnsToTargetSelection(t *testing.T) {
	var m tea.Model = NewConnectionWizard(WithTester(&stubTester{}))
	m = update(t, m, keyEnter()) // into the form
	m = update(t, m, keyEsc())   // back out

	if m.(ConnectionWizard).step != stepSelectTarget {
		t.Error("esc should return to target selection")
	}
}
