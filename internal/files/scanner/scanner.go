package scanner

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/pgplan/internal/checksum"
	"github.com/vvka-141/pgplan/internal/files/filesystem"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// stepNameRegex matches migration forward scripts: NNNN_name.sql with a
// purely numeric prefix. Reverse scripts carry the .down.sql suffix and
// are paired, never scanned as steps of their own.
var stepNameRegex = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// Scanner discovers corpus sources and migration steps.
// Safe for concurrent use as long as the injected calculator and
// provider are.
type Scanner struct {
	calculator checksum.Calculator
	fsProvider filesystem.Provider
}

// NewScanner creates a scanner over the OS filesystem.
// Panics if calculator is nil.
func NewScanner(calculator checksum.Calculator) *Scanner {
	return NewScannerWithFS(calculator, filesystem.NewOSProvider())
}

// NewScannerWithFS creates a scanner with a custom filesystem provider,
// primarily for tests. Panics if calculator or fsProvider is nil.
func NewScannerWithFS(calculator checksum.Calculator, fsProvider filesystem.Provider) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{calculator: calculator, fsProvider: fsProvider}
}

// ScanCorpus reads table sources from tables/ and derived-object
// sources from views/ under sourcePath. A missing subdirectory yields
// an empty list, not an error: a corpus may hold only tables or only
// derived objects.
func (s *Scanner) ScanCorpus(sourcePath string) (pgplan.Corpus, error) {
	tables, err := s.scanSQLDir(sourcePath, pgplan.TablesDir)
	if err != nil {
		return pgplan.Corpus{}, err
	}

	objects, err := s.scanSQLDir(sourcePath, pgplan.ViewsDir)
	if err != nil {
		return pgplan.Corpus{}, err
	}

	return pgplan.Corpus{Tables: tables, Objects: objects}, nil
}

// scanSQLDir collects .sql files under sourcePath/subdir in lexical
// order. Paths in the result are corpus-relative with forward slashes
// (e.g. "views/sales.summary.sql").
func (s *Scanner) scanSQLDir(sourcePath, subdir string) ([]pgplan.SourceFile, error) {
	dirPath := filepath.Join(sourcePath, subdir)

	if _, err := s.fsProvider.Stat(dirPath); err != nil {
		return nil, nil
	}

	dir, err := s.fsProvider.Open(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", subdir, err)
	}

	var sources []pgplan.SourceFile
	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking %s: %w", subdir, err)
		}
		if file.Info().IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(file.Path()), ".sql") {
			return nil
		}

		content, err := file.ReadContent()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file.RelativePath(), err)
		}

		sources = append(sources, pgplan.SourceFile{
			Path:    path.Join(subdir, filepath.ToSlash(file.RelativePath())),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// ScanMigrations reads migrations/ under sourcePath and returns steps
// in ascending sequence order. Forward scripts are NNNN_name.sql;
// a sibling NNNN_name.down.sql becomes the step's reverse script.
//
// Returns an error wrapping pgplan.ErrMalformedDefinition when a file
// does not match the naming scheme, when two files carry the same
// sequence number, or when a reverse script has no forward script.
func (s *Scanner) ScanMigrations(sourcePath string) ([]pgplan.MigrationStep, error) {
	dirPath := filepath.Join(sourcePath, pgplan.MigrationsDir)

	if _, err := s.fsProvider.Stat(dirPath); err != nil {
		return nil, nil
	}

	dir, err := s.fsProvider.Open(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", pgplan.MigrationsDir, err)
	}

	type forwardScript struct {
		src      pgplan.SourceFile
		sequence int
		name     string
	}

	// Keys are lowercased base names so forward/reverse pairing is
	// case-insensitive, matching step identity normalization.
	forward := make(map[string]forwardScript)
	reverse := make(map[string]string)

	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking %s: %w", pgplan.MigrationsDir, err)
		}
		if file.Info().IsDir() {
			return nil
		}

		name := filepath.Base(file.Path())
		relPath := path.Join(pgplan.MigrationsDir, filepath.ToSlash(file.RelativePath()))

		content, err := file.ReadContent()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", relPath, err)
		}

		if strings.HasSuffix(strings.ToLower(name), pgplan.ReverseSuffix) {
			base := name[:len(name)-len(pgplan.ReverseSuffix)]
			reverse[strings.ToLower(base)] = string(content)
			return nil
		}

		if !strings.EqualFold(filepath.Ext(name), ".sql") {
			return nil
		}
		matches := stepNameRegex.FindStringSubmatch(name)
		if matches == nil {
			return &StepNameError{
				Path:    relPath,
				Message: "migration file name must match NNNN_name.sql",
			}
		}
		sequence, err := strconv.Atoi(matches[1])
		if err != nil {
			return &StepNameError{Path: relPath, Message: "invalid sequence prefix"}
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		forward[strings.ToLower(base)] = forwardScript{
			src:      pgplan.SourceFile{Path: relPath, Content: string(content)},
			sequence: sequence,
			name:     matches[2],
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for base := range reverse {
		if _, ok := forward[base]; !ok {
			return nil, &StepNameError{
				Path:    path.Join(pgplan.MigrationsDir, base+pgplan.ReverseSuffix),
				Message: "reverse script has no matching forward script",
			}
		}
	}

	steps := make([]pgplan.MigrationStep, 0, len(forward))
	bySequence := make(map[int]string)

	for base, fwd := range forward {
		if prior, dup := bySequence[fwd.sequence]; dup {
			// Map iteration order is random; report the pair in lexical
			// order so the error is stable.
			first, second := prior, fwd.src.Path
			if second < first {
				first, second = second, first
			}
			return nil, &StepNameError{
				Path:    second,
				Message: fmt.Sprintf("sequence %d already used by %s", fwd.sequence, first),
			}
		}
		bySequence[fwd.sequence] = fwd.src.Path

		steps = append(steps, pgplan.MigrationStep{
			Sequence: fwd.sequence,
			ID:       StepID(fwd.src.Path),
			Name:     fwd.name,
			Forward:  fwd.src.Content,
			Reverse:  reverse[base],
			Path:     fwd.src.Path,
			Checksum: s.calculator.CalculateNormalized([]byte(fwd.src.Content)),
		})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Sequence < steps[j].Sequence })
	return steps, nil
}

var _ pgplan.CorpusScanner = (*Scanner)(nil)
