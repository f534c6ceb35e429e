// Package scaffold creates new pgplan corpus layouts from embedded
// templates. A template carries the tables/, views/ and migrations/
// skeleton plus an example pgplan.yaml.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

//go:embed all:templates
var templatesFS embed.FS

// DefaultTemplate is the template used when none is named.
const DefaultTemplate = "default"

// Scaffolder writes a corpus skeleton into an empty directory.
type Scaffolder struct {
	logger pgplan.Logger
}

func NewScaffolder(logger pgplan.Logger) *Scaffolder {
	if logger == nil {
		panic("scaffold: logger is required")
	}
	return &Scaffolder{logger: logger}
}

// CreateProject materializes the named template at targetPath. The
// target must be empty or absent; pgplan never overwrites existing
// files. {{PROJECT_NAME}} placeholders in template content are replaced
// with projectName.
func (s *Scaffolder) CreateProject(projectName, templateName, targetPath string) error {
	templatePath := "templates/" + templateName
	if _, err := templatesFS.ReadDir(templatePath); err != nil {
		return fmt.Errorf("template %q not found: %w", templateName, err)
	}

	empty, err := isDirectoryEmpty(targetPath)
	if err != nil {
		return fmt.Errorf("failed to check target directory: %w", err)
	}
	if !empty {
		return fmt.Errorf("target directory %q is not empty: pgplan init requires an empty or new directory", targetPath)
	}

	if err := os.MkdirAll(targetPath, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	s.logger.Verbose("Creating project %q at %s from template %q", projectName, targetPath, templateName)

	err = fs.WalkDir(templatesFS, templatePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == templatePath {
			return nil
		}

		relPath, err := filepath.Rel(templatePath, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(targetPath, relPath)

		if d.IsDir() {
			s.logger.Verbose("Creating directory: %s", relPath)
			return os.MkdirAll(dest, 0755)
		}

		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}
		rendered := strings.ReplaceAll(string(content), "{{PROJECT_NAME}}", projectName)

		s.logger.Verbose("Creating file: %s", relPath)
		if err := os.WriteFile(dest, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to copy template files: %w", err)
	}

	return nil
}

// ListTemplates returns the available template names.
func ListTemplates() ([]string, error) {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}

	var templates []string
	for _, entry := range entries {
		if entry.IsDir() {
			templates = append(templates, entry.Name())
		}
	}
	sort.Strings(templates)
	return templates, nil
}

// isDirectoryEmpty reports whether path is absent, or an existing empty
// directory.
func isDirectoryEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("path %q exists but is not a directory", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// BuildFileTree renders the created layout as an indented listing for
// the init command's summary output.
func BuildFileTree(rootPath string) (string, error) {
	var sb strings.Builder

	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		absPath = rootPath
	}
	sb.WriteString(absPath + string(os.PathSeparator) + "\n")

	err = filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == rootPath {
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}

		depth := strings.Count(relPath, string(os.PathSeparator))
		name := info.Name()
		if info.IsDir() {
			name += "/"
		}
		sb.WriteString(strings.Repeat("    ", depth) + name + "\n")
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to build file tree: %w", err)
	}

	return sb.String(), nil
}
