package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	absPath string
	relPath string
	content []byte
	info    fs.FileInfo
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

func (f *memoryFile) ReadContent() ([]byte, error) {
	return f.content, nil
}

type memoryDirectory struct {
	absPath string
	fs      *MemoryProvider
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	entries := d.fs.entriesUnder(d.absPath)

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].absPath < entries[j].absPath
	})

	for _, entry := range entries {
		// Relative paths are recomputed against the walked directory so
		// they match what an OS walk from the same root would produce.
		rel, err := filepath.Rel(d.absPath, entry.absPath)
		if err != nil {
			rel = entry.relPath
		}
		walked := *entry
		walked.relPath = filepath.ToSlash(rel)

		if err := fn(&walked, nil); err != nil {
			return err
		}
	}

	return nil
}

// MemoryProvider implements Provider in memory, for tests.
// Paths use forward slashes regardless of host platform.
type MemoryProvider struct {
	files map[string]*memoryFile
	root  string
}

// NewMemoryProvider creates an in-memory provider rooted at root.
func NewMemoryProvider(root string) *MemoryProvider {
	root = path.Clean(filepath.ToSlash(root))

	m := &MemoryProvider{
		files: make(map[string]*memoryFile),
		root:  root,
	}

	m.files[root] = &memoryFile{
		absPath: root,
		relPath: ".",
		info: &memoryFileInfo{
			name:    path.Base(root),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}

	return m
}

// AddFile adds a file, creating parent directory entries as needed.
// Relative paths are resolved against the provider's root.
func (m *MemoryProvider) AddFile(filePath, content string) {
	absPath := m.resolve(filePath)

	relPath, err := filepath.Rel(m.root, absPath)
	if err != nil {
		relPath = filePath
	}

	m.files[absPath] = &memoryFile{
		absPath: absPath,
		relPath: filepath.ToSlash(relPath),
		content: []byte(content),
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    0644,
			modTime: time.Now(),
			isDir:   false,
		},
	}

	m.addDirEntries(absPath)
}

// AddDir adds an empty directory entry.
func (m *MemoryProvider) AddDir(dirPath string) {
	absPath := m.resolve(dirPath)
	m.files[absPath] = m.dirEntry(absPath)
	m.addDirEntries(absPath)
}

func (m *MemoryProvider) resolve(p string) string {
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "/") {
		p = path.Join(m.root, p)
	}
	return path.Clean(p)
}

func (m *MemoryProvider) dirEntry(absPath string) *memoryFile {
	return &memoryFile{
		absPath: absPath,
		relPath: strings.TrimPrefix(absPath, m.root+"/"),
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		},
	}
}

func (m *MemoryProvider) addDirEntries(filePath string) {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" || dir == m.root {
		return
	}
	if _, exists := m.files[dir]; exists {
		return
	}
	m.files[dir] = m.dirEntry(dir)
	m.addDirEntries(dir)
}

func (m *MemoryProvider) entriesUnder(basePath string) []*memoryFile {
	var entries []*memoryFile
	for p, file := range m.files {
		if p == basePath || strings.HasPrefix(p, basePath+"/") {
			entries = append(entries, file)
		}
	}
	return entries
}

func (m *MemoryProvider) Open(openPath string) (Directory, error) {
	var absPath string
	if openPath == "." || openPath == "" {
		absPath = m.root
	} else {
		absPath = m.resolve(openPath)
	}

	if file, exists := m.files[absPath]; exists {
		if !file.info.IsDir() {
			return nil, fmt.Errorf("path is not a directory: %s", openPath)
		}
		return &memoryDirectory{absPath: absPath, fs: m}, nil
	}

	return nil, fmt.Errorf("directory not found: %s", openPath)
}

func (m *MemoryProvider) ReadFile(filePath string) ([]byte, error) {
	absPath := m.resolve(filePath)

	file, exists := m.files[absPath]
	if !exists {
		return nil, fmt.Errorf("file not found: %s", filePath)
	}
	if file.info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	return file.content, nil
}

func (m *MemoryProvider) Stat(statPath string) (FileInfo, error) {
	file, exists := m.files[m.resolve(statPath)]
	if !exists {
		return nil, fmt.Errorf("path not found: %s", statPath)
	}
	return file.info, nil
}

var _ Provider = (*MemoryProvider)(nil)
