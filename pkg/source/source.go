package source

import (
	"path/filepath"
	"strings"
)

// File represents a source file with its content and metadata.
type File struct {
	Name    string   // Display name (e.g., "init.tl", "<test>")
	Path    string   // Full file path (empty for synthetic sources)
	Content string   // The source code content
	lines   []string // Cached split lines (lazy initialization)
}

// NewFile creates a new source file.
func NewFile(name, path, content string) *File {
	return &File{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// FromFile creates a File from a file path and content.
func FromFile(filePath, content string) *File {
	return NewFile(filepath.Base(filePath), filePath, content)
}

// Synthetic creates a File for programmatically constructed trees
// (tests, tooling) that have no backing file.
func Synthetic(name, content string) *File {
	return &File{Name: name, Content: content}
}

// Lines returns the source split into lines (cached).
func (f *File) Lines() []string {
	if f.lines == nil {
		f.lines = strings.Split(f.Content, "\n")
	}
	return f.lines
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name).
func (f *File) DisplayPath() string {
	if f.Path != "" {
		return f.Path
	}
	return f.Name
}

// IsFile reports whether this represents an actual file on disk.
func (f *File) IsFile() bool {
	return f.Path != ""
}
