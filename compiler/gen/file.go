package gen

import (
	"sort"
	"sync"
)

// File is one generated artifact: a relative path and UTF-8 content.
// Downstream packaging must not rename or relocate paths, since
// imports and namespaces embedded in the content are path-derived.
type File struct {
	// Path is the output path, relative to the generation root and
	// always slash-separated.
	Path string
	// Body is the file content.
	Body []byte
}

// FileSet collects generated files. Adds are safe for concurrent use;
// a path collision is surfaced as an OrchestrationError, never a
// silent overwrite.
type FileSet struct {
	mu    sync.Mutex
	files map[string]*File
}

// NewFileSet returns an empty file set.
func NewFileSet() *FileSet {
	return &FileSet{files: make(map[string]*File)}
}

// Add inserts a file into the set.
func (fs *FileSet) Add(f *File) error {
	if f == nil || f.Path == "" {
		return &OrchestrationError{Path: "", Message: "file with empty path"}
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[f.Path]; ok {
		return &OrchestrationError{Path: f.Path, Message: "two artifacts assigned the same output path"}
	}
	fs.files[f.Path] = f
	return nil
}

// Len returns the number of files in the set.
func (fs *FileSet) Len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.files)
}

// File returns the file at the given path, or nil.
func (fs *FileSet) File(path string) *File {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.files[path]
}

// Files returns the files sorted by path. The slice is a copy; the
// set itself is order-irrelevant.
func (fs *FileSet) Files() []*File {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]*File, 0, len(fs.files))
	for _, f := range fs.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
