// Package registry shares open reader.Files between callers.
//
// Files are keyed by owner and filename. An owner is any comparable value
// identifying a caller, typically a pointer to the caller's own state.
package registry

import (
	"sync"

	"github.com/user/framereader/pkg/reader"
)

// OpenFunc opens a file. It must return a non-nil File, marking it invalid
// on failure.
type OpenFunc func(filename string) *reader.File

// Registry maps owners to the Files they opened.
//
// Files are opened while the registry lock is held, so a slow open blocks
// lookups by other owners.
type Registry struct {
	mu     sync.Mutex
	open   OpenFunc
	owners map[any][]*reader.File
}

// New creates a registry that opens files with open.
func New(open OpenFunc) *Registry {
	return &Registry{
		open:   open,
		owners: make(map[any][]*reader.File),
	}
}

// GetOrCreate returns owner's File for filename, opening it when needed.
// An invalid File found for filename is closed and replaced. The returned
// File may itself be invalid; callers check Invalid before decoding.
func (r *Registry) GetOrCreate(owner any, filename string) *reader.File {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := r.owners[owner]
	for i, f := range files {
		if f.Filename() != filename {
			continue
		}
		if !f.Invalid() {
			return f
		}
		f.Close()
		files = append(files[:i], files[i+1:]...)
		break
	}

	f := r.open(filename)
	r.owners[owner] = append(files, f)
	return f
}

// Clear closes and forgets every File owned by owner.
func (r *Registry) Clear(owner any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.owners[owner] {
		f.Close()
	}
	delete(r.owners, owner)
}

// Len returns how many Files owner holds.
func (r *Registry) Len(owner any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners[owner])
}

// Close closes every File of every owner.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for owner, files := range r.owners {
		for _, f := range files {
			f.Close()
		}
		delete(r.owners, owner)
	}
}
