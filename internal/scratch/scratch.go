package scratch

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Dir allocates uniquely named scratch files for one conversion request.
// Names carry a random identifier so concurrent uploads with the same
// original filename never collide.
type Dir struct {
	root string
}

// New returns a Dir rooted at the given directory, defaulting to the
// system temp directory.
func New(root string) *Dir {
	if root == "" {
		root = os.TempDir()
	}
	return &Dir{root: root}
}

// Root returns the directory scratch files are placed in.
func (d *Dir) Root() string { return d.root }

// InputPath allocates a path for the uploaded file. The original filename
// contributes only its extension; a missing extension falls back to "bin".
func (d *Dir) InputPath(originalFilename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalFilename)), ".")
	if ext == "" {
		ext = "bin"
	}
	return filepath.Join(d.root, fmt.Sprintf("%s.input.%s", uuid.NewString(), ext))
}

// OutputPath allocates a path for the converted file.
func (d *Dir) OutputPath(ext string) string {
	return filepath.Join(d.root, fmt.Sprintf("%s.output.%s", uuid.NewString(), ext))
}

// Release deletes scratch files best-effort. A file that was never created
// or already removed is fine; other failures are logged and swallowed so
// cleanup can never mask the conversion result.
func (d *Dir) Release(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("scratch: remove %s: %v", p, err)
		}
	}
}
