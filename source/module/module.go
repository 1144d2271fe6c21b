// Package module resolves and loads script imports per SPEC_FULL.md §6.4:
// `import a.b.c.NAME` resolves to pscript-modules/a/b/c/NAME.ps, relative
// to the interpreter's working directory.
package module

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pscript-run/pscript/source/perr"
)

// Resolve builds the filesystem path for an import with the given dotted
// path segments (e.g. ["a", "b"]) and leaf module name, relative to
// baseDir.
func Resolve(baseDir string, segments []string, name string) string {
	parts := append([]string{baseDir, "pscript-modules"}, segments...)
	parts = append(parts, name+".ps")
	return filepath.Join(parts...)
}

// Prefix builds the namespace-qualification prefix for an import with the
// given dotted path segments and leaf module name, e.g. "a.b.NAME.".
func Prefix(segments []string, name string) string {
	all := append(append([]string(nil), segments...), name)
	return strings.Join(all, ".") + "."
}

// Load reads the source text for an import, wrapping a missing or
// unreadable file as an IOError.
func Load(baseDir string, segments []string, name string) (path, source string, err error) {
	path = Resolve(baseDir, segments, name)
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return path, "", perr.IO(nil, "cannot read module %s: %v", path, readErr)
	}
	return path, string(data), nil
}
