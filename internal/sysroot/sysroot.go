// Package sysroot discovers standard-library source files under
// --sysroot/ALUMINA_SYSROOT (spec.md §6): every *.alu file becomes a
// SourceFile bound to a module path derived from its location, with
// __root__.alu binding to the *containing* module rather than
// introducing a module of its own. It is grounded on the teacher's
// internal/loader.ModuleLoader: a cache-by-canonical-path shape,
// generalized here from "load on demand" (the teacher parses modules
// lazily as imports are seen) to "discover eagerly" (spec.md's sysroot
// walk collects every file up front before the item maker ever runs).
package sysroot

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceFile is one discovered source file together with the module
// path it binds to.
type SourceFile struct {
	Path       string // filesystem path
	ModulePath string // "::"-separated module path
}

const rootFileName = "__root__.alu"

// Discover walks root recursively, collecting every *.alu file. A file
// named __root__.alu binds to the module path of its containing
// directory (spec.md §6: "Files named __root__.alu bind to the
// containing module"); any other file's module path is its containing
// directory's module path with the file's stem appended as the final
// segment. Results are sorted by module path for deterministic item
// making.
func Discover(root string) ([]SourceFile, error) {
	var out []SourceFile
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".alu") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, SourceFile{Path: path, ModulePath: modulePathFor(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModulePath < out[j].ModulePath })
	return out, nil
}

func modulePathFor(rel string) string {
	rel = filepath.ToSlash(rel)
	dir, file := filepath.Split(rel)
	dir = strings.Trim(dir, "/")

	var segments []string
	if dir != "" {
		segments = strings.Split(dir, "/")
	}
	if file != rootFileName {
		stem := strings.TrimSuffix(file, filepath.Ext(file))
		segments = append(segments, stem)
	}
	return strings.Join(segments, "::")
}

// ParsePositional parses a CLI positional source argument (spec.md §6:
// "module::path=file.alu"): an explicit module path before "=", or,
// without "=", a module name taken from the file's stem.
func ParsePositional(arg string) SourceFile {
	if mod, file, ok := strings.Cut(arg, "="); ok {
		return SourceFile{Path: file, ModulePath: mod}
	}
	base := filepath.Base(arg)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return SourceFile{Path: arg, ModulePath: stem}
}

// ResolveRoot returns the sysroot directory to use: the explicit flag
// value if non-empty, else the ALUMINA_SYSROOT environment variable,
// else "" (no sysroot; spec.md §6 marks both the flag and its env
// fallback optional).
func ResolveRoot(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("ALUMINA_SYSROOT")
}
