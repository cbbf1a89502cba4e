package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// ScanOptions configures path enumeration
type ScanOptions struct {
	// Recursive enables walking into directories given as roots
	Recursive bool
	// Include keeps only files whose base name matches one of these globs (empty = all)
	Include []string
	// Exclude drops files whose base name matches one of these globs
	Exclude []string
	// ExcludeDirs is a list of directory base-name globs to skip (e.g., ".git", "node_modules")
	ExcludeDirs []string
	// IncludeHidden walks into directories whose name starts with "."
	IncludeHidden bool
}

// Filter is a compiled ScanOptions.
type Filter struct {
	opts        ScanOptions
	include     []glob.Glob
	exclude     []glob.Glob
	excludeDirs []glob.Glob
}

// NewFilter compiles the globs in opts.
func NewFilter(opts ScanOptions) (*Filter, error) {
	f := &Filter{opts: opts}
	var err error
	if f.include, err = compileGlobs("include", opts.Include); err != nil {
		return nil, err
	}
	if f.exclude, err = compileGlobs("exclude", opts.Exclude); err != nil {
		return nil, err
	}
	if f.excludeDirs, err = compileGlobs("exclude-dir", opts.ExcludeDirs); err != nil {
		return nil, err
	}
	return f, nil
}

func compileGlobs(kind string, patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s glob %q: %w", kind, p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// KeepFile reports whether a file with the given base name passes the
// include/exclude globs.
func (f *Filter) KeepFile(name string) bool {
	if len(f.include) > 0 && !matchAny(f.include, name) {
		return false
	}
	return !matchAny(f.exclude, name)
}

// SkipDir reports whether a directory with the given base name is pruned.
func (f *Filter) SkipDir(name string) bool {
	if !f.opts.IncludeHidden && len(name) > 1 && name[0] == '.' && name != ".." {
		return true
	}
	return matchAny(f.excludeDirs, name)
}

// Enumerate walks roots in order and calls emit for every file to search.
// Files named directly as roots are always emitted, including paths that do
// not exist, so the searcher reports them. Directories are walked only when
// Recursive is set. Walk problems are collected and returned; they never stop
// the enumeration.
func (f *Filter) Enumerate(roots []string, emit func(path string)) []error {
	var errs []error

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			emit(root)
			continue
		}

		if !f.opts.Recursive {
			errs = append(errs, fmt.Errorf("%s: is a directory", root))
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, fmt.Errorf("error accessing %s: %w", path, err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil // Continue walking
			}

			if d.IsDir() {
				if path != root && f.SkipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}
			if f.KeepFile(d.Name()) {
				emit(path)
			}
			return nil
		})
		if walkErr != nil {
			errs = append(errs, fmt.Errorf("failed to walk %s: %w", root, walkErr))
		}
	}

	return errs
}

// IsSingleFile reports whether roots name exactly one non-directory target.
// In that case output omits the file-name prefix by default.
func IsSingleFile(roots []string) bool {
	if len(roots) != 1 {
		return false
	}
	info, err := os.Stat(roots[0])
	if err != nil {
		return true
	}
	return !info.IsDir()
}
