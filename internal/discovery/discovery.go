// Package discovery resolves a run's CLI path/glob arguments into the
// concrete list of Fortran source files to analyse.
package discovery

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns are the file suffixes recognised as Fortran source by
// default, covering fixed- and free-form, preprocessed, and submodule
// conventions.
func DefaultPatterns() []string {
	return []string{
		"*.f90", "*.F90",
		"*.f95", "*.F95",
		"*.f03", "*.F03",
		"*.f08", "*.F08",
		"*.f", "*.F",
		"*.for", "*.FOR",
		"*.fpp", "*.FPP",
	}
}

// Options configures discovery.
type Options struct {
	// Patterns are the glob suffixes to match when walking a directory
	// (default: DefaultPatterns()).
	Patterns []string
	// Exclude lists doublestar patterns to skip.
	Exclude []string
	// ExtendExclude lists additional doublestar patterns to skip, layered
	// on top of Exclude (kept distinct so a project's base Exclude can be
	// extended by a narrower config layer without replacing it).
	ExtendExclude []string
	// RespectGitignore, when true, also skips paths a nearest .gitignore
	// would exclude.
	RespectGitignore bool
}

func (o Options) allExcludes() []string {
	out := make([]string, 0, len(o.Exclude)+len(o.ExtendExclude))
	out = append(out, o.Exclude...)
	out = append(out, o.ExtendExclude...)
	return out
}

// Discover resolves inputs (explicit files, directories, or glob patterns)
// into a deduplicated, sorted list of absolute file paths.
func Discover(inputs []string, opts Options) ([]string, error) {
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns()
	}

	seen := make(map[string]bool)
	var results []string

	for _, input := range inputs {
		found, err := discoverInput(input, opts, seen)
		if err != nil {
			return nil, err
		}
		results = append(results, found...)
	}

	slices.SortFunc(results, func(a, b string) int { return cmp.Compare(a, b) })
	return results, nil
}

func discoverInput(input string, opts Options, seen map[string]bool) ([]string, error) {
	if containsGlobChars(input) {
		return globMatches(input, opts, seen)
	}

	info, err := os.Stat(input)
	if err == nil {
		if info.IsDir() {
			return discoverDirectory(input, opts, seen)
		}
		return discoverFile(input, opts, seen)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	return globMatches(input, opts, seen)
}

func containsGlobChars(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', ']':
			return true
		}
	}
	return false
}

func discoverFile(path string, opts Options, seen map[string]bool) ([]string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if isExcluded(absPath, opts.allExcludes()) || seen[absPath] {
		return nil, nil
	}
	seen[absPath] = true
	return []string{absPath}, nil
}

func discoverDirectory(dir string, opts Options, seen map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, pattern := range opts.Patterns {
		patterns = append(patterns, filepath.Join(absDir, "**", pattern), filepath.Join(absDir, pattern))
	}

	var results []string
	for _, pattern := range patterns {
		found, err := globMatches(pattern, opts, seen)
		if err != nil {
			return nil, err
		}
		results = append(results, found...)
	}
	return results, nil
}

func globMatches(pattern string, opts Options, seen map[string]bool) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	var results []string
	excludes := opts.allExcludes()
	for _, match := range matches {
		absPath, err := filepath.Abs(match)
		if err != nil {
			return nil, err
		}
		if isExcluded(absPath, excludes) || seen[absPath] {
			continue
		}
		if opts.RespectGitignore && gitignored(absPath) {
			continue
		}
		seen[absPath] = true
		results = append(results, absPath)
	}
	return results, nil
}

// isExcluded reports whether absPath matches any configured exclusion
// pattern. Relative patterns (no leading "/" or "**/") are matched at any
// directory depth, mirroring a project's intuitive expectation that
// "build/*" means "anywhere under a build directory".
func isExcluded(absPath string, patterns []string) bool {
	pathSlash := filepath.ToSlash(absPath)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !strings.HasPrefix(pattern, "/") && !strings.HasPrefix(pattern, "**/") {
			pattern = "**/" + pattern
		}
		if matched, err := doublestar.Match(pattern, pathSlash); err == nil && matched {
			return true
		}
	}
	return false
}

// gitignored reports whether the nearest ancestor .gitignore (searched from
// absPath's directory upward, stopping at a .git directory or the
// filesystem root) excludes absPath. This is a light heuristic, not a full
// git implementation: it matches each .gitignore's own patterns against
// paths relative to that .gitignore's directory, closest file first, and
// does not attempt negation (`!pattern`) precedence across multiple files.
func gitignored(absPath string) bool {
	dir := filepath.Dir(absPath)
	for {
		gi := filepath.Join(dir, ".gitignore")
		if data, err := os.ReadFile(gi); err == nil {
			rel, err := filepath.Rel(dir, absPath)
			if err == nil && matchesGitignore(string(data), filepath.ToSlash(rel)) {
				return true
			}
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

func matchesGitignore(contents, relPath string) bool {
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		pattern := strings.TrimSuffix(strings.TrimPrefix(line, "/"), "/")
		if !strings.Contains(pattern, "/") {
			pattern = "**/" + pattern
		}
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern+"/**", relPath); err == nil && matched {
			return true
		}
	}
	return false
}
