// Ignore-pattern matching for FileScanner (spec.md §4.1): nested ignore
// files, negations, and root-anchored patterns. Pattern parsing and the
// exact/prefix/suffix/regex fast paths are adapted from the teacher's
// internal/config.GitignoreParser; directory nesting (one matcher per
// directory level, consulted root-to-leaf during the walk) and "**" glob
// segments (via bmatcuk/doublestar) are new — the teacher only ever loaded
// a single root .gitignore.
package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

const ignoreFileName = ".probeignore"
const gitignoreFileName = ".gitignore"

// patternKind mirrors the teacher's PatternType optimization tiers.
type patternKind int

const (
	kindExact patternKind = iota
	kindPrefix
	kindSuffix
	kindGlob
	kindRegex
)

type ignorePattern struct {
	raw       string
	negate    bool
	directory bool
	anchored  bool // leading "/" in the source file: matches relative to that file's dir only

	kind    patternKind
	prefix  string
	suffix  string
	regex   *regexp.Regexp
	globPat string // doublestar pattern, used when kind == kindGlob
}

// dirMatcher holds the patterns contributed by a single directory's ignore
// file, along with the directory's path relative to the scan root.
type dirMatcher struct {
	relDir   string // "" for the root
	patterns []ignorePattern
}

// IgnoreMatcher evaluates nested ignore files root-to-leaf, the way git
// itself composes .gitignore files down a tree: patterns from a directory
// closer to the candidate path are consulted after (and so can override)
// patterns from an ancestor directory, and a later negation within the same
// directory can re-include a path an earlier pattern excluded.
type IgnoreMatcher struct {
	root     string
	mu       sync.RWMutex
	levels   []dirMatcher // in root-to-leaf load order
	extra    []ignorePattern
	regexCache sync.Map
}

// NewIgnoreMatcher creates a matcher rooted at root. extraPatterns are
// additional root-anchored exclude patterns from probe.yml's scan.exclude.
func NewIgnoreMatcher(root string, extraPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{root: root}
	for _, p := range extraPatterns {
		m.extra = append(m.extra, m.parsePattern(p))
	}
	m.loadDir("")
	return m
}

// LoadDir ingests the ignore file (if any) for relDir, a path relative to
// root, the first time the walker descends into it. Safe to call more than
// once; subsequent calls are no-ops for an already-loaded directory.
func (m *IgnoreMatcher) LoadDir(relDir string) {
	m.mu.RLock()
	for _, lvl := range m.levels {
		if lvl.relDir == relDir {
			m.mu.RUnlock()
			return
		}
	}
	m.mu.RUnlock()
	m.loadDir(relDir)
}

func (m *IgnoreMatcher) loadDir(relDir string) {
	var patterns []ignorePattern
	for _, name := range [2]string{gitignoreFileName, ignoreFileName} {
		path := filepath.Join(m.root, relDir, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, m.parsePattern(line))
		}
		f.Close()
	}

	m.mu.Lock()
	m.levels = append(m.levels, dirMatcher{relDir: relDir, patterns: patterns})
	m.mu.Unlock()
}

func (m *IgnoreMatcher) parsePattern(line string) ignorePattern {
	p := ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	}
	p.raw = line
	p.kind, p.prefix, p.suffix, p.regex, p.globPat = m.classify(line)
	return p
}

func (m *IgnoreMatcher) classify(pattern string) (patternKind, string, string, *regexp.Regexp, string) {
	if strings.Contains(pattern, "**") {
		return kindGlob, "", "", nil, pattern
	}
	if !strings.ContainsAny(pattern, "*?[") {
		return kindExact, pattern, pattern, nil, ""
	}
	if strings.Contains(pattern, "*") && !strings.ContainsAny(pattern, "?[") {
		if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
			return kindSuffix, "", pattern[1:], nil, ""
		}
		if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
			return kindPrefix, pattern[:len(pattern)-1], "", nil, ""
		}
	}
	regexPattern := globToRegex(pattern)
	if cached, ok := m.regexCache.Load(regexPattern); ok {
		return kindRegex, "", "", cached.(*regexp.Regexp), ""
	}
	compiled, err := regexp.Compile(regexPattern)
	if err != nil {
		return kindGlob, "", "", nil, pattern
	}
	m.regexCache.Store(regexPattern, compiled)
	return kindRegex, "", "", compiled, ""
}

func globToRegex(pattern string) string {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `[^/]*`)
	regex = strings.ReplaceAll(regex, `\?`, `[^/]`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	return "^" + regex + "$"
}

func (p ignorePattern) matches(candidate string) bool {
	switch p.kind {
	case kindExact:
		return p.prefix == candidate
	case kindPrefix:
		return strings.HasPrefix(candidate, p.prefix)
	case kindSuffix:
		return strings.HasSuffix(candidate, p.suffix)
	case kindRegex:
		return p.regex != nil && p.regex.MatchString(candidate)
	case kindGlob:
		ok, _ := doublestar.Match(p.globPat, candidate)
		if ok {
			return true
		}
		ok, _ = filepath.Match(p.raw, candidate)
		return ok
	default:
		return false
	}
}

// ShouldIgnore reports whether path (relative to root, forward-slash
// separated) should be excluded from the scan.
func (m *IgnoreMatcher) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	ignored := false

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, pat := range m.extra {
		if m.patternMatchesAnywhere(pat, "", path, isDir) {
			ignored = !pat.negate
		}
	}
	for _, lvl := range m.levels {
		for _, pat := range lvl.patterns {
			if m.patternMatchesAnywhere(pat, lvl.relDir, path, isDir) {
				ignored = !pat.negate
			}
		}
	}
	return ignored
}

func (m *IgnoreMatcher) patternMatchesAnywhere(pat ignorePattern, baseDir, path string, isDir bool) bool {
	rel := path
	if baseDir != "" {
		prefix := baseDir + "/"
		if !strings.HasPrefix(path, prefix) {
			return false
		}
		rel = strings.TrimPrefix(path, prefix)
	}

	if pat.directory {
		if isDir && pat.matches(rel) {
			return true
		}
		// a file/dir nested under a matched directory is also ignored
		parts := strings.Split(rel, "/")
		for i := 1; i <= len(parts); i++ {
			if pat.matches(strings.Join(parts[:i], "/")) {
				return true
			}
		}
		return false
	}

	if pat.anchored {
		return pat.matches(rel)
	}

	if pat.matches(rel) {
		return true
	}
	// relative patterns may match any path component (git semantics)
	segs := strings.Split(rel, "/")
	for i := 0; i < len(segs); i++ {
		if pat.matches(strings.Join(segs[i:], "/")) {
			return true
		}
	}
	return false
}
