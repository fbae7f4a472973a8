package tagfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tagdeck/internal/config"
	"tagdeck/internal/logging"
)

// Role classifies a tag file by its filename.
type Role int

const (
	Appending Role = iota
	Overriding
)

func (r Role) String() string {
	switch r {
	case Appending:
		return "appending"
	case Overriding:
		return "overriding"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Ref points at one discovered tag file.
type Ref struct {
	Dir   string
	Path  string
	Role  Role
	Depth int
}

// Kind identifies which Result variant is populated.
type Kind int

const (
	NotFound Kind = iota
	Resolved
	Conflict
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Resolved:
		return "resolved"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one resolution pass.
//
// For Resolved, Overriding may be nil when only appending files were found and
// Appending is ordered nearest first. For Conflict, IgnoredAppending lists every
// appending file discovered up to and including the ambiguous depth, and
// ConflictingOverriding lists the competing overriding files.
type Result struct {
	Kind                  Kind
	Overriding            *Ref
	Appending             []Ref
	IgnoredAppending      []Ref
	ConflictingOverriding []Ref
}

// Locator resolves governing tag files for a directory.
type Locator struct {
	appendingName  string
	overridingName string
	maxDepth       int
	logger         *slog.Logger
}

// NewLocator builds a Locator from the tag-file configuration.
func NewLocator(cfg config.TagFiles, logger *slog.Logger) *Locator {
	return &Locator{
		appendingName:  cfg.AppendingFilename,
		overridingName: cfg.OverridingFilename,
		maxDepth:       cfg.MaxSearchDepth,
		logger:         logging.NewComponentLogger(logger, "tagfile"),
	}
}

// Resolve walks mediaDir and its ancestors up to the configured depth. The
// only errors returned are context cancellation and an unusable mediaDir;
// unreadable or vanished directories are treated as holding no tag files.
func (l *Locator) Resolve(ctx context.Context, mediaDir string) (Result, error) {
	if strings.TrimSpace(mediaDir) == "" {
		return Result{}, errors.New("resolve tag files: empty directory")
	}
	levels, err := l.searchLevels(mediaDir)
	if err != nil {
		return Result{}, err
	}
	logger := logging.WithContext(ctx, l.logger)

	var appending []Ref
	for depth, dirs := range levels {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		overriding, found := l.scanLevel(dirs, depth)
		switch {
		case len(overriding) == 1:
			ref := overriding[0]
			logger.Debug("tag files resolved",
				logging.String("overriding", ref.Path),
				logging.Int("appending_count", len(appending)),
				logging.Int("depth", depth))
			return Result{Kind: Resolved, Overriding: &ref, Appending: appending}, nil
		case len(overriding) > 1:
			ignored := append(appending, found...)
			logging.WarnWithContext(logger, "ambiguous overriding tag files", "tagfile_conflict",
				logging.Strings("conflicting", refPaths(overriding)),
				logging.Strings("ignored_appending", refPaths(ignored)),
				logging.Int("depth", depth),
				logging.String(logging.FieldErrorHint, "remove or rename all but one overriding tag file"),
				logging.String(logging.FieldImpact, "autocomplete disabled for this file"))
			return Result{Kind: Conflict, IgnoredAppending: ignored, ConflictingOverriding: overriding}, nil
		}
		appending = append(appending, found...)
	}

	if len(appending) == 0 {
		logger.Debug("no tag files found", logging.Int("levels", len(levels)))
		return Result{Kind: NotFound}, nil
	}
	return Result{Kind: Resolved, Appending: appending}, nil
}

// searchLevels returns, per depth, the distinct directories to inspect. Depth 0
// is mediaDir itself. The lexical chain and the symlink-evaluated chain are
// merged level by level.
func (l *Locator) searchLevels(mediaDir string) ([][]string, error) {
	lexical, err := filepath.Abs(mediaDir)
	if err != nil {
		return nil, fmt.Errorf("resolve tag files: %w", err)
	}
	chains := [][]string{ancestry(lexical, l.maxDepth)}
	if physical, err := filepath.EvalSymlinks(lexical); err == nil && physical != lexical {
		chains = append(chains, ancestry(physical, l.maxDepth))
	}

	var levels [][]string
	for depth := 0; ; depth++ {
		var dirs []string
		for _, chain := range chains {
			if depth < len(chain) && !containsString(dirs, chain[depth]) {
				dirs = append(dirs, chain[depth])
			}
		}
		if len(dirs) == 0 {
			return levels, nil
		}
		levels = append(levels, dirs)
	}
}

func ancestry(dir string, maxDepth int) []string {
	chain := []string{dir}
	for len(chain) <= maxDepth {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		chain = append(chain, parent)
		dir = parent
	}
	return chain
}

type candidate struct {
	ref  Ref
	info os.FileInfo
}

// scanLevel returns the overriding and appending files found across dirs,
// deduplicated by file identity and ordered by path.
func (l *Locator) scanLevel(dirs []string, depth int) ([]Ref, []Ref) {
	var overriding, appending []candidate
	for _, dir := range dirs {
		for _, name := range l.matchingNames(dir) {
			role, ok := l.roleOf(name)
			if !ok {
				continue
			}
			path := filepath.Join(dir, name)
			info, ok := readableFile(path)
			if !ok {
				continue
			}
			c := candidate{ref: Ref{Dir: dir, Path: path, Role: role, Depth: depth}, info: info}
			if role == Overriding {
				overriding = appendDistinct(overriding, c)
			} else {
				appending = appendDistinct(appending, c)
			}
		}
	}
	return sortedRefs(overriding), sortedRefs(appending)
}

// matchingNames lists entries of dir that look like tag files. Directories
// that cannot be listed are checked for the exact convention names instead.
func (l *Locator) matchingNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.logger.Debug("tag file directory unreadable",
				logging.String("dir", dir),
				logging.Error(err))
		}
		return []string{l.overridingName, l.appendingName}
	}
	var names []string
	for _, entry := range entries {
		if _, ok := l.roleOf(entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	return names
}

func (l *Locator) roleOf(name string) (Role, bool) {
	switch {
	case strings.EqualFold(name, l.overridingName):
		return Overriding, true
	case strings.EqualFold(name, l.appendingName):
		return Appending, true
	default:
		return 0, false
	}
}

// readableFile reports whether path is a regular file the process can open.
func readableFile(path string) (os.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	_ = f.Close()
	return info, true
}

func appendDistinct(list []candidate, c candidate) []candidate {
	for _, existing := range list {
		if os.SameFile(existing.info, c.info) {
			return list
		}
	}
	return append(list, c)
}

func sortedRefs(list []candidate) []Ref {
	if len(list) == 0 {
		return nil
	}
	refs := make([]Ref, len(list))
	for i, c := range list {
		refs[i] = c.ref
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs
}

func refPaths(refs []Ref) []string {
	paths := make([]string, len(refs))
	for i, ref := range refs {
		paths[i] = ref.Path
	}
	return paths
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
