package artifact

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"wf-exporter/internal/apperrors"
	"wf-exporter/internal/common"
	"wf-exporter/internal/match"
	"wf-exporter/internal/task"
)

const (
	suggestionCount    = 3
	suggestionMinScore = 0.6
)

// ErrVariableRef is returned for references built from bundle variables,
// which are left as written.
var ErrVariableRef = errors.New("reference is a bundle variable")

// Record is a located artifact.
type Record struct {
	// OriginalPath is the artifact's workspace path, empty when unknown.
	OriginalPath string
	// LocalPath is the file's location relative to the export root, empty when fetched.
	LocalPath string
	// Content holds fetched bytes when the artifact was not on disk.
	Content []byte
	Kind    task.ArtifactKind
	// Ambiguous lists other files that matched as well as LocalPath.
	Ambiguous []string
	// Destination is the bundle-root relative path the artifact belongs at.
	// It is filled in by the rewrite engine.
	Destination string
}

// Fetched reports whether the record came from the workspace API.
func (r *Record) Fetched() bool {
	return r.LocalPath == "" && r.Content != nil
}

// Request describes one reference to resolve.
type Request struct {
	// Ref is the value currently in the YAML.
	Ref string
	// WorkspacePath is the original workspace path, when known.
	WorkspacePath string
	Kind          task.ArtifactKind
	// BaseDir is the absolute directory of the referencing YAML file.
	BaseDir string
}

// source returns the absolute path used for matching and fetching.
func (r Request) source() string {
	if r.WorkspacePath != "" {
		return r.WorkspacePath
	}

	if common.IsWorkspacePath(r.Ref) {
		return r.Ref
	}

	return ""
}

// Locator resolves references against an Index with an optional Fetcher.
type Locator struct {
	index   *Index
	fetcher Fetcher
	logger  *slog.Logger

	cache map[string]*Record
}

// NewLocator creates a Locator. fetcher may be nil.
func NewLocator(index *Index, fetcher Fetcher, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Locator{
		index:   index,
		fetcher: fetcher,
		logger:  logger,
		cache:   map[string]*Record{},
	}
}

// Locate resolves req to a Record or returns an ArtifactNotFound error.
func (l *Locator) Locate(ctx context.Context, req Request) (*Record, error) {
	if common.HasVariableRef(req.Ref) && req.WorkspacePath == "" {
		return nil, ErrVariableRef
	}

	src := req.source()
	cacheKey := string(req.Kind) + "|" + src
	if src == "" {
		cacheKey = string(req.Kind) + "|" + filepath.Join(req.BaseDir, req.Ref)
	}

	if rec, ok := l.cache[cacheKey]; ok {
		return rec, nil
	}

	rec, err := l.locate(ctx, req, src)
	if err != nil {
		return nil, err
	}

	l.cache[cacheKey] = rec

	return rec, nil
}

func (l *Locator) locate(ctx context.Context, req Request, src string) (*Record, error) {
	if rel, ok := l.relative(req); ok {
		return &Record{OriginalPath: req.WorkspacePath, LocalPath: rel, Kind: req.Kind}, nil
	}

	lookup := src
	if lookup == "" {
		lookup = req.Ref
	}

	if rel, ties, ok := l.onDisk(lookup, req.Kind); ok {
		l.logger.Debug("artifact located", "ref", req.Ref, "local_path", rel, "ties", len(ties))
		return &Record{OriginalPath: src, LocalPath: rel, Kind: req.Kind, Ambiguous: ties}, nil
	}

	if src == "" {
		return nil, apperrors.ArtifactNotFound(req.Ref, "no file with that name in the export")
	}

	if l.fetcher == nil {
		return nil, apperrors.ArtifactNotFound(src, "not in the export and no workspace client configured")
	}

	data, err := fetchWithRetry(ctx, l.fetcher, src, l.logger)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("artifact fetched", "path", src, "bytes", len(data))

	return &Record{OriginalPath: src, Content: data, Kind: req.Kind}, nil
}

// relative resolves a relative reference against the YAML file's directory.
func (l *Locator) relative(req Request) (string, bool) {
	if req.Ref == "" || common.IsWorkspacePath(req.Ref) || req.BaseDir == "" {
		return "", false
	}

	abs := filepath.Join(req.BaseDir, filepath.FromSlash(req.Ref))

	rel, err := filepath.Rel(l.index.Root(), abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}

	rel = filepath.ToSlash(rel)

	info, err := os.Stat(abs)
	if err == nil && !info.IsDir() {
		return rel, true
	}

	return "", false
}

// onDisk searches the index for p.
func (l *Locator) onDisk(p string, kind task.ArtifactKind) (string, []string, bool) {
	if kind == task.KindWheel {
		rel, ok := l.index.ByBasename(path.Base(p))
		return rel, nil, ok
	}

	return l.index.BySuffix(p, kind == task.KindNotebook)
}

// Suggest returns indexed file names close to the basename of ref.
func (l *Locator) Suggest(ref string) []string {
	return match.Closest(path.Base(ref), l.index.Basenames(), suggestionCount, suggestionMinScore)
}
