package artifact

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"wf-exporter/internal/common"
)

// ResourcesDir holds the bundle YAML files and is never indexed.
const ResourcesDir = "resources"

// LibsDir is where wheels are placed.
const LibsDir = "libs"

// notebookExts are the extensions a notebook export may carry.
var notebookExts = []string{".py", ".sql", ".scala", ".r", ".ipynb"}

// Index lists candidate artifact files under an export root.
type Index struct {
	root  string
	files []string

	byBase map[string][]string
	byStem map[string][]string
}

// NewIndex walks root. Paths in exclude are relative to root and skipped
// along with resources/ and hidden directories.
func NewIndex(root string, exclude ...string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve export root %s: %w", root, err)
	}

	skip := map[string]struct{}{ResourcesDir: {}}
	for _, e := range exclude {
		if e = strings.Trim(filepath.ToSlash(filepath.Clean(e)), "/"); e != "" && e != "." {
			skip[e] = struct{}{}
		}
	}

	idx := &Index{
		root:   abs,
		byBase: map[string][]string{},
		byStem: map[string][]string{},
	}

	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if p == abs {
			return nil
		}

		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		if _, excluded := skip[rel]; excluded || strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		idx.add(rel)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index export root %s: %w", root, err)
	}

	sort.Strings(idx.files)

	return idx, nil
}

func (idx *Index) add(rel string) {
	base := path.Base(rel)

	idx.files = append(idx.files, rel)
	idx.byBase[base] = append(idx.byBase[base], rel)

	if isNotebookExt(path.Ext(base)) {
		stem := common.Stem(base)
		idx.byStem[stem] = append(idx.byStem[stem], rel)
	}
}

// Root returns the absolute export root.
func (idx *Index) Root() string {
	return idx.root
}

// Files returns every indexed path relative to the root, sorted.
func (idx *Index) Files() []string {
	return idx.files
}

// BySuffix finds the file whose trailing path segments best match the
// segments of p. Notebooks also match on stem. Ties go to the shortest
// path, then lexicographic order; the other files with the best score are
// returned in ties.
func (idx *Index) BySuffix(p string, notebook bool) (best string, ties []string, ok bool) {
	segs := splitSegments(p)
	if len(segs) == 0 {
		return "", nil, false
	}

	last := segs[len(segs)-1]

	candidates := append([]string(nil), idx.byBase[last]...)
	if notebook && path.Ext(last) == "" {
		candidates = append(candidates, idx.byStem[last]...)
	}

	candidates = common.Dedupe(candidates)
	scores := make([]int, len(candidates))
	bestScore, bestLen := 0, 0

	for i, c := range candidates {
		csegs := splitSegments(c)
		scores[i] = suffixScore(segs, csegs)

		switch score := scores[i]; {
		case score > bestScore,
			score == bestScore && score > 0 && len(csegs) < bestLen,
			score == bestScore && score > 0 && len(csegs) == bestLen && c < best:
			best, bestScore, bestLen = c, score, len(csegs)
		}
	}

	if best == "" {
		return "", nil, false
	}

	for i, c := range candidates {
		if scores[i] == bestScore && c != best {
			ties = append(ties, c)
		}
	}

	sort.Strings(ties)

	return best, ties, true
}

// ByBasename finds a file by name, preferring libs/ and then the shortest path.
func (idx *Index) ByBasename(name string) (string, bool) {
	candidates := idx.byBase[name]
	if len(candidates) == 0 {
		return "", false
	}

	sorted := append([]string(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		li := strings.HasPrefix(sorted[i], LibsDir+"/")
		lj := strings.HasPrefix(sorted[j], LibsDir+"/")

		if li != lj {
			return li
		}

		if a, b := strings.Count(sorted[i], "/"), strings.Count(sorted[j], "/"); a != b {
			return a < b
		}

		return sorted[i] < sorted[j]
	})

	return sorted[0], true
}

// Basenames returns the distinct file names in the index.
func (idx *Index) Basenames() []string {
	out := make([]string, 0, len(idx.byBase))
	for b := range idx.byBase {
		out = append(out, b)
	}

	sort.Strings(out)

	return out
}

// suffixScore counts matching trailing segments. The last segment compares
// by stem when the workspace segment has no extension.
func suffixScore(want, have []string) int {
	score := 0

	for i := 1; i <= len(want) && i <= len(have); i++ {
		w, h := want[len(want)-i], have[len(have)-i]

		if i == 1 && w != h && !(path.Ext(w) == "" && common.Stem(h) == w) {
			return 0
		}

		if i > 1 && w != h {
			break
		}

		score++
	}

	return score
}

func splitSegments(p string) []string {
	var out []string

	for s := range strings.SplitSeq(p, "/") {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}

	return out
}

func isNotebookExt(ext string) bool {
	for _, e := range notebookExts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}

	return false
}
