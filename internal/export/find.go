package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"wf-exporter/internal/apperrors"
	"wf-exporter/internal/artifact"
	"wf-exporter/internal/bundle"
	"wf-exporter/internal/config"
	"wf-exporter/internal/match"
)

const (
	fuzzyMinScore = 0.8
	fuzzyMinGap   = 0.1
)

// fileSuffix is the name suffix bundle generate gives resource files.
func fileSuffix(kind bundle.Kind) string {
	if kind == bundle.KindPipeline {
		return ".pipeline.yml"
	}

	return ".job.yml"
}

// FindResource loads the resource document of job from the export root.
//
// The conventional file resources/<key>.job.yml (or .pipeline.yml) is tried
// first. Otherwise every YAML file under resources/ is searched for a
// resource whose key or name matches the item name, falling back to a
// single clear fuzzy match on the key.
func FindResource(root string, job config.ExportJob) (*bundle.Document, bundle.Resource, error) {
	key := match.ResourceKey(job.Name)
	dir := filepath.Join(root, artifact.ResourcesDir)

	conventional := filepath.Join(dir, key+fileSuffix(job.Kind))
	if _, err := os.Stat(conventional); err == nil {
		doc, err := bundle.LoadFile(conventional)
		if err != nil {
			return nil, bundle.Resource{}, err
		}

		if res, ok := pickResource(doc, job, key); ok {
			return doc, res, nil
		}
	}

	docs, err := loadResourceDocs(dir)
	if err != nil {
		return nil, bundle.Resource{}, err
	}

	for _, doc := range docs {
		if res, ok := pickResource(doc, job, key); ok {
			return doc, res, nil
		}
	}

	var (
		keys   []string
		owners = map[string]*bundle.Document{}
	)

	for _, doc := range docs {
		for _, res := range doc.Resources() {
			if res.Kind == job.Kind {
				keys = append(keys, res.Key)
				owners[res.Key] = doc
			}
		}
	}

	if best := match.Rank(key, keys).HighConfidence(fuzzyMinScore, fuzzyMinGap); best != nil {
		doc := owners[best.Name]
		res, _ := doc.Resource(job.Kind, best.Name)

		return doc, res, nil
	}

	return nil, bundle.Resource{}, apperrors.ArtifactNotFound(
		filepath.ToSlash(filepath.Join(artifact.ResourcesDir, key+fileSuffix(job.Kind))),
		fmt.Sprintf("no %s resource for %q in the export", job.Kind, job.Name))
}

// pickResource finds job's resource in doc by key, then by name.
func pickResource(doc *bundle.Document, job config.ExportJob, key string) (bundle.Resource, bool) {
	if res, ok := doc.Resource(job.Kind, key); ok {
		return res, true
	}

	for _, res := range doc.Resources() {
		if res.Kind == job.Kind && bundle.ScalarValue(res.Node, "name") == job.Name {
			return res, true
		}
	}

	return bundle.Resource{}, false
}

// loadResourceDocs parses every YAML file under dir in lexical order.
func loadResourceDocs(dir string) ([]*bundle.Document, error) {
	var docs []*bundle.Document

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() || !isYAML(p) {
			return nil
		}

		doc, err := bundle.LoadFile(p)
		if err != nil {
			return err
		}

		docs = append(docs, doc)

		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan resources in %s: %w", dir, err)
	}

	return docs, nil
}

func isYAML(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".yml" || ext == ".yaml"
}
