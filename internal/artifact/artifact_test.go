package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wf-exporter/internal/apperrors"
	"wf-exporter/internal/task"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	return root
}

func TestNewIndexSkipsResourcesAndHidden(t *testing.T) {
	root := writeTree(t, map[string]string{
		"resources/job.yml":        "x",
		".databricks/cache.json":   "x",
		"src/test.py":              "x",
		"libs/abc.whl":             "x",
		"backup_jobs_yaml/job.yml": "x",
	})

	idx, err := NewIndex(root, "backup_jobs_yaml/")
	require.NoError(t, err)
	assert.Equal(t, []string{"libs/abc.whl", "src/test.py"}, idx.Files())
}

func TestBySuffix(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/etl.py":                "flat",
		"Users/u/project/etl.py":    "mirrored",
		"Users/v/project/etl.py":    "other user",
		"Shared/reports/daily.sql":  "sql",
		"src/notebooks/Ingest.py":   "notebook",
		"src/notebooks/Ingest.json": "not a notebook",
	})

	idx, err := NewIndex(root)
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		notebook bool
		expected string
		ties     []string
		found    bool
	}{
		{"longest suffix wins", "/Workspace/Users/u/project/etl.py", false, "Users/u/project/etl.py", nil, true},
		{"tie prefers shorter path", "/Workspace/Other/etl.py", false, "src/etl.py", []string{"Users/u/project/etl.py", "Users/v/project/etl.py"}, true},
		{"relative ref ties", "../src/x/etl.py", false, "src/etl.py", []string{"Users/u/project/etl.py", "Users/v/project/etl.py"}, true},
		{"notebook by stem", "/Workspace/Users/u/notebooks/Ingest", true, "src/notebooks/Ingest.py", nil, true},
		{"script needs extension", "/Workspace/Users/u/notebooks/Ingest", false, "", nil, false},
		{"sql", "/Workspace/Shared/reports/daily.sql", false, "Shared/reports/daily.sql", nil, true},
		{"missing", "/Workspace/nothing.py", false, "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ties, ok := idx.BySuffix(tt.path, tt.notebook)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.ties, ties)
		})
	}
}

func TestByBasenamePrefersLibs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"dist/abc.whl":       "a",
		"libs/abc.whl":       "b",
		"libs/other/abc.whl": "c",
	})

	idx, err := NewIndex(root)
	require.NoError(t, err)

	got, ok := idx.ByBasename("abc.whl")
	require.True(t, ok)
	assert.Equal(t, "libs/abc.whl", got)
}

func newLocator(t *testing.T, files map[string]string, fetcher Fetcher) (*Locator, string) {
	t.Helper()

	idx, err := NewIndex(writeTree(t, files))
	require.NoError(t, err)

	return NewLocator(idx, fetcher, nil), filepath.Join(idx.Root(), ResourcesDir)
}

func TestLocateRelativeRef(t *testing.T) {
	loc, base := newLocator(t, map[string]string{
		"src/test.py":          "x",
		"correct/path/test.py": "y",
	}, nil)

	rec, err := loc.Locate(context.Background(), Request{Ref: "../src/test.py", Kind: task.KindNotebook, BaseDir: base})
	require.NoError(t, err)
	assert.Equal(t, "src/test.py", rec.LocalPath)
	assert.Empty(t, rec.OriginalPath)
}

func TestLocateMissingRelativeRefFallsBackToName(t *testing.T) {
	loc, base := newLocator(t, map[string]string{
		"correct/path/test.py": "y",
	}, nil)

	rec, err := loc.Locate(context.Background(), Request{Ref: "../src/test.py", Kind: task.KindNotebook, BaseDir: base})
	require.NoError(t, err)
	assert.Equal(t, "correct/path/test.py", rec.LocalPath)
}

func TestLocateWorkspacePath(t *testing.T) {
	loc, base := newLocator(t, map[string]string{
		"src/test.py": "x",
	}, nil)

	rec, err := loc.Locate(context.Background(), Request{
		Ref:           "../src/test.py",
		WorkspacePath: "/Workspace/correct/path/test",
		Kind:          task.KindNotebook,
		BaseDir:       base,
	})
	require.NoError(t, err)
	assert.Equal(t, "src/test.py", rec.LocalPath)
	assert.Equal(t, "/Workspace/correct/path/test", rec.OriginalPath)

	again, err := loc.Locate(context.Background(), Request{
		Ref:           "../src/test.py",
		WorkspacePath: "/Workspace/correct/path/test",
		Kind:          task.KindNotebook,
		BaseDir:       base,
	})
	require.NoError(t, err)
	assert.Same(t, rec, again)
}

func TestLocateWheelByBasename(t *testing.T) {
	loc, base := newLocator(t, map[string]string{
		"libs/abc.whl": "wheel",
	}, nil)

	rec, err := loc.Locate(context.Background(), Request{Ref: "/Volume/abc.whl", Kind: task.KindWheel, BaseDir: base})
	require.NoError(t, err)
	assert.Equal(t, "libs/abc.whl", rec.LocalPath)
	assert.Equal(t, "/Volume/abc.whl", rec.OriginalPath)
}

func TestLocateNotFoundWithoutFetcher(t *testing.T) {
	loc, base := newLocator(t, map[string]string{
		"src/run.py": "x",
	}, nil)

	_, err := loc.Locate(context.Background(), Request{Ref: "/Workspace/Users/u/runs.py", Kind: task.KindScript, BaseDir: base})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrArtifactNotFound))
	assert.Equal(t, []string{"run.py"}, loc.Suggest("/Workspace/Users/u/runs.py"))
}

func TestLocateVariableRef(t *testing.T) {
	loc, base := newLocator(t, map[string]string{}, nil)

	_, err := loc.Locate(context.Background(), Request{Ref: "${var.lib_path}/x.whl", Kind: task.KindWheel, BaseDir: base})
	assert.ErrorIs(t, err, ErrVariableRef)
	assert.False(t, errors.Is(err, apperrors.ErrArtifactNotFound))
}

func TestLocateFetchesWithFallback(t *testing.T) {
	fetcher := &StaticFetcher{
		Files:  map[string][]byte{"/Workspace/Users/u/run.py": []byte("print(1)")},
		Denied: map[string]bool{"/Workspace/Users/u/run.py": true},
	}

	loc, base := newLocator(t, map[string]string{}, fetcher)

	req := Request{Ref: "/Workspace/Users/u/run.py", Kind: task.KindScript, BaseDir: base}

	rec, err := loc.Locate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, rec.Fetched())
	assert.Equal(t, []byte("print(1)"), rec.Content)
	assert.Equal(t, []Credential{PrimaryCredential, FallbackCredential}, fetcher.Calls)

	again, err := loc.Locate(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, rec, again)
	assert.Len(t, fetcher.Calls, 2)
}

func TestLocateFetchDeniedTwiceIsNotFound(t *testing.T) {
	fetcher := &deniedFetcher{}
	loc, base := newLocator(t, map[string]string{}, fetcher)

	_, err := loc.Locate(context.Background(), Request{Ref: "/Workspace/secret.py", Kind: task.KindScript, BaseDir: base})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrArtifactNotFound))
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	assert.Equal(t, 2, fetcher.calls)
}

type deniedFetcher struct {
	calls int
}

func (d *deniedFetcher) Fetch(_ context.Context, p string, _ Credential) ([]byte, error) {
	d.calls++
	return nil, apperrors.PermissionDenied("workspace.export", p, nil)
}

func TestRelocatorPlace(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/test.py": "code",
	})

	r := NewRelocator(root, nil)

	rec := &Record{LocalPath: "src/test.py", Destination: "correct/path/test.py", Kind: task.KindNotebook}
	changed, err := r.Place(rec)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "correct/path/test.py", rec.LocalPath)
	assert.NoFileExists(t, filepath.Join(root, "src", "test.py"))
	assert.FileExists(t, filepath.Join(root, "correct", "path", "test.py"))

	changed, err = r.Place(rec)
	require.NoError(t, err)
	assert.False(t, changed)

	second := &Record{LocalPath: "src/test.py", Destination: "copy/test.py", Kind: task.KindNotebook}
	changed, err = r.Place(second)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(root, "copy", "test.py"))
	require.NoError(t, err)
	assert.Equal(t, "code", string(data))
}

func TestRelocatorWritesFetched(t *testing.T) {
	root := t.TempDir()
	r := NewRelocator(root, nil)

	rec := &Record{OriginalPath: "/Workspace/Users/u/run.py", Content: []byte("print(1)"), Destination: "Users/u/run.py"}
	changed, err := r.Place(rec)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.Place(rec)
	require.NoError(t, err)
	assert.False(t, changed)
}
