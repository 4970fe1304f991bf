package bundle

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const jobYAML = `resources:
  jobs:
    nightly_etl:
      name: Nightly ETL
      schedule:
        quartz_cron_expression: 0 0 1 * * ?
        pause_status: PAUSED
      tasks:
        - task_key: ingest
          notebook_task:
            notebook_path: ../src/ingest.py
        - task_key: score
          spark_python_task:
            python_file: /Workspace/Users/u/run.py
          libraries:
            - whl: /Volumes/main/libs/abc.whl
            - pypi:
                package: requests
            - whl: /Workspace/Shared/libs/def.whl
  pipelines:
    bronze:
      name: Bronze
      libraries:
        - notebook:
            path: ../src/bronze.py
`

func TestParseAndResources(t *testing.T) {
	doc, err := Parse([]byte(jobYAML))
	require.NoError(t, err)

	resources := doc.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, KindWorkflow, resources[0].Kind)
	assert.Equal(t, "nightly_etl", resources[0].Key)
	assert.Equal(t, KindPipeline, resources[1].Kind)
	assert.Equal(t, "bronze", resources[1].Key)

	res, ok := doc.Resource(KindPipeline, "bronze")
	require.True(t, ok)
	assert.Equal(t, "Bronze", ScalarValue(res.Node, "name"))

	_, ok = doc.Resource(KindWorkflow, "missing")
	assert.False(t, ok)
}

func TestMarshalPreservesOrder(t *testing.T) {
	doc, err := Parse([]byte(jobYAML))
	require.NoError(t, err)

	out, err := doc.Marshal()
	require.NoError(t, err)

	text := string(out)
	assert.Less(t, strings.Index(text, "name: Nightly ETL"), strings.Index(text, "schedule:"))
	assert.Less(t, strings.Index(text, "schedule:"), strings.Index(text, "tasks:"))
	assert.Less(t, strings.Index(text, "jobs:"), strings.Index(text, "pipelines:"))

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Len(t, again.Resources(), 2)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		input    string
		expected FieldPath
		wantErr  bool
	}{
		{
			input:    "task_key",
			expected: FieldPath{Segments: []PathSegment{{Name: "task_key"}}},
		},
		{
			input: "notebook_task.notebook_path",
			expected: FieldPath{Segments: []PathSegment{
				{Name: "notebook_task"},
				{Name: "notebook_path"},
			}},
		},
		{
			input: "libraries[].whl",
			expected: FieldPath{Segments: []PathSegment{
				{Name: "libraries", IsSlice: true},
				{Name: "whl"},
			}},
		},
		{input: "", wantErr: true},
		{input: "a..b", wantErr: true},
		{input: "[].whl", wantErr: true},
		{input: "9lives", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fp, err := ParsePath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, fp)
			assert.Equal(t, tt.input, fp.String())
		})
	}
}

func TestResolveLocators(t *testing.T) {
	doc, err := Parse([]byte(jobYAML))
	require.NoError(t, err)

	res, ok := doc.Resource(KindWorkflow, "nightly_etl")
	require.True(t, ok)

	tasks := MappingValue(res.Node, "tasks")
	require.NotNil(t, tasks)
	score := tasks.Content[1]

	fields := MustParsePath("libraries[].whl").Resolve(score)
	require.Len(t, fields, 2)
	assert.Equal(t, "libraries[0].whl", fields[0].Locator)
	assert.Equal(t, "/Volumes/main/libs/abc.whl", fields[0].Value())
	assert.Equal(t, "libraries[2].whl", fields[1].Locator)

	f, ok := MustParsePath("spark_python_task.python_file").First(score)
	require.True(t, ok)
	assert.Equal(t, "/Workspace/Users/u/run.py", f.Value())

	_, ok = MustParsePath("notebook_task.notebook_path").First(score)
	assert.False(t, ok)
}

func TestLookupAny(t *testing.T) {
	task := map[string]any{
		"task_key": "score",
		"libraries": []any{
			map[string]any{"whl": "/Volumes/a.whl"},
			map[string]any{"jar": "/Volumes/b.jar"},
		},
		"sql_task": map[string]any{"file": map[string]any{"path": "/Workspace/q.sql"}},
	}

	assert.Equal(t, []KeyValue{{Key: "libraries[0].whl", Value: "/Volumes/a.whl"}},
		MustParsePath("libraries[].whl").LookupAny(task))
	assert.Equal(t, []KeyValue{{Key: "sql_task.file.path", Value: "/Workspace/q.sql"}},
		MustParsePath("sql_task.file.path").LookupAny(task))
	assert.Empty(t, MustParsePath("notebook_task.notebook_path").LookupAny(task))
}

func TestMappingHelpers(t *testing.T) {
	doc, err := Parse([]byte(jobYAML))
	require.NoError(t, err)

	res, _ := doc.Resource(KindWorkflow, "nightly_etl")
	schedule := MappingValue(res.Node, "schedule")

	assert.True(t, DeleteMappingKey(schedule, "pause_status"))
	assert.False(t, DeleteMappingKey(schedule, "pause_status"))
	assert.Equal(t, []string{"quartz_cron_expression"}, MappingKeys(schedule))

	SetMappingValue(schedule, "timezone_id", StringNode("UTC"))
	assert.Equal(t, "UTC", ScalarValue(schedule, "timezone_id"))
}

func TestWalkScalarsSkipsKeys(t *testing.T) {
	doc, err := Parse([]byte("a: x\nb:\n  - y\n  - c: z\n"))
	require.NoError(t, err)

	var seen []string
	WalkScalars(doc.Root(), func(n *yaml.Node) { seen = append(seen, n.Value) })
	assert.Equal(t, []string{"x", "y", "z"}, seen)
}

func TestSetPermissions(t *testing.T) {
	doc, err := Parse([]byte(jobYAML))
	require.NoError(t, err)

	res, _ := doc.Resource(KindWorkflow, "nightly_etl")
	added, err := SetPermissions(res, []Permission{{Level: "CAN_VIEW", GroupName: "analysts"}})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = SetPermissions(res, []Permission{{Level: "CAN_MANAGE", UserName: "x"}})
	require.NoError(t, err)
	assert.False(t, added)

	perms := MappingValue(res.Node, "permissions")
	require.NotNil(t, perms)
	require.Len(t, perms.Content, 1)
	assert.Equal(t, "analysts", ScalarValue(perms.Content[0], "group_name"))
}

func TestWriteAndLoadFile(t *testing.T) {
	doc, err := Parse([]byte(jobYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "resources", "nightly.job.yml")
	require.NoError(t, doc.WriteFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), loaded.Dir())
	assert.Len(t, loaded.Resources(), 2)
}

func TestParseRejectsNonMapping(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	assert.Error(t, err)
}
